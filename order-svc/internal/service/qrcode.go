package service

import (
	"fmt"
	"strings"

	"github.com/skip2/go-qrcode"
)

type QRGenerator interface {
	Generate(orderID string) ([]byte, error)
}

// ReceiptQRGenerator encodes a link to the customer's order page.
type ReceiptQRGenerator struct {
	BaseURL string
	Size    int
}

func (g ReceiptQRGenerator) Generate(orderID string) ([]byte, error) {
	size := g.Size
	if size <= 0 {
		size = 256
	}
	qrData := fmt.Sprintf("%s/orders/%s", strings.TrimRight(g.BaseURL, "/"), orderID)
	return qrcode.Encode(qrData, qrcode.Medium, size)
}

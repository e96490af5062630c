package notify

import (
	"context"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

const defaultFrom = `"Food Delivery" <noreply@fooddelivery.com>`

type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPSender delivers plain text mail. Send reports failure instead of returning it.
type SMTPSender struct {
	dialer Dialer
	from   string
	logger *zap.Logger
}

func NewSMTPSender(host string, port int, username, password, from string, logger *zap.Logger) *SMTPSender {
	return NewSMTPSenderWithDialer(gomail.NewDialer(host, port, username, password), from, logger)
}

func NewSMTPSenderWithDialer(dialer Dialer, from string, logger *zap.Logger) *SMTPSender {
	if from == "" {
		from = defaultFrom
	}
	return &SMTPSender{dialer: dialer, from: from, logger: logger}
}

func (s *SMTPSender) Send(ctx context.Context, to, subject, body string) bool {
	if ctx.Err() != nil {
		return false
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", s.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(msg); err != nil {
		s.logger.Error("email sending failed", zap.String("subject", subject), zap.Error(err))
		return false
	}
	s.logger.Info("email sent", zap.String("subject", subject))
	return true
}

// LogSender is used when no SMTP host is configured; the message only goes to the log.
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send keeps the body, which may hold a reset code, out of info level logs.
func (s *LogSender) Send(_ context.Context, to, subject, body string) bool {
	s.logger.Info("email not sent, smtp disabled",
		zap.String("to", to),
		zap.String("subject", subject))
	s.logger.Debug("unsent email body", zap.String("to", to), zap.String("body", body))
	return true
}

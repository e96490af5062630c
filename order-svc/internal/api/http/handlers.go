package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"foodbox/order-svc/internal/auth"
	"foodbox/order-svc/internal/domain"
	"foodbox/order-svc/internal/service"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type Handler struct {
	Cart     service.CartServiceInterface
	Orders   service.OrderServiceInterface
	Accounts service.AccountServiceInterface
	Auth     auth.Authenticator
	AdminKey string
	Logger   *zap.Logger
}

func NewHandler(
	cartSvc service.CartServiceInterface,
	orderSvc service.OrderServiceInterface,
	accountSvc service.AccountServiceInterface,
	authenticator auth.Authenticator,
	adminKey string,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Cart:     cartSvc,
		Orders:   orderSvc,
		Accounts: accountSvc,
		Auth:     authenticator,
		AdminKey: adminKey,
		Logger:   logger,
	}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.healthCheck).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/auth/signup", h.signup).Methods("POST")
	api.HandleFunc("/auth/login", h.login).Methods("POST")
	api.HandleFunc("/auth/forgot-password", h.forgotPassword).Methods("POST")
	api.HandleFunc("/auth/reset-password", h.resetPassword).Methods("POST")

	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(auth.AdminMiddleware(h.AdminKey))
	admin.HandleFunc("/orders/{id}/status", h.advanceOrderStatus).Methods("PUT")
	admin.HandleFunc("/orders/{id}/payment", h.settlePayment).Methods("PUT")

	protected := api.NewRoute().Subrouter()
	protected.Use(auth.Middleware(h.Auth))

	protected.HandleFunc("/cart", h.getCart).Methods("GET")
	protected.HandleFunc("/cart", h.addToCart).Methods("POST")
	protected.HandleFunc("/cart/{id}", h.updateCartItem).Methods("PUT")
	protected.HandleFunc("/cart/{id}", h.removeCartItem).Methods("DELETE")

	protected.HandleFunc("/orders", h.getOrders).Methods("GET")
	protected.HandleFunc("/orders", h.createOrder).Methods("POST")
	protected.HandleFunc("/orders/{id}", h.getOrder).Methods("GET")
	protected.HandleFunc("/orders/{id}/cancel", h.cancelOrder).Methods("PUT")
	protected.HandleFunc("/orders/{id}/qrcode", h.getOrderQRCode).Methods("GET")

	protected.HandleFunc("/users/me", h.me).Methods("GET")
	protected.HandleFunc("/users/profile", h.updateProfile).Methods("PUT")
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"service":   "order-svc",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// currentUser is only called behind auth.Middleware.
func (h *Handler) currentUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		h.writeError(w, r, service.ErrUnauthenticated)
	}
	return userID, ok
}

type addToCartRequest struct {
	FoodID   string `json:"foodId"`
	Quantity *int   `json:"quantity"`
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	lines, err := h.Cart.ListItems(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lines)
}

func (h *Handler) addToCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	var req addToCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	line, err := h.Cart.AddItem(r.Context(), userID, req.FoodID, quantity)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, line)
}

func (h *Handler) updateCartItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	line, err := h.Cart.SetQuantity(r.Context(), userID, mux.Vars(r)["id"], req.Quantity)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, line)
}

func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	if err := h.Cart.RemoveItem(r.Context(), userID, mux.Vars(r)["id"]); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Item removed from cart")
}

func (h *Handler) getOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	orders, err := h.Orders.ListOrders(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	var req domain.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.IdempotencyKey = r.Header.Get("Idempotency-Key")

	order, created, err := h.Orders.CreateOrder(r.Context(), userID, req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if !created {
		writeJSON(w, http.StatusOK, order)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	order, err := h.Orders.GetOrder(r.Context(), userID, mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	order, err := h.Orders.CancelOrder(r.Context(), userID, mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *Handler) getOrderQRCode(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	qr, err := h.Orders.ReceiptQRCode(r.Context(), userID, mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.WriteHeader(http.StatusOK)
	w.Write(qr)
}

func (h *Handler) advanceOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status domain.OrderStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	order, err := h.Orders.AdvanceStatus(r.Context(), mux.Vars(r)["id"], req.Status)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *Handler) settlePayment(w http.ResponseWriter, r *http.Request) {
	order, err := h.Orders.SettlePayment(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

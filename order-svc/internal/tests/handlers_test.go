package tests

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	httpapi "foodbox/order-svc/internal/api/http"
	"foodbox/order-svc/internal/auth"
	"foodbox/order-svc/internal/domain"
	"foodbox/order-svc/internal/service"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const adminKey = "admin-key"

type testServer struct {
	router  *mux.Router
	token   string
	orders  orderDeps
	account accountDeps
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	jwtManager, err := auth.NewJWTManager("test-secret", time.Hour)
	require.NoError(t, err)
	token, err := jwtManager.Issue(userID)
	require.NoError(t, err)

	orderSvc, oDeps := newOrderService(t)
	cartSvc := service.NewCartService(oDeps.carts, oDeps.catalog, zap.NewNop())
	accountSvc, aDeps := newAccountService(t)

	handler := httpapi.NewHandler(cartSvc, orderSvc, accountSvc, jwtManager, adminKey, zap.NewNop())
	r := mux.NewRouter()
	handler.RegisterRoutes(r)

	return &testServer{router: r, token: token, orders: oDeps, account: aDeps}
}

func (s *testServer) do(method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) bearer() map[string]string {
	return map[string]string{"Authorization": "Bearer " + s.token}
}

func decodeMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["message"]
}

func TestHealthHandler(t *testing.T) {
	s := newTestServer(t)
	w := s.do("GET", "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "order-svc")
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)

	for _, route := range []struct{ method, path string }{
		{"GET", "/api/cart"},
		{"POST", "/api/orders"},
		{"GET", "/api/orders/" + orderID},
		{"PUT", "/api/orders/" + orderID + "/cancel"},
		{"GET", "/api/users/me"},
	} {
		w := s.do(route.method, route.path, "{}", map[string]string{"Authorization": "Bearer forged"})
		assert.Equal(t, http.StatusUnauthorized, w.Code, route.path)
		assert.Equal(t, "unauthorized", decodeMessage(t, w))
	}
}

func TestAddToCartHandler(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		setupMock func(deps orderDeps)
		wantCode  int
	}{
		{
			name: "valid request",
			body: `{"foodId":"` + pizzaID + `","quantity":2}`,
			setupMock: func(deps orderDeps) {
				deps.catalog.On("GetFood", mock.Anything, pizzaID).Return(pizza(), nil).Once()
				deps.carts.On("UpsertCartItem", mock.Anything, userID, pizzaID, 2).
					Return(&domain.CartLine{ID: lineID, UserID: userID, FoodID: pizzaID, Quantity: 2}, nil).Once()
			},
			wantCode: http.StatusCreated,
		},
		{
			name:      "invalid JSON",
			body:      `{invalid}`,
			setupMock: func(deps orderDeps) {},
			wantCode:  http.StatusBadRequest,
		},
		{
			name:      "zero quantity",
			body:      `{"foodId":"` + pizzaID + `","quantity":0}`,
			setupMock: func(deps orderDeps) {},
			wantCode:  http.StatusBadRequest,
		},
		{
			name: "database error",
			body: `{"foodId":"` + pizzaID + `"}`,
			setupMock: func(deps orderDeps) {
				deps.catalog.On("GetFood", mock.Anything, pizzaID).Return(nil, errors.New("connection reset")).Once()
			},
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			s := newTestServer(t)
			testCase.setupMock(s.orders)

			w := s.do("POST", "/api/cart", testCase.body, s.bearer())
			assert.Equal(t, testCase.wantCode, w.Code)
			if testCase.wantCode == http.StatusInternalServerError {
				assert.Equal(t, "Server error", decodeMessage(t, w))
			}
		})
	}
}

func TestCartItemHandlers(t *testing.T) {
	s := newTestServer(t)
	s.orders.carts.On("SetCartItemQuantity", mock.Anything, userID, lineID, 3).
		Return(&domain.CartLine{ID: lineID, Quantity: 3}, nil).Once()
	s.orders.carts.On("DeleteCartItem", mock.Anything, userID, lineID).Return(int64(0), nil).Once()
	s.orders.carts.On("ListCartItems", mock.Anything, userID).Return([]domain.CartLine{}, nil).Once()

	w := s.do("PUT", "/api/cart/"+lineID, `{"quantity":3}`, s.bearer())
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do("PUT", "/api/cart/"+lineID, `{"quantity":0}`, s.bearer())
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do("DELETE", "/api/cart/"+lineID, "", s.bearer())
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do("GET", "/api/cart", "", s.bearer())
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestCreateOrderHandler(t *testing.T) {
	s := newTestServer(t)
	s.orders.markers.On("Reserve", mock.Anything, userID, "retry-1").Return("", nil).Once()
	s.orders.catalog.On("GetFood", mock.Anything, pizzaID).Return(pizza(), nil).Once()
	s.orders.orders.On("CreateOrder", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(nil).Once()
	expectPlacement(s.orders, domain.EventOrderPlaced)
	s.orders.markers.On("Complete", mock.Anything, userID, "retry-1", mock.AnythingOfType("string")).Return(nil).Once()

	body := `{"items":[{"food":"` + pizzaID + `","quantity":2}],"deliveryAddress":"1 Main St","paymentMethod":"cash","deliveryFee":0,"total":1}`
	headers := s.bearer()
	headers["Idempotency-Key"] = "retry-1"
	w := s.do("POST", "/api/orders", body, headers)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var order map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &order))
	assert.Equal(t, 30.98, order["total"])
	assert.Equal(t, 5.0, order["deliveryFee"])
	assert.Equal(t, "pending", order["status"])
	assert.Equal(t, "pending", order["paymentStatus"])
}

func TestCreateOrderHandler_ReplayReturnsOK(t *testing.T) {
	s := newTestServer(t)
	s.orders.markers.On("Reserve", mock.Anything, userID, "retry-1").Return(orderID, nil).Once()
	s.orders.orders.On("GetOrder", mock.Anything, userID, orderID).
		Return(&domain.Order{ID: orderID, UserID: userID, Status: domain.StatusPending}, nil).Once()

	body := `{"items":[{"food":"` + pizzaID + `","quantity":2}],"deliveryAddress":"1 Main St","paymentMethod":"cash"}`
	headers := s.bearer()
	headers["Idempotency-Key"] = "retry-1"
	w := s.do("POST", "/api/orders", body, headers)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var order map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &order))
	assert.Equal(t, orderID, order["id"])
}

func TestCreateOrderHandler_EmptyCart(t *testing.T) {
	s := newTestServer(t)
	s.orders.carts.On("ListCartItems", mock.Anything, userID).Return(nil, nil).Once()

	w := s.do("POST", "/api/orders", `{"deliveryAddress":"1 Main St","paymentMethod":"card"}`, s.bearer())
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "cart is empty", decodeMessage(t, w))
}

func TestGetOrderHandler_OtherUser(t *testing.T) {
	s := newTestServer(t)
	s.orders.orders.On("GetOrder", mock.Anything, userID, orderID).Return(nil, sql.ErrNoRows).Once()

	w := s.do("GET", "/api/orders/"+orderID, "", s.bearer())
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "order not found", decodeMessage(t, w))
}

func TestCancelOrderHandler(t *testing.T) {
	tests := []struct {
		name     string
		status   domain.OrderStatus
		wantCode int
	}{
		{name: "pending", status: domain.StatusPending, wantCode: http.StatusOK},
		{name: "out for delivery", status: domain.StatusOutForDelivery, wantCode: http.StatusBadRequest},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			s := newTestServer(t)
			s.orders.orders.On("GetOrder", mock.Anything, userID, orderID).
				Return(&domain.Order{ID: orderID, UserID: userID, Status: testCase.status}, nil).Once()
			if testCase.wantCode == http.StatusOK {
				s.orders.orders.On("TransitionStatus", mock.Anything, orderID, testCase.status, domain.StatusCancelled).Return(true, nil).Once()
				s.orders.publisher.On("PublishOrderEvent", mock.Anything, mock.Anything).Return(nil).Once()
			}

			w := s.do("PUT", "/api/orders/"+orderID+"/cancel", "", s.bearer())
			assert.Equal(t, testCase.wantCode, w.Code)
		})
	}
}

func TestOrderQRCodeHandler(t *testing.T) {
	s := newTestServer(t)
	s.orders.orders.On("GetQRCode", mock.Anything, userID, orderID).Return([]byte("\x89PNG"), nil).Once()

	w := s.do("GET", "/api/orders/"+orderID+"/qrcode", "", s.bearer())
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
}

func TestAdminHandlers(t *testing.T) {
	t.Run("missing key", func(t *testing.T) {
		s := newTestServer(t)
		w := s.do("PUT", "/api/admin/orders/"+orderID+"/status", `{"status":"confirmed"}`, s.bearer())
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("advance status", func(t *testing.T) {
		s := newTestServer(t)
		s.orders.orders.On("GetOrderByID", mock.Anything, orderID).
			Return(&domain.Order{ID: orderID, Status: domain.StatusPending}, nil).Once()
		s.orders.orders.On("TransitionStatus", mock.Anything, orderID, domain.StatusPending, domain.StatusConfirmed).Return(true, nil).Once()
		s.orders.publisher.On("PublishOrderEvent", mock.Anything, mock.Anything).Return(nil).Once()

		w := s.do("PUT", "/api/admin/orders/"+orderID+"/status", `{"status":"confirmed"}`, map[string]string{"X-Admin-Key": adminKey})
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("settle payment", func(t *testing.T) {
		s := newTestServer(t)
		s.orders.orders.On("GetOrderByID", mock.Anything, orderID).
			Return(&domain.Order{ID: orderID, Status: domain.StatusDelivered, PaymentStatus: domain.PaymentPending}, nil).Once()
		s.orders.orders.On("UpdatePaymentStatus", mock.Anything, orderID, domain.PaymentPaid).Return(nil).Once()

		w := s.do("PUT", "/api/admin/orders/"+orderID+"/payment", "", map[string]string{"X-Admin-Key": adminKey})
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestAuthHandlers(t *testing.T) {
	t.Run("signup conflict", func(t *testing.T) {
		s := newTestServer(t)
		s.account.users.On("CreateUser", mock.Anything, mock.Anything).Return(domain.ErrEmailTaken).Once()

		w := s.do("POST", "/api/auth/signup", `{"name":"Jane","email":"jane@example.com","password":"secret1"}`, nil)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("login bad credentials", func(t *testing.T) {
		s := newTestServer(t)
		s.account.users.On("GetUserByEmail", mock.Anything, "jane@example.com").Return(nil, sql.ErrNoRows).Once()

		w := s.do("POST", "/api/auth/login", `{"email":"jane@example.com","password":"x"}`, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "invalid email or password", decodeMessage(t, w))
	})

	t.Run("forgot password delivery failure", func(t *testing.T) {
		s := newTestServer(t)
		s.account.users.On("GetUserByEmail", mock.Anything, "jane@example.com").
			Return(&domain.User{ID: userID, Email: "jane@example.com"}, nil).Once()
		s.account.codes.On("Save", mock.Anything, mock.Anything, userID, time.Hour).Return(true, nil).Once()
		s.account.notifier.On("Send", mock.Anything, "jane@example.com", mock.Anything, mock.Anything).Return(false).Once()
		s.account.codes.On("Delete", mock.Anything, mock.Anything).Return(nil).Once()

		w := s.do("POST", "/api/auth/forgot-password", `{"email":"jane@example.com"}`, nil)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "failed to send OTP email", decodeMessage(t, w))
	})

	t.Run("reset with stale otp", func(t *testing.T) {
		s := newTestServer(t)
		s.account.codes.On("Consume", mock.Anything, "111111").Return("", nil).Once()

		w := s.do("POST", "/api/auth/reset-password", `{"otp":"111111","password":"secret2"}`, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "invalid or expired OTP", decodeMessage(t, w))
	})

	t.Run("me hides the password hash", func(t *testing.T) {
		s := newTestServer(t)
		s.account.users.On("GetUserByID", mock.Anything, userID).
			Return(&domain.User{ID: userID, Name: "Jane", PasswordHash: "secret-hash"}, nil).Once()

		w := s.do("GET", "/api/users/me", "", s.bearer())
		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotContains(t, w.Body.String(), "secret-hash")
		assert.Contains(t, w.Body.String(), `"id":"`+userID+`"`)
		assert.NotContains(t, w.Body.String(), `"_id"`)
	})
}

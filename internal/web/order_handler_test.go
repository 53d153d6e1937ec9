package web

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"laptopshop-be/internal/order"
	"laptopshop-be/internal/payment"
	"laptopshop-be/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) CreateOrder(ctx context.Context, userID int64, params order.CreateOrderParams) (*order.Order, error) {
	args := m.Called(ctx, userID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) GetOrder(ctx context.Context, userID int64, isAdmin bool, orderID int64) (*order.Order, error) {
	args := m.Called(ctx, userID, isAdmin, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) GetOrderByNumber(ctx context.Context, userID int64, isAdmin bool, orderNumber string) (*order.Order, error) {
	args := m.Called(ctx, userID, isAdmin, orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) ListOrders(ctx context.Context, userID int64, isAdmin bool, filter *order.FilterInput, sort *order.SortInput, limit, page int32) ([]*order.Order, error) {
	args := m.Called(ctx, userID, isAdmin, filter, sort, limit, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

func (m *MockOrderService) CancelOrder(ctx context.Context, userID int64, isAdmin bool, orderID int64, reason string) (*order.Order, error) {
	args := m.Called(ctx, userID, isAdmin, orderID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) CancelOrderByNumber(ctx context.Context, userID int64, isAdmin bool, orderNumber, reason string) (*order.Order, error) {
	args := m.Called(ctx, userID, isAdmin, orderNumber, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) UpdateOrderStatus(ctx context.Context, orderID int64, target order.OrderStatus, notes string) (*order.Order, error) {
	args := m.Called(ctx, orderID, target, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) UpdatePaymentStatus(ctx context.Context, orderID int64, target order.PaymentStatus, transactionID string) (*order.Order, error) {
	args := m.Called(ctx, orderID, target, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) UpdateItemStatus(ctx context.Context, orderID, itemID int64, target order.ItemStatus) (*order.Order, error) {
	args := m.Called(ctx, orderID, itemID, target)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) HandlePaymentCallback(ctx context.Context, params url.Values) (*order.CallbackOutcome, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.CallbackOutcome), args.Error(1)
}

// asUser attaches an authenticated identity the way the auth middleware does.
func asUser(userID int64, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := utils.SetUserContext(c.Request.Context(), userID, "test@example.com", role)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func orderTestRouter(svc order.Service, userID int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewOrderHandler(svc)
	p := NewPaymentHandler(svc)

	r := gin.New()
	r.Use(asUser(userID, "CUSTOMER"))
	r.POST("/orders", h.Create)
	r.GET("/orders/:id", h.Get)
	r.POST("/orders/:id/cancel", h.Cancel)
	r.GET("/payment/callback", p.Callback)
	return r
}

func TestOrderHandler_Create(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		svc := new(MockOrderService)
		svc.On("CreateOrder", mock.Anything, int64(1), mock.MatchedBy(func(p order.CreateOrderParams) bool {
			return p.AddressID == 3 &&
				p.PaymentMethod == payment.MethodCOD &&
				len(p.CartLineIDs) == 2
		})).Return(&order.Order{
			ID:          7,
			OrderNumber: "ORD-20260901-100000-001-1234",
			Status:      order.OrderStatusPending,
		}, nil)

		r := orderTestRouter(svc, 1)
		body := bytes.NewBufferString(`{"addressId":3,"paymentMethod":"COD","cartLineIds":[5,6]}`)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/orders", body)
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), "ORD-20260901-100000-001-1234")
	})

	t.Run("missing body fields", func(t *testing.T) {
		r := orderTestRouter(new(MockOrderService), 1)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewBufferString(`{}`))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid payment method maps to 400", func(t *testing.T) {
		svc := new(MockOrderService)
		svc.On("CreateOrder", mock.Anything, int64(1), mock.Anything).
			Return(nil, order.ErrInvalidPaymentMethod)

		r := orderTestRouter(svc, 1)
		body := bytes.NewBufferString(`{"addressId":3,"paymentMethod":"BITCOIN","cartLineIds":[5]}`)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/orders", body)
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestOrderHandler_Get(t *testing.T) {
	t.Run("foreign order maps to 403", func(t *testing.T) {
		svc := new(MockOrderService)
		svc.On("GetOrder", mock.Anything, int64(1), false, int64(7)).
			Return(nil, order.ErrUnauthorized)

		r := orderTestRouter(svc, 1)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders/7", nil))

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("unknown order maps to 404", func(t *testing.T) {
		svc := new(MockOrderService)
		svc.On("GetOrder", mock.Anything, int64(1), false, int64(99)).
			Return(nil, order.ErrOrderNotFound)

		r := orderTestRouter(svc, 1)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders/99", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("bad id", func(t *testing.T) {
		r := orderTestRouter(new(MockOrderService), 1)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders/abc", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestOrderHandler_Cancel(t *testing.T) {
	t.Run("reason is forwarded", func(t *testing.T) {
		svc := new(MockOrderService)
		svc.On("CancelOrder", mock.Anything, int64(1), false, int64(7), "changed my mind").
			Return(&order.Order{ID: 7, Status: order.OrderStatusCanceled}, nil)

		r := orderTestRouter(svc, 1)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/orders/7/cancel?reason=changed+my+mind", nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"CANCELED"`)
	})

	t.Run("invalid transition maps to 400", func(t *testing.T) {
		svc := new(MockOrderService)
		svc.On("CancelOrder", mock.Anything, int64(1), false, int64(7), "").
			Return(nil, &order.InvalidTransitionError{Entity: "order", From: "DELIVERED", To: "CANCELED"})

		r := orderTestRouter(svc, 1)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/orders/7/cancel", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("concurrent modification maps to 409", func(t *testing.T) {
		svc := new(MockOrderService)
		svc.On("CancelOrder", mock.Anything, int64(1), false, int64(7), "").
			Return(nil, order.ErrConcurrentModification)

		r := orderTestRouter(svc, 1)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/orders/7/cancel", nil))

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestPaymentHandler_Callback(t *testing.T) {
	t.Run("tampered signature maps to 400", func(t *testing.T) {
		svc := new(MockOrderService)
		svc.On("HandlePaymentCallback", mock.Anything, mock.Anything).
			Return(nil, payment.ErrVerificationFailed)

		r := orderTestRouter(svc, 1)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/payment/callback?vnp_TxnRef=x&vnp_SecureHash=bad", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "could not be verified")
	})

	t.Run("settled callback renders a confirmation page", func(t *testing.T) {
		svc := new(MockOrderService)
		svc.On("HandlePaymentCallback", mock.Anything, mock.MatchedBy(func(v url.Values) bool {
			return v.Get("vnp_TxnRef") == "ORD-20260901-100000-001-1234"
		})).Return(&order.CallbackOutcome{
			Order: &order.Order{
				ID:            7,
				OrderNumber:   "ORD-20260901-100000-001-1234",
				PaymentStatus: order.PaymentStatusPaid,
			},
			Success: true,
		}, nil)

		r := orderTestRouter(svc, 1)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet,
			"/payment/callback?vnp_TxnRef=ORD-20260901-100000-001-1234", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
		assert.Contains(t, w.Body.String(), "Payment successful")
		assert.Contains(t, w.Body.String(), "ORD-20260901-100000-001-1234")
	})

	t.Run("gateway-reported failure renders a failure page", func(t *testing.T) {
		svc := new(MockOrderService)
		svc.On("HandlePaymentCallback", mock.Anything, mock.Anything).
			Return(&order.CallbackOutcome{
				Order:   &order.Order{ID: 7, OrderNumber: "ORD-20260901-100000-001-1234"},
				Success: false,
			}, nil)

		r := orderTestRouter(svc, 1)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet,
			"/payment/callback?vnp_TxnRef=ORD-20260901-100000-001-1234", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Payment failed")
	})
}

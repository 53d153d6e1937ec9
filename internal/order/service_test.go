package order

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"laptopshop-be/internal/address"
	"laptopshop-be/internal/payment"
	"laptopshop-be/internal/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateOrderTx(ctx context.Context, params CreateOrderTxParams) (*Order, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Order), args.Error(1)
}

func (m *MockRepository) GetByID(ctx context.Context, id int64) (*Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Order), args.Error(1)
}

func (m *MockRepository) GetByNumber(ctx context.Context, orderNumber string) (*Order, error) {
	args := m.Called(ctx, orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Order), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context, userID int64, isAdmin bool, filter *FilterInput, sort *SortInput, limit, page int32) ([]*Order, error) {
	args := m.Called(ctx, userID, isAdmin, filter, sort, limit, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Order), args.Error(1)
}

func (m *MockRepository) ApplyPlanTx(ctx context.Context, orderID int64, plan *Plan) error {
	args := m.Called(ctx, orderID, plan)
	return args.Error(0)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, u *user.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

type MockAddressRepository struct {
	mock.Mock
}

func (m *MockAddressRepository) GetByID(ctx context.Context, id, userID int64) (*address.Address, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*address.Address), args.Error(1)
}

func (m *MockAddressRepository) GetByUserID(ctx context.Context, userID int64) ([]*address.Address, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*address.Address), args.Error(1)
}

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreatePayment(ctx context.Context, req payment.CreatePaymentRequest) (*payment.CreatePaymentResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.CreatePaymentResponse), args.Error(1)
}

func (m *MockGateway) VerifyCallback(params url.Values) (*payment.CallbackResult, error) {
	args := m.Called(params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.CallbackResult), args.Error(1)
}

type serviceMocks struct {
	repo        *MockRepository
	userRepo    *MockUserRepository
	addressRepo *MockAddressRepository
	gateway     *MockGateway
}

func newTestService() (Service, *serviceMocks) {
	m := &serviceMocks{
		repo:        new(MockRepository),
		userRepo:    new(MockUserRepository),
		addressRepo: new(MockAddressRepository),
		gateway:     new(MockGateway),
	}
	return NewService(m.repo, m.userRepo, m.addressRepo, m.gateway), m
}

func pendingOrder(method payment.Method, payStatus PaymentStatus) *Order {
	return &Order{
		ID:            7,
		OrderNumber:   "ORD-20260901-100000-001-1234",
		UserID:        1,
		AddressID:     3,
		TotalAmount:   25500000,
		Status:        OrderStatusPending,
		PaymentMethod: method,
		PaymentStatus: payStatus,
		Items: []OrderItem{
			{ID: 21, OrderID: 7, ProductID: 10, Quantity: 1, Status: ItemStatusPending},
		},
	}
}

func TestService_CreateOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects unknown payment method", func(t *testing.T) {
		svc, _ := newTestService()

		_, err := svc.CreateOrder(ctx, 1, CreateOrderParams{
			AddressID:     3,
			PaymentMethod: "BITCOIN",
			CartLineIDs:   []int64{1},
		})

		assert.ErrorIs(t, err, ErrInvalidPaymentMethod)
	})

	t.Run("rejects empty selection", func(t *testing.T) {
		svc, _ := newTestService()

		_, err := svc.CreateOrder(ctx, 1, CreateOrderParams{
			AddressID:     3,
			PaymentMethod: payment.MethodCOD,
		})

		assert.ErrorIs(t, err, ErrEmptySelection)
	})

	t.Run("rejects missing address", func(t *testing.T) {
		svc, m := newTestService()
		m.userRepo.On("GetByID", ctx, int64(1)).Return(&user.User{ID: 1}, nil)
		m.addressRepo.On("GetByID", ctx, int64(3), int64(1)).
			Return(nil, address.ErrAddressNotFound)

		_, err := svc.CreateOrder(ctx, 1, CreateOrderParams{
			AddressID:     3,
			PaymentMethod: payment.MethodCOD,
			CartLineIDs:   []int64{1},
		})

		assert.ErrorIs(t, err, address.ErrAddressNotFound)
		m.repo.AssertNotCalled(t, "CreateOrderTx", mock.Anything, mock.Anything)
	})

	t.Run("COD order returns without touching the gateway", func(t *testing.T) {
		svc, m := newTestService()
		o := pendingOrder(payment.MethodCOD, PaymentStatusCODPending)

		m.userRepo.On("GetByID", ctx, int64(1)).Return(&user.User{ID: 1}, nil)
		m.addressRepo.On("GetByID", ctx, int64(3), int64(1)).Return(&address.Address{ID: 3}, nil)
		m.repo.On("CreateOrderTx", ctx, mock.MatchedBy(func(p CreateOrderTxParams) bool {
			return p.UserID == 1 &&
				p.PaymentMethod == payment.MethodCOD &&
				p.PaymentStatus == PaymentStatusCODPending &&
				p.OrderNumber != ""
		})).Return(o, nil)

		got, err := svc.CreateOrder(ctx, 1, CreateOrderParams{
			AddressID:     3,
			PaymentMethod: payment.MethodCOD,
			CartLineIDs:   []int64{1},
		})

		require.NoError(t, err)
		assert.Equal(t, o, got)
		m.gateway.AssertNotCalled(t, "CreatePayment", mock.Anything, mock.Anything)
	})

	t.Run("online order settles through the gateway", func(t *testing.T) {
		svc, m := newTestService()
		o := pendingOrder(payment.MethodVNPay, PaymentStatusPending)
		settled := pendingOrder(payment.MethodVNPay, PaymentStatusPaid)
		settled.Status = OrderStatusConfirmed

		m.userRepo.On("GetByID", ctx, int64(1)).Return(&user.User{ID: 1}, nil)
		m.addressRepo.On("GetByID", ctx, int64(3), int64(1)).Return(&address.Address{ID: 3}, nil)
		m.repo.On("CreateOrderTx", ctx, mock.MatchedBy(func(p CreateOrderTxParams) bool {
			return p.PaymentStatus == PaymentStatusPending
		})).Return(o, nil)
		m.gateway.On("CreatePayment", ctx, mock.MatchedBy(func(req payment.CreatePaymentRequest) bool {
			return req.OrderNumber == o.OrderNumber && req.Amount == o.TotalAmount
		})).Return(&payment.CreatePaymentResponse{Success: true, TransactionID: "vnp-1"}, nil)
		m.repo.On("ApplyPlanTx", ctx, o.ID, mock.MatchedBy(func(plan *Plan) bool {
			return plan.Status == OrderStatusConfirmed && plan.PaymentStatus == PaymentStatusPaid
		})).Return(nil)
		m.repo.On("GetByID", ctx, o.ID).Return(settled, nil)

		got, err := svc.CreateOrder(ctx, 1, CreateOrderParams{
			AddressID:     3,
			PaymentMethod: payment.MethodVNPay,
			CartLineIDs:   []int64{1},
		})

		require.NoError(t, err)
		assert.Equal(t, OrderStatusConfirmed, got.Status)
		assert.Equal(t, PaymentStatusPaid, got.PaymentStatus)
	})

	t.Run("retries once on order number collision", func(t *testing.T) {
		svc, m := newTestService()
		o := pendingOrder(payment.MethodCOD, PaymentStatusCODPending)

		m.userRepo.On("GetByID", ctx, int64(1)).Return(&user.User{ID: 1}, nil)
		m.addressRepo.On("GetByID", ctx, int64(3), int64(1)).Return(&address.Address{ID: 3}, nil)
		m.repo.On("CreateOrderTx", ctx, mock.Anything).
			Return(nil, ErrDuplicateOrderNumber).Once()
		m.repo.On("CreateOrderTx", ctx, mock.Anything).
			Return(o, nil).Once()

		got, err := svc.CreateOrder(ctx, 1, CreateOrderParams{
			AddressID:     3,
			PaymentMethod: payment.MethodCOD,
			CartLineIDs:   []int64{1},
		})

		require.NoError(t, err)
		assert.Equal(t, o, got)
		m.repo.AssertNumberOfCalls(t, "CreateOrderTx", 2)
	})

	t.Run("insufficient stock surfaces unchanged", func(t *testing.T) {
		svc, m := newTestService()
		stockErr := errors.New("insufficient stock for product 10")

		m.userRepo.On("GetByID", ctx, int64(1)).Return(&user.User{ID: 1}, nil)
		m.addressRepo.On("GetByID", ctx, int64(3), int64(1)).Return(&address.Address{ID: 3}, nil)
		m.repo.On("CreateOrderTx", ctx, mock.Anything).Return(nil, stockErr)

		_, err := svc.CreateOrder(ctx, 1, CreateOrderParams{
			AddressID:     3,
			PaymentMethod: payment.MethodCOD,
			CartLineIDs:   []int64{1},
		})

		assert.ErrorIs(t, err, stockErr)
	})
}

func TestService_Ownership(t *testing.T) {
	ctx := context.Background()

	t.Run("foreign order read is forbidden", func(t *testing.T) {
		svc, m := newTestService()
		o := pendingOrder(payment.MethodCOD, PaymentStatusCODPending)
		m.repo.On("GetByID", ctx, o.ID).Return(o, nil)

		_, err := svc.GetOrder(ctx, 99, false, o.ID)

		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("admin reads any order", func(t *testing.T) {
		svc, m := newTestService()
		o := pendingOrder(payment.MethodCOD, PaymentStatusCODPending)
		m.repo.On("GetByID", ctx, o.ID).Return(o, nil)

		got, err := svc.GetOrder(ctx, 99, true, o.ID)

		require.NoError(t, err)
		assert.Equal(t, o, got)
	})

	t.Run("foreign cancel is forbidden", func(t *testing.T) {
		svc, m := newTestService()
		o := pendingOrder(payment.MethodCOD, PaymentStatusCODPending)
		m.repo.On("GetByID", ctx, o.ID).Return(o, nil)

		_, err := svc.CancelOrder(ctx, 99, false, o.ID, "")

		assert.ErrorIs(t, err, ErrUnauthorized)
		m.repo.AssertNotCalled(t, "ApplyPlanTx", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestService_CancelOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("cancel with reason", func(t *testing.T) {
		svc, m := newTestService()
		o := pendingOrder(payment.MethodCOD, PaymentStatusCODPending)
		canceled := pendingOrder(payment.MethodCOD, PaymentStatusCODPending)
		canceled.Status = OrderStatusCanceled

		m.repo.On("GetByID", ctx, o.ID).Return(o, nil).Once()
		m.repo.On("ApplyPlanTx", ctx, o.ID, mock.MatchedBy(func(plan *Plan) bool {
			return plan.Status == OrderStatusCanceled &&
				plan.HistoryNote == "order canceled: changed my mind" &&
				len(plan.Releases) == 1
		})).Return(nil)
		m.repo.On("GetByID", ctx, o.ID).Return(canceled, nil).Once()

		got, err := svc.CancelOrder(ctx, 1, false, o.ID, "changed my mind")

		require.NoError(t, err)
		assert.Equal(t, OrderStatusCanceled, got.Status)
	})

	t.Run("cancel delivered order rejected", func(t *testing.T) {
		svc, m := newTestService()
		o := pendingOrder(payment.MethodCOD, PaymentStatusPaid)
		o.Status = OrderStatusDelivered
		o.Items[0].Status = ItemStatusDelivered
		m.repo.On("GetByID", ctx, o.ID).Return(o, nil)

		_, err := svc.CancelOrder(ctx, 1, false, o.ID, "")

		assert.True(t, IsInvalidTransition(err))
	})

	t.Run("concurrent modification surfaces", func(t *testing.T) {
		svc, m := newTestService()
		o := pendingOrder(payment.MethodCOD, PaymentStatusCODPending)
		m.repo.On("GetByID", ctx, o.ID).Return(o, nil)
		m.repo.On("ApplyPlanTx", ctx, o.ID, mock.Anything).Return(ErrConcurrentModification)

		_, err := svc.CancelOrder(ctx, 1, false, o.ID, "")

		assert.ErrorIs(t, err, ErrConcurrentModification)
	})
}

func TestService_HandlePaymentCallback(t *testing.T) {
	ctx := context.Background()
	params := url.Values{"vnp_TxnRef": {"ORD-20260901-100000-001-1234"}}

	t.Run("verification failure rejects the callback", func(t *testing.T) {
		svc, m := newTestService()
		m.gateway.On("VerifyCallback", params).Return(nil, payment.ErrVerificationFailed)

		_, err := svc.HandlePaymentCallback(ctx, params)

		assert.ErrorIs(t, err, payment.ErrVerificationFailed)
		m.repo.AssertNotCalled(t, "GetByNumber", mock.Anything, mock.Anything)
	})

	t.Run("successful callback settles the order", func(t *testing.T) {
		svc, m := newTestService()
		o := pendingOrder(payment.MethodVNPay, PaymentStatusPending)
		settled := pendingOrder(payment.MethodVNPay, PaymentStatusPaid)
		settled.Status = OrderStatusConfirmed

		m.gateway.On("VerifyCallback", params).Return(&payment.CallbackResult{
			OrderNumber:   o.OrderNumber,
			TransactionID: "vnp-42",
			Success:       true,
			ResponseCode:  "00",
		}, nil)
		m.repo.On("GetByNumber", ctx, o.OrderNumber).Return(o, nil)
		m.repo.On("ApplyPlanTx", ctx, o.ID, mock.MatchedBy(func(plan *Plan) bool {
			return plan.PaymentStatus == PaymentStatusPaid && plan.TransactionID == "vnp-42"
		})).Return(nil)
		m.repo.On("GetByID", ctx, o.ID).Return(settled, nil)

		outcome, err := svc.HandlePaymentCallback(ctx, params)

		require.NoError(t, err)
		assert.True(t, outcome.Success)
		assert.False(t, outcome.AlreadySettled)
		assert.Equal(t, PaymentStatusPaid, outcome.Order.PaymentStatus)
	})

	t.Run("replayed callback is a no-op", func(t *testing.T) {
		svc, m := newTestService()
		o := pendingOrder(payment.MethodVNPay, PaymentStatusPaid)
		o.Status = OrderStatusConfirmed

		m.gateway.On("VerifyCallback", params).Return(&payment.CallbackResult{
			OrderNumber:   o.OrderNumber,
			TransactionID: "vnp-42",
			Success:       true,
		}, nil)
		m.repo.On("GetByNumber", ctx, o.OrderNumber).Return(o, nil)

		outcome, err := svc.HandlePaymentCallback(ctx, params)

		require.NoError(t, err)
		assert.True(t, outcome.AlreadySettled)
		m.repo.AssertNotCalled(t, "ApplyPlanTx", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("verified failure leaves the order pending", func(t *testing.T) {
		svc, m := newTestService()
		o := pendingOrder(payment.MethodVNPay, PaymentStatusPending)

		m.gateway.On("VerifyCallback", params).Return(&payment.CallbackResult{
			OrderNumber:  o.OrderNumber,
			Success:      false,
			ResponseCode: "24",
		}, nil)
		m.repo.On("GetByNumber", ctx, o.OrderNumber).Return(o, nil)

		outcome, err := svc.HandlePaymentCallback(ctx, params)

		require.NoError(t, err)
		assert.False(t, outcome.Success)
		assert.Equal(t, PaymentStatusPending, outcome.Order.PaymentStatus)
		m.repo.AssertNotCalled(t, "ApplyPlanTx", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestService_UpdateItemStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("return derives order status", func(t *testing.T) {
		svc, m := newTestService()
		o := pendingOrder(payment.MethodVNPay, PaymentStatusPaid)
		o.Status = OrderStatusDelivered
		o.Items = []OrderItem{
			{ID: 21, OrderID: 7, ProductID: 10, Quantity: 1, Status: ItemStatusDelivered},
			{ID: 22, OrderID: 7, ProductID: 11, Quantity: 2, Status: ItemStatusDelivered},
		}
		updated := *o
		updated.Status = OrderStatusPartiallyReturned

		m.repo.On("GetByID", ctx, o.ID).Return(o, nil).Once()
		m.repo.On("ApplyPlanTx", ctx, o.ID, mock.MatchedBy(func(plan *Plan) bool {
			return plan.Status == OrderStatusPartiallyReturned &&
				plan.ItemStatuses[21] == ItemStatusReturned
		})).Return(nil)
		m.repo.On("GetByID", ctx, o.ID).Return(&updated, nil).Once()

		got, err := svc.UpdateItemStatus(ctx, o.ID, 21, ItemStatusReturned)

		require.NoError(t, err)
		assert.Equal(t, OrderStatusPartiallyReturned, got.Status)
	})

	t.Run("unknown item", func(t *testing.T) {
		svc, m := newTestService()
		o := pendingOrder(payment.MethodVNPay, PaymentStatusPaid)
		m.repo.On("GetByID", ctx, o.ID).Return(o, nil)

		_, err := svc.UpdateItemStatus(ctx, o.ID, 999, ItemStatusCanceled)

		assert.ErrorIs(t, err, ErrItemNotFound)
	})
}

package order

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"laptopshop-be/internal/address"
	"laptopshop-be/internal/logger"
	"laptopshop-be/internal/metrics"
	"laptopshop-be/internal/payment"
	"laptopshop-be/internal/user"
	"laptopshop-be/internal/utils"

	"go.uber.org/zap"
)

// CallbackOutcome reports what a verified gateway callback did.
type CallbackOutcome struct {
	Order          *Order
	Success        bool
	AlreadySettled bool
}

type Service interface {
	CreateOrder(ctx context.Context, userID int64, params CreateOrderParams) (*Order, error)
	GetOrder(ctx context.Context, userID int64, isAdmin bool, orderID int64) (*Order, error)
	GetOrderByNumber(ctx context.Context, userID int64, isAdmin bool, orderNumber string) (*Order, error)
	ListOrders(ctx context.Context, userID int64, isAdmin bool, filter *FilterInput, sort *SortInput, limit, page int32) ([]*Order, error)
	CancelOrder(ctx context.Context, userID int64, isAdmin bool, orderID int64, reason string) (*Order, error)
	CancelOrderByNumber(ctx context.Context, userID int64, isAdmin bool, orderNumber, reason string) (*Order, error)
	UpdateOrderStatus(ctx context.Context, orderID int64, target OrderStatus, notes string) (*Order, error)
	UpdatePaymentStatus(ctx context.Context, orderID int64, target PaymentStatus, transactionID string) (*Order, error)
	UpdateItemStatus(ctx context.Context, orderID, itemID int64, target ItemStatus) (*Order, error)
	HandlePaymentCallback(ctx context.Context, params url.Values) (*CallbackOutcome, error)
}

type service struct {
	repo        Repository
	userRepo    user.Repository
	addressRepo address.Repository
	gateway     payment.Gateway
}

func NewService(
	repo Repository,
	userRepo user.Repository,
	addressRepo address.Repository,
	gateway payment.Gateway,
) Service {
	return &service{
		repo:        repo,
		userRepo:    userRepo,
		addressRepo: addressRepo,
		gateway:     gateway,
	}
}

// CreateOrder converts selected cart lines into an order. For non-COD
// methods the gateway is invoked right after the conversion commits; in
// this deployment it reports success synchronously, so the order comes
// back already PAID and CONFIRMED.
func (s *service) CreateOrder(ctx context.Context, userID int64, params CreateOrderParams) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateOrder"),
		zap.Int64("user_id", userID),
	)

	if !params.PaymentMethod.Valid() {
		return nil, ErrInvalidPaymentMethod
	}
	if len(params.CartLineIDs) == 0 {
		return nil, ErrEmptySelection
	}

	// 1. User and address must exist and belong together.
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	if _, err := s.addressRepo.GetByID(ctx, params.AddressID, userID); err != nil {
		return nil, err
	}

	paymentStatus := PaymentStatusPending
	if params.PaymentMethod.IsCashOnDelivery() {
		paymentStatus = PaymentStatusCODPending
	}

	// 2. Convert the cart transactionally. The order number column is
	// unique and the generator's collision window is narrow but nonzero,
	// so retry once with a fresh number on conflict.
	var o *Order
	var err error
	for attempt := 0; attempt < 2; attempt++ {
		o, err = s.repo.CreateOrderTx(ctx, CreateOrderTxParams{
			UserID:        userID,
			AddressID:     params.AddressID,
			OrderNumber:   utils.GenerateOrderNumber(),
			PaymentMethod: params.PaymentMethod,
			PaymentStatus: paymentStatus,
			Notes:         params.Notes,
			CartLineIDs:   params.CartLineIDs,
		})
		if !errors.Is(err, ErrDuplicateOrderNumber) {
			break
		}
		log.Warn("order number collision, retrying")
	}
	if err != nil {
		return nil, err
	}

	metrics.OrdersCreated.Inc()

	// 3. COD orders wait for the courier; online methods go through the
	// gateway now.
	if params.PaymentMethod.IsCashOnDelivery() {
		return o, nil
	}

	resp, err := s.gateway.CreatePayment(ctx, payment.CreatePaymentRequest{
		OrderNumber: o.OrderNumber,
		Amount:      o.TotalAmount,
		OrderInfo:   fmt.Sprintf("Payment for order %s", o.OrderNumber),
		ClientIP:    params.ClientIP,
	})
	if err != nil {
		// The order stays PENDING/awaiting payment; the customer can
		// retry via the gateway redirect later.
		log.Error("gateway payment creation failed", zap.Error(err))
		return o, nil
	}

	if resp.Success {
		plan, planErr := PlanPaymentSuccess(o.Snapshot(), resp.TransactionID)
		if planErr != nil {
			return nil, planErr
		}
		if plan != nil {
			if err := s.repo.ApplyPlanTx(ctx, o.ID, plan); err != nil {
				return nil, err
			}
		}
		return s.repo.GetByID(ctx, o.ID)
	}

	return o, nil
}

func (s *service) GetOrder(ctx context.Context, userID int64, isAdmin bool, orderID int64) (*Order, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && o.UserID != userID {
		return nil, ErrUnauthorized
	}
	return o, nil
}

func (s *service) GetOrderByNumber(ctx context.Context, userID int64, isAdmin bool, orderNumber string) (*Order, error) {
	o, err := s.repo.GetByNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	if !isAdmin && o.UserID != userID {
		return nil, ErrUnauthorized
	}
	return o, nil
}

func (s *service) ListOrders(
	ctx context.Context,
	userID int64,
	isAdmin bool,
	filter *FilterInput,
	sort *SortInput,
	limit, page int32,
) ([]*Order, error) {
	return s.repo.List(ctx, userID, isAdmin, filter, sort, limit, page)
}

func (s *service) CancelOrder(ctx context.Context, userID int64, isAdmin bool, orderID int64, reason string) (*Order, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return s.cancel(ctx, o, userID, isAdmin, reason)
}

func (s *service) CancelOrderByNumber(ctx context.Context, userID int64, isAdmin bool, orderNumber, reason string) (*Order, error) {
	o, err := s.repo.GetByNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	return s.cancel(ctx, o, userID, isAdmin, reason)
}

func (s *service) cancel(ctx context.Context, o *Order, userID int64, isAdmin bool, reason string) (*Order, error) {
	if !isAdmin && o.UserID != userID {
		return nil, ErrUnauthorized
	}

	note := "order canceled"
	if reason != "" {
		note = "order canceled: " + reason
	}

	plan, err := PlanOrderTransition(o.Snapshot(), OrderStatusCanceled, note)
	if err != nil {
		return nil, err
	}
	if err := s.repo.ApplyPlanTx(ctx, o.ID, plan); err != nil {
		return nil, err
	}

	metrics.OrdersCanceled.Inc()
	return s.repo.GetByID(ctx, o.ID)
}

// UpdateOrderStatus is the admin progression path; items move in lockstep
// with the order.
func (s *service) UpdateOrderStatus(ctx context.Context, orderID int64, target OrderStatus, notes string) (*Order, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	plan, err := PlanOrderTransition(o.Snapshot(), target, notes)
	if err != nil {
		return nil, err
	}
	if err := s.repo.ApplyPlanTx(ctx, o.ID, plan); err != nil {
		return nil, err
	}

	if target == OrderStatusCanceled {
		metrics.OrdersCanceled.Inc()
	}
	return s.repo.GetByID(ctx, o.ID)
}

func (s *service) UpdatePaymentStatus(ctx context.Context, orderID int64, target PaymentStatus, transactionID string) (*Order, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	plan, err := PlanPaymentStatusUpdate(o.Snapshot(), target, transactionID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.ApplyPlanTx(ctx, o.ID, plan); err != nil {
		return nil, err
	}

	return s.repo.GetByID(ctx, o.ID)
}

func (s *service) UpdateItemStatus(ctx context.Context, orderID, itemID int64, target ItemStatus) (*Order, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	plan, err := PlanItemTransition(o.Snapshot(), itemID, target)
	if err != nil {
		return nil, err
	}
	if err := s.repo.ApplyPlanTx(ctx, o.ID, plan); err != nil {
		return nil, err
	}

	if target == ItemStatusReturned {
		metrics.ItemsReturned.Inc()
	}
	return s.repo.GetByID(ctx, o.ID)
}

// HandlePaymentCallback verifies the gateway signature before trusting any
// parameter, then settles the order idempotently: a replayed callback for
// an already-paid order is a no-op.
func (s *service) HandlePaymentCallback(ctx context.Context, params url.Values) (*CallbackOutcome, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "HandlePaymentCallback"),
	)

	result, err := s.gateway.VerifyCallback(params)
	if err != nil {
		metrics.CallbacksRejected.Inc()
		log.Warn("callback rejected", zap.Error(err))
		return nil, err
	}

	o, err := s.repo.GetByNumber(ctx, result.OrderNumber)
	if err != nil {
		return nil, err
	}

	if !result.Success {
		// Verified but unsuccessful: the order stays awaiting payment.
		log.Info("gateway reported failure",
			zap.String("order_number", result.OrderNumber),
			zap.String("response_code", result.ResponseCode),
		)
		return &CallbackOutcome{Order: o, Success: false}, nil
	}

	plan, err := PlanPaymentSuccess(o.Snapshot(), result.TransactionID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		log.Info("callback replay ignored", zap.String("order_number", o.OrderNumber))
		return &CallbackOutcome{Order: o, Success: true, AlreadySettled: true}, nil
	}

	if err := s.repo.ApplyPlanTx(ctx, o.ID, plan); err != nil {
		return nil, err
	}

	metrics.CallbacksSettled.Inc()

	o, err = s.repo.GetByID(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	return &CallbackOutcome{Order: o, Success: true}, nil
}

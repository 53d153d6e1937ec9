package payment

import "errors"

var ErrVerificationFailed = errors.New("payment callback signature verification failed")

type Method string

const (
	MethodCOD   Method = "COD"
	MethodVNPay Method = "VNPAY"
)

func (m Method) Valid() bool {
	return m == MethodCOD || m == MethodVNPay
}

// IsCashOnDelivery reports whether settlement happens at the door instead
// of through the gateway.
func (m Method) IsCashOnDelivery() bool {
	return m == MethodCOD
}

type CreatePaymentRequest struct {
	OrderNumber string
	Amount      int64
	OrderInfo   string
	ClientIP    string
}

type CreatePaymentResponse struct {
	Success       bool
	TransactionID string
	PaymentURL    string
}

// CallbackResult carries the verified fields of a gateway callback. Nothing
// in it may be trusted unless VerifyCallback returned it without error.
type CallbackResult struct {
	OrderNumber   string
	TransactionID string
	Amount        int64
	Success       bool
	ResponseCode  string
}

package payment

import (
	"context"
	"net/url"
)

// Gateway abstracts the payment provider. The contract is async-capable
// (create -> pending -> callback -> verified settle) even though the
// current VNPay deployment reports success synchronously, so a gateway
// with real asynchronicity can be substituted without touching the order
// state machine.
type Gateway interface {
	CreatePayment(ctx context.Context, req CreatePaymentRequest) (*CreatePaymentResponse, error)
	VerifyCallback(params url.Values) (*CallbackResult, error)
}

package web

import (
	"errors"
	"fmt"
	"html"
	"net/http"

	"laptopshop-be/internal/order"
	"laptopshop-be/internal/payment"

	"github.com/gin-gonic/gin"
)

// PaymentHandler receives the gateway's return redirect. The URL carries the
// full signed parameter set; nothing in it is trusted until the signature
// checks out. The customer's browser lands here, so the response is a plain
// confirmation page rather than JSON.
type PaymentHandler struct {
	orderSvc order.Service
}

func NewPaymentHandler(orderSvc order.Service) *PaymentHandler {
	return &PaymentHandler{orderSvc: orderSvc}
}

func (h *PaymentHandler) Callback(c *gin.Context) {
	outcome, err := h.orderSvc.HandlePaymentCallback(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		if errors.Is(err, payment.ErrVerificationFailed) {
			renderCallbackPage(c, http.StatusBadRequest, "Invalid payment confirmation",
				"The payment confirmation could not be verified. If you were charged, contact support.")
			return
		}
		if errors.Is(err, order.ErrOrderNotFound) {
			renderCallbackPage(c, http.StatusNotFound, "Order not found",
				"The payment confirmation references an unknown order.")
			return
		}
		renderCallbackPage(c, http.StatusInternalServerError, "Something went wrong",
			"The payment could not be processed. Your order was not changed.")
		return
	}

	if !outcome.Success {
		renderCallbackPage(c, http.StatusOK, "Payment failed",
			fmt.Sprintf("Payment for order %s was not completed. You can retry from your order page.",
				html.EscapeString(outcome.Order.OrderNumber)))
		return
	}

	renderCallbackPage(c, http.StatusOK, "Payment successful",
		fmt.Sprintf("Order %s has been paid and confirmed. Thank you for your purchase.",
			html.EscapeString(outcome.Order.OrderNumber)))
}

func renderCallbackPage(c *gin.Context, status int, title, message string) {
	page := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>%s</title></head>
<body>
<h1>%s</h1>
<p>%s</p>
</body>
</html>`, title, title, message)

	c.Data(status, "text/html; charset=utf-8", []byte(page))
}

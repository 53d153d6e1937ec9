package web

import (
	"errors"
	"net/http"

	"laptopshop-be/internal/address"
	"laptopshop-be/internal/cart"
	"laptopshop-be/internal/inventory"
	"laptopshop-be/internal/order"
	"laptopshop-be/internal/payment"
	"laptopshop-be/internal/product"
	"laptopshop-be/internal/user"

	"github.com/gin-gonic/gin"
)

// respondError maps domain errors onto HTTP statuses. Anything unrecognized
// is a 500 with a generic message; the operation was transactional, so
// nothing partial leaked.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, order.ErrItemNotFound),
		errors.Is(err, order.ErrCartLineNotFound),
		errors.Is(err, user.ErrUserNotFound),
		errors.Is(err, address.ErrAddressNotFound),
		errors.Is(err, product.ErrProductNotFound),
		errors.Is(err, cart.ErrLineNotFound),
		errors.Is(err, cart.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

	case errors.Is(err, order.ErrEmptySelection),
		errors.Is(err, order.ErrInvalidPaymentMethod),
		errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, payment.ErrVerificationFailed),
		order.IsInvalidTransition(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	case errors.Is(err, inventory.ErrInsufficientStock),
		errors.Is(err, cart.ErrInsufficientStock),
		errors.Is(err, user.ErrEmailTaken),
		errors.Is(err, order.ErrConcurrentModification):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})

	case errors.Is(err, order.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})

	case errors.Is(err, user.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})

	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

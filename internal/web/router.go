package web

import (
	"net/http"

	"laptopshop-be/internal/middleware"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Auth       *AuthHandler
	Product    *ProductHandler
	Cart       *CartHandler
	Address    *AddressHandler
	Order      *OrderHandler
	AdminOrder *AdminOrderHandler
	Payment    *PaymentHandler
}

// NewRouter wires the middleware chain and route groups. Auth runs before
// the rate limiter so authenticated users get per-user buckets.
func NewRouter(h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.Auth())
	r.Use(middleware.RateLimit())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := r.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
	}

	products := r.Group("/products")
	{
		products.GET("", h.Product.List)
		products.GET("/:id", h.Product.Get)
	}

	cart := r.Group("/cart", middleware.RequireAuth())
	{
		cart.GET("", h.Cart.List)
		cart.POST("/items", h.Cart.Add)
		cart.PUT("/items/:id", h.Cart.Update)
		cart.DELETE("/items/:id", h.Cart.Remove)
	}

	addresses := r.Group("/addresses", middleware.RequireAuth())
	{
		addresses.GET("", h.Address.List)
		addresses.GET("/:id", h.Address.Get)
	}

	orders := r.Group("/orders", middleware.RequireAuth())
	{
		orders.POST("", h.Order.Create)
		orders.GET("", h.Order.List)
		orders.GET("/:id", h.Order.Get)
		orders.POST("/:id/cancel", h.Order.Cancel)
		orders.GET("/number/:number", h.Order.GetByNumber)
		orders.POST("/number/:number/cancel", h.Order.CancelByNumber)
	}

	admin := r.Group("/admin/orders", middleware.RequireAuth(), middleware.RequireAdmin())
	{
		admin.GET("", h.AdminOrder.List)
		admin.GET("/:id", h.AdminOrder.Get)
		admin.PUT("/:id/status", h.AdminOrder.UpdateStatus)
		admin.PUT("/:id/payment-status", h.AdminOrder.UpdatePaymentStatus)
		admin.PUT("/:id/items/:itemId/status", h.AdminOrder.UpdateItemStatus)
	}

	// The gateway redirects the customer's browser here after payment.
	r.GET("/payment/callback", h.Payment.Callback)

	return r
}

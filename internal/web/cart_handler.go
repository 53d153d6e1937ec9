package web

import (
	"net/http"
	"strconv"

	"laptopshop-be/internal/cart"
	"laptopshop-be/internal/utils"

	"github.com/gin-gonic/gin"
)

type CartHandler struct {
	cartSvc cart.Service
}

func NewCartHandler(cartSvc cart.Service) *CartHandler {
	return &CartHandler{cartSvc: cartSvc}
}

type addToCartRequest struct {
	ProductID int64 `json:"productId" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required"`
}

func (h *CartHandler) Add(c *gin.Context) {
	userID, _ := utils.GetUserIDFromContext(c.Request.Context())

	var req addToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	line, err := h.cartSvc.AddToCart(c.Request.Context(), cart.AddParams{
		UserID:    userID,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":        line.ID,
		"productId": line.ProductID,
		"quantity":  line.Quantity,
	})
}

func (h *CartHandler) List(c *gin.Context) {
	userID, _ := utils.GetUserIDFromContext(c.Request.Context())

	lines, err := h.cartSvc.GetCart(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	type lineView struct {
		ID              int64  `json:"id"`
		ProductID       int64  `json:"productId"`
		ProductName     string `json:"productName"`
		ImageURL        string `json:"imageUrl"`
		Price           int64  `json:"price"`
		DiscountPercent int    `json:"discountPercent"`
		Quantity        int    `json:"quantity"`
		Stock           int    `json:"stock"`
	}

	views := make([]lineView, 0, len(lines))
	for _, l := range lines {
		views = append(views, lineView{
			ID:              l.ID,
			ProductID:       l.ProductID,
			ProductName:     l.ProductName,
			ImageURL:        l.ProductImageURL,
			Price:           l.Price,
			DiscountPercent: l.DiscountPercent,
			Quantity:        l.Quantity,
			Stock:           l.Stock,
		})
	}
	c.JSON(http.StatusOK, gin.H{"items": views})
}

type updateCartRequest struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) Update(c *gin.Context) {
	userID, _ := utils.GetUserIDFromContext(c.Request.Context())

	lineID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid cart line id"})
		return
	}

	var req updateCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.cartSvc.UpdateQuantity(c.Request.Context(), cart.UpdateParams{
		UserID:   userID,
		LineID:   lineID,
		Quantity: req.Quantity,
	}); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *CartHandler) Remove(c *gin.Context) {
	userID, _ := utils.GetUserIDFromContext(c.Request.Context())

	lineID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid cart line id"})
		return
	}

	if err := h.cartSvc.Remove(c.Request.Context(), userID, lineID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

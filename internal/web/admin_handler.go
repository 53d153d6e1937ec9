package web

import (
	"net/http"
	"strconv"

	"laptopshop-be/internal/order"

	"github.com/gin-gonic/gin"
)

// AdminOrderHandler exposes the operator progression paths: order status,
// payment status and per-item status. All routes sit behind RequireAdmin.
type AdminOrderHandler struct {
	orderSvc order.Service
}

func NewAdminOrderHandler(orderSvc order.Service) *AdminOrderHandler {
	return &AdminOrderHandler{orderSvc: orderSvc}
}

func (h *AdminOrderHandler) List(c *gin.Context) {
	filter, sort := parseOrderQuery(c)
	limit := parseInt32(c.DefaultQuery("limit", "20"))
	page := parseInt32(c.DefaultQuery("page", "1"))

	orders, err := h.orderSvc.ListOrders(c.Request.Context(), 0, true, filter, sort, limit, page)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": order.ToViews(orders)})
}

func (h *AdminOrderHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	o, err := h.orderSvc.GetOrder(c.Request.Context(), 0, true, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, order.ToView(o))
}

type updateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Notes  string `json:"notes"`
}

func (h *AdminOrderHandler) UpdateStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	var req updateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	target, err := order.ParseOrderStatus(req.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	o, err := h.orderSvc.UpdateOrderStatus(c.Request.Context(), id, target, req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, order.ToView(o))
}

type updatePaymentStatusRequest struct {
	Status        string `json:"status" binding:"required"`
	TransactionID string `json:"transactionId"`
}

func (h *AdminOrderHandler) UpdatePaymentStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	var req updatePaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	target, err := order.ParsePaymentStatus(req.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	o, err := h.orderSvc.UpdatePaymentStatus(c.Request.Context(), id, target, req.TransactionID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, order.ToView(o))
}

type updateItemStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *AdminOrderHandler) UpdateItemStatus(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}
	itemID, err := strconv.ParseInt(c.Param("itemId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item id"})
		return
	}

	var req updateItemStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	target, err := order.ParseItemStatus(req.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	o, err := h.orderSvc.UpdateItemStatus(c.Request.Context(), orderID, itemID, target)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, order.ToView(o))
}

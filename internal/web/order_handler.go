package web

import (
	"net/http"
	"strconv"
	"time"

	"laptopshop-be/internal/order"
	"laptopshop-be/internal/payment"
	"laptopshop-be/internal/utils"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	orderSvc order.Service
}

func NewOrderHandler(orderSvc order.Service) *OrderHandler {
	return &OrderHandler{orderSvc: orderSvc}
}

type createOrderRequest struct {
	AddressID     int64   `json:"addressId" binding:"required"`
	PaymentMethod string  `json:"paymentMethod" binding:"required"`
	Notes         string  `json:"notes"`
	CartLineIDs   []int64 `json:"cartLineIds" binding:"required"`
}

func (h *OrderHandler) Create(c *gin.Context) {
	userID, _ := utils.GetUserIDFromContext(c.Request.Context())

	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	o, err := h.orderSvc.CreateOrder(c.Request.Context(), userID, order.CreateOrderParams{
		AddressID:     req.AddressID,
		PaymentMethod: payment.Method(req.PaymentMethod),
		Notes:         req.Notes,
		CartLineIDs:   req.CartLineIDs,
		ClientIP:      c.ClientIP(),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, order.ToView(o))
}

func (h *OrderHandler) List(c *gin.Context) {
	userID, _ := utils.GetUserIDFromContext(c.Request.Context())

	filter, sort := parseOrderQuery(c)
	limit := parseInt32(c.DefaultQuery("limit", "20"))
	page := parseInt32(c.DefaultQuery("page", "1"))

	orders, err := h.orderSvc.ListOrders(c.Request.Context(), userID, false, filter, sort, limit, page)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": order.ToViews(orders)})
}

func (h *OrderHandler) Get(c *gin.Context) {
	userID, _ := utils.GetUserIDFromContext(c.Request.Context())

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	o, err := h.orderSvc.GetOrder(c.Request.Context(), userID, false, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, order.ToView(o))
}

func (h *OrderHandler) GetByNumber(c *gin.Context) {
	userID, _ := utils.GetUserIDFromContext(c.Request.Context())

	o, err := h.orderSvc.GetOrderByNumber(c.Request.Context(), userID, false, c.Param("number"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, order.ToView(o))
}

func (h *OrderHandler) Cancel(c *gin.Context) {
	userID, _ := utils.GetUserIDFromContext(c.Request.Context())

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	o, err := h.orderSvc.CancelOrder(c.Request.Context(), userID, false, id, c.Query("reason"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, order.ToView(o))
}

func (h *OrderHandler) CancelByNumber(c *gin.Context) {
	userID, _ := utils.GetUserIDFromContext(c.Request.Context())

	o, err := h.orderSvc.CancelOrderByNumber(c.Request.Context(), userID, false, c.Param("number"), c.Query("reason"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, order.ToView(o))
}

func parseOrderQuery(c *gin.Context) (*order.FilterInput, *order.SortInput) {
	var filter order.FilterInput

	if v := c.Query("search"); v != "" {
		filter.Search = &v
	}
	if v := c.Query("status"); v != "" {
		if status, err := order.ParseOrderStatus(v); err == nil {
			filter.Status = &status
		}
	}
	if v := c.Query("dateFrom"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.DateFrom = &t
		}
	}
	if v := c.Query("dateTo"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.DateTo = &t
		}
	}

	var sort *order.SortInput
	if field := c.Query("sortBy"); field != "" {
		sort = &order.SortInput{
			Field:     order.SortField(field),
			Direction: c.DefaultQuery("sortDir", "desc"),
		}
	}

	return &filter, sort
}

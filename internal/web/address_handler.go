package web

import (
	"net/http"
	"strconv"

	"laptopshop-be/internal/address"
	"laptopshop-be/internal/utils"

	"github.com/gin-gonic/gin"
)

type AddressHandler struct {
	addressRepo address.Repository
}

func NewAddressHandler(addressRepo address.Repository) *AddressHandler {
	return &AddressHandler{addressRepo: addressRepo}
}

type addressView struct {
	ID           int64  `json:"id"`
	ReceiverName string `json:"receiverName"`
	Phone        string `json:"phone"`
	AddressLine  string `json:"addressLine"`
	Ward         string `json:"ward"`
	District     string `json:"district"`
	City         string `json:"city"`
	IsDefault    bool   `json:"isDefault"`
}

func toAddressView(a *address.Address) addressView {
	return addressView{
		ID:           a.ID,
		ReceiverName: a.ReceiverName,
		Phone:        a.Phone,
		AddressLine:  a.AddressLine,
		Ward:         a.Ward,
		District:     a.District,
		City:         a.City,
		IsDefault:    a.IsDefault,
	}
}

func (h *AddressHandler) List(c *gin.Context) {
	userID, _ := utils.GetUserIDFromContext(c.Request.Context())

	addrs, err := h.addressRepo.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	views := make([]addressView, 0, len(addrs))
	for _, a := range addrs {
		views = append(views, toAddressView(a))
	}
	c.JSON(http.StatusOK, gin.H{"addresses": views})
}

func (h *AddressHandler) Get(c *gin.Context) {
	userID, _ := utils.GetUserIDFromContext(c.Request.Context())

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid address id"})
		return
	}

	a, err := h.addressRepo.GetByID(c.Request.Context(), id, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toAddressView(a))
}

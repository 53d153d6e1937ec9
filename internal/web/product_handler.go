package web

import (
	"net/http"
	"strconv"

	"laptopshop-be/internal/product"

	"github.com/gin-gonic/gin"
)

type ProductHandler struct {
	productSvc product.Service
}

func NewProductHandler(productSvc product.Service) *ProductHandler {
	return &ProductHandler{productSvc: productSvc}
}

type productView struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	Slug            string `json:"slug"`
	Brand           string `json:"brand"`
	Description     string `json:"description"`
	ImageURL        string `json:"imageUrl"`
	Price           int64  `json:"price"`
	DiscountPercent int    `json:"discountPercent"`
	DiscountedPrice int64  `json:"discountedPrice"`
	QuantityInStock int    `json:"quantityInStock"`
	QuantitySold    int    `json:"quantitySold"`
}

func toProductView(p *product.Product) productView {
	return productView{
		ID:              p.ID,
		Name:            p.Name,
		Slug:            p.Slug,
		Brand:           p.Brand,
		Description:     p.Description,
		ImageURL:        p.ImageURL,
		Price:           p.Price,
		DiscountPercent: p.DiscountPercent,
		DiscountedPrice: p.DiscountedPrice(),
		QuantityInStock: p.QuantityInStock,
		QuantitySold:    p.QuantitySold,
	}
}

func (h *ProductHandler) List(c *gin.Context) {
	var filter product.FilterInput

	if v := c.Query("search"); v != "" {
		filter.Search = &v
	}
	if v := c.Query("brand"); v != "" {
		filter.Brand = &v
	}
	if v := c.Query("minPrice"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			filter.MinPrice = &n
		}
	}
	if v := c.Query("maxPrice"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			filter.MaxPrice = &n
		}
	}
	if v := c.Query("inStock"); v != "" {
		inStock := v == "true"
		filter.InStock = &inStock
	}

	var sort *product.SortInput
	if field := c.Query("sortBy"); field != "" {
		sort = &product.SortInput{
			Field:     product.SortField(field),
			Direction: c.DefaultQuery("sortDir", "desc"),
		}
	}

	limit := parseInt32(c.DefaultQuery("limit", "20"))
	page := parseInt32(c.DefaultQuery("page", "1"))

	products, err := h.productSvc.List(c.Request.Context(), &filter, sort, limit, page)
	if err != nil {
		respondError(c, err)
		return
	}

	views := make([]productView, 0, len(products))
	for _, p := range products {
		views = append(views, toProductView(p))
	}
	c.JSON(http.StatusOK, gin.H{"products": views})
}

func (h *ProductHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	p, err := h.productSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toProductView(p))
}

func parseInt32(s string) int32 {
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0
	}
	return int32(n)
}

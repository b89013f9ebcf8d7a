package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"product-catalog/internal/products"

	"github.com/gin-gonic/gin"
)

const (
	defaultPage = 0
	defaultSize = 10

	userIDHeader = "X-User-Id"
)

type ProductService interface {
	CreateProduct(ctx context.Context, req products.Request, actor string) (products.Response, error)
	GetProducts(ctx context.Context, c products.Criteria, page products.PageRequest) (products.Page, error)
	GetProductByID(ctx context.Context, id int64) (products.Response, error)
	UpdateProduct(ctx context.Context, id int64, req products.Request, actor string) (products.Response, error)
	DeleteProduct(ctx context.Context, id int64, actor string) error
	ReduceProductQuantity(ctx context.Context, id int64, amount int64) error
}

type Handler struct {
	service ProductService
}

func NewHandler(svc ProductService) *Handler {
	return &Handler{service: svc}
}

type productRequest struct {
	Name        string `json:"name" binding:"required" example:"Widget"`
	Description string `json:"description" example:"blue widget"`
	SupplyPrice int64  `json:"supply_price" example:"100"`
	Quantity    int64  `json:"quantity" example:"10"`
}

func (r productRequest) toDomain() products.Request {
	return products.Request{
		Name:        r.Name,
		Description: r.Description,
		SupplyPrice: r.SupplyPrice,
		Quantity:    r.Quantity,
	}
}

type reduceQuantityRequest struct {
	Quantity int64 `json:"quantity" binding:"required" example:"3"`
}

type errorResponse struct {
	Error string `json:"error" example:"product not found"`
}

// CreateProduct godoc
// @Summary      Create a new product
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        X-User-Id  header    string          false  "Acting user"
// @Param        body       body      productRequest  true   "Product data"
// @Success      201        {object}  products.Response
// @Failure      400        {object}  errorResponse
// @Failure      500        {object}  errorResponse
// @Router       /products [post]
func (h *Handler) CreateProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	product, err := h.service.CreateProduct(c.Request.Context(), req.toDomain(), c.GetHeader(userIDHeader))
	if err != nil {
		writeServiceError(c, err, "failed to create product")
		return
	}

	c.JSON(http.StatusCreated, product)
}

// GetProducts godoc
// @Summary      Search products
// @Tags         products
// @Produce      json
// @Param        name         query     string  false  "Name contains (case-insensitive)"
// @Param        description  query     string  false  "Description contains (case-insensitive)"
// @Param        minPrice     query     int     false  "Minimum supply price"
// @Param        maxPrice     query     int     false  "Maximum supply price"
// @Param        minQuantity  query     int     false  "Minimum quantity"
// @Param        maxQuantity  query     int     false  "Maximum quantity"
// @Param        page         query     int     false  "Zero-based page"  default(0)
// @Param        size         query     int     false  "Page size"        default(10)
// @Param        sort         query     []string  false  "field[,asc|desc]; field is createdAt, price or quantity"  collectionFormat(multi)
// @Success      200          {object}  products.Page
// @Failure      400          {object}  errorResponse
// @Failure      500          {object}  errorResponse
// @Router       /products [get]
func (h *Handler) GetProducts(c *gin.Context) {
	criteria, err := parseCriteria(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	page := products.PageRequest{
		Page: parseQueryInt(c.Query("page"), defaultPage, 0),
		Size: parseQueryInt(c.Query("size"), defaultSize, 1),
		Sort: parseSort(c.QueryArray("sort")),
	}

	result, err := h.service.GetProducts(c.Request.Context(), criteria, page)
	if err != nil {
		writeServiceError(c, err, "failed to get products")
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetProductByID godoc
// @Summary      Get a product by ID
// @Tags         products
// @Produce      json
// @Param        id   path      int  true  "Product ID"
// @Success      200  {object}  products.Response
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /products/{id} [get]
func (h *Handler) GetProductByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	product, err := h.service.GetProductByID(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err, "failed to get product")
		return
	}

	c.JSON(http.StatusOK, product)
}

// UpdateProduct godoc
// @Summary      Update a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id         path      int             true   "Product ID"
// @Param        X-User-Id  header    string          false  "Acting user"
// @Param        body       body      productRequest  true   "Product data"
// @Success      200        {object}  products.Response
// @Failure      400        {object}  errorResponse
// @Failure      404        {object}  errorResponse
// @Failure      500        {object}  errorResponse
// @Router       /products/{id} [put]
func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	product, err := h.service.UpdateProduct(c.Request.Context(), id, req.toDomain(), c.GetHeader(userIDHeader))
	if err != nil {
		writeServiceError(c, err, "failed to update product")
		return
	}

	c.JSON(http.StatusOK, product)
}

// DeleteProduct godoc
// @Summary      Delete a product by ID
// @Tags         products
// @Produce      json
// @Param        id         path      int     true   "Product ID"
// @Param        X-User-Id  header    string  false  "Acting user"
// @Success      204
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /products/{id} [delete]
func (h *Handler) DeleteProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteProduct(c.Request.Context(), id, c.GetHeader(userIDHeader)); err != nil {
		writeServiceError(c, err, "failed to delete product")
		return
	}

	c.Status(http.StatusNoContent)
}

// ReduceProductQuantity godoc
// @Summary      Reduce the stock of a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id    path      int                    true  "Product ID"
// @Param        body  body      reduceQuantityRequest  true  "Amount to remove"
// @Success      204
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /products/{id}/reduce-quantity [post]
func (h *Handler) ReduceProductQuantity(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req reduceQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	if err := h.service.ReduceProductQuantity(c.Request.Context(), id, req.Quantity); err != nil {
		writeServiceError(c, err, "failed to reduce product quantity")
		return
	}

	c.Status(http.StatusNoContent)
}

func writeServiceError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, products.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse{Error: products.ErrNotFound.Error()})
	case errors.Is(err, products.ErrInsufficientQuantity):
		c.JSON(http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, products.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: fallback})
	}
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid product id"})
		return 0, false
	}
	return id, true
}

func parseCriteria(c *gin.Context) (products.Criteria, error) {
	var (
		criteria products.Criteria
		err      error
	)
	if v := c.Query("name"); v != "" {
		criteria.Name = &v
	}
	if v := c.Query("description"); v != "" {
		criteria.Description = &v
	}
	if criteria.MinPrice, err = optionalInt(c, "minPrice"); err != nil {
		return criteria, err
	}
	if criteria.MaxPrice, err = optionalInt(c, "maxPrice"); err != nil {
		return criteria, err
	}
	if criteria.MinQuantity, err = optionalInt(c, "minQuantity"); err != nil {
		return criteria, err
	}
	if criteria.MaxQuantity, err = optionalInt(c, "maxQuantity"); err != nil {
		return criteria, err
	}
	return criteria, nil
}

func optionalInt(c *gin.Context, key string) (*int64, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, errors.New("invalid " + key)
	}
	return &v, nil
}

// parseSort reads repeated "field[,direction]" values.
func parseSort(values []string) []products.SortOrder {
	orders := make([]products.SortOrder, 0, len(values))
	for _, raw := range values {
		field, dir, _ := strings.Cut(raw, ",")
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		order := products.SortOrder{Field: products.SortField(field), Direction: products.Asc}
		if strings.EqualFold(strings.TrimSpace(dir), string(products.Desc)) {
			order.Direction = products.Desc
		}
		orders = append(orders, order)
	}
	return orders
}

func parseQueryInt(raw string, fallback, minimum int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < minimum {
		return fallback
	}
	return value
}

package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/wyfcoding/ecommerce/internal/gateway/application"
	"github.com/wyfcoding/ecommerce/internal/gateway/domain"
	"github.com/wyfcoding/ecommerce/pkg/logger"
)

// 错误码
const (
	CodeBadRequest           = "BAD_REQUEST"
	CodeValidation           = "VALIDATION_ERROR"
	CodeProductNotFound      = "PRODUCT_NOT_FOUND"
	CodeProductAlreadyExists = "PRODUCT_ALREADY_EXISTS"
	CodeProductInUse         = "PRODUCT_IN_USE"
	CodeOrderNotFound        = "ORDER_NOT_FOUND"
	CodeUpstream             = "UPSTREAM_ERROR"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("decimal_gte0", func(fl validator.FieldLevel) bool {
			d, ok := fl.Field().Interface().(decimal.Decimal)
			return ok && !d.IsNegative()
		})
	}
}

// Handler 网关 HTTP 处理器
type Handler struct {
	app *application.GatewayService
}

// NewHandler 创建 HTTP 处理器
func NewHandler(app *application.GatewayService) *Handler {
	return &Handler{app: app}
}

// RegisterRoutes 注册路由
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/products/:id", h.GetProduct)
	r.POST("/products", h.CreateProduct)
	r.DELETE("/products/:id", h.DeleteProduct)

	r.GET("/orders", h.ListOrders)
	r.GET("/orders/:id", h.GetOrder)
	r.POST("/orders", h.CreateOrder)
}

// CreateProductRequest 创建商品请求，数值字段用指针区分缺省与 0
type CreateProductRequest struct {
	ID                string `json:"id" binding:"required"`
	Title             string `json:"title" binding:"required"`
	MaximumSpeed      *int   `json:"maximum_speed" binding:"required,min=0"`
	InStock           *int   `json:"in_stock" binding:"required,min=0"`
	PassengerCapacity *int   `json:"passenger_capacity" binding:"required,min=0"`
}

// OrderDetailRequest 订单明细，price 可为 JSON 数字或字符串
type OrderDetailRequest struct {
	ProductID string           `json:"product_id" binding:"required"`
	Price     *decimal.Decimal `json:"price" binding:"required,decimal_gte0"`
	Quantity  int              `json:"quantity" binding:"required,min=1"`
}

// CreateOrderRequest 下单请求体
type CreateOrderRequest struct {
	OrderDetails []OrderDetailRequest `json:"order_details" binding:"required,min=1,dive"`
}

// GetProduct GET /products/:id
func (h *Handler) GetProduct(c *gin.Context) {
	p, err := h.app.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// CreateProduct POST /products
func (h *Handler) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	id, err := h.app.CreateProduct(c.Request.Context(), &domain.Product{
		ID:                req.ID,
		Title:             req.Title,
		MaximumSpeed:      *req.MaximumSpeed,
		InStock:           *req.InStock,
		PassengerCapacity: *req.PassengerCapacity,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id})
}

// DeleteProduct DELETE /products/:id，成功返回 204
func (h *Handler) DeleteProduct(c *gin.Context) {
	if err := h.app.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetOrder GET /orders/:id，明细附带商品图片地址
func (h *Handler) GetOrder(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		abort(c, http.StatusBadRequest, CodeBadRequest, "order id must be an integer")
		return
	}
	order, err := h.app.GetOrder(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// CreateOrder POST /orders
func (h *Handler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	lines := make([]domain.LineItem, 0, len(req.OrderDetails))
	for _, d := range req.OrderDetails {
		lines = append(lines, domain.LineItem{ProductID: d.ProductID, Price: *d.Price, Quantity: d.Quantity})
	}
	id, err := h.app.CreateOrder(c.Request.Context(), lines)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id})
}

// ListOrders GET /orders
func (h *Handler) ListOrders(c *gin.Context) {
	orders, err := h.app.ListOrders(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	if orders == nil {
		orders = []*domain.Order{}
	}
	c.JSON(http.StatusOK, orders)
}

// writeBindError 语法错误与空请求体为 BAD_REQUEST，其余（字段类型、校验规则）为 VALIDATION_ERROR
func writeBindError(c *gin.Context, err error) {
	var syntaxErr *json.SyntaxError
	switch {
	case errors.As(err, &syntaxErr), errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		abort(c, http.StatusBadRequest, CodeBadRequest, "malformed JSON body")
	default:
		abort(c, http.StatusBadRequest, CodeValidation, err.Error())
	}
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrProductNotFound):
		abort(c, http.StatusNotFound, CodeProductNotFound, err.Error())
	case errors.Is(err, domain.ErrOrderNotFound):
		abort(c, http.StatusNotFound, CodeOrderNotFound, err.Error())
	case errors.Is(err, domain.ErrProductInUse):
		abort(c, http.StatusConflict, CodeProductInUse, err.Error())
	case errors.Is(err, domain.ErrProductAlreadyExists):
		abort(c, http.StatusConflict, CodeProductAlreadyExists, err.Error())
	case errors.Is(err, domain.ErrInvalidArgument):
		abort(c, http.StatusBadRequest, CodeValidation, err.Error())
	default:
		logger.Error(c.Request.Context(), "upstream call failed", "path", c.FullPath(), "error", err)
		abort(c, http.StatusBadGateway, CodeUpstream, "upstream service unavailable")
	}
}

func abort(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": code, "message": message})
}

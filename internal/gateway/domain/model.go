// Package domain 网关视角的商品/订单视图与错误
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrProductNotFound      = errors.New("product not found")
	ErrProductAlreadyExists = errors.New("product already exists")
	ErrProductInUse         = errors.New("product in use")
	ErrOrderNotFound        = errors.New("order not found")
	// ErrInvalidArgument 下游判定参数不合法
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUpstream 下游服务不可用或返回未映射的错误
	ErrUpstream = errors.New("upstream service error")
)

// Product 商品视图
type Product struct {
	ID                string `json:"id"`
	Title             string `json:"title"`
	MaximumSpeed      int    `json:"maximum_speed"`
	InStock           int    `json:"in_stock"`
	PassengerCapacity int    `json:"passenger_capacity"`
}

// OrderDetail 订单明细视图
type OrderDetail struct {
	ID        int64           `json:"id"`
	ProductID string          `json:"product_id"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	// Image 仅在单个订单查询时填充
	Image string `json:"image,omitempty"`
}

// Order 订单视图
type Order struct {
	ID           int64          `json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	OrderDetails []*OrderDetail `json:"order_details"`
}

// LineItem 下单明细
type LineItem struct {
	ProductID string
	Price     decimal.Decimal
	Quantity  int
}

// ProductsClient 商品服务
type ProductsClient interface {
	Get(ctx context.Context, id string) (*Product, error)
	List(ctx context.Context) ([]*Product, error)
	Create(ctx context.Context, p *Product) (string, error)
	Delete(ctx context.Context, id string) error
}

// OrdersClient 订单服务
type OrdersClient interface {
	GetOrder(ctx context.Context, id int64) (*Order, error)
	CreateOrder(ctx context.Context, lines []LineItem) (int64, error)
	ListOrders(ctx context.Context) ([]*Order, error)
}

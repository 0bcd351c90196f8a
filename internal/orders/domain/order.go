// Package domain 订单领域模型
package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrOrderNotFound 订单不存在
	ErrOrderNotFound = errors.New("order not found")
	// ErrInvalidOrder 订单内容不合法
	ErrInvalidOrder = errors.New("invalid order")
)

// Order 订单，明细与订单在同一事务中创建
type Order struct {
	ID           int64          `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	CreatedAt    time.Time      `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"column:updated_at" json:"updated_at"`
	OrderDetails []*OrderDetail `gorm:"foreignKey:OrderID" json:"order_details"`
}

func (Order) TableName() string { return "orders" }

// OrderDetail 订单明细。ProductID 指向商品服务，不做跨库约束。
type OrderDetail struct {
	ID        int64           `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	OrderID   int64           `gorm:"column:order_id;not null;index" json:"order_id"`
	ProductID string          `gorm:"column:product_id;not null;index" json:"product_id"`
	Price     decimal.Decimal `gorm:"column:price;type:decimal(18,2);not null" json:"price"`
	Quantity  int             `gorm:"column:quantity;not null" json:"quantity"`
}

func (OrderDetail) TableName() string { return "order_details" }

// NewOrder 校验明细并构造订单
func NewOrder(details []*OrderDetail) (*Order, error) {
	if len(details) == 0 {
		return nil, fmt.Errorf("%w: order_details must not be empty", ErrInvalidOrder)
	}
	for i, d := range details {
		if d == nil {
			return nil, fmt.Errorf("%w: order_details[%d] is empty", ErrInvalidOrder, i)
		}
		if d.ProductID == "" {
			return nil, fmt.Errorf("%w: order_details[%d].product_id is required", ErrInvalidOrder, i)
		}
		if d.Quantity < 1 {
			return nil, fmt.Errorf("%w: order_details[%d].quantity must be positive", ErrInvalidOrder, i)
		}
		if d.Price.IsNegative() {
			return nil, fmt.Errorf("%w: order_details[%d].price must not be negative", ErrInvalidOrder, i)
		}
	}
	return &Order{OrderDetails: details}, nil
}

// Total 订单总额
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, d := range o.OrderDetails {
		total = total.Add(d.Price.Mul(decimal.NewFromInt(int64(d.Quantity))))
	}
	return total
}

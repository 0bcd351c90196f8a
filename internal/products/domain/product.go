// Package domain 商品领域模型、仓储接口与领域错误
package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrProductNotFound 商品不存在
	ErrProductNotFound = errors.New("product not found")
	// ErrProductAlreadyExists 商品 ID 已存在
	ErrProductAlreadyExists = errors.New("product already exists")
	// ErrProductInUse 商品仍被订单引用，不能删除
	ErrProductInUse = errors.New("product in use")
	// ErrInvalidProduct 商品字段不合法
	ErrInvalidProduct = errors.New("invalid product")
)

// Product 商品，ID 由调用方指定
type Product struct {
	ID                string    `gorm:"column:id;primaryKey" json:"id"`
	Title             string    `gorm:"column:title;not null" json:"title"`
	MaximumSpeed      int       `gorm:"column:maximum_speed;not null" json:"maximum_speed"`
	InStock           int       `gorm:"column:in_stock;not null;default:0" json:"in_stock"`
	PassengerCapacity int       `gorm:"column:passenger_capacity;not null" json:"passenger_capacity"`
	CreatedAt         time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt         time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Product) TableName() string { return "products" }

// Validate 校验创建时的字段
func (p *Product) Validate() error {
	switch {
	case p.ID == "":
		return fmt.Errorf("%w: id is required", ErrInvalidProduct)
	case p.Title == "":
		return fmt.Errorf("%w: title is required", ErrInvalidProduct)
	case p.MaximumSpeed < 0:
		return fmt.Errorf("%w: maximum_speed must not be negative", ErrInvalidProduct)
	case p.InStock < 0:
		return fmt.Errorf("%w: in_stock must not be negative", ErrInvalidProduct)
	case p.PassengerCapacity < 0:
		return fmt.Errorf("%w: passenger_capacity must not be negative", ErrInvalidProduct)
	}
	return nil
}

// Package postgres 订单仓储的 GORM 实现
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/wyfcoding/ecommerce/internal/orders/domain"
	"github.com/wyfcoding/ecommerce/pkg/db"
	"github.com/wyfcoding/ecommerce/pkg/logger"
	"gorm.io/gorm"
)

type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(gdb *gorm.DB) domain.OrderRepository {
	return &orderRepository{db: gdb}
}

// AutoMigrate 建表（不含 outbox，见 messaging 包）
func AutoMigrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(&domain.Order{}, &domain.OrderDetail{})
}

func (r *orderRepository) withDetails(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("OrderDetails", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("id")
	})
}

func (r *orderRepository) Get(ctx context.Context, id int64) (*domain.Order, error) {
	var o domain.Order
	if err := r.withDetails(ctx).Where("id = ?", id).First(&o).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %d", domain.ErrOrderNotFound, id)
		}
		return nil, fmt.Errorf("failed to get order %d: %w", id, err)
	}
	return &o, nil
}

func (r *orderRepository) List(ctx context.Context) ([]*domain.Order, error) {
	var orders []*domain.Order
	if err := r.withDetails(ctx).Order("id DESC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

func (r *orderRepository) ListByProductID(ctx context.Context, productID string) ([]*domain.Order, error) {
	sub := r.db.WithContext(ctx).Model(&domain.OrderDetail{}).Select("order_id").Where("product_id = ?", productID)

	var orders []*domain.Order
	if err := r.withDetails(ctx).Where("id IN (?)", sub).Order("id DESC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders by product %s: %w", productID, err)
	}
	return orders, nil
}

func (r *orderRepository) Create(ctx context.Context, order *domain.Order, inTx func(tx any) error) error {
	err := db.WithTx(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		if inTx != nil {
			return inTx(tx)
		}
		return nil
	})
	if err != nil {
		logger.Error(ctx, "order_repository.create failed", "lines", len(order.OrderDetails), "error", err)
		return err
	}
	return nil
}

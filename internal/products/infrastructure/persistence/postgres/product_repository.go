// Package postgres 商品仓储的 GORM 实现，方言由 pkg/db 决定（默认 PostgreSQL）
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wyfcoding/ecommerce/internal/products/domain"
	"github.com/wyfcoding/ecommerce/pkg/db"
	"github.com/wyfcoding/ecommerce/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓储
func NewProductRepository(gdb *gorm.DB) domain.ProductRepository {
	return &productRepository{db: gdb}
}

// AutoMigrate 建表
func AutoMigrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(&domain.Product{}, &domain.StockLedgerEntry{})
}

func (r *productRepository) Get(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, id)
		}
		return nil, fmt.Errorf("failed to get product %s: %w", id, err)
	}
	return &p, nil
}

func (r *productRepository) List(ctx context.Context) ([]*domain.Product, error) {
	var products []*domain.Product
	if err := r.db.WithContext(ctx).Order("id").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

func (r *productRepository) Create(ctx context.Context, p *domain.Product) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: %s", domain.ErrProductAlreadyExists, p.ID)
		}
		logger.Error(ctx, "product_repository.create failed", "product_id", p.ID, "error", err)
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

func (r *productRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Product{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete product %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", domain.ErrProductNotFound, id)
	}
	return nil
}

// DecrementStock 先插入幂等记录，冲突即视为重复投递；否则锁行扣减，库存不低于 0。
func (r *productRepository) DecrementStock(ctx context.Context, d domain.StockDecrement) (*domain.DecrementResult, error) {
	result := &domain.DecrementResult{}

	err := db.WithTx(ctx, r.db, func(tx *gorm.DB) error {
		entry := &domain.StockLedgerEntry{
			OrderID:   d.OrderID,
			LineIndex: d.LineIndex,
			ProductID: d.ProductID,
			Quantity:  d.Quantity,
			AppliedAt: time.Now(),
		}
		ins := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(entry)
		if ins.Error != nil {
			return fmt.Errorf("insert stock ledger: %w", ins.Error)
		}
		if ins.RowsAffected == 0 {
			result.Outcome = domain.DecrementDuplicate
			return nil
		}

		var p domain.Product
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("in_stock").
			Where("id = ?", d.ProductID).
			Take(&p).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			result.Outcome = domain.DecrementProductMissing
			return nil
		}
		if err != nil {
			return fmt.Errorf("lock product: %w", err)
		}

		after := p.InStock - d.Quantity
		if after < 0 {
			result.Shortfall = -after
			after = 0
		}
		if err := tx.Model(&domain.Product{}).
			Where("id = ?", d.ProductID).
			Updates(map[string]any{"in_stock": after, "updated_at": time.Now()}).Error; err != nil {
			return fmt.Errorf("update stock: %w", err)
		}

		result.Outcome = domain.DecrementApplied
		result.Before = p.InStock
		result.After = after
		return nil
	})
	if err != nil {
		logger.Error(ctx, "product_repository.decrement_stock failed",
			"order_id", d.OrderID, "line_index", d.LineIndex, "product_id", d.ProductID, "error", err)
		return nil, err
	}
	return result, nil
}

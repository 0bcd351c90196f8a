// Package application 商品服务用例：查询、创建、删除守卫与库存扣减
package application

import (
	"context"
	"fmt"

	"github.com/wyfcoding/ecommerce/internal/products/domain"
	"github.com/wyfcoding/ecommerce/pkg/logger"
)

// ProductService 商品应用服务
type ProductService struct {
	repo   domain.ProductRepository
	orders domain.OrderChecker
	cache  domain.ProductCache
}

// NewProductService 创建商品应用服务，cache 可为 nil
func NewProductService(repo domain.ProductRepository, orders domain.OrderChecker, cache domain.ProductCache) *ProductService {
	return &ProductService{repo: repo, orders: orders, cache: cache}
}

// Get 读取商品，优先走缓存
func (s *ProductService) Get(ctx context.Context, id string) (*domain.Product, error) {
	if s.cache != nil {
		p, err := s.cache.Get(ctx, id)
		if err != nil {
			logger.Warn(ctx, "product cache read failed", "product_id", id, "error", err)
		} else if p != nil {
			return p, nil
		}
	}

	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, p); err != nil {
			logger.Warn(ctx, "product cache write failed", "product_id", id, "error", err)
		}
	}
	return p, nil
}

// List 列出全部商品
func (s *ProductService) List(ctx context.Context) ([]*domain.Product, error) {
	return s.repo.List(ctx)
}

// Create 校验并创建商品
func (s *ProductService) Create(ctx context.Context, p *domain.Product) (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return "", err
	}
	logger.Info(ctx, "product created", "product_id", p.ID)
	return p.ID, nil
}

// Delete 删除商品。先向订单服务确认无订单引用，检查与删除之间存在竞态窗口，
// 两个服务各自持有数据库，无法放进同一事务。
func (s *ProductService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}

	orderIDs, err := s.orders.ListOrderIDsByProductID(ctx, id)
	if err != nil {
		return fmt.Errorf("check orders for product %s: %w", id, err)
	}
	if len(orderIDs) > 0 {
		logger.Info(ctx, "product deletion rejected", "product_id", id, "orders", len(orderIDs))
		return fmt.Errorf("%w: %s", domain.ErrProductInUse, id)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	logger.Info(ctx, "product deleted", "product_id", id)
	return nil
}

// ApplyOrderCreated 按订单明细逐行扣减库存，重复投递的明细不会再次扣减
func (s *ProductService) ApplyOrderCreated(ctx context.Context, event *domain.OrderCreatedEvent) ([]domain.DecrementResult, error) {
	decrements := event.Decrements()
	results := make([]domain.DecrementResult, 0, len(decrements))

	for _, d := range decrements {
		res, err := s.repo.DecrementStock(ctx, d)
		if err != nil {
			return results, fmt.Errorf("decrement stock for order %d line %d: %w", d.OrderID, d.LineIndex, err)
		}
		results = append(results, *res)

		switch res.Outcome {
		case domain.DecrementApplied:
			s.invalidate(ctx, d.ProductID)
			if res.Shortfall > 0 {
				logger.Warn(ctx, "stock floored at zero",
					"order_id", d.OrderID, "product_id", d.ProductID, "quantity", d.Quantity, "shortfall", res.Shortfall)
			}
		case domain.DecrementDuplicate:
			logger.Info(ctx, "duplicate stock decrement skipped", "order_id", d.OrderID, "line_index", d.LineIndex)
		case domain.DecrementProductMissing:
			logger.Warn(ctx, "stock decrement for unknown product", "order_id", d.OrderID, "product_id", d.ProductID)
		}
	}
	return results, nil
}

func (s *ProductService) invalidate(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, id); err != nil {
		logger.Warn(ctx, "product cache invalidation failed", "product_id", id, "error", err)
	}
}

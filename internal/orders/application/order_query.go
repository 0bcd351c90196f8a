package application

import (
	"context"

	"github.com/wyfcoding/ecommerce/internal/orders/domain"
)

// OrderQueryService 订单查询服务
type OrderQueryService struct {
	repo domain.OrderRepository
}

// NewOrderQueryService 创建订单查询服务
func NewOrderQueryService(repo domain.OrderRepository) *OrderQueryService {
	return &OrderQueryService{repo: repo}
}

// GetOrder 查询订单
func (s *OrderQueryService) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	return s.repo.Get(ctx, id)
}

// ListOrders 按 ID 倒序列出订单
func (s *OrderQueryService) ListOrders(ctx context.Context) ([]*domain.Order, error) {
	return s.repo.List(ctx)
}

// ListOrdersByProductID 含有该商品明细的订单
func (s *OrderQueryService) ListOrdersByProductID(ctx context.Context, productID string) ([]*domain.Order, error) {
	return s.repo.ListByProductID(ctx, productID)
}

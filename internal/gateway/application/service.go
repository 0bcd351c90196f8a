package application

import (
	"context"

	"github.com/wyfcoding/ecommerce/internal/gateway/domain"
)

// GatewayService 汇总网关对外的全部操作
type GatewayService struct {
	products    domain.ProductsClient
	orders      domain.OrdersClient
	coordinator *OrderCoordinator
	enricher    *OrderEnricher
}

// NewGatewayService 创建网关应用服务
func NewGatewayService(products domain.ProductsClient, orders domain.OrdersClient, imageRoot string) *GatewayService {
	return &GatewayService{
		products:    products,
		orders:      orders,
		coordinator: NewOrderCoordinator(products, orders),
		enricher:    NewOrderEnricher(orders, imageRoot),
	}
}

// GetProduct 查询商品
func (s *GatewayService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	return s.products.Get(ctx, id)
}

// CreateProduct 创建商品
func (s *GatewayService) CreateProduct(ctx context.Context, p *domain.Product) (string, error) {
	return s.products.Create(ctx, p)
}

// DeleteProduct 删除商品
func (s *GatewayService) DeleteProduct(ctx context.Context, id string) error {
	return s.products.Delete(ctx, id)
}

// GetOrder 查询订单，带图片地址
func (s *GatewayService) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	return s.enricher.GetOrder(ctx, id)
}

// CreateOrder 校验商品存在后下单
func (s *GatewayService) CreateOrder(ctx context.Context, lines []domain.LineItem) (int64, error) {
	return s.coordinator.CreateOrder(ctx, lines)
}

// ListOrders 不补全图片
func (s *GatewayService) ListOrders(ctx context.Context) ([]*domain.Order, error) {
	return s.orders.ListOrders(ctx)
}

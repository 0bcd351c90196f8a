// Package application 网关用例：下单协调、订单图片补全、商品透传
package application

import (
	"context"
	"fmt"

	"github.com/wyfcoding/ecommerce/internal/gateway/domain"
	"github.com/wyfcoding/ecommerce/pkg/logger"
)

// OrderCoordinator 下单前校验商品存在，再转交订单服务。
// 校验是快照读，校验之后商品仍可能被删除。
type OrderCoordinator struct {
	products domain.ProductsClient
	orders   domain.OrdersClient
}

// NewOrderCoordinator 创建下单协调器
func NewOrderCoordinator(products domain.ProductsClient, orders domain.OrdersClient) *OrderCoordinator {
	return &OrderCoordinator{products: products, orders: orders}
}

// CreateOrder 任一明细引用未知商品时整单拒绝，错误中带第一个未知的商品 ID
func (c *OrderCoordinator) CreateOrder(ctx context.Context, lines []domain.LineItem) (int64, error) {
	products, err := c.products.List(ctx)
	if err != nil {
		return 0, err
	}

	known := make(map[string]struct{}, len(products))
	for _, p := range products {
		known[p.ID] = struct{}{}
	}
	for _, l := range lines {
		if _, ok := known[l.ProductID]; !ok {
			logger.Info(ctx, "order rejected, unknown product", "product_id", l.ProductID)
			return 0, fmt.Errorf("%w: %s", domain.ErrProductNotFound, l.ProductID)
		}
	}

	return c.orders.CreateOrder(ctx, lines)
}

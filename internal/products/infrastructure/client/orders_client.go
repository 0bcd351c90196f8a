// Package client 商品服务对订单服务的同步调用
package client

import (
	"context"
	"fmt"

	ordersv1 "github.com/wyfcoding/ecommerce/go-api/orders/v1"
	"github.com/wyfcoding/ecommerce/internal/products/domain"
)

type ordersClient struct {
	cli ordersv1.OrdersServiceClient
}

// NewOrdersClient 删除守卫使用的订单查询
func NewOrdersClient(cli ordersv1.OrdersServiceClient) domain.OrderChecker {
	return &ordersClient{cli: cli}
}

func (c *ordersClient) ListOrderIDsByProductID(ctx context.Context, productID string) ([]int64, error) {
	resp, err := c.cli.ListOrdersByProductID(ctx, &ordersv1.ListOrdersByProductIDRequest{ProductID: productID})
	if err != nil {
		return nil, fmt.Errorf("orders.ListOrdersByProductID: %w", err)
	}
	ids := make([]int64, 0, len(resp.Orders))
	for _, o := range resp.Orders {
		ids = append(ids, o.ID)
	}
	return ids, nil
}

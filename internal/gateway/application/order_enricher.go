package application

import (
	"context"
	"strings"

	"github.com/wyfcoding/ecommerce/internal/gateway/domain"
)

// OrderEnricher 为订单明细补上商品图片地址 <imageRoot>/<product_id>.jpg
type OrderEnricher struct {
	orders    domain.OrdersClient
	imageRoot string
}

// NewOrderEnricher imageRoot 末尾的 "/" 会被去掉
func NewOrderEnricher(orders domain.OrdersClient, imageRoot string) *OrderEnricher {
	return &OrderEnricher{orders: orders, imageRoot: strings.TrimRight(imageRoot, "/")}
}

// ImageURL 商品图片地址
func (e *OrderEnricher) ImageURL(productID string) string {
	return e.imageRoot + "/" + productID + ".jpg"
}

// GetOrder 查询订单并为每条明细填充图片地址
func (e *OrderEnricher) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	order, err := e.orders.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, d := range order.OrderDetails {
		d.Image = e.ImageURL(d.ProductID)
	}
	return order, nil
}

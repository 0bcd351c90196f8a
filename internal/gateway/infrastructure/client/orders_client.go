package client

import (
	"context"

	ordersv1 "github.com/wyfcoding/ecommerce/go-api/orders/v1"
	"github.com/wyfcoding/ecommerce/internal/gateway/domain"
)

type ordersClient struct {
	cli ordersv1.OrdersServiceClient
}

// NewOrdersClient 基于订单服务 gRPC 客户端创建网关适配器
func NewOrdersClient(cli ordersv1.OrdersServiceClient) domain.OrdersClient {
	return &ordersClient{cli: cli}
}

// GetOrder 查询订单及明细
func (c *ordersClient) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	resp, err := c.cli.GetOrder(ctx, &ordersv1.GetOrderRequest{ID: id})
	if err != nil {
		return nil, fromStatus(err, domain.ErrOrderNotFound)
	}
	return fromOrder(resp.Order), nil
}

// CreateOrder 创建订单，价格以十进制字符串传输
func (c *ordersClient) CreateOrder(ctx context.Context, lines []domain.LineItem) (int64, error) {
	req := &ordersv1.CreateOrderRequest{OrderDetails: make([]*ordersv1.OrderDetail, 0, len(lines))}
	for _, l := range lines {
		req.OrderDetails = append(req.OrderDetails, &ordersv1.OrderDetail{
			ProductID: l.ProductID,
			Price:     l.Price,
			Quantity:  l.Quantity,
		})
	}
	resp, err := c.cli.CreateOrder(ctx, req)
	if err != nil {
		return 0, fromStatus(err, domain.ErrOrderNotFound)
	}
	return resp.ID, nil
}

// ListOrders 列出全部订单
func (c *ordersClient) ListOrders(ctx context.Context) ([]*domain.Order, error) {
	resp, err := c.cli.ListOrders(ctx, &ordersv1.ListOrdersRequest{})
	if err != nil {
		return nil, fromStatus(err, domain.ErrOrderNotFound)
	}
	out := make([]*domain.Order, 0, len(resp.Orders))
	for _, o := range resp.Orders {
		out = append(out, fromOrder(o))
	}
	return out, nil
}

func fromOrder(o *ordersv1.Order) *domain.Order {
	if o == nil {
		return nil
	}
	out := &domain.Order{
		ID:           o.ID,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
		OrderDetails: make([]*domain.OrderDetail, 0, len(o.OrderDetails)),
	}
	for _, d := range o.OrderDetails {
		out.OrderDetails = append(out.OrderDetails, &domain.OrderDetail{
			ID:        d.ID,
			ProductID: d.ProductID,
			Price:     d.Price,
			Quantity:  d.Quantity,
		})
	}
	return out
}

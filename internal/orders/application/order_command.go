// Package application 订单服务用例
package application

import (
	"context"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/ecommerce/internal/orders/domain"
	"github.com/wyfcoding/ecommerce/pkg/logger"
	"github.com/wyfcoding/ecommerce/pkg/metrics"
)

// OrderLineInput 创建订单的一条明细
type OrderLineInput struct {
	ProductID string
	Price     decimal.Decimal
	Quantity  int
}

// CreateOrderCommand 创建订单命令
type CreateOrderCommand struct {
	Lines []OrderLineInput
}

// OrderCommandService 订单命令服务
type OrderCommandService struct {
	repo      domain.OrderRepository
	publisher domain.EventPublisher
	metrics   *metrics.Metrics
}

// NewOrderCommandService m 可为 nil
func NewOrderCommandService(repo domain.OrderRepository, publisher domain.EventPublisher, m *metrics.Metrics) *OrderCommandService {
	return &OrderCommandService{repo: repo, publisher: publisher, metrics: m}
}

// CreateOrder 保存订单并在同一事务中写入 order_created 事件
func (s *OrderCommandService) CreateOrder(ctx context.Context, cmd CreateOrderCommand) (int64, error) {
	details := make([]*domain.OrderDetail, 0, len(cmd.Lines))
	for _, l := range cmd.Lines {
		details = append(details, &domain.OrderDetail{ProductID: l.ProductID, Price: l.Price, Quantity: l.Quantity})
	}
	order, err := domain.NewOrder(details)
	if err != nil {
		return 0, err
	}

	err = s.repo.Create(ctx, order, func(tx any) error {
		event := domain.NewOrderCreatedEvent(order)
		return s.publisher.PublishInTx(ctx, tx, domain.OrderCreatedTopic, strconv.FormatInt(order.ID, 10), event)
	})
	if err != nil {
		return 0, err
	}

	if s.metrics != nil {
		s.metrics.OrdersCreated.Inc()
	}
	logger.Info(ctx, "order created", "order_id", order.ID, "lines", len(order.OrderDetails), "total", order.Total().StringFixed(2))
	return order.ID, nil
}

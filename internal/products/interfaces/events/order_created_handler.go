// Package events 商品服务的事件消费者
package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/wyfcoding/ecommerce/internal/products/application"
	"github.com/wyfcoding/ecommerce/internal/products/domain"
	"github.com/wyfcoding/ecommerce/pkg/logger"
	"github.com/wyfcoding/ecommerce/pkg/metrics"
	"github.com/wyfcoding/ecommerce/pkg/mq"
)

// OrderCreatedHandler 监听订单创建事件并扣减库存
type OrderCreatedHandler struct {
	app     *application.ProductService
	metrics *metrics.Metrics
}

// NewOrderCreatedHandler m 可为 nil
func NewOrderCreatedHandler(app *application.ProductService, m *metrics.Metrics) *OrderCreatedHandler {
	return &OrderCreatedHandler{app: app, metrics: m}
}

// Handle 实现 mq.Handler。无法解析的消息返回永久错误直接进入死信，
// 扣减失败返回普通错误由 broker 重试，已处理的明细靠幂等记录跳过。
func (h *OrderCreatedHandler) Handle(ctx context.Context, msg *mq.Message) error {
	var event domain.OrderCreatedEvent
	if err := msg.UnmarshalPayload(&event); err != nil {
		h.failed(msg.Topic)
		return mq.Permanent(fmt.Errorf("decode order_created: %w", err))
	}
	if event.Order.ID == 0 {
		h.failed(msg.Topic)
		return mq.Permanent(errors.New("decode order_created: missing order id"))
	}

	results, err := h.app.ApplyOrderCreated(ctx, &event)
	if err != nil {
		h.failed(msg.Topic)
		return err
	}

	for _, r := range results {
		h.observe(r.Outcome)
	}
	logger.Debug(ctx, "order_created handled", "order_id", event.Order.ID, "lines", len(results))
	return nil
}

// Subscribe 注册消费者并阻塞运行直到 ctx 结束
func (h *OrderCreatedHandler) Subscribe(ctx context.Context, broker mq.Broker, group string, workers int) error {
	sub, err := broker.Subscribe(domain.OrderCreatedTopic, group, workers)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", domain.OrderCreatedTopic, err)
	}
	defer sub.Close()

	logger.Info(ctx, "Consuming order events for stock decrement", "topic", domain.OrderCreatedTopic, "group", group)
	return sub.Run(ctx, h.Handle)
}

func (h *OrderCreatedHandler) observe(o domain.DecrementOutcome) {
	if h.metrics == nil {
		return
	}
	switch o {
	case domain.DecrementApplied:
		h.metrics.StockDecrements.Inc()
	case domain.DecrementDuplicate:
		h.metrics.StockDuplicatesSkipped.Inc()
	}
}

func (h *OrderCreatedHandler) failed(topic string) {
	if h.metrics != nil {
		h.metrics.EventsFailed.WithLabelValues(topic).Inc()
	}
}

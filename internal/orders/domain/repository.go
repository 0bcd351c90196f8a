package domain

import "context"

// OrderRepository 订单仓储
type OrderRepository interface {
	Get(ctx context.Context, id int64) (*Order, error)
	// List 按 ID 倒序返回全部订单
	List(ctx context.Context) ([]*Order, error)
	ListByProductID(ctx context.Context, productID string) ([]*Order, error)
	// Create 在一个事务内写入订单与明细，随后以同一事务调用 inTx，inTx 出错则整体回滚
	Create(ctx context.Context, order *Order, inTx func(tx any) error) error
}

// EventPublisher 事务内事件发布（outbox）
type EventPublisher interface {
	PublishInTx(ctx context.Context, tx any, topic, key string, event any) error
}

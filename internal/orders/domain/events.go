package domain

import "github.com/shopspring/decimal"

// OrderCreatedTopic 订单创建事件 topic
const OrderCreatedTopic = "orders.order_created"

// OrderCreatedEvent 订单创建事件，携带完整订单
type OrderCreatedEvent struct {
	Order OrderPayload `json:"order"`
}

// OrderPayload 事件中的订单快照
type OrderPayload struct {
	ID           int64           `json:"id"`
	OrderDetails []DetailPayload `json:"order_details"`
}

// DetailPayload 事件中的订单明细，价格为十进制字符串
type DetailPayload struct {
	ProductID string          `json:"product_id"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// NewOrderCreatedEvent 由已保存的订单构造事件
func NewOrderCreatedEvent(o *Order) OrderCreatedEvent {
	details := make([]DetailPayload, 0, len(o.OrderDetails))
	for _, d := range o.OrderDetails {
		details = append(details, DetailPayload{ProductID: d.ProductID, Price: d.Price, Quantity: d.Quantity})
	}
	return OrderCreatedEvent{Order: OrderPayload{ID: o.ID, OrderDetails: details}}
}

package domain

// OrderCreatedTopic 订单创建事件 topic
const OrderCreatedTopic = "orders.order_created"

// OrderCreatedEvent 订单服务发布的订单创建事件，只解析库存扣减需要的字段
type OrderCreatedEvent struct {
	Order OrderSnapshot `json:"order"`
}

// OrderSnapshot 事件中的订单
type OrderSnapshot struct {
	ID           int64       `json:"id"`
	OrderDetails []OrderLine `json:"order_details"`
}

// OrderLine 事件中的订单明细
type OrderLine struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// Decrements 将事件展开为逐行扣减请求，行号即明细在订单中的下标
func (e *OrderCreatedEvent) Decrements() []StockDecrement {
	out := make([]StockDecrement, 0, len(e.Order.OrderDetails))
	for i, d := range e.Order.OrderDetails {
		out = append(out, StockDecrement{
			OrderID:   e.Order.ID,
			LineIndex: i,
			ProductID: d.ProductID,
			Quantity:  d.Quantity,
		})
	}
	return out
}

package domain

import "context"

// ProductRepository 商品仓储
type ProductRepository interface {
	Get(ctx context.Context, id string) (*Product, error)
	List(ctx context.Context) ([]*Product, error)
	Create(ctx context.Context, product *Product) error
	Delete(ctx context.Context, id string) error
	// DecrementStock 在同一事务中写入幂等记录并扣减库存，库存最低为 0
	DecrementStock(ctx context.Context, d StockDecrement) (*DecrementResult, error)
}

// OrderChecker 查询订单服务中是否有订单引用该商品
type OrderChecker interface {
	ListOrderIDsByProductID(ctx context.Context, productID string) ([]int64, error)
}

// ProductCache 商品读缓存
type ProductCache interface {
	Get(ctx context.Context, id string) (*Product, error)
	Set(ctx context.Context, product *Product) error
	Invalidate(ctx context.Context, id string) error
}

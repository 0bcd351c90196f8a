package domain

import "time"

// StockLedgerEntry 库存扣减幂等记录，(order_id, line_index) 唯一
type StockLedgerEntry struct {
	OrderID   int64     `gorm:"column:order_id;primaryKey;autoIncrement:false"`
	LineIndex int       `gorm:"column:line_index;primaryKey;autoIncrement:false"`
	ProductID string    `gorm:"column:product_id;not null;index"`
	Quantity  int       `gorm:"column:quantity;not null"`
	AppliedAt time.Time `gorm:"column:applied_at;not null"`
}

func (StockLedgerEntry) TableName() string { return "stock_ledger" }

// StockDecrement 一条订单明细对应的扣减请求
type StockDecrement struct {
	OrderID   int64
	LineIndex int
	ProductID string
	Quantity  int
}

// DecrementOutcome 单条扣减的结果
type DecrementOutcome int

const (
	// DecrementApplied 已扣减
	DecrementApplied DecrementOutcome = iota
	// DecrementDuplicate 重复投递，已跳过
	DecrementDuplicate
	// DecrementProductMissing 商品已不存在，只记账
	DecrementProductMissing
)

// String 日志用
func (o DecrementOutcome) String() string {
	switch o {
	case DecrementApplied:
		return "applied"
	case DecrementDuplicate:
		return "duplicate"
	case DecrementProductMissing:
		return "product_missing"
	default:
		return "unknown"
	}
}

// DecrementResult 扣减结果，Shortfall 为库存不足被截断的数量
type DecrementResult struct {
	Outcome   DecrementOutcome
	Before    int
	After     int
	Shortfall int
}

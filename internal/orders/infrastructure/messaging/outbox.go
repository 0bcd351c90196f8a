// Package messaging 订单事件的 outbox 写入与转发
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wyfcoding/ecommerce/internal/orders/domain"
	"gorm.io/gorm"
)

// 消息状态
const (
	StatusPending = "pending"
	StatusSent    = "sent"
)

// OutboxMessage 与业务数据同事务写入的待发送消息
type OutboxMessage struct {
	ID        string    `gorm:"column:id;type:varchar(36);primaryKey"`
	Topic     string    `gorm:"column:topic;type:varchar(128);not null"`
	Key       string    `gorm:"column:msg_key;type:varchar(128)"`
	Payload   string    `gorm:"column:payload;type:text;not null"`
	Status    string    `gorm:"column:status;type:varchar(16);not null;index:idx_outbox_status_created,priority:1"`
	Attempts  int       `gorm:"column:attempts;not null;default:0"`
	LastError string    `gorm:"column:last_error;type:varchar(512)"`
	CreatedAt time.Time `gorm:"column:created_at;index:idx_outbox_status_created,priority:2"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (OutboxMessage) TableName() string { return "outbox_messages" }

// AutoMigrate 建 outbox 表
func AutoMigrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(&OutboxMessage{})
}

// outboxPublisher 基于 Outbox 模式的事件发布者实现
type outboxPublisher struct{}

// NewOutboxPublisher 创建 outbox 发布者，消息由 Relay 异步投递
func NewOutboxPublisher() domain.EventPublisher {
	return &outboxPublisher{}
}

// PublishInTx 在调用方事务中写入 outbox
func (p *outboxPublisher) PublishInTx(ctx context.Context, tx any, topic, key string, event any) error {
	gormTx, ok := tx.(*gorm.DB)
	if !ok {
		return fmt.Errorf("tx must be *gorm.DB, got %T", tx)
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	msg := &OutboxMessage{
		ID:      uuid.NewString(),
		Topic:   topic,
		Key:     key,
		Payload: string(payload),
		Status:  StatusPending,
	}
	if err := gormTx.WithContext(ctx).Create(msg).Error; err != nil {
		return fmt.Errorf("insert outbox message: %w", err)
	}
	return nil
}

package messaging

import (
	"context"
	"fmt"
	"time"

	"github.com/wyfcoding/ecommerce/pkg/db"
	"github.com/wyfcoding/ecommerce/pkg/logger"
	"github.com/wyfcoding/ecommerce/pkg/metrics"
	"github.com/wyfcoding/ecommerce/pkg/mq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const maxErrorLen = 512

// Relay 轮询 outbox 并投递到 broker。至少一次：发送成功但标记失败时会重发。
type Relay struct {
	db        *gorm.DB
	broker    mq.Broker
	interval  time.Duration
	batchSize int
	metrics   *metrics.Metrics
}

// NewRelay m 可为 nil
func NewRelay(gdb *gorm.DB, broker mq.Broker, interval time.Duration, batchSize int, m *metrics.Metrics) *Relay {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Relay{db: gdb, broker: broker, interval: interval, batchSize: batchSize, metrics: m}
}

// Run 按固定间隔转发，直到 ctx 结束
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	logger.Info(ctx, "Outbox relay started", "interval", r.interval, "batch_size", r.batchSize)
	for {
		select {
		case <-ctx.Done():
			logger.Info(context.Background(), "Outbox relay stopped")
			return nil
		case <-ticker.C:
			if _, err := r.RelayOnce(ctx); err != nil && ctx.Err() == nil {
				logger.Error(ctx, "outbox relay failed", "error", err)
			}
		}
	}
}

// RelayOnce 转发一批待发送消息，返回成功条数。
// 遇到发送失败即停止本批，保证同一 key 的消息按写入顺序发出。
func (r *Relay) RelayOnce(ctx context.Context) (int, error) {
	sent := 0
	err := db.WithTx(ctx, r.db, func(tx *gorm.DB) error {
		var batch []OutboxMessage
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("status = ?", StatusPending).
			Order("created_at").
			Limit(r.batchSize).
			Find(&batch).Error; err != nil {
			return fmt.Errorf("load outbox batch: %w", err)
		}

		for _, msg := range batch {
			if err := r.broker.Publish(ctx, msg.Topic, msg.Key, []byte(msg.Payload)); err != nil {
				errText := err.Error()
				if len(errText) > maxErrorLen {
					errText = errText[:maxErrorLen]
				}
				logger.Warn(ctx, "outbox publish failed, will retry", "id", msg.ID, "topic", msg.Topic, "attempts", msg.Attempts+1, "error", err)
				return tx.Model(&OutboxMessage{}).Where("id = ?", msg.ID).Updates(map[string]any{
					"attempts":   msg.Attempts + 1,
					"last_error": errText,
				}).Error
			}
			if err := tx.Model(&OutboxMessage{}).Where("id = ?", msg.ID).Updates(map[string]any{
				"status":   StatusSent,
				"attempts": msg.Attempts + 1,
			}).Error; err != nil {
				return fmt.Errorf("mark outbox sent: %w", err)
			}
			sent++
		}
		return nil
	})
	if sent > 0 && r.metrics != nil {
		r.metrics.OutboxRelayed.Add(float64(sent))
	}
	return sent, err
}

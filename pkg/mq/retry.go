package mq

import (
	"context"
	"errors"
	"time"

	"github.com/wyfcoding/ecommerce/pkg/logger"
)

const maxRetryBackoff = 30 * time.Second

// RetryPolicy 消费失败后的重试策略，退避时间每次翻倍
type RetryPolicy struct {
	MaxRetries int
	Backoff    time.Duration
}

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent 标记不可重试的错误，broker 收到后直接进入死信
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent 是否为不可重试错误
func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}

// Deliver 调用 handler，可重试错误最多重试 MaxRetries 次。
// 返回最后一次的错误；ctx 结束时立即返回。
func (p RetryPolicy) Deliver(ctx context.Context, handler Handler, msg *Message) error {
	backoff := p.Backoff
	for attempt := 0; ; attempt++ {
		err := handler(ctx, msg)
		if err == nil || IsPermanent(err) || attempt >= p.MaxRetries {
			return err
		}

		logger.Warn(ctx, "message handler failed, retrying",
			"topic", msg.Topic, "key", msg.Key, "attempt", attempt+1, "backoff", backoff, "error", err)
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
		backoff = min(backoff*2, maxRetryBackoff)
	}
}

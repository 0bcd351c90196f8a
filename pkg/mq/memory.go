package mq

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wyfcoding/ecommerce/pkg/logger"
)

// ErrClosed broker 已关闭
var ErrClosed = errors.New("mq: broker closed")

// MemoryBroker 进程内 Broker，同一 group 内的订阅者竞争消费，不同 group 各自收到一份。
// 用于测试与单进程运行，不做持久化。
type MemoryBroker struct {
	mu     sync.RWMutex
	groups map[string]map[string]chan *Message // topic -> group -> queue
	closed bool
	retry  RetryPolicy
}

// MemoryOption 内存 Broker 选项
type MemoryOption func(*MemoryBroker)

// WithRetryPolicy 设置消费失败的重试策略
func WithRetryPolicy(p RetryPolicy) MemoryOption {
	return func(b *MemoryBroker) { b.retry = p }
}

// NewMemoryBroker 创建内存 Broker，默认重试 3 次、初始退避 100ms
func NewMemoryBroker(opts ...MemoryOption) *MemoryBroker {
	b := &MemoryBroker{
		groups: make(map[string]map[string]chan *Message),
		retry:  RetryPolicy{MaxRetries: 3, Backoff: 100 * time.Millisecond},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Publish 投递到 topic 下每个 group 的队列
func (b *MemoryBroker) Publish(ctx context.Context, topic, key string, value []byte) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrClosed
	}

	for _, q := range b.groups[topic] {
		msg := &Message{
			ID:    uuid.NewString(),
			Topic: topic,
			Key:   key,
			Value: append([]byte(nil), value...),
			Time:  time.Now(),
		}
		select {
		case q <- msg:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Subscribe 注册 group 队列，必须在 Publish 之前调用才能收到消息
func (b *MemoryBroker) Subscribe(topic, group string, workers int) (Subscriber, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrClosed
	}

	if b.groups[topic] == nil {
		b.groups[topic] = make(map[string]chan *Message)
	}
	q, ok := b.groups[topic][group]
	if !ok {
		q = make(chan *Message, 256)
		b.groups[topic][group] = q
	}
	return &memorySubscriber{broker: b, queue: q, workers: max(workers, 1)}, nil
}

// Close 关闭 broker，不再接受发布
func (b *MemoryBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

type memorySubscriber struct {
	broker  *MemoryBroker
	queue   chan *Message
	workers int
}

func (s *memorySubscriber) Run(ctx context.Context, handler Handler) error {
	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case msg := <-s.queue:
					s.handle(ctx, handler, msg)
				}
			}
		}()
	}
	wg.Wait()
	return nil
}

// handle 重试耗尽或永久失败的消息转发到死信 topic
func (s *memorySubscriber) handle(ctx context.Context, handler Handler, msg *Message) {
	err := s.broker.retry.Deliver(ctx, handler, msg)
	if err == nil || ctx.Err() != nil {
		return
	}
	logger.Error(ctx, "memory message handler failed", "topic", msg.Topic, "key", msg.Key, "error", err)
	if dlqErr := s.broker.Publish(ctx, DeadLetterTopic(msg.Topic), msg.Key, msg.Value); dlqErr != nil {
		logger.Error(ctx, "memory dead letter publish failed", "topic", msg.Topic, "error", dlqErr)
	}
}

func (s *memorySubscriber) Close() error { return nil }

// Package mq 提供消息发布/订阅抽象，支持 Kafka、RabbitMQ(AMQP) 以及进程内内存实现
package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/wyfcoding/ecommerce/pkg/config"
)

// Message 消息结构
type Message struct {
	ID        string
	Topic     string
	Key       string
	Value     []byte
	Partition int
	Offset    int64
	Time      time.Time
}

// UnmarshalPayload 将消息值解析为 JSON
func (m *Message) UnmarshalPayload(dest any) error {
	return json.Unmarshal(m.Value, dest)
}

// Handler 消息处理函数，返回错误表示处理失败
type Handler func(ctx context.Context, msg *Message) error

// Subscriber 订阅者
type Subscriber interface {
	// Run 阻塞消费直到 ctx 结束
	Run(ctx context.Context, handler Handler) error
	Close() error
}

// Broker 消息中间件
type Broker interface {
	// Publish 发布消息，key 决定分区 / 路由
	Publish(ctx context.Context, topic, key string, value []byte) error
	// Subscribe 以 group 身份订阅 topic
	Subscribe(topic, group string, workers int) (Subscriber, error)
	Close() error
}

// DeadLetterTopic 死信 topic 名
func DeadLetterTopic(topic string) string {
	return topic + ".dlq"
}

// Open 按配置创建 Broker
func Open(ctx context.Context, cfg config.BrokerConfig) (Broker, error) {
	retry := RetryPolicy{
		MaxRetries: cfg.MaxRetries,
		Backoff:    time.Duration(cfg.RetryBackoff) * time.Millisecond,
	}
	switch cfg.Kind {
	case "kafka":
		return NewKafkaBroker(KafkaConfig{
			Brokers:      cfg.Brokers,
			MaxRetries:   retry.MaxRetries,
			RetryBackoff: retry.Backoff,
		}), nil
	case "amqp":
		return DialAMQP(ctx, cfg.URL, cfg.Exchange, retry)
	case "memory":
		return NewMemoryBroker(WithRetryPolicy(retry)), nil
	default:
		return nil, fmt.Errorf("unsupported broker kind: %q", cfg.Kind)
	}
}

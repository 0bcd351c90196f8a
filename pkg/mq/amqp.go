package mq

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/wyfcoding/ecommerce/pkg/logger"
)

// AMQPBroker 基于 RabbitMQ topic exchange 的 Broker，topic 作为 routing key
type AMQPBroker struct {
	conn     *amqp.Connection
	exchange string
	retry    RetryPolicy

	mu sync.Mutex
	ch *amqp.Channel
}

// DialAMQP 连接 RabbitMQ 并声明 exchange 与死信 exchange，retry 用于消费失败重试
func DialAMQP(ctx context.Context, url, exchange string, retry RetryPolicy) (*AMQPBroker, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}

	for _, name := range []string{exchange, deadLetterExchange(exchange)} {
		if err := ch.ExchangeDeclare(
			name,    // name
			"topic", // kind
			true,    // durable
			false,   // auto-deleted
			false,   // internal
			false,   // no-wait
			nil,     // args
		); err != nil {
			conn.Close()
			return nil, fmt.Errorf("amqp declare exchange %s: %w", name, err)
		}
	}

	logger.Info(ctx, "AMQP broker connected", "exchange", exchange)
	return &AMQPBroker{conn: conn, exchange: exchange, retry: retry, ch: ch}, nil
}

func deadLetterExchange(exchange string) string {
	return exchange + ".dlx"
}

// Publish 发布持久化消息
func (b *AMQPBroker) Publish(ctx context.Context, topic, key string, value []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	err := b.ch.PublishWithContext(ctx,
		b.exchange, // exchange
		topic,      // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:   "application/json",
			DeliveryMode:  amqp.Persistent,
			MessageId:     uuid.NewString(),
			CorrelationId: key,
			Timestamp:     time.Now(),
			Body:          value,
		},
	)
	if err != nil {
		logger.Error(ctx, "Failed to publish AMQP message", "topic", topic, "key", key, "error", err)
		return fmt.Errorf("amqp publish %s: %w", topic, err)
	}
	return nil
}

// Subscribe 声明持久队列 group 并绑定 topic；处理失败的消息经 DLX 进入 <group>.dlq
func (b *AMQPBroker) Subscribe(topic, group string, workers int) (Subscriber, error) {
	ch, err := b.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("amqp channel: %w", err)
	}

	dlq := DeadLetterTopic(group)
	if _, err := ch.QueueDeclare(dlq, true, false, false, false, nil); err != nil {
		ch.Close()
		return nil, fmt.Errorf("amqp declare %s: %w", dlq, err)
	}
	if err := ch.QueueBind(dlq, topic, deadLetterExchange(b.exchange), false, nil); err != nil {
		ch.Close()
		return nil, fmt.Errorf("amqp bind %s: %w", dlq, err)
	}

	q, err := ch.QueueDeclare(
		group, // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		amqp.Table{"x-dead-letter-exchange": deadLetterExchange(b.exchange)},
	)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("amqp declare %s: %w", group, err)
	}
	if err := ch.QueueBind(q.Name, topic, b.exchange, false, nil); err != nil {
		ch.Close()
		return nil, fmt.Errorf("amqp bind %s: %w", group, err)
	}

	workers = max(workers, 1)
	if err := ch.Qos(workers, 0, false); err != nil {
		ch.Close()
		return nil, fmt.Errorf("amqp qos: %w", err)
	}

	logger.Info(context.Background(), "AMQP consumer created", "topic", topic, "queue", q.Name, "workers", workers)
	return &amqpSubscriber{ch: ch, queue: q.Name, workers: workers, retry: b.retry}, nil
}

// Close 关闭连接
func (b *AMQPBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ch != nil {
		b.ch.Close()
	}
	return b.conn.Close()
}

type amqpSubscriber struct {
	ch      *amqp.Channel
	queue   string
	workers int
	retry   RetryPolicy
}

func (s *amqpSubscriber) Run(ctx context.Context, handler Handler) error {
	deliveries, err := s.ch.ConsumeWithContext(ctx,
		s.queue, // queue
		"",      // consumer
		false,   // auto-ack
		false,   // exclusive
		false,   // no-local
		false,   // no-wait
		nil,     // args
	)
	if err != nil {
		return fmt.Errorf("amqp consume %s: %w", s.queue, err)
	}

	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for d := range deliveries {
				msg := &Message{
					ID:    d.MessageId,
					Topic: d.RoutingKey,
					Key:   d.CorrelationId,
					Value: d.Body,
					Time:  d.Timestamp,
				}
				if err := s.retry.Deliver(ctx, handler, msg); err != nil {
					if ctx.Err() != nil {
						_ = d.Nack(false, true)
						continue
					}
					logger.Error(ctx, "AMQP message handler failed",
						"queue", s.queue, "message_id", d.MessageId, "permanent", IsPermanent(err), "error", err)
					_ = d.Nack(false, false)
					continue
				}
				_ = d.Ack(false)
			}
		}()
	}
	wg.Wait()
	return nil
}

func (s *amqpSubscriber) Close() error {
	return s.ch.Close()
}

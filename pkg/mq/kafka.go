package mq

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/wyfcoding/ecommerce/pkg/logger"
)

// KafkaConfig Kafka 配置
type KafkaConfig struct {
	Brokers      []string
	MaxRetries   int
	RetryBackoff time.Duration
}

// KafkaBroker 基于 segmentio/kafka-go 的 Broker
type KafkaBroker struct {
	cfg    KafkaConfig
	writer *kafka.Writer
}

// NewKafkaBroker 创建 Kafka Broker，写入按 key 哈希到分区
func NewKafkaBroker(cfg KafkaConfig) *KafkaBroker {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireAll,
		MaxAttempts:            max(cfg.MaxRetries, 1),
		WriteBackoffMin:        cfg.RetryBackoff,
		WriteBackoffMax:        cfg.RetryBackoff * 10,
	}

	logger.Info(context.Background(), "Kafka producer created", "brokers", cfg.Brokers)
	return &KafkaBroker{cfg: cfg, writer: writer}
}

// Publish 发送单条消息
func (b *KafkaBroker) Publish(ctx context.Context, topic, key string, value []byte) error {
	err := b.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
	})
	if err != nil {
		logger.Error(ctx, "Failed to send Kafka message", "topic", topic, "key", key, "error", err)
		return fmt.Errorf("kafka publish %s: %w", topic, err)
	}

	logger.Debug(ctx, "Kafka message sent", "topic", topic, "key", key)
	return nil
}

// Subscribe 创建消费组订阅
func (b *KafkaBroker) Subscribe(topic, group string, workers int) (Subscriber, error) {
	if group == "" {
		return nil, errors.New("kafka subscribe: group id is required")
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        b.cfg.Brokers,
		Topic:          topic,
		GroupID:        group,
		SessionTimeout: 10 * time.Second,
		StartOffset:    kafka.FirstOffset,
		MaxBytes:       10e6,
	})

	logger.Info(context.Background(), "Kafka consumer created", "topic", topic, "group_id", group, "workers", workers)
	return &kafkaSubscriber{broker: b, reader: reader, topic: topic, workers: max(workers, 1)}, nil
}

// Close 关闭生产者
func (b *KafkaBroker) Close() error {
	return b.writer.Close()
}

type kafkaSubscriber struct {
	broker  *KafkaBroker
	reader  *kafka.Reader
	topic   string
	workers int
}

// Run 拉取消息并按分区分派到固定 worker，保证同一分区内顺序处理与顺序提交。
// 处理失败的消息按 MaxRetries/RetryBackoff 重试，仍失败则写入死信 topic 后提交。
func (s *kafkaSubscriber) Run(ctx context.Context, handler Handler) error {
	queues := make([]chan kafka.Message, s.workers)
	var wg sync.WaitGroup
	for i := range queues {
		queues[i] = make(chan kafka.Message, 16)
		wg.Add(1)
		go func(in <-chan kafka.Message) {
			defer wg.Done()
			for km := range in {
				s.handle(ctx, handler, km)
			}
		}(queues[i])
	}
	defer func() {
		for _, q := range queues {
			close(q)
		}
		wg.Wait()
	}()

	for {
		km, err := s.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logger.Error(ctx, "Failed to fetch Kafka message", "topic", s.topic, "error", err)
			return fmt.Errorf("kafka fetch: %w", err)
		}
		select {
		case queues[km.Partition%s.workers] <- km:
		case <-ctx.Done():
			return nil
		}
	}
}

func (s *kafkaSubscriber) handle(ctx context.Context, handler Handler, km kafka.Message) {
	msg := &Message{
		Topic:     km.Topic,
		Key:       string(km.Key),
		Value:     km.Value,
		Partition: km.Partition,
		Offset:    km.Offset,
		Time:      km.Time,
	}

	retry := RetryPolicy{MaxRetries: s.broker.cfg.MaxRetries, Backoff: s.broker.cfg.RetryBackoff}
	if err := retry.Deliver(ctx, handler, msg); err != nil {
		if ctx.Err() != nil {
			// 关停中断的消息不提交，重启后重新投递
			return
		}
		logger.Error(ctx, "Kafka message handler failed",
			"topic", km.Topic, "partition", km.Partition, "offset", km.Offset, "permanent", IsPermanent(err), "error", err)
		if dlqErr := s.broker.Publish(ctx, DeadLetterTopic(km.Topic), msg.Key, km.Value); dlqErr != nil {
			// 死信也写不进去时不提交，等待重新投递
			return
		}
	}

	if err := s.reader.CommitMessages(ctx, km); err != nil && ctx.Err() == nil {
		logger.Error(ctx, "Failed to commit Kafka message", "topic", km.Topic, "offset", km.Offset, "error", err)
	}
}

func (s *kafkaSubscriber) Close() error {
	return s.reader.Close()
}

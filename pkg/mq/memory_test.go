package mq

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/require"
)

type collector struct {
	mu   sync.Mutex
	keys []string
}

func (c *collector) handle(_ context.Context, msg *Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.keys = append(c.keys, msg.Key)
	return nil
}

func (c *collector) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.keys)
}

func TestMemoryBroker_FanOutPerGroup(t *testing.T) {
	g := NewWithT(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	broker := NewMemoryBroker()
	stock, err := broker.Subscribe("orders.order_created", "products", 2)
	require.NoError(t, err)
	audit, err := broker.Subscribe("orders.order_created", "audit", 1)
	require.NoError(t, err)

	var stockSeen, auditSeen collector
	go stock.Run(ctx, stockSeen.handle)
	go audit.Run(ctx, auditSeen.handle)

	for _, key := range []string{"1", "2", "3"} {
		require.NoError(t, broker.Publish(ctx, "orders.order_created", key, []byte(`{}`)))
	}

	g.Eventually(stockSeen.count, time.Second, 10*time.Millisecond).Should(Equal(3))
	g.Eventually(auditSeen.count, time.Second, 10*time.Millisecond).Should(Equal(3))
}

func TestMemoryBroker_PublishWithoutSubscribers(t *testing.T) {
	broker := NewMemoryBroker()
	require.NoError(t, broker.Publish(context.Background(), "nobody.listens", "k", []byte("x")))
}

func TestMemoryBroker_Closed(t *testing.T) {
	broker := NewMemoryBroker()
	require.NoError(t, broker.Close())

	err := broker.Publish(context.Background(), "t", "k", nil)
	require.ErrorIs(t, err, ErrClosed)

	_, err = broker.Subscribe("t", "g", 1)
	require.ErrorIs(t, err, ErrClosed)
}

func TestMessage_UnmarshalPayload(t *testing.T) {
	msg := &Message{Value: []byte(`{"order":{"id":7}}`)}
	var payload struct {
		Order struct {
			ID int `json:"id"`
		} `json:"order"`
	}
	require.NoError(t, msg.UnmarshalPayload(&payload))
	require.Equal(t, 7, payload.Order.ID)
}

func TestMemoryBroker_RetriesThenSucceeds(t *testing.T) {
	g := NewWithT(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	broker := NewMemoryBroker(WithRetryPolicy(RetryPolicy{MaxRetries: 3, Backoff: 5 * time.Millisecond}))
	sub, err := broker.Subscribe("orders.order_created", "products", 1)
	require.NoError(t, err)
	dlq, err := broker.Subscribe(DeadLetterTopic("orders.order_created"), "ops", 1)
	require.NoError(t, err)

	var calls atomic.Int32
	var dead collector
	go sub.Run(ctx, func(context.Context, *Message) error {
		if calls.Add(1) < 3 {
			return errors.New("driver: bad connection")
		}
		return nil
	})
	go dlq.Run(ctx, dead.handle)

	require.NoError(t, broker.Publish(ctx, "orders.order_created", "42", []byte(`{}`)))
	g.Eventually(calls.Load, time.Second, 5*time.Millisecond).Should(BeEquivalentTo(3))
	g.Consistently(dead.count, 50*time.Millisecond, 10*time.Millisecond).Should(BeZero())
}

func TestMemoryBroker_PermanentErrorGoesToDeadLetter(t *testing.T) {
	g := NewWithT(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	broker := NewMemoryBroker(WithRetryPolicy(RetryPolicy{MaxRetries: 5, Backoff: time.Millisecond}))
	sub, err := broker.Subscribe("orders.order_created", "products", 1)
	require.NoError(t, err)
	dlq, err := broker.Subscribe(DeadLetterTopic("orders.order_created"), "ops", 1)
	require.NoError(t, err)

	var calls atomic.Int32
	var dead collector
	go sub.Run(ctx, func(context.Context, *Message) error {
		calls.Add(1)
		return Permanent(errors.New("decode: invalid character"))
	})
	go dlq.Run(ctx, dead.handle)

	require.NoError(t, broker.Publish(ctx, "orders.order_created", "7", []byte(`not json`)))
	g.Eventually(dead.count, time.Second, 5*time.Millisecond).Should(Equal(1))
	g.Expect(calls.Load()).To(BeEquivalentTo(1))
}

func TestRetryPolicy_ExhaustedReturnsLastError(t *testing.T) {
	calls := 0
	err := RetryPolicy{MaxRetries: 2}.Deliver(context.Background(), func(context.Context, *Message) error {
		calls++
		return errors.New("still down")
	}, &Message{Topic: "t"})
	require.EqualError(t, err, "still down")
	require.Equal(t, 3, calls)
	require.False(t, IsPermanent(err))
}

func TestRetryPolicy_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := RetryPolicy{MaxRetries: 10, Backoff: time.Hour}.Deliver(ctx, func(context.Context, *Message) error {
		calls++
		cancel()
		return errors.New("down")
	}, &Message{Topic: "t"})
	require.Error(t, err)
	require.Equal(t, 1, calls)
}

package messaging

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/ecommerce/pkg/mq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type published struct {
	topic, key, value string
}

type recordingBroker struct {
	mq.Broker
	sent    []published
	failAll bool
}

func (b *recordingBroker) Publish(_ context.Context, topic, key string, value []byte) error {
	if b.failAll {
		return errors.New("broker unavailable")
	}
	b.sent = append(b.sent, published{topic, key, string(value)})
	return nil
}

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	return gdb, mock
}

var outboxColumns = []string{"id", "topic", "msg_key", "payload", "status", "attempts", "last_error", "created_at", "updated_at"}

func TestRelayOnce_PublishesAndMarksSent(t *testing.T) {
	gdb, mock := newMockDB(t)
	broker := &recordingBroker{}
	relay := NewRelay(gdb, broker, time.Second, 10, nil)

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "outbox_messages" WHERE status = .* FOR UPDATE SKIP LOCKED`).
		WillReturnRows(sqlmock.NewRows(outboxColumns).
			AddRow("m1", "orders.order_created", "1", `{"order":{"id":1}}`, StatusPending, 0, "", now, now).
			AddRow("m2", "orders.order_created", "2", `{"order":{"id":2}}`, StatusPending, 0, "", now, now))
	mock.ExpectExec(`UPDATE "outbox_messages" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "outbox_messages" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	n, err := relay.RelayOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, broker.sent, 2)
	assert.Equal(t, published{"orders.order_created", "1", `{"order":{"id":1}}`}, broker.sent[0])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRelayOnce_FailureKeepsPending(t *testing.T) {
	gdb, mock := newMockDB(t)
	relay := NewRelay(gdb, &recordingBroker{failAll: true}, time.Second, 10, nil)

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "outbox_messages"`).
		WillReturnRows(sqlmock.NewRows(outboxColumns).
			AddRow("m1", "orders.order_created", "1", `{}`, StatusPending, 2, "", now, now).
			AddRow("m2", "orders.order_created", "2", `{}`, StatusPending, 0, "", now, now))
	// 只记录第一条的失败，第二条留到下一轮
	mock.ExpectExec(`UPDATE "outbox_messages" SET .*"last_error"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	n, err := relay.RelayOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPublishInTx_RequiresGormTx(t *testing.T) {
	err := NewOutboxPublisher().PublishInTx(context.Background(), "not a tx", "t", "k", struct{}{})
	assert.Error(t, err)
}

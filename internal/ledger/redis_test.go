package ledger

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
)

func TestRedisLedger_GetMiss(t *testing.T) {
	client, mock := redismock.NewClientMock()
	l := NewRedisLedgerWithClient(client, 24*time.Hour)

	mock.ExpectGet("idem:receipt:key-1").RedisNil()

	receipt, ok, err := l.Get(context.Background(), "key-1")
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, receipt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisLedger_GetHit(t *testing.T) {
	client, mock := redismock.NewClientMock()
	l := NewRedisLedgerWithClient(client, 24*time.Hour)

	receipt := sampleReceipt(7)
	payload, err := json.Marshal(receipt)
	assert.NoError(t, err)

	mock.ExpectGet("idem:receipt:key-1").SetVal(string(payload))

	got, ok, err := l.Get(context.Background(), "key-1")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, receipt, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisLedger_PutSetsRetentionTTL(t *testing.T) {
	client, mock := redismock.NewClientMock()
	l := NewRedisLedgerWithClient(client, 24*time.Hour)

	receipt := sampleReceipt(7)
	payload, err := json.Marshal(receipt)
	assert.NoError(t, err)

	mock.ExpectSet("idem:receipt:key-1", payload, 24*time.Hour).SetVal("OK")

	assert.NoError(t, l.Put(context.Background(), "key-1", receipt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisLedger_LockAcquireAndRelease(t *testing.T) {
	client, mock := redismock.NewClientMock()
	l := NewRedisLedgerWithClient(client, 24*time.Hour)

	mock.ExpectSetNX("idem:lock:key-1", "locked", lockTTL).SetVal(true)
	mock.ExpectDel("idem:lock:key-1").SetVal(1)

	unlock, err := l.Lock(context.Background(), "key-1")
	assert.NoError(t, err)
	unlock()

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisLedger_LockWaitsForHolder(t *testing.T) {
	client, mock := redismock.NewClientMock()
	l := NewRedisLedgerWithClient(client, 24*time.Hour)

	// First attempt finds the lock held; the second acquires it.
	mock.ExpectSetNX("idem:lock:key-1", "locked", lockTTL).SetVal(false)
	mock.ExpectSetNX("idem:lock:key-1", "locked", lockTTL).SetVal(true)
	mock.ExpectDel("idem:lock:key-1").SetVal(1)

	unlock, err := l.Lock(context.Background(), "key-1")
	assert.NoError(t, err)
	unlock()

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisLedger_LockGivesUpOnCancelledContext(t *testing.T) {
	client, mock := redismock.NewClientMock()
	l := NewRedisLedgerWithClient(client, 24*time.Hour)

	mock.ExpectSetNX("idem:lock:key-1", "locked", lockTTL).SetVal(false)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	unlock, err := l.Lock(ctx, "key-1")
	assert.Error(t, err)
	assert.Nil(t, unlock)
}

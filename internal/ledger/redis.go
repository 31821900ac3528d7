package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/skyreserve/booking-service/config"
	"github.com/skyreserve/booking-service/internal/domain"
)

const lockTTL = 30 * time.Second

// RedisLedger backs the idempotency store with a shared Redis so that
// multiple service instances agree on which keys have been paid. Retention
// rides on key TTL; per-key exclusivity is a SET NX lock.
type RedisLedger struct {
	client    *redis.Client
	retention time.Duration
}

func NewRedisLedger(cfg config.RedisConfig, retention time.Duration) *RedisLedger {
	return &RedisLedger{
		client:    redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		retention: retention,
	}
}

func NewRedisLedgerWithClient(client *redis.Client, retention time.Duration) *RedisLedger {
	return &RedisLedger{client: client, retention: retention}
}

func (l *RedisLedger) Lock(ctx context.Context, key string) (func(), error) {
	lock := lockKey(key)
	for {
		ok, err := l.client.SetNX(ctx, lock, "locked", lockTTL).Result()
		if err != nil {
			return nil, domain.NewInternal("acquire idempotency lock", err)
		}
		if ok {
			return func() {
				_ = l.client.Del(context.Background(), lock).Err()
			}, nil
		}
		select {
		case <-ctx.Done():
			return nil, domain.NewInternal("acquire idempotency lock", ctx.Err())
		case <-time.After(50 * time.Millisecond):
		}
	}
}

func (l *RedisLedger) Get(ctx context.Context, key string) (*domain.Receipt, bool, error) {
	data, err := l.client.Get(ctx, receiptKey(key)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, domain.NewInternal("read idempotency ledger", err)
	}

	var receipt domain.Receipt
	if err := json.Unmarshal(data, &receipt); err != nil {
		return nil, false, domain.NewInternal("decode cached receipt", err)
	}
	return &receipt, true, nil
}

func (l *RedisLedger) Put(ctx context.Context, key string, receipt *domain.Receipt) error {
	payload, err := json.Marshal(receipt)
	if err != nil {
		return domain.NewInternal("encode receipt", err)
	}
	if err := l.client.Set(ctx, receiptKey(key), payload, l.retention).Err(); err != nil {
		return domain.NewInternal("write idempotency ledger", err)
	}
	return nil
}

func receiptKey(key string) string {
	return fmt.Sprintf("idem:receipt:%s", key)
}

func lockKey(key string) string {
	return fmt.Sprintf("idem:lock:%s", key)
}

var _ Ledger = (*RedisLedger)(nil)

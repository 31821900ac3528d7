package repository

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
)

func TestNewBookingStore(t *testing.T) {
	pool := &pgxpool.Pool{}
	store := NewBookingStore(pool)
	assert.NotNil(t, store)
}

type fakeTx struct{}

func (fakeTx) Commit(context.Context) error   { return nil }
func (fakeTx) Rollback(context.Context) error { return nil }

func TestPGBookingStore_RejectsForeignTx(t *testing.T) {
	store := &PGBookingStore{}
	_, err := store.in(fakeTx{})
	assert.Error(t, err)
}

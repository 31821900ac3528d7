package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/skyreserve/booking-service/internal/domain"
)

// Tx is the transaction scope handed back to the saga. It hides the pgx
// transaction so services and their tests never touch the driver.
type Tx interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// BookingStore is the transactional record store for bookings. Every
// mutation participates in a caller-supplied Tx; ListByStatusBefore accepts
// a nil Tx and then reads directly from the pool.
type BookingStore interface {
	Begin(ctx context.Context) (Tx, error)
	Create(ctx context.Context, tx Tx, booking *domain.Booking) error
	Get(ctx context.Context, tx Tx, id int64) (*domain.Booking, error)
	UpdateStatus(ctx context.Context, tx Tx, id int64, status domain.BookingStatus) (*domain.Booking, error)
	ListByStatusBefore(ctx context.Context, tx Tx, status domain.BookingStatus, cutoff time.Time) ([]domain.Booking, error)
}

type PGBookingStore struct {
	db *pgxpool.Pool
}

func NewBookingStore(db *pgxpool.Pool) BookingStore {
	return &PGBookingStore{db: db}
}

type pgTx struct {
	tx pgx.Tx
}

func (t *pgTx) Commit(ctx context.Context) error   { return t.tx.Commit(ctx) }
func (t *pgTx) Rollback(ctx context.Context) error { return t.tx.Rollback(ctx) }

func (r *PGBookingStore) Begin(ctx context.Context) (Tx, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, domain.NewInternal("begin transaction", err)
	}
	return &pgTx{tx: tx}, nil
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (r *PGBookingStore) in(tx Tx) (querier, error) {
	if tx == nil {
		return r.db, nil
	}
	p, ok := tx.(*pgTx)
	if !ok {
		return nil, domain.NewInternal(fmt.Sprintf("unexpected transaction type %T", tx), nil)
	}
	return p.tx, nil
}

func (r *PGBookingStore) Create(ctx context.Context, tx Tx, booking *domain.Booking) error {
	q, err := r.in(tx)
	if err != nil {
		return err
	}
	if err := q.QueryRow(ctx, `INSERT INTO bookings (flight_id, user_id, status, no_of_seats, total_cost)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		booking.FlightID, booking.UserID, booking.Status, booking.NoOfSeats, booking.TotalCost).
		Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt); err != nil {
		return domain.NewInternal("insert booking", err)
	}
	return nil
}

func (r *PGBookingStore) Get(ctx context.Context, tx Tx, id int64) (*domain.Booking, error) {
	q, err := r.in(tx)
	if err != nil {
		return nil, err
	}
	row := q.QueryRow(ctx, `SELECT id, flight_id, user_id, status, no_of_seats, total_cost, created_at, updated_at
		FROM bookings WHERE id=$1 FOR UPDATE`, id)
	var b domain.Booking
	if err := row.Scan(&b.ID, &b.FlightID, &b.UserID, &b.Status, &b.NoOfSeats, &b.TotalCost, &b.CreatedAt, &b.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFound(id)
		}
		return nil, domain.NewInternal("select booking", err)
	}
	return &b, nil
}

func (r *PGBookingStore) UpdateStatus(ctx context.Context, tx Tx, id int64, status domain.BookingStatus) (*domain.Booking, error) {
	q, err := r.in(tx)
	if err != nil {
		return nil, err
	}
	row := q.QueryRow(ctx, `UPDATE bookings SET status=$1, updated_at=now() WHERE id=$2
		RETURNING id, flight_id, user_id, status, no_of_seats, total_cost, created_at, updated_at`, status, id)
	var b domain.Booking
	if err := row.Scan(&b.ID, &b.FlightID, &b.UserID, &b.Status, &b.NoOfSeats, &b.TotalCost, &b.CreatedAt, &b.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFound(id)
		}
		return nil, domain.NewInternal("update booking status", err)
	}
	return &b, nil
}

func (r *PGBookingStore) ListByStatusBefore(ctx context.Context, tx Tx, status domain.BookingStatus, cutoff time.Time) ([]domain.Booking, error) {
	q, err := r.in(tx)
	if err != nil {
		return nil, err
	}
	rows, err := q.Query(ctx, `SELECT id, flight_id, user_id, status, no_of_seats, total_cost, created_at, updated_at
		FROM bookings WHERE status=$1 AND created_at < $2 ORDER BY created_at`, status, cutoff)
	if err != nil {
		return nil, domain.NewInternal("list bookings", err)
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		var b domain.Booking
		if err := rows.Scan(&b.ID, &b.FlightID, &b.UserID, &b.Status, &b.NoOfSeats, &b.TotalCost, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, domain.NewInternal("scan booking", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewInternal("list bookings", err)
	}
	return bookings, nil
}

var _ BookingStore = (*PGBookingStore)(nil)

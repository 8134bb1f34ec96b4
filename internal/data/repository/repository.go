package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"room-booking/pkg/database"
)

type Repository struct {
	Room    RoomRepository
	Booking BookingRepository
	Payment PaymentRepository
	Refund  RefundRepository
	Tx      Transactor
}

// Transactor runs fn against repositories bound to a single transaction.
// Calling WithinTx on a repository set that is already transactional reuses
// the open transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(repo *Repository) error) error
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	repo := newRepository(db, log)
	repo.Tx = &pgTransactor{db: db, log: log}
	return repo
}

func newRepository(q database.Querier, log *zap.Logger) *Repository {
	return &Repository{
		Room:    NewRoomRepository(q, log),
		Booking: NewBookingRepository(q, log),
		Payment: NewPaymentRepository(q, log),
		Refund:  NewRefundRepository(q, log),
	}
}

type pgTransactor struct {
	db  database.PgxIface
	log *zap.Logger
}

func (t *pgTransactor) WithinTx(ctx context.Context, fn func(repo *Repository) error) error {
	return database.WithTx(ctx, t.db, func(tx pgx.Tx) error {
		repo := newRepository(tx, t.log)
		repo.Tx = nestedTx{repo: repo}
		return fn(repo)
	})
}

type nestedTx struct {
	repo *Repository
}

func (n nestedTx) WithinTx(_ context.Context, fn func(repo *Repository) error) error {
	return fn(n.repo)
}

package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"room-booking/internal/data/entity"
	"room-booking/pkg/database"
)

type RefundRepository interface {
	Create(ctx context.Context, refund *entity.Refund) error
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*entity.Refund, error)
}

type refundRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewRefundRepository(db database.Querier, log *zap.Logger) RefundRepository {
	return &refundRepository{
		db:  db,
		log: log.With(zap.String("repository", "refund")),
	}
}

func (r *refundRepository) Create(ctx context.Context, refund *entity.Refund) error {
	query := `
		INSERT INTO refunds (id, booking_id, amount, provider_refund_ref, reason, status, processed_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Exec(ctx, query,
		refund.ID,
		refund.BookingID,
		refund.Amount,
		refund.ProviderRefundRef,
		refund.Reason,
		refund.Status,
		refund.ProcessedAt,
		refund.CreatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create refund",
			zap.Error(err),
			zap.String("booking_id", refund.BookingID.String()),
			zap.String("provider_refund_ref", refund.ProviderRefundRef),
		)
		return fmt.Errorf("create refund for booking %s: %w", refund.BookingID.String(), err)
	}

	return nil
}

func (r *refundRepository) FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*entity.Refund, error) {
	query := `
		SELECT id, booking_id, amount, provider_refund_ref, reason, status, processed_at, created_at
		FROM refunds
		WHERE booking_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.Query(ctx, query, bookingID)
	if err != nil {
		r.log.Error("Failed to find refunds", zap.Error(err), zap.String("booking_id", bookingID.String()))
		return nil, fmt.Errorf("find refunds for booking %s: %w", bookingID.String(), err)
	}
	defer rows.Close()

	var refunds []*entity.Refund
	for rows.Next() {
		var refund entity.Refund
		err := rows.Scan(
			&refund.ID,
			&refund.BookingID,
			&refund.Amount,
			&refund.ProviderRefundRef,
			&refund.Reason,
			&refund.Status,
			&refund.ProcessedAt,
			&refund.CreatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan refund row", zap.Error(err))
			return nil, fmt.Errorf("scan refund row: %w", err)
		}
		refunds = append(refunds, &refund)
	}

	return refunds, rows.Err()
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"room-booking/internal/data/entity"
	"room-booking/internal/domain"
	"room-booking/pkg/database"
)

type BookingFilter struct {
	Status    *entity.BookingStatus
	RoomID    *uuid.UUID
	StartDate *time.Time
	EndDate   *time.Time
}

type RoomBookingCount struct {
	RoomID   uuid.UUID
	RoomName string
	Count    int64
}

type BookingRepository interface {
	Create(ctx context.Context, booking *entity.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	FindBySessionIDForUpdate(ctx context.Context, sessionID string) (*entity.Booking, error)
	FindByUser(ctx context.Context, userID string, limit, offset int) ([]*entity.BookingWithRoom, error)
	CountByUser(ctx context.Context, userID string) (int64, error)
	FindAll(ctx context.Context, filter BookingFilter, limit, offset int) ([]*entity.BookingWithRoom, error)
	CountAll(ctx context.Context, filter BookingFilter) (int64, error)
	Update(ctx context.Context, booking *entity.Booking) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status entity.BookingStatus) error

	// Conflict detection
	LockSlot(ctx context.Context, roomID uuid.UUID, date time.Time) error
	FindConflicting(ctx context.Context, roomID uuid.UUID, slot domain.Slot, excludeID *uuid.UUID) ([]*entity.Booking, error)
	FindByRoomInRange(ctx context.Context, roomID uuid.UUID, from, to time.Time, statuses []entity.BookingStatus) ([]*entity.Booking, error)

	// Room lifecycle
	CountByRoom(ctx context.Context, roomID uuid.UUID) (int64, error)
	CountUpcomingByRoom(ctx context.Context, roomID uuid.UUID, from time.Time) (int64, error)

	// Statistics
	CountByStatuses(ctx context.Context, statuses []entity.BookingStatus) (int64, error)
	CountUpcoming(ctx context.Context, from time.Time, statuses []entity.BookingStatus) (int64, error)
	SumRevenue(ctx context.Context, statuses []entity.BookingStatus) (float64, error)
	MostBookedRoom(ctx context.Context, statuses []entity.BookingStatus) (*RoomBookingCount, error)

	// Maintenance
	FindStale(ctx context.Context, status entity.BookingStatus, createdBefore, now time.Time) ([]*entity.Booking, error)
	FindEndedBy(ctx context.Context, status entity.BookingStatus, date time.Time, minute int) ([]*entity.Booking, error)
}

type bookingRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewBookingRepository(db database.Querier, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking")),
	}
}

const bookingColumns = `b.id, b.room_id, b.user_id, b.date, b.start_minute, b.end_minute,
	b.customer_name, b.customer_email, b.customer_phone, b.number_of_people, b.total_price, b.status,
	b.checkout_session_id, b.checkout_expires_at, b.payment_ref, b.refund_ref, b.payment_date, b.cancelled_at,
	b.created_at, b.updated_at`

func bookingFields(b *entity.Booking) []any {
	return []any{
		&b.ID,
		&b.RoomID,
		&b.UserID,
		&b.Date,
		&b.StartMinute,
		&b.EndMinute,
		&b.CustomerName,
		&b.CustomerEmail,
		&b.CustomerPhone,
		&b.NumberOfPeople,
		&b.TotalPrice,
		&b.Status,
		&b.CheckoutSessionID,
		&b.CheckoutExpiresAt,
		&b.PaymentRef,
		&b.RefundRef,
		&b.PaymentDate,
		&b.CancelledAt,
		&b.CreatedAt,
		&b.UpdatedAt,
	}
}

// isOverlap reports a violation of the bookings_no_overlap exclusion constraint.
func isOverlap(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23P01"
}

func statusArgs(statuses []entity.BookingStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func (r *bookingRepository) Create(ctx context.Context, booking *entity.Booking) error {
	query := `
		INSERT INTO bookings (id, room_id, user_id, date, start_minute, end_minute,
			customer_name, customer_email, customer_phone, number_of_people, total_price, status,
			checkout_session_id, checkout_expires_at, payment_ref, refund_ref, payment_date, cancelled_at,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`

	_, err := r.db.Exec(ctx, query,
		booking.ID,
		booking.RoomID,
		booking.UserID,
		booking.Date,
		booking.StartMinute,
		booking.EndMinute,
		booking.CustomerName,
		booking.CustomerEmail,
		booking.CustomerPhone,
		booking.NumberOfPeople,
		booking.TotalPrice,
		booking.Status,
		booking.CheckoutSessionID,
		booking.CheckoutExpiresAt,
		booking.PaymentRef,
		booking.RefundRef,
		booking.PaymentDate,
		booking.CancelledAt,
		booking.CreatedAt,
		booking.UpdatedAt,
	)
	if isOverlap(err) {
		return domain.Conflict("Room is already booked for this time slot")
	}
	if err != nil {
		r.log.Error("Failed to create booking",
			zap.Error(err),
			zap.String("room_id", booking.RoomID.String()),
			zap.String("user_id", booking.UserID),
		)
		return fmt.Errorf("create booking %s: %w", booking.ID.String(), err)
	}

	return nil
}

func (r *bookingRepository) findOne(ctx context.Context, query string, args ...any) (*entity.Booking, error) {
	var booking entity.Booking
	err := r.db.QueryRow(ctx, query, args...).Scan(bookingFields(&booking)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings b WHERE b.id = $1`

	booking, err := r.findOne(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to find booking by ID", zap.Error(err), zap.String("booking_id", id.String()))
		return nil, fmt.Errorf("find booking by ID %s: %w", id.String(), err)
	}
	return booking, nil
}

// FindByIDForUpdate locks the booking row until the surrounding transaction ends.
func (r *bookingRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings b WHERE b.id = $1 FOR UPDATE`

	booking, err := r.findOne(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to lock booking", zap.Error(err), zap.String("booking_id", id.String()))
		return nil, fmt.Errorf("lock booking %s: %w", id.String(), err)
	}
	return booking, nil
}

func (r *bookingRepository) FindBySessionIDForUpdate(ctx context.Context, sessionID string) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings b WHERE b.checkout_session_id = $1 FOR UPDATE`

	booking, err := r.findOne(ctx, query, sessionID)
	if err != nil {
		r.log.Error("Failed to lock booking by session", zap.Error(err), zap.String("session_id", sessionID))
		return nil, fmt.Errorf("lock booking by session %s: %w", sessionID, err)
	}
	return booking, nil
}

func (r *bookingRepository) listWithRoom(ctx context.Context, query string, args ...any) ([]*entity.BookingWithRoom, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []*entity.BookingWithRoom
	for rows.Next() {
		var item entity.BookingWithRoom
		dest := append(bookingFields(&item.Booking), &item.RoomName)
		if err := rows.Scan(dest...); err != nil {
			r.log.Error("Failed to scan booking row", zap.Error(err))
			return nil, fmt.Errorf("scan booking row: %w", err)
		}
		bookings = append(bookings, &item)
	}

	return bookings, rows.Err()
}

func (r *bookingRepository) list(ctx context.Context, query string, args ...any) ([]*entity.Booking, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []*entity.Booking
	for rows.Next() {
		var booking entity.Booking
		if err := rows.Scan(bookingFields(&booking)...); err != nil {
			r.log.Error("Failed to scan booking row", zap.Error(err))
			return nil, fmt.Errorf("scan booking row: %w", err)
		}
		bookings = append(bookings, &booking)
	}

	return bookings, rows.Err()
}

func (r *bookingRepository) FindByUser(ctx context.Context, userID string, limit, offset int) ([]*entity.BookingWithRoom, error) {
	query := `
		SELECT ` + bookingColumns + `, r.name
		FROM bookings b
		JOIN rooms r ON r.id = b.room_id
		WHERE b.user_id = $1
		ORDER BY b.date DESC, b.start_minute DESC
		LIMIT $2 OFFSET $3
	`

	bookings, err := r.listWithRoom(ctx, query, userID, limit, offset)
	if err != nil {
		r.log.Error("Failed to find bookings by user",
			zap.Error(err),
			zap.String("user_id", userID),
			zap.Int("limit", limit),
			zap.Int("offset", offset),
		)
		return nil, fmt.Errorf("find bookings by user %s: %w", userID, err)
	}
	return bookings, nil
}

func (r *bookingRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM bookings WHERE user_id = $1`, userID).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count bookings by user", zap.Error(err), zap.String("user_id", userID))
		return 0, fmt.Errorf("count bookings by user %s: %w", userID, err)
	}
	return count, nil
}

// whereClause renders the admin filter. Arguments are numbered from 1.
func (f BookingFilter) whereClause() (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.Status != nil {
		add("b.status = $%d", string(*f.Status))
	}
	if f.RoomID != nil {
		add("b.room_id = $%d", *f.RoomID)
	}
	if f.StartDate != nil {
		add("b.date >= $%d", *f.StartDate)
	}
	if f.EndDate != nil {
		add("b.date <= $%d", *f.EndDate)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *bookingRepository) FindAll(ctx context.Context, filter BookingFilter, limit, offset int) ([]*entity.BookingWithRoom, error) {
	where, args := filter.whereClause()

	var sb strings.Builder
	sb.WriteString(`SELECT ` + bookingColumns + `, r.name FROM bookings b JOIN rooms r ON r.id = b.room_id`)
	sb.WriteString(where)
	sb.WriteString(fmt.Sprintf(" ORDER BY b.date DESC, b.start_minute DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2))
	args = append(args, limit, offset)

	bookings, err := r.listWithRoom(ctx, sb.String(), args...)
	if err != nil {
		r.log.Error("Failed to list bookings", zap.Error(err))
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return bookings, nil
}

func (r *bookingRepository) CountAll(ctx context.Context, filter BookingFilter) (int64, error) {
	where, args := filter.whereClause()

	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM bookings b`+where, args...).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count bookings", zap.Error(err))
		return 0, fmt.Errorf("count bookings: %w", err)
	}
	return count, nil
}

func (r *bookingRepository) Update(ctx context.Context, booking *entity.Booking) error {
	query := `
		UPDATE bookings
		SET date = $2, start_minute = $3, end_minute = $4, customer_name = $5, customer_email = $6,
		    customer_phone = $7, number_of_people = $8, total_price = $9, status = $10,
		    checkout_session_id = $11, checkout_expires_at = $12, payment_ref = $13, refund_ref = $14,
		    payment_date = $15, cancelled_at = $16, updated_at = $17
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query,
		booking.ID,
		booking.Date,
		booking.StartMinute,
		booking.EndMinute,
		booking.CustomerName,
		booking.CustomerEmail,
		booking.CustomerPhone,
		booking.NumberOfPeople,
		booking.TotalPrice,
		booking.Status,
		booking.CheckoutSessionID,
		booking.CheckoutExpiresAt,
		booking.PaymentRef,
		booking.RefundRef,
		booking.PaymentDate,
		booking.CancelledAt,
		booking.UpdatedAt,
	)
	if isOverlap(err) {
		return domain.Conflict("Room is already booked for this time slot")
	}
	if err != nil {
		r.log.Error("Failed to update booking", zap.Error(err), zap.String("booking_id", booking.ID.String()))
		return fmt.Errorf("update booking %s: %w", booking.ID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("booking %s not found", booking.ID.String())
	}

	return nil
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.BookingStatus) error {
	query := `UPDATE bookings SET status = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id, status)
	if err != nil {
		r.log.Error("Failed to update booking status",
			zap.Error(err),
			zap.String("booking_id", id.String()),
			zap.String("status", string(status)),
		)
		return fmt.Errorf("update booking %s status to %s: %w", id.String(), string(status), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("booking %s not found", id.String())
	}

	return nil
}

// LockSlot takes a transaction-scoped advisory lock on (room, date). Every
// check-then-write on a room's calendar day must hold it.
func (r *bookingRepository) LockSlot(ctx context.Context, roomID uuid.UUID, date time.Time) error {
	key := roomID.String() + "|" + date.Format(domain.DateLayout)

	if _, err := r.db.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, key); err != nil {
		r.log.Error("Failed to lock slot", zap.Error(err), zap.String("key", key))
		return fmt.Errorf("lock slot %s: %w", key, err)
	}
	return nil
}

func (r *bookingRepository) FindConflicting(ctx context.Context, roomID uuid.UUID, slot domain.Slot, excludeID *uuid.UUID) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings b
		WHERE b.room_id = $1 AND b.date = $2 AND b.status = ANY($3)
		  AND b.start_minute < $5 AND b.end_minute > $4`
	args := []any{roomID, slot.Date, entity.SlotHoldingStatuses(), int(slot.Start), int(slot.End)}

	if excludeID != nil {
		query += ` AND b.id <> $6`
		args = append(args, *excludeID)
	}
	query += ` ORDER BY b.start_minute`

	bookings, err := r.list(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to find conflicting bookings",
			zap.Error(err),
			zap.String("room_id", roomID.String()),
			zap.String("slot", slot.String()),
		)
		return nil, fmt.Errorf("find conflicting bookings for room %s: %w", roomID.String(), err)
	}
	return bookings, nil
}

func (r *bookingRepository) FindByRoomInRange(ctx context.Context, roomID uuid.UUID, from, to time.Time, statuses []entity.BookingStatus) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings b
		WHERE b.room_id = $1 AND b.date >= $2 AND b.date <= $3 AND b.status = ANY($4)
		ORDER BY b.date, b.start_minute
	`

	bookings, err := r.list(ctx, query, roomID, from, to, statusArgs(statuses))
	if err != nil {
		r.log.Error("Failed to find room bookings in range", zap.Error(err), zap.String("room_id", roomID.String()))
		return nil, fmt.Errorf("find bookings for room %s: %w", roomID.String(), err)
	}
	return bookings, nil
}

func (r *bookingRepository) count(ctx context.Context, query string, args ...any) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *bookingRepository) CountByRoom(ctx context.Context, roomID uuid.UUID) (int64, error) {
	count, err := r.count(ctx, `SELECT COUNT(*) FROM bookings WHERE room_id = $1`, roomID)
	if err != nil {
		r.log.Error("Failed to count room bookings", zap.Error(err), zap.String("room_id", roomID.String()))
		return 0, fmt.Errorf("count bookings for room %s: %w", roomID.String(), err)
	}
	return count, nil
}

func (r *bookingRepository) CountUpcomingByRoom(ctx context.Context, roomID uuid.UUID, from time.Time) (int64, error) {
	query := `SELECT COUNT(*) FROM bookings WHERE room_id = $1 AND date >= $2 AND status = ANY($3)`

	count, err := r.count(ctx, query, roomID, from, entity.SlotHoldingStatuses())
	if err != nil {
		r.log.Error("Failed to count upcoming room bookings", zap.Error(err), zap.String("room_id", roomID.String()))
		return 0, fmt.Errorf("count upcoming bookings for room %s: %w", roomID.String(), err)
	}
	return count, nil
}

// CountByStatuses counts bookings in any of statuses, or all bookings when empty.
func (r *bookingRepository) CountByStatuses(ctx context.Context, statuses []entity.BookingStatus) (int64, error) {
	var (
		count int64
		err   error
	)
	if len(statuses) == 0 {
		count, err = r.count(ctx, `SELECT COUNT(*) FROM bookings`)
	} else {
		count, err = r.count(ctx, `SELECT COUNT(*) FROM bookings WHERE status = ANY($1)`, statusArgs(statuses))
	}
	if err != nil {
		r.log.Error("Failed to count bookings by status", zap.Error(err))
		return 0, fmt.Errorf("count bookings by status: %w", err)
	}
	return count, nil
}

func (r *bookingRepository) CountUpcoming(ctx context.Context, from time.Time, statuses []entity.BookingStatus) (int64, error) {
	query := `SELECT COUNT(*) FROM bookings WHERE date >= $1 AND status = ANY($2)`

	count, err := r.count(ctx, query, from, statusArgs(statuses))
	if err != nil {
		r.log.Error("Failed to count upcoming bookings", zap.Error(err))
		return 0, fmt.Errorf("count upcoming bookings: %w", err)
	}
	return count, nil
}

func (r *bookingRepository) SumRevenue(ctx context.Context, statuses []entity.BookingStatus) (float64, error) {
	query := `SELECT COALESCE(SUM(total_price), 0)::float8 FROM bookings WHERE status = ANY($1)`

	var total float64
	if err := r.db.QueryRow(ctx, query, statusArgs(statuses)).Scan(&total); err != nil {
		r.log.Error("Failed to sum revenue", zap.Error(err))
		return 0, fmt.Errorf("sum revenue: %w", err)
	}
	return total, nil
}

func (r *bookingRepository) MostBookedRoom(ctx context.Context, statuses []entity.BookingStatus) (*RoomBookingCount, error) {
	query := `
		SELECT b.room_id, r.name, COUNT(*) AS bookings
		FROM bookings b
		JOIN rooms r ON r.id = b.room_id
		WHERE b.status = ANY($1)
		GROUP BY b.room_id, r.name
		ORDER BY bookings DESC, r.name ASC
		LIMIT 1
	`

	var result RoomBookingCount
	err := r.db.QueryRow(ctx, query, statusArgs(statuses)).Scan(&result.RoomID, &result.RoomName, &result.Count)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find most booked room", zap.Error(err))
		return nil, fmt.Errorf("find most booked room: %w", err)
	}
	return &result, nil
}

// FindStale returns unpaid bookings in status created before createdBefore
// whose checkout, if one was opened, had expired by now.
func (r *bookingRepository) FindStale(ctx context.Context, status entity.BookingStatus, createdBefore, now time.Time) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings b
		WHERE b.status = $1 AND b.payment_date IS NULL AND b.created_at < $2
		  AND (b.checkout_expires_at IS NULL OR b.checkout_expires_at <= $3)
		ORDER BY b.created_at
		LIMIT 500
	`

	bookings, err := r.list(ctx, query, status, createdBefore, now)
	if err != nil {
		r.log.Error("Failed to find stale bookings", zap.Error(err), zap.String("status", string(status)))
		return nil, fmt.Errorf("find stale %s bookings: %w", status, err)
	}
	return bookings, nil
}

// FindEndedBy returns bookings in status whose end lies at or before
// (date, minute).
func (r *bookingRepository) FindEndedBy(ctx context.Context, status entity.BookingStatus, date time.Time, minute int) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings b
		WHERE b.status = $1 AND (b.date < $2 OR (b.date = $2 AND b.end_minute <= $3))
		ORDER BY b.date, b.end_minute
		LIMIT 500
	`

	bookings, err := r.list(ctx, query, status, date, minute)
	if err != nil {
		r.log.Error("Failed to find ended bookings", zap.Error(err), zap.String("status", string(status)))
		return nil, fmt.Errorf("find ended %s bookings: %w", status, err)
	}
	return bookings, nil
}

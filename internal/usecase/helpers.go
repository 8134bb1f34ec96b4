package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"room-booking/internal/data/entity"
	"room-booking/internal/data/repository"
	"room-booking/internal/domain"
)

func parseID(value, field string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, domain.Validation("Invalid "+field, map[string]string{field: "Must be a valid UUID"})
	}
	return id, nil
}

func errBookingNotFound() error {
	return domain.NotFound("BOOKING_NOT_FOUND", "Booking not found")
}

func errRoomNotFound() error {
	return domain.NotFound("ROOM_NOT_FOUND", "Room not found")
}

func parseSlot(date, start, end string) (domain.Slot, error) {
	slot, err := domain.ParseSlot(date, start, end)
	if err != nil {
		return domain.Slot{}, domain.Validation("Invalid time slot", map[string]string{"endTime": err.Error()})
	}
	return slot, nil
}

func ensureFuture(slot domain.Slot, loc *time.Location, now time.Time) error {
	if !slot.StartsAt(loc).After(now) {
		return domain.Validation("Cannot book a time slot in the past", map[string]string{"date": "Must be in the future"})
	}
	return nil
}

func ensureCapacity(people int, room *entity.Room) error {
	if people > room.Capacity {
		return domain.Validation("Too many people for this room", map[string]string{
			"numberOfPeople": fmt.Sprintf("Must be at most %d", room.Capacity),
		})
	}
	return nil
}

// checkSlotFree locks (room, date) for the rest of the transaction and fails
// with a conflict when a slot-holding booking overlaps slot. It must be called
// from inside Transactor.WithinTx.
func checkSlotFree(ctx context.Context, repo *repository.Repository, roomID uuid.UUID, slot domain.Slot, excludeID *uuid.UUID) error {
	if err := repo.Booking.LockSlot(ctx, roomID, slot.Date); err != nil {
		return err
	}

	conflicts, err := repo.Booking.FindConflicting(ctx, roomID, slot, excludeID)
	if err != nil {
		return err
	}
	if len(conflicts) > 0 {
		taken := conflicts[0].Slot()
		return domain.Conflict(fmt.Sprintf("Room is already booked from %s to %s", taken.Start, taken.End))
	}
	return nil
}

// expireUnpaid cancels a booking whose checkout never completed. It reports
// false when the booking is no longer waiting for payment.
func expireUnpaid(ctx context.Context, repo *repository.Repository, b *entity.Booking, now time.Time) (bool, error) {
	if !b.AwaitingPayment() || !b.Status.CanTransitionTo(entity.BookingStatusCancelledNoPayment) {
		return false, nil
	}
	b.Status = entity.BookingStatusCancelledNoPayment
	b.CancelledAt = &now
	b.UpdatedAt = now
	if err := repo.Booking.Update(ctx, b); err != nil {
		return false, err
	}
	return true, nil
}

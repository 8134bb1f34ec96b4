package domain

// BillableHours counts whole hours between the hour components of start and
// end. Minutes are ignored on both ends: 09:30-10:30 bills 1 hour and
// 09:30-10:00 bills 0.
func BillableHours(slot Slot) int {
	return slot.End.Hour() - slot.Start.Hour()
}

// TotalPrice is BillableHours times the room's hourly rate.
func TotalPrice(slot Slot, pricePerHour float64) float64 {
	return float64(BillableHours(slot)) * pricePerHour
}

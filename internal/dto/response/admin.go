package response

type MostBookedRoom struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Bookings int64  `json:"bookings"`
}

type StatisticsResponse struct {
	TotalRooms        int64           `json:"totalRooms"`
	TotalBookings     int64           `json:"totalBookings"`
	ConfirmedBookings int64           `json:"confirmedBookings"`
	FutureBookings    int64           `json:"futureBookings"`
	TotalRevenue      float64         `json:"totalRevenue"`
	MostBookedRoom    *MostBookedRoom `json:"mostBookedRoom"`
}

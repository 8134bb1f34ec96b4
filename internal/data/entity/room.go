package entity

type Room struct {
	Base
	Name         string   `db:"name"`
	Description  *string  `db:"description"`
	Capacity     int      `db:"capacity"`
	PricePerHour float64  `db:"price_per_hour"`
	Equipments   []string `db:"equipments"`
	ImageURL     *string  `db:"image_url"`
	IsActive     bool     `db:"is_active"`
}

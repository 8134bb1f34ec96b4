package request

type CreateRoomRequest struct {
	Name         string   `json:"name" validate:"required,min=2,max=100"`
	Description  *string  `json:"description,omitempty" validate:"omitempty,max=2000"`
	Capacity     int      `json:"capacity" validate:"required,min=1"`
	PricePerHour float64  `json:"pricePerHour" validate:"gte=0"`
	Equipments   []string `json:"equipments,omitempty" validate:"omitempty,dive,min=1,max=100"`
	ImageURL     *string  `json:"imageUrl,omitempty" validate:"omitempty,url"`
}

type UpdateRoomRequest struct {
	Name         *string   `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Description  *string   `json:"description,omitempty" validate:"omitempty,max=2000"`
	Capacity     *int      `json:"capacity,omitempty" validate:"omitempty,min=1"`
	PricePerHour *float64  `json:"pricePerHour,omitempty" validate:"omitempty,gte=0"`
	Equipments   *[]string `json:"equipments,omitempty" validate:"omitempty,dive,min=1,max=100"`
	ImageURL     *string   `json:"imageUrl,omitempty" validate:"omitempty,url"`
	IsActive     *bool     `json:"isActive,omitempty"`
}

package response

import "room-booking/pkg/utils"

type PaginatedResponse[T any] struct {
	Data []T            `json:"data"`
	Meta utils.PageMeta `json:"meta"`
}

func NewPaginatedResponse[T any](data []T, page, perPage int, total int64) *PaginatedResponse[T] {
	if data == nil {
		data = []T{}
	}
	return &PaginatedResponse[T]{
		Data: data,
		Meta: utils.NewPageMeta(page, perPage, total),
	}
}

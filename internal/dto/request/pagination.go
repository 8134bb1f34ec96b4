package request

import "room-booking/pkg/utils"

type PaginatedRequest struct {
	Page    int `json:"page" validate:"min=1"`
	PerPage int `json:"limit" validate:"min=1,max=100"`
}

func NewPaginatedRequest(page, limit string) PaginatedRequest {
	p, l := utils.ParsePage(page, limit)
	return PaginatedRequest{Page: p, PerPage: l}
}

func (p PaginatedRequest) Offset() int {
	return utils.CalculateOffset(p.Page, p.Limit())
}

func (p PaginatedRequest) Limit() int {
	if p.PerPage < 1 {
		return utils.DefaultPageSize
	}
	if p.PerPage > utils.MaxPageSize {
		return utils.MaxPageSize
	}
	return p.PerPage
}

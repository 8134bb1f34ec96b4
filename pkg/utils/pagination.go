package utils

import "strconv"

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type PageMeta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

func NewPageMeta(page, limit int, total int64) PageMeta {
	return PageMeta{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: CalculateTotalPages(total, limit),
	}
}

// ParseInt converts string to a positive int with default value
func ParseInt(value string, defaultValue int) int {
	if value == "" {
		return defaultValue
	}

	result, err := strconv.Atoi(value)
	if err != nil || result < 1 {
		return defaultValue
	}

	return result
}

// ParsePage reads page/limit query values, clamping limit to MaxPageSize.
func ParsePage(pageStr, limitStr string) (page, limit int) {
	page = ParseInt(pageStr, 1)
	limit = ParseInt(limitStr, DefaultPageSize)
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return page, limit
}

func CalculateTotalPages(total int64, perPage int) int {
	if perPage <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(perPage) - 1) / int64(perPage))
}

func CalculateOffset(page, perPage int) int {
	if page < 1 {
		return 0
	}
	return (page - 1) * perPage
}

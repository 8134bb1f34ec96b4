package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"room-booking/internal/domain"
)

func TestPagination(t *testing.T) {
	page, limit := ParsePage("", "")
	assert.Equal(t, 1, page)
	assert.Equal(t, DefaultPageSize, limit)

	page, limit = ParsePage("3", "500")
	assert.Equal(t, 3, page)
	assert.Equal(t, MaxPageSize, limit)

	page, _ = ParsePage("-2", "10")
	assert.Equal(t, 1, page)

	assert.Equal(t, 20, CalculateOffset(3, 10))
	assert.Equal(t, 0, CalculateOffset(0, 10))
	assert.Equal(t, 3, CalculateTotalPages(21, 10))
	assert.Equal(t, 0, CalculateTotalPages(0, 10))
}

type sample struct {
	Name      string `json:"name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	StartTime string `json:"startTime" validate:"required,clock"`
	People    int    `json:"numberOfPeople" validate:"min=1"`
}

func TestValidateStruct(t *testing.T) {
	errs := ValidateStruct(sample{Name: "a", Email: "a@b.co", StartTime: "09:00", People: 1})
	assert.Nil(t, errs)

	errs = ValidateStruct(sample{Email: "nope", StartTime: "25:00"})
	assert.Equal(t, "This field is required", errs["name"])
	assert.Equal(t, "Invalid email format", errs["email"])
	assert.Equal(t, "Must be a time in HH:MM format", errs["startTime"])
	assert.Equal(t, "Must be at least 1", errs["numberOfPeople"])

	err := ValidationError(errs)
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestResponseEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	ResponseError(rec, http.StatusConflict, "TIME_CONFLICT", "taken", nil)

	assert.Equal(t, http.StatusConflict, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.NotContains(t, body, "data")
	errBody := body["error"].(map[string]any)
	assert.Equal(t, "TIME_CONFLICT", errBody["code"])
	assert.Equal(t, "taken", errBody["message"])

	rec = httptest.NewRecorder()
	ResponsePaginated(rec, []int{1}, NewPageMeta(1, 10, 1))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(1), body["meta"].(map[string]any)["totalPages"])
}

package validation

import (
	"testing"

	"ieum/internal/apperr"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	InviteCode string `json:"inviteCode" validate:"required,len=6"`
	Rating     int    `json:"rating" validate:"min=1,max=5"`
	Month      string `json:"yearMonth" validate:"omitempty,yearmonth"`
}

func TestValidateStruct(t *testing.T) {
	assert.NoError(t, ValidateStruct(&sample{InviteCode: "ABC234", Rating: 5, Month: "2024-01"}))

	err := ValidateStruct(&sample{InviteCode: "", Rating: 9, Month: "2024-13"})
	if assert.Error(t, err) {
		assert.True(t, apperr.Is(err, apperr.KindBadRequest))
		assert.Contains(t, err.Error(), "inviteCode is required")
		assert.Contains(t, err.Error(), "rating must be at most 5")
		assert.Contains(t, err.Error(), "yearMonth must be in YYYY-MM format")
	}
}

func TestIsYearMonth(t *testing.T) {
	for _, ok := range []string{"2024-01", "1999-12"} {
		assert.True(t, IsYearMonth(ok), ok)
	}
	for _, bad := range []string{"2024-1", "2024-00", "24-01", "2024/01", ""} {
		assert.False(t, IsYearMonth(bad), bad)
	}
}

func TestGetValidator_Singleton(t *testing.T) {
	assert.Same(t, GetValidator(), GetValidator())
}

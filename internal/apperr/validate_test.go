package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type input struct {
	Title    string  `json:"title" validate:"required,max=10"`
	Priority string  `json:"priority" validate:"omitempty,oneof=baixa media alta critica"`
	Email    string  `json:"email" validate:"omitempty,email"`
	Budget   float64 `json:"budget" validate:"min=0"`
}

func TestValidateStruct_ReportsJSONField(t *testing.T) {
	cases := []struct {
		name  string
		in    input
		field string
	}{
		{"required", input{}, "title"},
		{"too long", input{Title: "um título longo demais"}, "title"},
		{"oneof", input{Title: "ok", Priority: "urgente"}, "priority"},
		{"email", input{Title: "ok", Email: "ana"}, "email"},
		{"min", input{Title: "ok", Budget: -1}, "budget"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateStruct(tc.in)
			e, ok := As(err)
			require.True(t, ok)
			assert.Equal(t, KindValidation, e.Kind)
			assert.Equal(t, tc.field, e.Field)
		})
	}

	assert.NoError(t, ValidateStruct(input{Title: "ok", Priority: "alta"}))
}

func TestIs_MatchesKind(t *testing.T) {
	err := fmt.Errorf("load: %w", NotFound("task %d not found", 7))
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrPermission))
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
}

func TestError_Message(t *testing.T) {
	assert.Equal(t, "title: must not be empty", Validation("title", "must not be empty").Error())

	wrapped := IO(errors.New("no space left"), "write report")
	assert.Equal(t, "write report: no space left", wrapped.Error())
	assert.ErrorContains(t, errors.Unwrap(wrapped), "no space left")
}

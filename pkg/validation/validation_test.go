package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	dErrors "pbd/pkg/domain-errors"
)

type updatesBody struct {
	Provider      string  `json:"provider" validate:"required,oneof=finelocation coarselocation"`
	MinTimeMillis int64   `json:"min_time_ms" validate:"gte=0"`
	MinDistance   float32 `json:"min_distance" validate:"gte=0"`
	Label         string  `json:"label,omitempty" validate:"omitempty,notblank,max=8"`
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		body updatesBody
		msg  string
	}{
		{name: "valid", body: updatesBody{Provider: "finelocation"}},
		{name: "missing provider", body: updatesBody{}, msg: "provider is required"},
		{name: "unknown provider", body: updatesBody{Provider: "gps"}, msg: "provider must be one of [finelocation coarselocation]"},
		{name: "negative interval", body: updatesBody{Provider: "finelocation", MinTimeMillis: -1}, msg: "min_time_ms must be at least 0"},
		{name: "negative distance", body: updatesBody{Provider: "coarselocation", MinDistance: -0.5}, msg: "min_distance must be at least 0"},
		{name: "blank label", body: updatesBody{Provider: "finelocation", Label: "   "}, msg: "label must not be blank"},
		{name: "long label", body: updatesBody{Provider: "finelocation", Label: "far-too-long"}, msg: "label must be at most 8"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.body)
			if tt.msg == "" {
				assert.NoError(t, err)
				return
			}
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
			assert.EqualError(t, err, tt.msg)
		})
	}
}

func TestErrorMessage_NonValidatorError(t *testing.T) {
	assert.Equal(t, "invalid request body", ErrorMessage(errors.New("other")))
}

package device

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"pbd/internal/authorization"
)

func TestStatic_Identifier(t *testing.T) {
	values := map[authorization.Capability]string{
		authorization.DeviceID:    "358240051111110",
		authorization.Line1Number: "",
	}
	d := NewStatic(values)
	values[authorization.AndroidID] = "mutated after construction"

	v, ok := d.Identifier(context.Background(), authorization.DeviceID)
	assert.True(t, ok)
	assert.Equal(t, "358240051111110", v)

	_, ok = d.Identifier(context.Background(), authorization.Line1Number)
	assert.False(t, ok, "empty values are unavailable")

	_, ok = d.Identifier(context.Background(), authorization.AndroidID)
	assert.False(t, ok, "input map is copied")
}

func TestStatic_NilValues(t *testing.T) {
	_, ok := NewStatic(nil).Identifier(context.Background(), authorization.SubscriberID)
	assert.False(t, ok)
}

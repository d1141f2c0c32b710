package secrets

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "pbd/pkg/domain-errors"
)

func TestGenerate(t *testing.T) {
	a, err := Generate(MinKeyBytes)
	require.NoError(t, err)
	b, err := Generate(MinKeyBytes)
	require.NoError(t, err)

	raw, err := base64.RawURLEncoding.DecodeString(a)
	require.NoError(t, err)
	assert.Len(t, raw, MinKeyBytes)
	assert.NotEqual(t, a, b)
}

func TestGenerate_TooShort(t *testing.T) {
	_, err := Generate(16)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

package location

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProvider(t *testing.T) {
	p, err := ParseProvider("finelocation")
	require.NoError(t, err)
	assert.Equal(t, ProviderFine, p)
	assert.Equal(t, "gps", p.PlatformName())

	p, err = ParseProvider("coarselocation")
	require.NoError(t, err)
	assert.Equal(t, ProviderCoarse, p)
	assert.Equal(t, "network", p.PlatformName())

	p, err = ParseProvider("gps")
	require.Error(t, err)
	assert.Equal(t, ProviderUnset, p)
	assert.False(t, p.IsSet())
	assert.Empty(t, p.PlatformName())
}

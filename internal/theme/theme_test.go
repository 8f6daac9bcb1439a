package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	th, ok := Lookup("pure")
	require.True(t, ok)
	assert.Equal(t, "pure", th.Name)
	assert.NotEmpty(t, th.Format)

	_, ok = Lookup("nonexistent")
	assert.False(t, ok)
}

func TestDefaultIsSimple(t *testing.T) {
	assert.Equal(t, "simple", Default().Name)
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"agnoster", "pure", "robbyrussell", "simple"}, Names())
}

func TestEveryThemeHasFormat(t *testing.T) {
	for _, name := range Names() {
		th, ok := Lookup(name)
		require.True(t, ok)
		assert.NotEmpty(t, th.Format, name)
	}
}

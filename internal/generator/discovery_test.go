package generator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseDirective(t *testing.T) {
	t.Run("bare marker", func(t *testing.T) {
		d, err := parseDirective(directiveMarker)
		require.NoError(t, err)
		require.Equal(t, directive{}, d)
	})

	t.Run("prefix argument", func(t *testing.T) {
		d, err := parseDirective(directiveMarker + " prefix=With")
		require.NoError(t, err)
		require.Equal(t, "With", d.Prefix)
		require.True(t, d.HasPrefix)
		require.False(t, d.Debug)
	})

	t.Run("empty prefix argument still counts as configured", func(t *testing.T) {
		d, err := parseDirective(directiveMarker + " prefix=")
		require.NoError(t, err)
		require.Empty(t, d.Prefix)
		require.True(t, d.HasPrefix)
	})

	t.Run("debug argument", func(t *testing.T) {
		d, err := parseDirective(directiveMarker + " prefix=Set debug")
		require.NoError(t, err)
		require.Equal(t, "Set", d.Prefix)
		require.True(t, d.Debug)
	})

	t.Run("unknown argument", func(t *testing.T) {
		_, err := parseDirective(directiveMarker + " shiny")
		require.ErrorContains(t, err, `unknown //buildergen:builder argument "shiny"`)
	})
}

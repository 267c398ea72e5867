package cryptox_test

import (
	"testing"

	"github.com/osamaalamer2012-cmyk/ereceipt-db-only/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestGenerateCode(t *testing.T) {
	t.Parallel()

	t.Run("produces codes of the requested length", func(t *testing.T) {
		for _, length := range []int{1, 7, 32} {
			code, err := cryptox.GenerateCode(length)
			require.NoError(t, err)
			require.Len(t, code, length)
		}
	})

	t.Run("codes use the url-safe alphabet", func(t *testing.T) {
		code, err := cryptox.GenerateCode(64)
		require.NoError(t, err)
		require.Regexp(t, "^[A-Za-z0-9]+$", code)
	})

	t.Run("codes are unique in practice", func(t *testing.T) {
		seen := make(map[string]struct{})
		for i := 0; i < 1000; i++ {
			code := cryptox.MustGenerateCode(cryptox.DefaultCodeLength)
			_, dup := seen[code]
			require.False(t, dup, "duplicate code %q", code)
			seen[code] = struct{}{}
		}
	})

	t.Run("rejects non-positive lengths", func(t *testing.T) {
		_, err := cryptox.GenerateCode(0)
		require.Error(t, err)
		_, err = cryptox.GenerateCode(-3)
		require.Error(t, err)
	})
}

func TestGenerateNumericCode(t *testing.T) {
	t.Parallel()

	t.Run("is fixed width and numeric", func(t *testing.T) {
		for i := 0; i < 200; i++ {
			code, err := cryptox.GenerateNumericCode(6)
			require.NoError(t, err)
			require.Len(t, code, 6)
			require.Regexp(t, "^[0-9]{6}$", code)
		}
	})

	t.Run("rejects out-of-range digit counts", func(t *testing.T) {
		_, err := cryptox.GenerateNumericCode(0)
		require.Error(t, err)
		_, err = cryptox.GenerateNumericCode(19)
		require.Error(t, err)
	})
}

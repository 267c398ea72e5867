package app

import (
	"strings"
	"testing"

	"github.com/osamaalamer2012-cmyk/ereceipt-db-only/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestParseKeyConfigs(t *testing.T) {
	t.Parallel()

	keys := parseKeyConfigs(" k1:secret-one , ,k2:secret:with:colons,broken,")
	require.Len(t, keys, 2)
	require.Equal(t, "k1", keys[0].KID)
	require.Equal(t, "secret-one", keys[0].Secret)
	require.Equal(t, "k2", keys[1].KID)
	require.Equal(t, "secret:with:colons", keys[1].Secret)
}

func TestBuildKeyRing(t *testing.T) {
	t.Parallel()

	secret := strings.Repeat("a", 32)

	t.Run("last configured key signs by default", func(t *testing.T) {
		ring, err := buildKeyRing(Config{
			Keys: "k1:" + secret + ",k2:" + strings.Repeat("b", 32),
		})
		require.NoError(t, err)
		require.Equal(t, "k2", ring.ActiveKID())
	})

	t.Run("active kid override", func(t *testing.T) {
		ring, err := buildKeyRing(Config{
			Keys:      "k1:" + secret + ",k2:" + strings.Repeat("b", 32),
			ActiveKID: "k1",
		})
		require.NoError(t, err)
		require.Equal(t, "k1", ring.ActiveKID())
	})

	t.Run("legacy secret alone still signs", func(t *testing.T) {
		ring, err := buildKeyRing(Config{LegacySecret: "short-but-accepted"})
		require.NoError(t, err)
		require.Equal(t, jwtx.LegacyKID, ring.ActiveKID())
	})

	t.Run("nothing configured refuses to start", func(t *testing.T) {
		_, err := buildKeyRing(Config{})
		require.ErrorIs(t, err, jwtx.ErrNoKeys)
	})
}

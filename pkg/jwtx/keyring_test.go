package jwtx_test

import (
	"strings"
	"testing"

	"github.com/osamaalamer2012-cmyk/ereceipt-db-only/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

var (
	secretA = strings.Repeat("a", 32)
	secretB = strings.Repeat("b", 32)
	secretC = strings.Repeat("c", 48)
)

func TestNewKeyRing(t *testing.T) {
	t.Parallel()

	t.Run("active defaults to last configured entry", func(t *testing.T) {
		ring, err := jwtx.NewKeyRing([]jwtx.KeyConfig{
			{KID: "k1", Secret: secretA},
			{KID: "k2", Secret: secretB},
		}, "", "")
		require.NoError(t, err)
		require.Equal(t, "k2", ring.ActiveKID())
	})

	t.Run("explicit active kid wins", func(t *testing.T) {
		ring, err := jwtx.NewKeyRing([]jwtx.KeyConfig{
			{KID: "k1", Secret: secretA},
			{KID: "k2", Secret: secretB},
		}, "k1", "")
		require.NoError(t, err)
		require.Equal(t, "k1", ring.ActiveKID())
	})

	t.Run("short secrets are silently dropped", func(t *testing.T) {
		ring, err := jwtx.NewKeyRing([]jwtx.KeyConfig{
			{KID: "weak", Secret: "too-short"},
			{KID: "strong", Secret: secretC},
		}, "", "")
		require.NoError(t, err)
		require.Equal(t, "strong", ring.ActiveKID())

		_, ok := ring.Lookup("weak")
		require.False(t, ok)
	})

	t.Run("active kid must survive filtering", func(t *testing.T) {
		_, err := jwtx.NewKeyRing([]jwtx.KeyConfig{
			{KID: "weak", Secret: "too-short"},
			{KID: "strong", Secret: secretC},
		}, "weak", "")
		require.ErrorIs(t, err, jwtx.ErrUnknownKID)
	})

	t.Run("legacy secret becomes the sole key", func(t *testing.T) {
		ring, err := jwtx.NewKeyRing(nil, "", secretA)
		require.NoError(t, err)
		require.Equal(t, jwtx.LegacyKID, ring.ActiveKID())
		require.Len(t, ring.KIDs(), 1)
	})

	t.Run("nothing configured fails", func(t *testing.T) {
		_, err := jwtx.NewKeyRing(nil, "", "")
		require.ErrorIs(t, err, jwtx.ErrNoKeys)
	})
}

func TestKeyRingRotate(t *testing.T) {
	t.Parallel()

	ring, err := jwtx.NewKeyRing([]jwtx.KeyConfig{
		{KID: "k1", Secret: secretA},
		{KID: "k2", Secret: secretB},
	}, "", "")
	require.NoError(t, err)

	t.Run("rotates to a registered kid", func(t *testing.T) {
		require.NoError(t, ring.Rotate("k1"))
		require.Equal(t, "k1", ring.ActiveKID())

		kid, secret := ring.SigningKey()
		require.Equal(t, "k1", kid)
		require.Equal(t, []byte(secretA), secret)
	})

	t.Run("rejects an unregistered kid", func(t *testing.T) {
		require.ErrorIs(t, ring.Rotate("ghost"), jwtx.ErrUnknownKID)
	})

	t.Run("retired keys stay registered", func(t *testing.T) {
		require.NoError(t, ring.Rotate("k2"))
		_, ok := ring.Lookup("k1")
		require.True(t, ok)
		require.Len(t, ring.AllSecrets(), 2)
	})
}

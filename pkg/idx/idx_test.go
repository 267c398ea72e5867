package idx_test

import (
	"testing"
	"time"

	"github.com/osamaalamer2012-cmyk/ereceipt-db-only/pkg/idx"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("generates valid ULIDs", func(t *testing.T) {
		id := idx.New()
		require.False(t, id.IsZero())

		parsed, err := idx.Parse(id.String())
		require.NoError(t, err)
		require.Equal(t, id, parsed)
	})

	t.Run("ids are monotonic within a run", func(t *testing.T) {
		a := idx.New()
		b := idx.New()
		require.Less(t, a.String(), b.String())
	})
}

func TestParse(t *testing.T) {
	t.Parallel()

	t.Run("rejects empty", func(t *testing.T) {
		_, err := idx.Parse("")
		require.ErrorIs(t, err, idx.ErrInvalid)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := idx.Parse("not-a-ulid")
		require.ErrorIs(t, err, idx.ErrInvalid)
	})

	t.Run("trims whitespace", func(t *testing.T) {
		id := idx.New()
		parsed, err := idx.Parse("  " + id.String() + " ")
		require.NoError(t, err)
		require.Equal(t, id, parsed)
	})
}

func TestTime(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	id := idx.NewAt(at)
	require.Equal(t, at, id.Time())

	require.True(t, idx.Zero.Time().IsZero())
}

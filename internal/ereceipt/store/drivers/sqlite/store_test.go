package sqlite_test

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/osamaalamer2012-cmyk/ereceipt-db-only/internal/ereceipt/domain"
	"github.com/osamaalamer2012-cmyk/ereceipt-db-only/internal/ereceipt/store"
	"github.com/osamaalamer2012-cmyk/ereceipt-db-only/internal/ereceipt/store/drivers/sqlite"
	"github.com/osamaalamer2012-cmyk/ereceipt-db-only/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	dsn := fmt.Sprintf(
		"file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)",
		filepath.Join(t.TempDir(), "test.db"),
	)
	st, err := sqlite.NewStore(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func testReceipt() domain.Receipt {
	now := time.Now().UTC()
	return domain.Receipt{
		ID:       idx.New().String(),
		TxnID:    "T1",
		MSISDN:   "+15551234567",
		Amount:   domain.Amount(999),
		Currency: "USD",
		Items: []domain.ReceiptItem{
			{SKU: "S1", Name: "Widget", Qty: 1, Price: domain.Amount(999)},
		},
		ExpiresAt: now.Add(48 * time.Hour),
		MaxUses:   2,
		Uses:      0,
		CreatedAt: now,
	}
}

func TestReceiptsRepo(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)
	ctx := context.Background()

	t.Run("create and get round trip", func(t *testing.T) {
		rec := testReceipt()
		require.NoError(t, st.Receipts().Create(ctx, rec))

		got, err := st.Receipts().Get(ctx, rec.ID)
		require.NoError(t, err)
		require.Equal(t, rec.ID, got.ID)
		require.Equal(t, rec.TxnID, got.TxnID)
		require.Equal(t, rec.MSISDN, got.MSISDN)
		require.Equal(t, rec.Amount, got.Amount)
		require.Equal(t, rec.Items, got.Items)
		require.WithinDuration(t, rec.ExpiresAt, got.ExpiresAt, time.Second)
		require.Equal(t, 2, got.MaxUses)
		require.Equal(t, 0, got.Uses)
	})

	t.Run("missing receipt maps to ErrNotFound", func(t *testing.T) {
		_, err := st.Receipts().Get(ctx, "nope")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("increment uses", func(t *testing.T) {
		rec := testReceipt()
		require.NoError(t, st.Receipts().Create(ctx, rec))

		require.NoError(t, st.Receipts().IncrementUses(ctx, rec.ID))
		require.NoError(t, st.Receipts().IncrementUses(ctx, rec.ID))

		got, err := st.Receipts().Get(ctx, rec.ID)
		require.NoError(t, err)
		require.Equal(t, 2, got.Uses)
	})

	t.Run("increment of a missing receipt fails", func(t *testing.T) {
		err := st.Receipts().IncrementUses(ctx, "nope")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("list recent is newest first and bounded", func(t *testing.T) {
		rows, err := st.Receipts().ListRecent(ctx, 1)
		require.NoError(t, err)
		require.Len(t, rows, 1)
	})
}

func TestShortLinksRepo(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	link := domain.ShortLink{
		Code:      "abc1234",
		LongURL:   "http://localhost:8080/view.html?token=x",
		UsageMax:  2,
		ExpiresAt: now.Add(time.Hour),
		CreatedAt: now,
	}

	require.NoError(t, st.ShortLinks().Create(ctx, link))

	t.Run("get round trip", func(t *testing.T) {
		got, err := st.ShortLinks().Get(ctx, "abc1234")
		require.NoError(t, err)
		require.Equal(t, link.LongURL, got.LongURL)
		require.Equal(t, 0, got.Usage)
		require.Equal(t, 2, got.UsageMax)
	})

	t.Run("unknown code maps to ErrNotFound", func(t *testing.T) {
		_, err := st.ShortLinks().Get(ctx, "zzz")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("usage increments by exactly one", func(t *testing.T) {
		require.NoError(t, st.ShortLinks().IncrementUsage(ctx, "abc1234"))
		got, err := st.ShortLinks().Get(ctx, "abc1234")
		require.NoError(t, err)
		require.Equal(t, 1, got.Usage)
	})

	t.Run("duplicate code rejected by primary key", func(t *testing.T) {
		err := st.ShortLinks().Create(ctx, link)
		require.Error(t, err)
	})
}

func TestOTPCodesRepo(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)
	ctx := context.Background()

	t.Run("set then get returns the code", func(t *testing.T) {
		require.NoError(t, st.OTPCodes().Set(ctx, "otp:jti-1", "123456", time.Now().Add(5*time.Minute)))

		code, err := st.OTPCodes().Get(ctx, "otp:jti-1")
		require.NoError(t, err)
		require.Equal(t, "123456", code)
	})

	t.Run("set replaces the outstanding code", func(t *testing.T) {
		require.NoError(t, st.OTPCodes().Set(ctx, "otp:jti-2", "111111", time.Now().Add(5*time.Minute)))
		require.NoError(t, st.OTPCodes().Set(ctx, "otp:jti-2", "222222", time.Now().Add(5*time.Minute)))

		code, err := st.OTPCodes().Get(ctx, "otp:jti-2")
		require.NoError(t, err)
		require.Equal(t, "222222", code)
	})

	t.Run("expired code is reported absent without deletion", func(t *testing.T) {
		require.NoError(t, st.OTPCodes().Set(ctx, "otp:jti-3", "333333", time.Now().Add(-time.Second)))

		_, err := st.OTPCodes().Get(ctx, "otp:jti-3")
		require.ErrorIs(t, err, store.ErrNotFound)

		// Lazy expiry: the row is still there for the admin view.
		rows, err := st.OTPCodes().ListRecent(ctx, 50)
		require.NoError(t, err)
		found := false
		for _, row := range rows {
			if row.Key == "otp:jti-3" {
				found = true
			}
		}
		require.True(t, found)
	})

	t.Run("delete reports whether a row was removed", func(t *testing.T) {
		require.NoError(t, st.OTPCodes().Set(ctx, "otp:jti-4", "444444", time.Now().Add(5*time.Minute)))

		removed, err := st.OTPCodes().Delete(ctx, "otp:jti-4")
		require.NoError(t, err)
		require.True(t, removed)

		removed, err = st.OTPCodes().Delete(ctx, "otp:jti-4")
		require.NoError(t, err)
		require.False(t, removed)
	})
}

func TestRateLimitsRepo(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)
	ctx := context.Background()

	windowEnd := time.Now().UTC().Truncate(time.Minute).Add(time.Minute)

	t.Run("counts sequential hits", func(t *testing.T) {
		for want := 1; want <= 5; want++ {
			count, err := st.RateLimits().Hit(ctx, "rl:seq", windowEnd)
			require.NoError(t, err)
			require.Equal(t, want, count)
		}
	})

	t.Run("windows are independent", func(t *testing.T) {
		count, err := st.RateLimits().Hit(ctx, "rl:seq", windowEnd.Add(time.Minute))
		require.NoError(t, err)
		require.Equal(t, 1, count)
	})

	t.Run("concurrent hits lose no increments", func(t *testing.T) {
		const n = 32

		var wg sync.WaitGroup
		errs := make([]error, n)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = st.RateLimits().Hit(ctx, "rl:conc", windowEnd)
			}(i)
		}
		wg.Wait()

		for _, err := range errs {
			require.NoError(t, err)
		}

		count, err := st.RateLimits().Hit(ctx, "rl:conc", windowEnd)
		require.NoError(t, err)
		require.Equal(t, n+1, count)
	})
}

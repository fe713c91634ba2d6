package patron

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"openlms/internal/catalog"
)

type stubCopyLookup struct {
	copy *catalog.Copy
}

func (s *stubCopyLookup) CopyByID(_ context.Context, _ uuid.UUID) (*catalog.Copy, error) {
	return s.copy, nil
}

type stubItemLookup struct {
	item *catalog.Item
}

func (s *stubItemLookup) ItemByID(_ context.Context, _ uuid.UUID) (*catalog.Item, error) {
	return s.item, nil
}

func policyForFormat(format string) *FinePolicyService {
	itemID := uuid.New()
	return NewFinePolicyService(
		&stubCopyLookup{copy: &catalog.Copy{ID: uuid.New(), ItemID: itemID}},
		&stubItemLookup{item: &catalog.Item{ID: itemID, Format: format}},
	)
}

func TestOverdueFineIsHalfPerDay(t *testing.T) {
	policy := NewFinePolicyService(nil, nil)

	rapid.Check(t, func(t *rapid.T) {
		days := rapid.IntRange(0, 10000).Draw(t, "days")
		got := policy.CalculateOverdueFine(days)
		want := decimal.NewFromInt(int64(days)).Mul(decimal.RequireFromString("0.5"))
		if !got.Equal(want) {
			t.Fatalf("fine for %d days: got %s, want %s", days, got, want)
		}
	})
}

func TestOverdueFineForZeroDaysIsZero(t *testing.T) {
	policy := NewFinePolicyService(nil, nil)
	assert.True(t, policy.CalculateOverdueFine(0).IsZero())
}

func TestDamageFineByFormat(t *testing.T) {
	ctx := context.Background()

	cases := map[string]string{
		catalog.FormatBook:     "30.0",
		catalog.FormatEbook:    "11.0",
		catalog.FormatDVD:      "35.0",
		catalog.FormatCD:       "25.0",
		catalog.FormatMagazine: "25.0",
	}
	for format, want := range cases {
		policy := policyForFormat(format)
		got, err := policy.CalculateFineForDamagedItem(ctx, uuid.New())
		require.NoError(t, err)
		assert.True(t, got.Equal(decimal.RequireFromString(want)), "format %s: got %s, want %s", format, got, want)
	}
}

func TestReplacementFineByFormat(t *testing.T) {
	ctx := context.Background()

	cases := map[string]string{
		catalog.FormatBook:     "60.0",
		catalog.FormatEbook:    "25.0",
		catalog.FormatDVD:      "45.0",
		catalog.FormatCD:       "45.0",
		catalog.FormatMagazine: "35.0",
	}
	for format, want := range cases {
		policy := policyForFormat(format)
		got, err := policy.CalculateFineForLostItem(ctx, uuid.New())
		require.NoError(t, err)
		assert.True(t, got.Equal(decimal.RequireFromString(want)), "format %s: got %s, want %s", format, got, want)
	}
}

func TestUnknownFormatFallsBackToDefaultFees(t *testing.T) {
	ctx := context.Background()
	policy := policyForFormat("microfiche")

	damaged, err := policy.CalculateFineForDamagedItem(ctx, uuid.New())
	require.NoError(t, err)
	assert.True(t, damaged.Equal(decimal.RequireFromString("20.0")))

	lost, err := policy.CalculateFineForLostItem(ctx, uuid.New())
	require.NoError(t, err)
	assert.True(t, lost.Equal(decimal.RequireFromString("60.0")))
}

package patron

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"openlms/internal/catalog"
)

// CopyLookup resolves copies for fine calculation.
type CopyLookup interface {
	CopyByID(ctx context.Context, id uuid.UUID) (*catalog.Copy, error)
}

// ItemLookup resolves items for fine calculation.
type ItemLookup interface {
	ItemByID(ctx context.Context, id uuid.UUID) (*catalog.Item, error)
}

var (
	overdueDailyRate = decimal.RequireFromString("0.5")
	processingFee    = decimal.RequireFromString("10.0")

	damageFees = map[string]decimal.Decimal{
		catalog.FormatBook:     decimal.RequireFromString("20.0"),
		catalog.FormatEbook:    decimal.RequireFromString("1.0"),
		catalog.FormatDVD:      decimal.RequireFromString("25.0"),
		catalog.FormatCD:       decimal.RequireFromString("15.0"),
		catalog.FormatMagazine: decimal.RequireFromString("15.0"),
	}
	defaultDamageFee = decimal.RequireFromString("10.0")

	replacementCosts = map[string]decimal.Decimal{
		catalog.FormatBook:     decimal.RequireFromString("50.0"),
		catalog.FormatEbook:    decimal.RequireFromString("15.0"),
		catalog.FormatDVD:      decimal.RequireFromString("35.0"),
		catalog.FormatCD:       decimal.RequireFromString("35.0"),
		catalog.FormatMagazine: decimal.RequireFromString("25.0"),
	}
	defaultReplacementCost = decimal.RequireFromString("50.0")
)

// FinePolicyService computes fine amounts. Overdue fines are a flat daily
// rate with no cap; damage and loss fines depend on the item format and
// carry a flat processing fee.
type FinePolicyService struct {
	copies CopyLookup
	items  ItemLookup
}

func NewFinePolicyService(copies CopyLookup, items ItemLookup) *FinePolicyService {
	return &FinePolicyService{copies: copies, items: items}
}

func (s *FinePolicyService) CalculateOverdueFine(daysLate int) decimal.Decimal {
	return decimal.NewFromInt(int64(daysLate)).Mul(overdueDailyRate)
}

func (s *FinePolicyService) CalculateFineForDamagedItem(ctx context.Context, copyID uuid.UUID) (decimal.Decimal, error) {
	item, err := s.resolveItem(ctx, copyID)
	if err != nil {
		return decimal.Zero, err
	}
	fee, ok := damageFees[item.Format]
	if !ok {
		fee = defaultDamageFee
	}
	return fee.Add(processingFee), nil
}

func (s *FinePolicyService) CalculateFineForLostItem(ctx context.Context, copyID uuid.UUID) (decimal.Decimal, error) {
	item, err := s.resolveItem(ctx, copyID)
	if err != nil {
		return decimal.Zero, err
	}
	cost, ok := replacementCosts[item.Format]
	if !ok {
		cost = defaultReplacementCost
	}
	return cost.Add(processingFee), nil
}

func (s *FinePolicyService) resolveItem(ctx context.Context, copyID uuid.UUID) (*catalog.Item, error) {
	copy, err := s.copies.CopyByID(ctx, copyID)
	if err != nil {
		return nil, err
	}
	return s.items.ItemByID(ctx, copy.ItemID)
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/satheeshds/orderledger/models"
	"github.com/shopspring/decimal"
)

// Percentages maps product ids to the profit percentage for one month.
type Percentages map[string]decimal.Decimal

// ValidPeriod reports whether period is a YYYY-MM month.
func ValidPeriod(period string) bool {
	_, err := time.Parse("2006-01", period)
	return err == nil
}

// PeriodOf returns the YYYY-MM period containing d.
func PeriodOf(d models.Date) string {
	return fmt.Sprintf("%04d-%02d", d.Year(), int(d.Month()))
}

// GetProfitability returns the percentages stored for period. A month with nothing set
// returns an empty map.
func (l *Ledger) GetProfitability(ctx context.Context, account, period string) (Percentages, error) {
	if !ValidPeriod(period) {
		return nil, invalid("period must be YYYY-MM")
	}
	doc, err := l.store.Get(ctx, account, models.KindProfitability, period)
	if errors.Is(err, ErrNotFound) {
		return Percentages{}, nil
	}
	if err != nil {
		return nil, err
	}
	pct := Percentages{}
	if err := json.Unmarshal(doc.Body, &pct); err != nil {
		return nil, fmt.Errorf("decoding profitability %s: %w", period, err)
	}
	return pct, nil
}

// SetProfitability stores the profit percentage of one product for period.
func (l *Ledger) SetProfitability(ctx context.Context, account, period, productID string, pct decimal.Decimal) (Percentages, error) {
	if pct.IsNegative() {
		return nil, invalid("percentage must be non-negative")
	}
	if _, err := l.GetProduct(ctx, account, productID); err != nil {
		return nil, err
	}
	current, err := l.GetProfitability(ctx, account, period)
	if err != nil {
		return nil, err
	}
	current[productID] = pct
	if err := l.store.Put(ctx, account, models.KindProfitability, period, current); err != nil {
		return nil, err
	}
	return current, nil
}

package reports

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/satheeshds/orderledger/ledger"
	"github.com/shopspring/decimal"
)

type ProfitRow struct {
	ProductID  string          `json:"productId"`
	Product    string          `json:"product"`
	Percentage decimal.Decimal `json:"percentage"`
	Sales      decimal.Decimal `json:"sales"`
	Profit     decimal.Decimal `json:"profit"`
}

// Profitability applies per-product profit percentages to one month of sales. Products
// without sales that month are left out.
type Profitability struct {
	Year               int             `json:"year"`
	Month              int             `json:"month"`
	Rows               []ProfitRow     `json:"rows"`
	TotalSales         decimal.Decimal `json:"totalSales"`
	TotalProfit        decimal.Decimal `json:"totalProfit"`
	WeightedPercentage decimal.Decimal `json:"weightedPercentage"`
}

var hundred = decimal.NewFromInt(100)

func (r *Reporter) Profitability(ctx context.Context, l ledger.Ledger, year int, month time.Month, percentages map[string]decimal.Decimal) (Profitability, error) {
	p := Profitability{
		Year:               year,
		Month:              int(month),
		Rows:               []ProfitRow{},
		TotalSales:         decimal.Zero,
		TotalProfit:        decimal.Zero,
		WeightedPercentage: decimal.Zero,
	}
	err := r.withLedger(ctx, l, func(conn *sql.Conn) error {
		sales, err := namedTotals(ctx, conn, productSalesQuery, year, int(month))
		if err != nil {
			return fmt.Errorf("product sales: %w", err)
		}
		for _, s := range sales {
			if !s.Total.IsPositive() {
				continue
			}
			pct := percentages[s.ID]
			row := ProfitRow{
				ProductID:  s.ID,
				Product:    s.Name,
				Percentage: pct,
				Sales:      s.Total,
				Profit:     s.Total.Mul(pct).Div(hundred),
			}
			p.Rows = append(p.Rows, row)
			p.TotalSales = p.TotalSales.Add(row.Sales)
			p.TotalProfit = p.TotalProfit.Add(row.Profit)
		}
		return nil
	})
	if err != nil {
		return p, err
	}
	if p.TotalSales.IsPositive() {
		p.WeightedPercentage = p.TotalProfit.Div(p.TotalSales).Mul(hundred)
	}
	return p, nil
}

package reports

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/satheeshds/orderledger/ledger"
	"github.com/satheeshds/orderledger/models"
	"github.com/shopspring/decimal"
)

type DailySales struct {
	Day        int             `json:"day"`
	Sales      decimal.Decimal `json:"sales"`
	Cumulative decimal.Decimal `json:"cumulative"`
}

type NamedTotal struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Total decimal.Decimal `json:"total"`
}

// PendingOrder is an order with an outstanding balance.
type PendingOrder struct {
	OrderID      string          `json:"orderId"`
	CustomerID   string          `json:"customerId"`
	CustomerName string          `json:"customerName"`
	Date         models.Date     `json:"date"`
	Total        decimal.Decimal `json:"total"`
	AmountPaid   decimal.Decimal `json:"amountPaid"`
	Remaining    decimal.Decimal `json:"remaining"`
	DaysOld      int             `json:"daysOld"`
}

// Dashboard summarizes one month of sales plus every balance still owed.
type Dashboard struct {
	Year            int             `json:"year"`
	Month           int             `json:"month"`
	Daily           []DailySales    `json:"daily"`
	MonthTotal      decimal.Decimal `json:"monthTotal"`
	ProductSales    []NamedTotal    `json:"productSales"`
	CustomerRanking []NamedTotal    `json:"customerRanking"`
	Pending         []PendingOrder  `json:"pending"`
	TotalPending    decimal.Decimal `json:"totalPending"`
}

// dailyQuery takes the number of days in the month as a literal range bound.
const dailyQuery = `WITH daily AS (
		SELECT d.n AS n, COALESCE(SUM(o.total), 0) AS sales
		FROM range(1, %d) AS d(n)
		LEFT JOIN orders o ON year(o.date) = ? AND month(o.date) = ? AND day(o.date) = d.n
		GROUP BY d.n
	)
	SELECT n, CAST(sales AS VARCHAR), CAST(SUM(sales) OVER (ORDER BY n) AS VARCHAR)
	FROM daily ORDER BY n`

const productSalesQuery = `SELECT i.product_id, i.product_name, CAST(SUM(i.price * i.quantity) AS VARCHAR)
	FROM items i JOIN orders o ON o.id = i.order_id
	WHERE year(o.date) = ? AND month(o.date) = ? AND i.quantity > 0
	GROUP BY i.product_id, i.product_name
	ORDER BY SUM(i.price * i.quantity) DESC, i.product_name`

const customerRankingQuery = `SELECT customer_id, customer_name, CAST(SUM(total) AS VARCHAR)
	FROM orders
	WHERE year(date) = ? AND month(date) = ?
	GROUP BY customer_id, customer_name
	ORDER BY SUM(total) DESC, customer_name`

const pendingQuery = `SELECT id, customer_id, customer_name, CAST(date AS VARCHAR),
		CAST(total AS VARCHAR), CAST(amount_paid AS VARCHAR), CAST(total - amount_paid AS VARCHAR),
		COALESCE(date_diff('day', date, CAST(? AS DATE)), 0)
	FROM orders
	WHERE status <> 'Paid' AND total > amount_paid
	ORDER BY date NULLS FIRST, id`

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Dashboard reports sales for year/month and the pending balances as of today.
func (r *Reporter) Dashboard(ctx context.Context, l ledger.Ledger, year int, month time.Month, today models.Date) (Dashboard, error) {
	d := Dashboard{
		Year:            year,
		Month:           int(month),
		Daily:           []DailySales{},
		MonthTotal:      decimal.Zero,
		ProductSales:    []NamedTotal{},
		CustomerRanking: []NamedTotal{},
		Pending:         []PendingOrder{},
		TotalPending:    decimal.Zero,
	}
	err := r.withLedger(ctx, l, func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, fmt.Sprintf(dailyQuery, daysIn(year, month)+1), year, int(month))
		if err != nil {
			return fmt.Errorf("daily sales: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var day int
			var sales, cumulative sql.NullString
			if err := rows.Scan(&day, &sales, &cumulative); err != nil {
				return fmt.Errorf("daily sales: %w", err)
			}
			d.Daily = append(d.Daily, DailySales{Day: day, Sales: dec(sales), Cumulative: dec(cumulative)})
		}
		if err := rows.Err(); err != nil {
			return err
		}
		if n := len(d.Daily); n > 0 {
			d.MonthTotal = d.Daily[n-1].Cumulative
		}

		if d.ProductSales, err = namedTotals(ctx, conn, productSalesQuery, year, int(month)); err != nil {
			return fmt.Errorf("product sales: %w", err)
		}
		if d.CustomerRanking, err = namedTotals(ctx, conn, customerRankingQuery, year, int(month)); err != nil {
			return fmt.Errorf("customer ranking: %w", err)
		}

		prows, err := conn.QueryContext(ctx, pendingQuery, today.String())
		if err != nil {
			return fmt.Errorf("pending orders: %w", err)
		}
		defer prows.Close()
		for prows.Next() {
			var p PendingOrder
			var date, total, paid, remaining sql.NullString
			if err := prows.Scan(&p.OrderID, &p.CustomerID, &p.CustomerName, &date, &total, &paid, &remaining, &p.DaysOld); err != nil {
				return fmt.Errorf("pending orders: %w", err)
			}
			p.Date, _ = models.ParseDate(date.String)
			p.Total, p.AmountPaid, p.Remaining = dec(total), dec(paid), dec(remaining)
			d.Pending = append(d.Pending, p)
			d.TotalPending = d.TotalPending.Add(p.Remaining)
		}
		return prows.Err()
	})
	return d, err
}

func namedTotals(ctx context.Context, conn *sql.Conn, query string, args ...any) ([]NamedTotal, error) {
	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []NamedTotal{}
	for rows.Next() {
		var id sql.NullString
		var t NamedTotal
		var total sql.NullString
		if err := rows.Scan(&id, &t.Name, &total); err != nil {
			return nil, err
		}
		t.ID, t.Total = id.String, dec(total)
		out = append(out, t)
	}
	return out, rows.Err()
}

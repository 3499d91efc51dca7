package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const queryTimeout = 3 * time.Second

// PostgresLedger keeps the same append-only contract on a sales table.
// Storage order is the insert order (id ASC).
type PostgresLedger struct {
	db *sql.DB
}

func NewPostgresLedger(db *sql.DB) *PostgresLedger {
	return &PostgresLedger{db: db}
}

func (l *PostgresLedger) Ping(ctx context.Context) error {
	return withTimeout(ctx, 1*time.Second, func(ctx context.Context) error {
		return l.db.PingContext(ctx)
	})
}

func (l *PostgresLedger) Append(ctx context.Context, rec SaleRecord) error {
	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		_, err := l.db.ExecContext(ctx, `
			INSERT INTO sales (sale_id, recorded_at, period, customer_name, customer_phone, product_name, quantity_sold, unit_price, total_amount)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, rec.ID, rec.Timestamp, rec.Period, rec.CustomerName, rec.CustomerPhone, rec.ProductName, rec.QuantitySold, rec.UnitPrice, rec.TotalAmount)
		return err
	})
	if err != nil {
		return fmt.Errorf("persist ledger: %w", err)
	}
	return nil
}

func (l *PostgresLedger) selectRecords(ctx context.Context, where string, args ...any) ([]SaleRecord, error) {
	var out []SaleRecord

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		rows, err := l.db.QueryContext(ctx, `
			SELECT sale_id, recorded_at, period, customer_name, customer_phone, product_name, quantity_sold, unit_price, total_amount
			FROM sales
		`+where+`
			ORDER BY id ASC
		`, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = make([]SaleRecord, 0, 32)
		for rows.Next() {
			var rec SaleRecord
			if err := rows.Scan(&rec.ID, &rec.Timestamp, &rec.Period, &rec.CustomerName, &rec.CustomerPhone,
				&rec.ProductName, &rec.QuantitySold, &rec.UnitPrice, &rec.TotalAmount); err != nil {
				return err
			}
			out = append(out, rec)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, err
	}
	return out, nil
}

func (l *PostgresLedger) List(ctx context.Context) ([]SaleRecord, error) {
	return l.selectRecords(ctx, "")
}

func (l *PostgresLedger) ByDay(ctx context.Context, day string) ([]SaleRecord, error) {
	return l.selectRecords(ctx, "WHERE recorded_at::date = $1::date", day)
}

func (l *PostgresLedger) ByPeriod(ctx context.Context, period string) ([]SaleRecord, error) {
	return l.selectRecords(ctx, "WHERE period = $1", period)
}

func (l *PostgresLedger) TopProducts(ctx context.Context) ([]ProductTotal, error) {
	var out []ProductTotal

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		rows, err := l.db.QueryContext(ctx, `
			SELECT product_name, SUM(quantity_sold)
			FROM sales
			GROUP BY product_name
			ORDER BY SUM(quantity_sold) DESC, product_name ASC
		`)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = make([]ProductTotal, 0, 16)
		for rows.Next() {
			var pt ProductTotal
			if err := rows.Scan(&pt.ProductName, &pt.UnitsSold); err != nil {
				return err
			}
			out = append(out, pt)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, err
	}
	return out, nil
}

// RevenueByDay aggregates in SQL and zero-fills missing days on the way
// out, matching the file store's every-day-of-the-month contract.
func (l *PostgresLedger) RevenueByDay(ctx context.Context, year int, month time.Month) ([]DayRevenue, error) {
	byDay := make(map[string]decimal.Decimal)

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		rows, err := l.db.QueryContext(ctx, `
			SELECT to_char(recorded_at, 'YYYY-MM-DD'), SUM(total_amount)
			FROM sales
			WHERE EXTRACT(YEAR FROM recorded_at) = $1 AND EXTRACT(MONTH FROM recorded_at) = $2
			GROUP BY 1
		`, year, int(month))
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var day string
			var rev decimal.Decimal
			if err := rows.Scan(&day, &rev); err != nil {
				return err
			}
			byDay[day] = rev
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	daysInMonth := time.Date(year, month+1, 0, 0, 0, 0, 0, time.Local).Day()
	out := make([]DayRevenue, daysInMonth)
	for i := range out {
		day := time.Date(year, month, i+1, 0, 0, 0, 0, time.Local).Format(DayLayout)
		rev, ok := byDay[day]
		if !ok {
			rev = decimal.Zero
		}
		out[i] = DayRevenue{Day: day, Revenue: rev}
	}
	return out, nil
}

func (l *PostgresLedger) Summary(ctx context.Context, today string) (Totals, error) {
	t := Totals{TotalRevenue: decimal.Zero, TodayRevenue: decimal.Zero}

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		err := l.db.QueryRowContext(ctx, `
			SELECT COUNT(*), COALESCE(SUM(total_amount), 0)
			FROM sales
		`).Scan(&t.Transactions, &t.TotalRevenue)
		if err != nil {
			return err
		}

		return l.db.QueryRowContext(ctx, `
			SELECT COALESCE(SUM(total_amount), 0)
			FROM sales
			WHERE recorded_at::date = $1::date
		`, today).Scan(&t.TodayRevenue)
	})

	if err != nil {
		return Totals{}, err
	}
	return t, nil
}

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}

package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type DayRevenue struct {
	Day     string          `json:"day"`
	Revenue decimal.Decimal `json:"revenue"`
}

type ProductTotal struct {
	ProductName string `json:"product_name"`
	UnitsSold   int    `json:"units_sold"`
}

type Totals struct {
	Transactions int             `json:"transactions"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	TodayRevenue decimal.Decimal `json:"today_revenue"`
}

// Store is the ledger contract. List and the filters return records in
// storage order (append order); presentation-order reversal belongs to the
// HTTP layer. RevenueByDay reports every valid day of the month, zero-sale
// days included.
type Store interface {
	Append(ctx context.Context, rec SaleRecord) error
	List(ctx context.Context) ([]SaleRecord, error)
	ByDay(ctx context.Context, day string) ([]SaleRecord, error)
	ByPeriod(ctx context.Context, period string) ([]SaleRecord, error)
	TopProducts(ctx context.Context) ([]ProductTotal, error)
	RevenueByDay(ctx context.Context, year int, month time.Month) ([]DayRevenue, error)
	Summary(ctx context.Context, today string) (Totals, error)
	Ping(ctx context.Context) error
}

package ledger

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MiniPOS/internal/tabfile"
)

func ts(t *testing.T, s string) time.Time {
	t.Helper()
	v, err := time.ParseInLocation(TimestampLayout, s, time.Local)
	require.NoError(t, err)
	return v
}

func rec(t *testing.T, stamp, product string, qty int, unit string) SaleRecord {
	t.Helper()
	u := decimal.RequireFromString(unit)
	return SaleRecord{
		Timestamp:    ts(t, stamp),
		Period:       stamp[:7],
		ProductName:  product,
		QuantitySold: qty,
		UnitPrice:    u,
		TotalAmount:  u.Mul(decimal.NewFromInt(int64(qty))),
	}
}

func TestFileLedger_AppendToAbsentFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sales_log.csv")
	l := NewFileLedger(path)
	ctx := context.Background()

	r := rec(t, "2024-07-15 10:30:00", "Widget", 3, "2.50")
	r.ID = "s_7f3a"
	r.CustomerName = "Ada"
	r.CustomerPhone = "555-0100"
	require.NoError(t, l.Append(ctx, r))

	got, err := l.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "s_7f3a", got[0].ID)
	assert.Equal(t, "Widget", got[0].ProductName)
	assert.Equal(t, "Ada", got[0].CustomerName)
	assert.Equal(t, "555-0100", got[0].CustomerPhone)
	assert.Equal(t, "2024-07", got[0].Period)
	assert.True(t, got[0].TotalAmount.Equal(decimal.RequireFromString("7.50")))

	header, rows, err := tabfile.New(path).Load()
	require.NoError(t, err)
	assert.Equal(t, Header(), header)
	require.Len(t, rows, 1)
	assert.Equal(t, "2024-07-15 10:30:00", rows[0][0])
}

func TestFileLedger_AppendKeepsStorageOrder(t *testing.T) {
	l := NewFileLedger(filepath.Join(t.TempDir(), "sales_log.csv"))
	ctx := context.Background()

	require.NoError(t, l.Append(ctx, rec(t, "2024-07-01 09:00:00", "Widget", 1, "2.50")))
	require.NoError(t, l.Append(ctx, rec(t, "2024-07-01 17:00:00", "Gizmo", 2, "1.00")))
	require.NoError(t, l.Append(ctx, rec(t, "2024-07-02 09:00:00", "Widget", 5, "2.50")))

	got, err := l.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	// newest appended last on disk
	assert.Equal(t, "Gizmo", got[1].ProductName)
	assert.Equal(t, 5, got[2].QuantitySold)
}

func TestFileLedger_AppendToOlderColumnLayout(t *testing.T) {
	// A file written before the period/customer columns existed keeps its
	// shape; new appends map into its header.
	path := filepath.Join(t.TempDir(), "sales_log.csv")
	old := "Date,Product Name,Quantity Sold,Unit Price,Total Sale Amount\n" +
		"2024-06-30 12:00:00,Widget,2,2.50,5\n"
	require.NoError(t, os.WriteFile(path, []byte(old), 0o644))

	l := NewFileLedger(path)
	ctx := context.Background()
	require.NoError(t, l.Append(ctx, rec(t, "2024-07-01 09:00:00", "Gizmo", 1, "1.00")))

	header, rows, err := tabfile.New(path).Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"Date", "Product Name", "Quantity Sold", "Unit Price", "Total Sale Amount"}, header)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"2024-07-01 09:00:00", "Gizmo", "1", "1.00", "1.00"}, rows[1])

	got, err := l.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Empty(t, got[0].Period)
	assert.Empty(t, got[0].CustomerName)
	assert.Empty(t, got[0].ID)
}

func TestFileLedger_ByDay(t *testing.T) {
	l := NewFileLedger(filepath.Join(t.TempDir(), "sales_log.csv"))
	ctx := context.Background()

	require.NoError(t, l.Append(ctx, rec(t, "2024-07-01 09:00:00", "Widget", 1, "2.50")))
	require.NoError(t, l.Append(ctx, rec(t, "2024-07-01 17:30:00", "Gizmo", 2, "1.00")))
	require.NoError(t, l.Append(ctx, rec(t, "2024-07-02 09:00:00", "Widget", 5, "2.50")))

	got, err := l.ByDay(ctx, "2024-07-01")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Widget", got[0].ProductName)
	assert.Equal(t, "Gizmo", got[1].ProductName)

	none, err := l.ByDay(ctx, "2024-07-03")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestFileLedger_ByPeriod_IndependentOfTimestamp(t *testing.T) {
	l := NewFileLedger(filepath.Join(t.TempDir(), "sales_log.csv"))
	ctx := context.Background()

	// backdated: sold in August, attributed to July
	r := rec(t, "2024-08-03 10:00:00", "Widget", 1, "2.50")
	r.Period = "2024-07"
	require.NoError(t, l.Append(ctx, r))
	require.NoError(t, l.Append(ctx, rec(t, "2024-08-04 10:00:00", "Widget", 1, "2.50")))

	july, err := l.ByPeriod(ctx, "2024-07")
	require.NoError(t, err)
	assert.Len(t, july, 1)

	august, err := l.ByPeriod(ctx, "2024-08")
	require.NoError(t, err)
	assert.Len(t, august, 1)
}

func TestTopProducts_SumsAcrossPeriodsAndDays(t *testing.T) {
	l := NewMemLedger()
	ctx := context.Background()

	require.NoError(t, l.Append(ctx, rec(t, "2024-06-01 09:00:00", "Widget", 2, "2.50")))
	require.NoError(t, l.Append(ctx, rec(t, "2024-07-01 09:00:00", "Widget", 3, "2.75")))
	require.NoError(t, l.Append(ctx, rec(t, "2024-07-02 09:00:00", "Gizmo", 4, "1.00")))
	require.NoError(t, l.Append(ctx, rec(t, "2024-07-03 09:00:00", "Doodad", 4, "0.75")))

	got, err := l.TopProducts(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, ProductTotal{ProductName: "Widget", UnitsSold: 5}, got[0])
	// tie broken by name
	assert.Equal(t, "Doodad", got[1].ProductName)
	assert.Equal(t, "Gizmo", got[2].ProductName)
}

func TestRevenueByDay_ZeroFillsWholeMonth(t *testing.T) {
	l := NewMemLedger()
	ctx := context.Background()

	require.NoError(t, l.Append(ctx, rec(t, "2024-02-01 09:00:00", "Widget", 2, "2.50")))
	require.NoError(t, l.Append(ctx, rec(t, "2024-02-01 15:00:00", "Gizmo", 1, "1.00")))
	require.NoError(t, l.Append(ctx, rec(t, "2024-02-29 09:00:00", "Widget", 1, "2.50")))
	require.NoError(t, l.Append(ctx, rec(t, "2024-03-01 09:00:00", "Widget", 1, "2.50")))

	got, err := l.RevenueByDay(ctx, 2024, time.February)
	require.NoError(t, err)
	require.Len(t, got, 29) // 2024 is a leap year

	assert.Equal(t, "2024-02-01", got[0].Day)
	assert.True(t, got[0].Revenue.Equal(decimal.RequireFromString("6")))
	assert.True(t, got[1].Revenue.IsZero())
	assert.True(t, got[28].Revenue.Equal(decimal.RequireFromString("2.50")))

	nonLeap, err := l.RevenueByDay(ctx, 2023, time.February)
	require.NoError(t, err)
	assert.Len(t, nonLeap, 28)
}

func TestSummary(t *testing.T) {
	l := NewMemLedger()
	ctx := context.Background()

	require.NoError(t, l.Append(ctx, rec(t, "2024-07-01 09:00:00", "Widget", 2, "2.50")))
	require.NoError(t, l.Append(ctx, rec(t, "2024-07-02 09:00:00", "Gizmo", 3, "1.00")))

	got, err := l.Summary(ctx, "2024-07-02")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Transactions)
	assert.True(t, got.TotalRevenue.Equal(decimal.RequireFromString("8")))
	assert.True(t, got.TodayRevenue.Equal(decimal.RequireFromString("3")))

	empty, err := NewMemLedger().Summary(ctx, "2024-07-02")
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Transactions)
	assert.True(t, empty.TotalRevenue.IsZero())
}

package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"MiniPOS/internal/tabfile"
)

// FileLedger keeps the sale history in one delimited file. Every operation
// re-reads the file; Append reads what is there, adds one row and rewrites
// the lot, newest last. An absent file is an empty ledger, never an error.
// Two concurrent appenders can race and the last rewrite wins; the tool is
// single-operator and this store does not pretend otherwise.
type FileLedger struct {
	mu  sync.Mutex
	tab *tabfile.Table
}

func NewFileLedger(path string) *FileLedger {
	return &FileLedger{tab: tabfile.New(path)}
}

func (l *FileLedger) Ping(ctx context.Context) error { return nil }

func (l *FileLedger) Append(ctx context.Context, rec SaleRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	header, rows, err := l.tab.Load()
	if err != nil {
		return err
	}
	if len(header) == 0 {
		header = Header()
	}

	rows = append(rows, Row(rec, header))
	if err := l.tab.Rewrite(header, rows); err != nil {
		return fmt.Errorf("persist ledger: %w", err)
	}
	return nil
}

func (l *FileLedger) load() ([]SaleRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	header, rows, err := l.tab.Load()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	index := tabfile.ColumnIndex(header)
	recs := make([]SaleRecord, 0, len(rows))
	for i, row := range rows {
		rec, err := ParseRow(row, index)
		if err != nil {
			return nil, fmt.Errorf("ledger %s: row %d: %w", l.tab.Path(), i+2, err)
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func (l *FileLedger) List(ctx context.Context) ([]SaleRecord, error) {
	return l.load()
}

func (l *FileLedger) ByDay(ctx context.Context, day string) ([]SaleRecord, error) {
	recs, err := l.load()
	if err != nil {
		return nil, err
	}
	return filterByDay(recs, day), nil
}

func (l *FileLedger) ByPeriod(ctx context.Context, period string) ([]SaleRecord, error) {
	recs, err := l.load()
	if err != nil {
		return nil, err
	}
	return filterByPeriod(recs, period), nil
}

func (l *FileLedger) TopProducts(ctx context.Context) ([]ProductTotal, error) {
	recs, err := l.load()
	if err != nil {
		return nil, err
	}
	return topProducts(recs), nil
}

func (l *FileLedger) RevenueByDay(ctx context.Context, year int, month time.Month) ([]DayRevenue, error) {
	recs, err := l.load()
	if err != nil {
		return nil, err
	}
	return revenueByDay(recs, year, month), nil
}

func (l *FileLedger) Summary(ctx context.Context, today string) (Totals, error) {
	recs, err := l.load()
	if err != nil {
		return Totals{}, err
	}
	return summarize(recs, today), nil
}

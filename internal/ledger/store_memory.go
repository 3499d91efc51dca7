package ledger

import (
	"context"
	"sync"
	"time"
)

type MemLedger struct {
	mu   sync.RWMutex
	recs []SaleRecord
}

func NewMemLedger() *MemLedger {
	return &MemLedger{}
}

func (l *MemLedger) Ping(ctx context.Context) error { return nil }

func (l *MemLedger) Append(ctx context.Context, rec SaleRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.recs = append(l.recs, rec)
	return nil
}

func (l *MemLedger) snapshot() []SaleRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]SaleRecord, len(l.recs))
	copy(out, l.recs)
	return out
}

func (l *MemLedger) List(ctx context.Context) ([]SaleRecord, error) {
	return l.snapshot(), nil
}

func (l *MemLedger) ByDay(ctx context.Context, day string) ([]SaleRecord, error) {
	return filterByDay(l.snapshot(), day), nil
}

func (l *MemLedger) ByPeriod(ctx context.Context, period string) ([]SaleRecord, error) {
	return filterByPeriod(l.snapshot(), period), nil
}

func (l *MemLedger) TopProducts(ctx context.Context) ([]ProductTotal, error) {
	return topProducts(l.snapshot()), nil
}

func (l *MemLedger) RevenueByDay(ctx context.Context, year int, month time.Month) ([]DayRevenue, error) {
	return revenueByDay(l.snapshot(), year, month), nil
}

func (l *MemLedger) Summary(ctx context.Context, today string) (Totals, error) {
	return summarize(l.snapshot(), today), nil
}

package sales

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"MiniPOS/internal/catalog"
	"MiniPOS/internal/ledger"
)

var ErrBadPeriod = errors.New("bad reporting period")

// PersistError marks a backing-store write failure during commit. Stage
// tells how far the commit got: "catalog" means nothing may have been
// recorded, "ledger" means stock was already decremented and the sale has
// no ledger row — that gap is accepted, there is no rollback.
type PersistError struct {
	Stage string
	Err   error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Stage, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }

// Recorder runs a sale end to end: validate against the catalog, decrement
// and persist stock, then append the sale to the ledger. The two writes are
// sequential and independent.
type Recorder struct {
	Catalog catalog.Store
	Ledger  ledger.Store
	Drafts  *DraftBook
	Log     *zap.Logger
	Metrics *Metrics

	// Now is overridable in tests; nil means time.Now.
	Now func() time.Time
}

func (r *Recorder) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

type DraftInput struct {
	ProductName   string
	Quantity      int
	Period        string
	CustomerName  string
	CustomerPhone string
}

// CreateDraft validates the selection and opens a draft quoting the current
// price. No side effects beyond the in-memory draft book.
func (r *Recorder) CreateDraft(ctx context.Context, in DraftInput) (Draft, error) {
	if in.Quantity < 1 {
		return Draft{}, catalog.ErrInvalidQuantity
	}
	if in.Period != "" {
		if _, err := time.Parse(ledger.PeriodLayout, in.Period); err != nil {
			return Draft{}, ErrBadPeriod
		}
	}

	p, ok, err := r.Catalog.Lookup(ctx, in.ProductName)
	if err != nil {
		return Draft{}, err
	}
	if !ok {
		return Draft{}, catalog.ErrNotFound
	}

	d := Draft{
		ID:            "d_" + uuid.NewString(),
		State:         StateDrafting,
		ProductName:   p.Name,
		Quantity:      in.Quantity,
		Period:        in.Period,
		CustomerName:  in.CustomerName,
		CustomerPhone: in.CustomerPhone,
		UnitPrice:     p.PricePerUnit,
		Total:         p.PricePerUnit.Mul(decimal.NewFromInt(int64(in.Quantity))),
		CreatedAt:     r.now(),
	}
	r.Drafts.Put(d)
	return d, nil
}

func (r *Recorder) Confirm(id string) (Draft, error) {
	return r.Drafts.Confirm(id)
}

func (r *Recorder) Draft(id string) (Draft, bool) {
	return r.Drafts.Get(id)
}

// Commit takes a confirmed draft through decrement-and-persist then
// ledger append, and reports the stock left after the decrement.
// Validation failures leave everything untouched and return the draft to
// confirmed for the operator to act on. Once a backing store has been
// written the draft is finished one way or the other.
func (r *Recorder) Commit(ctx context.Context, id string) (ledger.SaleRecord, int, error) {
	d, err := r.Drafts.beginCommit(id)
	if err != nil {
		return ledger.SaleRecord{}, 0, err
	}

	p, err := r.Catalog.RecordSale(ctx, d.ProductName, d.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrNotFound):
			r.Drafts.finish(id, StateConfirmed)
			r.Metrics.reject("not_found")
			return ledger.SaleRecord{}, 0, err
		case errors.Is(err, catalog.ErrInvalidQuantity):
			r.Drafts.finish(id, StateConfirmed)
			r.Metrics.reject("invalid_quantity")
			return ledger.SaleRecord{}, 0, err
		case errors.Is(err, catalog.ErrInsufficientStock):
			r.Drafts.finish(id, StateConfirmed)
			r.Metrics.reject("insufficient_stock")
			return ledger.SaleRecord{}, 0, err
		default:
			r.Drafts.finish(id, StateFailed)
			r.Metrics.reject("persist")
			return ledger.SaleRecord{}, 0, &PersistError{Stage: "catalog", Err: err}
		}
	}

	now := r.now()
	period := d.Period
	if period == "" {
		period = now.Format(ledger.PeriodLayout)
	}

	rec := ledger.SaleRecord{
		ID:            "s_" + uuid.NewString(),
		Timestamp:     now,
		Period:        period,
		CustomerName:  d.CustomerName,
		CustomerPhone: d.CustomerPhone,
		ProductName:   d.ProductName,
		QuantitySold:  d.Quantity,
		UnitPrice:     p.PricePerUnit,
		TotalAmount:   p.PricePerUnit.Mul(decimal.NewFromInt(int64(d.Quantity))),
	}

	if err := r.Ledger.Append(ctx, rec); err != nil {
		// Stock is already decremented; the sale has no ledger row. No
		// compensating write, the gap is surfaced instead.
		r.Drafts.finish(id, StateFailed)
		r.Metrics.reject("persist")
		if r.Log != nil {
			r.Log.Warn("ledger append failed after stock decrement",
				zap.Error(err),
				zap.String("draft_id", id),
				zap.String("product", d.ProductName),
				zap.Int("quantity", d.Quantity),
			)
		}
		return ledger.SaleRecord{}, 0, &PersistError{Stage: "ledger", Err: err}
	}

	r.Drafts.finish(id, StateCommitted)
	if r.Metrics != nil {
		r.Metrics.Committed.Inc()
		r.Metrics.Revenue.Add(rec.TotalAmount.InexactFloat64())
	}
	return rec, p.QuantityInStock, nil
}

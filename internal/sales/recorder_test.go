package sales

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MiniPOS/internal/catalog"
	"MiniPOS/internal/ledger"
)

func fixedNow() time.Time {
	return time.Date(2024, 7, 15, 10, 30, 0, 0, time.Local)
}

func newRecorder(cat catalog.Store, led ledger.Store) *Recorder {
	return &Recorder{
		Catalog: cat,
		Ledger:  led,
		Drafts:  NewDraftBook(),
		Now:     fixedNow,
	}
}

func widgetCatalog() *catalog.MemStore {
	return catalog.NewMemStore(catalog.Product{
		Name:            "Widget",
		PricePerUnit:    decimal.RequireFromString("2.50"),
		QuantityInStock: 10,
	})
}

func TestCommit_EndToEnd(t *testing.T) {
	ctx := context.Background()
	cat := widgetCatalog()
	led := ledger.NewMemLedger()
	r := newRecorder(cat, led)

	d, err := r.CreateDraft(ctx, DraftInput{ProductName: "Widget", Quantity: 3, Period: "2024-07"})
	require.NoError(t, err)
	assert.Equal(t, StateDrafting, d.State)
	assert.True(t, d.Total.Equal(decimal.RequireFromString("7.50")))

	_, err = r.Confirm(d.ID)
	require.NoError(t, err)

	rec, stock, err := r.Commit(ctx, d.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(rec.ID, "s_"), "record id: %q", rec.ID)
	assert.Equal(t, 7, stock)
	assert.Equal(t, "Widget", rec.ProductName)
	assert.Equal(t, 3, rec.QuantitySold)
	assert.True(t, rec.TotalAmount.Equal(decimal.RequireFromString("7.50")))
	assert.Equal(t, "2024-07", rec.Period)
	assert.Equal(t, fixedNow(), rec.Timestamp)

	p, ok, err := cat.Lookup(ctx, "Widget")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 7, p.QuantityInStock)

	recs, err := led.List(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 1)

	got, _ := r.Draft(d.ID)
	assert.Equal(t, StateCommitted, got.State)

	// second sale: 8 > 7 in stock
	d2, err := r.CreateDraft(ctx, DraftInput{ProductName: "Widget", Quantity: 8})
	require.NoError(t, err)
	_, err = r.Confirm(d2.ID)
	require.NoError(t, err)

	_, _, err = r.Commit(ctx, d2.ID)
	assert.ErrorIs(t, err, catalog.ErrInsufficientStock)

	p, _, _ = cat.Lookup(ctx, "Widget")
	assert.Equal(t, 7, p.QuantityInStock)
	recs, _ = led.List(ctx)
	assert.Len(t, recs, 1)

	// the rejected draft returns to confirmed, not a dead end
	got, _ = r.Draft(d2.ID)
	assert.Equal(t, StateConfirmed, got.State)
}

func TestCreateDraft_Validation(t *testing.T) {
	ctx := context.Background()
	r := newRecorder(widgetCatalog(), ledger.NewMemLedger())

	_, err := r.CreateDraft(ctx, DraftInput{ProductName: "Widget", Quantity: 0})
	assert.ErrorIs(t, err, catalog.ErrInvalidQuantity)

	_, err = r.CreateDraft(ctx, DraftInput{ProductName: "NoSuch", Quantity: 1})
	assert.ErrorIs(t, err, catalog.ErrNotFound)

	_, err = r.CreateDraft(ctx, DraftInput{ProductName: "Widget", Quantity: 1, Period: "July 2024"})
	assert.ErrorIs(t, err, ErrBadPeriod)
}

func TestCommit_RequiresConfirm(t *testing.T) {
	ctx := context.Background()
	cat := widgetCatalog()
	led := ledger.NewMemLedger()
	r := newRecorder(cat, led)

	d, err := r.CreateDraft(ctx, DraftInput{ProductName: "Widget", Quantity: 3})
	require.NoError(t, err)

	_, _, err = r.Commit(ctx, d.ID)
	assert.ErrorIs(t, err, ErrNotConfirmed)

	p, _, _ := cat.Lookup(ctx, "Widget")
	assert.Equal(t, 10, p.QuantityInStock)
	recs, _ := led.List(ctx)
	assert.Empty(t, recs)
}

func TestCommit_DoubleCommitRejected(t *testing.T) {
	ctx := context.Background()
	cat := widgetCatalog()
	r := newRecorder(cat, ledger.NewMemLedger())

	d, _ := r.CreateDraft(ctx, DraftInput{ProductName: "Widget", Quantity: 3})
	_, err := r.Confirm(d.ID)
	require.NoError(t, err)
	_, _, err = r.Commit(ctx, d.ID)
	require.NoError(t, err)

	_, _, err = r.Commit(ctx, d.ID)
	assert.ErrorIs(t, err, ErrDraftFinished)

	// no second decrement
	p, _, _ := cat.Lookup(ctx, "Widget")
	assert.Equal(t, 7, p.QuantityInStock)
}

func TestConfirm_Transitions(t *testing.T) {
	ctx := context.Background()
	r := newRecorder(widgetCatalog(), ledger.NewMemLedger())

	_, err := r.Confirm("d_missing")
	assert.ErrorIs(t, err, ErrDraftNotFound)

	d, _ := r.CreateDraft(ctx, DraftInput{ProductName: "Widget", Quantity: 1})
	_, err = r.Confirm(d.ID)
	require.NoError(t, err)
	_, err = r.Confirm(d.ID)
	assert.ErrorIs(t, err, ErrAlreadyConfirmed)
}

func TestCommit_DefaultsPeriodToCurrentMonth(t *testing.T) {
	ctx := context.Background()
	r := newRecorder(widgetCatalog(), ledger.NewMemLedger())

	d, _ := r.CreateDraft(ctx, DraftInput{ProductName: "Widget", Quantity: 1})
	_, err := r.Confirm(d.ID)
	require.NoError(t, err)

	rec, _, err := r.Commit(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-07", rec.Period)
}

func TestCommit_OnlyOneCallerWinsTheDraft(t *testing.T) {
	b := NewDraftBook()
	b.Put(Draft{ID: "d_1", State: StateConfirmed})

	_, err := b.beginCommit("d_1")
	require.NoError(t, err)

	// a racing second commit sees the in-flight draft and loses
	_, err = b.beginCommit("d_1")
	assert.ErrorIs(t, err, ErrCommitInFlight)

	b.finish("d_1", StateCommitted)
	_, err = b.beginCommit("d_1")
	assert.ErrorIs(t, err, ErrDraftFinished)
}

// failingLedger refuses every append, standing in for a dead backing store.
type failingLedger struct {
	*ledger.MemLedger
}

func (f failingLedger) Append(ctx context.Context, rec ledger.SaleRecord) error {
	return errors.New("disk full")
}

func TestCommit_LedgerFailureLeavesDecrementedStock(t *testing.T) {
	ctx := context.Background()
	cat := widgetCatalog()
	led := failingLedger{ledger.NewMemLedger()}
	r := newRecorder(cat, led)

	d, _ := r.CreateDraft(ctx, DraftInput{ProductName: "Widget", Quantity: 3})
	_, err := r.Confirm(d.ID)
	require.NoError(t, err)

	_, _, err = r.Commit(ctx, d.ID)

	var pe *PersistError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "ledger", pe.Stage)

	// stock stays decremented, ledger stays empty: the documented gap
	p, _, _ := cat.Lookup(ctx, "Widget")
	assert.Equal(t, 7, p.QuantityInStock)
	recs, _ := led.List(ctx)
	assert.Empty(t, recs)

	// the draft is finished for good; retrying cannot double-decrement
	got, _ := r.Draft(d.ID)
	assert.Equal(t, StateFailed, got.State)
	_, _, err = r.Commit(ctx, d.ID)
	assert.ErrorIs(t, err, ErrDraftFinished)
	p, _, _ = cat.Lookup(ctx, "Widget")
	assert.Equal(t, 7, p.QuantityInStock)
}

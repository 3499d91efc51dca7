// Package sales orchestrates one sale across the catalog and the ledger:
// an operator drafts a sale, explicitly confirms it, and only then can it
// be committed. The two persistence steps of a commit are independent
// writes with no compensation between them.
package sales

import (
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

type State string

const (
	StateDrafting  State = "drafting"
	StateConfirmed State = "confirmed"
	StateCommitted State = "committed"

	// StateCommitting is held only while a commit is in flight, so a second
	// commit request for the same draft cannot pass the state check and
	// decrement stock twice. It resolves to Confirmed when the commit fails
	// validation, or to Committed or Failed otherwise.
	StateCommitting State = "committing"

	// StateFailed is terminal: a commit attempt got far enough to touch a
	// backing store and did not fully succeed. The draft can never be
	// retried, because a retry could decrement stock twice.
	StateFailed State = "failed"
)

var (
	ErrDraftNotFound    = errors.New("draft not found")
	ErrNotConfirmed     = errors.New("draft not confirmed")
	ErrAlreadyConfirmed = errors.New("draft already confirmed")
	ErrCommitInFlight   = errors.New("commit already in flight")
	ErrDraftFinished    = errors.New("draft already finished")
)

// Draft is an operator's in-progress sale. UnitPrice and Total here are the
// quote shown while drafting; the committed record re-captures the price at
// commit time.
type Draft struct {
	ID            string          `json:"id"`
	State         State           `json:"state"`
	ProductName   string          `json:"product_name"`
	Quantity      int             `json:"quantity"`
	Period        string          `json:"period"`
	CustomerName  string          `json:"customer_name,omitempty"`
	CustomerPhone string          `json:"customer_phone,omitempty"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Total         decimal.Decimal `json:"total"`
	CreatedAt     time.Time       `json:"created_at"`
}

// DraftBook holds live drafts in memory. Drafts are per-session scratch
// state, not durable data: a restart forgets them, committed sales live in
// the ledger.
type DraftBook struct {
	mu sync.Mutex
	m  map[string]Draft
}

func NewDraftBook() *DraftBook {
	return &DraftBook{m: make(map[string]Draft)}
}

func (b *DraftBook) Put(d Draft) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.m[d.ID] = d
}

func (b *DraftBook) Get(id string) (Draft, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	d, ok := b.m[id]
	return d, ok
}

// Confirm moves a draft from Drafting to Confirmed. The distinct confirm
// step is what keeps one stray click from committing a sale.
func (b *DraftBook) Confirm(id string) (Draft, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	d, ok := b.m[id]
	if !ok {
		return Draft{}, ErrDraftNotFound
	}

	switch d.State {
	case StateDrafting:
	case StateConfirmed:
		return Draft{}, ErrAlreadyConfirmed
	default:
		return Draft{}, ErrDraftFinished
	}

	d.State = StateConfirmed
	b.m[id] = d
	return d, nil
}

// beginCommit hands out a confirmed draft for committing and parks it in
// Committing until finish resolves it. Only one caller can win the
// Confirmed-to-Committing transition; everyone else gets an error.
func (b *DraftBook) beginCommit(id string) (Draft, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	d, ok := b.m[id]
	if !ok {
		return Draft{}, ErrDraftNotFound
	}

	switch d.State {
	case StateConfirmed:
		d.State = StateCommitting
		b.m[id] = d
		return d, nil
	case StateDrafting:
		return Draft{}, ErrNotConfirmed
	case StateCommitting:
		return Draft{}, ErrCommitInFlight
	default:
		return Draft{}, ErrDraftFinished
	}
}

func (b *DraftBook) finish(id string, state State) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if d, ok := b.m[id]; ok {
		d.State = state
		b.m[id] = d
	}
}

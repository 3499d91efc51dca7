package catalog

import "context"

// Store is the catalog contract. RecordSale is the single mutating
// operation: it validates, decrements stock and persists, or returns one of
// the package sentinels having touched nothing.
type Store interface {
	List(ctx context.Context) ([]Product, error)
	Lookup(ctx context.Context, name string) (Product, bool, error)
	RecordSale(ctx context.Context, name string, qty int) (Product, error)
	Ping(ctx context.Context) error
}

package catalog

import (
	"context"
	"sort"
	"sync"
)

// MemStore backs the catalog with a plain map. It honors the same
// validation rules as FileStore; there is just nothing to persist.
type MemStore struct {
	mu sync.RWMutex
	m  map[string]Product
}

func NewMemStore(products ...Product) *MemStore {
	s := &MemStore{m: make(map[string]Product, len(products))}
	for _, p := range products {
		s.m[p.Name] = p
	}
	return s
}

func (s *MemStore) Ping(ctx context.Context) error { return nil }

func (s *MemStore) List(ctx context.Context) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Product, 0, len(s.m))
	for _, p := range s.m {
		out = append(out, p)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemStore) Lookup(ctx context.Context, name string) (Product, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.m[name]
	return p, ok, nil
}

func (s *MemStore) RecordSale(ctx context.Context, name string, qty int) (Product, error) {
	if qty < 1 {
		return Product{}, ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.m[name]
	if !ok {
		return Product{}, ErrNotFound
	}
	if qty > p.QuantityInStock {
		return Product{}, ErrInsufficientStock
	}

	p.QuantityInStock -= qty
	s.m[name] = p
	return p, nil
}

package catalog

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"MiniPOS/internal/tabfile"
)

const (
	colName  = "Product Name"
	colPrice = "Price Per Unit"
	colStock = "Quantity In Stock"
)

// FileStore keeps the catalog in a single delimited table, loaded once at
// construction and rewritten wholesale after every successful sale. Columns
// beyond the three it understands are carried through each rewrite
// untouched, which is why it holds the raw rows and not just parsed
// products.
type FileStore struct {
	mu sync.Mutex

	tab    *tabfile.Table
	header []string
	rows   [][]string

	priceCol, stockCol int

	products []Product      // parallel to rows, minus skipped rows
	rowOf    map[string]int // product name -> index into rows
	prodOf   map[string]int // product name -> index into products
}

func NewFileStore(path string) (*FileStore, error) {
	tab := tabfile.New(path)
	if !tab.Exists() {
		return nil, fmt.Errorf("catalog file %s does not exist", path)
	}

	header, rows, err := tab.Load()
	if err != nil {
		return nil, err
	}

	idx := tabfile.ColumnIndex(header)
	nameCol, ok := idx[colName]
	if !ok {
		return nil, fmt.Errorf("catalog %s: missing column %q", path, colName)
	}
	priceCol, ok := idx[colPrice]
	if !ok {
		return nil, fmt.Errorf("catalog %s: missing column %q", path, colPrice)
	}
	stockCol, ok := idx[colStock]
	if !ok {
		return nil, fmt.Errorf("catalog %s: missing column %q", path, colStock)
	}

	s := &FileStore{
		tab:      tab,
		header:   header,
		rows:     rows,
		priceCol: priceCol,
		stockCol: stockCol,
		rowOf:    make(map[string]int),
		prodOf:   make(map[string]int),
	}

	for i, row := range rows {
		if nameCol >= len(row) || priceCol >= len(row) || stockCol >= len(row) {
			return nil, fmt.Errorf("catalog %s: row %d has %d columns, want at least %d", path, i+2, len(row), len(header))
		}

		name := row[nameCol]
		if strings.TrimSpace(name) == "" {
			continue // blank product rows are tolerated, as the source sheets have them
		}
		if _, dup := s.rowOf[name]; dup {
			return nil, fmt.Errorf("catalog %s: duplicate product %q", path, name)
		}

		price, err := decimal.NewFromString(strings.TrimSpace(row[priceCol]))
		if err != nil {
			return nil, fmt.Errorf("catalog %s: row %d: bad price %q: %w", path, i+2, row[priceCol], err)
		}
		if price.IsNegative() {
			return nil, fmt.Errorf("catalog %s: row %d: negative price %s", path, i+2, price)
		}

		stock, err := strconv.Atoi(strings.TrimSpace(row[stockCol]))
		if err != nil || stock < 0 {
			return nil, fmt.Errorf("catalog %s: row %d: bad stock %q", path, i+2, row[stockCol])
		}

		s.rowOf[name] = i
		s.prodOf[name] = len(s.products)
		s.products = append(s.products, Product{Name: name, PricePerUnit: price, QuantityInStock: stock})
	}

	return s, nil
}

func (s *FileStore) Ping(ctx context.Context) error {
	if !s.tab.Exists() {
		return fmt.Errorf("catalog file %s missing", s.tab.Path())
	}
	return nil
}

func (s *FileStore) List(ctx context.Context) ([]Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Product, len(s.products))
	copy(out, s.products)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *FileStore) Lookup(ctx context.Context, name string) (Product, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.prodOf[name]
	if !ok {
		return Product{}, false, nil
	}
	return s.products[i], true, nil
}

// RecordSale decrements stock and rewrites the whole catalog file. On a
// persist failure the in-memory cell is restored so the store keeps
// mirroring what is actually on disk.
func (s *FileStore) RecordSale(ctx context.Context, name string, qty int) (Product, error) {
	if qty < 1 {
		return Product{}, ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	pi, ok := s.prodOf[name]
	if !ok {
		return Product{}, ErrNotFound
	}
	p := s.products[pi]
	if qty > p.QuantityInStock {
		return Product{}, ErrInsufficientStock
	}

	ri := s.rowOf[name]
	prevCell := s.rows[ri][s.stockCol]

	p.QuantityInStock -= qty
	s.rows[ri][s.stockCol] = strconv.Itoa(p.QuantityInStock)

	if err := s.tab.Rewrite(s.header, s.rows); err != nil {
		s.rows[ri][s.stockCol] = prevCell
		return Product{}, fmt.Errorf("persist catalog: %w", err)
	}

	s.products[pi] = p
	return p, nil
}

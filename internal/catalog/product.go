package catalog

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound          = errors.New("product not found")
	ErrInvalidQuantity   = errors.New("invalid quantity")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Product is keyed by name, case-sensitive. Prices are decimals so a 2.50
// unit price stays 2.50 through every aggregate.
type Product struct {
	Name            string          `json:"name"`
	PricePerUnit    decimal.Decimal `json:"price_per_unit"`
	QuantityInStock int             `json:"quantity_in_stock"`
}

const lowStockThreshold = 5

// StockStatus buckets a product for the inventory dashboard: "out" at zero,
// "low" under five units, "ok" otherwise.
func StockStatus(p Product) string {
	switch {
	case p.QuantityInStock == 0:
		return "out"
	case p.QuantityInStock < lowStockThreshold:
		return "low"
	default:
		return "ok"
	}
}

// Search filters for display only: case-insensitive substring match on the
// product name. The store is never consulted or mutated.
func Search(products []Product, q string) []Product {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return products
	}

	out := make([]Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), q) {
			out = append(out, p)
		}
	}
	return out
}

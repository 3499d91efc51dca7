package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const (
	pingTimeout  = 1 * time.Second
	queryTimeout = 3 * time.Second
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return withTimeout(ctx, pingTimeout, func(ctx context.Context) error {
		return s.db.PingContext(ctx)
	})
}

func (s *PostgresStore) List(ctx context.Context) ([]Product, error) {
	var out []Product

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		rows, err := s.db.QueryContext(ctx, `
			SELECT product_name, price_per_unit, quantity_in_stock
			FROM products
			ORDER BY product_name ASC
		`)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = make([]Product, 0, 16)
		for rows.Next() {
			var p Product
			if err := rows.Scan(&p.Name, &p.PricePerUnit, &p.QuantityInStock); err != nil {
				return err
			}
			out = append(out, p)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PostgresStore) Lookup(ctx context.Context, name string) (Product, bool, error) {
	var p Product

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		return s.db.QueryRowContext(ctx, `
			SELECT product_name, price_per_unit, quantity_in_stock
			FROM products
			WHERE product_name = $1
		`, name).Scan(&p.Name, &p.PricePerUnit, &p.QuantityInStock)
	})

	if err == sql.ErrNoRows {
		return Product{}, false, nil
	}
	if err != nil {
		return Product{}, false, err
	}
	return p, true, nil
}

// RecordSale relies on a guarded UPDATE so the stock check and the
// decrement are one statement; the quantity_in_stock >= $2 predicate is
// what stands in for FileStore's in-memory validation.
func (s *PostgresStore) RecordSale(ctx context.Context, name string, qty int) (Product, error) {
	if qty < 1 {
		return Product{}, ErrInvalidQuantity
	}

	var p Product
	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		err := s.db.QueryRowContext(ctx, `
			UPDATE products
			SET quantity_in_stock = quantity_in_stock - $2
			WHERE product_name = $1 AND quantity_in_stock >= $2
			RETURNING product_name, price_per_unit, quantity_in_stock
		`, name, qty).Scan(&p.Name, &p.PricePerUnit, &p.QuantityInStock)

		if err != sql.ErrNoRows {
			return err
		}

		// Nothing updated: tell a missing product apart from a short stock.
		var stock int
		err = s.db.QueryRowContext(ctx, `
			SELECT quantity_in_stock FROM products WHERE product_name = $1
		`, name).Scan(&stock)
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return ErrInsufficientStock
	})

	if err == ErrNotFound || err == ErrInvalidQuantity || err == ErrInsufficientStock {
		return Product{}, err
	}
	if err != nil {
		return Product{}, fmt.Errorf("persist catalog: %w", err)
	}
	return p, nil
}

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}

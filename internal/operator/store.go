// Package operator handles shop-operator accounts and sessions: who may
// enter sales. Dashboards stay open; anything that mutates stock or the
// ledger sits behind RequireOperator.
package operator

import (
	"context"
	"errors"
)

var (
	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type Operator struct {
	ID    string
	Email string
	Hash  []byte
	Role  string
}

type Store interface {
	Create(ctx context.Context, email, password, role, id string) error
	Verify(ctx context.Context, email, password string) (Operator, error)
	Ping(ctx context.Context) error
}

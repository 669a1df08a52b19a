package store

import (
	"context"
	"errors"
)

// Keys under which the engines keep their state.
const (
	KeyCart        = "cartItems"
	KeyUsers       = "users"
	KeyCurrentUser = "currentUser"
	KeyOrders      = "orders"
)

// ErrNotFound is returned by Get when the key holds no value.
var ErrNotFound = errors.New("key not found")

// UpdateFunc receives the current value (nil when absent) and returns the value to store.
// Returning an error aborts the update and leaves the stored value untouched.
type UpdateFunc func(current []byte) ([]byte, error)

// Store is the durable key-value store every state container persists to.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error

	// Update performs an atomic read-modify-write of a single key.
	Update(ctx context.Context, key string, fn UpdateFunc) error

	Close() error
}

package domain

import (
	"errors"
	"fmt"
)

// Domain errors. The HTTP handlers decode these into status codes once,
// at the boundary.
var (
	// ErrAccountNotFound means the account id has no row. Maps to 404.
	ErrAccountNotFound = errors.New("account not found")

	// ErrInvalidAmount means valor is missing, zero or negative. Maps to 422.
	ErrInvalidAmount = errors.New("valor must be a positive integer")

	// ErrInvalidKind means tipo is not "c" or "d". Maps to 422.
	ErrInvalidKind = errors.New(`tipo must be "c" or "d"`)

	// ErrInvalidDescription means descricao is empty or over 10 characters.
	// Maps to 422.
	ErrInvalidDescription = errors.New("descricao must be 1 to 10 characters")

	// ErrOverdraftLimit means the post would push the balance below the
	// credit limit. Maps to 422; the store transaction is rolled back.
	ErrOverdraftLimit = errors.New("transaction would exceed the credit limit")
)

// StoreError wraps any pool, lock or write failure. Maps to 500; callers
// see a bounded summary, never the driver's raw error text.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store failure during %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

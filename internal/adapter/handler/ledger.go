package handler

import (
	"context"

	"github.com/jairoandre/maggie/internal/core/domain"
)

// Ledger is what the handlers need from the storage layer.
//
//go:generate mockgen -destination=mocks/ledger.go -package=mocks github.com/jairoandre/maggie/internal/adapter/handler Ledger
type Ledger interface {
	PostTransaction(ctx context.Context, accountID int64, req domain.TransactionRequest) (domain.Balance, error)
	Statement(ctx context.Context, accountID int64) (domain.Statement, error)
}

package storage

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/jairoandre/maggie/internal/core/domain"
)

// DB is the subset of *pgxpool.Pool the repository uses. Tests substitute
// a mock pool through it.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const (
	accountForUpdateSQL = `SELECT balance, credit_limit FROM accounts WHERE id = $1 FOR UPDATE`

	accountStatementSQL = `SELECT balance, credit_limit, NOW() FROM accounts WHERE id = $1`

	lastTransactionsSQL = `
		SELECT amount, transaction_type, details, created_at
		FROM transactions
		WHERE account_id = $1
		ORDER BY created_at DESC
		LIMIT 10`

	updateBalanceSQL = `UPDATE accounts SET balance = $1 WHERE id = $2`

	insertTransactionSQL = `
		INSERT INTO transactions (account_id, amount, transaction_type, details)
		VALUES ($1, $2, $3, $4)`

	enqueueWebhookSQL = `INSERT INTO webhook_jobs (url, payload) VALUES ($1, $2)`
)

type LedgerRepository struct {
	db         DB
	webhookURL string // empty disables outbox enqueueing
}

func NewLedgerRepository(db DB, webhookURL string) *LedgerRepository {
	return &LedgerRepository{db: db, webhookURL: webhookURL}
}

type webhookPayload struct {
	AccountID int64  `json:"account_id"`
	Valor     int64  `json:"valor"`
	Tipo      string `json:"tipo"`
	Descricao string `json:"descricao"`
	Saldo     int64  `json:"saldo"`
}

// PostTransaction runs the locked read-check-write cycle for one account
// inside a single database transaction. The row lock serializes concurrent
// posts to the same account; posts to different accounts never block each
// other. Nothing is retried here, retry policy belongs to the caller.
func (r *LedgerRepository) PostTransaction(ctx context.Context, accountID int64, req domain.TransactionRequest) (domain.Balance, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return domain.Balance{}, &domain.StoreError{Op: "begin", Err: err}
	}
	defer tx.Rollback(ctx)

	var balance, creditLimit int64
	err = tx.QueryRow(ctx, accountForUpdateSQL, accountID).Scan(&balance, &creditLimit)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Balance{}, domain.ErrAccountNotFound
	}
	if err != nil {
		return domain.Balance{}, &domain.StoreError{Op: "lock account", Err: err}
	}

	candidate := balance + req.SignedAmount()
	if !domain.WithinLimit(candidate, creditLimit) {
		return domain.Balance{}, domain.ErrOverdraftLimit
	}

	if _, err := tx.Exec(ctx, updateBalanceSQL, candidate, accountID); err != nil {
		return domain.Balance{}, &domain.StoreError{Op: "update balance", Err: err}
	}

	if _, err := tx.Exec(ctx, insertTransactionSQL,
		accountID, req.SignedAmount(), req.Kind, req.Description); err != nil {
		return domain.Balance{}, &domain.StoreError{Op: "insert transaction", Err: err}
	}

	// Outbox row rides in the same transaction, so a notification exists
	// iff the balance update committed.
	if r.webhookURL != "" {
		payload, err := json.Marshal(webhookPayload{
			AccountID: accountID,
			Valor:     req.Amount,
			Tipo:      req.Kind,
			Descricao: req.Description,
			Saldo:     candidate,
		})
		if err != nil {
			return domain.Balance{}, &domain.StoreError{Op: "encode webhook payload", Err: err}
		}
		if _, err := tx.Exec(ctx, enqueueWebhookSQL, r.webhookURL, payload); err != nil {
			return domain.Balance{}, &domain.StoreError{Op: "enqueue webhook", Err: err}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Balance{}, &domain.StoreError{Op: "commit", Err: err}
	}

	return domain.Balance{Total: candidate, CreditLimit: creditLimit}, nil
}

// Statement fetches the current balance and the last 10 transactions.
// Plain reads, no locking: the statement only needs some recent committed
// state, and its timestamp is the read-time NOW().
func (r *LedgerRepository) Statement(ctx context.Context, accountID int64) (domain.Statement, error) {
	var (
		balance, creditLimit int64
		generatedAt          pgtype.Timestamptz
	)
	err := r.db.QueryRow(ctx, accountStatementSQL, accountID).
		Scan(&balance, &creditLimit, &generatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Statement{}, domain.ErrAccountNotFound
	}
	if err != nil {
		return domain.Statement{}, &domain.StoreError{Op: "read account", Err: err}
	}

	rows, err := r.db.Query(ctx, lastTransactionsSQL, accountID)
	if err != nil {
		return domain.Statement{}, &domain.StoreError{Op: "read transactions", Err: err}
	}
	defer rows.Close()

	transactions := make([]domain.Transaction, 0, 10)
	for rows.Next() {
		var (
			t         domain.Transaction
			createdAt pgtype.Timestamptz
		)
		if err := rows.Scan(&t.Amount, &t.Kind, &t.Description, &createdAt); err != nil {
			return domain.Statement{}, &domain.StoreError{Op: "scan transaction", Err: err}
		}
		t.CreatedAt = createdAt.Time
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return domain.Statement{}, &domain.StoreError{Op: "read transactions", Err: err}
	}

	return domain.Statement{
		Balance:      domain.Balance{Total: balance, CreditLimit: creditLimit},
		GeneratedAt:  generatedAt.Time,
		Transactions: transactions,
	}, nil
}

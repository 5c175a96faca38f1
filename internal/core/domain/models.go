package domain

import "time"

// Account is a ledger row. Accounts pre-exist in the database and are
// never created by this service.
type Account struct {
	ID          int64
	Balance     int64 // Stored in minor units (cents)
	CreditLimit int64 // How far below zero the balance may go
}

// Transaction is a committed ledger entry. Immutable once written.
type Transaction struct {
	Amount      int64 // Signed: credits positive, debits negative
	Kind        string
	Description string
	CreatedAt   time.Time
}

// Balance is the post-commit result of posting a transaction.
type Balance struct {
	Total       int64
	CreditLimit int64
}

// Statement aggregates the current balance with the most recent
// transactions. GeneratedAt is the read time, not the last commit time.
type Statement struct {
	Balance      Balance
	GeneratedAt  time.Time
	Transactions []Transaction
}

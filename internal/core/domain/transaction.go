package domain

import "time"

// Transaction kinds as they appear on the wire.
const (
	KindCredit = "c"
	KindDebit  = "d"
)

const maxDescriptionLen = 10

// TransactionRequest is a movement to post against an account. Amount is
// the raw positive magnitude from the request; the sign comes from Kind.
type TransactionRequest struct {
	Amount      int64
	Kind        string
	Description string
}

// Validate checks the request before it touches the store.
func (r TransactionRequest) Validate() error {
	if r.Amount <= 0 {
		return ErrInvalidAmount
	}
	if r.Kind != KindCredit && r.Kind != KindDebit {
		return ErrInvalidKind
	}
	if len(r.Description) == 0 || len(r.Description) > maxDescriptionLen {
		return ErrInvalidDescription
	}
	return nil
}

// SignedAmount derives the signed movement: credits add, debits subtract.
func (r TransactionRequest) SignedAmount() int64 {
	if r.Kind == KindDebit {
		return -r.Amount
	}
	return r.Amount
}

// WithinLimit reports whether a candidate balance respects the credit
// limit. Evaluated once per post, after the row lock and before any write.
func WithinLimit(balance, creditLimit int64) bool {
	return balance+creditLimit >= 0
}

// FormatTimestamp renders ISO-8601 with millisecond precision and a
// literal Z suffix, the format clients expect on the wire.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}

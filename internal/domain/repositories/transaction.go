package repositories

import "context"

// TxFn runs repository calls that must commit or roll back as one unit. The
// ctx it receives carries the open transaction, so the calls inside need no
// special handling.
type TxFn func(ctx context.Context) error

// TransactionManager scopes a function to a single database transaction.
// Answer submission and book finalization both pair a write with a
// conditional state change through it.
type TransactionManager interface {
	ExecTx(ctx context.Context, fn TxFn) error
}

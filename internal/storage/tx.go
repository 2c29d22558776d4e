package storage

import "context"

// Transactor runs fn inside a single transaction. Repositories called with the
// ctx handed to fn take part in that transaction; nested calls join the outer one.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

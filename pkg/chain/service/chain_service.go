package service

import "context"

// Clock is the block-height counter the ledger accrues against.
type Clock interface {
	Height(ctx context.Context) (uint64, error)
	// Mine appends n empty blocks and returns the new height.
	Mine(ctx context.Context, n uint64) (uint64, error)
}

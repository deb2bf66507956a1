package repository

import (
	"context"
	"errors"
	"math"

	"farmyield/entities"
)

// MaxHeight is the highest block the clock can reach. Heights are stored as
// signed sqlite integers.
const MaxHeight = math.MaxInt64

var ErrHeightOverflow = errors.New("block height overflow")

type ChainRepository interface {
	Height(ctx context.Context) (uint64, error)
	// Advance moves the clock forward by n blocks and returns the new height.
	// It fails with ErrHeightOverflow if that would pass MaxHeight.
	Advance(ctx context.Context, n uint64) (uint64, error)
}

type ReceiptRepository interface {
	Create(ctx context.Context, r *entities.TxReceipt) error
	FindByID(ctx context.Context, txID string) (*entities.TxReceipt, error)
	ListByCaller(ctx context.Context, caller string, limit int) ([]entities.TxReceipt, error)
}

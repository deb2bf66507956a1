package repository

import (
	"context"

	"farmyield/entities"
)

type PoolRepository interface {
	Create(ctx context.Context, p *entities.Pool) error
	Update(ctx context.Context, p *entities.Pool) error
	FindByID(ctx context.Context, id uint64) (*entities.Pool, error)
	List(ctx context.Context) ([]entities.Pool, error)
}

// PositionRepository stores staker positions keyed by (staker, pool).
type PositionRepository interface {
	Create(ctx context.Context, y *entities.YieldFarmer) error
	Update(ctx context.Context, y *entities.YieldFarmer) error
	Find(ctx context.Context, staker string, poolID uint64) (*entities.YieldFarmer, error)
	ListByStaker(ctx context.Context, staker string) ([]entities.YieldFarmer, error)
	ListByPool(ctx context.Context, poolID uint64) ([]entities.YieldFarmer, error)
	List(ctx context.Context) ([]entities.YieldFarmer, error)
}

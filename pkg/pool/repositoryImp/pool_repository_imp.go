package repositoryImp

import (
	"context"

	"gorm.io/gorm"

	"farmyield/entities"
	"farmyield/pkg/pool/repository"
)

type poolRepo struct{ db *gorm.DB }

func NewPools(db *gorm.DB) repository.PoolRepository { return &poolRepo{db} }

func (r *poolRepo) Create(ctx context.Context, p *entities.Pool) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *poolRepo) Update(ctx context.Context, p *entities.Pool) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *poolRepo) FindByID(ctx context.Context, id uint64) (*entities.Pool, error) {
	var p entities.Pool
	if err := r.db.WithContext(ctx).Where("pool_id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *poolRepo) List(ctx context.Context) ([]entities.Pool, error) {
	var out []entities.Pool
	return out, r.db.WithContext(ctx).Order("pool_id ASC").Find(&out).Error
}

type positionRepo struct{ db *gorm.DB }

func NewPositions(db *gorm.DB) repository.PositionRepository { return &positionRepo{db} }

func (r *positionRepo) Create(ctx context.Context, y *entities.YieldFarmer) error {
	return r.db.WithContext(ctx).Create(y).Error
}

func (r *positionRepo) Update(ctx context.Context, y *entities.YieldFarmer) error {
	return r.db.WithContext(ctx).Save(y).Error
}

func (r *positionRepo) Find(ctx context.Context, staker string, poolID uint64) (*entities.YieldFarmer, error) {
	var y entities.YieldFarmer
	if err := r.db.WithContext(ctx).Where("staker = ? AND pool_id = ?", staker, poolID).First(&y).Error; err != nil {
		return nil, err
	}
	return &y, nil
}

func (r *positionRepo) ListByStaker(ctx context.Context, staker string) ([]entities.YieldFarmer, error) {
	var out []entities.YieldFarmer
	return out, r.db.WithContext(ctx).Where("staker = ?", staker).Order("pool_id ASC").Find(&out).Error
}

func (r *positionRepo) ListByPool(ctx context.Context, poolID uint64) ([]entities.YieldFarmer, error) {
	var out []entities.YieldFarmer
	return out, r.db.WithContext(ctx).Where("pool_id = ?", poolID).Order("staker ASC").Find(&out).Error
}

func (r *positionRepo) List(ctx context.Context) ([]entities.YieldFarmer, error) {
	var out []entities.YieldFarmer
	return out, r.db.WithContext(ctx).Order("pool_id ASC, staker ASC").Find(&out).Error
}

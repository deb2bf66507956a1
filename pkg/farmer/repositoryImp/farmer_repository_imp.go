package repositoryImp

import (
	"context"

	"gorm.io/gorm"

	"farmyield/entities"
	"farmyield/pkg/farmer/repository"
)

type farmerRepo struct{ db *gorm.DB }

func New(db *gorm.DB) repository.FarmerRepository { return &farmerRepo{db} }

func (r *farmerRepo) Create(ctx context.Context, f *entities.Farmer) error {
	return r.db.WithContext(ctx).Create(f).Error
}

func (r *farmerRepo) Update(ctx context.Context, f *entities.Farmer) error {
	return r.db.WithContext(ctx).Save(f).Error
}

func (r *farmerRepo) FindByID(ctx context.Context, id uint64) (*entities.Farmer, error) {
	var f entities.Farmer
	if err := r.db.WithContext(ctx).Where("farmer_id = ?", id).First(&f).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *farmerRepo) List(ctx context.Context) ([]entities.Farmer, error) {
	var out []entities.Farmer
	return out, r.db.WithContext(ctx).Order("farmer_id ASC").Find(&out).Error
}

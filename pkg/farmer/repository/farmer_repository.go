package repository

import (
	"context"

	"farmyield/entities"
)

type FarmerRepository interface {
	Create(ctx context.Context, f *entities.Farmer) error
	Update(ctx context.Context, f *entities.Farmer) error
	FindByID(ctx context.Context, id uint64) (*entities.Farmer, error)
	List(ctx context.Context) ([]entities.Farmer, error)
}

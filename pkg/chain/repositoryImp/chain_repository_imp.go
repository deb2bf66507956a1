package repositoryImp

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"farmyield/entities"
	"farmyield/pkg/chain/repository"
)

const stateRow = 1

type chainRepo struct{ db *gorm.DB }

func New(db *gorm.DB) repository.ChainRepository { return &chainRepo{db} }

func (r *chainRepo) Height(ctx context.Context) (uint64, error) {
	var st entities.ChainState
	if err := r.db.WithContext(ctx).FirstOrCreate(&st, entities.ChainState{ID: stateRow}).Error; err != nil {
		return 0, err
	}
	return st.Height, nil
}

func (r *chainRepo) Advance(ctx context.Context, n uint64) (uint64, error) {
	var height uint64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var st entities.ChainState
		if err := tx.FirstOrCreate(&st, entities.ChainState{ID: stateRow}).Error; err != nil {
			return err
		}
		if n > repository.MaxHeight || st.Height > repository.MaxHeight-n {
			return fmt.Errorf("advance %d from %d: %w", n, st.Height, repository.ErrHeightOverflow)
		}
		st.Height += n
		if err := tx.Model(&entities.ChainState{}).Where("id = ?", stateRow).Update("height", st.Height).Error; err != nil {
			return err
		}
		height = st.Height
		return nil
	})
	return height, err
}

type receiptRepo struct{ db *gorm.DB }

func NewReceipts(db *gorm.DB) repository.ReceiptRepository { return &receiptRepo{db} }

func (r *receiptRepo) Create(ctx context.Context, rc *entities.TxReceipt) error {
	return r.db.WithContext(ctx).Create(rc).Error
}

func (r *receiptRepo) FindByID(ctx context.Context, txID string) (*entities.TxReceipt, error) {
	var rc entities.TxReceipt
	if err := r.db.WithContext(ctx).Where("tx_id = ?", txID).First(&rc).Error; err != nil {
		return nil, err
	}
	return &rc, nil
}

func (r *receiptRepo) ListByCaller(ctx context.Context, caller string, limit int) ([]entities.TxReceipt, error) {
	if limit <= 0 {
		limit = 50
	}
	var out []entities.TxReceipt
	return out, r.db.WithContext(ctx).Where("caller = ?", caller).Order("created_at DESC").Limit(limit).Find(&out).Error
}

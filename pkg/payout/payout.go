// Package payout is the value-transfer primitive the ledger calls when it
// releases rewards or principal. The bundled implementation records each
// transfer in the payouts table of the same database transaction.
package payout

import (
	"context"

	"gorm.io/gorm"

	"farmyield/entities"
)

type Transferer interface {
	Transfer(ctx context.Context, p *entities.Payout) error
}

// Factory binds a Transferer to the transaction of one ledger call.
type Factory func(tx *gorm.DB) Transferer

type recorder struct{ db *gorm.DB }

func New(db *gorm.DB) Transferer { return &recorder{db} }

func (r *recorder) Transfer(ctx context.Context, p *entities.Payout) error {
	if !p.Amount.IsPositive() {
		return nil
	}
	return r.db.WithContext(ctx).Create(p).Error
}

// ListByRecipient returns transfers made to recipient, newest first.
func ListByRecipient(ctx context.Context, db *gorm.DB, recipient string) ([]entities.Payout, error) {
	var out []entities.Payout
	return out, db.WithContext(ctx).Where("recipient = ?", recipient).Order("id DESC").Find(&out).Error
}

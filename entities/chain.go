package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// ChainState holds the block-height clock. There is a single row with ID 1.
type ChainState struct {
	ID        uint   `gorm:"primaryKey"`
	Height    uint64 `json:"height"`
	UpdatedAt time.Time
}

type TxReceipt struct {
	TxID      string          `gorm:"primaryKey" json:"txId"`
	Call      string          `gorm:"index" json:"call"`
	Caller    string          `gorm:"index" json:"caller"`
	Success   bool            `json:"success"`
	Error     string          `json:"error,omitempty"`
	Height    uint64          `json:"height"`
	Amount    decimal.Decimal `gorm:"type:text" json:"amount"`
	CreatedAt time.Time       `json:"createdAt"`
}

const (
	PayoutReward    = "reward"
	PayoutPrincipal = "principal"
)

type Payout struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	Recipient string          `gorm:"index" json:"recipient"`
	PoolID    uint64          `gorm:"index" json:"poolId"`
	Kind      string          `json:"kind"` // reward|principal
	Amount    decimal.Decimal `gorm:"type:text" json:"amount"`
	Height    uint64          `json:"height"`
	CreatedAt time.Time       `json:"createdAt"`
}

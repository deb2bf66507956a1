package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	PoolActive   = "active"
	PoolShutdown = "shutdown"
)

type Pool struct {
	PoolID        uint64  `gorm:"primaryKey;autoIncrement:false" json:"poolId"`
	FarmerID      uint64  `gorm:"index" json:"farmerId"`
	APY           uint64  `json:"apy"` // basis points
	MinStake      uint64  `json:"minStake"`
	TotalStaked   uint64  `json:"totalStaked"`
	EndHeight     *uint64 `json:"endHeight"` // set once by emergency shutdown
	CreatedHeight uint64  `json:"createdHeight"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func (p *Pool) IsShutdown() bool { return p.EndHeight != nil }

func (p *Pool) Status() string {
	if p.IsShutdown() {
		return PoolShutdown
	}
	return PoolActive
}

// YieldFarmer is one staker's position in one pool.
type YieldFarmer struct {
	Staker          string          `gorm:"primaryKey" json:"staker"`
	PoolID          uint64          `gorm:"primaryKey;autoIncrement:false" json:"poolId"`
	StakedAmount    uint64          `json:"stakedAmount"`
	Rewards         decimal.Decimal `gorm:"type:text" json:"rewards"` // settled, unclaimed
	LastClaimHeight uint64          `json:"lastClaimHeight"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

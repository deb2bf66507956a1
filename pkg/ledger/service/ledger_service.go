package service

import (
	"context"

	"github.com/shopspring/decimal"

	"farmyield/entities"
)

// Receipt is the outcome of one state-changing call. Success is false
// exactly when Error carries a code.
type Receipt struct {
	TxID    string          `json:"txId"`
	Call    string          `json:"call"`
	Caller  string          `json:"caller"`
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Height  uint64          `json:"height"`
	Amount  decimal.Decimal `json:"amount"` // paid out by claim/unstake
}

// Call names as exposed on the public surface.
const (
	CallRegisterFarmer      = "register-farmer"
	CallUpdateYieldEstimate = "update-yield-estimate"
	CallDeactivateFarmer    = "deactivate-farmer"
	CallCreatePool          = "create-pool"
	CallStakeTokens         = "stake-tokens"
	CallUnstakeTokens       = "unstake-tokens"
	CallClaimRewards        = "claim-rewards"
	CallEmergencyShutdown   = "emergency-shutdown"
)

type Ledger interface {
	Owner() string

	RegisterFarmer(ctx context.Context, caller string, farmerID, totalLand uint64, cropType string) (Receipt, error)
	UpdateYieldEstimate(ctx context.Context, caller string, farmerID, estimate uint64) (Receipt, error)
	DeactivateFarmer(ctx context.Context, caller string, farmerID uint64) (Receipt, error)
	CreatePool(ctx context.Context, caller string, poolID, farmerID, apy, minStake uint64) (Receipt, error)
	StakeTokens(ctx context.Context, caller string, poolID, amount uint64) (Receipt, error)
	UnstakeTokens(ctx context.Context, caller string, poolID, amount uint64) (Receipt, error)
	ClaimRewards(ctx context.Context, caller string, poolID uint64) (Receipt, error)
	EmergencyShutdown(ctx context.Context, caller string, poolID uint64) (Receipt, error)

	GetFarmer(ctx context.Context, farmerID uint64) (*entities.Farmer, error)
	GetPool(ctx context.Context, poolID uint64) (*entities.Pool, error)
	GetYieldFarmer(ctx context.Context, staker string, poolID uint64) (*entities.YieldFarmer, error)
	ListYieldFarmer(ctx context.Context, staker string) ([]entities.YieldFarmer, error)
	ListPoolPositions(ctx context.Context, poolID uint64) ([]entities.YieldFarmer, error)
	CalculateRewards(ctx context.Context, staker string, poolID uint64) (decimal.Decimal, error)
	ListReceipts(ctx context.Context, caller string, limit int) ([]entities.TxReceipt, error)
	Snapshot(ctx context.Context) (*Snapshot, error)
}

type PositionView struct {
	entities.YieldFarmer
	Pending decimal.Decimal `json:"pending"` // settled rewards plus accrual up to Snapshot.Height
}

// Snapshot is a consistent read of the whole ledger at one height.
type Snapshot struct {
	Height    uint64            `json:"height"`
	Farmers   []entities.Farmer `json:"farmers"`
	Pools     []entities.Pool   `json:"pools"`
	Positions []PositionView    `json:"positions"`
}

package serviceImp

import (
	"math/big"

	"github.com/shopspring/decimal"

	"farmyield/entities"
)

// BlocksPerYear is 144 blocks a day for 365 days.
const BlocksPerYear = 144 * 365

const basisPoints = 10_000

// RewardPlaces is the number of fractional digits rewards are kept to. One
// unit staked at 1 bps for one block is about 1.9e-9, far above the rounding
// step, so accrual stays strictly increasing.
const RewardPlaces = 18

// accrue returns staked * apy * elapsed / (10000 * blocksPerYear) rounded to
// RewardPlaces.
func accrue(staked, apy, elapsed, blocksPerYear uint64) decimal.Decimal {
	if staked == 0 || apy == 0 || elapsed == 0 || blocksPerYear == 0 {
		return decimal.Zero
	}
	num := dec(staked).Mul(dec(apy)).Mul(dec(elapsed))
	den := dec(basisPoints).Mul(dec(blocksPerYear))
	return num.DivRound(den, RewardPlaces)
}

// accrualWindow is the number of blocks pos has accrued for since its last
// settlement. Accrual stops at the pool's end height.
func accrualWindow(pos *entities.YieldFarmer, pool *entities.Pool, height uint64) uint64 {
	end := height
	if pool.EndHeight != nil && *pool.EndHeight < end {
		end = *pool.EndHeight
	}
	if end <= pos.LastClaimHeight {
		return 0
	}
	return end - pos.LastClaimHeight
}

func pending(pos *entities.YieldFarmer, pool *entities.Pool, height, blocksPerYear uint64) decimal.Decimal {
	return accrue(pos.StakedAmount, pool.APY, accrualWindow(pos, pool, height), blocksPerYear)
}

// settle folds accrued rewards into pos and restarts accrual at height.
func settle(pos *entities.YieldFarmer, pool *entities.Pool, height, blocksPerYear uint64) {
	pos.Rewards = pos.Rewards.Add(pending(pos, pool, height, blocksPerYear))
	pos.LastClaimHeight = height
}

func dec(v uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(v), 0)
}

package serviceImp

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"farmyield/database"
	"farmyield/entities"
	chainRepoImp "farmyield/pkg/chain/repositoryImp"
	"farmyield/pkg/events"
	"farmyield/pkg/ledger/service"
	"farmyield/pkg/payout"
)

const (
	deployer     = "ST1DEPLOYER"
	farmer1      = "ST2FARMER"
	yieldFarmer1 = "ST3YIELD"
	yieldFarmer2 = "ST4YIELD"

	farmerID      = 1
	poolID        = 1
	minStake      = 1_000_000
	apy           = 1000
	totalLand     = 100
	cropType      = "wheat"
	yieldEstimate = 5000

	// 2*minStake at apy for 144 blocks.
	oneDay = "547.945205479452054795"
)

type fixture struct {
	ctx    context.Context
	db     *gorm.DB
	ledger *LedgerSvc
	bus    *events.Bus
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	bus := events.New()
	l := New(db, Config{Owner: deployer, MinStakeFloor: minStake, BlocksPerYear: BlocksPerYear}, nil, bus, nil)
	return &fixture{ctx: context.Background(), db: db, ledger: l, bus: bus}
}

func (f *fixture) mine(t *testing.T, n uint64) uint64 {
	t.Helper()
	h, err := chainRepoImp.New(f.db).Advance(f.ctx, n)
	require.NoError(t, err)
	return h
}

func (f *fixture) height(t *testing.T) uint64 {
	t.Helper()
	h, err := chainRepoImp.New(f.db).Height(f.ctx)
	require.NoError(t, err)
	return h
}

// mustOK takes a ledger call's results directly: f.mustOK(t)(f.ledger.X(...)).
func (f *fixture) mustOK(t *testing.T) func(service.Receipt, error) service.Receipt {
	t.Helper()
	return func(rcpt service.Receipt, err error) service.Receipt {
		t.Helper()
		require.NoError(t, err)
		require.True(t, rcpt.Success)
		require.Empty(t, rcpt.Error)
		return rcpt
	}
}

func requireRejected(t *testing.T, rcpt service.Receipt, err error, kind error) {
	t.Helper()
	require.ErrorIs(t, err, kind)
	assert.False(t, rcpt.Success)
	assert.Equal(t, kind.Error(), rcpt.Error)
}

func TestRegisterFarmer(t *testing.T) {
	f := newFixture(t)

	f.mustOK(t)(f.ledger.RegisterFarmer(f.ctx, deployer, farmerID, totalLand, cropType))

	got, err := f.ledger.GetFarmer(f.ctx, farmerID)
	require.NoError(t, err)
	want := &entities.Farmer{
		FarmerID:  farmerID,
		Address:   deployer,
		Active:    true,
		TotalLand: totalLand,
		CropType:  cropType,
	}
	if diff := cmp.Diff(want, got, cmpopts.IgnoreFields(entities.Farmer{}, "CreatedAt", "UpdatedAt")); diff != "" {
		t.Errorf("farmer mismatch (-want +got):\n%s", diff)
	}
}

func TestOwnerOnlyCalls(t *testing.T) {
	f := newFixture(t)
	f.mustOK(t)(f.ledger.CreatePool(f.ctx, deployer, poolID, farmerID, apy, minStake))

	rcpt, err := f.ledger.RegisterFarmer(f.ctx, farmer1, farmerID, totalLand, cropType)
	requireRejected(t, rcpt, err, service.ErrNotOwner)
	_, err = f.ledger.GetFarmer(f.ctx, farmerID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	f.mustOK(t)(f.ledger.RegisterFarmer(f.ctx, deployer, farmerID, totalLand, cropType))

	rcpt, err = f.ledger.UpdateYieldEstimate(f.ctx, farmer1, farmerID, yieldEstimate)
	requireRejected(t, rcpt, err, service.ErrNotOwner)
	got, err := f.ledger.GetFarmer(f.ctx, farmerID)
	require.NoError(t, err)
	assert.Zero(t, got.YieldEstimate)

	rcpt, err = f.ledger.EmergencyShutdown(f.ctx, yieldFarmer1, poolID)
	requireRejected(t, rcpt, err, service.ErrNotOwner)
	pool, err := f.ledger.GetPool(f.ctx, poolID)
	require.NoError(t, err)
	assert.Nil(t, pool.EndHeight)

	rcpt, err = f.ledger.CreatePool(f.ctx, farmer1, 2, farmerID, apy, minStake)
	requireRejected(t, rcpt, err, service.ErrNotOwner)

	rcpt, err = f.ledger.DeactivateFarmer(f.ctx, farmer1, farmerID)
	requireRejected(t, rcpt, err, service.ErrNotOwner)
}

func TestRegisterFarmerTwiceRejected(t *testing.T) {
	f := newFixture(t)
	f.mustOK(t)(f.ledger.RegisterFarmer(f.ctx, deployer, farmerID, totalLand, cropType))

	rcpt, err := f.ledger.RegisterFarmer(f.ctx, deployer, farmerID, 7, "corn")
	requireRejected(t, rcpt, err, service.ErrAlreadyExists)

	got, err := f.ledger.GetFarmer(f.ctx, farmerID)
	require.NoError(t, err)
	assert.Equal(t, uint64(totalLand), got.TotalLand)
	assert.Equal(t, cropType, got.CropType)
}

func TestUpdateYieldEstimate(t *testing.T) {
	f := newFixture(t)
	f.mustOK(t)(f.ledger.RegisterFarmer(f.ctx, deployer, farmerID, totalLand, cropType))

	f.mustOK(t)(f.ledger.UpdateYieldEstimate(f.ctx, deployer, farmerID, yieldEstimate))

	got, err := f.ledger.GetFarmer(f.ctx, farmerID)
	require.NoError(t, err)
	assert.Equal(t, uint64(yieldEstimate), got.YieldEstimate)

	rcpt, err := f.ledger.UpdateYieldEstimate(f.ctx, deployer, 99, yieldEstimate)
	requireRejected(t, rcpt, err, service.ErrNotFound)
}

func TestDeactivateFarmer(t *testing.T) {
	f := newFixture(t)
	f.mustOK(t)(f.ledger.RegisterFarmer(f.ctx, deployer, farmerID, totalLand, cropType))
	f.mustOK(t)(f.ledger.DeactivateFarmer(f.ctx, deployer, farmerID))
	f.mustOK(t)(f.ledger.DeactivateFarmer(f.ctx, deployer, farmerID))

	got, err := f.ledger.GetFarmer(f.ctx, farmerID)
	require.NoError(t, err)
	assert.False(t, got.Active)
}

func TestCreatePool(t *testing.T) {
	f := newFixture(t)
	f.mine(t, 3)

	f.mustOK(t)(f.ledger.CreatePool(f.ctx, deployer, poolID, farmerID, apy, minStake))

	pool, err := f.ledger.GetPool(f.ctx, poolID)
	require.NoError(t, err)
	assert.Zero(t, pool.TotalStaked)
	assert.Equal(t, uint64(farmerID), pool.FarmerID)
	assert.Equal(t, uint64(apy), pool.APY)
	assert.Equal(t, uint64(minStake), pool.MinStake)
	assert.Equal(t, uint64(3), pool.CreatedHeight)
	assert.Nil(t, pool.EndHeight)
	assert.Equal(t, entities.PoolActive, pool.Status())
}

func TestCreatePoolBelowFloor(t *testing.T) {
	f := newFixture(t)

	rcpt, err := f.ledger.CreatePool(f.ctx, deployer, poolID, farmerID, apy, minStake-1)
	requireRejected(t, rcpt, err, service.ErrInsufficientStake)

	_, err = f.ledger.GetPool(f.ctx, poolID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	rcpt, err = f.ledger.CreatePool(f.ctx, deployer, poolID, farmerID, apy, minStake)
	f.mustOK(t)(rcpt, err)
	rcpt, err = f.ledger.CreatePool(f.ctx, deployer, poolID, farmerID, apy, minStake)
	requireRejected(t, rcpt, err, service.ErrAlreadyExists)
}

func TestStakeTokens(t *testing.T) {
	f := newFixture(t)
	f.mustOK(t)(f.ledger.RegisterFarmer(f.ctx, deployer, farmerID, totalLand, cropType))
	f.mustOK(t)(f.ledger.CreatePool(f.ctx, deployer, poolID, farmerID, apy, minStake))

	f.mustOK(t)(f.ledger.StakeTokens(f.ctx, yieldFarmer1, poolID, 2*minStake))

	pos, err := f.ledger.GetYieldFarmer(f.ctx, yieldFarmer1, poolID)
	require.NoError(t, err)
	assert.Equal(t, uint64(2*minStake), pos.StakedAmount)
	assert.True(t, pos.Rewards.IsZero())

	pool, err := f.ledger.GetPool(f.ctx, poolID)
	require.NoError(t, err)
	assert.Equal(t, uint64(2*minStake), pool.TotalStaked)
}

func TestStakeBelowMinimum(t *testing.T) {
	f := newFixture(t)
	f.mustOK(t)(f.ledger.CreatePool(f.ctx, deployer, poolID, farmerID, apy, minStake))

	rcpt, err := f.ledger.StakeTokens(f.ctx, yieldFarmer1, poolID, minStake-1)
	requireRejected(t, rcpt, err, service.ErrInsufficientStake)

	pool, err := f.ledger.GetPool(f.ctx, poolID)
	require.NoError(t, err)
	assert.Zero(t, pool.TotalStaked)
	_, err = f.ledger.GetYieldFarmer(f.ctx, yieldFarmer1, poolID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestStakeUnknownPool(t *testing.T) {
	f := newFixture(t)
	rcpt, err := f.ledger.StakeTokens(f.ctx, yieldFarmer1, 42, minStake)
	requireRejected(t, rcpt, err, service.ErrNotFound)
}

func TestTotalStakedIsSumOfPositions(t *testing.T) {
	f := newFixture(t)
	f.mustOK(t)(f.ledger.CreatePool(f.ctx, deployer, poolID, farmerID, apy, minStake))

	f.mustOK(t)(f.ledger.StakeTokens(f.ctx, yieldFarmer1, poolID, 2*minStake))
	f.mine(t, 10)
	f.mustOK(t)(f.ledger.StakeTokens(f.ctx, yieldFarmer1, poolID, minStake))
	f.mustOK(t)(f.ledger.StakeTokens(f.ctx, yieldFarmer2, poolID, 5*minStake))
	f.mustOK(t)(f.ledger.UnstakeTokens(f.ctx, yieldFarmer2, poolID, minStake))

	pool, err := f.ledger.GetPool(f.ctx, poolID)
	require.NoError(t, err)

	var sum uint64
	for _, staker := range []string{yieldFarmer1, yieldFarmer2} {
		pos, err := f.ledger.GetYieldFarmer(f.ctx, staker, poolID)
		require.NoError(t, err)
		sum += pos.StakedAmount
	}
	assert.Equal(t, pool.TotalStaked, sum)
	assert.Equal(t, uint64(7*minStake), sum)
}

func TestRepeatedStakeSettlesAccrual(t *testing.T) {
	f := newFixture(t)
	f.mustOK(t)(f.ledger.CreatePool(f.ctx, deployer, poolID, farmerID, apy, minStake))
	f.mustOK(t)(f.ledger.StakeTokens(f.ctx, yieldFarmer1, poolID, 2*minStake))
	f.mine(t, 144)

	f.mustOK(t)(f.ledger.StakeTokens(f.ctx, yieldFarmer1, poolID, 2*minStake))

	pos, err := f.ledger.GetYieldFarmer(f.ctx, yieldFarmer1, poolID)
	require.NoError(t, err)
	assert.Equal(t, uint64(4*minStake), pos.StakedAmount)
	assert.Equal(t, oneDay, pos.Rewards.String())
	assert.Equal(t, uint64(144), pos.LastClaimHeight)

	f.mine(t, 144)
	got, err := f.ledger.CalculateRewards(f.ctx, yieldFarmer1, poolID)
	require.NoError(t, err)
	assert.Equal(t, "1643.835616438356164384", got.String())
}

func TestCalculateRewards(t *testing.T) {
	f := newFixture(t)
	f.mustOK(t)(f.ledger.CreatePool(f.ctx, deployer, poolID, farmerID, apy, minStake))
	f.mustOK(t)(f.ledger.StakeTokens(f.ctx, yieldFarmer1, poolID, 2*minStake))

	got, err := f.ledger.CalculateRewards(f.ctx, yieldFarmer1, poolID)
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	f.mine(t, 144)

	got, err = f.ledger.CalculateRewards(f.ctx, yieldFarmer1, poolID)
	require.NoError(t, err)
	assert.True(t, got.IsPositive())
	assert.Equal(t, oneDay, got.String())

	f.mine(t, 1)
	later, err := f.ledger.CalculateRewards(f.ctx, yieldFarmer1, poolID)
	require.NoError(t, err)
	assert.True(t, later.GreaterThan(got))

	_, err = f.ledger.CalculateRewards(f.ctx, yieldFarmer2, poolID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestClaimRewards(t *testing.T) {
	f := newFixture(t)
	f.mustOK(t)(f.ledger.CreatePool(f.ctx, deployer, poolID, farmerID, apy, minStake))
	f.mustOK(t)(f.ledger.StakeTokens(f.ctx, yieldFarmer1, poolID, 2*minStake))
	f.mine(t, 144)

	rcpt := f.mustOK(t)(f.ledger.ClaimRewards(f.ctx, yieldFarmer1, poolID))
	assert.Equal(t, oneDay, rcpt.Amount.String())

	pos, err := f.ledger.GetYieldFarmer(f.ctx, yieldFarmer1, poolID)
	require.NoError(t, err)
	assert.True(t, pos.Rewards.IsZero())
	assert.Equal(t, f.height(t), pos.LastClaimHeight)

	got, err := f.ledger.CalculateRewards(f.ctx, yieldFarmer1, poolID)
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	paid, err := payout.ListByRecipient(f.ctx, f.db, yieldFarmer1)
	require.NoError(t, err)
	require.Len(t, paid, 1)
	assert.Equal(t, entities.PayoutReward, paid[0].Kind)
	assert.Equal(t, oneDay, paid[0].Amount.String())
}

func TestClaimWithoutPosition(t *testing.T) {
	f := newFixture(t)
	f.mustOK(t)(f.ledger.CreatePool(f.ctx, deployer, poolID, farmerID, apy, minStake))

	rcpt, err := f.ledger.ClaimRewards(f.ctx, yieldFarmer1, poolID)
	requireRejected(t, rcpt, err, service.ErrNotFound)
}

func TestEmergencyShutdown(t *testing.T) {
	f := newFixture(t)
	f.mustOK(t)(f.ledger.CreatePool(f.ctx, deployer, poolID, farmerID, apy, minStake))
	f.mine(t, 20)

	f.mustOK(t)(f.ledger.EmergencyShutdown(f.ctx, deployer, poolID))

	pool, err := f.ledger.GetPool(f.ctx, poolID)
	require.NoError(t, err)
	require.NotNil(t, pool.EndHeight)
	assert.Equal(t, f.height(t), *pool.EndHeight)
	assert.Equal(t, entities.PoolShutdown, pool.Status())

	f.mine(t, 5)
	rcpt, err := f.ledger.EmergencyShutdown(f.ctx, deployer, poolID)
	requireRejected(t, rcpt, err, service.ErrPoolShutdown)

	again, err := f.ledger.GetPool(f.ctx, poolID)
	require.NoError(t, err)
	assert.Equal(t, uint64(20), *again.EndHeight)

	rcpt, err = f.ledger.EmergencyShutdown(f.ctx, deployer, 77)
	requireRejected(t, rcpt, err, service.ErrNotFound)
}

func TestShutdownFreezesPool(t *testing.T) {
	f := newFixture(t)
	f.mustOK(t)(f.ledger.CreatePool(f.ctx, deployer, poolID, farmerID, apy, minStake))
	f.mustOK(t)(f.ledger.StakeTokens(f.ctx, yieldFarmer1, poolID, 2*minStake))
	f.mine(t, 144)
	f.mustOK(t)(f.ledger.EmergencyShutdown(f.ctx, deployer, poolID))
	f.mine(t, 1000)

	rcpt, err := f.ledger.StakeTokens(f.ctx, yieldFarmer2, poolID, 2*minStake)
	requireRejected(t, rcpt, err, service.ErrPoolShutdown)

	got, err := f.ledger.CalculateRewards(f.ctx, yieldFarmer1, poolID)
	require.NoError(t, err)
	assert.Equal(t, oneDay, got.String())

	claim := f.mustOK(t)(f.ledger.ClaimRewards(f.ctx, yieldFarmer1, poolID))
	assert.Equal(t, oneDay, claim.Amount.String())

	f.mine(t, 10)
	got, err = f.ledger.CalculateRewards(f.ctx, yieldFarmer1, poolID)
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	out := f.mustOK(t)(f.ledger.UnstakeTokens(f.ctx, yieldFarmer1, poolID, 2*minStake))
	assert.Equal(t, int64(2*minStake), out.Amount.IntPart())
	pool, err := f.ledger.GetPool(f.ctx, poolID)
	require.NoError(t, err)
	assert.Zero(t, pool.TotalStaked)
}

func TestUnstakeMoreThanStaked(t *testing.T) {
	f := newFixture(t)
	f.mustOK(t)(f.ledger.CreatePool(f.ctx, deployer, poolID, farmerID, apy, minStake))
	f.mustOK(t)(f.ledger.StakeTokens(f.ctx, yieldFarmer1, poolID, 2*minStake))

	rcpt, err := f.ledger.UnstakeTokens(f.ctx, yieldFarmer1, poolID, 2*minStake+1)
	requireRejected(t, rcpt, err, service.ErrInsufficientBalance)
	rcpt, err = f.ledger.UnstakeTokens(f.ctx, yieldFarmer1, poolID, 0)
	requireRejected(t, rcpt, err, service.ErrInsufficientBalance)

	pos, err := f.ledger.GetYieldFarmer(f.ctx, yieldFarmer1, poolID)
	require.NoError(t, err)
	assert.Equal(t, uint64(2*minStake), pos.StakedAmount)
}

type failingTransfer struct{}

func (failingTransfer) Transfer(context.Context, *entities.Payout) error {
	return errors.New("transfer rail down")
}

func TestClaimRollsBackWhenTransferFails(t *testing.T) {
	f := newFixture(t)
	f.ledger = New(f.db, Config{Owner: deployer, MinStakeFloor: minStake}, func(*gorm.DB) payout.Transferer { return failingTransfer{} }, nil, nil)
	f.mustOK(t)(f.ledger.CreatePool(f.ctx, deployer, poolID, farmerID, apy, minStake))
	f.mustOK(t)(f.ledger.StakeTokens(f.ctx, yieldFarmer1, poolID, 2*minStake))
	f.mine(t, 144)

	rcpt, err := f.ledger.ClaimRewards(f.ctx, yieldFarmer1, poolID)
	require.Error(t, err)
	assert.False(t, rcpt.Success)
	assert.Equal(t, service.CodeInternal, rcpt.Error)

	pos, err := f.ledger.GetYieldFarmer(f.ctx, yieldFarmer1, poolID)
	require.NoError(t, err)
	assert.Zero(t, pos.LastClaimHeight)
	got, err := f.ledger.CalculateRewards(f.ctx, yieldFarmer1, poolID)
	require.NoError(t, err)
	assert.Equal(t, oneDay, got.String())
}

func TestReceiptsArePersisted(t *testing.T) {
	f := newFixture(t)
	ok := f.mustOK(t)(f.ledger.CreatePool(f.ctx, deployer, poolID, farmerID, apy, minStake))
	bad, _ := f.ledger.CreatePool(f.ctx, farmer1, 2, farmerID, apy, minStake)

	receipts := chainRepoImp.NewReceipts(f.db)
	row, err := receipts.FindByID(f.ctx, ok.TxID)
	require.NoError(t, err)
	assert.True(t, row.Success)
	assert.Equal(t, service.CallCreatePool, row.Call)

	row, err = receipts.FindByID(f.ctx, bad.TxID)
	require.NoError(t, err)
	assert.False(t, row.Success)
	assert.Equal(t, "err-not-owner", row.Error)
}

func TestEventsPublishedAfterCommit(t *testing.T) {
	f := newFixture(t)
	var seen []events.Event
	for _, topic := range events.AllTopics {
		require.NoError(t, f.bus.Subscribe(topic, func(ev events.Event) { seen = append(seen, ev) }))
	}

	f.mustOK(t)(f.ledger.CreatePool(f.ctx, deployer, poolID, farmerID, apy, minStake))
	_, _ = f.ledger.StakeTokens(f.ctx, yieldFarmer1, poolID, 1)
	f.mustOK(t)(f.ledger.StakeTokens(f.ctx, yieldFarmer1, poolID, 2*minStake))

	require.Len(t, seen, 2)
	assert.Equal(t, events.TopicPoolCreated, seen[0].Topic)
	assert.Equal(t, events.TopicStaked, seen[1].Topic)
	assert.Equal(t, yieldFarmer1, seen[1].Caller)
	assert.Equal(t, int64(2*minStake), seen[1].Amount.IntPart())
}

func TestSnapshot(t *testing.T) {
	f := newFixture(t)
	f.mustOK(t)(f.ledger.RegisterFarmer(f.ctx, deployer, farmerID, totalLand, cropType))
	f.mustOK(t)(f.ledger.CreatePool(f.ctx, deployer, poolID, farmerID, apy, minStake))
	f.mustOK(t)(f.ledger.StakeTokens(f.ctx, yieldFarmer1, poolID, 2*minStake))
	f.mine(t, 144)

	snap, err := f.ledger.Snapshot(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(144), snap.Height)
	assert.Len(t, snap.Farmers, 1)
	assert.Len(t, snap.Pools, 1)
	require.Len(t, snap.Positions, 1)
	assert.Equal(t, oneDay, snap.Positions[0].Pending.String())

	list, err := f.ledger.ListYieldFarmer(f.ctx, yieldFarmer1)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestFloorStakeAtLowestAPYEarnsWithinADay(t *testing.T) {
	f := newFixture(t)
	f.mustOK(t)(f.ledger.CreatePool(f.ctx, deployer, poolID, farmerID, 1, minStake))
	f.mustOK(t)(f.ledger.StakeTokens(f.ctx, yieldFarmer1, poolID, minStake))
	f.mustOK(t)(f.ledger.StakeTokens(f.ctx, yieldFarmer2, poolID, minStake+1))
	f.mine(t, 144)

	low, err := f.ledger.CalculateRewards(f.ctx, yieldFarmer1, poolID)
	require.NoError(t, err)
	assert.True(t, low.IsPositive())
	assert.Equal(t, "0.273972602739726027", low.String())

	high, err := f.ledger.CalculateRewards(f.ctx, yieldFarmer2, poolID)
	require.NoError(t, err)
	assert.True(t, high.GreaterThan(low), "%s not above %s", high, low)

	claim := f.mustOK(t)(f.ledger.ClaimRewards(f.ctx, yieldFarmer1, poolID))
	assert.Equal(t, low.String(), claim.Amount.String())
	pos, err := f.ledger.GetYieldFarmer(f.ctx, yieldFarmer1, poolID)
	require.NoError(t, err)
	assert.True(t, pos.Rewards.IsZero())
}

func TestValuesAboveStoreRangeRejected(t *testing.T) {
	f := newFixture(t)
	const tooBig = uint64(math.MaxInt64) + 1

	rcpt, err := f.ledger.RegisterFarmer(f.ctx, deployer, tooBig, totalLand, cropType)
	requireRejected(t, rcpt, err, service.ErrOverflow)
	rcpt, err = f.ledger.RegisterFarmer(f.ctx, deployer, farmerID, math.MaxUint64, cropType)
	requireRejected(t, rcpt, err, service.ErrOverflow)

	f.mustOK(t)(f.ledger.RegisterFarmer(f.ctx, deployer, farmerID, totalLand, cropType))
	rcpt, err = f.ledger.UpdateYieldEstimate(f.ctx, deployer, farmerID, tooBig)
	requireRejected(t, rcpt, err, service.ErrOverflow)

	rcpt, err = f.ledger.CreatePool(f.ctx, deployer, poolID, farmerID, apy, tooBig)
	requireRejected(t, rcpt, err, service.ErrOverflow)
	rcpt, err = f.ledger.CreatePool(f.ctx, deployer, poolID, farmerID, tooBig, minStake)
	requireRejected(t, rcpt, err, service.ErrOverflow)
	rcpt, err = f.ledger.CreatePool(f.ctx, deployer, tooBig, farmerID, apy, minStake)
	requireRejected(t, rcpt, err, service.ErrOverflow)

	f.mustOK(t)(f.ledger.CreatePool(f.ctx, deployer, poolID, farmerID, apy, minStake))
	rcpt, err = f.ledger.StakeTokens(f.ctx, yieldFarmer1, poolID, tooBig)
	requireRejected(t, rcpt, err, service.ErrOverflow)

	f.mustOK(t)(f.ledger.StakeTokens(f.ctx, yieldFarmer1, poolID, math.MaxInt64-minStake))
	rcpt, err = f.ledger.StakeTokens(f.ctx, yieldFarmer2, poolID, minStake+1)
	requireRejected(t, rcpt, err, service.ErrOverflow)
	f.mustOK(t)(f.ledger.StakeTokens(f.ctx, yieldFarmer2, poolID, minStake))

	pool, err := f.ledger.GetPool(f.ctx, poolID)
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxInt64), pool.TotalStaked)

	f.mine(t, BlocksPerYear)
	got, err := f.ledger.CalculateRewards(f.ctx, yieldFarmer1, poolID)
	require.NoError(t, err)
	assert.True(t, got.IsPositive())
	f.mustOK(t)(f.ledger.ClaimRewards(f.ctx, yieldFarmer1, poolID))

	rcpt, err = f.ledger.StakeTokens(f.ctx, yieldFarmer1, tooBig, minStake)
	requireRejected(t, rcpt, err, service.ErrNotFound)
	_, err = f.ledger.GetFarmer(f.ctx, tooBig)
	assert.ErrorIs(t, err, service.ErrNotFound)
	_, err = f.ledger.GetYieldFarmer(f.ctx, yieldFarmer1, tooBig)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestListPoolPositions(t *testing.T) {
	f := newFixture(t)
	f.mustOK(t)(f.ledger.CreatePool(f.ctx, deployer, poolID, farmerID, apy, minStake))
	f.mustOK(t)(f.ledger.CreatePool(f.ctx, deployer, 2, farmerID, apy, minStake))
	f.mustOK(t)(f.ledger.StakeTokens(f.ctx, yieldFarmer2, poolID, minStake))
	f.mustOK(t)(f.ledger.StakeTokens(f.ctx, yieldFarmer1, poolID, 2*minStake))
	f.mustOK(t)(f.ledger.StakeTokens(f.ctx, yieldFarmer1, 2, minStake))

	got, err := f.ledger.ListPoolPositions(f.ctx, poolID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, yieldFarmer1, got[0].Staker)
	assert.Equal(t, yieldFarmer2, got[1].Staker)

	_, err = f.ledger.ListPoolPositions(f.ctx, 99)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestListReceipts(t *testing.T) {
	f := newFixture(t)
	f.mustOK(t)(f.ledger.CreatePool(f.ctx, deployer, poolID, farmerID, apy, minStake))
	_, _ = f.ledger.StakeTokens(f.ctx, yieldFarmer1, poolID, 1)
	f.mustOK(t)(f.ledger.StakeTokens(f.ctx, yieldFarmer1, poolID, minStake))

	got, err := f.ledger.ListReceipts(f.ctx, yieldFarmer1, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	var failed int
	for _, r := range got {
		assert.Equal(t, service.CallStakeTokens, r.Call)
		if !r.Success {
			failed++
			assert.Equal(t, "err-insufficient-stake", r.Error)
		}
	}
	assert.Equal(t, 1, failed)

	got, err = f.ledger.ListReceipts(f.ctx, yieldFarmer1, 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

package serviceImp

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"farmyield/entities"
	chainRepoImp "farmyield/pkg/chain/repositoryImp"
	"farmyield/pkg/events"
	farmerrepo "farmyield/pkg/farmer/repository"
	farmerRepoImp "farmyield/pkg/farmer/repositoryImp"
	"farmyield/pkg/ledger/service"
	"farmyield/pkg/logging"
	"farmyield/pkg/payout"
	poolrepo "farmyield/pkg/pool/repository"
	poolRepoImp "farmyield/pkg/pool/repositoryImp"
)

type Config struct {
	Owner         string
	MinStakeFloor uint64
	BlocksPerYear uint64
}

type LedgerSvc struct {
	db        *gorm.DB
	cfg       Config
	transfers payout.Factory
	bus       *events.Bus
	log       *zap.Logger
}

// New returns the staking ledger. A nil transfers factory records payouts in
// db; a nil bus drops events.
func New(db *gorm.DB, cfg Config, transfers payout.Factory, bus *events.Bus, log *zap.Logger) *LedgerSvc {
	if cfg.BlocksPerYear == 0 {
		cfg.BlocksPerYear = BlocksPerYear
	}
	if transfers == nil {
		transfers = payout.New
	}
	return &LedgerSvc{db: db, cfg: cfg, transfers: transfers, bus: bus, log: logging.Module(log, "ledger")}
}

var _ service.Ledger = (*LedgerSvc)(nil)

func (s *LedgerSvc) Owner() string { return s.cfg.Owner }

// maxUnits bounds every stored quantity and id. sqlite keeps them as signed
// 64-bit integers.
const maxUnits = math.MaxInt64

// inRange rejects values the store cannot hold.
func inRange(fields map[string]uint64) error {
	for name, v := range fields {
		if v > maxUnits {
			return service.Reject(service.ErrOverflow, "%s %d above %d", name, v, uint64(maxUnits))
		}
	}
	return nil
}

func units(v uint64) decimal.Decimal { return decimal.NewFromInt(int64(v)) }

// stores are the repositories of one ledger call, bound to its transaction.
type stores struct {
	farmers   farmerrepo.FarmerRepository
	pools     poolrepo.PoolRepository
	positions poolrepo.PositionRepository
	transfer  payout.Transferer
	height    uint64
}

// outcome is what a successful call reports beyond its receipt.
type outcome struct {
	event  *events.Event
	amount decimal.Decimal
}

// exec runs fn atomically at the current height and records a receipt
// whatever the result. Events are published only after commit.
func (s *LedgerSvc) exec(ctx context.Context, call, caller string, fn func(st *stores) (outcome, error)) (service.Receipt, error) {
	var out outcome
	var height uint64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		h, err := chainRepoImp.New(tx).Height(ctx)
		if err != nil {
			return fmt.Errorf("read height: %w", err)
		}
		height = h
		st := &stores{
			farmers:   farmerRepoImp.New(tx),
			pools:     poolRepoImp.NewPools(tx),
			positions: poolRepoImp.NewPositions(tx),
			transfer:  s.transfers(tx),
			height:    h,
		}
		out, err = fn(st)
		return err
	})

	rcpt := service.Receipt{
		TxID:    uuid.NewString(),
		Call:    call,
		Caller:  caller,
		Success: err == nil,
		Error:   service.Code(err),
		Height:  height,
	}
	if err == nil {
		rcpt.Amount = out.amount
	}
	s.record(ctx, rcpt)

	if err != nil {
		lvl := zap.InfoLevel
		if rcpt.Error == service.CodeInternal {
			lvl = zap.ErrorLevel
		}
		s.log.Log(lvl, "call rejected",
			zap.String("call", call), zap.String("caller", caller),
			zap.Uint64("height", height), zap.Error(err))
		return rcpt, err
	}

	s.log.Debug("call applied",
		zap.String("call", call), zap.String("caller", caller),
		zap.Uint64("height", height), zap.String("tx_id", rcpt.TxID))
	if out.event != nil {
		out.event.Caller = caller
		out.event.Height = height
		s.bus.Publish(*out.event)
	}
	return rcpt, nil
}

func (s *LedgerSvc) record(ctx context.Context, rcpt service.Receipt) {
	row := &entities.TxReceipt{
		TxID: rcpt.TxID, Call: rcpt.Call, Caller: rcpt.Caller,
		Success: rcpt.Success, Error: rcpt.Error, Height: rcpt.Height, Amount: rcpt.Amount,
	}
	if err := chainRepoImp.NewReceipts(s.db).Create(ctx, row); err != nil {
		s.log.Warn("persist receipt", zap.String("tx_id", rcpt.TxID), zap.Error(err))
	}
}

func (s *LedgerSvc) requireOwner(caller string) error {
	if caller != s.cfg.Owner {
		return service.Reject(service.ErrNotOwner, "caller %s", caller)
	}
	return nil
}

func (s *LedgerSvc) RegisterFarmer(ctx context.Context, caller string, farmerID, totalLand uint64, cropType string) (service.Receipt, error) {
	return s.exec(ctx, service.CallRegisterFarmer, caller, func(st *stores) (outcome, error) {
		if err := s.requireOwner(caller); err != nil {
			return outcome{}, err
		}
		if err := inRange(map[string]uint64{"farmer id": farmerID, "total land": totalLand}); err != nil {
			return outcome{}, err
		}
		if _, err := findFarmer(ctx, st.farmers, farmerID); err == nil {
			return outcome{}, service.Reject(service.ErrAlreadyExists, "farmer %d", farmerID)
		} else if !errors.Is(err, service.ErrNotFound) {
			return outcome{}, err
		}
		f := &entities.Farmer{
			FarmerID:     farmerID,
			Address:      caller,
			Active:       true,
			TotalLand:    totalLand,
			CropType:     cropType,
			RegisteredAt: st.height,
		}
		if err := st.farmers.Create(ctx, f); err != nil {
			return outcome{}, err
		}
		return outcome{event: &events.Event{Topic: events.TopicFarmerRegistered, FarmerID: farmerID}}, nil
	})
}

func (s *LedgerSvc) UpdateYieldEstimate(ctx context.Context, caller string, farmerID, estimate uint64) (service.Receipt, error) {
	return s.exec(ctx, service.CallUpdateYieldEstimate, caller, func(st *stores) (outcome, error) {
		if err := s.requireOwner(caller); err != nil {
			return outcome{}, err
		}
		f, err := findFarmer(ctx, st.farmers, farmerID)
		if err != nil {
			return outcome{}, err
		}
		if err := inRange(map[string]uint64{"estimate": estimate}); err != nil {
			return outcome{}, err
		}
		f.YieldEstimate = estimate
		if err := st.farmers.Update(ctx, f); err != nil {
			return outcome{}, err
		}
		return outcome{event: &events.Event{Topic: events.TopicYieldUpdated, FarmerID: farmerID, Amount: units(estimate)}}, nil
	})
}

// DeactivateFarmer clears the active flag. Farmers are never deleted.
func (s *LedgerSvc) DeactivateFarmer(ctx context.Context, caller string, farmerID uint64) (service.Receipt, error) {
	return s.exec(ctx, service.CallDeactivateFarmer, caller, func(st *stores) (outcome, error) {
		if err := s.requireOwner(caller); err != nil {
			return outcome{}, err
		}
		f, err := findFarmer(ctx, st.farmers, farmerID)
		if err != nil {
			return outcome{}, err
		}
		if !f.Active {
			return outcome{}, nil
		}
		f.Active = false
		if err := st.farmers.Update(ctx, f); err != nil {
			return outcome{}, err
		}
		return outcome{event: &events.Event{Topic: events.TopicFarmerRetired, FarmerID: farmerID}}, nil
	})
}

// CreatePool opens a pool. The farmer does not have to be registered yet.
func (s *LedgerSvc) CreatePool(ctx context.Context, caller string, poolID, farmerID, apy, minStake uint64) (service.Receipt, error) {
	return s.exec(ctx, service.CallCreatePool, caller, func(st *stores) (outcome, error) {
		if err := s.requireOwner(caller); err != nil {
			return outcome{}, err
		}
		if err := inRange(map[string]uint64{"pool id": poolID, "farmer id": farmerID, "apy": apy, "min stake": minStake}); err != nil {
			return outcome{}, err
		}
		if minStake < s.cfg.MinStakeFloor {
			return outcome{}, service.Reject(service.ErrInsufficientStake, "min stake %d below floor %d", minStake, s.cfg.MinStakeFloor)
		}
		if _, err := findPool(ctx, st.pools, poolID); err == nil {
			return outcome{}, service.Reject(service.ErrAlreadyExists, "pool %d", poolID)
		} else if !errors.Is(err, service.ErrNotFound) {
			return outcome{}, err
		}
		p := &entities.Pool{
			PoolID:        poolID,
			FarmerID:      farmerID,
			APY:           apy,
			MinStake:      minStake,
			CreatedHeight: st.height,
		}
		if err := st.pools.Create(ctx, p); err != nil {
			return outcome{}, err
		}
		return outcome{event: &events.Event{Topic: events.TopicPoolCreated, PoolID: poolID, FarmerID: farmerID}}, nil
	})
}

// StakeTokens adds amount to the caller's position. Rewards accrued on the
// previous amount are settled first.
func (s *LedgerSvc) StakeTokens(ctx context.Context, caller string, poolID, amount uint64) (service.Receipt, error) {
	return s.exec(ctx, service.CallStakeTokens, caller, func(st *stores) (outcome, error) {
		p, err := findPool(ctx, st.pools, poolID)
		if err != nil {
			return outcome{}, err
		}
		if p.IsShutdown() {
			return outcome{}, service.Reject(service.ErrPoolShutdown, "pool %d ended at %d", poolID, *p.EndHeight)
		}
		if amount < p.MinStake {
			return outcome{}, service.Reject(service.ErrInsufficientStake, "amount %d below pool minimum %d", amount, p.MinStake)
		}
		if amount > maxUnits || p.TotalStaked > maxUnits-amount {
			return outcome{}, service.Reject(service.ErrOverflow, "stake %d on pool %d total %d", amount, poolID, p.TotalStaked)
		}

		pos, err := findPosition(ctx, st.positions, caller, poolID)
		fresh := errors.Is(err, service.ErrNotFound)
		switch {
		case fresh:
			pos = &entities.YieldFarmer{Staker: caller, PoolID: poolID, LastClaimHeight: st.height}
		case err != nil:
			return outcome{}, err
		default:
			settle(pos, p, st.height, s.cfg.BlocksPerYear)
		}
		pos.StakedAmount += amount
		p.TotalStaked += amount

		if fresh {
			err = st.positions.Create(ctx, pos)
		} else {
			err = st.positions.Update(ctx, pos)
		}
		if err != nil {
			return outcome{}, err
		}
		if err := st.pools.Update(ctx, p); err != nil {
			return outcome{}, err
		}
		return outcome{event: &events.Event{Topic: events.TopicStaked, PoolID: poolID, FarmerID: p.FarmerID, Amount: units(amount)}}, nil
	})
}

// UnstakeTokens returns amount of principal to the caller. Allowed after
// shutdown so stakers can always withdraw.
func (s *LedgerSvc) UnstakeTokens(ctx context.Context, caller string, poolID, amount uint64) (service.Receipt, error) {
	return s.exec(ctx, service.CallUnstakeTokens, caller, func(st *stores) (outcome, error) {
		p, err := findPool(ctx, st.pools, poolID)
		if err != nil {
			return outcome{}, err
		}
		pos, err := findPosition(ctx, st.positions, caller, poolID)
		if err != nil {
			return outcome{}, err
		}
		if amount == 0 || amount > pos.StakedAmount {
			return outcome{}, service.Reject(service.ErrInsufficientBalance, "unstake %d of %d", amount, pos.StakedAmount)
		}

		settle(pos, p, st.height, s.cfg.BlocksPerYear)
		pos.StakedAmount -= amount
		p.TotalStaked -= amount

		if err := st.positions.Update(ctx, pos); err != nil {
			return outcome{}, err
		}
		if err := st.pools.Update(ctx, p); err != nil {
			return outcome{}, err
		}
		if err := st.transfer.Transfer(ctx, &entities.Payout{
			Recipient: caller, PoolID: poolID, Kind: entities.PayoutPrincipal, Amount: units(amount), Height: st.height,
		}); err != nil {
			return outcome{}, fmt.Errorf("transfer principal: %w", err)
		}
		return outcome{
			event:  &events.Event{Topic: events.TopicUnstaked, PoolID: poolID, FarmerID: p.FarmerID, Amount: units(amount)},
			amount: units(amount),
		}, nil
	})
}

// ClaimRewards pays out everything accrued and restarts accrual at the
// current height. On a shut-down pool the payout is frozen at end height.
func (s *LedgerSvc) ClaimRewards(ctx context.Context, caller string, poolID uint64) (service.Receipt, error) {
	return s.exec(ctx, service.CallClaimRewards, caller, func(st *stores) (outcome, error) {
		p, err := findPool(ctx, st.pools, poolID)
		if err != nil {
			return outcome{}, err
		}
		pos, err := findPosition(ctx, st.positions, caller, poolID)
		if err != nil {
			return outcome{}, err
		}

		settle(pos, p, st.height, s.cfg.BlocksPerYear)
		paid := pos.Rewards
		pos.Rewards = decimal.Zero

		if err := st.positions.Update(ctx, pos); err != nil {
			return outcome{}, err
		}
		if err := st.transfer.Transfer(ctx, &entities.Payout{
			Recipient: caller, PoolID: poolID, Kind: entities.PayoutReward, Amount: paid, Height: st.height,
		}); err != nil {
			return outcome{}, fmt.Errorf("transfer rewards: %w", err)
		}
		return outcome{
			event:  &events.Event{Topic: events.TopicClaimed, PoolID: poolID, FarmerID: p.FarmerID, Amount: paid},
			amount: paid,
		}, nil
	})
}

// EmergencyShutdown ends the pool at the current height. It cannot be undone.
func (s *LedgerSvc) EmergencyShutdown(ctx context.Context, caller string, poolID uint64) (service.Receipt, error) {
	return s.exec(ctx, service.CallEmergencyShutdown, caller, func(st *stores) (outcome, error) {
		if err := s.requireOwner(caller); err != nil {
			return outcome{}, err
		}
		p, err := findPool(ctx, st.pools, poolID)
		if err != nil {
			return outcome{}, err
		}
		if p.IsShutdown() {
			return outcome{}, service.Reject(service.ErrPoolShutdown, "pool %d ended at %d", poolID, *p.EndHeight)
		}
		end := st.height
		p.EndHeight = &end
		if err := st.pools.Update(ctx, p); err != nil {
			return outcome{}, err
		}
		return outcome{event: &events.Event{Topic: events.TopicShutdown, PoolID: poolID, FarmerID: p.FarmerID, Amount: units(p.TotalStaked)}}, nil
	})
}

func (s *LedgerSvc) GetFarmer(ctx context.Context, farmerID uint64) (*entities.Farmer, error) {
	return findFarmer(ctx, farmerRepoImp.New(s.db), farmerID)
}

func (s *LedgerSvc) GetPool(ctx context.Context, poolID uint64) (*entities.Pool, error) {
	return findPool(ctx, poolRepoImp.NewPools(s.db), poolID)
}

func (s *LedgerSvc) GetYieldFarmer(ctx context.Context, staker string, poolID uint64) (*entities.YieldFarmer, error) {
	return findPosition(ctx, poolRepoImp.NewPositions(s.db), staker, poolID)
}

func (s *LedgerSvc) ListYieldFarmer(ctx context.Context, staker string) ([]entities.YieldFarmer, error) {
	return poolRepoImp.NewPositions(s.db).ListByStaker(ctx, staker)
}

// ListPoolPositions returns every staker's position in poolID.
func (s *LedgerSvc) ListPoolPositions(ctx context.Context, poolID uint64) ([]entities.YieldFarmer, error) {
	if _, err := findPool(ctx, poolRepoImp.NewPools(s.db), poolID); err != nil {
		return nil, err
	}
	return poolRepoImp.NewPositions(s.db).ListByPool(ctx, poolID)
}

// ListReceipts returns up to limit receipts of caller, newest first.
func (s *LedgerSvc) ListReceipts(ctx context.Context, caller string, limit int) ([]entities.TxReceipt, error) {
	return chainRepoImp.NewReceipts(s.db).ListByCaller(ctx, caller, limit)
}

// CalculateRewards is what ClaimRewards would pay at the current height.
func (s *LedgerSvc) CalculateRewards(ctx context.Context, staker string, poolID uint64) (decimal.Decimal, error) {
	total := decimal.Zero
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		height, err := chainRepoImp.New(tx).Height(ctx)
		if err != nil {
			return err
		}
		p, err := findPool(ctx, poolRepoImp.NewPools(tx), poolID)
		if err != nil {
			return err
		}
		pos, err := findPosition(ctx, poolRepoImp.NewPositions(tx), staker, poolID)
		if err != nil {
			return err
		}
		total = pos.Rewards.Add(pending(pos, p, height, s.cfg.BlocksPerYear))
		return nil
	})
	return total, err
}

func (s *LedgerSvc) Snapshot(ctx context.Context) (*service.Snapshot, error) {
	snap := &service.Snapshot{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if snap.Height, err = chainRepoImp.New(tx).Height(ctx); err != nil {
			return err
		}
		if snap.Farmers, err = farmerRepoImp.New(tx).List(ctx); err != nil {
			return err
		}
		if snap.Pools, err = poolRepoImp.NewPools(tx).List(ctx); err != nil {
			return err
		}
		positions, err := poolRepoImp.NewPositions(tx).List(ctx)
		if err != nil {
			return err
		}
		byID := make(map[uint64]*entities.Pool, len(snap.Pools))
		for i := range snap.Pools {
			byID[snap.Pools[i].PoolID] = &snap.Pools[i]
		}
		for i := range positions {
			pv := service.PositionView{YieldFarmer: positions[i], Pending: positions[i].Rewards}
			if p, ok := byID[positions[i].PoolID]; ok {
				pv.Pending = pv.Pending.Add(pending(&positions[i], p, snap.Height, s.cfg.BlocksPerYear))
			}
			snap.Positions = append(snap.Positions, pv)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// findFarmer and the other finders report ids above maxUnits as missing
// without querying; such ids were never stored.
func findFarmer(ctx context.Context, r farmerrepo.FarmerRepository, id uint64) (*entities.Farmer, error) {
	if id > maxUnits {
		return nil, service.Reject(service.ErrNotFound, "farmer %d", id)
	}
	f, err := r.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, service.Reject(service.ErrNotFound, "farmer %d", id)
	}
	return f, err
}

func findPool(ctx context.Context, r poolrepo.PoolRepository, id uint64) (*entities.Pool, error) {
	if id > maxUnits {
		return nil, service.Reject(service.ErrNotFound, "pool %d", id)
	}
	p, err := r.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, service.Reject(service.ErrNotFound, "pool %d", id)
	}
	return p, err
}

func findPosition(ctx context.Context, r poolrepo.PositionRepository, staker string, poolID uint64) (*entities.YieldFarmer, error) {
	if poolID > maxUnits {
		return nil, service.Reject(service.ErrNotFound, "position %s in pool %d", staker, poolID)
	}
	y, err := r.Find(ctx, staker, poolID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, service.Reject(service.ErrNotFound, "position %s in pool %d", staker, poolID)
	}
	return y, err
}

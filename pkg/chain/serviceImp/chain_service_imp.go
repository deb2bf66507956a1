package serviceImp

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"farmyield/pkg/chain/repository"
	"farmyield/pkg/chain/service"
	"farmyield/pkg/events"
	"farmyield/pkg/logging"
)

var ErrZeroBlocks = errors.New("mine at least one block")

type clockSvc struct {
	r   repository.ChainRepository
	bus *events.Bus
	log *zap.Logger
}

func NewClock(r repository.ChainRepository, bus *events.Bus, log *zap.Logger) service.Clock {
	return &clockSvc{r: r, bus: bus, log: logging.Module(log, "chain")}
}

func (s *clockSvc) Height(ctx context.Context) (uint64, error) { return s.r.Height(ctx) }

func (s *clockSvc) Mine(ctx context.Context, n uint64) (uint64, error) {
	if n == 0 {
		return 0, ErrZeroBlocks
	}
	h, err := s.r.Advance(ctx, n)
	if err != nil {
		return 0, err
	}
	s.log.Debug("mined", zap.Uint64("blocks", n), zap.Uint64("height", h))
	s.bus.Publish(events.Event{Topic: events.TopicBlockMined, Amount: decimal.NewFromInt(int64(n)), Height: h})
	return h, nil
}

// RunAutoMiner mines one block every interval until ctx is done.
func RunAutoMiner(ctx context.Context, clock service.Clock, every time.Duration, log *zap.Logger) {
	log = logging.Module(log, "chain")
	if every <= 0 {
		return
	}
	t := time.NewTicker(every)
	defer t.Stop()
	log.Info("auto-miner started", zap.Duration("interval", every))
	for {
		select {
		case <-ctx.Done():
			log.Info("auto-miner stopped")
			return
		case <-t.C:
			if _, err := clock.Mine(ctx, 1); err != nil && ctx.Err() == nil {
				log.Warn("auto-mine", zap.Error(err))
			}
		}
	}
}

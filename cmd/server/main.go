package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"farmyield/config"
	"farmyield/database"
	"farmyield/pkg/events"
	"farmyield/pkg/logging"
	"farmyield/pkg/metrics"
	"farmyield/pkg/middleware"
	"farmyield/pkg/report"
	"farmyield/router"

	// Auth + Health
	authCtrlImp "farmyield/pkg/auth/controllerImp"
	healthCtrlImp "farmyield/pkg/health/controllerImp"

	// Chain clock
	chainCtrlImp "farmyield/pkg/chain/controllerImp"
	chainRepoImp "farmyield/pkg/chain/repositoryImp"
	chainsvc "farmyield/pkg/chain/service"
	chainSvcImp "farmyield/pkg/chain/serviceImp"

	// Ledger
	ledgerCtrlImp "farmyield/pkg/ledger/controllerImp"
	ledgerSvcImp "farmyield/pkg/ledger/serviceImp"
	"farmyield/pkg/payout"
	reportCtrlImp "farmyield/pkg/report/controllerImp"
)

var (
	cfg    config.AppConfig
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:           "farmyield",
	Short:         "Sustainable yield-farming staking ledger",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.Load(); err != nil {
			return fmt.Errorf("config: %w", err)
		}
		if logger, err = logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile}); err != nil {
			return fmt.Errorf("logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error { return serve(cmd.Context()) },
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  func(cmd *cobra.Command, args []string) error { return serve(cmd.Context()) },
}

var mineCmd = &cobra.Command{
	Use:   "mine",
	Short: "Advance the block height of the local database",
	RunE: func(cmd *cobra.Command, args []string) error {
		blocks, _ := cmd.Flags().GetUint64("blocks")
		db, err := database.OpenSQLite(cfg.DBPath)
		if err != nil {
			return err
		}
		clock := chainSvcImp.NewClock(chainRepoImp.New(db), nil, logger)
		h, err := clock.Mine(cmd.Context(), blocks)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "height %d\n", h)
		return nil
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Write the ledger as an xlsx workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")
		db, err := database.OpenSQLite(cfg.DBPath)
		if err != nil {
			return err
		}
		snap, err := newLedger(db, nil).Snapshot(cmd.Context())
		if err != nil {
			return err
		}
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		if err := report.WriteLedger(f, snap); err != nil {
			f.Close()
			return err
		}
		logger.Info("report written", zap.String("path", out), zap.Uint64("height", snap.Height))
		return f.Close()
	},
}

func init() {
	mineCmd.Flags().Uint64("blocks", 1, "number of empty blocks to mine")
	reportCmd.Flags().String("out", "ledger.xlsx", "output path")
	rootCmd.AddCommand(serveCmd, mineCmd, reportCmd)
}

func newLedger(db *gorm.DB, bus *events.Bus) *ledgerSvcImp.LedgerSvc {
	return ledgerSvcImp.New(db, ledgerSvcImp.Config{
		Owner:         cfg.OwnerAddress,
		MinStakeFloor: cfg.MinStakeFloor,
		BlocksPerYear: cfg.BlocksPerYear,
	}, payout.New, bus, logger)
}

func serve(ctx context.Context) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger.Info("config",
		zap.String("port", cfg.Port), zap.String("db", cfg.DBPath),
		zap.String("owner", cfg.OwnerAddress), zap.Uint64("min_stake_floor", cfg.MinStakeFloor),
		zap.Uint64("blocks_per_year", cfg.BlocksPerYear), zap.Duration("block_interval", cfg.BlockInterval))

	// 1) DB (sqlite) + automigrate
	db, err := database.OpenSQLite(cfg.DBPath)
	if err != nil {
		return err
	}

	// 2) Events + metrics
	bus := events.New()
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGoCollector(), prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	mc := metrics.New(reg)
	if err := mc.Attach(bus); err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	// 3) Services
	clock := chainSvcImp.NewClock(chainRepoImp.New(db), bus, logger)
	if h, err := clock.Height(ctx); err == nil {
		mc.SetHeight(h)
	}
	ledger := newLedger(db, bus)

	// 4) Echo
	e := echo.New()
	e.HideBanner = true
	e.Use(echoMiddleware.Recover())
	e.Use(middleware.RequestLogger(logging.Module(logger, "api")))
	e.Use(mc.Middleware())

	devDefault := ""
	if cfg.EnableDevLogin {
		devDefault = cfg.OwnerAddress
	}
	router.New(
		e,
		middleware.Caller(devDefault),
		ledgerCtrlImp.New(ledger),
		chainCtrlImp.New(clock, cfg.OwnerAddress),
		authCtrlImp.NewAuthController(cfg.OwnerAddress, cfg.EnableDevLogin),
		reportCtrlImp.New(ledger),
		healthCtrlImp.NewHealthCtrl(db, clock),
		promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	)

	// 5) Auto-miner + start
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	minerDone := make(chan struct{})
	go func() {
		defer close(minerDone)
		runMiner(ctx, clock)
	}()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", ":"+cfg.Port))
		errCh <- e.Start(":" + cfg.Port)
	}()

	select {
	case err = <-errCh:
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err = e.Shutdown(shutdownCtx)
	}
	stop()
	<-minerDone
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func runMiner(ctx context.Context, clock chainsvc.Clock) {
	chainSvcImp.RunAutoMiner(ctx, clock, cfg.BlockInterval, logger)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		if logger != nil {
			logger.Error("exit", zap.Error(err))
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	ledgerctrl "farmyield/pkg/ledger/controller"
	"farmyield/pkg/middleware"
)

func New(
	e *echo.Echo,
	callerMW echo.MiddlewareFunc,
	ledgerCtrl ledgerctrl.LedgerController,
	chainCtrl interface{ Height(echo.Context) error; Mine(echo.Context) error },
	authCtrl interface{ DevLogin(echo.Context) error; WhoAmI(echo.Context) error },
	reportCtrl interface{ Ledger(echo.Context) error },
	healthCtrl interface{ Health(echo.Context) error },
	metrics http.Handler,
) *echo.Echo {
	e.GET("/health", healthCtrl.Health)
	if metrics != nil {
		e.GET("/metrics", echo.WrapHandler(metrics))
	}

	api := e.Group("", callerMW)
	tx := middleware.RequireCaller()

	api.GET("/whoami", authCtrl.WhoAmI)
	api.GET("/devlogin", authCtrl.DevLogin)

	api.POST("/farmers", ledgerCtrl.RegisterFarmer, tx)
	api.GET("/farmers/:id", ledgerCtrl.GetFarmer)
	api.PATCH("/farmers/:id/yield", ledgerCtrl.UpdateYieldEstimate, tx)
	api.POST("/farmers/:id/deactivate", ledgerCtrl.DeactivateFarmer, tx)

	api.POST("/pools", ledgerCtrl.CreatePool, tx)
	api.GET("/pools/:id", ledgerCtrl.GetPool)
	api.POST("/pools/:id/stake", ledgerCtrl.StakeTokens, tx)
	api.POST("/pools/:id/unstake", ledgerCtrl.UnstakeTokens, tx)
	api.POST("/pools/:id/claim", ledgerCtrl.ClaimRewards, tx)
	api.POST("/pools/:id/shutdown", ledgerCtrl.EmergencyShutdown, tx)
	api.GET("/pools/:id/rewards/:address", ledgerCtrl.CalculateRewards)
	api.GET("/pools/:id/positions", ledgerCtrl.ListPoolPositions)

	api.GET("/yield-farmers/:address", ledgerCtrl.GetYieldFarmer)
	api.GET("/receipts", ledgerCtrl.ListReceipts)

	api.GET("/chain/height", chainCtrl.Height)
	api.POST("/chain/mine", chainCtrl.Mine, tx)

	api.GET("/reports/ledger.xlsx", reportCtrl.Ledger)
	return e
}

package controller

import "github.com/labstack/echo/v4"

type LedgerController interface {
	RegisterFarmer(c echo.Context) error
	UpdateYieldEstimate(c echo.Context) error
	DeactivateFarmer(c echo.Context) error
	GetFarmer(c echo.Context) error

	CreatePool(c echo.Context) error
	GetPool(c echo.Context) error
	StakeTokens(c echo.Context) error
	UnstakeTokens(c echo.Context) error
	ClaimRewards(c echo.Context) error
	EmergencyShutdown(c echo.Context) error
	CalculateRewards(c echo.Context) error
	ListPoolPositions(c echo.Context) error

	GetYieldFarmer(c echo.Context) error
	ListReceipts(c echo.Context) error
}

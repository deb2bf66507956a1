package controllerImp

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"farmyield/pkg/ledger/controller"
	"farmyield/pkg/ledger/service"
	"farmyield/pkg/middleware"
)

type LedgerCtrl struct{ s service.Ledger }

func New(s service.Ledger) controller.LedgerController { return &LedgerCtrl{s: s} }

type registerReq struct {
	FarmerID  uint64 `json:"farmerId"`
	TotalLand uint64 `json:"totalLand"`
	CropType  string `json:"cropType"`
}

type yieldReq struct {
	Estimate uint64 `json:"estimate"`
}

type poolReq struct {
	PoolID   uint64 `json:"poolId"`
	FarmerID uint64 `json:"farmerId"`
	APY      uint64 `json:"apy"`
	MinStake uint64 `json:"minStake"`
}

type amountReq struct {
	Amount uint64 `json:"amount"`
}

func (h *LedgerCtrl) RegisterFarmer(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid json")
	}
	rcpt, err := h.s.RegisterFarmer(c.Request().Context(), middleware.CallerFrom(c), req.FarmerID, req.TotalLand, req.CropType)
	return reply(c, http.StatusCreated, rcpt, err)
}

func (h *LedgerCtrl) UpdateYieldEstimate(c echo.Context) error {
	id, err := parseUint(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid farmer id")
	}
	var req yieldReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid json")
	}
	rcpt, err := h.s.UpdateYieldEstimate(c.Request().Context(), middleware.CallerFrom(c), id, req.Estimate)
	return reply(c, http.StatusOK, rcpt, err)
}

func (h *LedgerCtrl) DeactivateFarmer(c echo.Context) error {
	id, err := parseUint(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid farmer id")
	}
	rcpt, err := h.s.DeactivateFarmer(c.Request().Context(), middleware.CallerFrom(c), id)
	return reply(c, http.StatusOK, rcpt, err)
}

func (h *LedgerCtrl) GetFarmer(c echo.Context) error {
	id, err := parseUint(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid farmer id")
	}
	f, err := h.s.GetFarmer(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, f)
}

func (h *LedgerCtrl) CreatePool(c echo.Context) error {
	var req poolReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid json")
	}
	rcpt, err := h.s.CreatePool(c.Request().Context(), middleware.CallerFrom(c), req.PoolID, req.FarmerID, req.APY, req.MinStake)
	return reply(c, http.StatusCreated, rcpt, err)
}

func (h *LedgerCtrl) GetPool(c echo.Context) error {
	id, err := parseUint(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid pool id")
	}
	p, err := h.s.GetPool(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"poolId":        p.PoolID,
		"farmerId":      p.FarmerID,
		"apy":           p.APY,
		"minStake":      p.MinStake,
		"totalStaked":   p.TotalStaked,
		"endHeight":     p.EndHeight,
		"createdHeight": p.CreatedHeight,
		"status":        p.Status(),
	})
}

func (h *LedgerCtrl) StakeTokens(c echo.Context) error {
	return h.withAmount(c, h.s.StakeTokens)
}

func (h *LedgerCtrl) UnstakeTokens(c echo.Context) error {
	return h.withAmount(c, h.s.UnstakeTokens)
}

func (h *LedgerCtrl) withAmount(c echo.Context, call func(ctx context.Context, caller string, poolID, amount uint64) (service.Receipt, error)) error {
	id, err := parseUint(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid pool id")
	}
	var req amountReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid json")
	}
	rcpt, err := call(c.Request().Context(), middleware.CallerFrom(c), id, req.Amount)
	return reply(c, http.StatusOK, rcpt, err)
}

func (h *LedgerCtrl) ClaimRewards(c echo.Context) error {
	id, err := parseUint(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid pool id")
	}
	rcpt, err := h.s.ClaimRewards(c.Request().Context(), middleware.CallerFrom(c), id)
	return reply(c, http.StatusOK, rcpt, err)
}

func (h *LedgerCtrl) EmergencyShutdown(c echo.Context) error {
	id, err := parseUint(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid pool id")
	}
	rcpt, err := h.s.EmergencyShutdown(c.Request().Context(), middleware.CallerFrom(c), id)
	return reply(c, http.StatusOK, rcpt, err)
}

func (h *LedgerCtrl) CalculateRewards(c echo.Context) error {
	id, err := parseUint(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid pool id")
	}
	addr := c.Param("address")
	v, err := h.s.CalculateRewards(c.Request().Context(), addr, id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"staker": addr, "poolId": id, "rewards": v})
}

// GetYieldFarmer returns one position with ?pool_id=, otherwise all of the
// staker's positions.
func (h *LedgerCtrl) GetYieldFarmer(c echo.Context) error {
	addr := c.Param("address")
	ctx := c.Request().Context()
	if q := c.QueryParam("pool_id"); q != "" {
		id, err := parseUint(q)
		if err != nil {
			return badRequest(c, "invalid pool_id")
		}
		y, err := h.s.GetYieldFarmer(ctx, addr, id)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusOK, y)
	}
	list, err := h.s.ListYieldFarmer(ctx, addr)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *LedgerCtrl) ListPoolPositions(c echo.Context) error {
	id, err := parseUint(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid pool id")
	}
	list, err := h.s.ListPoolPositions(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// ListReceipts returns receipts of ?caller=, defaulting to the calling
// address. ?limit= caps the count (default 50).
func (h *LedgerCtrl) ListReceipts(c echo.Context) error {
	caller := c.QueryParam("caller")
	if caller == "" {
		caller = middleware.CallerFrom(c)
	}
	if caller == "" {
		return badRequest(c, "caller required")
	}
	limit := 0
	if q := c.QueryParam("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 0 {
			return badRequest(c, "invalid limit")
		}
		limit = n
	}
	list, err := h.s.ListReceipts(c.Request().Context(), caller, limit)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func reply(c echo.Context, okStatus int, rcpt service.Receipt, err error) error {
	if err != nil {
		return c.JSON(StatusFor(err), rcpt)
	}
	return c.JSON(okStatus, rcpt)
}

func fail(c echo.Context, err error) error {
	return c.JSON(StatusFor(err), echo.Map{"success": false, "error": service.Code(err)})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": msg})
}

// StatusFor maps a ledger error kind to an HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrNotOwner):
		return http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrAlreadyExists), errors.Is(err, service.ErrPoolShutdown):
		return http.StatusConflict
	case errors.Is(err, service.ErrInsufficientStake), errors.Is(err, service.ErrInsufficientBalance), errors.Is(err, service.ErrOverflow):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func parseUint(s string) (uint64, error) {
	return strconv.ParseUint(s, 10, 64)
}

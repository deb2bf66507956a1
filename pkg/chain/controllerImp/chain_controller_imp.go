package controllerImp

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"farmyield/pkg/chain/repository"
	"farmyield/pkg/chain/service"
	"farmyield/pkg/chain/serviceImp"
	"farmyield/pkg/middleware"
)

type ChainCtrl struct {
	clock service.Clock
	owner string
}

func New(clock service.Clock, owner string) *ChainCtrl { return &ChainCtrl{clock: clock, owner: owner} }

func (h *ChainCtrl) Height(c echo.Context) error {
	height, err := h.clock.Height(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"height": height})
}

// Mine advances the clock. Only the owner may mine.
func (h *ChainCtrl) Mine(c echo.Context) error {
	if middleware.CallerFrom(c) != h.owner {
		return c.JSON(http.StatusForbidden, echo.Map{"success": false, "error": "err-not-owner"})
	}
	body := struct {
		Blocks uint64 `json:"blocks"`
	}{Blocks: 1}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "invalid json"})
	}
	height, err := h.clock.Mine(c.Request().Context(), body.Blocks)
	if errors.Is(err, serviceImp.ErrZeroBlocks) || errors.Is(err, repository.ErrHeightOverflow) {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": err.Error()})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "height": height})
}

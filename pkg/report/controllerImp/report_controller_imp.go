package controllerImp

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"farmyield/pkg/ledger/service"
	"farmyield/pkg/report"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportCtrl struct{ s service.Ledger }

func New(s service.Ledger) *ReportCtrl { return &ReportCtrl{s: s} }

func (h *ReportCtrl) Ledger(c echo.Context) error {
	snap, err := h.s.Snapshot(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	var buf bytes.Buffer
	if err := report.WriteLedger(&buf, snap); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="ledger-%d.xlsx"`, snap.Height))
	return c.Blob(http.StatusOK, xlsxMIME, buf.Bytes())
}

package controllerImp

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"farmyield/pkg/auth/controller"
	"farmyield/pkg/middleware"
)

type authCtrl struct {
	owner   string
	devMode bool
}

// NewAuthController serves caller identity. DevLogin only works in dev mode.
func NewAuthController(owner string, devMode bool) controller.AuthController {
	return &authCtrl{owner: owner, devMode: devMode}
}

func (h *authCtrl) DevLogin(c echo.Context) error {
	if !h.devMode {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "dev login disabled"})
	}
	addr := c.QueryParam("address")
	if addr == "" {
		addr = h.owner
	}
	c.SetCookie(&http.Cookie{Name: middleware.CallerCookie, Value: addr, Path: "/"})
	return c.JSON(http.StatusOK, echo.Map{"caller": addr})
}

func (h *authCtrl) WhoAmI(c echo.Context) error {
	addr := middleware.CallerFrom(c)
	return c.JSON(http.StatusOK, echo.Map{"caller": addr, "isOwner": addr != "" && addr == h.owner})
}

package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

const (
	CallerKey    = "caller"
	CallerHeader = "X-Caller-Address"
	CallerCookie = "CALLER"
)

// Caller resolves the calling address from the X-Caller-Address header or the
// CALLER cookie. When devDefault is set, a request without either gets
// ?caller= (or devDefault) and a cookie so a browser session keeps it.
func Caller(devDefault string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			addr := c.Request().Header.Get(CallerHeader)
			if addr == "" {
				if ck, err := c.Cookie(CallerCookie); err == nil {
					addr = ck.Value
				}
			}
			if addr == "" && devDefault != "" {
				addr = c.QueryParam("caller")
				if addr == "" {
					addr = devDefault
				}
				c.SetCookie(&http.Cookie{Name: CallerCookie, Value: addr, Path: "/"})
			}
			c.Set(CallerKey, addr)
			return next(c)
		}
	}
}

// RequireCaller rejects requests that carry no caller identity.
func RequireCaller() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if CallerFrom(c) == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "error": "err-no-caller"})
			}
			return next(c)
		}
	}
}

func CallerFrom(c echo.Context) string {
	s, _ := c.Get(CallerKey).(string)
	return s
}

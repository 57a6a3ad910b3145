package echo

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// HeaderUserID carries the tenant id set by the upstream auth gateway.
const HeaderUserID = "X-User-ID"

const userIDKey = "user_id"

// RequireUser rejects requests without a tenant id and stores it on the context.
func RequireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID := strings.TrimSpace(c.Request().Header.Get(HeaderUserID))
		if userID == "" {
			return errorJSON(c, http.StatusUnauthorized, "unauthorized", HeaderUserID+" header is required")
		}
		c.Set(userIDKey, userID)
		return next(c)
	}
}

func userID(c echo.Context) string {
	id, _ := c.Get(userIDKey).(string)
	return id
}

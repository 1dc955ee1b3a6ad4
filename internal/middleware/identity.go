package middleware

import (
	"fmt"
	"strconv"

	"github.com/labstack/echo/v4"
)

// userID returns the authenticated user's ID for rate-limit and cache
// key building, or "guest" on anonymous requests.  JWTAuth stores the
// token's sub claim under "user_id"; numeric JSON claims come back as
// float64.
func userID(c echo.Context) string {
	switch v := c.Get("user_id").(type) {
	case nil:
		return "guest"
	case string:
		if v == "" {
			return "guest"
		}
		return v
	case float64:
		return strconv.FormatUint(uint64(v), 10)
	default:
		return fmt.Sprint(v)
	}
}

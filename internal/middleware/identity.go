package middleware

// identity.go holds helpers shared by the middleware in this package.
// Rate limiting keys on the authenticated user when one is present,
// falling back to "anon" for guests.

import (
	"fmt"

	"github.com/labstack/echo/v4"
)

// currentUserID returns a string form of the authenticated user's id
// from the context, or "anon" when the request carries no valid
// token. JWTAuth stores the raw "sub" claim, which decodes as a
// float64 for numeric ids.
func currentUserID(c echo.Context) string {
	switch v := c.Get("user_id").(type) {
	case nil:
		return "anon"
	case string:
		if v != "" {
			return v
		}
		return "anon"
	case float64:
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprint(v)
	}
}

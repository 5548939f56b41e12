package middleware

import (
	"net/http"
	"strings"

	echo "github.com/labstack/echo/v4"

	"github.com/swiftbulk/campaign-gateway/internal/repository"
)

// OperatorIDFromCtx extracts the authenticated operator_id set by APIKeyMiddleware.
func OperatorIDFromCtx(c echo.Context) (int64, bool) {
	v := c.Get("operator_id")
	id, ok := v.(int64)
	return id, ok
}

// APIKeyMiddleware authenticates requests using the X-API-Key header.
// The core never inspects auth state; this gate is the front end's
// capability check, nothing more.
func APIKeyMiddleware(operators repository.OperatorsRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := strings.TrimSpace(c.Request().Header.Get("X-API-Key"))
			if key == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing api key"})
			}
			op, err := operators.GetByAPIKey(c.Request().Context(), key)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, map[string]string{"error": "auth error"})
			}
			if op == nil || op.Status != "active" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid api key"})
			}
			c.Set("operator_id", op.ID)
			if op.RateLimitRPS != nil {
				c.Set("operator_rps", *op.RateLimitRPS)
			}
			return next(c)
		}
	}
}

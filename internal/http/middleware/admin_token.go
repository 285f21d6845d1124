package middleware

import (
	"net/http"
	"strings"

	echo "github.com/labstack/echo/v4"
)

const ctxAdminToken = "admin_token"

// AdminTokenFromCtx extracts the bearer token stored by AdminTokenMiddleware.
func AdminTokenFromCtx(c echo.Context) (string, bool) {
	tok, ok := c.Get(ctxAdminToken).(string)
	return tok, ok && tok != ""
}

// AdminTokenMiddleware requires "Authorization: Bearer <access token>".
// Requests without one get 401 with the login path to redirect to; the
// token itself is checked by the admin gate in the handlers.
func AdminTokenMiddleware(loginPath string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := strings.TrimSpace(c.Request().Header.Get(echo.HeaderAuthorization))
			scheme, tok, found := strings.Cut(h, " ")
			tok = strings.TrimSpace(tok)
			if !found || !strings.EqualFold(scheme, "Bearer") || tok == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"error":    "unauthorized",
					"redirect": loginPath,
				})
			}
			c.Set(ctxAdminToken, tok)
			return next(c)
		}
	}
}

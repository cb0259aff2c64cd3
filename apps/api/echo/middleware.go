package echoapi

import (
	"github.com/labstack/echo/v4"

	"github.com/trezcool/taqyeem/core"
)

// sessionMiddleware turns the verified token claims into the request's core.Session.
func sessionMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		claims, err := getContextClaims(ctx)
		if err != nil {
			return err
		}
		sess := core.NewSession(claims.Subject, claims.Email)
		if sess.IsZero() {
			return errUnauthorized
		}
		ctx.Set(sessionContextKey, sess)
		return next(ctx)
	}
}

package echoapi

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/taqyeem/core"
)

const (
	tokenContextKey   = "userToken"
	sessionContextKey = "session"
	tokenAudience     = "Taqyeem"
)

// appJWTConfig is the JWT auth middleware config; lookup tells where the token is read from.
func appJWTConfig(conf *core.Config, lookup string) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    []byte(conf.SecretKey),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    tokenContextKey,
		Claims:        new(Claims),
		TokenLookup:   lookup,
	}
}

// Claims represents the authorization claims transmitted via a JWT.
// The subject is the account every record belongs to.
type Claims struct {
	jwt.StandardClaims
	Email string `json:"email,omitempty"`
}

func NewClaims(conf *core.Config, sess core.Session) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   sess.AccountID,
			Audience:  tokenAudience,
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		Email: sess.Email,
	}
}

// GenerateToken generates a signed JWT token string representing the Claims.
func GenerateToken(conf *core.Config, claims *Claims) (string, error) {
	jwtConf := appJWTConfig(conf, "")
	token := jwt.NewWithClaims(jwt.GetSigningMethod(jwtConf.SigningMethod), claims)

	ss, err := token.SignedString(jwtConf.SigningKey)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(tokenContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

// getSession returns the session of the request; it is zero when nobody signed in.
func getSession(ctx echo.Context) core.Session {
	if sess, ok := ctx.Get(sessionContextKey).(core.Session); ok {
		return sess
	}
	return core.Session{}
}

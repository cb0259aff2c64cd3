// Package echoapi exposes the record services over a JWT-protected JSON API.
package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/taqyeem/core"
	"github.com/trezcool/taqyeem/core/evaluation"
	"github.com/trezcool/taqyeem/core/person"
	"github.com/trezcool/taqyeem/core/visit"
)

type (
	ServerDeps struct {
		Conf          *core.Config
		Logger        core.Logger
		PersonSvc     *person.Service
		EvaluationSvc *evaluation.Service
		VisitSvc      *visit.Service
		Validate      *validator.Validate
		Translator    ut.Translator
	}

	Server struct {
		deps     ServerDeps
		app      *echo.Echo
		jwt      echo.MiddlewareFunc
		shutdown chan os.Signal
		errors   chan error
	}
)

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		deps:     deps,
		app:      echo.New(),
		shutdown: make(chan os.Signal, 1),
		errors:   make(chan error, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.TestMode {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{conf.FrontendBaseURL},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.SignalShutdown)
	s.app.Debug = conf.Debug && !conf.TestMode

	s.app.GET("/", home)
	if conf.Storage.Backend != "oss" && conf.Storage.LocalDir != "" {
		s.app.Static("/media", conf.Storage.LocalDir)
	}

	s.jwt = middleware.JWTWithConfig(appJWTConfig(conf, "header:"+echo.HeaderAuthorization))
	v1 := s.app.Group("/v1", s.jwt, sessionMiddleware)

	registerPersonAPI(v1, s.deps.PersonSvc, s.deps.Validate)
	registerRubricAPI(v1)
	registerEvaluationAPI(v1, s.deps.EvaluationSvc, s.deps.PersonSvc)

	// browsers cannot set headers on websocket upgrades: the stream takes its token from the query
	streamJWT := middleware.JWTWithConfig(appJWTConfig(conf, "query:token"))
	registerVisitAPI(v1, s.app.Group("/v1/visits/stream", streamJWT, sessionMiddleware), s.deps.VisitSvc, s.deps.Logger)
}

// Start blocks serving requests; a failure to serve is sent to Errors.
func (s *Server) Start() {
	if err := s.app.Start(s.deps.Conf.Server.Host); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error { return s.errors }

func (s *Server) ShutdownSignal() <-chan os.Signal { return s.shutdown }

// SignalShutdown asks the owner of the server to shut it down.
func (s *Server) SignalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Taqyeem API!")
}

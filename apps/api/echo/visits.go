package echoapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/trezcool/taqyeem/core"
	"github.com/trezcool/taqyeem/core/visit"
)

const streamWriteWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// the token travels in the query string and is checked before upgrading
	CheckOrigin: func(r *http.Request) bool { return true },
}

type visitApi struct {
	service *visit.Service
	logger  core.Logger
}

// registerVisitAPI mounts the visit endpoints on g; the live listing goes on stream.
func registerVisitAPI(g, stream *echo.Group, svc *visit.Service, logger core.Logger) {
	api := visitApi{service: svc, logger: logger}

	vg := g.Group("/visits")
	vg.POST("", api.visitCreate)
	vg.GET("", api.visitQuery)
	vg.GET("/:id", api.visitRetrieve)
	vg.GET("/:id/fields", api.visitFields)
	vg.DELETE("/:id", api.visitDestroy)

	stream.GET("", api.visitStream)
}

// Handlers

func (api *visitApi) visitCreate(ctx echo.Context) error {
	data := new(visit.NewVisit)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	v, err := api.service.Create(ctx.Request().Context(), getSession(ctx), *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, v)
}

func (api *visitApi) visitQuery(ctx echo.Context) error {
	filter := new(visit.Filter)
	if err := ctx.Bind(filter); err != nil {
		return err
	}
	visits, err := api.service.Query(ctx.Request().Context(), getSession(ctx), *filter)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, visits)
}

func (api *visitApi) visitRetrieve(ctx echo.Context) error {
	v, err := api.service.Get(ctx.Request().Context(), getSession(ctx), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, v)
}

func (api *visitApi) visitFields(ctx echo.Context) error {
	v, err := api.service.Get(ctx.Request().Context(), getSession(ctx), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, v.Fields())
}

func (api *visitApi) visitDestroy(ctx echo.Context) error {
	if err := api.service.Delete(ctx.Request().Context(), getSession(ctx), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// visitStream pushes the visit listing over a websocket: a first snapshot, then a new one after every change.
// The stream ends when the client goes away.
func (api *visitApi) visitStream(ctx echo.Context) error {
	filter := new(visit.Filter)
	if err := ctx.Bind(filter); err != nil {
		return err
	}
	sess := getSession(ctx)

	wctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	snapshots, err := api.service.Watch(wctx, sess, *filter)
	if err != nil {
		return err
	}

	conn, err := upgrader.Upgrade(ctx.Response(), ctx.Request(), nil)
	if err != nil {
		return nil // the upgrader already replied
	}
	defer conn.Close()

	// the client only talks to close: stop watching once reading fails
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					api.logger.Warn(fmt.Sprintf("visit stream closed: %v", err), err, sess)
				}
				return
			}
		}
	}()

	for visits := range snapshots {
		_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
		if err := conn.WriteJSON(visits); err != nil {
			api.logger.Warn(fmt.Sprintf("writing visit snapshot: %v", err), err, sess)
			return nil
		}
	}
	return nil
}

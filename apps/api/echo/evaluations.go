package echoapi

import (
	"net/http"
	"net/mail"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/taqyeem/core"
	"github.com/trezcool/taqyeem/core/evaluation"
	"github.com/trezcool/taqyeem/core/person"
)

type (
	feedbackRequest struct {
		To []string `json:"to"`
	}

	mailtoResponse struct {
		evaluation.FeedbackDraft
		URL string `json:"url"`
	}
)

type evaluationApi struct {
	service *evaluation.Service
	persons *person.Service
}

func registerEvaluationAPI(g *echo.Group, svc *evaluation.Service, persons *person.Service) {
	api := evaluationApi{service: svc, persons: persons}

	eg := g.Group("/evaluations")
	eg.POST("", api.evaluationCreate)
	eg.GET("", api.evaluationQuery)

	// detail endpoints
	dg := eg.Group("/:person/:id")
	dg.GET("", api.evaluationRetrieve)
	dg.DELETE("", api.evaluationDestroy)
	dg.GET("/mailto", api.evaluationMailto)
	dg.POST("/send", api.evaluationSend)
}

// Handlers

func (api *evaluationApi) evaluationCreate(ctx echo.Context) error {
	data := new(evaluation.NewEvaluation)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	ev, err := api.service.Save(ctx.Request().Context(), getSession(ctx), *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, ev)
}

func (api *evaluationApi) evaluationQuery(ctx echo.Context) error {
	filter := new(evaluation.Filter)
	if err := ctx.Bind(filter); err != nil {
		return err
	}
	evals, err := api.service.Query(ctx.Request().Context(), getSession(ctx), *filter)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, evals)
}

func (api *evaluationApi) evaluationRetrieve(ctx echo.Context) error {
	ev, err := api.service.Get(ctx.Request().Context(), getSession(ctx), ctx.Param("person"), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, ev)
}

func (api *evaluationApi) evaluationDestroy(ctx echo.Context) error {
	if err := api.service.Delete(ctx.Request().Context(), getSession(ctx), ctx.Param("person"), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// evaluationMailto returns the feedback draft with a mailto link, for sending from the user's own mail client.
// Without `to` query params the link is addressed to the teacher's email on record, if any.
func (api *evaluationApi) evaluationMailto(ctx echo.Context) error {
	rctx, sess := ctx.Request().Context(), getSession(ctx)
	ev, err := api.service.Get(rctx, sess, ctx.Param("person"), ctx.Param("id"))
	if err != nil {
		return err
	}

	to := ctx.QueryParams()["to"]
	if len(to) == 0 {
		teacher, err := api.persons.Get(rctx, sess, person.KindTeacher, ev.PersonID)
		if err != nil && errors.Cause(err) != person.ErrNotFound {
			return err
		}
		if teacher.Email != "" {
			to = append(to, teacher.Email)
		}
	}

	draft := evaluation.ComposeFeedback(ev)
	return ctx.JSON(http.StatusOK, mailtoResponse{FeedbackDraft: draft, URL: draft.MailtoURL(to...)})
}

func (api *evaluationApi) evaluationSend(ctx echo.Context) error {
	data := new(feedbackRequest)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	to := make([]mail.Address, 0, len(data.To))
	for _, s := range data.To {
		addr, err := mail.ParseAddress(s)
		if err != nil {
			return core.NewValidationError(err, core.FieldError{Field: "to", Error: "invalid email address: " + s})
		}
		to = append(to, *addr)
	}

	draft, err := api.service.SendFeedback(ctx.Request().Context(), getSession(ctx), ctx.Param("person"), ctx.Param("id"), to...)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, draft)
}

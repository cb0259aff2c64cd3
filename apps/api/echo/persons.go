package echoapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/taqyeem/core"
	"github.com/trezcool/taqyeem/core/person"
	"github.com/trezcool/taqyeem/services/spreadsheet"
)

// importForm is the form data of a spreadsheet import: the sheet itself comes in the "file" part.
type importForm struct {
	Kind  person.Kind `form:"kind"`
	Group string      `form:"group"`
}

type personApi struct {
	service  *person.Service
	validate *validator.Validate
}

func registerPersonAPI(g *echo.Group, svc *person.Service, validate *validator.Validate) {
	api := personApi{service: svc, validate: validate}

	pg := g.Group("/persons")
	pg.POST("", api.personCreate)
	pg.GET("", api.personQuery)
	pg.GET("/evaluators", api.personEvaluators)
	pg.GET("/export", api.personExport)
	pg.POST("/import", api.personImport)
	pg.GET("/:kind/:id", api.personRetrieve)
	pg.DELETE("/:kind/:id", api.personDestroy)
}

// Handlers

func (api *personApi) personCreate(ctx echo.Context) error {
	data := new(person.NewPerson)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	p, err := api.service.Create(ctx.Request().Context(), getSession(ctx), *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, p)
}

func (api *personApi) personQuery(ctx echo.Context) error {
	filter := new(person.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return err
	}
	persons, err := api.service.Query(ctx.Request().Context(), getSession(ctx), *filter)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, persons)
}

func (api *personApi) personEvaluators(ctx echo.Context) error {
	evaluators, err := api.service.Evaluators(ctx.Request().Context(), getSession(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, evaluators)
}

func (api *personApi) personRetrieve(ctx echo.Context) error {
	p, err := api.service.Get(ctx.Request().Context(), getSession(ctx), person.Kind(ctx.Param("kind")), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *personApi) personDestroy(ctx echo.Context) error {
	if err := api.service.Delete(ctx.Request().Context(), getSession(ctx), person.Kind(ctx.Param("kind")), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *personApi) personImport(ctx echo.Context) error {
	form := new(importForm)
	if err := ctx.Bind(form); err != nil {
		return err
	}
	fh, err := ctx.FormFile("file")
	if err != nil {
		return errBadUpload
	}
	f, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening upload")
	}
	defer f.Close()

	grid, err := spreadsheet.ReadGrid(f, fh.Filename)
	if err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "file", Error: err.Error()})
	}
	report, err := api.service.Import(ctx.Request().Context(), getSession(ctx), form.Kind, form.Group, grid)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, report)
}

func (api *personApi) personExport(ctx echo.Context) error {
	filter := new(person.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return err
	}
	persons, err := api.service.Query(ctx.Request().Context(), getSession(ctx), *filter)
	if err != nil {
		return err
	}

	kind := filter.Kind
	if kind == "" {
		kind = "persons"
	}
	filename := fmt.Sprintf("%s-%s.xlsx", kind, time.Now().Format(core.DateLayout))
	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	ctx.Response().Header().Set(echo.HeaderContentType, spreadsheet.ContentType)
	ctx.Response().WriteHeader(http.StatusOK)
	return spreadsheet.WritePersons(ctx.Response(), string(kind), persons)
}

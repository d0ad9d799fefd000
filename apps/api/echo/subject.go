package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/schoolmate/backend/core/subject"
)

type subjectApi struct {
	svc *subject.Service
}

func registerSubjectAPI(g *echo.Group, svc *subject.Service) {
	api := subjectApi{svc: svc}

	g.POST("/add", api.create)
	g.GET("/all", api.query)
	g.GET("/:id", api.retrieve)
	g.PUT("/update/:id", api.update)
	g.DELETE("/delete/:id", api.destroy)
}

func (api *subjectApi) create(ctx echo.Context) error {
	var data subject.NewOffering
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewOffering")
	}

	off, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating subject")
	}
	return ctx.JSON(http.StatusCreated, off)
}

func (api *subjectApi) query(ctx echo.Context) error {
	grade, err := queryInt(ctx, "grade")
	if err != nil {
		return err
	}
	filter := &subject.QueryFilter{Search: ctx.QueryParam("search"), Grade: grade}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	offerings, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying subjects")
	}
	if offerings == nil {
		offerings = []subject.Offering{}
	}
	return ctx.JSON(http.StatusOK, offerings)
}

func (api *subjectApi) retrieve(ctx echo.Context) error {
	off, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding subject by ID")
	}
	return ctx.JSON(http.StatusOK, off)
}

func (api *subjectApi) update(ctx echo.Context) error {
	var data subject.UpdateOffering
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateOffering")
	}

	off, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating subject")
	}
	return ctx.JSON(http.StatusOK, off)
}

func (api *subjectApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting subject")
	}
	return ctx.JSON(http.StatusOK, MessageResponse{Message: "subject deleted"})
}

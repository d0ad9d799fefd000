package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/schoolmate/backend/core/student"
)

type studentApi struct {
	svc *student.Service
}

func registerStudentAPI(g *echo.Group, svc *student.Service) {
	api := studentApi{svc: svc}

	g.POST("/add", api.create)
	g.GET("/all", api.query)
	g.GET("/:id", api.retrieve)
	g.PUT("/update/:id", api.update)
	g.DELETE("/delete/:id", api.destroy)
}

// EnrollResponse is the only response carrying the initial credential.
type EnrollResponse struct {
	GeneratedEmail    string          `json:"generatedEmail"`
	GeneratedPassword string          `json:"generatedPassword"`
	Student           student.Profile `json:"student"`
}

func (api *studentApi) create(ctx echo.Context) error {
	var data student.NewProfile
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewProfile")
	}

	enr, err := api.svc.Enroll(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "enrolling student")
	}

	return ctx.JSON(http.StatusCreated, EnrollResponse{
		GeneratedEmail:    enr.Handle,
		GeneratedPassword: enr.Password,
		Student:           enr.Profile,
	})
}

func (api *studentApi) query(ctx echo.Context) error {
	grade, err := queryInt(ctx, "grade")
	if err != nil {
		return err
	}
	filter := &student.QueryFilter{
		Search:  ctx.QueryParam("search"),
		Grade:   grade,
		Section: ctx.QueryParam("section"),
		Gender:  ctx.QueryParam("gender"),
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	profiles, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	if profiles == nil {
		profiles = []student.Profile{}
	}
	return ctx.JSON(http.StatusOK, profiles)
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	prof, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding student by ID")
	}
	return ctx.JSON(http.StatusOK, prof)
}

func (api *studentApi) update(ctx echo.Context) error {
	var data student.UpdateProfile
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateProfile")
	}

	prof, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating student")
	}
	return ctx.JSON(http.StatusOK, prof)
}

func (api *studentApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting student")
	}
	return ctx.JSON(http.StatusOK, MessageResponse{Message: "student deleted"})
}

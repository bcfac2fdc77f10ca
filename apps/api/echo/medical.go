package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/schoolops/core"
	"github.com/trezcool/schoolops/core/medical"
)

type medicalApi struct {
	svc      medical.Service
	validate *validator.Validate
}

func registerMedicalAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := medicalApi{svc: opts.MedicalSvc, validate: opts.Validate}

	mg := g.Group("/medical-records", jwt, staffMiddleware(nurseRoles...))
	mg.GET("", api.query)
	mg.POST("", api.create)
	mg.GET("/latest", api.latest)
	mg.GET("/:id", api.retrieve)
	mg.PUT("/:id", api.update)
	mg.DELETE("/:id", api.destroy)
}

func (api *medicalApi) create(ctx echo.Context) error {
	var data medical.NewCertificate
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCertificate")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	c, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating health certificate")
	}
	return ctx.JSON(http.StatusCreated, c)
}

func (api *medicalApi) query(ctx echo.Context) error {
	filter := new(medical.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	filter.Clean()
	ordering, paging := listParams(ctx, medical.OrderingFields)

	certs, total, err := api.svc.Query(ctx.Request().Context(), filter, ordering, paging)
	if err != nil {
		return errors.Wrap(err, "querying health certificates")
	}
	if certs == nil {
		certs = []medical.Certificate{}
	}
	return ctx.JSON(http.StatusOK, core.NewPage(certs, total, paging))
}

// latest returns the last examination of `?student_id=`.
func (api *medicalApi) latest(ctx echo.Context) error {
	studentID := core.CleanString(ctx.QueryParam("student_id"))
	if studentID == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "student_id", Error: "this field is required"})
	}

	c, err := api.svc.Latest(ctx.Request().Context(), studentID)
	if err != nil {
		return errors.Wrap(err, "finding latest health certificate")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *medicalApi) retrieve(ctx echo.Context) error {
	c, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding health certificate by ID")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *medicalApi) update(ctx echo.Context) error {
	c, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding health certificate by ID")
	}

	var data medical.NewCertificate
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCertificate")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	c, err = api.svc.Update(ctx.Request().Context(), c, data)
	if err != nil {
		return errors.Wrap(err, "updating health certificate")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *medicalApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting health certificate")
	}
	return ctx.NoContent(http.StatusNoContent)
}

package echoapi

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/schoolops/core"
	"github.com/trezcool/schoolops/core/enrollment"
)

type enrollmentApi struct {
	svc      enrollment.Service
	files    core.FileStorage
	validate *validator.Validate
}

func registerEnrollmentAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := enrollmentApi{svc: opts.EnrollmentSvc, files: opts.Files, validate: opts.Validate}

	eg := g.Group("/enrollments", jwt, adminMiddleware())
	eg.GET("", api.query)
	eg.POST("", api.create)
	eg.GET("/statuses", api.statuses)
	eg.GET("/:id", api.retrieve)
	eg.PUT("/:id", api.update)
	eg.DELETE("/:id", api.destroy)
	eg.POST("/:id/certificates", api.attachCertificates)
	eg.POST("/:id/approve", api.approve)
	eg.POST("/:id/reject", api.reject)
	eg.POST("/:id/cancel", api.cancel)
	eg.POST("/:id/enroll", api.enroll)
}

type AttachCertificatesRequest struct {
	FileIDs []string `json:"file_ids" validate:"required,min=1,dive,required"`
}

func (api *enrollmentApi) create(ctx echo.Context) error {
	var data enrollment.NewApplication
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewApplication")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	if err := api.checkFiles(ctx.Request().Context(), "certificate_ids", data.CertificateIDs); err != nil {
		return err
	}

	a, err := api.svc.Submit(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "submitting application")
	}
	return ctx.JSON(http.StatusCreated, a)
}

func (api *enrollmentApi) query(ctx echo.Context) error {
	filter := new(enrollment.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	filter.Clean()
	ordering, paging := listParams(ctx, enrollment.OrderingFields)

	apps, total, err := api.svc.Query(ctx.Request().Context(), filter, ordering, paging)
	if err != nil {
		return errors.Wrap(err, "querying applications")
	}
	if apps == nil {
		apps = []enrollment.Application{}
	}
	return ctx.JSON(http.StatusOK, core.NewPage(apps, total, paging))
}

func (api *enrollmentApi) statuses(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, enrollment.Statuses)
}

func (api *enrollmentApi) retrieve(ctx echo.Context) error {
	a, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding application by ID")
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *enrollmentApi) update(ctx echo.Context) error {
	a, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding application by ID")
	}

	var data enrollment.NewApplication
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewApplication")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}
	if err = api.checkFiles(ctx.Request().Context(), "certificate_ids", data.CertificateIDs); err != nil {
		return err
	}

	a, err = api.svc.Update(ctx.Request().Context(), a, data)
	if err != nil {
		return errors.Wrap(err, "updating application")
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *enrollmentApi) attachCertificates(ctx echo.Context) error {
	a, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding application by ID")
	}

	var data AttachCertificatesRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AttachCertificatesRequest")
	}
	if err = api.validate.Struct(data); err != nil {
		return err
	}
	if err = api.checkFiles(ctx.Request().Context(), "file_ids", data.FileIDs); err != nil {
		return err
	}

	a, err = api.svc.AttachCertificates(ctx.Request().Context(), a, data.FileIDs...)
	if err != nil {
		return errors.Wrap(err, "attaching certificates")
	}
	return ctx.JSON(http.StatusOK, a)
}

// checkFiles reports the uploaded files missing from ids as a validation error on field.
func (api *enrollmentApi) checkFiles(ctx context.Context, field string, ids []string) error {
	for _, id := range ids {
		_, rc, err := api.files.Open(ctx, id)
		if err != nil {
			if errors.Cause(err) == core.ErrFileNotFound {
				return core.NewValidationError(nil, core.FieldError{Field: field, Error: "file " + id + " does not exist"})
			}
			return errors.Wrap(err, "opening certificate")
		}
		_ = rc.Close()
	}
	return nil
}

func (api *enrollmentApi) approve(ctx echo.Context) error {
	return api.decide(ctx, api.svc.Approve)
}

func (api *enrollmentApi) reject(ctx echo.Context) error {
	return api.decide(ctx, api.svc.Reject)
}

func (api *enrollmentApi) cancel(ctx echo.Context) error {
	return api.decide(ctx, api.svc.Cancel)
}

func (api *enrollmentApi) decide(
	ctx echo.Context,
	action func(context.Context, enrollment.Application, enrollment.Decision) (enrollment.Application, error),
) error {
	a, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding application by ID")
	}

	var data enrollment.Decision
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Decision")
	}
	data.Clean()

	a, err = action(ctx.Request().Context(), a, data)
	if err != nil {
		return errors.Wrap(err, "deciding on application")
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *enrollmentApi) enroll(ctx echo.Context) error {
	a, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding application by ID")
	}

	var data enrollment.EnrollRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to EnrollRequest")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	a, err = api.svc.Enroll(ctx.Request().Context(), a, data)
	if err != nil {
		return errors.Wrap(err, "enrolling student")
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *enrollmentApi) destroy(ctx echo.Context) error {
	a, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding application by ID")
	}
	if err = api.svc.Delete(ctx.Request().Context(), a); err != nil {
		return errors.Wrap(err, "deleting application")
	}
	return ctx.NoContent(http.StatusNoContent)
}

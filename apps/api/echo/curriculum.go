package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/schoolops/core"
	"github.com/trezcool/schoolops/core/curriculum"
)

type curriculumApi struct {
	svc      curriculum.Service
	validate *validator.Validate
}

func registerCurriculumAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := curriculumApi{svc: opts.CurriculumSvc, validate: opts.Validate}
	read, write := readWrite(teacherRoles, nil)

	cg := g.Group("/curricula", jwt)
	cg.GET("", api.query, read)
	cg.POST("", api.create, write)
	cg.GET("/:id", api.retrieve, read)
	cg.PUT("/:id", api.update, write)
	cg.DELETE("/:id", api.destroy, write)
}

func (api *curriculumApi) create(ctx echo.Context) error {
	var data curriculum.NewCurriculum
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCurriculum")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	c, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating curriculum")
	}
	return ctx.JSON(http.StatusCreated, c)
}

func (api *curriculumApi) query(ctx echo.Context) error {
	filter := new(curriculum.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	filter.Clean()
	ordering, paging := listParams(ctx, curriculum.OrderingFields)

	curricula, total, err := api.svc.Query(ctx.Request().Context(), filter, ordering, paging)
	if err != nil {
		return errors.Wrap(err, "querying curricula")
	}
	if curricula == nil {
		curricula = []curriculum.Curriculum{}
	}
	return ctx.JSON(http.StatusOK, core.NewPage(curricula, total, paging))
}

func (api *curriculumApi) retrieve(ctx echo.Context) error {
	c, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding curriculum by ID")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *curriculumApi) update(ctx echo.Context) error {
	c, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding curriculum by ID")
	}

	var data curriculum.NewCurriculum
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCurriculum")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	c, err = api.svc.Update(ctx.Request().Context(), c, data)
	if err != nil {
		return errors.Wrap(err, "updating curriculum")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *curriculumApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting curriculum")
	}
	return ctx.NoContent(http.StatusNoContent)
}

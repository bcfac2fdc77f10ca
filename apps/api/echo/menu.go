package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/schoolops/core"
	"github.com/trezcool/schoolops/core/menu"
)

type menuApi struct {
	svc      menu.Service
	validate *validator.Validate
}

func registerMenuAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := menuApi{svc: opts.MenuSvc, validate: opts.Validate}
	read, write := readWrite(teacherRoles, kitchenRoles)

	mg := g.Group("/menus", jwt)
	mg.GET("", api.query, read)
	mg.POST("", api.create, write)
	mg.GET("/:id", api.retrieve, read)
	mg.PUT("/:id", api.update, write)
	mg.DELETE("/:id", api.destroy, write)
}

func (api *menuApi) create(ctx echo.Context) error {
	var data menu.NewMenu
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMenu")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	m, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating menu")
	}
	return ctx.JSON(http.StatusCreated, m)
}

func (api *menuApi) query(ctx echo.Context) error {
	filter := new(menu.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	filter.Clean()
	ordering, paging := listParams(ctx, menu.OrderingFields)

	menus, total, err := api.svc.Query(ctx.Request().Context(), filter, ordering, paging)
	if err != nil {
		return errors.Wrap(err, "querying menus")
	}
	if menus == nil {
		menus = []menu.Menu{}
	}
	return ctx.JSON(http.StatusOK, core.NewPage(menus, total, paging))
}

func (api *menuApi) retrieve(ctx echo.Context) error {
	m, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding menu by ID")
	}
	return ctx.JSON(http.StatusOK, m)
}

func (api *menuApi) update(ctx echo.Context) error {
	m, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding menu by ID")
	}

	var data menu.NewMenu
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMenu")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	m, err = api.svc.Update(ctx.Request().Context(), m, data)
	if err != nil {
		return errors.Wrap(err, "updating menu")
	}
	return ctx.JSON(http.StatusOK, m)
}

func (api *menuApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting menu")
	}
	return ctx.NoContent(http.StatusNoContent)
}

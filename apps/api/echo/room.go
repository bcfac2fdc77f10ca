package echoapi

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/schoolops/core"
	"github.com/trezcool/schoolops/core/room"
	"github.com/trezcool/schoolops/core/user"
)

type roomApi struct {
	svc      room.Service
	validate *validator.Validate
}

func registerRoomAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := roomApi{svc: opts.RoomSvc, validate: opts.Validate}
	read, write := readWrite(user.StaffRoles, nil)

	rg := g.Group("/rooms", jwt)
	rg.GET("", api.query, read)
	rg.POST("", api.create, write)
	rg.GET("/types", api.types, read)
	rg.GET("/:id", api.retrieve, read)
	rg.GET("/:id/summary", api.summary, read)
	rg.PUT("/:id", api.update, write)
	rg.DELETE("/:id", api.destroy, write)
	rg.POST("/:id/approve", api.approve, adminMiddleware())
	rg.POST("/:id/reject", api.reject, adminMiddleware())
}

func (api *roomApi) create(ctx echo.Context) error {
	var data room.NewRoom
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewRoom")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	r, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating room")
	}
	return ctx.JSON(http.StatusCreated, r)
}

func (api *roomApi) query(ctx echo.Context) error {
	filter := new(room.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	filter.Clean()
	ordering, paging := listParams(ctx, room.OrderingFields)

	rooms, total, err := api.svc.Query(ctx.Request().Context(), filter, ordering, paging)
	if err != nil {
		return errors.Wrap(err, "querying rooms")
	}
	if rooms == nil {
		rooms = []room.Room{}
	}
	return ctx.JSON(http.StatusOK, core.NewPage(rooms, total, paging))
}

func (api *roomApi) types(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, room.Types)
}

func (api *roomApi) retrieve(ctx echo.Context) error {
	r, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding room by ID")
	}
	return ctx.JSON(http.StatusOK, r)
}

func (api *roomApi) summary(ctx echo.Context) error {
	r, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding room by ID")
	}
	return ctx.JSON(http.StatusOK, r.Summary())
}

func (api *roomApi) update(ctx echo.Context) error {
	r, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding room by ID")
	}

	var data room.NewRoom
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewRoom")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	r, err = api.svc.Update(ctx.Request().Context(), r, data)
	if err != nil {
		return errors.Wrap(err, "updating room")
	}
	return ctx.JSON(http.StatusOK, r)
}

func (api *roomApi) approve(ctx echo.Context) error {
	return api.decide(ctx, api.svc.Approve)
}

func (api *roomApi) reject(ctx echo.Context) error {
	return api.decide(ctx, api.svc.Reject)
}

func (api *roomApi) decide(ctx echo.Context, action func(context.Context, room.Room, room.Decision) (room.Room, error)) error {
	r, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding room by ID")
	}

	var data room.Decision
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Decision")
	}

	r, err = action(ctx.Request().Context(), r, data)
	if err != nil {
		return errors.Wrap(err, "deciding on room")
	}
	return ctx.JSON(http.StatusOK, r)
}

func (api *roomApi) destroy(ctx echo.Context) error {
	r, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding room by ID")
	}
	if err = api.svc.Delete(ctx.Request().Context(), r); err != nil {
		return errors.Wrap(err, "deleting room")
	}
	return ctx.NoContent(http.StatusNoContent)
}

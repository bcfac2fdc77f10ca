package echoapi

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/schoolops/core"
	"github.com/trezcool/schoolops/core/food"
	"github.com/trezcool/schoolops/core/nutrition"
)

type foodApi struct {
	svc      food.Service
	validate *validator.Validate
}

func registerFoodAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := foodApi{svc: opts.FoodSvc, validate: opts.Validate}
	access := staffMiddleware(kitchenRoles...)

	fg := g.Group("/foods", jwt, access)
	fg.GET("", api.query)
	fg.POST("", api.create)
	fg.GET("/:id", api.retrieve)
	fg.PUT("/:id", api.update)
	fg.DELETE("/:id", api.destroy)
	fg.POST("/:id/calculate", api.calculate)
	fg.GET("/:id/portion", api.portion)
	fg.PUT("/:id/ingredients/:idx", api.updateIngredient)
}

type PortionResponse struct {
	FoodID    string              `json:"food_id"`
	Weight    float64             `json:"weight"`
	Nutrients nutrition.Nutrients `json:"nutrients"`
}

func (api *foodApi) create(ctx echo.Context) error {
	var data food.NewFood
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewFood")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	f, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating food")
	}
	return ctx.JSON(http.StatusCreated, f)
}

func (api *foodApi) query(ctx echo.Context) error {
	filter := new(food.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	filter.Clean()
	ordering, paging := listParams(ctx, food.OrderingFields)

	foods, total, err := api.svc.Query(ctx.Request().Context(), filter, ordering, paging)
	if err != nil {
		return errors.Wrap(err, "querying foods")
	}
	if foods == nil {
		foods = []food.Food{}
	}
	return ctx.JSON(http.StatusOK, core.NewPage(foods, total, paging))
}

func (api *foodApi) retrieve(ctx echo.Context) error {
	f, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding food by ID")
	}
	return ctx.JSON(http.StatusOK, f)
}

func (api *foodApi) update(ctx echo.Context) error {
	f, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding food by ID")
	}

	var data food.UpdateFood
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateFood")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	f, err = api.svc.Update(ctx.Request().Context(), f, data)
	if err != nil {
		return errors.Wrap(err, "updating food")
	}
	return ctx.JSON(http.StatusOK, f)
}

func (api *foodApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting food")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *foodApi) calculate(ctx echo.Context) error {
	f, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding food by ID")
	}

	f, err = api.svc.Calculate(ctx.Request().Context(), f)
	if err != nil {
		return errors.Wrap(err, "calculating nutrients")
	}
	return ctx.JSON(http.StatusOK, f)
}

// portion returns the nutrients of `?weight=` grams of the food.
func (api *foodApi) portion(ctx echo.Context) error {
	weight, err := strconv.ParseFloat(ctx.QueryParam("weight"), 64)
	if err != nil || weight <= 0 {
		return core.NewValidationError(nil, core.FieldError{Field: "weight", Error: "weight must be a positive number of grams"})
	}

	f, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding food by ID")
	}
	return ctx.JSON(http.StatusOK, PortionResponse{FoodID: f.ID, Weight: weight, Nutrients: f.Portion(weight).Round(2)})
}

func (api *foodApi) updateIngredient(ctx echo.Context) error {
	idx, err := strconv.Atoi(ctx.Param("idx"))
	if err != nil {
		return errors.Wrap(food.ErrIngredientNotFound, "parsing ingredient index")
	}

	f, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding food by ID")
	}

	var data food.UpdateIngredient
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateIngredient")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	f, err = api.svc.UpdateIngredient(ctx.Request().Context(), f, idx, data)
	if err != nil {
		return errors.Wrap(err, "updating ingredient")
	}
	return ctx.JSON(http.StatusOK, f)
}

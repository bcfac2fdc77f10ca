package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/schoolops/core"
	"github.com/trezcool/schoolops/core/tuition"
	"github.com/trezcool/schoolops/services/report"
)

type tuitionApi struct {
	svc      tuition.Service
	validate *validator.Validate
}

func registerTuitionAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := tuitionApi{svc: opts.TuitionSvc, validate: opts.Validate}
	access := staffMiddleware(accountantRoles...)

	sg := g.Group("/services", jwt, access)
	sg.GET("", api.queryServices)
	sg.POST("", api.createService)
	sg.GET("/:id", api.retrieveService)
	sg.PUT("/:id", api.updateService)
	sg.DELETE("/:id", api.destroyService)

	tg := g.Group("/tuition", jwt, access)
	tg.GET("", api.query)
	tg.POST("", api.create)
	tg.POST("/generate", api.generate)
	tg.GET("/statuses", api.statuses)
	tg.GET("/revenue", api.revenue)
	tg.GET("/revenue/export", api.exportRevenue)
	tg.GET("/:id", api.retrieve)
	tg.PUT("/:id", api.update)
	tg.DELETE("/:id", api.destroy)
	tg.POST("/:id/pay", api.pay)
	tg.GET("/:id/payment-status", api.paymentStatus)
}

type PaymentResponse struct {
	Tuition tuition.Tuition        `json:"tuition"`
	Payment tuition.PaymentSession `json:"payment"`
}

// Services

func (api *tuitionApi) createService(ctx echo.Context) error {
	var data tuition.NewSchoolService
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSchoolService")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	s, err := api.svc.CreateService(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating service")
	}
	return ctx.JSON(http.StatusCreated, s)
}

func (api *tuitionApi) queryServices(ctx echo.Context) error {
	filter := new(tuition.ServiceFilter)
	if err := ctx.Bind(filter); err != nil {
		return errors.Wrap(err, "binding to ServiceFilter")
	}
	filter.Clean()
	ordering, paging := listParams(ctx, tuition.ServiceOrderingFields)

	services, total, err := api.svc.QueryServices(ctx.Request().Context(), filter, ordering, paging)
	if err != nil {
		return errors.Wrap(err, "querying services")
	}
	if services == nil {
		services = []tuition.SchoolService{}
	}
	return ctx.JSON(http.StatusOK, core.NewPage(services, total, paging))
}

func (api *tuitionApi) retrieveService(ctx echo.Context) error {
	s, err := api.svc.GetServiceByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding service by ID")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *tuitionApi) updateService(ctx echo.Context) error {
	s, err := api.svc.GetServiceByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding service by ID")
	}

	var data tuition.NewSchoolService
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSchoolService")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	s, err = api.svc.UpdateService(ctx.Request().Context(), s, data)
	if err != nil {
		return errors.Wrap(err, "updating service")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *tuitionApi) destroyService(ctx echo.Context) error {
	if err := api.svc.DeleteService(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting service")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Tuition

func (api *tuitionApi) create(ctx echo.Context) error {
	var data tuition.NewTuition
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTuition")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	t, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating tuition")
	}
	return ctx.JSON(http.StatusCreated, t)
}

func (api *tuitionApi) generate(ctx echo.Context) error {
	var data tuition.GenerateRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GenerateRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	res, err := api.svc.Generate(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "generating tuitions")
	}
	return ctx.JSON(http.StatusCreated, res)
}

func (api *tuitionApi) query(ctx echo.Context) error {
	filter := new(tuition.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	filter.Clean()
	ordering, paging := listParams(ctx, tuition.OrderingFields)

	tuitions, total, err := api.svc.Query(ctx.Request().Context(), filter, ordering, paging)
	if err != nil {
		return errors.Wrap(err, "querying tuitions")
	}
	if tuitions == nil {
		tuitions = []tuition.Tuition{}
	}
	return ctx.JSON(http.StatusOK, core.NewPage(tuitions, total, paging))
}

func (api *tuitionApi) statuses(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, tuition.Statuses)
}

func (api *tuitionApi) retrieve(ctx echo.Context) error {
	t, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding tuition by ID")
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *tuitionApi) update(ctx echo.Context) error {
	t, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding tuition by ID")
	}

	var data tuition.NewTuition
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTuition")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	t, err = api.svc.Update(ctx.Request().Context(), t, data)
	if err != nil {
		return errors.Wrap(err, "updating tuition")
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *tuitionApi) destroy(ctx echo.Context) error {
	t, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding tuition by ID")
	}
	if err = api.svc.Delete(ctx.Request().Context(), t); err != nil {
		return errors.Wrap(err, "deleting tuition")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *tuitionApi) pay(ctx echo.Context) error {
	t, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding tuition by ID")
	}

	t, sess, err := api.svc.StartPayment(ctx.Request().Context(), t)
	if err != nil {
		return errors.Wrap(err, "starting payment")
	}
	return ctx.JSON(http.StatusOK, PaymentResponse{Tuition: t, Payment: sess})
}

func (api *tuitionApi) paymentStatus(ctx echo.Context) error {
	t, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding tuition by ID")
	}

	t, err = api.svc.RefreshPayment(ctx.Request().Context(), t)
	if err != nil {
		return errors.Wrap(err, "refreshing payment")
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *tuitionApi) revenue(ctx echo.Context) error {
	rep, err := api.svc.Revenue(ctx.Request().Context(), core.CleanString(ctx.QueryParam("month")))
	if err != nil {
		return errors.Wrap(err, "building revenue report")
	}
	return ctx.JSON(http.StatusOK, rep)
}

func (api *tuitionApi) exportRevenue(ctx echo.Context) error {
	rep, err := api.svc.Revenue(ctx.Request().Context(), core.CleanString(ctx.QueryParam("month")))
	if err != nil {
		return errors.Wrap(err, "building revenue report")
	}

	data, err := reportsvc.RevenueWorkbook(rep)
	if err != nil {
		return errors.Wrap(err, "rendering revenue workbook")
	}
	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+reportsvc.RevenueFilename(rep.Month)+`"`)
	return ctx.Blob(http.StatusOK, reportsvc.XLSXContentType, data)
}

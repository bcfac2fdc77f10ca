package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/schoolops/core"
)

func registerMetaAPI(g *echo.Group, jwt echo.MiddlewareFunc) {
	mg := g.Group("/meta", jwt)
	mg.GET("/age-groups", func(ctx echo.Context) error {
		return ctx.JSON(http.StatusOK, core.AgeGroups)
	})
}

package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/shulesys/shule/core/school"
)

type dashboardApi struct {
	svc school.DashboardService
}

func registerDashboardAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc school.DashboardService) {
	api := dashboardApi{svc: svc}
	g.GET("/dashboard", api.retrieve, jwt)
}

// retrieve resolves the caller's dashboard from the role claim alone;
// no query parameters are honored.
func (api *dashboardApi) retrieve(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	view, err := api.svc.GetDashboardFor(ctx.Request().Context(), claims.Principal())
	if err != nil {
		return errors.Wrap(err, "resolving dashboard")
	}
	return ctx.JSON(http.StatusOK, view)
}

package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/shulesys/shule/core"
	"github.com/shulesys/shule/core/school"
	"github.com/shulesys/shule/core/user"
)

type paymentApi struct {
	svc school.PaymentService
}

func registerPaymentAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc school.PaymentService) {
	api := paymentApi{svc: svc}

	pg := g.Group("/payments", jwt, roleMiddleware(user.RoleAdmin, user.RoleEmployee))
	pg.POST("", api.create)
	pg.GET("/pending", api.queryPending)
	pg.GET("/students/:id", api.queryByStudent)
}

func (api *paymentApi) create(ctx echo.Context) error {
	var data school.NewPayment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPayment")
	}

	p, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, p)
}

func (api *paymentApi) queryPending(ctx echo.Context) error {
	payments, err := api.svc.QueryPending(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying pending payments")
	}
	if payments == nil {
		payments = []school.Payment{}
	}
	return ctx.JSON(http.StatusOK, payments)
}

func (api *paymentApi) queryByStudent(ctx echo.Context) error {
	studentID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return core.NewValidationError(
			errors.New("invalid student id"),
			core.FieldError{Field: "id", Error: "must be an integer"},
		)
	}

	payments, err := api.svc.QueryByStudent(ctx.Request().Context(), studentID)
	if err != nil {
		return errors.Wrap(err, "querying student payments")
	}
	if payments == nil {
		payments = []school.Payment{}
	}
	return ctx.JSON(http.StatusOK, payments)
}

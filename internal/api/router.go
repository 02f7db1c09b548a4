package api

import (
	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/mbarden/gopull/internal/api/controllers"
	"github.com/mbarden/gopull/internal/app"
)

func RegisterRoutes(e *echo.Echo, appCtx *app.Context) {

	// Middleware: Request Logger
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c *echo.Context, v middleware.RequestLoggerValues) error {
			appCtx.Logger.Info("%s %s | %d | %s", v.Method, v.URI, v.Status, v.Latency)
			return nil
		},
	}))

	ctrl := &controllers.TransfersController{App: appCtx}

	e.POST("/api/transfers", ctrl.Create)
	e.GET("/api/transfers", ctrl.List)
	e.GET("/api/transfers/:id", ctrl.Get)
	e.DELETE("/api/transfers/:id", ctrl.Cancel)
}

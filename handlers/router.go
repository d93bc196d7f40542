package handlers

import (
	"log/slog"

	"fleet-charging/auth"
	"fleet-charging/cache"
	"fleet-charging/database"
	"fleet-charging/fleet"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// NewRouter wires every handler into an Echo instance. All routes except
// auth and health require a valid bearer token; entity deletion and role
// grants additionally require the admin role.
func NewRouter(db *database.Database, engine *fleet.Engine, cacheClient *cache.Cache, authService *auth.Service, logger *slog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Info("request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
			)
			return nil
		},
	}))
	e.Use(middleware.CORS())

	robotHandler := NewRobotHandler(db, engine, cacheClient, logger)
	stationHandler := NewStationHandler(db, logger)
	orderHandler := NewOrderHandler(db, logger)
	analyticsHandler := NewAnalyticsHandler(db, cacheClient, logger)
	authHandler := NewAuthHandler(authService, logger)

	e.GET("/api/health", healthCheck)
	e.POST("/api/auth/register", authHandler.Register)
	e.POST("/api/auth/login", authHandler.Login)

	api := e.Group("/api", auth.Middleware(authService))
	admin := api.Group("", auth.RequireAdmin())

	api.GET("/auth/me", authHandler.Me)
	admin.POST("/auth/users", authHandler.CreateUser)

	// Robots
	api.GET("/robots", robotHandler.ListRobots)
	api.GET("/robots/:id", robotHandler.GetRobot)
	api.POST("/robots", robotHandler.CreateRobot)
	api.PUT("/robots/:id", robotHandler.UpdateRobot)
	admin.DELETE("/robots/:id", robotHandler.DeleteRobot)

	// Fleet transitions
	api.POST("/robots/:id/assign/:stationId", robotHandler.AssignRobot)
	api.POST("/robots/:id/release", robotHandler.ReleaseRobot)
	api.POST("/robots/:id/start-charging", robotHandler.StartCharging)
	api.POST("/robots/:id/complete-charging", robotHandler.CompleteCharging)
	api.GET("/robots/check-low-battery", robotHandler.CheckLowBattery)

	// Stations; mutations are admin-only
	api.GET("/stations", stationHandler.ListStations)
	api.GET("/stations/:id", stationHandler.GetStation)
	admin.POST("/stations", stationHandler.CreateStation)
	admin.PUT("/stations/:id", stationHandler.UpdateStation)
	admin.DELETE("/stations/:id", stationHandler.DeleteStation)

	// Orders (read-only)
	api.GET("/orders", orderHandler.ListOrders)
	api.GET("/orders/:id", orderHandler.GetOrder)

	// Energy efficiency analytics
	analyticsGroup := api.Group("/energy-efficiency")
	analyticsGroup.GET("/kpi", analyticsHandler.GetKPI)
	analyticsGroup.GET("/efficiency-trend", analyticsHandler.GetEfficiencyTrend)
	analyticsGroup.GET("/energy-distribution", analyticsHandler.GetEnergyDistribution)
	analyticsGroup.GET("/station-utilization", analyticsHandler.GetStationUtilization)
	analyticsGroup.GET("/robot-charging-behavior", analyticsHandler.GetRobotBehavior)
	analyticsGroup.GET("/peak-analysis", analyticsHandler.GetPeakAnalysis)
	analyticsGroup.GET("/charging-events", analyticsHandler.GetChargingEvents)
	analyticsGroup.GET("/export", analyticsHandler.ExportData)

	return e
}

func healthCheck(c echo.Context) error {
	return c.JSON(200, map[string]interface{}{
		"service": "fleet-charging",
		"status":  "ok",
	})
}

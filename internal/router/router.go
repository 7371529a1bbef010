package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fleetgen/backend/api/handler"
)

type Handlers struct {
	Vehicle    *apiHandler.VehicleHandler
	Generation *apiHandler.GenerationHandler
	Stream     *apiHandler.StreamHandler
	Health     *apiHandler.HealthHandler
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Real-time stream (the gateway bridge authenticates upstream)
	r.GET("/ws", handlers.Stream.Subscribe)

	// Vehicle commands and queries
	r.GET("/api/v1/vehicles", authMiddleware(handlers.Vehicle.ListVehicles))
	r.GET("/api/v1/vehicles/{id}", authMiddleware(handlers.Vehicle.GetVehicle))
	r.POST("/api/v1/vehicles", authMiddleware(handlers.Vehicle.CreateVehicle))
	r.PUT("/api/v1/vehicles/{id}", authMiddleware(handlers.Vehicle.UpdateVehicle))
	r.DELETE("/api/v1/vehicles", authMiddleware(handlers.Vehicle.DeleteVehicles))

	// Generation control
	r.POST("/api/v1/generation/start", authMiddleware(handlers.Generation.Start))
	r.POST("/api/v1/generation/stop", authMiddleware(handlers.Generation.Stop))
	r.GET("/api/v1/generation/status", authMiddleware(handlers.Generation.Status))

	return r
}

package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/travigo/countdown/pkg/api/routes"
	"github.com/travigo/countdown/pkg/arrivals"
)

func NewApp(tracker *arrivals.Tracker) *fiber.App {
	webApp := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	webApp.Use(NewLogger())

	group := webApp.Group("/core")

	group.Get("version", routes.APIVersion)
	group.Get("status", routes.Status(tracker))

	routes.ArrivalsRouter(group.Group("/arrivals"), tracker)
	routes.JourneyRouter(group.Group("/journey"), tracker)
	routes.VehicleRouter(group.Group("/vehicle"), tracker)

	routes.StopRouter(group.Group("/stop"), tracker)
	routes.StopsRouter(group.Group("/stops"), tracker)

	return webApp
}

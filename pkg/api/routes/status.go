package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/travigo/countdown/pkg/arrivals"
)

func Status(tracker *arrivals.Tracker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"stop":      tracker.CurrentStop(),
			"vehicle":   tracker.CurrentVehicle(),
			"direction": tracker.DirectionID(),
			"downloads": tracker.DownloadState(),
			"arrivals": fiber.Map{
				"active":   tracker.ArrivalsActive(),
				"progress": tracker.ArrivalsTimerProgress(),
				"count":    tracker.Arrivals.Len(),
			},
			"journey": fiber.Map{
				"active":   tracker.JourneyProgressActive(),
				"progress": tracker.JourneyProgressTimerProgress(),
				"nextstop": tracker.NextStop(),
			},
			"stops": fiber.Map{
				"category": tracker.StopsCategory(),
				"count":    tracker.Stops.Len(),
			},
		})
	}
}

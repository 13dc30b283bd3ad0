package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/travigo/countdown/pkg/arrivals"
)

type vehicleRequest struct {
	ID          string `json:"id"`
	Line        string `json:"line"`
	Destination string `json:"destination"`
}

func JourneyRouter(router fiber.Router, tracker *arrivals.Tracker) {
	router.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"active":      tracker.JourneyProgressActive(),
			"downloading": tracker.DownloadState().JourneyProgress,
			"progress":    tracker.JourneyProgressTimerProgress(),
			"vehicle":     tracker.CurrentVehicle(),
			"direction":   tracker.DirectionID(),
			"nextstop":    tracker.NextStop(),
			"stops":       tracker.JourneyProgressRows(),
		})
	})

	router.Post("/updates", func(c *fiber.Ctx) error {
		if tracker.CurrentVehicle().ID == "" {
			return sendBadRequest(c, "A vehicle must be selected first")
		}

		if err := tracker.StartJourneyProgressUpdate(); err != nil {
			return sendError(c, err)
		}

		return c.SendStatus(fiber.StatusAccepted)
	})

	router.Delete("/updates", func(c *fiber.Ctx) error {
		if err := tracker.StopJourneyProgressUpdate(); err != nil {
			return sendError(c, err)
		}

		return c.SendStatus(fiber.StatusNoContent)
	})
}

func VehicleRouter(router fiber.Router, tracker *arrivals.Tracker) {
	router.Put("/", func(c *fiber.Ctx) error {
		var request vehicleRequest
		if err := c.BodyParser(&request); err != nil {
			return sendBadRequest(c, "Invalid vehicle body")
		}

		if request.ID == "" {
			return sendBadRequest(c, "Vehicle id is required")
		}

		if err := tracker.SetCurrentVehicle(request.ID, request.Line, request.Destination); err != nil {
			return sendError(c, err)
		}

		return c.JSON(tracker.CurrentVehicle())
	})
}

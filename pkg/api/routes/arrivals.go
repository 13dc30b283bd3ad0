package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/travigo/countdown/pkg/arrivals"
)

func ArrivalsRouter(router fiber.Router, tracker *arrivals.Tracker) {
	router.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"active":      tracker.ArrivalsActive(),
			"downloading": tracker.DownloadState().Arrivals,
			"progress":    tracker.ArrivalsTimerProgress(),
			"stop":        tracker.CurrentStop(),
			"arrivals":    tracker.SortedArrivals(),
		})
	})

	router.Post("/updates", func(c *fiber.Ctx) error {
		if err := tracker.StartArrivalsUpdate(); err != nil {
			return sendError(c, err)
		}

		return c.SendStatus(fiber.StatusAccepted)
	})

	router.Delete("/updates", func(c *fiber.Ctx) error {
		if err := tracker.StopArrivalsUpdate(); err != nil {
			return sendError(c, err)
		}

		return c.SendStatus(fiber.StatusNoContent)
	})
}

package routes

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/travigo/countdown/pkg/arrivals"
	"github.com/travigo/countdown/pkg/stations"
)

func sendError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError

	switch {
	case errors.Is(err, stations.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, arrivals.ErrNoStationsStore):
		status = fiber.StatusNotImplemented
	case errors.Is(err, arrivals.ErrTrackerStopped):
		status = fiber.StatusServiceUnavailable
	}

	c.Status(status)
	return c.JSON(fiber.Map{
		"error": err.Error(),
	})
}

func sendBadRequest(c *fiber.Ctx, message string) error {
	c.Status(fiber.StatusBadRequest)
	return c.JSON(fiber.Map{
		"error": message,
	})
}

package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/travigo/countdown/pkg/arrivals"
	"github.com/travigo/countdown/pkg/stations"
)

func StopRouter(router fiber.Router, tracker *arrivals.Tracker) {
	router.Get("/", func(c *fiber.Ctx) error {
		stop := tracker.CurrentStop()

		favourite := false
		if stop.ID != "" {
			var err error
			favourite, err = tracker.IsStopFavourite(c.Context(), stop.ID)
			if err != nil && err != arrivals.ErrNoStationsStore {
				log.Error().Err(err).Str("stop", stop.ID).Msg("Failed to look up favourite")
			}
		}

		return c.JSON(fiber.Map{
			"stop":        stop,
			"favourite":   favourite,
			"messages":    tracker.CurrentStopMessages(),
			"downloading": tracker.DownloadState().Stop,
		})
	})

	router.Put("/:code", func(c *fiber.Ctx) error {
		if err := tracker.SetCurrentStop(c.Params("code")); err != nil {
			return sendError(c, err)
		}

		return c.SendStatus(fiber.StatusAccepted)
	})

	router.Delete("/", func(c *fiber.Ctx) error {
		if err := tracker.ClearCurrentStop(); err != nil {
			return sendError(c, err)
		}

		return c.SendStatus(fiber.StatusNoContent)
	})
}

func StopsRouter(router fiber.Router, tracker *arrivals.Tracker) {
	router.Get("/", func(c *fiber.Ctx) error {
		if categoryQuery := c.Query("category"); categoryQuery != "" {
			category, err := stations.ParseCategory(categoryQuery)
			if err != nil {
				return sendBadRequest(c, err.Error())
			}

			if category != tracker.StopsCategory() {
				if err := tracker.SetStopsQuery(category); err != nil {
					return sendError(c, err)
				}
			}
		}

		return c.JSON(fiber.Map{
			"category":    tracker.StopsCategory(),
			"downloading": tracker.DownloadState().Stops,
			"stops":       tracker.Stops.Items(),
		})
	})

	router.Post("/search", func(c *fiber.Ctx) error {
		name := c.Query("name")
		if name == "" {
			return sendBadRequest(c, "A name must be given to search for")
		}

		if err := tracker.SearchStops(name); err != nil {
			return sendError(c, err)
		}

		return c.SendStatus(fiber.StatusAccepted)
	})

	router.Put("/:code/favourite", func(c *fiber.Ctx) error {
		return setFavourite(c, tracker, true)
	})

	router.Delete("/:code/favourite", func(c *fiber.Ctx) error {
		return setFavourite(c, tracker, false)
	})
}

func setFavourite(c *fiber.Ctx, tracker *arrivals.Tracker, favourite bool) error {
	code := c.Params("code")

	if err := tracker.FavourStop(c.Context(), code, favourite); err != nil {
		return sendError(c, err)
	}

	return c.JSON(fiber.Map{
		"code":      code,
		"favourite": favourite,
	})
}

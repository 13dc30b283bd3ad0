package arrivals

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/kr/pretty"
	"github.com/rs/zerolog/log"
	"github.com/travigo/countdown/pkg/config"
	"github.com/travigo/countdown/pkg/ctdf"
	"github.com/travigo/countdown/pkg/transport"
	"github.com/travigo/countdown/pkg/ura"
	"github.com/travigo/countdown/pkg/util"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "arrivals",
		Usage: "Query and follow countdown arrivals from the command line",
		Subcommands: []*cli.Command{
			{
				Name:  "fetch",
				Usage: "fetch and decode one countdown response",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "stop",
						Usage:    "stop code to request",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "kind",
						Value: "arrivals",
						Usage: "arrivals, detail or messages",
					},
				},
				Action: func(c *cli.Context) error {
					cfg, err := config.Load(util.GetEnvironmentVariables(), c.String("config"))
					if err != nil {
						return err
					}

					requests := ura.Requests{BaseURL: cfg.URA.BaseURL}
					client := transport.NewHTTPTransport(cfg.URA.Timeout)

					var requestURL string
					switch c.String("kind") {
					case "detail":
						requestURL = requests.StopDetail(c.String("stop"))
					case "messages":
						requestURL = requests.StopMessages(c.String("stop"))
					default:
						requestURL = requests.Arrivals(c.String("stop"))
					}

					resp, err := client.Get(c.Context, requestURL)
					if err != nil {
						return err
					}
					if !resp.IsSuccess() {
						return cli.Exit(resp.StatusCode, 1)
					}

					decoder := ura.NewDecoderBytes(resp.Body)
					version, ok := decoder.Version()
					if !ok {
						log.Warn().Str("url", requestURL).Msg("Response has no usable version array")
						return nil
					}
					pretty.Println(version)

					for decoder.Next() {
						record, err := decoder.Record()
						if err != nil {
							log.Error().Err(err).Msg("Malformed line")
							continue
						}

						switch c.String("kind") {
						case "detail":
							detail, err := ura.MapStopDetail(record)
							printMapped(detail, err)
						case "messages":
							message, err := ura.MapMessage(record)
							printMapped(message, err)
						default:
							arrival, err := ura.MapArrival(record, version.ServerTime())
							printMapped(arrival, err)
						}
					}

					return decoder.Err()
				},
			},
			{
				Name:  "track",
				Usage: "follow arrivals at a stop and log every change",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "stop",
						Usage:    "stop code to follow",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "vehicle",
						Usage: "registration number to follow journey progress for",
					},
				},
				Action: func(c *cli.Context) error {
					cfg, err := config.Load(util.GetEnvironmentVariables(), c.String("config"))
					if err != nil {
						return err
					}

					tracker := NewTracker(Options{
						Requests:               ura.Requests{BaseURL: cfg.URA.BaseURL},
						Transport:              transport.NewHTTPTransport(cfg.URA.Timeout),
						ArrivalsRefresh:        cfg.Refresh.Arrivals,
						JourneyRefresh:         cfg.Refresh.Journey,
						DisplayRefresh:         cfg.Refresh.Display,
						MessagePriorityCeiling: cfg.Messages.PriorityCeiling,
					}, LogEvents)

					ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
					defer stop()

					go func() {
						if err := startTracking(tracker, c.String("stop"), c.String("vehicle")); err != nil {
							log.Error().Err(err).Str("stop", c.String("stop")).Msg("Failed to start tracking")
						}
					}()

					return tracker.Run(ctx)
				},
			},
		},
	}
}

// startTracking selects the stop and starts arrivals updates, then follows the vehicle when one is given
func startTracking(tracker *Tracker, stopCode string, vehicleID string) error {
	if err := tracker.SetCurrentStop(stopCode); err != nil {
		return err
	}
	if err := tracker.StartArrivalsUpdate(); err != nil {
		return err
	}

	if vehicleID == "" {
		return nil
	}
	if err := tracker.SetCurrentVehicle(vehicleID, "", ""); err != nil {
		return err
	}

	return tracker.StartJourneyProgressUpdate()
}

func printMapped(value interface{}, err error) {
	if err != nil {
		log.Warn().Err(err).Msg("Skipping record")
		return
	}

	pretty.Println(value)
}

// LogEvents is a Subscriber that writes data events to the log
func LogEvents(event ctdf.Event) {
	if event.IsDisplayOnly() {
		return
	}

	log.Info().Str("type", string(event.Type)).Interface("body", event.Body).Msg("Tracker event")
}

package api

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/travigo/countdown/pkg/arrivals"
	"github.com/travigo/countdown/pkg/config"
	"github.com/travigo/countdown/pkg/publisher"
	"github.com/travigo/countdown/pkg/redis_client"
	"github.com/travigo/countdown/pkg/stations"
	"github.com/travigo/countdown/pkg/transport"
	"github.com/travigo/countdown/pkg/ura"
	"github.com/travigo/countdown/pkg/util"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "run the countdown tracker and its web api",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "listen",
				Value: ":8080",
				Usage: "listen target for the web server",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.Load(util.GetEnvironmentVariables(), c.String("config"))
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := redis_client.Connect(cfg.Redis); err != nil {
				return err
			}
			defer redis_client.Close()

			store, err := stations.Open(ctx, cfg.Stations)
			if err != nil {
				return err
			}
			defer store.Close()

			httpTransport := transport.NewHTTPTransport(cfg.URA.Timeout)
			var metadataTransport transport.Transport = httpTransport
			var subscribers []arrivals.Subscriber

			if redis_client.Client != nil {
				if cfg.URA.CacheTTL > 0 {
					metadataTransport = transport.NewRedisCachingTransport(httpTransport, redis_client.Client, cfg.URA.CacheTTL)
				}

				eventPublisher, err := publisher.New(redis_client.Client, redis_client.QueueConnection)
				if err != nil {
					return err
				}
				go eventPublisher.Run(ctx)

				subscribers = append(subscribers, eventPublisher.Handle)
			}

			tracker := arrivals.NewTracker(arrivals.Options{
				Requests:               ura.Requests{BaseURL: cfg.URA.BaseURL},
				Transport:              httpTransport,
				MetadataTransport:      metadataTransport,
				Stations:               store,
				StationsURL:            cfg.Stations.URL,
				StationsPath:           cfg.Stations.Path,
				ArrivalsRefresh:        cfg.Refresh.Arrivals,
				JourneyRefresh:         cfg.Refresh.Journey,
				DisplayRefresh:         cfg.Refresh.Display,
				MessagePriorityCeiling: cfg.Messages.PriorityCeiling,
			}, subscribers...)

			trackerDone := make(chan error, 1)
			go func() {
				trackerDone <- tracker.Run(ctx)
			}()

			webApp := NewApp(tracker)
			go func() {
				<-ctx.Done()
				if err := webApp.Shutdown(); err != nil {
					log.Error().Err(err).Msg("Failed to shut down web api")
				}
			}()

			log.Info().Str("listen", c.String("listen")).Msg("Starting web api")
			if err := webApp.Listen(c.String("listen")); err != nil {
				stop()
				<-trackerDone
				return err
			}

			return <-trackerDone
		},
	}
}

package stations

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/travigo/countdown/pkg/config"
	"github.com/travigo/countdown/pkg/transport"
	"github.com/travigo/countdown/pkg/util"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "stations",
		Usage: "Manage the local stops and stations database",
		Subcommands: []*cli.Command{
			{
				Name:  "import",
				Usage: "download the station list if needed and import it",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "force-download",
						Usage: "download the station list even when a copy is already on disk",
					},
				},
				Action: func(c *cli.Context) error {
					cfg, err := config.Load(util.GetEnvironmentVariables(), c.String("config"))
					if err != nil {
						return err
					}

					store, err := Open(c.Context, cfg.Stations)
					if err != nil {
						return err
					}
					defer store.Close()

					if c.Bool("force-download") || !FileExists(cfg.Stations.Path) {
						client := transport.NewHTTPTransport(time.Minute)
						if err := Download(c.Context, client, cfg.Stations.URL, cfg.Stations.Path); err != nil {
							return err
						}
					}

					count, err := store.ImportStations(c.Context, cfg.Stations.Path)
					if err != nil {
						return err
					}

					log.Info().Int("stations", count).Str("backend", cfg.Stations.Backend).Msg("Station import complete")

					return nil
				},
			},
			{
				Name:  "list",
				Usage: "list stops in a category",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "category",
						Value: string(CategoryAll),
						Usage: "all, bus, river, station or favourite",
					},
				},
				Action: func(c *cli.Context) error {
					category, err := ParseCategory(c.String("category"))
					if err != nil {
						return err
					}

					cfg, err := config.Load(util.GetEnvironmentVariables(), c.String("config"))
					if err != nil {
						return err
					}

					store, err := Open(c.Context, cfg.Stations)
					if err != nil {
						return err
					}
					defer store.Close()

					stops, err := store.QueryStops(c.Context, category)
					if err != nil {
						return err
					}

					for _, stop := range stops {
						log.Info().
							Str("code", stop.ID).
							Str("name", stop.Name).
							Str("kind", stop.Kind.String()).
							Bool("favourite", stop.Favourite).
							Msg("Stop")
					}

					return nil
				},
			},
		},
	}
}

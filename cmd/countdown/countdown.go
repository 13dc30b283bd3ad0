package main

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/travigo/countdown/pkg/api"
	"github.com/travigo/countdown/pkg/arrivals"
	"github.com/travigo/countdown/pkg/publisher"
	"github.com/travigo/countdown/pkg/stations"
	"github.com/urfave/cli/v2"

	_ "time/tzdata"
)

func main() {
	// A missing .env is fine, the environment is used as is
	_ = godotenv.Load()

	if os.Getenv("TRAVIGO_LOG_FORMAT") != "JSON" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	if os.Getenv("TRAVIGO_DEBUG") == "YES" {
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
	} else {
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
	}

	app := &cli.App{
		Name:        "countdown",
		Description: "London bus and river bus countdown tracker",

		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "YAML config file applied over the environment",
				EnvVars: []string{"TRAVIGO_CONFIG"},
			},
		},

		Commands: []*cli.Command{
			api.RegisterCLI(),
			arrivals.RegisterCLI(),
			stations.RegisterCLI(),
			publisher.RegisterCLI(),
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal().Err(err).Send()
	}
}

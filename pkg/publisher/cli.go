package publisher

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/travigo/countdown/pkg/config"
	"github.com/travigo/countdown/pkg/redis_client"
	"github.com/travigo/countdown/pkg/util"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Print tracker events published to the redis queue",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "pretty print events instead of logging them",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.Load(util.GetEnvironmentVariables(), c.String("config"))
			if err != nil {
				return err
			}

			if cfg.Redis.Address == "" {
				return cli.Exit("watch needs TRAVIGO_REDIS_ADDRESS", 1)
			}

			if err := redis_client.Connect(cfg.Redis); err != nil {
				return err
			}

			watcher := Watcher{
				Connection:      redis_client.QueueConnection,
				NumberConsumers: 1,
				BatchSize:       20,
				Timeout:         2 * time.Second,
				Consumer:        &PrintConsumer{Pretty: c.Bool("pretty")},
			}
			if err := watcher.Setup(); err != nil {
				return err
			}

			signals := make(chan os.Signal, 1)
			signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(signals)

			<-signals // wait for signal
			go func() {
				<-signals // hard exit on second signal (in case shutdown gets stuck)
				os.Exit(1)
			}()

			redis_client.Close()

			return nil
		},
	}
}

package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/anicoll/chatbridge/cmd"
)

func main() {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:    "mqtt-host",
			EnvVars: []string{"MQTT_HOST"},
			Value:   "tcp://localhost:1883",
		},
		&cli.StringFlag{
			Name:    "mqtt-user",
			EnvVars: []string{"MQTT_USER"},
			Value:   "",
		},
		&cli.StringFlag{
			Name:    "mqtt-pass",
			EnvVars: []string{"MQTT_PASS"},
			Value:   "",
		},
		&cli.StringFlag{
			Name:    "nats-url",
			EnvVars: []string{"NATS_URL"},
			Value:   "nats://localhost:4222",
		},
		&cli.StringFlag{
			Name:    "log-level",
			EnvVars: []string{"LOG_LEVEL"},
			Value:   "INFO",
		},
	}

	brokerFlags := append([]cli.Flag{
		&cli.StringFlag{
			Name:     "telegram-token",
			EnvVars:  []string{"TELEGRAM_BOT_TOKEN"},
			Required: true,
		},
		&cli.StringFlag{
			Name:    "line-api-url",
			EnvVars: []string{"LINE_API_URL"},
			Value:   "https://api.line.me",
		},
		&cli.StringFlag{
			Name:    "line-token",
			EnvVars: []string{"LINE_ACCESS_TOKEN"},
			Value:   "",
		},
		&cli.StringFlag{
			Name:     "database-url",
			EnvVars:  []string{"DATABASE_URL"},
			Required: true,
		},
		&cli.StringFlag{
			Name:    "migrations-folder",
			EnvVars: []string{"MIGRATIONS_FOLDER"},
			Value:   "./migrations",
		},
	}, flags...)

	app := &cli.App{
		Name:  "chatbridge",
		Usage: "bridge chat platforms to IoT devices",
		Commands: []*cli.Command{
			{
				Name:   "broker",
				Usage:  "run the command dispatch and notification fan-out broker",
				Action: cmd.BrokerCommand,
				Flags:  brokerFlags,
			},
			{
				Name:   "device",
				Usage:  "run the simulated devices of the configured catalog",
				Action: cmd.DeviceCommand,
				Flags:  flags,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

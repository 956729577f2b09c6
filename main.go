package main

import (
	"log"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/anicoll/sensor-rewards/cmd"
)

func main() {
	app := &cli.App{
		Name:   "sensor-rewards",
		Usage:  "ingests sensor telemetry, persists it and rewards reporting sensors",
		Action: cmd.ServeCommand,
		Flags: []cli.Flag{
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
				Name:    "mqtt-client-id",
				EnvVars: []string{"MQTT_CLIENT_ID"},
				Value:   "sensor-rewards",
			},
			&cli.StringFlag{
				Name:    "mqtt-topic",
				EnvVars: []string{"MQTT_TOPIC"},
				Value:   "sensors/#",
			},
			&cli.StringFlag{
				Name:     "mongo-url",
				EnvVars:  []string{"MONGO_URL"},
				Required: true,
			},
			&cli.StringFlag{
				Name:    "mongo-database",
				EnvVars: []string{"MONGO_DATABASE"},
				Value:   "iot_data",
			},
			&cli.StringFlag{
				Name:    "mongo-collection",
				EnvVars: []string{"MONGO_COLLECTION"},
				Value:   "measurements",
			},
			&cli.DurationFlag{
				Name:    "store-timeout",
				EnvVars: []string{"STORE_TIMEOUT"},
				Value:   5 * time.Second,
			},
			&cli.StringFlag{
				Name:     "eth-rpc-url",
				EnvVars:  []string{"ETH_RPC_URL"},
				Required: true,
			},
			&cli.StringFlag{
				Name:     "token-contract",
				EnvVars:  []string{"TOKEN_CONTRACT"},
				Required: true,
			},
			&cli.Int64Flag{
				Name:    "chain-id",
				EnvVars: []string{"CHAIN_ID"},
				Value:   31337,
			},
			&cli.DurationFlag{
				Name:    "ledger-call-timeout",
				EnvVars: []string{"LEDGER_CALL_TIMEOUT"},
				Value:   10 * time.Second,
			},
			&cli.DurationFlag{
				Name:    "ledger-send-timeout",
				EnvVars: []string{"LEDGER_SEND_TIMEOUT"},
				Value:   30 * time.Second,
			},
			&cli.StringFlag{
				Name:    "listen-address",
				EnvVars: []string{"LISTEN_ADDRESS"},
				Value:   "0.0.0.0:8000",
			},
			&cli.IntFlag{
				Name:    "reward-queue-size",
				EnvVars: []string{"REWARD_QUEUE_SIZE"},
				Value:   256,
			},
			&cli.IntFlag{
				Name:    "reward-workers",
				EnvVars: []string{"REWARD_WORKERS"},
				Value:   2,
			},
			&cli.StringFlag{
				Name:    "balance-snapshot-schedule",
				EnvVars: []string{"BALANCE_SNAPSHOT_SCHEDULE"},
				Value:   "",
				Usage:   "cron expression for periodic reward balance snapshots, empty disables them",
			},
			&cli.StringFlag{
				Name:    "log-level",
				EnvVars: []string{"LOG_LEVEL"},
				Value:   "INFO",
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

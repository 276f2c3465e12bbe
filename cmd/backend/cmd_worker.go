package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"

	clientpkg "github.com/guildgate-org/backend/internal/client"
	eventpkg "github.com/guildgate-org/backend/internal/event"
	workerpkg "github.com/guildgate-org/backend/internal/worker"
)

var workerCommand = &cobra.Command{
	Use:   "worker",
	Short: "worker",
	Long:  "",
	RunE: func(cmd *cobra.Command, args []string) error {
		return workerCommandImpl()
	},
}

func workerCommandImpl() error {
	if os.Getenv("DEBUG") == "1" {
		godotenv.Load()
	}

	// Application
	application := fx.New(
		fx.NopLogger,
		fx.Provide(
			func() *zap.Logger {
				if os.Getenv("DEBUG") == "1" {
					logger, _ := zap.NewDevelopment()
					return logger
				}
				logger, _ := zap.NewProduction()
				return logger
			},

			// Kafka client
			func(logger *zap.Logger) (*eventpkg.KafkaClient, error) {
				kafkaHost := os.Getenv("KAFKA_HOST")
				if kafkaHost == "" {
					kafkaHost = "127.0.0.1"
				}

				kafkaPort := os.Getenv("KAFKA_PORT")
				if kafkaPort == "" {
					kafkaPort = "9092"
				}

				kafkaTopic := os.Getenv("KAFKA_TOPIC")
				if kafkaTopic == "" {
					kafkaTopic = "common"
				}

				kafkaGroup := os.Getenv("KAFKA_GROUP")
				if kafkaGroup == "" {
					kafkaGroup = "common"
				}

				kafkaClient, err := eventpkg.NewKafkaClient(
					kafkaHost,
					kafkaPort,
					kafkaTopic,
					kafkaGroup,
				)
				return kafkaClient, err
			},

			// Discord client
			func(logger *zap.Logger) *clientpkg.DiscordClient {
				return clientpkg.NewDiscordClient(os.Getenv("BOT_TOKEN"))
			},

			// Application
			func(
				lifecycle fx.Lifecycle,
				shutdowner fx.Shutdowner,
				logger *zap.Logger,
				kafkaClient *eventpkg.KafkaClient,
				discordClient *clientpkg.DiscordClient,
			) (*workerpkg.Worker, error) {
				roleName := os.Getenv("VERIFIED_ROLE_NAME")
				if roleName == "" {
					roleName = "member"
				}
				config := &workerpkg.Config{
					RoleName: roleName,
				}

				worker := workerpkg.NewWorker(logger, kafkaClient, discordClient, config)

				lifecycle.Append(fx.Hook{
					OnStart: func(ctx context.Context) error {
						return worker.Start()
					},
					OnStop: func(ctx context.Context) error {
						return worker.Stop()
					},
				})

				return worker, nil
			},
		),
		fx.Invoke(
			func(*eventpkg.KafkaClient) {},
			func(*workerpkg.Worker) {},
		),
	)
	application.Run()

	err := application.Err()
	if err != nil {
		os.Exit(1)
	}

	return nil
}

func init() {
	rootCommand.AddCommand(workerCommand)
}

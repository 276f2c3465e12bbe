package main

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"

	clientpkg "github.com/guildgate-org/backend/internal/client"
	eventpkg "github.com/guildgate-org/backend/internal/event"
	keepalivepkg "github.com/guildgate-org/backend/internal/keepalive"
	oauthpkg "github.com/guildgate-org/backend/internal/oauth"
	ormpkg "github.com/guildgate-org/backend/internal/orm"
	servicespkg "github.com/guildgate-org/backend/internal/services"
	membershippkg "github.com/guildgate-org/backend/internal/services/membership"
	verificationpkg "github.com/guildgate-org/backend/internal/services/verification"
	storepkg "github.com/guildgate-org/backend/internal/store"
	webpkg "github.com/guildgate-org/backend/internal/web"
)

var serverCommand = &cobra.Command{
	Use:   "server",
	Short: "server",
	Long:  "",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serverCommandImpl()
	},
}

func serverCommandImpl() error {
	if os.Getenv("DEBUG") == "1" {
		godotenv.Load()
	}

	// Application
	application := fx.New(
		fx.Provide(
			// Logger
			func() *zap.Logger {
				if os.Getenv("DEBUG") == "1" {
					logger, _ := zap.NewDevelopment()
					return logger
				}
				logger, _ := zap.NewProduction()
				return logger
			},

			// Store backend selected by STORE_BACKEND:
			// file (default), jsonbin, s3, postgres.
			func(logger *zap.Logger) (storepkg.Backend, error) {
				switch os.Getenv("STORE_BACKEND") {
				case "", "file":
					path := os.Getenv("STORE_FILE")
					if path == "" {
						path = "data/verified.json"
					}
					return storepkg.NewFileBackend(path), nil
				case "jsonbin":
					return storepkg.NewJSONBinBackend(
						os.Getenv("JSONBIN_URL"),
						os.Getenv("JSONBIN_BIN_ID"),
						os.Getenv("JSONBIN_API_KEY"),
					), nil
				case "s3":
					return storepkg.NewS3Backend(
						context.Background(),
						os.Getenv("S3_BUCKET"),
						os.Getenv("S3_KEY"),
					)
				case "postgres":
					db, err := ormpkg.NewPostgresClient(
						os.Getenv("POSTGRES_HOST"),
						os.Getenv("POSTGRES_PORT"),
						os.Getenv("POSTGRES_USER"),
						os.Getenv("POSTGRES_PASSWORD"),
					)
					if err != nil {
						return nil, err
					}
					return storepkg.NewPostgresBackend(db), nil
				default:
					return nil, fmt.Errorf("unknown STORE_BACKEND %q", os.Getenv("STORE_BACKEND"))
				}
			},
			storepkg.NewClient,

			// Clients
			func(logger *zap.Logger) *oauthpkg.Client {
				return oauthpkg.NewClient(
					logger,
					os.Getenv("CLIENT_ID"),
					os.Getenv("CLIENT_SECRET"),
					os.Getenv("SITE_URL")+"/callback",
				)
			},
			func(logger *zap.Logger) *clientpkg.DiscordClient {
				return clientpkg.NewDiscordClient(os.Getenv("BOT_TOKEN"))
			},
			func(logger *zap.Logger) (*eventpkg.KafkaClient, error) {
				return eventpkg.NewKafkaClient(
					os.Getenv("KAFKA_HOST"),
					os.Getenv("KAFKA_PORT"),
					os.Getenv("KAFKA_TOPIC"),
					os.Getenv("KAFKA_GROUP"),
				)
			},

			// Services
			verificationpkg.NewVerificationService,
			membershippkg.NewMembershipService,

			// HTTP handlers
			webpkg.NewCallbackHandler,
			webpkg.NewInteractionsHandler,

			// Main HTTP server
			func(
				lc fx.Lifecycle,
				log *zap.Logger,
				callbackHandler *webpkg.CallbackHandler,
				interactionsHandler *webpkg.InteractionsHandler,
			) (*webpkg.Web, error) {
				publicKey, err := hex.DecodeString(os.Getenv("DISCORD_PUBLIC_KEY"))
				if err != nil || len(publicKey) != ed25519.PublicKeySize {
					return nil, fmt.Errorf("DISCORD_PUBLIC_KEY must be a %d-byte hex key", ed25519.PublicKeySize)
				}

				port := os.Getenv("PORT")
				if port == "" {
					port = "4000"
				}

				web, err := webpkg.NewWeb(
					log,
					os.Getenv("HTTP_HOST"),
					port,
					ed25519.PublicKey(publicKey),
					callbackHandler,
					interactionsHandler,
				)
				if err != nil {
					return nil, err
				}
				lc.Append(fx.Hook{
					OnStart: func(ctx context.Context) error {
						return web.Start()
					},
					OnStop: func(ctx context.Context) error {
						return web.Stop()
					},
				})
				return web, nil
			},

			// Keepalive pinger (free-tier hosting), enabled with KEEPALIVE=1
			func(lc fx.Lifecycle, log *zap.Logger) *keepalivepkg.Keepalive {
				if os.Getenv("KEEPALIVE") != "1" {
					return nil
				}
				pinger := keepalivepkg.NewKeepalive(log, os.Getenv("SITE_URL")+"/callback")
				lc.Append(fx.Hook{
					OnStart: func(ctx context.Context) error {
						return pinger.Start()
					},
					OnStop: func(ctx context.Context) error {
						return pinger.Stop()
					},
				})
				return pinger
			},
		),
		fx.Invoke(
			func(*webpkg.Web) {},
			func(*keepalivepkg.Keepalive) {},
			func(servicespkg.MembershipService) {},
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
	rootCommand.AddCommand(serverCommand)
}

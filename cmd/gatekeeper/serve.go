package main

import (
	"database/sql"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"

	_ "github.com/mattn/go-sqlite3"

	"github.com/paylinkr/gatekeeper/adapters/events"
	"github.com/paylinkr/gatekeeper/adapters/store"
	"github.com/paylinkr/gatekeeper/adapters/tokenizer"
	"github.com/paylinkr/gatekeeper/config"
	"github.com/paylinkr/gatekeeper/internal/stacks"
	"github.com/paylinkr/gatekeeper/pkg/logger"
	"github.com/paylinkr/gatekeeper/service"
	transport "github.com/paylinkr/gatekeeper/transport/http"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			log := logger.New(cfg.Log.Level, !cfg.Server.Production())

			db, err := openDatabase(cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			redisOpts, err := redis.ParseURL(cfg.Redis.URL)
			if err != nil {
				return fmt.Errorf("failed to parse redis url: %w", err)
			}
			redisClient := redis.NewClient(redisOpts)
			defer redisClient.Close()

			publisher, err := redisstream.NewPublisher(
				redisstream.PublisherConfig{Client: redisClient},
				watermill.NewStdLogger(false, false),
			)
			if err != nil {
				return fmt.Errorf("failed to create event publisher: %w", err)
			}

			// The tokenizer refuses to start without a signing secret.
			jwtTokenizer, err := tokenizer.NewJWTTokenizer(cfg.Auth.Secret)
			if err != nil {
				return err
			}

			identities := store.NewBunIdentityStore(db)
			sessions := store.NewRedisSessionStore(redisClient)
			paytagStore := store.NewBunPayTagStore(db)
			eventPub := events.NewWatermillPublisher(publisher)

			opts := []service.Option{service.WithSessionTTL(cfg.Auth.SessionTTL)}
			if cfg.Auth.RequireFreshChallenge {
				opts = append(opts, service.WithFreshChallenge(
					store.NewRedisReplayGuard(redisClient), cfg.Auth.ChallengeTTL))
			}

			authService := service.NewAuthService(
				stacks.MessageVerifier{}, identities, sessions, jwtTokenizer, eventPub, log, opts...)
			accountService := service.NewAccountService(identities)
			paytagService := service.NewPayTagService(paytagStore, identities, eventPub, log)

			router := transport.SetupRouter(authService, accountService, paytagService, transport.RouterConfig{
				CookieSecure: cfg.Server.Production(),
				SessionTTL:   cfg.Auth.SessionTTL,
			})

			log.Info("starting gatekeeper", "addr", cfg.Server.Addr, "environment", cfg.Server.Environment)
			return router.Run(cfg.Server.Addr)
		},
	}
}

func openDatabase(cfg config.Database) (*bun.DB, error) {
	switch cfg.Driver {
	case "postgres":
		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.DSN)))
		return bun.NewDB(sqldb, pgdialect.New()), nil
	case "sqlite":
		sqldb, err := sql.Open("sqlite3", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		return bun.NewDB(sqldb, sqlitedialect.New()), nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

package cli

import (
	"context"
	"net/http"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shelfworks/shelfstack/internal/server"
	"github.com/shelfworks/shelfstack/pkg/catalog"
	"github.com/shelfworks/shelfstack/pkg/errors"
	"github.com/shelfworks/shelfstack/pkg/export"
	"github.com/shelfworks/shelfstack/pkg/snapshot"
)

// serveConfig is the TOML shape of --config. Flags set on the command line
// override whatever the file declares.
type serveConfig struct {
	Addr      string          `toml:"addr"`
	Store     string          `toml:"store"`
	RedisAddr string          `toml:"redis_addr"`
	MongoURI  string          `toml:"mongo_uri"`
	MongoDB   string          `toml:"mongo_db"`
	NoRules   bool            `toml:"no_rules"`
	Geometry  export.Geometry `toml:"geometry"`
}

// defaultServeConfig carries the flag defaults; a config file starts from
// these and overrides what it declares.
func defaultServeConfig() serveConfig {
	return serveConfig{
		Addr:      ":8080",
		Store:     "file",
		RedisAddr: "localhost:6379",
		MongoDB:   "shelfstack",
		Geometry:  export.DefaultGeometry,
	}
}

// serveCommand runs the HTTP editing API.
func (c *CLI) serveCommand() *cobra.Command {
	flags := defaultServeConfig()
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the planogram editing HTTP API",
		Long: `Serve exposes editing sessions over HTTP.

Sessions persist to the selected snapshot store:
  memory   single process, lost on restart
  file     JSON files under the state directory (default)
  redis    shared store for multi-instance deployments

The product catalog comes from --catalog (TOML) or, with --mongo-uri,
from a MongoDB collection named "skus". All settings can also live in a
TOML file passed with --config; explicit flags win over the file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			cfg, err := resolveServeConfig(cmd, configPath, flags)
			if err != nil {
				return err
			}

			lib, err := c.library()
			if err != nil {
				return err
			}

			cat, cleanup, err := c.serveCatalog(ctx, cfg.MongoURI, cfg.MongoDB)
			if err != nil {
				return err
			}
			if cleanup != nil {
				defer cleanup()
			}

			store, err := newStore(cfg.Store, cfg.RedisAddr)
			if err != nil {
				return err
			}
			defer store.Close()

			srv := server.New(server.Config{
				Library:  lib,
				Catalog:  cat,
				Store:    store,
				Logger:   logger,
				Geometry: cfg.Geometry,
				Rules:    !cfg.NoRules,
			})

			httpServer := &http.Server{
				Addr:              cfg.Addr,
				Handler:           srv.Handler(),
				ReadHeaderTimeout: 5 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() { errCh <- httpServer.ListenAndServe() }()
			logger.Info("listening", "addr", cfg.Addr, "store", cfg.Store, "rules", !cfg.NoRules)

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				logger.Info("shutting down")
				return httpServer.Shutdown(shutdownCtx)
			}
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "TOML config file for the server")
	cmd.Flags().StringVar(&flags.Addr, "addr", flags.Addr, "listen address")
	cmd.Flags().StringVar(&flags.Store, "store", flags.Store, "snapshot store: memory, file, or redis")
	cmd.Flags().StringVar(&flags.RedisAddr, "redis-addr", flags.RedisAddr, "redis address for --store redis")
	cmd.Flags().StringVar(&flags.MongoURI, "mongo-uri", flags.MongoURI, "mongodb connection string for the product catalog")
	cmd.Flags().StringVar(&flags.MongoDB, "mongo-db", flags.MongoDB, "mongodb database holding the skus collection")
	cmd.Flags().BoolVar(&flags.NoRules, "no-rules", flags.NoRules, "skip business rules, keep physical checks")
	return cmd
}

// resolveServeConfig merges the config file with command-line flags. The
// file overrides the built-in defaults; flags the user actually set
// override the file.
func resolveServeConfig(cmd *cobra.Command, configPath string, flags serveConfig) (serveConfig, error) {
	if configPath == "" {
		return flags, nil
	}

	cfg := defaultServeConfig()
	if _, err := toml.DecodeFile(configPath, &cfg); err != nil {
		return serveConfig{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "load server config %s", configPath)
	}

	if cmd.Flags().Changed("addr") {
		cfg.Addr = flags.Addr
	}
	if cmd.Flags().Changed("store") {
		cfg.Store = flags.Store
	}
	if cmd.Flags().Changed("redis-addr") {
		cfg.RedisAddr = flags.RedisAddr
	}
	if cmd.Flags().Changed("mongo-uri") {
		cfg.MongoURI = flags.MongoURI
	}
	if cmd.Flags().Changed("mongo-db") {
		cfg.MongoDB = flags.MongoDB
	}
	if cmd.Flags().Changed("no-rules") {
		cfg.NoRules = flags.NoRules
	}
	return cfg, nil
}

// serveCatalog picks the catalog backend: MongoDB when a URI is given, the
// --catalog TOML file otherwise.
func (c *CLI) serveCatalog(ctx context.Context, mongoURI, mongoDB string) (catalog.Source, func(), error) {
	if mongoURI != "" {
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
		if err != nil {
			return nil, nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "connect mongodb")
		}
		cleanup := func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(disconnectCtx)
		}
		return catalog.NewMongoSource(client.Database(mongoDB).Collection("skus")), cleanup, nil
	}

	src, err := c.productCatalog()
	if err != nil {
		return nil, nil, err
	}
	return src, nil, nil
}

func newStore(kind, redisAddr string) (snapshot.Store, error) {
	switch kind {
	case "memory":
		return snapshot.NewMemoryStore(), nil
	case "file":
		dir, err := snapshotDir()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "resolve snapshot dir")
		}
		return snapshot.NewFileStore(dir)
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: redisAddr})
		return snapshot.NewRedisStore(client), nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown store %q, use memory, file, or redis", kind)
	}
}

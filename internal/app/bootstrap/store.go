package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	appconfig "github.com/wolfman30/leadcapture-api/internal/config"
	"github.com/wolfman30/leadcapture-api/internal/leads"
	"github.com/wolfman30/leadcapture-api/pkg/logging"
)

// Store is the lead repository chosen at startup plus its cleanup hook.
type Store struct {
	Repo   leads.Repository
	Driver string
	Ping   func(context.Context) error
	Close  func(context.Context) error
}

// BuildLeadStore opens the store selected by STORE_DRIVER.
func BuildLeadStore(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (*Store, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	timeout := cfg.StoreTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	driver := cfg.ResolveStoreDriver()
	switch driver {
	case appconfig.StorePostgres:
		pool, err := connectPostgresPool(ctx, cfg.DatabaseURL, timeout)
		if err != nil {
			return nil, err
		}
		logger.Info("lead store ready", "driver", driver)
		return &Store{
			Repo:   leads.NewPostgresRepository(pool),
			Driver: driver,
			Ping:   pool.Ping,
			Close: func(context.Context) error {
				pool.Close()
				return nil
			},
		}, nil

	case appconfig.StoreMongo:
		client, err := connectMongo(ctx, cfg.MongoURI, timeout)
		if err != nil {
			return nil, err
		}
		repo := leads.NewMongoRepository(client.Database(cfg.MongoDatabase))
		if cfg.AutoMigrateMongo {
			idxCtx, cancel := context.WithTimeout(ctx, timeout)
			err := repo.EnsureIndexes(idxCtx)
			cancel()
			if err != nil {
				_ = client.Disconnect(context.Background())
				return nil, fmt.Errorf("bootstrap: ensure mongo indexes: %w", err)
			}
		}
		logger.Info("lead store ready", "driver", driver, "database", cfg.MongoDatabase)
		return &Store{
			Repo:   repo,
			Driver: driver,
			Ping:   func(ctx context.Context) error { return client.Ping(ctx, nil) },
			Close:  client.Disconnect,
		}, nil

	default:
		logger.Warn("using in-memory lead store; leads are lost on restart")
		return &Store{
			Repo:   leads.NewInMemoryRepository(),
			Driver: appconfig.StoreMemory,
			Ping:   func(context.Context) error { return nil },
			Close:  func(context.Context) error { return nil },
		}, nil
	}
}

func connectPostgresPool(ctx context.Context, url string, timeout time.Duration) (*pgxpool.Pool, error) {
	if url == "" {
		return nil, fmt.Errorf("bootstrap: DATABASE_URL is required for postgres")
	}
	poolCfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: parse DATABASE_URL: %w", err)
	}
	poolCfg.MaxConns = 10
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(connectCtx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: connect postgres: %w", err)
	}
	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("bootstrap: ping postgres: %w", err)
	}
	return pool, nil
}

func connectMongo(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	if uri == "" {
		return nil, fmt.Errorf("bootstrap: MONGODB_URI is required for mongo")
	}
	client, err := mongo.Connect(options.Client().
		ApplyURI(uri).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout))
	if err != nil {
		return nil, fmt.Errorf("bootstrap: connect mongo: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("bootstrap: ping mongo: %w", err)
	}
	return client, nil
}

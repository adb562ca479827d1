// Package app initializes and holds long-lived application services, acting as
// a dependency injection container for the CLI commands.
package app

import (
	"context"
	"fmt"

	gstorage "cloud.google.com/go/storage"
	"go.uber.org/zap"

	"github.com/kedra-data/wrc-harvester/internal/config"
	"github.com/kedra-data/wrc-harvester/internal/harvest"
	metamemory "github.com/kedra-data/wrc-harvester/internal/metastore/memory"
	metamongo "github.com/kedra-data/wrc-harvester/internal/metastore/mongo"
	metapostgres "github.com/kedra-data/wrc-harvester/internal/metastore/postgres"
	pubmemory "github.com/kedra-data/wrc-harvester/internal/publisher/memory"
	pubgcp "github.com/kedra-data/wrc-harvester/internal/publisher/pubsub"
	blobgcs "github.com/kedra-data/wrc-harvester/internal/storage/gcs"
	blobmemory "github.com/kedra-data/wrc-harvester/internal/storage/memory"
	blobminio "github.com/kedra-data/wrc-harvester/internal/storage/minio"
)

// App holds the shared services built from configuration: the two blob
// buckets, the metadata store, and the optional event publisher.
type App struct {
	Logger    *zap.Logger
	Landing   harvest.BlobStore
	Staging   harvest.BlobStore
	Meta      harvest.MetadataStore
	Publisher harvest.Publisher

	closers []func(context.Context) error
}

// New builds the App from configuration, failing fast if any backing service
// cannot be reached.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	a := &App{Logger: logger}

	if err := a.initBlobStores(ctx, cfg); err != nil {
		return nil, err
	}
	if err := a.initMetadataStore(ctx, cfg); err != nil {
		return nil, err
	}
	if err := a.initPublisher(ctx, cfg); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *App) initBlobStores(ctx context.Context, cfg config.Config) error {
	switch cfg.Storage.Driver {
	case "minio":
		mcfg := blobminio.Config{
			Endpoint:  cfg.Storage.Minio.Endpoint,
			AccessKey: cfg.Storage.Minio.AccessKey,
			SecretKey: cfg.Storage.Minio.SecretKey,
			UseSSL:    cfg.Storage.Minio.UseSSL,
		}
		landing, err := blobminio.New(ctx, mcfg, cfg.Storage.LandingBucket)
		if err != nil {
			return fmt.Errorf("init landing bucket: %w", err)
		}
		staging, err := blobminio.New(ctx, mcfg, cfg.Storage.StagingBucket)
		if err != nil {
			return fmt.Errorf("init staging bucket: %w", err)
		}
		a.Landing, a.Staging = landing, staging
	case "gcs":
		client, err := gstorage.NewClient(ctx)
		if err != nil {
			return fmt.Errorf("init gcs client: %w", err)
		}
		a.closers = append(a.closers, func(context.Context) error { return client.Close() })
		landing, err := blobgcs.New(client, cfg.Storage.LandingBucket)
		if err != nil {
			return fmt.Errorf("init landing bucket: %w", err)
		}
		staging, err := blobgcs.New(client, cfg.Storage.StagingBucket)
		if err != nil {
			return fmt.Errorf("init staging bucket: %w", err)
		}
		a.Landing, a.Staging = landing, staging
	case "memory":
		a.Landing = blobmemory.NewBlobStore(cfg.Storage.LandingBucket)
		a.Staging = blobmemory.NewBlobStore(cfg.Storage.StagingBucket)
	default:
		return &harvest.ConfigError{Reason: fmt.Sprintf("unknown storage driver %q", cfg.Storage.Driver)}
	}
	a.Logger.Info("blob storage initialized",
		zap.String("driver", cfg.Storage.Driver),
		zap.String("landing", cfg.Storage.LandingBucket),
		zap.String("staging", cfg.Storage.StagingBucket),
	)
	return nil
}

func (a *App) initMetadataStore(ctx context.Context, cfg config.Config) error {
	switch cfg.Metadata.Driver {
	case "mongo":
		store, err := metamongo.New(ctx, metamongo.Config{
			URI:               cfg.Metadata.Mongo.URI,
			Database:          cfg.Metadata.Mongo.Database,
			LandingCollection: cfg.Metadata.Mongo.LandingCollection,
			StagingCollection: cfg.Metadata.Mongo.StagingCollection,
		})
		if err != nil {
			return fmt.Errorf("init mongo metadata store: %w", err)
		}
		a.Meta = store
	case "postgres":
		store, err := metapostgres.New(ctx, metapostgres.Config{
			DSN:          cfg.Metadata.Postgres.DSN,
			LandingTable: cfg.Metadata.Postgres.LandingTable,
			StagingTable: cfg.Metadata.Postgres.StagingTable,
			MaxConns:     cfg.Metadata.Postgres.MaxConns,
		})
		if err != nil {
			return fmt.Errorf("init postgres metadata store: %w", err)
		}
		a.Meta = store
	case "memory":
		a.Meta = metamemory.NewStore()
	default:
		return &harvest.ConfigError{Reason: fmt.Sprintf("unknown metadata driver %q", cfg.Metadata.Driver)}
	}
	a.closers = append(a.closers, a.Meta.Close)
	a.Logger.Info("metadata store initialized", zap.String("driver", cfg.Metadata.Driver))
	return nil
}

func (a *App) initPublisher(ctx context.Context, cfg config.Config) error {
	switch cfg.Publisher.Driver {
	case "none":
		a.Publisher = nil
	case "memory":
		a.Publisher = pubmemory.New()
	case "pubsub":
		pub, err := pubgcp.New(ctx, cfg.Publisher.ProjectID, cfg.Publisher.Topic)
		if err != nil {
			return fmt.Errorf("init pubsub publisher: %w", err)
		}
		a.Publisher = pub
		a.closers = append(a.closers, func(context.Context) error { return pub.Close() })
	default:
		return &harvest.ConfigError{Reason: fmt.Sprintf("unknown publisher driver %q", cfg.Publisher.Driver)}
	}
	return nil
}

// Close shuts down every service the App owns, in reverse construction order.
func (a *App) Close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			a.Logger.Warn("service shutdown error", zap.Error(err))
		}
	}
	if err := a.Logger.Sync(); err != nil {
		// Best effort; stderr may already be closed.
		_ = err
	}
}

// Package mongo provides a MetadataStore backed by MongoDB.
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kedra-data/wrc-harvester/internal/harvest"
)

// Config captures the parameters required to connect to MongoDB.
type Config struct {
	URI               string
	Database          string
	LandingCollection string
	StagingCollection string
}

func (c Config) withDefaults() Config {
	if c.Database == "" {
		c.Database = "workplacerelations_metadata"
	}
	if c.LandingCollection == "" {
		c.LandingCollection = "lnd_documents_metadata"
	}
	if c.StagingCollection == "" {
		c.StagingCollection = "stg_documents_metadata"
	}
	return c
}

// Store persists harvest metadata in the landing and staging collections.
type Store struct {
	client  *mongo.Client
	landing *mongo.Collection
	staging *mongo.Collection
}

// New connects to MongoDB, pings it, and ensures the upsert and range-query
// indexes exist.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("mongo uri is required")
	}
	cfg = cfg.withDefaults()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(cfg.Database)
	s := &Store{
		client:  client,
		landing: db.Collection(cfg.LandingCollection),
		staging: db.Collection(cfg.StagingCollection),
	}
	s.ensureIndexes(ctx)
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) {
	models := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "Id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "partitionTs", Value: 1}}},
	}
	_, _ = s.landing.Indexes().CreateMany(ctx, models)
	_, _ = s.staging.Indexes().CreateMany(ctx, models)
}

// UpsertLanding inserts or fully replaces the landing record keyed by Id.
func (s *Store) UpsertLanding(ctx context.Context, rec harvest.HarvestRecord) error {
	return upsert(ctx, s.landing, rec.ID, rec)
}

// UpsertStaging inserts or fully replaces the staging record keyed by Id.
func (s *Store) UpsertStaging(ctx context.Context, rec harvest.StagingRecord) error {
	return upsert(ctx, s.staging, rec.ID, rec)
}

func upsert(ctx context.Context, coll *mongo.Collection, id string, doc any) error {
	if id == "" {
		return fmt.Errorf("record id is required")
	}
	_, err := coll.UpdateOne(ctx,
		bson.M{"Id": id},
		bson.M{"$set": doc},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upsert %s into %s: %w", id, coll.Name(), err)
	}
	return nil
}

// FindLanding returns all landing records whose partition timestamp falls in
// [from, to].
func (s *Store) FindLanding(ctx context.Context, from, to time.Time) ([]harvest.HarvestRecord, error) {
	filter := bson.M{
		"partitionTs": bson.M{
			"$gte": from,
			"$lte": to,
		},
	}
	cursor, err := s.landing.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find landing records: %w", err)
	}
	defer func() { _ = cursor.Close(ctx) }()

	var recs []harvest.HarvestRecord
	if err := cursor.All(ctx, &recs); err != nil {
		return nil, fmt.Errorf("decode landing records: %w", err)
	}
	return recs, nil
}

// Close disconnects the underlying client.
func (s *Store) Close(ctx context.Context) error {
	if err := s.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("disconnect mongo: %w", err)
	}
	return nil
}

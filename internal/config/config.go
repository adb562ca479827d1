// Package config loads and validates harvester configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/kedra-data/wrc-harvester/internal/harvest"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Harvest   HarvestConfig   `mapstructure:"harvest"`
	Promote   PromoteConfig   `mapstructure:"promote"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Metadata  MetadataConfig  `mapstructure:"metadata"`
	Publisher PublisherConfig `mapstructure:"publisher"`
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// HarvestConfig governs the crawl pipeline.
type HarvestConfig struct {
	StartDate            string   `mapstructure:"start_date"`
	EndDate              string   `mapstructure:"end_date"`
	Query                string   `mapstructure:"query"`
	BodyKeywords         []string `mapstructure:"body_keywords"`
	PartitionDays        int      `mapstructure:"partition_days"`
	BaseURL              string   `mapstructure:"base_url"`
	PageParam            string   `mapstructure:"page_param"`
	FollowConcurrency    int      `mapstructure:"follow_concurrency"`
	PartitionConcurrency int      `mapstructure:"partition_concurrency"`
	UserAgent            string   `mapstructure:"user_agent"`
}

// PromoteConfig governs the transformation batch.
type PromoteConfig struct {
	StartDate string `mapstructure:"start_date"`
	EndDate   string `mapstructure:"end_date"`
}

// HTTPConfig configures the fetch engine's HTTP client.
type HTTPConfig struct {
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// StorageConfig selects and configures the blob store driver.
type StorageConfig struct {
	Driver        string      `mapstructure:"driver"`
	LandingBucket string      `mapstructure:"landing_bucket"`
	StagingBucket string      `mapstructure:"staging_bucket"`
	Minio         MinioConfig `mapstructure:"minio"`
	GCS           GCSConfig   `mapstructure:"gcs"`
}

// MinioConfig holds MinIO connection parameters.
type MinioConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

// GCSConfig holds Google Cloud Storage parameters.
type GCSConfig struct {
	ProjectID string `mapstructure:"project_id"`
}

// MetadataConfig selects and configures the metadata store driver.
type MetadataConfig struct {
	Driver   string         `mapstructure:"driver"`
	Mongo    MongoConfig    `mapstructure:"mongo"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

// MongoConfig holds MongoDB connection parameters.
type MongoConfig struct {
	URI               string `mapstructure:"uri"`
	Database          string `mapstructure:"database"`
	LandingCollection string `mapstructure:"landing_collection"`
	StagingCollection string `mapstructure:"staging_collection"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	DSN          string `mapstructure:"dsn"`
	LandingTable string `mapstructure:"landing_table"`
	StagingTable string `mapstructure:"staging_table"`
	MaxConns     int32  `mapstructure:"max_conns"`
}

// PublisherConfig selects the optional ingestion-event publisher.
type PublisherConfig struct {
	Driver    string `mapstructure:"driver"`
	ProjectID string `mapstructure:"project_id"`
	Topic     string `mapstructure:"topic"`
}

// ServerConfig controls the metrics/health endpoint.
type ServerConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("HARVESTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("harvest.partition_days", 7)
	v.SetDefault("harvest.page_param", "page")
	v.SetDefault("harvest.follow_concurrency", 4)
	v.SetDefault("harvest.partition_concurrency", 2)
	v.SetDefault("harvest.user_agent", "wrc-harvester/1.0")
	v.SetDefault("http.timeout_seconds", 15)
	v.SetDefault("storage.driver", "minio")
	v.SetDefault("storage.landing_bucket", "landing")
	v.SetDefault("storage.staging_bucket", "staging")
	v.SetDefault("storage.minio.endpoint", "localhost:9000")
	v.SetDefault("storage.minio.use_ssl", false)
	v.SetDefault("metadata.driver", "mongo")
	v.SetDefault("metadata.mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("metadata.mongo.database", "workplacerelations_metadata")
	v.SetDefault("metadata.mongo.landing_collection", "lnd_documents_metadata")
	v.SetDefault("metadata.mongo.staging_collection", "stg_documents_metadata")
	v.SetDefault("publisher.driver", "none")
	v.SetDefault("server.enabled", false)
	v.SetDefault("server.port", 9090)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits. Run dates are
// validated where they are consumed so that promote-only invocations do not
// require harvest dates and vice versa.
func (c Config) Validate() error {
	if c.Harvest.PartitionDays <= 0 {
		return &harvest.ConfigError{Reason: "harvest.partition_days must be > 0"}
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return &harvest.ConfigError{Reason: "http.timeout_seconds must be > 0"}
	}
	switch c.Storage.Driver {
	case "minio", "gcs", "memory":
	default:
		return &harvest.ConfigError{Reason: fmt.Sprintf("unknown storage driver %q", c.Storage.Driver)}
	}
	switch c.Metadata.Driver {
	case "mongo", "postgres", "memory":
	default:
		return &harvest.ConfigError{Reason: fmt.Sprintf("unknown metadata driver %q", c.Metadata.Driver)}
	}
	switch c.Publisher.Driver {
	case "none", "memory", "pubsub":
	default:
		return &harvest.ConfigError{Reason: fmt.Sprintf("unknown publisher driver %q", c.Publisher.Driver)}
	}
	if c.Server.Enabled && c.Server.Port <= 0 {
		return &harvest.ConfigError{Reason: "server.port must be > 0 when the server is enabled"}
	}
	return nil
}

// ParseDateRange parses a dd/mm/yyyy start/end pair and checks ordering.
func ParseDateRange(start, end string) (time.Time, time.Time, error) {
	from, err := time.Parse(harvest.DateLayout, start)
	if err != nil {
		return time.Time{}, time.Time{}, &harvest.ConfigError{Reason: fmt.Sprintf("invalid start date %q (want dd/mm/yyyy)", start)}
	}
	to, err := time.Parse(harvest.DateLayout, end)
	if err != nil {
		return time.Time{}, time.Time{}, &harvest.ConfigError{Reason: fmt.Sprintf("invalid end date %q (want dd/mm/yyyy)", end)}
	}
	if from.After(to) {
		return time.Time{}, time.Time{}, &harvest.ConfigError{Reason: fmt.Sprintf("start date %s is after end date %s", start, end)}
	}
	return from, to, nil
}

// FetchTimeout converts the HTTP timeout config into a duration.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}

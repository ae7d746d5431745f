package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/schoolsite/school-content/pkg/schoolcontent"
	repomemory "github.com/schoolsite/school-content/pkg/schoolcontent/repo/memory"
	repopg "github.com/schoolsite/school-content/pkg/schoolcontent/repo/postgres"
	fsstorage "github.com/schoolsite/school-content/pkg/schoolcontent/storage/fs"
	s3storage "github.com/schoolsite/school-content/pkg/schoolcontent/storage/s3"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of
// library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		Port:          "8080",
		Environment:   "development",
		DatabaseType:  "memory",
		UploadDir:     "./data/uploads",
		JWTSecret:     "dev-secret",
		VerifySeconds: 5,
		Storage: RemoteStorageConfig{
			Bucket: "school",
			Region: "us-east-1",
		},
	}
}

// ServerConfig represents server configuration for the school-content service
type ServerConfig struct {
	Port        string `env:"PORT"`
	Environment string `env:"ENVIRONMENT"` // development, production, testing

	// Database configuration
	DatabaseURL  string `env:"DATABASE_URL"`
	DatabaseType string // "memory", "postgres"; derived from DatabaseURL

	// Remote object storage; endpoint presence toggles the remote
	// persistence strategy.
	Storage RemoteStorageConfig

	// Legacy local uploads folder (pre-migration installations)
	UploadDir string `env:"UPLOAD_DIR"`

	// Admin auth
	JWTSecret string `env:"JWT_SECRET"`

	// Reachability probe timeout, seconds
	VerifySeconds int `env:"STORAGE_VERIFY_TIMEOUT"`
}

// RemoteStorageConfig configures the S3-compatible object storage backend.
type RemoteStorageConfig struct {
	Endpoint        string `env:"STORAGE_ENDPOINT"`
	Bucket          string `env:"STORAGE_BUCKET"`
	Region          string `env:"STORAGE_REGION"`
	AccessKeyID     string `env:"STORAGE_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"STORAGE_SECRET_ACCESS_KEY"`
	PublicBaseURL   string `env:"STORAGE_PUBLIC_URL"`
	UsePathStyle    bool   `env:"STORAGE_USE_PATH_STYLE"`
	CreateBucket    bool   `env:"STORAGE_CREATE_BUCKET"`
}

// Configured reports whether remote storage credentials are present. When
// false, every upload persists as a database row.
func (c RemoteStorageConfig) Configured() bool {
	return c.Endpoint != "" && c.Bucket != "" && c.AccessKeyID != "" && c.SecretAccessKey != ""
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}
	if c.DatabaseType != "memory" && c.DatabaseType != "postgres" {
		return errors.New("database_type must be 'memory' or 'postgres'")
	}
	if c.DatabaseType == "postgres" && c.DatabaseURL == "" {
		return errors.New("database_url is required when using postgres")
	}
	if c.VerifySeconds <= 0 {
		return errors.New("storage verify timeout must be positive")
	}
	return nil
}

// BuildService creates a Service instance from the server configuration
func (c *ServerConfig) BuildService(logger *slog.Logger) (schoolcontent.Service, error) {
	repo, err := c.buildRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to build repository: %w", err)
	}

	options := []schoolcontent.Option{
		schoolcontent.WithRepository(repo),
		schoolcontent.WithLogger(logger),
		schoolcontent.WithURLVerifier(
			schoolcontent.NewHTTPVerifier(time.Duration(c.VerifySeconds) * time.Second)),
	}

	if c.Storage.Configured() {
		store, err := s3storage.New(s3storage.Config{
			Region:                 c.Storage.Region,
			Bucket:                 c.Storage.Bucket,
			AccessKeyID:            c.Storage.AccessKeyID,
			SecretAccessKey:        c.Storage.SecretAccessKey,
			Endpoint:               c.Storage.Endpoint,
			UsePathStyle:           c.Storage.UsePathStyle,
			PublicBaseURL:          c.Storage.PublicBaseURL,
			CreateBucketIfNotExist: c.Storage.CreateBucket,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to build storage backend: %w", err)
		}
		options = append(options, schoolcontent.WithRemoteStore(store, c.Storage.Bucket))
	}

	return schoolcontent.New(options...)
}

// BuildLegacyStore creates the filesystem backend over the legacy local
// uploads folder.
func (c *ServerConfig) BuildLegacyStore() (*fsstorage.Backend, error) {
	return fsstorage.New(fsstorage.Config{BaseDir: c.UploadDir})
}

// buildRepository creates a Repository based on the configuration
func (c *ServerConfig) buildRepository() (schoolcontent.Repository, error) {
	switch c.DatabaseType {
	case "memory":
		return repomemory.New(), nil
	case "postgres":
		pool, err := pgxpool.New(context.Background(), c.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create pgx pool: %w", err)
		}
		return repopg.NewWithPool(pool), nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}
}

// PingPostgres verifies connectivity to Postgres.
func PingPostgres(databaseURL string) error {
	if databaseURL == "" {
		return errors.New("database_url is required")
	}
	pool, err := pgxpool.New(context.Background(), databaseURL)
	if err != nil {
		return fmt.Errorf("failed to create pgx pool: %w", err)
	}
	defer pool.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

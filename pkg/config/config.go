package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "gallery"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "GALLERY_DB_DSN"
	EnvDBHost = "GALLERY_DB_HOST"
	EnvDBUser = "GALLERY_DB_USER"
	EnvDBName = "GALLERY_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	Blob         BlobConfig
	Sweep        SweepConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"GALLERY_APP_ENV" required:"true"`
	Port         string `envconfig:"GALLERY_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"GALLERY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"GALLERY_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"GALLERY_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"GALLERY_DB_DSN"`
	Driver string `envconfig:"GALLERY_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"GALLERY_DB_HOST"`
	LegacyPort     int    `envconfig:"GALLERY_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"GALLERY_DB_USER"`
	LegacyPassword string `envconfig:"GALLERY_DB_PASSWORD"`
	LegacyName     string `envconfig:"GALLERY_DB_NAME"`
	LegacySSLMode  string `envconfig:"GALLERY_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"GALLERY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"GALLERY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"GALLERY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"GALLERY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"GALLERY_REDIS_URL" required:"true"`
	Address      string        `envconfig:"GALLERY_REDIS_ADDR"`
	Password     string        `envconfig:"GALLERY_REDIS_PASSWORD"`
	DB           int           `envconfig:"GALLERY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"GALLERY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"GALLERY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"GALLERY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GALLERY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"GALLERY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// BlobConfig points at the S3-compatible object store (R2, MinIO, S3).
type BlobConfig struct {
	Endpoint  string `envconfig:"GALLERY_BLOB_ENDPOINT" required:"true"`
	Region    string `envconfig:"GALLERY_BLOB_REGION" default:"auto"`
	Bucket    string `envconfig:"GALLERY_BLOB_BUCKET" required:"true"`
	AccessKey string `envconfig:"GALLERY_BLOB_ACCESS_KEY" required:"true"`
	SecretKey string `envconfig:"GALLERY_BLOB_SECRET_KEY" required:"true"`
	UseSSL    bool   `envconfig:"GALLERY_BLOB_USE_SSL" default:"true"`
	PathStyle bool   `envconfig:"GALLERY_BLOB_PATH_STYLE" default:"false"`
}

// SweepConfig tunes the orphan-blob reconciliation job.
type SweepConfig struct {
	Interval time.Duration `envconfig:"GALLERY_SWEEP_INTERVAL" default:"24h"`
	MinAge   time.Duration `envconfig:"GALLERY_SWEEP_MIN_AGE" default:"1h"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"GALLERY_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "matchpay"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "MATCHPAY_DB_DSN"
	EnvDBHost = "MATCHPAY_DB_HOST"
	EnvDBUser = "MATCHPAY_DB_USER"
	EnvDBName = "MATCHPAY_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	Roster       RosterConfig
	Messaging    MessagingConfig
	GCP          GCPConfig
	GCS          GCSConfig
	PubSub       PubSubConfig
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
	Env          string `envconfig:"MATCHPAY_APP_ENV" required:"true"`
	Port         string `envconfig:"MATCHPAY_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"MATCHPAY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MATCHPAY_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"MATCHPAY_DB_DSN"`
	Driver string `envconfig:"MATCHPAY_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"MATCHPAY_DB_HOST"`
	LegacyPort     int    `envconfig:"MATCHPAY_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"MATCHPAY_DB_USER"`
	LegacyPassword string `envconfig:"MATCHPAY_DB_PASSWORD"`
	LegacyName     string `envconfig:"MATCHPAY_DB_NAME"`
	LegacySSLMode  string `envconfig:"MATCHPAY_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MATCHPAY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MATCHPAY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MATCHPAY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MATCHPAY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MATCHPAY_REDIS_URL"`
	Address      string        `envconfig:"MATCHPAY_REDIS_ADDR"`
	Password     string        `envconfig:"MATCHPAY_REDIS_PASSWORD"`
	DB           int           `envconfig:"MATCHPAY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MATCHPAY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MATCHPAY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MATCHPAY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MATCHPAY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MATCHPAY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// JWTConfig verifies bearer tokens minted by the team-management auth service.
// This service never issues tokens itself.
type JWTConfig struct {
	Secret string `envconfig:"MATCHPAY_JWT_SECRET" required:"true"`
	Issuer string `envconfig:"MATCHPAY_JWT_ISSUER" required:"true"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"MATCHPAY_AUTO_MIGRATE" default:"false"`
}

// RosterConfig points at the team-management API that owns players,
// availability polls and match scheduling.
type RosterConfig struct {
	BaseURL string        `envconfig:"MATCHPAY_ROSTER_BASE_URL" required:"true"`
	APIKey  string        `envconfig:"MATCHPAY_ROSTER_API_KEY"`
	Timeout time.Duration `envconfig:"MATCHPAY_ROSTER_TIMEOUT" default:"10s"`
}

// MessagingConfig configures the WhatsApp dispatch collaborator.
type MessagingConfig struct {
	BaseURL          string        `envconfig:"MATCHPAY_WHATSAPP_BASE_URL" required:"true"`
	Token            string        `envconfig:"MATCHPAY_WHATSAPP_TOKEN"`
	SenderID         string        `envconfig:"MATCHPAY_WHATSAPP_SENDER_ID"`
	RecipientTimeout time.Duration `envconfig:"MATCHPAY_DISPATCH_RECIPIENT_TIMEOUT" default:"8s"`
	Concurrency      int           `envconfig:"MATCHPAY_DISPATCH_CONCURRENCY" default:"4"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"MATCHPAY_GCP_PROJECT_ID"`
}

// GCSConfig configures signed-URL access to the screenshot evidence bucket.
type GCSConfig struct {
	BucketName      string        `envconfig:"MATCHPAY_GCS_BUCKET_NAME"`
	CredentialsJSON string        `envconfig:"MATCHPAY_GCS_CREDENTIALS_JSON"`
	UploadURLExpiry time.Duration `envconfig:"MATCHPAY_GCS_UPLOAD_URL_EXPIRY" default:"15m"`
}

type PubSubConfig struct {
	LedgerTopic string `envconfig:"MATCHPAY_PUBSUB_LEDGER_TOPIC"`
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

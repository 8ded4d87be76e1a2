package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "PONDOK_DB_DSN"
	EnvDBHost = "PONDOK_DB_HOST"
	EnvDBUser = "PONDOK_DB_USER"
	EnvDBName = "PONDOK_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Rental       RentalConfig
	Remittance   RemittanceConfig
	FeatureFlags FeatureFlagsConfig
	Cron         CronConfig
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
	Env          string `envconfig:"PONDOK_APP_ENV" required:"true"`
	Port         string `envconfig:"PONDOK_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"PONDOK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PONDOK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"PONDOK_DB_DSN"`
	Driver string `envconfig:"PONDOK_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"PONDOK_DB_HOST"`
	LegacyPort     int    `envconfig:"PONDOK_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"PONDOK_DB_USER"`
	LegacyPassword string `envconfig:"PONDOK_DB_PASSWORD"`
	LegacyName     string `envconfig:"PONDOK_DB_NAME"`
	LegacySSLMode  string `envconfig:"PONDOK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PONDOK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PONDOK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PONDOK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PONDOK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"PONDOK_REDIS_URL" required:"true"`
	Address      string        `envconfig:"PONDOK_REDIS_ADDR"`
	Password     string        `envconfig:"PONDOK_REDIS_PASSWORD"`
	DB           int           `envconfig:"PONDOK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PONDOK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PONDOK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PONDOK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PONDOK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PONDOK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret string `envconfig:"PONDOK_JWT_SECRET" required:"true"`
	Issuer string `envconfig:"PONDOK_JWT_ISSUER" required:"true"`
}

// RentalConfig drives the billable workstation sessions.
type RentalConfig struct {
	RateCategory    string        `envconfig:"PONDOK_RENTAL_RATE_CATEGORY" default:"Rental Komputer"`
	MinChargeCents  int64         `envconfig:"PONDOK_RENTAL_MIN_CHARGE" default:"1000"`
	MirrorTTL       time.Duration `envconfig:"PONDOK_RENTAL_MIRROR_TTL" default:"24h"`
	DefaultLedgerID string        `envconfig:"PONDOK_RENTAL_DEFAULT_LEDGER" default:"Lab Komputer"`
}

// RemittanceConfig bounds the unit-to-treasury transfer saga.
type RemittanceConfig struct {
	LockTTL     time.Duration `envconfig:"PONDOK_REMIT_LOCK_TTL" default:"30s"`
	ResumeAfter time.Duration `envconfig:"PONDOK_REMIT_RESUME_AFTER" default:"5m"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"PONDOK_AUTO_MIGRATE" default:"false"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"PONDOK_CRON_INTERVAL" default:"5m"`
	LockTTL  time.Duration `envconfig:"PONDOK_CRON_LOCK_TTL" default:"4m"`
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

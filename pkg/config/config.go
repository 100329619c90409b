package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	HTTP         HTTPConfig
	Store        StoreConfig
	DB           DBConfig
	Mongo        MongoConfig
	Redis        RedisConfig
	RateLimit    RateLimitConfig
	Idempotency  IdempotencyConfig
	Registration RegistrationConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Store.validate(); err != nil {
		return nil, err
	}
	switch cfg.Store.Backend {
	case StoreBackendPostgres:
		if err := cfg.DB.ensureDSN(); err != nil {
			return nil, err
		}
	case StoreBackendMongo:
		if strings.TrimSpace(cfg.Mongo.URI) == "" {
			return nil, fmt.Errorf("%s is required when %s=%s", EnvMongoURI, EnvStoreBackend, StoreBackendMongo)
		}
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"USERS_APP_ENV" required:"true"`
	Port         string `envconfig:"USERS_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"USERS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"USERS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev) || strings.EqualFold(a.Env, "development")
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd) || strings.EqualFold(a.Env, "production")
}

type HTTPConfig struct {
	ReadHeaderTimeout  time.Duration `envconfig:"USERS_HTTP_READ_HEADER_TIMEOUT" default:"5s"`
	ShutdownTimeout    time.Duration `envconfig:"USERS_HTTP_SHUTDOWN_TIMEOUT" default:"10s"`
	CORSAllowedOrigins []string      `envconfig:"USERS_CORS_ALLOWED_ORIGINS"`
}

// StoreConfig selects which user store implementation backs the service.
type StoreConfig struct {
	Backend string `envconfig:"USERS_STORE_BACKEND" default:"postgres"`
}

func (s *StoreConfig) validate() error {
	s.Backend = strings.ToLower(strings.TrimSpace(s.Backend))
	switch s.Backend {
	case StoreBackendPostgres, StoreBackendSQLite, StoreBackendMongo:
		return nil
	}
	return fmt.Errorf("unsupported %s %q (want %s, %s or %s)",
		EnvStoreBackend, s.Backend, StoreBackendPostgres, StoreBackendSQLite, StoreBackendMongo)
}

type DBConfig struct {
	DSN       string `envconfig:"USERS_DB_DSN"`
	SQLiteDSN string `envconfig:"USERS_SQLITE_DSN" default:"file:users.db?cache=shared"`

	LegacyHost     string `envconfig:"USERS_DB_HOST"`
	LegacyPort     int    `envconfig:"USERS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"USERS_DB_USER"`
	LegacyPassword string `envconfig:"USERS_DB_PASSWORD"`
	LegacyName     string `envconfig:"USERS_DB_NAME"`
	LegacySSLMode  string `envconfig:"USERS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"USERS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"USERS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"USERS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"USERS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type MongoConfig struct {
	URI            string        `envconfig:"USERS_MONGO_URI"`
	Database       string        `envconfig:"USERS_MONGO_DATABASE" default:"usermanagement"`
	Collection     string        `envconfig:"USERS_MONGO_COLLECTION" default:"users"`
	ConnectTimeout time.Duration `envconfig:"USERS_MONGO_CONNECT_TIMEOUT" default:"10s"`
	MaxPoolSize    uint64        `envconfig:"USERS_MONGO_MAX_POOL_SIZE" default:"50"`
}

// RedisConfig is optional; rate limiting and idempotency are disabled without it.
type RedisConfig struct {
	URL          string        `envconfig:"USERS_REDIS_URL"`
	Address      string        `envconfig:"USERS_REDIS_ADDR"`
	Password     string        `envconfig:"USERS_REDIS_PASSWORD"`
	DB           int           `envconfig:"USERS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"USERS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"USERS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"USERS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"USERS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"USERS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type RateLimitConfig struct {
	RegisterWindow     time.Duration `envconfig:"USERS_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"USERS_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"USERS_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type IdempotencyConfig struct {
	TTL time.Duration `envconfig:"USERS_IDEMPOTENCY_TTL" default:"24h"`
}

type RegistrationConfig struct {
	AcceptedCountry     string `envconfig:"USERS_ACCEPTED_COUNTRY" default:"France"`
	DefaultNotification string `envconfig:"USERS_DEFAULT_NOTIFICATION" default:"email"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"USERS_AUTO_MIGRATE" default:"false"`
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

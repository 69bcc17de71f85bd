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
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Demo         DemoConfig
	AI           AIConfig
	Shopify      ShopifyConfig
	AIRateLimit  AIRateLimitConfig
	Invites      InviteConfig
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
	Env          string `envconfig:"PHANTOMOS_APP_ENV" required:"true"`
	Port         string `envconfig:"PHANTOMOS_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"PHANTOMOS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PHANTOMOS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"PHANTOMOS_DB_DSN"`
	Driver string `envconfig:"PHANTOMOS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"PHANTOMOS_DB_HOST"`
	LegacyPort     int    `envconfig:"PHANTOMOS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"PHANTOMOS_DB_USER"`
	LegacyPassword string `envconfig:"PHANTOMOS_DB_PASSWORD"`
	LegacyName     string `envconfig:"PHANTOMOS_DB_NAME"`
	LegacySSLMode  string `envconfig:"PHANTOMOS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PHANTOMOS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PHANTOMOS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PHANTOMOS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PHANTOMOS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"PHANTOMOS_REDIS_URL" required:"true"`
	Address      string        `envconfig:"PHANTOMOS_REDIS_ADDR"`
	Password     string        `envconfig:"PHANTOMOS_REDIS_PASSWORD"`
	DB           int           `envconfig:"PHANTOMOS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PHANTOMOS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PHANTOMOS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PHANTOMOS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PHANTOMOS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PHANTOMOS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"PHANTOMOS_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"PHANTOMOS_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"PHANTOMOS_JWT_EXPIRATION_MINUTES" default:"60"`
}

// DemoConfig controls the anonymous trial identity. When enabled, requests
// without credentials act as the demo publisher with implicit write access.
type DemoConfig struct {
	Enabled     bool   `envconfig:"PHANTOMOS_DEMO_MODE" default:"false"`
	PublisherID string `envconfig:"PHANTOMOS_DEMO_PUBLISHER_ID"`
}

type AIConfig struct {
	APIKey  string `envconfig:"PHANTOMOS_AI_API_KEY"`
	BaseURL string `envconfig:"PHANTOMOS_AI_BASE_URL" default:"https://api.openai.com/v1"`
	Model   string `envconfig:"PHANTOMOS_AI_MODEL" default:"gpt-4o-mini"`

	// SharedExamples opts the deployment into mining few-shot examples from
	// confirmed mappings across all publishers instead of only the caller's.
	SharedExamples bool `envconfig:"PHANTOMOS_AI_SHARED_EXAMPLES" default:"false"`

	BatchSize  int           `envconfig:"PHANTOMOS_AI_BATCH_SIZE" default:"5"`
	BatchDelay time.Duration `envconfig:"PHANTOMOS_AI_BATCH_DELAY" default:"500ms"`
}

type ShopifyConfig struct {
	ClientID     string `envconfig:"PHANTOMOS_SHOPIFY_CLIENT_ID"`
	ClientSecret string `envconfig:"PHANTOMOS_SHOPIFY_CLIENT_SECRET"`
	RedirectURL  string `envconfig:"PHANTOMOS_SHOPIFY_REDIRECT_URL"`
	APIVersion   string `envconfig:"PHANTOMOS_SHOPIFY_API_VERSION" default:"2024-10"`
}

type AIRateLimitConfig struct {
	Window         time.Duration `envconfig:"PHANTOMOS_AI_RATE_LIMIT_WINDOW" default:"1m"`
	PublisherLimit int           `envconfig:"PHANTOMOS_AI_RATE_LIMIT_PUBLISHER_LIMIT" default:"30"`
	IPLimit        int           `envconfig:"PHANTOMOS_AI_RATE_LIMIT_IP_LIMIT" default:"60"`
}

type InviteConfig struct {
	TokenTTL         time.Duration `envconfig:"PHANTOMOS_INVITE_TOKEN_TTL" default:"168h"`
	ArgonMemoryKB    int           `envconfig:"PHANTOMOS_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int           `envconfig:"PHANTOMOS_ARGON_TIME" default:"3"`
	ArgonParallelism int           `envconfig:"PHANTOMOS_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int           `envconfig:"PHANTOMOS_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int           `envconfig:"PHANTOMOS_ARGON_KEY_LEN" default:"32"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"PHANTOMOS_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"PHANTOMOS_AUTO_MIGRATE" default:"false"`
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

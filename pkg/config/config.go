package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Session      SessionConfig
	Catalog      CatalogConfig
	Reviews      ReviewsConfig
	WhatsApp     WhatsAppConfig
	Checkout     CheckoutConfig
	RateLimit    RateLimitConfig
	Cron         CronConfig
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
	if err := cfg.Checkout.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Cron.validate(cfg.Session); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env             string        `envconfig:"EVERGREEN_APP_ENV" required:"true"`
	Port            string        `envconfig:"EVERGREEN_APP_PORT" default:"8080"`
	SiteURL         string        `envconfig:"EVERGREEN_SITE_URL" default:"http://localhost:8080"`
	LogLevel        string        `envconfig:"EVERGREEN_LOG_LEVEL" default:"info"`
	LogWarnStack    bool          `envconfig:"EVERGREEN_LOG_WARN_STACK" default:"false"`
	LogFormat       string        `envconfig:"EVERGREEN_LOG_FORMAT" default:"json"`
	ReadTimeout     time.Duration `envconfig:"EVERGREEN_HTTP_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"EVERGREEN_HTTP_WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"EVERGREEN_HTTP_SHUTDOWN_TIMEOUT" default:"10s"`
	CORSOrigins     []string      `envconfig:"EVERGREEN_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"EVERGREEN_DB_DSN"`
	Driver string `envconfig:"EVERGREEN_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"EVERGREEN_DB_HOST"`
	Port     int    `envconfig:"EVERGREEN_DB_PORT" default:"5432"`
	User     string `envconfig:"EVERGREEN_DB_USER"`
	Password string `envconfig:"EVERGREEN_DB_PASSWORD"`
	Name     string `envconfig:"EVERGREEN_DB_NAME"`
	SSLMode  string `envconfig:"EVERGREEN_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"EVERGREEN_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"EVERGREEN_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"EVERGREEN_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"EVERGREEN_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	// SlowQuery is the threshold above which a statement is logged at warn.
	// Zero disables slow query logging.
	SlowQuery time.Duration `envconfig:"EVERGREEN_DB_SLOW_QUERY" default:"200ms"`
}

// IsSQLite reports whether the configured driver is the embedded SQLite one.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DBDriverSQLite)
}

// Enabled is false when no Redis endpoint is configured; Redis-backed features
// (idempotency, rate limiting, home cache) are skipped in that case.
type RedisConfig struct {
	URL          string        `envconfig:"EVERGREEN_REDIS_URL"`
	Address      string        `envconfig:"EVERGREEN_REDIS_ADDR"`
	Password     string        `envconfig:"EVERGREEN_REDIS_PASSWORD"`
	DB           int           `envconfig:"EVERGREEN_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"EVERGREEN_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"EVERGREEN_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"EVERGREEN_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"EVERGREEN_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"EVERGREEN_REDIS_WRITE_TIMEOUT" default:"3s"`
}

func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type SessionConfig struct {
	CookieName string `envconfig:"EVERGREEN_SESSION_COOKIE_NAME" default:"evergreen_cart"`
	HashKey    string `envconfig:"EVERGREEN_SESSION_HASH_KEY" required:"true"`
	BlockKey   string `envconfig:"EVERGREEN_SESSION_BLOCK_KEY"`
	MaxAge     int    `envconfig:"EVERGREEN_SESSION_MAX_AGE" default:"1209600"`
	Secure     bool   `envconfig:"EVERGREEN_SESSION_SECURE" default:"false"`
}

type CatalogConfig struct {
	PageSize        int           `envconfig:"EVERGREEN_CATALOG_PAGE_SIZE" default:"12"`
	SearchLimit     int           `envconfig:"EVERGREEN_CATALOG_SEARCH_LIMIT" default:"10"`
	HomeSectionSize int           `envconfig:"EVERGREEN_CATALOG_HOME_SECTION_SIZE" default:"8"`
	RelatedLimit    int           `envconfig:"EVERGREEN_CATALOG_RELATED_LIMIT" default:"4"`
	HomeCacheTTL    time.Duration `envconfig:"EVERGREEN_CATALOG_HOME_CACHE_TTL" default:"2m"`
}

type ReviewsConfig struct {
	PageSize int `envconfig:"EVERGREEN_REVIEWS_PAGE_SIZE" default:"10"`
}

type WhatsAppConfig struct {
	BusinessNumber string `envconfig:"EVERGREEN_WHATSAPP_NUMBER" required:"true"`
	BaseURL        string `envconfig:"EVERGREEN_WHATSAPP_BASE_URL" default:"https://wa.me"`
	StoreName      string `envconfig:"EVERGREEN_STORE_NAME" default:"Evergreen Farmers"`
	CurrencySymbol string `envconfig:"EVERGREEN_CURRENCY_SYMBOL" default:"KSh "`
	Timezone       string `envconfig:"EVERGREEN_TIMEZONE" default:"Africa/Nairobi"`
}

type CheckoutConfig struct {
	ShippingFee string `envconfig:"EVERGREEN_CHECKOUT_SHIPPING_FEE" default:"0"`
}

// ShippingAmount returns the flat shipping fee; validate() guarantees it parses.
func (c CheckoutConfig) ShippingAmount() decimal.Decimal {
	fee, err := decimal.NewFromString(strings.TrimSpace(c.ShippingFee))
	if err != nil {
		return decimal.Zero
	}
	return fee
}

func (c CheckoutConfig) validate() error {
	raw := strings.TrimSpace(c.ShippingFee)
	if raw == "" {
		return nil
	}
	fee, err := decimal.NewFromString(raw)
	if err != nil {
		return fmt.Errorf("%s must be a decimal amount: %w", EnvCheckoutShippingFee, err)
	}
	if fee.IsNegative() {
		return fmt.Errorf("%s must not be negative", EnvCheckoutShippingFee)
	}
	return nil
}

type RateLimitConfig struct {
	Window            time.Duration `envconfig:"EVERGREEN_RATE_LIMIT_WINDOW" default:"10m"`
	ReviewLimit       int           `envconfig:"EVERGREEN_RATE_LIMIT_REVIEWS" default:"5"`
	NewsletterLimit   int           `envconfig:"EVERGREEN_RATE_LIMIT_NEWSLETTER" default:"10"`
	ContactLimit      int           `envconfig:"EVERGREEN_RATE_LIMIT_CONTACT" default:"5"`
	IdempotencyTTL    time.Duration `envconfig:"EVERGREEN_IDEMPOTENCY_TTL" default:"24h"`
	RequireIdempotent bool          `envconfig:"EVERGREEN_REQUIRE_IDEMPOTENCY_KEY" default:"true"`
}

// CronConfig drives cmd/cron-worker. An empty MetricsPort leaves the job
// metrics unserved; RunOnce suits an external scheduler that starts the
// worker per run.
type CronConfig struct {
	Interval          time.Duration `envconfig:"EVERGREEN_CRON_INTERVAL" default:"24h"`
	RunOnce           bool          `envconfig:"EVERGREEN_CRON_RUN_ONCE" default:"false"`
	CartRetentionDays int           `envconfig:"EVERGREEN_CART_RETENTION_DAYS" default:"30"`
	MetricsPort       string        `envconfig:"EVERGREEN_CRON_METRICS_PORT"`
}

// validate keeps the purge window longer than the session cookie, so a cart
// is only purged once its cookie can no longer reach it.
func (c CronConfig) validate(session SessionConfig) error {
	retention := time.Duration(c.CartRetentionDays) * 24 * time.Hour
	if maxAge := time.Duration(session.MaxAge) * time.Second; retention <= maxAge {
		return fmt.Errorf("EVERGREEN_CART_RETENTION_DAYS (%d) must exceed the session max age (%s)", c.CartRetentionDays, maxAge)
	}
	return nil
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"EVERGREEN_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		return fmt.Errorf("%s is required when %s=%s", EnvDBDSN, EnvDBDriver, DBDriverSQLite)
	}

	missing := []string{}
	parts := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range discreteDBEnvVars {
		if parts[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}

package config

import (
	"flag"
	"regexp"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

const (
	defaultDatabaseDSN = "file:ieum.db?_pragma=foreign_keys(1)"
	defaultAuthSecret  = "dev-secret-key"
	defaultBaseURL     = "localhost:8080"
	defaultFileBaseURL = "http://localhost:8080/api/files"
	defaultTokenTTL    = 24 * time.Hour
	defaultRateLimit   = 300
)

type Config struct {
	// Storage
	DatabaseDSN string `env:"DATABASE_URI"`

	// Auth
	AuthSecret     string        `env:"AUTH_SECRET"`
	TokenTTL       time.Duration `env:"JWT_EXPIRATION"`
	GoogleClientID string        `env:"GOOGLE_CLIENT_ID"`

	// HTTP
	BaseURL        string   `env:"BASE_URL"`
	EnableHTTPS    bool     `env:"ENABLE_HTTPS"`
	TLSCertFile    string   `env:"TLS_CERT_FILE"`
	TLSKeyFile     string   `env:"TLS_KEY_FILE"`
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
	RateLimitRPM   int      `env:"RATE_LIMIT_RPM"`
	ServerURL      string   `env:"-"`

	// Files
	FileBaseURL string `env:"FILE_BASE_URL"`
	S3Bucket    string `env:"S3_BUCKET"`
	S3Region    string `env:"S3_REGION"`
	S3Endpoint  string `env:"S3_ENDPOINT"`
	S3AccessKey string `env:"S3_ACCESS_KEY"`
	S3SecretKey string `env:"S3_SECRET_KEY"`

	MetricsEnabled bool `env:"METRICS_ENABLED" envDefault:"true"`
	Debug          bool `env:"DEBUG"`
}

func NewConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{}
	_ = env.Parse(cfg)

	// flags override whatever came from the environment
	flag.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "database DSN (postgres URL or sqlite file)")
	flag.StringVar(&cfg.AuthSecret, "auth-secret", cfg.AuthSecret, "JWT signing secret")
	flag.DurationVar(&cfg.TokenTTL, "jwt-ttl", cfg.TokenTTL, "access token lifetime")
	flag.StringVar(&cfg.GoogleClientID, "google-client-id", cfg.GoogleClientID, "Google OAuth client id (ID token audience)")
	flag.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "listen address in host:port form")
	flag.BoolVar(&cfg.EnableHTTPS, "https", cfg.EnableHTTPS, "serve HTTPS")
	flag.StringVar(&cfg.TLSCertFile, "tls-cert", cfg.TLSCertFile, "TLS certificate file")
	flag.StringVar(&cfg.TLSKeyFile, "tls-key", cfg.TLSKeyFile, "TLS key file")
	flag.IntVar(&cfg.RateLimitRPM, "rate-limit", cfg.RateLimitRPM, "requests per minute per client IP")
	flag.BoolVar(&cfg.Debug, "debug", cfg.Debug, "development logging")

	flag.Parse()

	// Defaults
	if cfg.DatabaseDSN == "" {
		cfg.DatabaseDSN = defaultDatabaseDSN
	}
	if cfg.AuthSecret == "" {
		cfg.AuthSecret = defaultAuthSecret
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = defaultTokenTTL
	}
	if cfg.RateLimitRPM <= 0 {
		cfg.RateLimitRPM = defaultRateLimit
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}
	if cfg.FileBaseURL == "" {
		cfg.FileBaseURL = defaultFileBaseURL
	}
	// BaseURL must be "address:port" (no scheme, no path). Otherwise use default.
	hostPortRe := regexp.MustCompile(`^[A-Za-z0-9\.\-]*:\d{1,5}$`)
	if !hostPortRe.MatchString(cfg.BaseURL) {
		cfg.BaseURL = defaultBaseURL
	}

	if cfg.EnableHTTPS {
		cfg.ServerURL = "https://" + cfg.BaseURL
	} else {
		cfg.ServerURL = "http://" + cfg.BaseURL
	}

	return cfg
}

// S3Enabled reports whether object storage settings are complete enough to presign real URLs.
func (c *Config) S3Enabled() bool {
	return c.S3Bucket != "" && c.S3Region != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

package config

import (
	"time"

	"github.com/joho/godotenv"

	pkgconfig "github.com/Checker-Finance/refdata/pkg/config"
)

// Config holds the runtime configuration of one ingest process.
// Optional backends are disabled by leaving their address empty.
type Config struct {
	ServiceName string // e.g. "refdata-ingest"
	Env         string // e.g. "dev", "uat", "prod"
	LogLevel    string // "debug", "info", etc.
	AWSRegion   string

	// Sources are used when no locations are passed on the command line.
	Sources []string

	OpsPort          int // /health and /metrics
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration

	DatabaseURL         string // empty keeps everything in memory
	PGMaxConns          int
	PGMinConns          int
	PGMaxConnLifetime   time.Duration
	PGMaxConnIdleTime   time.Duration
	PGHealthCheckPeriod time.Duration
	LegacyMirror        bool // also upsert mapped rows into the flat table

	NATSURL string // empty disables events

	RedisAddr string // empty keeps lookup results in process memory
	RedisDB   int
	RedisPass string

	CacheDir           string
	CacheTTL           time.Duration // freshness of parsed source documents
	CachePruneInterval time.Duration
	CacheRetention     time.Duration
	LookupCacheTTL     time.Duration // freshness of OpenFIGI and GLEIF results

	Workers         int
	DownloadTimeout time.Duration
	RetryMax        int

	EnrichmentEnabled bool
	OpenFIGIBaseURL   string
	OpenFIGIAPIKey    string
	OpenFIGIRPS       float64
	OpenFIGIBurst     int
	GLEIFBaseURL      string
	GLEIFRPS          float64
	GLEIFBurst        int

	// SecretsEnabled resolves missing API keys from AWS Secrets Manager
	// under {env}/{SecretsNamespace}/{service}.
	SecretsEnabled   bool
	SecretsNamespace string
	SecretsCacheTTL  time.Duration
}

// Load loads configuration from environment variables and .env file if present.
func Load() *Config {
	// load .env silently (no error if missing)
	_ = godotenv.Load()

	return &Config{
		ServiceName: pkgconfig.GetEnv("SERVICE_NAME", "refdata-ingest"),
		Env:         pkgconfig.GetEnv("ENV", "dev"),
		LogLevel:    pkgconfig.GetEnv("LOG_LEVEL", "info"),
		AWSRegion:   pkgconfig.GetEnv("AWS_REGION", "us-east-2"),
		Sources:     pkgconfig.GetEnvList("REFDATA_SOURCES", nil),

		OpsPort:          pkgconfig.GetEnvInt("REFDATA_PORT", 9020),
		HTTPReadTimeout:  pkgconfig.GetEnvDuration("HTTP_READ_TIMEOUT", 10*time.Second),
		HTTPWriteTimeout: pkgconfig.GetEnvDuration("HTTP_WRITE_TIMEOUT", 10*time.Second),
		HTTPIdleTimeout:  pkgconfig.GetEnvDuration("HTTP_IDLE_TIMEOUT", 60*time.Second),

		DatabaseURL:         pkgconfig.GetEnv("DATABASE_URL", ""),
		PGMaxConns:          pkgconfig.GetEnvInt("PG_MAX_CONNS", 10),
		PGMinConns:          pkgconfig.GetEnvInt("PG_MIN_CONNS", 2),
		PGMaxConnLifetime:   pkgconfig.GetEnvDuration("PG_MAX_CONN_LIFETIME", 30*time.Minute),
		PGMaxConnIdleTime:   pkgconfig.GetEnvDuration("PG_MAX_CONN_IDLE_TIME", 5*time.Minute),
		PGHealthCheckPeriod: pkgconfig.GetEnvDuration("PG_HEALTH_CHECK_PERIOD", 1*time.Minute),
		LegacyMirror:        pkgconfig.GetEnvBool("LEGACY_MIRROR", false),

		NATSURL: pkgconfig.GetEnv("NATS_URL", ""),

		RedisAddr: pkgconfig.GetEnv("REDIS_ADDR", ""),
		RedisDB:   pkgconfig.GetEnvInt("REDIS_DB", 0),
		RedisPass: pkgconfig.GetEnv("REDIS_PASS", ""),

		CacheDir:           pkgconfig.GetEnv("CACHE_DIR", ".refdata-cache"),
		CacheTTL:           pkgconfig.GetEnvDuration("CACHE_TTL", 24*time.Hour),
		CachePruneInterval: pkgconfig.GetEnvDuration("CACHE_PRUNE_INTERVAL", 1*time.Hour),
		CacheRetention:     pkgconfig.GetEnvDuration("CACHE_RETENTION", 7*24*time.Hour),
		LookupCacheTTL:     pkgconfig.GetEnvDuration("LOOKUP_CACHE_TTL", 7*24*time.Hour),

		Workers:         pkgconfig.GetEnvInt("INGEST_WORKERS", 4),
		DownloadTimeout: pkgconfig.GetEnvDuration("DOWNLOAD_TIMEOUT", 2*time.Minute),
		RetryMax:        pkgconfig.GetEnvInt("RETRY_MAX", 3),

		EnrichmentEnabled: pkgconfig.GetEnvBool("ENRICHMENT_ENABLED", true),
		OpenFIGIBaseURL:   pkgconfig.GetEnv("OPENFIGI_BASE_URL", "https://api.openfigi.com"),
		OpenFIGIAPIKey:    pkgconfig.GetEnv("OPENFIGI_API_KEY", ""),
		OpenFIGIRPS:       pkgconfig.GetEnvFloat("OPENFIGI_RPS", 0.4),
		OpenFIGIBurst:     pkgconfig.GetEnvInt("OPENFIGI_BURST", 1),
		GLEIFBaseURL:      pkgconfig.GetEnv("GLEIF_BASE_URL", "https://api.gleif.org"),
		GLEIFRPS:          pkgconfig.GetEnvFloat("GLEIF_RPS", 1),
		GLEIFBurst:        pkgconfig.GetEnvInt("GLEIF_BURST", 1),

		SecretsEnabled:   pkgconfig.GetEnvBool("SECRETS_ENABLED", false),
		SecretsNamespace: pkgconfig.GetEnv("SECRETS_NAMESPACE", "refdata"),
		SecretsCacheTTL:  pkgconfig.GetEnvDuration("SECRETS_CACHE_TTL", 1*time.Hour),
	}
}

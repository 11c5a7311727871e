package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/nhl-pickem/internal/platform/logging"
	"github.com/riskibarqy/nhl-pickem/internal/platform/resilience"
)

// ErrConfig marks a missing or malformed setting. The service must not start.
var ErrConfig = errors.New("invalid configuration")

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"

	StoreMemory   = "memory"
	StorePostgres = "postgres"

	ScheduleModeFeed   = "feed"
	ScheduleModeManual = "manual"

	IdentityToolkit = "identitytoolkit"
	IdentityMemory  = "memory"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv         string
	ServiceName    string
	ServiceVersion string
	HTTPAddr       string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	Location       *time.Location
	LogLevel       logging.Level
	LogFormat      logging.Format

	StoreBackend            string
	DBURL                   string
	DBDisablePreparedBinary bool

	ScheduleMode        string
	ScheduleTablePath   string
	ScheduleFeedBaseURL string
	ScheduleFeedTimeout time.Duration
	ScheduleFeedRetry   resilience.RetryConfig
	ScheduleFeedCircuit resilience.CircuitBreakerConfig
	OutcomeWorkers      int

	IdentityProvider     string
	IdentityAPIKey       string
	IdentityBaseURL      string
	IdentityTimeout      time.Duration
	IdentityPrincipalTTL time.Duration
	IdentityCircuit      resilience.CircuitBreakerConfig

	CacheEnabled       bool
	CacheTTL           time.Duration
	CORSAllowedOrigins []string
	InternalJobToken   string

	PprofEnabled               bool
	PprofAddr                  string
	UptraceEnabled             bool
	UptraceDSN                 string
	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration
}

// Load reads the environment. Every returned error wraps ErrConfig.
func Load() (Config, error) {
	cfg, err := load()
	if err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	return cfg, nil
}

func load() (Config, error) {
	var err error
	cfg := Config{
		ServiceName:         getEnv("APP_SERVICE_NAME", "nhl-pickem-api"),
		ServiceVersion:      getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:            getEnv("APP_HTTP_ADDR", ":8080"),
		DBURL:               strings.TrimSpace(getEnv("DB_URL", "")),
		ScheduleTablePath:   strings.TrimSpace(getEnv("SCHEDULE_TABLE_PATH", "")),
		ScheduleFeedBaseURL: strings.TrimSpace(getEnv("SCHEDULE_FEED_BASE_URL", "https://statsapi.web.nhl.com/api/v1")),
		IdentityAPIKey:      strings.TrimSpace(getEnv("IDENTITY_API_KEY", "")),
		IdentityBaseURL:     strings.TrimSpace(getEnv("IDENTITY_BASE_URL", "https://identitytoolkit.googleapis.com/v1")),
		CORSAllowedOrigins:  splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		InternalJobToken:    strings.TrimSpace(getEnv("INTERNAL_JOB_TOKEN", "")),
		PprofAddr:           strings.TrimSpace(getEnv("PPROF_ADDR", ":6060")),
	}

	if cfg.AppEnv, err = oneOf("APP_ENV", getEnv("APP_ENV", EnvDev), EnvDev, EnvStage, EnvProd); err != nil {
		return Config{}, err
	}
	if cfg.LogLevel, err = logging.ParseLevel(getEnv("LOG_LEVEL", "info")); err != nil {
		return Config{}, fmt.Errorf("parse LOG_LEVEL: %w", err)
	}
	cfg.LogFormat = logging.FormatJSON
	if cfg.AppEnv == EnvDev {
		cfg.LogFormat = logging.Format(getEnv("LOG_FORMAT", string(logging.FormatConsole)))
	}

	tz := strings.TrimSpace(getEnv("APP_TIMEZONE", "America/New_York"))
	if cfg.Location, err = time.LoadLocation(tz); err != nil {
		return Config{}, fmt.Errorf("parse APP_TIMEZONE: %w", err)
	}
	if cfg.ReadTimeout, err = getEnvAsDuration("APP_READ_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.WriteTimeout, err = getEnvAsDuration("APP_WRITE_TIMEOUT", 15*time.Second); err != nil {
		return Config{}, err
	}

	if cfg.StoreBackend, err = oneOf("STORE_BACKEND", getEnv("STORE_BACKEND", StoreMemory), StoreMemory, StorePostgres); err != nil {
		return Config{}, err
	}
	if cfg.StoreBackend == StorePostgres && cfg.DBURL == "" {
		return Config{}, fmt.Errorf("DB_URL is required when STORE_BACKEND=%s", StorePostgres)
	}
	if cfg.DBDisablePreparedBinary, err = getEnvAsBool("DB_DISABLE_PREPARED_BINARY_RESULT", true); err != nil {
		return Config{}, err
	}

	if cfg.ScheduleMode, err = oneOf("SCHEDULE_MODE", getEnv("SCHEDULE_MODE", ScheduleModeFeed), ScheduleModeFeed, ScheduleModeManual); err != nil {
		return Config{}, err
	}
	if cfg.ScheduleMode == ScheduleModeFeed && cfg.ScheduleFeedBaseURL == "" {
		return Config{}, fmt.Errorf("SCHEDULE_FEED_BASE_URL is required when SCHEDULE_MODE=%s", ScheduleModeFeed)
	}
	if cfg.ScheduleFeedTimeout, err = getEnvAsMillis("SCHEDULE_FEED_TIMEOUT_MS", 10*time.Second); err != nil {
		return Config{}, err
	}
	maxRetries, err := getEnvAsInt("SCHEDULE_FEED_MAX_RETRIES", 1)
	if err != nil {
		return Config{}, err
	}
	if maxRetries < 0 {
		return Config{}, fmt.Errorf("SCHEDULE_FEED_MAX_RETRIES must be >= 0")
	}
	cfg.ScheduleFeedRetry = resilience.RetryConfig{MaxAttempts: maxRetries + 1, Backoff: 500 * time.Millisecond}
	if cfg.ScheduleFeedCircuit, err = circuitConfig("SCHEDULE_FEED"); err != nil {
		return Config{}, err
	}
	if cfg.OutcomeWorkers, err = getEnvAsInt("OUTCOME_WORKERS", 4); err != nil {
		return Config{}, err
	}
	if cfg.OutcomeWorkers < 1 {
		return Config{}, fmt.Errorf("OUTCOME_WORKERS must be >= 1")
	}

	if cfg.IdentityProvider, err = oneOf("IDENTITY_PROVIDER", getEnv("IDENTITY_PROVIDER", IdentityToolkit), IdentityToolkit, IdentityMemory); err != nil {
		return Config{}, err
	}
	if cfg.IdentityProvider == IdentityToolkit && cfg.IdentityAPIKey == "" {
		return Config{}, fmt.Errorf("IDENTITY_API_KEY is required when IDENTITY_PROVIDER=%s", IdentityToolkit)
	}
	if cfg.IdentityProvider == IdentityMemory && cfg.AppEnv == EnvProd {
		return Config{}, fmt.Errorf("IDENTITY_PROVIDER=%s is not allowed when APP_ENV=%s", IdentityMemory, EnvProd)
	}
	if cfg.IdentityTimeout, err = getEnvAsMillis("IDENTITY_TIMEOUT_MS", 5*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.IdentityPrincipalTTL, err = getEnvAsDuration("IDENTITY_PRINCIPAL_TTL", 2*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.IdentityCircuit, err = circuitConfig("IDENTITY"); err != nil {
		return Config{}, err
	}

	if cfg.CacheEnabled, err = getEnvAsBool("CACHE_ENABLED", true); err != nil {
		return Config{}, err
	}
	ttlSeconds, err := getEnvAsInt("CACHE_TTL_SECONDS", 60)
	if err != nil {
		return Config{}, err
	}
	if ttlSeconds <= 0 {
		return Config{}, fmt.Errorf("CACHE_TTL_SECONDS must be > 0")
	}
	cfg.CacheTTL = time.Duration(ttlSeconds) * time.Second
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}

	if cfg.PprofEnabled, err = getEnvAsBool("PPROF_ENABLED", false); err != nil {
		return Config{}, err
	}
	if cfg.PprofEnabled && cfg.PprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	if cfg.UptraceEnabled, err = getEnvAsBool("UPTRACE_ENABLED", false); err != nil {
		return Config{}, err
	}
	cfg.UptraceDSN = strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if cfg.UptraceDSN == "" {
		cfg.UptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if cfg.UptraceEnabled && cfg.UptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	if cfg.PyroscopeEnabled, err = getEnvAsBool("PYROSCOPE_ENABLED", false); err != nil {
		return Config{}, err
	}
	cfg.PyroscopeServerAddress = strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if cfg.PyroscopeEnabled && cfg.PyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	cfg.PyroscopeAuthToken = strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", ""))
	cfg.PyroscopeBasicAuthUser = strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", ""))
	cfg.PyroscopeBasicAuthPassword = strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", ""))
	if cfg.PyroscopeUploadRate, err = getEnvAsDuration("PYROSCOPE_UPLOAD_RATE", 15*time.Second); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// circuitConfig reads <PREFIX>_CIRCUIT_{ENABLED,FAILURE_COUNT,OPEN_TIMEOUT,HALF_OPEN_MAX_REQ}.
func circuitConfig(prefix string) (resilience.CircuitBreakerConfig, error) {
	defaults := resilience.DefaultCircuitBreakerConfig()
	var (
		cfg resilience.CircuitBreakerConfig
		err error
	)
	if cfg.Enabled, err = getEnvAsBool(prefix+"_CIRCUIT_ENABLED", defaults.Enabled); err != nil {
		return cfg, err
	}
	if cfg.FailureThreshold, err = getEnvAsInt(prefix+"_CIRCUIT_FAILURE_COUNT", defaults.FailureThreshold); err != nil {
		return cfg, err
	}
	if cfg.FailureThreshold < 1 {
		return cfg, fmt.Errorf("%s_CIRCUIT_FAILURE_COUNT must be >= 1", prefix)
	}
	if cfg.OpenTimeout, err = getEnvAsDuration(prefix+"_CIRCUIT_OPEN_TIMEOUT", defaults.OpenTimeout); err != nil {
		return cfg, err
	}
	if cfg.HalfOpenMaxReq, err = getEnvAsInt(prefix+"_CIRCUIT_HALF_OPEN_MAX_REQ", defaults.HalfOpenMaxReq); err != nil {
		return cfg, err
	}
	if cfg.HalfOpenMaxReq < 1 {
		return cfg, fmt.Errorf("%s_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1", prefix)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}

	return out, nil
}

func getEnvAsBool(key string, fallback bool) (bool, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}
	return out, nil
}

func getEnvAsMillis(key string, fallback time.Duration) (time.Duration, error) {
	ms, err := getEnvAsInt(key, int(fallback/time.Millisecond))
	if err != nil {
		return 0, err
	}
	if ms <= 0 {
		return 0, fmt.Errorf("%s must be > 0", key)
	}
	return time.Duration(ms) * time.Millisecond, nil
}

// getEnvAsDuration accepts Go durations ("15s") and rejects non-positive values.
func getEnvAsDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if out <= 0 {
		return 0, fmt.Errorf("%s must be > 0", key)
	}
	return out, nil
}

func oneOf(key, raw string, allowed ...string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	for _, candidate := range allowed {
		if value == candidate {
			return value, nil
		}
	}
	return "", fmt.Errorf("invalid %s %q: valid values are %s", key, raw, strings.Join(allowed, ", "))
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

package config

import (
	"errors"
	"testing"
	"time"
)

// baseEnv pins the settings Load requires so each test changes one thing.
func baseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("PYROSCOPE_ENABLED", "false")
	t.Setenv("STORE_BACKEND", StoreMemory)
	t.Setenv("SCHEDULE_MODE", ScheduleModeManual)
	t.Setenv("IDENTITY_PROVIDER", IdentityMemory)
	t.Setenv("IDENTITY_API_KEY", "")
	t.Setenv("DB_URL", "")
}

func TestLoad_Defaults(t *testing.T) {
	baseEnv(t)
	t.Setenv("APP_TIMEZONE", "")
	t.Setenv("CACHE_ENABLED", "")
	t.Setenv("CACHE_TTL_SECONDS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.ServiceName != "nhl-pickem-api" {
		t.Fatalf("unexpected service name: %s", cfg.ServiceName)
	}
	if cfg.Location.String() != "America/New_York" {
		t.Fatalf("unexpected default timezone: %s", cfg.Location)
	}
	if !cfg.CacheEnabled || cfg.CacheTTL != time.Minute {
		t.Fatalf("unexpected cache defaults: enabled=%v ttl=%s", cfg.CacheEnabled, cfg.CacheTTL)
	}
	if cfg.ScheduleFeedRetry.MaxAttempts != 2 {
		t.Fatalf("expected one retry by default, got attempts=%d", cfg.ScheduleFeedRetry.MaxAttempts)
	}
	if !cfg.ScheduleFeedCircuit.Enabled || cfg.ScheduleFeedCircuit.FailureThreshold != 5 {
		t.Fatalf("unexpected feed circuit defaults: %+v", cfg.ScheduleFeedCircuit)
	}
}

func TestLoad_AppEnvValidation(t *testing.T) {
	baseEnv(t)

	t.Run("normalizes case", func(t *testing.T) {
		t.Setenv("APP_ENV", " STAGE ")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.AppEnv != EnvStage {
			t.Fatalf("expected app env stage, got %s", cfg.AppEnv)
		}
	})

	t.Run("rejects unknown", func(t *testing.T) {
		t.Setenv("APP_ENV", "local")
		_, err := Load()
		if !errors.Is(err, ErrConfig) {
			t.Fatalf("expected ErrConfig, got %v", err)
		}
	})
}

func TestLoad_IdentityToolkitRequiresAPIKey(t *testing.T) {
	baseEnv(t)
	t.Setenv("IDENTITY_PROVIDER", IdentityToolkit)

	_, err := Load()
	if !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig without IDENTITY_API_KEY, got %v", err)
	}

	t.Setenv("IDENTITY_API_KEY", "key-123")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.IdentityAPIKey != "key-123" {
		t.Fatalf("unexpected api key: %q", cfg.IdentityAPIKey)
	}
}

func TestLoad_MemoryIdentityRejectedInProd(t *testing.T) {
	baseEnv(t)
	t.Setenv("APP_ENV", EnvProd)

	if _, err := Load(); !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig for memory identity in prod, got %v", err)
	}
}

func TestLoad_PostgresRequiresDBURL(t *testing.T) {
	baseEnv(t)
	t.Setenv("STORE_BACKEND", StorePostgres)

	if _, err := Load(); !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig without DB_URL, got %v", err)
	}

	t.Setenv("DB_URL", "postgres://localhost:5432/pickem?sslmode=disable")
	if _, err := Load(); err != nil {
		t.Fatalf("load config: %v", err)
	}
}

func TestLoad_InvalidTimezone(t *testing.T) {
	baseEnv(t)
	t.Setenv("APP_TIMEZONE", "Mars/Olympus")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unknown timezone")
	}
}

func TestLoad_ScheduleFeedKnobs(t *testing.T) {
	baseEnv(t)
	t.Setenv("SCHEDULE_MODE", ScheduleModeFeed)
	t.Setenv("SCHEDULE_FEED_TIMEOUT_MS", "3000")
	t.Setenv("SCHEDULE_FEED_MAX_RETRIES", "0")
	t.Setenv("SCHEDULE_FEED_CIRCUIT_FAILURE_COUNT", "2")
	t.Setenv("SCHEDULE_FEED_CIRCUIT_OPEN_TIMEOUT", "10s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.ScheduleFeedTimeout != 3*time.Second {
		t.Fatalf("unexpected feed timeout: %s", cfg.ScheduleFeedTimeout)
	}
	if cfg.ScheduleFeedRetry.MaxAttempts != 1 {
		t.Fatalf("expected a single attempt, got %d", cfg.ScheduleFeedRetry.MaxAttempts)
	}
	if cfg.ScheduleFeedCircuit.FailureThreshold != 2 || cfg.ScheduleFeedCircuit.OpenTimeout != 10*time.Second {
		t.Fatalf("unexpected feed circuit: %+v", cfg.ScheduleFeedCircuit)
	}

	t.Run("negative retries", func(t *testing.T) {
		t.Setenv("SCHEDULE_FEED_MAX_RETRIES", "-1")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for negative retries")
		}
	})

	t.Run("zero failure count", func(t *testing.T) {
		t.Setenv("SCHEDULE_FEED_CIRCUIT_FAILURE_COUNT", "0")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for zero failure count")
		}
	})

	t.Run("bad timeout", func(t *testing.T) {
		t.Setenv("SCHEDULE_FEED_TIMEOUT_MS", "soon")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for unparsable timeout")
		}
	})
}

func TestLoad_UptraceDSNFromOTLPHeaders(t *testing.T) {
	baseEnv(t)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "foo=bar, uptrace-dsn=\"https://token@api.uptrace.dev?grpc=4317\"")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.UptraceDSN != "https://token@api.uptrace.dev?grpc=4317" {
		t.Fatalf("unexpected uptrace dsn: %q", cfg.UptraceDSN)
	}

	t.Run("missing dsn", func(t *testing.T) {
		t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error when UPTRACE_ENABLED=true without a dsn")
		}
	})
}

func TestLoad_PprofDefaultsAddrWhenEnabled(t *testing.T) {
	baseEnv(t)
	t.Setenv("PPROF_ENABLED", "true")
	t.Setenv("PPROF_ADDR", "  ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PprofAddr != ":6060" {
		t.Fatalf("expected default pprof addr :6060, got %q", cfg.PprofAddr)
	}
}

func TestLoad_PyroscopeRequiresServerAddressWhenEnabled(t *testing.T) {
	baseEnv(t)
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when PYROSCOPE_ENABLED=true without PYROSCOPE_SERVER_ADDRESS")
	}
}

func TestLoad_PyroscopeAppNameDefaultsToServiceName(t *testing.T) {
	baseEnv(t)
	t.Setenv("APP_SERVICE_NAME", "nhl-pickem-api-test")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "http://localhost:4040")
	t.Setenv("PYROSCOPE_APP_NAME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PyroscopeAppName != "nhl-pickem-api-test" {
		t.Fatalf("unexpected pyroscope app name: %q", cfg.PyroscopeAppName)
	}
}

func TestLoad_CORSOriginsDefaultAndParsing(t *testing.T) {
	baseEnv(t)

	t.Run("default wildcard", func(t *testing.T) {
		t.Setenv("CORS_ALLOWED_ORIGINS", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
			t.Fatalf("unexpected default CORS origins: %+v", cfg.CORSAllowedOrigins)
		}
	})

	t.Run("comma separated parsing", func(t *testing.T) {
		t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example.com, http://localhost:5173 ")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if len(cfg.CORSAllowedOrigins) != 2 {
			t.Fatalf("unexpected CORS origins length: %d", len(cfg.CORSAllowedOrigins))
		}
		if cfg.CORSAllowedOrigins[1] != "http://localhost:5173" {
			t.Fatalf("unexpected second CORS origin: %s", cfg.CORSAllowedOrigins[1])
		}
	})
}

func TestLoad_DBDisablePreparedBinaryResultParsing(t *testing.T) {
	baseEnv(t)

	t.Run("default true", func(t *testing.T) {
		t.Setenv("DB_DISABLE_PREPARED_BINARY_RESULT", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.DBDisablePreparedBinary {
			t.Fatalf("expected DBDisablePreparedBinary=true by default")
		}
	})

	t.Run("invalid value", func(t *testing.T) {
		t.Setenv("DB_DISABLE_PREPARED_BINARY_RESULT", "not-bool")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for invalid DB_DISABLE_PREPARED_BINARY_RESULT")
		}
	})
}

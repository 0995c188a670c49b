package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Registration backend selectors.
const (
	RegistrationBackendRemote = "remote"
	RegistrationBackendTable  = "table"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database     DatabaseConfig
	Redis        RedisConfig
	CORS         CORSConfig
	Log          LogConfig
	Catalog      CatalogConfig
	Verification VerificationConfig
	Registration RegistrationConfig
	Exports      ExportsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// CatalogConfig governs the course catalog source and cache behaviour.
// When SupabaseURL is empty the catalog falls back to the bundled static
// course list and durable enrollment writes are unavailable.
type CatalogConfig struct {
	SupabaseURL     string
	SupabaseAnonKey string
	CacheTTL        time.Duration
}

// VerificationConfig carries the Turnstile challenge settings. An empty
// SiteKey outside production enables the mock provider; in production it
// marks verification as disabled and blocks submissions.
//
// SecretKey drives server-side siteverify and should be left empty when the
// remote registration backend performs its own captcha verification.
type VerificationConfig struct {
	SiteKey         string
	SecretKey       string
	SiteverifyURL   string
	ChallengeTTL    time.Duration
	MockVerifyDelay time.Duration
}

// RegistrationConfig selects the registration submission backend.
type RegistrationConfig struct {
	Backend     string
	EndpointURL string
}

// ExportsConfig gates the operator-facing registrations export.
type ExportsConfig struct {
	Enabled bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Catalog = CatalogConfig{
		SupabaseURL:     v.GetString("SUPABASE_URL"),
		SupabaseAnonKey: v.GetString("SUPABASE_ANON_KEY"),
		CacheTTL:        parseDuration(v.GetString("CATALOG_CACHE_TTL"), 5*time.Minute),
	}

	cfg.Verification = VerificationConfig{
		SiteKey:         v.GetString("TURNSTILE_SITE_KEY"),
		SecretKey:       v.GetString("TURNSTILE_SECRET_KEY"),
		SiteverifyURL:   v.GetString("TURNSTILE_SITEVERIFY_URL"),
		ChallengeTTL:    parseDuration(v.GetString("CHALLENGE_TTL"), 4*time.Minute),
		MockVerifyDelay: parseDuration(v.GetString("MOCK_VERIFY_DELAY"), 500*time.Millisecond),
	}

	cfg.Registration = RegistrationConfig{
		Backend:     strings.ToLower(v.GetString("REGISTRATION_BACKEND")),
		EndpointURL: v.GetString("REGISTRATION_ENDPOINT_URL"),
	}

	cfg.Exports = ExportsConfig{
		Enabled: v.GetBool("ENABLE_EXPORTS"),
	}

	// A Supabase project exposes Postgres at db.<ref>.supabase.co. When only
	// SUPABASE_URL is configured, derive the connection host from it instead
	// of silently dialing the localhost defaults. Self-hosted instances must
	// set DB_HOST themselves.
	if cfg.Catalog.SupabaseURL != "" && cfg.Database.Host == "localhost" {
		host, err := supabaseDatabaseHost(cfg.Catalog.SupabaseURL)
		if err != nil {
			return nil, err
		}
		cfg.Database.Host = host
		if cfg.Database.SSLMode == "disable" {
			cfg.Database.SSLMode = "require"
		}
	}

	return cfg, nil
}

func supabaseDatabaseHost(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return "", fmt.Errorf("invalid SUPABASE_URL %q", raw)
	}
	host := u.Hostname()
	if !strings.HasSuffix(host, ".supabase.co") {
		return "", fmt.Errorf("cannot derive a database host from SUPABASE_URL %q, set DB_HOST explicitly", raw)
	}
	return "db." + host, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "gold_tech_courses")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SUPABASE_URL", "")
	v.SetDefault("SUPABASE_ANON_KEY", "")
	v.SetDefault("CATALOG_CACHE_TTL", "5m")

	v.SetDefault("TURNSTILE_SITE_KEY", "")
	v.SetDefault("TURNSTILE_SECRET_KEY", "")
	v.SetDefault("TURNSTILE_SITEVERIFY_URL", "https://challenges.cloudflare.com/turnstile/v0/siteverify")
	v.SetDefault("CHALLENGE_TTL", "4m")
	v.SetDefault("MOCK_VERIFY_DELAY", "500ms")

	v.SetDefault("REGISTRATION_BACKEND", RegistrationBackendRemote)
	v.SetDefault("REGISTRATION_ENDPOINT_URL", "")

	v.SetDefault("ENABLE_EXPORTS", false)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

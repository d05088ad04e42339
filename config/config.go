package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration
//
//nolint:govet // Field alignment optimization would reduce readability
type Config struct {
	Server        ServerConfig
	Upstream      UpstreamConfig
	Session       SessionConfig
	Pagination    PaginationConfig
	Logging       LoggingConfig
	Observability ObservabilityConfig
	Profiling     ProfilingConfig
}

type ServerConfig struct {
	Port           string
	GinMode        string
	AppEnv         string
	BaseURL        string
	LoginPath      string
	AllowedOrigins []string
}

// UpstreamConfig describes the TunasKarier REST backend the portal fronts.
type UpstreamConfig struct {
	BaseURL              string
	TimeoutSeconds       int // default timeout for upstream calls
	MentorTimeoutSeconds int // tighter timeout applied to mentor-scoped calls
}

type SessionConfig struct {
	JWTSecret    string
	JWTIssuer    string
	TTLHours     int
	CookieDomain string
	CookieSecure bool
}

// PaginationConfig fixes the enumerated set of allowed page sizes.
type PaginationConfig struct {
	AllowedPageSizes []int
	DefaultPageSize  int
}

type LoggingConfig struct {
	Level string
	Dir   string
}

type ObservabilityConfig struct {
	ExporterEndpoint  string
	ServiceName       string
	ServiceNamespace  string
	ServiceVersion    string
	ServiceInstanceID string
}

type ProfilingConfig struct {
	Enabled               bool
	Endpoint              string
	AppName               string
	SampleTypes           string
	UploadIntervalSeconds int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("PORT", "8082")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("BASE_URL", "https://portal.tunaskarier.com")
	v.SetDefault("LOGIN_PATH", "/login")
	v.SetDefault("ALLOWED_CORS_ORIGINS", "https://portal.tunaskarier.com,https://www.tunaskarier.com")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_DIR", "/app/logs")
	v.SetDefault("UPSTREAM_TIMEOUT_SECONDS", 30)
	v.SetDefault("UPSTREAM_MENTOR_TIMEOUT_SECONDS", 8)
	v.SetDefault("ALLOWED_PAGE_SIZES", "5,10,25,50")
	v.SetDefault("DEFAULT_PAGE_SIZE", 10)
	v.SetDefault("O11Y_EXPORTER_ENDPOINT", "")
	v.SetDefault("O11Y_SERVICE_NAME", "tunaskarier-portal")
	v.SetDefault("O11Y_SERVICE_NAMESPACE", "tunaskarier")
	v.SetDefault("O11Y_SERVICE_VERSION", "1.0.0")
	v.SetDefault("O11Y_PROFILING_ENABLED", false)
	v.SetDefault("O11Y_PROFILING_APP_NAME", "tunaskarier-portal")
	v.SetDefault("O11Y_PROFILING_SAMPLE_TYPES", "cpu,alloc_space,alloc_objects,goroutines,mutex,block")
	v.SetDefault("O11Y_PROFILING_UPLOAD_INTERVAL_SECONDS", 15)

	// Session defaults
	v.SetDefault("JWT_ISSUER", "tunaskarier-portal")
	v.SetDefault("SESSION_TTL_HOURS", 24)
	v.SetDefault("COOKIE_DOMAIN", "")
	v.SetDefault("COOKIE_SECURE", true)

	// Automatically read environment variables
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read from .env file if it exists
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("..")
	_ = v.ReadInConfig() //nolint:errcheck // Ignore error if .env file doesn't exist

	allowedOrigins := splitTrimmed(v.GetString("ALLOWED_CORS_ORIGINS"))

	pageSizes, err := parsePageSizes(v.GetString("ALLOWED_PAGE_SIZES"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           v.GetString("PORT"),
			GinMode:        v.GetString("GIN_MODE"),
			AppEnv:         v.GetString("APP_ENV"),
			BaseURL:        v.GetString("BASE_URL"),
			LoginPath:      v.GetString("LOGIN_PATH"),
			AllowedOrigins: allowedOrigins,
		},
		Upstream: UpstreamConfig{
			BaseURL:              v.GetString("UPSTREAM_BASE_URL"),
			TimeoutSeconds:       v.GetInt("UPSTREAM_TIMEOUT_SECONDS"),
			MentorTimeoutSeconds: v.GetInt("UPSTREAM_MENTOR_TIMEOUT_SECONDS"),
		},
		Session: SessionConfig{
			JWTSecret:    v.GetString("JWT_SECRET"),
			JWTIssuer:    v.GetString("JWT_ISSUER"),
			TTLHours:     v.GetInt("SESSION_TTL_HOURS"),
			CookieDomain: v.GetString("COOKIE_DOMAIN"),
			CookieSecure: v.GetBool("COOKIE_SECURE"),
		},
		Pagination: PaginationConfig{
			AllowedPageSizes: pageSizes,
			DefaultPageSize:  v.GetInt("DEFAULT_PAGE_SIZE"),
		},
		Logging: LoggingConfig{
			Level: v.GetString("LOG_LEVEL"),
			Dir:   v.GetString("LOG_DIR"),
		},
		Observability: ObservabilityConfig{
			ExporterEndpoint:  v.GetString("O11Y_EXPORTER_ENDPOINT"),
			ServiceName:       v.GetString("O11Y_SERVICE_NAME"),
			ServiceNamespace:  v.GetString("O11Y_SERVICE_NAMESPACE"),
			ServiceVersion:    v.GetString("O11Y_SERVICE_VERSION"),
			ServiceInstanceID: v.GetString("SERVICE_INSTANCE_ID"),
		},
		Profiling: ProfilingConfig{
			Enabled:               v.GetBool("O11Y_PROFILING_ENABLED"),
			Endpoint:              v.GetString("O11Y_PROFILING_ENDPOINT"),
			AppName:               v.GetString("O11Y_PROFILING_APP_NAME"),
			SampleTypes:           v.GetString("O11Y_PROFILING_SAMPLE_TYPES"),
			UploadIntervalSeconds: v.GetInt("O11Y_PROFILING_UPLOAD_INTERVAL_SECONDS"),
		},
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration values are set
func (c *Config) Validate() error {
	if c.Upstream.BaseURL == "" {
		return fmt.Errorf("UPSTREAM_BASE_URL is required")
	}
	if c.Upstream.TimeoutSeconds <= 0 {
		return fmt.Errorf("UPSTREAM_TIMEOUT_SECONDS must be positive")
	}
	if c.Upstream.MentorTimeoutSeconds <= 0 {
		return fmt.Errorf("UPSTREAM_MENTOR_TIMEOUT_SECONDS must be positive")
	}

	if c.Session.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Session.TTLHours <= 0 {
		return fmt.Errorf("SESSION_TTL_HOURS must be positive")
	}

	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.Server.BaseURL == "" {
		return fmt.Errorf("BASE_URL is required")
	}
	if len(c.Server.AllowedOrigins) == 0 {
		return fmt.Errorf("ALLOWED_CORS_ORIGINS is required")
	}

	if len(c.Pagination.AllowedPageSizes) == 0 {
		return fmt.Errorf("ALLOWED_PAGE_SIZES is required")
	}
	if !c.Pagination.IsAllowedPageSize(c.Pagination.DefaultPageSize) {
		return fmt.Errorf("DEFAULT_PAGE_SIZE %d is not in ALLOWED_PAGE_SIZES", c.Pagination.DefaultPageSize)
	}

	return nil
}

// IsDevelopment returns true when running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.AppEnv == "development" || c.Server.GinMode == "debug"
}

// IsProduction returns true when running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.AppEnv == "production"
}

// IsAllowedPageSize reports whether size is one of the enumerated page sizes.
func (p PaginationConfig) IsAllowedPageSize(size int) bool {
	for _, s := range p.AllowedPageSizes {
		if s == size {
			return true
		}
	}
	return false
}

func splitTrimmed(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parsePageSizes(s string) ([]int, error) {
	parts := splitTrimmed(s)
	sizes := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid ALLOWED_PAGE_SIZES entry %q", part)
		}
		sizes = append(sizes, n)
	}
	return sizes, nil
}

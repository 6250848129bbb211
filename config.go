package quickbase

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/viper"

	qbio "github.com/BrobridgeOrg/go-quickbase/io"
)

// StorageType represents supported export storage backends.
type StorageType = qbio.StorageType

const (
	// StorageLocal represents local filesystem storage.
	StorageLocal = qbio.StorageLocal
	// StorageS3 represents Amazon S3 storage.
	StorageS3 = qbio.StorageS3
)

// S3Config holds S3-specific configuration.
type S3Config = qbio.S3Config

// LocalConfig holds local filesystem configuration.
type LocalConfig = qbio.LocalConfig

// Config holds the client configuration.
type Config struct {
	// Realm and authentication
	RealmHostname string
	UserToken     string

	// Transport
	UserAgent  string
	BaseURL    string
	Timeout    time.Duration
	RateLimit  float64 // requests per second, 0 disables limiting
	RateBurst  int
	HTTPClient *http.Client

	// Storage configuration for exports
	StorageType StorageType
	S3Config    *S3Config
	LocalConfig *LocalConfig

	// Observability
	Logger     *slog.Logger
	Registerer prometheus.Registerer
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		UserAgent:   "go-quickbase",
		BaseURL:     "https://api.quickbase.com/v1",
		Timeout:     30 * time.Second,
		RateBurst:   1,
		StorageType: StorageLocal,
	}
}

// Option is a functional option for client configuration.
type Option func(*Config)

// WithRealmHostname sets the realm, e.g. "example.quickbase.com".
func WithRealmHostname(hostname string) Option {
	return func(c *Config) {
		c.RealmHostname = hostname
	}
}

// WithUserToken sets the user token used for authentication.
func WithUserToken(token string) Option {
	return func(c *Config) {
		c.UserToken = token
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Config) {
		c.UserAgent = ua
	}
}

// WithBaseURL overrides the API base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Config) {
		c.BaseURL = baseURL
	}
}

// WithTimeout sets the HTTP timeout. It is ignored when WithHTTPClient is
// also given.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.Timeout = d
	}
}

// WithRateLimit limits outgoing requests to rps per second.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Config) {
		c.RateLimit = rps
		c.RateBurst = burst
	}
}

// WithHTTPClient sets the HTTP client used by the transport.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Config) {
		c.HTTPClient = client
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithMetrics registers request metrics on reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registerer = reg
	}
}

// WithS3 configures S3 as the export storage backend.
func WithS3(cfg *S3Config) Option {
	return func(c *Config) {
		c.StorageType = StorageS3
		c.S3Config = cfg
	}
}

// WithLocalStorage configures local filesystem storage rooted at baseDir.
func WithLocalStorage(baseDir string) Option {
	return func(c *Config) {
		c.StorageType = StorageLocal
		c.LocalConfig = &LocalConfig{BaseDir: baseDir}
	}
}

// configKeys lists the settings LoadConfig understands, without prefix.
var configKeys = []string{
	"realm_hostname",
	"user_token",
	"user_agent",
	"base_url",
	"timeout",
	"rate_limit",
	"rate_burst",
	"storage",
	"s3_region",
	"s3_endpoint",
	"s3_force_path_style",
	"local_base_dir",
}

// LoadConfig reads settings from an optional .env file in the working
// directory and from environment variables named <PREFIX>_<KEY>, for example
// QB_REALM_HOSTNAME or QB_USER_TOKEN. Environment variables take precedence
// over the .env file, which takes precedence over DefaultConfig.
func LoadConfig(prefix string) (*Config, error) {
	prefix = strings.ToUpper(strings.TrimSuffix(prefix, "_"))

	file := viper.New()
	file.SetConfigFile(".env")
	file.SetConfigType("env")
	if err := file.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read .env: %w", err)
		}
	}

	v := viper.New()
	for _, key := range configKeys {
		name := prefix + "_" + strings.ToUpper(key)
		if file.IsSet(name) {
			v.SetDefault(key, file.Get(name))
		}
		if err := v.BindEnv(key, name); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", name, err)
		}
	}

	cfg := DefaultConfig()
	if v.IsSet("realm_hostname") {
		cfg.RealmHostname = v.GetString("realm_hostname")
	}
	if v.IsSet("user_token") {
		cfg.UserToken = v.GetString("user_token")
	}
	if v.IsSet("user_agent") {
		cfg.UserAgent = v.GetString("user_agent")
	}
	if v.IsSet("base_url") {
		cfg.BaseURL = v.GetString("base_url")
	}
	if v.IsSet("timeout") {
		d, err := time.ParseDuration(v.GetString("timeout"))
		if err != nil {
			return nil, fmt.Errorf("%w: %s_TIMEOUT: %v", ErrInvalidConfig, prefix, err)
		}
		cfg.Timeout = d
	}
	if v.IsSet("rate_limit") {
		cfg.RateLimit = v.GetFloat64("rate_limit")
	}
	if v.IsSet("rate_burst") {
		cfg.RateBurst = v.GetInt("rate_burst")
	}
	if v.IsSet("storage") {
		st, err := qbio.ParseStorageType(v.GetString("storage"))
		if err != nil {
			return nil, fmt.Errorf("%w: %s_STORAGE: %v", ErrInvalidConfig, prefix, err)
		}
		cfg.StorageType = st
	}
	if cfg.StorageType == StorageS3 {
		cfg.S3Config = &S3Config{
			Region:         v.GetString("s3_region"),
			Endpoint:       v.GetString("s3_endpoint"),
			ForcePathStyle: v.GetBool("s3_force_path_style"),
		}
	}
	if v.IsSet("local_base_dir") {
		cfg.LocalConfig = &LocalConfig{BaseDir: v.GetString("local_base_dir")}
	}

	return cfg, nil
}

// Options returns the options that reproduce c, so a loaded config can be
// combined with explicit options in NewClient.
func (c *Config) Options() []Option {
	snapshot := *c
	return []Option{func(dst *Config) {
		*dst = snapshot
	}}
}

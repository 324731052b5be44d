// Package config loads the sheets-search YAML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"

	"github.com/sheetsearch/sheets-search/sheet"
)

// Config holds the sheets-search configuration.
type Config struct {
	Google  GoogleConfig  `yaml:"google"`
	Sheet   SheetConfig   `yaml:"sheet"`
	HTTP    HTTPConfig    `yaml:"http"`
	Session SessionConfig `yaml:"session"`
	Search  SearchConfig  `yaml:"search"`
	Logging LoggingConfig `yaml:"logging"`
}

// GoogleConfig holds the OAuth2 client settings.
type GoogleConfig struct {
	Credentials string `yaml:"credentials"`  // path to the 'credentials.json' client secrets
	RedirectURL string `yaml:"redirect_url"` // must match an authorised redirect URI of the client
	Workdir     string `yaml:"workdir"`      // CLI token cache
	RevokeURL   string `yaml:"revoke_url"`
}

// SheetConfig identifies the range that is searched.
type SheetConfig struct {
	URL         string `yaml:"url"` // spreadsheet URL or ID
	Range       string `yaml:"range"`
	ValueRender string `yaml:"value_render"` // FORMATTED_VALUE | UNFORMATTED_VALUE
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Bind            string `yaml:"bind"`
	ReadTimeoutSec  int    `yaml:"read_timeout_sec"`
	WriteTimeoutSec int    `yaml:"write_timeout_sec"`
	ShutdownSec     int    `yaml:"shutdown_timeout_sec"`
	SecureCookies   bool   `yaml:"secure_cookies"`
}

// SessionConfig selects the session store.
type SessionConfig struct {
	Driver    string   `yaml:"driver"` // memory, redis (default: memory)
	TTLMin    int      `yaml:"ttl_min"`
	Addrs     []string `yaml:"addrs"`
	Password  string   `yaml:"password"`
	KeyPrefix string   `yaml:"key_prefix"`
}

// SearchConfig holds the search page settings.
type SearchConfig struct {
	PeopleCounts []string `yaml:"people_counts"`
	TimeZone     string   `yaml:"timezone"` // IANA zone for the 'last searched' label, default local
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // console, json
}

// Default returns a configuration with every default applied.
func Default() Config {
	cfg := Config{}
	cfg.ApplyDefaults()

	return cfg
}

// Load reads a configuration file. A missing file is not an error if path is the default
// configuration file: the defaults are returned instead.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if os.IsNotExist(err) && path == DefaultConfig {
			cfg := Default()
			return cfg, nil
		}

		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	return Parse(data)
}

// Parse decodes a YAML configuration, substituting ${VAR} and ${VAR:-default} environment
// variables first.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.Google.Credentials == "" {
		c.Google.Credentials = DefaultCredentials
	}
	if c.Google.Workdir == "" {
		c.Google.Workdir = filepath.Join(DefaultWorkdir, ".google")
	}
	if c.Sheet.Range == "" {
		c.Sheet.Range = sheet.DefaultRange
	}
	if c.Sheet.ValueRender == "" {
		c.Sheet.ValueRender = sheet.FormattedValue
	}
	if c.HTTP.Bind == "" {
		c.HTTP.Bind = "localhost:8080"
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Google.RedirectURL == "" {
		c.Google.RedirectURL = redirectURL(c.HTTP.Bind)
	}
	if c.Session.Driver == "" {
		c.Session.Driver = "memory"
	}
	if c.Session.TTLMin <= 0 {
		c.Session.TTLMin = 8 * 60
	}
	if c.Session.KeyPrefix == "" {
		c.Session.KeyPrefix = "sheets-search:"
	}
	if len(c.Search.PeopleCounts) == 0 {
		c.Search.PeopleCounts = []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10"}
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
}

// SetBind changes the HTTP server address. A redirect URL that was derived from the previous
// address follows the new one, an explicitly configured redirect URL is left as is.
func (c *Config) SetBind(bind string) {
	if c.Google.RedirectURL == "" || c.Google.RedirectURL == redirectURL(c.HTTP.Bind) {
		c.Google.RedirectURL = redirectURL(bind)
	}

	c.HTTP.Bind = bind
}

func redirectURL(bind string) string {
	return fmt.Sprintf("http://%s/auth/callback", bind)
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.Sheet.URL != "" {
		if _, err := sheet.ParseURL(c.Sheet.URL); err != nil {
			return fmt.Errorf("sheet.url: %w", err)
		}
	}

	if err := sheet.ValidateRange(c.Sheet.Range); err != nil {
		return fmt.Errorf("sheet.range: %w", err)
	}

	switch c.Sheet.ValueRender {
	case sheet.FormattedValue, sheet.UnformattedValue:
	default:
		return fmt.Errorf("sheet.value_render must be %q or %q, got %q", sheet.FormattedValue, sheet.UnformattedValue, c.Sheet.ValueRender)
	}

	switch c.Session.Driver {
	case "memory":
	case "redis":
		if len(c.Session.Addrs) == 0 {
			return fmt.Errorf("session.addrs is required for the redis driver")
		}
	default:
		return fmt.Errorf("session.driver must be \"memory\" or \"redis\", got %q", c.Session.Driver)
	}

	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be \"console\" or \"json\", got %q", c.Logging.Format)
	}

	if _, err := c.Location(); err != nil {
		return fmt.Errorf("search.timezone: %w", err)
	}

	return nil
}

// Location returns the time zone for the 'last searched' label.
func (c *Config) Location() (*time.Location, error) {
	if c.Search.TimeZone == "" {
		return time.Local, nil
	}

	return time.LoadLocation(c.Search.TimeZone)
}

func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Session.TTLMin) * time.Minute
}

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		name, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(name)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}

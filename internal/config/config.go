// Package config resolves ft configuration from defaults, ~/.fireteam/config.toml,
// a .env file and FT_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvPrefix  = "FT"
	ConfigDir  = ".fireteam"
	configName = "config"
	configType = "toml"
)

const (
	KeyAPIKey            = "api_key"
	KeyClientID          = "client_id"
	KeyClientSecret      = "client_secret"
	KeyBaseURL           = "bungie.base_url"
	KeyContentBaseURL    = "bungie.content_base_url"
	KeyAuthURL           = "bungie.auth_url"
	KeyTokenURL          = "bungie.token_url"
	KeyRequestsPerSecond = "bungie.requests_per_second"
	KeyBurst             = "bungie.burst"
	KeyTimeout           = "bungie.timeout"
	KeyAuthListen        = "auth.listen"
	KeyAuthTimeout       = "auth.timeout"
	KeySessionsPath      = "sessions.path"
	KeySecretsDir        = "secrets.dir"
	KeyRefreshInterval   = "refresh.interval"
	KeyRefreshSkew       = "refresh.skew"
	KeyPageSize          = "view.page_size"
	KeyLanguage          = "view.language"
	KeyRecordType        = "view.record_type"
	KeyLogLevel          = "log.level"
	KeyLogFormat         = "log.format"
	KeyServeAddr         = "serve.addr"
)

type Config struct {
	APIKey       string
	ClientID     string
	ClientSecret string

	Bungie  BungieConfig
	Auth    AuthConfig
	Refresh RefreshConfig
	View    ViewConfig
	Log     LogConfig

	ServeAddr    string
	SessionsPath string
	SecretsDir   string
}

type BungieConfig struct {
	BaseURL           string
	ContentBaseURL    string
	AuthURL           string
	TokenURL          string
	RequestsPerSecond float64
	Burst             int
	Timeout           time.Duration
}

type AuthConfig struct {
	ListenAddr string
	Timeout    time.Duration
}

type RefreshConfig struct {
	Interval time.Duration
	Skew     time.Duration
}

type ViewConfig struct {
	PageSize   int
	Language   string
	RecordType string
}

type LogConfig struct {
	Level  string
	Format string
}

// LoadDotEnv loads .env style files into the process environment. Missing files
// are ignored; variables already set are not overridden.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}

	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", path, err)
		}
	}

	return nil
}

func SetDefaults(v *viper.Viper, homeDir string) {
	base := filepath.Join(homeDir, ConfigDir)

	v.SetDefault(KeyBaseURL, "https://www.bungie.net/Platform")
	v.SetDefault(KeyContentBaseURL, "https://www.bungie.net")
	v.SetDefault(KeyAuthURL, "https://www.bungie.net/en/OAuth/Authorize")
	v.SetDefault(KeyTokenURL, "https://www.bungie.net/platform/app/oauth/token/")
	v.SetDefault(KeyRequestsPerSecond, 20.0)
	v.SetDefault(KeyBurst, 5)
	v.SetDefault(KeyTimeout, 30*time.Second)
	v.SetDefault(KeyAuthListen, "127.0.0.1:1455")
	v.SetDefault(KeyAuthTimeout, 5*time.Minute)
	v.SetDefault(KeySessionsPath, filepath.Join(base, "sessions.toml"))
	v.SetDefault(KeySecretsDir, filepath.Join(base, "secrets"))
	v.SetDefault(KeyRefreshInterval, 90*time.Second)
	v.SetDefault(KeyRefreshSkew, time.Duration(0))
	v.SetDefault(KeyPageSize, 100)
	v.SetDefault(KeyLanguage, "en")
	v.SetDefault(KeyRecordType, "Triumphs")
	v.SetDefault(KeyLogLevel, "warn")
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeyServeAddr, "127.0.0.1:8787")
}

// Load reads configuration into v. A nil v gets a fresh viper instance.
func Load(v *viper.Viper, homeDir string) (Config, error) {
	if v == nil {
		v = viper.New()
	}

	SetDefaults(v, homeDir)

	v.SetConfigName(configName)
	v.SetConfigType(configType)
	v.AddConfigPath(filepath.Join(homeDir, ConfigDir))

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := Config{
		APIKey:       v.GetString(KeyAPIKey),
		ClientID:     v.GetString(KeyClientID),
		ClientSecret: v.GetString(KeyClientSecret),
		Bungie: BungieConfig{
			BaseURL:           strings.TrimRight(v.GetString(KeyBaseURL), "/"),
			ContentBaseURL:    strings.TrimRight(v.GetString(KeyContentBaseURL), "/"),
			AuthURL:           v.GetString(KeyAuthURL),
			TokenURL:          v.GetString(KeyTokenURL),
			RequestsPerSecond: v.GetFloat64(KeyRequestsPerSecond),
			Burst:             v.GetInt(KeyBurst),
			Timeout:           v.GetDuration(KeyTimeout),
		},
		Auth: AuthConfig{
			ListenAddr: v.GetString(KeyAuthListen),
			Timeout:    v.GetDuration(KeyAuthTimeout),
		},
		Refresh: RefreshConfig{
			Interval: v.GetDuration(KeyRefreshInterval),
			Skew:     v.GetDuration(KeyRefreshSkew),
		},
		View: ViewConfig{
			PageSize:   v.GetInt(KeyPageSize),
			Language:   v.GetString(KeyLanguage),
			RecordType: v.GetString(KeyRecordType),
		},
		Log: LogConfig{
			Level:  v.GetString(KeyLogLevel),
			Format: v.GetString(KeyLogFormat),
		},
		ServeAddr:    v.GetString(KeyServeAddr),
		SessionsPath: ExpandHome(v.GetString(KeySessionsPath), homeDir),
		SecretsDir:   ExpandHome(v.GetString(KeySecretsDir), homeDir),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if c.Bungie.BaseURL == "" {
		return fmt.Errorf("%s cannot be empty", KeyBaseURL)
	}
	if c.Bungie.RequestsPerSecond <= 0 {
		return fmt.Errorf("%s must be > 0", KeyRequestsPerSecond)
	}
	if c.Bungie.Burst <= 0 {
		return fmt.Errorf("%s must be > 0", KeyBurst)
	}
	if c.Refresh.Interval <= 0 {
		return fmt.Errorf("%s must be > 0", KeyRefreshInterval)
	}
	if c.Refresh.Skew < 0 {
		return fmt.Errorf("%s cannot be negative", KeyRefreshSkew)
	}
	if c.View.PageSize <= 0 {
		return fmt.Errorf("%s must be > 0", KeyPageSize)
	}
	if c.SessionsPath == "" {
		return fmt.Errorf("%s cannot be empty", KeySessionsPath)
	}
	return nil
}

// RequireAPIKey reports a missing upstream API key.
func (c Config) RequireAPIKey() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("missing API key: set %s_API_KEY or %s in config.toml", EnvPrefix, KeyAPIKey)
	}
	return nil
}

// RequireOAuthClient reports missing OAuth client credentials.
func (c Config) RequireOAuthClient() error {
	if strings.TrimSpace(c.ClientID) == "" {
		return fmt.Errorf("missing OAuth client id: set %s_CLIENT_ID", EnvPrefix)
	}
	return nil
}

// ExpandHome resolves a leading ~ against homeDir.
func ExpandHome(path, homeDir string) string {
	if path == "~" {
		return homeDir
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir, path[2:])
	}
	return path
}

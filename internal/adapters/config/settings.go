package config

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"go.trai.ch/cask/internal/core/domain"
	"go.trai.ch/zerr"
)

// Backends the build service can be served by.
const (
	BackendHTTP  = "http"
	BackendLocal = "local"
)

const (
	// EnvPrefix prefixes every environment variable read as a setting.
	EnvPrefix = "CASK"
	// SettingsFile is the optional settings file name, without extension.
	SettingsFile = "cask.settings"
)

// Setting keys.
const (
	keyBackend         = "backend"
	keyHubURL          = "hub_url"
	keyToken           = "token"
	keyLocalStatePath  = "local_state_path"
	keyPollInterval    = "poll_interval"
	keyPollMaxInterval = "poll_max_interval"
	keyPollTimeout     = "poll_timeout"
	keyEnvironmentID   = "environment_id"
	keyEnvironmentName = "environment_name"
	keyEnvironmentTTL  = "environment_ttl"
	keyLeaseCachePath  = "lease_cache_path"
	keyGitBaseURL      = "git_base_url"
	keyWorkDir         = "work_dir"
	keyConfigFile      = "config_file"
	keyLogLevel        = "log_level"
)

// Settings holds runtime configuration that is not part of the project file.
type Settings struct {
	Backend string
	HubURL  string
	Token   string

	// LocalStatePath is where the local build service keeps its records.
	LocalStatePath string

	PollInterval    time.Duration
	PollMaxInterval time.Duration
	PollTimeout     time.Duration

	// EnvironmentID pins an existing helper environment and skips its lifecycle.
	EnvironmentID   string
	EnvironmentName string
	EnvironmentTTL  time.Duration
	LeaseCachePath  string

	GitBaseURL string
	WorkDir    string
	ConfigFile string
	LogLevel   domain.LogLevel
}

// Overrides are values set on the command line. They win over every other source.
type Overrides struct {
	WorkDir    string
	ConfigFile string
	Local      bool
}

type overridesKey struct{}

// ContextWithOverrides returns a copy of ctx carrying o.
func ContextWithOverrides(ctx context.Context, o Overrides) context.Context {
	return context.WithValue(ctx, overridesKey{}, o)
}

// OverridesFromContext returns the overrides carried by ctx.
func OverridesFromContext(ctx context.Context) Overrides {
	o, _ := ctx.Value(overridesKey{}).(Overrides)
	return o
}

// LoadSettings resolves settings from defaults, the optional settings file in
// dir, CASK_* environment variables and o, in increasing precedence.
func LoadSettings(dir string, o Overrides) (*Settings, error) {
	if o.WorkDir != "" {
		dir = o.WorkDir
	}

	v := viper.New()
	setDefaults(v, dir)

	v.SetConfigName(SettingsFile)
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, zerr.With(zerr.Wrap(domain.ErrSettingsLoadFailed, err.Error()), "dir", dir)
		}
	}

	if o.Local {
		v.Set(keyBackend, BackendLocal)
	}
	if o.ConfigFile != "" {
		v.Set(keyConfigFile, o.ConfigFile)
	}

	s := &Settings{
		Backend:         v.GetString(keyBackend),
		HubURL:          v.GetString(keyHubURL),
		Token:           v.GetString(keyToken),
		LocalStatePath:  v.GetString(keyLocalStatePath),
		PollInterval:    v.GetDuration(keyPollInterval),
		PollMaxInterval: v.GetDuration(keyPollMaxInterval),
		PollTimeout:     v.GetDuration(keyPollTimeout),
		EnvironmentID:   v.GetString(keyEnvironmentID),
		EnvironmentName: v.GetString(keyEnvironmentName),
		EnvironmentTTL:  v.GetDuration(keyEnvironmentTTL),
		LeaseCachePath:  v.GetString(keyLeaseCachePath),
		GitBaseURL:      v.GetString(keyGitBaseURL),
		WorkDir:         v.GetString(keyWorkDir),
		ConfigFile:      v.GetString(keyConfigFile),
		LogLevel:        parseLogLevel(v.GetString(keyLogLevel)),
	}
	if o.WorkDir != "" {
		s.WorkDir = o.WorkDir
	}

	return s, s.validate()
}

func setDefaults(v *viper.Viper, dir string) {
	v.SetDefault(keyBackend, BackendHTTP)
	v.SetDefault(keyLocalStatePath, filepath.Join(dir, ".cask", "hub.json"))
	v.SetDefault(keyPollInterval, 10*time.Second)
	v.SetDefault(keyPollMaxInterval, time.Minute)
	v.SetDefault(keyPollTimeout, 30*time.Minute)
	v.SetDefault(keyEnvironmentName, "cask-helper")
	v.SetDefault(keyEnvironmentTTL, time.Hour)
	v.SetDefault(keyLeaseCachePath, filepath.Join(dir, ".cask", "environment.json"))
	v.SetDefault(keyGitBaseURL, "https://github.com")
	v.SetDefault(keyWorkDir, dir)
	v.SetDefault(keyConfigFile, domain.DefaultConfigFile)
	v.SetDefault(keyLogLevel, "info")
}

func (s *Settings) validate() error {
	switch s.Backend {
	case BackendHTTP:
		if s.HubURL == "" {
			return zerr.With(zerr.Wrap(domain.ErrSettingsLoadFailed, "hub_url is required for the http backend"), "env", EnvPrefix+"_HUB_URL")
		}
	case BackendLocal:
	default:
		return zerr.With(zerr.Wrap(domain.ErrSettingsLoadFailed, "unknown backend"), "backend", s.Backend)
	}
	if s.PollInterval <= 0 {
		return zerr.With(zerr.Wrap(domain.ErrSettingsLoadFailed, "poll_interval must be positive"), "poll_interval", s.PollInterval)
	}
	return nil
}

func parseLogLevel(s string) domain.LogLevel {
	switch s {
	case "debug", "DEBUG":
		return domain.LogLevelDebug
	case "warn", "WARN":
		return domain.LogLevelWarn
	case "error", "ERROR":
		return domain.LogLevelError
	default:
		return domain.LogLevelInfo
	}
}

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/viper"

	"estatewatch/internal/email"
)

const DEFAULT_SUPPORT_URL = "https://github.com/estatewatch/estatewatch"
const QR_IMAGE_SIZE = 512

type PolicyConfig struct {
	// Optional YAML file replacing the built-in route policy table.
	PolicyFile string `mapstructure:"policy_file"`
}

type Config struct {
	// Secret key for signing session tokens. Must be set in production.
	Secret string `mapstructure:"secret"`
	// Session TTL in hours.
	SessionTTL uint   `mapstructure:"session_ttl"`
	LogLevel   string `mapstructure:"log_level"`

	// Comma separated list of allowed CIDR networks. Empty means allow all.
	AllowedNetworks string `mapstructure:"allowed_networks"`

	// Folder for resident roster CSV exports.
	RosterFolder string `mapstructure:"roster_folder"`

	Policy PolicyConfig `mapstructure:"policy"`

	// Per-role argon2id passcode hashes, role name -> encoded hash.
	// Empty means role selection is trusted (no passcode prompt).
	Passcodes map[string]string `mapstructure:"passcodes"`

	// Interval in minutes between expiry sweeps of overdue authorizations.
	ExpirySweepInterval uint `mapstructure:"expiry_sweep_interval"`

	BaseURL    string `mapstructure:"base_url"` // Base URL for the application. May be relative, e.g. /estatewatch/, or absolute.
	SupportURL string `mapstructure:"support_url"`

	Storage Storage `mapstructure:"storage"`

	// Access code notification email configuration
	Email email.Config `mapstructure:"email"`
}

var Cfg *Config

// Check if running in Docker container by checking for the presence of /.dockerenv file
func runningInDocker() bool {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}
	return false
}

func getConfigPath() string {
	if runningInDocker() {
		return "/app/instance"
	}
	return "./instance"
}

// LoadConfig reads configuration from environment variables and returns a Config struct.
func LoadConfig(configFile ...string) (*Config, error) {
	var cfg Config

	v := viper.New()
	v.SetConfigName("config")
	v.AddConfigPath(getConfigPath())
	v.AddConfigPath(".")
	v.SetEnvPrefix("")

	if len(configFile) > 0 {
		for _, path := range configFile {
			v.SetConfigFile(path)
		}
	}

	for k, val := range Defaults() {
		v.SetDefault(k, val)
	}

	var rosterFolder string
	// If running in Docker, use /app/instance, otherwise use ./instance relative to cwd
	if runningInDocker() {
		rosterFolder = "/app/instance/"
	} else {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("unable to get current working directory: %v", err)
		}
		rosterFolder = fmt.Sprintf("%s/instance/", cwd)
	}

	v.SetDefault("ROSTER_FOLDER", rosterFolder)

	// Load configuration from environment variables
	v.AutomaticEnv()

	// A missing default config file is fine; an explicit one must exist
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("unable to read config file: %v", err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %v", err)
	}

	// Convert relative storage paths into the instance folder
	if cfg.Storage.SQLite != nil && cfg.Storage.SQLite.Path != "" {
		if cfg.Storage.SQLite.Path == ":memory:" {
			// In-memory database, do nothing
		} else if !os.IsPathSeparator(cfg.Storage.SQLite.Path[0]) {
			cfg.Storage.SQLite.Path = fmt.Sprintf("%s/%s", getConfigPath(), cfg.Storage.SQLite.Path)
		}
	}
	if cfg.Storage.LocalFile != nil && cfg.Storage.LocalFile.Path != "" {
		if !os.IsPathSeparator(cfg.Storage.LocalFile.Path[0]) {
			cfg.Storage.LocalFile.Path = fmt.Sprintf("%s/%s", getConfigPath(), cfg.Storage.LocalFile.Path)
		}
	}

	// Warn if secret is missing - this is a critical security setting for production
	if cfg.Secret == "" {
		if os.Getenv("GIN_MODE") == "release" {
			panic("SECRET configuration variable is required in production")
		} else {
			slog.Warn("Secret is not set. Do not use in production.")
		}
	}

	return &cfg, nil
}

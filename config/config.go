// Package config loads the optional crawler configuration file. Flags
// override everything here; the file only changes defaults.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/morikuni/failure/v2"
	"gopkg.in/yaml.v3"
)

type ErrorCode string

// ErrInvalidConfig represents a configuration file that fails validation
const ErrInvalidConfig ErrorCode = "InvalidConfig"

func (c ErrorCode) ErrorCode() string {
	return string(c)
}

// Duration is a time.Duration that unmarshals from the human-readable form
// ("10s", "1m30s") used in the configuration file
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config holds the crawler defaults read from the configuration file
type Config struct {
	// DatabasePath is where the SQLite store lives
	DatabasePath string `yaml:"database_path" validate:"required"`

	// RegistryURL overrides the npm registry endpoint
	RegistryURL string `yaml:"registry_url" validate:"omitempty,url"`

	// Limit is the default number of packages per crawl
	Limit int `yaml:"limit" validate:"required,min=1,max=500"`

	// Parallelism bounds concurrent probe attempts
	Parallelism int `yaml:"parallelism" validate:"required,min=1,max=32"`

	// ResponseWait bounds each response read during probing
	ResponseWait Duration `yaml:"response_wait" validate:"min=0"`

	// GracePeriod is the startup grace before the handshake
	GracePeriod Duration `yaml:"grace_period" validate:"min=0"`
}

// Default returns the configuration used when no file exists
func Default() Config {
	return Config{
		DatabasePath: defaultDatabasePath(),
		Limit:        20,
		Parallelism:  4,
	}
}

// DefaultPath returns the conventional configuration file location
func DefaultPath() string {
	configHome, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(configHome, "mcpcrawl", "config.yaml")
}

// Load reads the configuration file at path, falling back to the default
// location when path is empty and to Default() when no file exists
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return Config{}, failure.Wrap(err, failure.Context{"path": path})
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, failure.New(ErrInvalidConfig,
			failure.Message("Configuration file is not valid YAML"),
			failure.Context{"path": path, "cause": err.Error()},
		)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, failure.New(ErrInvalidConfig,
			failure.Message("Configuration file failed validation"),
			failure.Context{"path": path, "cause": err.Error()},
		)
	}

	return cfg, nil
}

func defaultDatabasePath() string {
	configHome, err := os.UserConfigDir()
	if err != nil {
		return "mcpcrawl.db"
	}
	return filepath.Join(configHome, "mcpcrawl", "mcpcrawl.db")
}

package config

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/structs"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"

	"github.com/Krajiyah/ble-services/pkg/gatt"
)

const (
	CfgFilename = ".ble-services.yml"
	EnvPrefix   = "BLESVC_"
)

type Config struct {
	Name          string        `yaml:"name"`
	LogLevel      string        `yaml:"log_level"`
	PollOnRead    bool          `yaml:"poll_on_read"`
	WritableLevel bool          `yaml:"writable_level"`
	DeviceTimeout time.Duration `yaml:"device_timeout"`
	InitialLevel  uint8         `yaml:"initial_level"`
}

func DefaultConfig() Config {
	return Config{
		Name:          "ble-services",
		LogLevel:      "info",
		DeviceTimeout: 10 * time.Second,
		InitialLevel:  100,
	}
}

// DefaultPath is the configuration file in the user's home directory
func DefaultPath() (string, error) {
	dir, err := homedir.Dir()
	if err != nil {
		return "", errors.Wrap(err, "homedir issue: ")
	}
	return filepath.Join(dir, CfgFilename), nil
}

// Load reads path over the defaults and applies BLESVC_* environment overrides. An empty
// path selects DefaultPath; a missing file is not an error.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return cfg, err
		}
		path = p
	} else {
		p, err := homedir.Expand(path)
		if err != nil {
			return cfg, errors.Wrap(err, "homedir issue: ")
		}
		path = p
	}

	log.Debugf("Reading configuration from %s", path)
	blob, err := ioutil.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return cfg, errors.Wrapf(err, "reading %s", path)
	default:
		if err := yaml.Unmarshal(blob, &cfg); err != nil {
			return cfg, errors.Wrapf(err, "error reading config (%s)", path)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (cfg *Config) applyEnv(lookup func(string) (string, bool)) error {
	var err error
	if v, ok := lookup(EnvPrefix + "NAME"); ok {
		cfg.Name = v
	}
	if v, ok := lookup(EnvPrefix + "LOG_LEVEL"); ok {
		cfg.LogLevel = v
	}
	if v, ok := lookup(EnvPrefix + "POLL_ON_READ"); ok {
		if cfg.PollOnRead, err = cast.ToBoolE(v); err != nil {
			return errors.Wrap(err, EnvPrefix+"POLL_ON_READ")
		}
	}
	if v, ok := lookup(EnvPrefix + "WRITABLE_LEVEL"); ok {
		if cfg.WritableLevel, err = cast.ToBoolE(v); err != nil {
			return errors.Wrap(err, EnvPrefix+"WRITABLE_LEVEL")
		}
	}
	if v, ok := lookup(EnvPrefix + "DEVICE_TIMEOUT"); ok {
		if cfg.DeviceTimeout, err = cast.ToDurationE(v); err != nil {
			return errors.Wrap(err, EnvPrefix+"DEVICE_TIMEOUT")
		}
	}
	if v, ok := lookup(EnvPrefix + "INITIAL_LEVEL"); ok {
		if cfg.InitialLevel, err = cast.ToUint8E(v); err != nil {
			return errors.Wrap(err, EnvPrefix+"INITIAL_LEVEL")
		}
	}
	return nil
}

func (cfg *Config) Validate() error {
	if strings.TrimSpace(cfg.Name) == "" {
		return errors.New("name must not be empty")
	}
	if _, err := log.ParseLevel(cfg.LogLevel); err != nil {
		return errors.Wrap(err, "log_level")
	}
	if cfg.DeviceTimeout <= 0 {
		return errors.Errorf("device_timeout must be positive, got %s", cfg.DeviceTimeout)
	}
	if cfg.InitialLevel > 100 {
		return errors.Errorf("initial_level %d out of range 0-100", cfg.InitialLevel)
	}
	return nil
}

// ApplyLogLevel sets the global logrus level
func (cfg *Config) ApplyLogLevel() error {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return errors.Wrap(err, "log_level")
	}
	log.SetLevel(level)
	return nil
}

// Fields renders cfg for structured logging, keyed like the file
func (cfg *Config) Fields() log.Fields {
	s := structs.New(cfg)
	s.TagName = "yaml"
	fields := log.Fields(s.Map())
	fields["device_timeout"] = cfg.DeviceTimeout.String()
	return fields
}

func (cfg *Config) SensorConfig() gatt.SensorConfig {
	return gatt.SensorConfig{
		PollOnRead:    cfg.PollOnRead,
		WritableLevel: cfg.WritableLevel,
		InitialLevel:  cfg.InitialLevel,
	}
}

func (cfg *Config) ActuatorConfig() gatt.ActuatorConfig {
	return gatt.ActuatorConfig{PollOnRead: cfg.PollOnRead}
}

// Package config loads print-head daemon configuration from an optional
// YAML file, PHEAD_ environment variables and command line flags.
package config

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
	"github.com/spf13/viper"

	"github.com/smalldrop/phead.go/pkg/phead"
)

// DeviceConfig describes the unit.
type DeviceConfig struct {
	Model        string             `mapstructure:"model"`
	ID           string             `mapstructure:"id"`
	Capabilities phead.Capabilities `mapstructure:"capabilities"`
	Power        string             `mapstructure:"power"`
	BatteryLevel uint16             `mapstructure:"batteryLevel"`
}

// LinkConfig describes the command link.
type LinkConfig struct {
	URL         string        `mapstructure:"url"`
	PingTimeout time.Duration `mapstructure:"pingTimeout"`
}

// TelemetryConfig describes state publishing.
type TelemetryConfig struct {
	Enable   bool          `mapstructure:"enable"`
	URL      string        `mapstructure:"url"`
	Interval time.Duration `mapstructure:"interval"`
}

// MetricsConfig describes the Prometheus endpoint.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
	Path string `mapstructure:"path"`
}

// Config is the daemon configuration.
type Config struct {
	Device    DeviceConfig    `mapstructure:"device"`
	Link      LinkConfig      `mapstructure:"link"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

type flagValues struct {
	configFile string
	linkURL    string
	unitID     string
}

var flags flagValues

func init() {
	flags.configFile = os.Getenv("PHEAD_CONFIG")
}

// SetupFlags sets up command line flags.
func SetupFlags() {
	flag.StringVar(&flags.configFile, "config", flags.configFile, "Config file (YAML).")
	flag.StringVar(&flags.linkURL, "link", flags.linkURL, "Link URL, overrides link.url.")
	flag.StringVar(&flags.unitID, "id", flags.unitID, "Unit ID, overrides device.id.")
}

// Load reads configuration from path (optional), then PHEAD_ environment
// variables, e.g. PHEAD_LINK_URL for link.url.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("PHEAD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %v", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %v", err)
	}
	if cfg.Device.ID == "" {
		cfg.Device.ID = MachineID()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// MustLoad loads the config file given by flags and applies flag overrides.
func MustLoad() *Config {
	cfg, err := Load(flags.configFile)
	if err != nil {
		log.Fatalln(err)
	}
	if flags.linkURL != "" {
		cfg.Link.URL = flags.linkURL
	}
	if flags.unitID != "" {
		cfg.Device.ID = flags.unitID
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("device.model", phead.DefaultModelName)
	v.SetDefault("device.id", "")
	v.SetDefault("device.capabilities.temperature", false)
	v.SetDefault("device.capabilities.uv", false)
	v.SetDefault("device.power", phead.PowerPlug.String())
	v.SetDefault("device.batteryLevel", 0)

	v.SetDefault("link.url", "serial:///dev/ttyUSB0")
	v.SetDefault("link.pingTimeout", "5s")

	v.SetDefault("telemetry.enable", false)
	v.SetDefault("telemetry.url", "mqtt://localhost:1883/phead/")
	v.SetDefault("telemetry.interval", "1s")

	v.SetDefault("metrics.addr", "")
	v.SetDefault("metrics.path", "/metrics")
}

// Validate checks the config.
func (c *Config) Validate() error {
	if _, err := c.Profile(); err != nil {
		return err
	}
	if c.Link.URL == "" {
		return fmt.Errorf("link.url is required")
	}
	if c.Telemetry.Enable && c.Telemetry.Interval <= 0 {
		return fmt.Errorf("telemetry.interval must be positive")
	}
	return nil
}

// Profile converts the device section to a phead.Profile.
func (c *Config) Profile() (phead.Profile, error) {
	power, err := phead.ParsePowerMode(c.Device.Power)
	if err != nil {
		return phead.Profile{}, err
	}
	p := phead.Profile{
		ModelName:    c.Device.Model,
		Capabilities: c.Device.Capabilities,
		PowerMode:    power,
		BatteryLevel: c.Device.BatteryLevel,
	}
	return p, p.Validate()
}

// MachineID retrieves the unique ID identifying the machine.
func MachineID() string {
	id, err := machineid.ID()
	if err != nil {
		glog.Warningf("machine id unavailable: %v", err)
		host, _ := os.Hostname()
		return host
	}
	return id
}

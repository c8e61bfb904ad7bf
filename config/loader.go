package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	defaultPort               = 16181
	defaultReadIntervalMS     = 15000
	defaultTimeoutMS          = 10000
	defaultAccuracyM          = 20
	defaultSimplifyToleranceM = 10
)

// Config is the global application configuration
var Config AppConfig

// LoadAppConfig loads and validates the application configuration from config.yml
func LoadAppConfig() error {
	paths := []string{"config.yml", "./config/config.yml"}
	var err error
	for _, p := range paths {
		if _, err = os.Stat(p); err == nil {
			return LoadAppConfigFrom(p)
		}
	}
	return err
}

// LoadAppConfigFrom loads and validates the configuration at path
func LoadAppConfigFrom(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	cfg, err := Parse(data)
	if err != nil {
		return fmt.Errorf("config %s: %w", path, err)
	}
	Config = cfg
	return nil
}

// Parse decodes and validates a YAML document, then applies defaults.
func Parse(data []byte) (AppConfig, error) {
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return AppConfig{}, err
	}
	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return AppConfig{}, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *AppConfig) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = defaultPort
	}
	if c.Routing.Profile == "" {
		c.Routing.Profile = "car"
	}
	if c.Routing.SimplifyToleranceM == 0 {
		c.Routing.SimplifyToleranceM = defaultSimplifyToleranceM
	}
	if c.Feed.ReadIntervalMS == 0 {
		c.Feed.ReadIntervalMS = defaultReadIntervalMS
	}
	if c.Feed.TimeoutMS == 0 {
		c.Feed.TimeoutMS = defaultTimeoutMS
	}
	if c.Feed.DefaultAccuracyM == 0 {
		c.Feed.DefaultAccuracyM = defaultAccuracyM
	}
}

// FindRoute returns the route configured for a vehicle.
func FindRoute(vehicleID string) (RouteSource, bool) {
	for _, r := range Config.Routes {
		if r.VehicleID == vehicleID {
			return r, true
		}
	}
	return RouteSource{}, false
}

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the global application configuration
var Config AppConfig

// LoadAppConfig loads and validates the application configuration from config.yml
func LoadAppConfig() error {
	paths := []string{"config.yml", "./config/config.yml"}
	if p := os.Getenv("APC_ANONYMIZER_CONFIG"); p != "" {
		paths = append([]string{p}, paths...)
	}
	var data []byte
	var err error
	for _, p := range paths {
		data, err = os.ReadFile(p)
		if err == nil {
			break
		}
	}
	if err != nil {
		return err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return err
	}
	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return err
	}
	if err := checkUniqueVehicleIDKeys(cfg.Anonymization.AcceptedDevices); err != nil {
		return err
	}
	Config = cfg
	if Config.Health.Port == 0 {
		Config.Health.Port = 8080
	}
	if Config.Broker.LocatorStepSeconds == 0 {
		Config.Broker.LocatorStepSeconds = 604800
	}
	if Config.Anonymization.CountCacheIdleMinutes == 0 {
		Config.Anonymization.CountCacheIdleMinutes = 360
	}
	return nil
}

// checkUniqueVehicleIDKeys verifies that every accepted-device key has the
// feedPublisherId:vehicleId shape with both halves non-empty.
func checkUniqueVehicleIDKeys(m map[string][]string) error {
	for key := range m {
		i := strings.LastIndex(key, ":")
		if i < 1 || i == len(key)-1 {
			return fmt.Errorf("acceptedDevices key %q must have a colon separating non-empty strings", key)
		}
	}
	return nil
}

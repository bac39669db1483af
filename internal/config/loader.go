package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	defaultConfigFile = "config.yaml"
	defaultEnvFile    = ".env"
)

type Validator interface {
	Validate() error
}

// Load reads the configuration of serviceName from config.yaml, .env and the
// process environment, in increasing priority. Environment keys use the prefix
// <SERVICE_NAME>_ and "_" as the path separator, e.g. STOREFRONT_API_BASEURL.
func Load[T Validator](serviceName string) (T, error) {
	return load[T](serviceName, defaultConfigFile, defaultEnvFile)
}

// sources names the layers a configuration is assembled from.
type sources struct {
	service    string
	configFile string
	envFile    string
}

// envPrefix is the prefix every environment key of the service carries.
func (s sources) envPrefix() string {
	return strings.ToUpper(s.service) + "_"
}

// keyPath turns STOREFRONT_API_BASEURL into api.baseurl.
func (s sources) keyPath(key string) string {
	key = strings.TrimPrefix(strings.ToLower(key), strings.ToLower(s.envPrefix()))
	return strings.ReplaceAll(key, "_", ".")
}

func load[T Validator](serviceName, configFile, envFile string) (T, error) {
	var cfg T
	src := sources{service: serviceName, configFile: configFile, envFile: envFile}
	k := koanf.New(".")

	// Missing files are fine, every key may come from the environment.
	src.loadYAML(k)
	src.loadDotEnv(k)
	src.loadEnv(k)

	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, fmt.Errorf("%s config: unmarshal: %w", serviceName, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s config: %w", serviceName, err)
	}
	return cfg, nil
}

func (s sources) loadYAML(k *koanf.Koanf) {
	err := k.Load(file.Provider(s.configFile), yaml.Parser())
	if err != nil && !os.IsNotExist(err) {
		log.Printf("WARN: %s config: skipping %s: %v", s.service, s.configFile, err)
	}
}

func (s sources) loadDotEnv(k *koanf.Koanf) {
	values, err := godotenv.Read(s.envFile)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("WARN: %s config: skipping %s: %v", s.service, s.envFile, err)
		}
		return
	}
	envMap := make(map[string]any, len(values))
	for key, value := range values {
		envMap[s.keyPath(key)] = value
	}
	if err := k.Load(confmap.Provider(envMap, "."), nil); err != nil {
		log.Printf("WARN: %s config: skipping %s: %v", s.service, s.envFile, err)
	}
}

// loadEnv applies the process environment, the highest priority layer.
func (s sources) loadEnv(k *koanf.Koanf) {
	if err := k.Load(env.Provider(s.envPrefix(), ".", s.keyPath), nil); err != nil {
		log.Printf("WARN: %s config: skipping %s* environment: %v", s.service, s.envPrefix(), err)
	}
}

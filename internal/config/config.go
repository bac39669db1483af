// Package config defines the storefront configuration and loads it with koanf.
package config

import (
	"fmt"
	"strings"
)

var _ Validator = (*Config)(nil)

type Config struct {
	HTTPServer     HTTPConfig           `koanf:"server"`
	Log            LogConfig            `koanf:"log"`
	API            APIConfig            `koanf:"api"`
	CircuitBreaker CircuitBreakerConfig `koanf:"circuitbreaker"`
	Shutdown       ShutdownConfig       `koanf:"shutdown"`
	Catalog        struct {
		LoadOnStart bool `koanf:"loadonstart"`
	} `koanf:"catalog"`
}

func (c *Config) String() string {
	var b strings.Builder
	b.WriteString(c.HTTPServer.String())
	b.WriteString(c.Log.String())
	b.WriteString(c.API.String())
	b.WriteString(c.CircuitBreaker.String())
	b.WriteString(c.Shutdown.String())
	b.WriteString("\n--- Catalog ---\n")
	b.WriteString(fmt.Sprintf("  loadonstart: %t\n", c.Catalog.LoadOnStart))
	return b.String()
}

// Validate checks if the configuration values are valid
func (c *Config) Validate() error {
	if err := c.HTTPServer.Validate(); err != nil {
		return err
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	if err := c.API.Validate(); err != nil {
		return err
	}
	if err := c.CircuitBreaker.Validate(); err != nil {
		return err
	}
	if err := c.Shutdown.Validate(); err != nil {
		return err
	}
	return nil
}

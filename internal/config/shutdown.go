package config

import (
	"fmt"
	"strings"
	"time"
)

// ShutdownConfig bounds how long in-flight storefront requests may drain
// after a stop signal.
type ShutdownConfig struct {
	Timeout time.Duration `koanf:"timeout"`
}

func (c *ShutdownConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Shutdown ---\n")
	b.WriteString(fmt.Sprintf("  drain timeout: %s\n", c.Timeout))
	return b.String()
}

func (c *ShutdownConfig) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("shutdown.timeout must be positive to drain storefront requests, got %s", c.Timeout)
	}
	return nil
}

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// APIConfig points at the storefront backend that serves the catalog and accepts orders.
type APIConfig struct {
	BaseURL string        `koanf:"baseurl"`
	CDNURL  string        `koanf:"cdnurl"`
	Timeout time.Duration `koanf:"timeout"`
}

// String returns a string representation of the API client configuration.
func (c *APIConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- API Client ---\n")
	b.WriteString(fmt.Sprintf("  baseurl: %s\n", c.BaseURL))
	b.WriteString(fmt.Sprintf("  cdnurl: %s\n", c.CDNURL))
	b.WriteString(fmt.Sprintf("  timeout: %s\n", c.Timeout))
	return b.String()
}

func (c *APIConfig) Validate() error {
	if err := validateHTTPURL("api.baseurl", c.BaseURL); err != nil {
		return err
	}
	if err := validateHTTPURL("api.cdnurl", c.CDNURL); err != nil {
		return err
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("api timeout is not configured")
	}
	return nil
}

func validateHTTPURL(key, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s is not configured", key)
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%s must be an absolute http(s) URL: %s", key, raw)
	}
	return nil
}

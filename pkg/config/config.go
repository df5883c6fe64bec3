package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"lumitemp/pkg/model"
)

type Config struct {
	STH       STHConfig       `yaml:"sth"`
	Entity    EntityConfig    `yaml:"entity"`
	Scrape    ScrapeConfig    `yaml:"scrape"`
	Timezone  string          `yaml:"timezone"`
	Locale    string          `yaml:"locale"`
	Dashboard DashboardConfig `yaml:"dashboard"`
}

type STHConfig struct {
	BaseURL     string        `yaml:"base_url" env:"LUMITEMP_STH_BASE_URL"`
	Service     string        `yaml:"service" env:"LUMITEMP_STH_SERVICE"`
	ServicePath string        `yaml:"service_path" env:"LUMITEMP_STH_SERVICE_PATH"`
	LastN       int           `yaml:"last_n" env:"LUMITEMP_STH_LAST_N"`
	Timeout     time.Duration `yaml:"timeout" env:"LUMITEMP_STH_TIMEOUT"`
}

// EntityConfig selects the upstream entities. Suffix builds the default
// ids (urn:ngsi-ld:Lamp:<suffix> ...); Overrides replace single kinds.
type EntityConfig struct {
	Suffix    string                        `yaml:"suffix"`
	Overrides map[model.Kind]EntityOverride `yaml:"overrides"`
}

type EntityOverride struct {
	Type      string `yaml:"type"`
	ID        string `yaml:"id"`
	Attribute string `yaml:"attribute"`
}

type ScrapeConfig struct {
	Interval time.Duration `yaml:"interval" env:"LUMITEMP_SCRAPE_INTERVAL"`
}

type DashboardConfig struct {
	Host string `yaml:"host" env:"LUMITEMP_DASHBOARD_HOST"`
	Port int    `yaml:"port" env:"LUMITEMP_DASHBOARD_PORT"`
}

const (
	DefaultBaseURL     = "http://20.201.112.53:8666"
	DefaultService     = "smart"
	DefaultServicePath = "/"
	DefaultLastN       = 10
	DefaultTimeout     = 5 * time.Second
	DefaultSuffix      = "03x"
	DefaultInterval    = 10 * time.Second
	DefaultTimezone    = "UTC"
	DefaultLocale      = "en"
	DefaultHost        = "0.0.0.0"
	DefaultPort        = 8050
)

var locales = map[string]bool{"en": true, "pt": true}

func NewConfig() *Config {
	return &Config{}
}

// ApplyDefaults fills every zero field with its default.
func (c *Config) ApplyDefaults() {
	if c.STH.BaseURL == "" {
		c.STH.BaseURL = DefaultBaseURL
	}
	if c.STH.Service == "" {
		c.STH.Service = DefaultService
	}
	if c.STH.ServicePath == "" {
		c.STH.ServicePath = DefaultServicePath
	}
	if c.STH.LastN == 0 {
		c.STH.LastN = DefaultLastN
	}
	if c.STH.Timeout == 0 {
		c.STH.Timeout = DefaultTimeout
	}
	c.Entity.Suffix = strings.TrimSpace(c.Entity.Suffix)
	if c.Entity.Suffix == "" {
		c.Entity.Suffix = DefaultSuffix
	}
	if c.Scrape.Interval == 0 {
		c.Scrape.Interval = DefaultInterval
	}
	if c.Timezone == "" {
		c.Timezone = DefaultTimezone
	}
	if c.Locale == "" {
		c.Locale = DefaultLocale
	}
	if c.Dashboard.Host == "" {
		c.Dashboard.Host = DefaultHost
	}
	if c.Dashboard.Port == 0 {
		c.Dashboard.Port = DefaultPort
	}
}

func (c *Config) Validate() error {
	u, err := url.Parse(c.STH.BaseURL)
	if err != nil {
		return fmt.Errorf("sth base_url %q: %w", c.STH.BaseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("sth base_url %q must be an absolute http(s) url", c.STH.BaseURL)
	}
	if c.STH.LastN < 1 {
		return fmt.Errorf("sth last_n (%d) must be >= 1", c.STH.LastN)
	}
	if c.STH.Timeout <= 0 {
		return fmt.Errorf("sth timeout (%v) must be positive", c.STH.Timeout)
	}
	if c.Scrape.Interval <= 0 {
		return fmt.Errorf("scrape interval (%v) must be positive", c.Scrape.Interval)
	}
	if c.STH.Timeout > c.Scrape.Interval {
		return fmt.Errorf("sth timeout (%v) must be <= scrape interval (%v)",
			c.STH.Timeout, c.Scrape.Interval)
	}
	if c.Entity.Suffix == "" {
		return fmt.Errorf("entity suffix is required")
	}
	if c.Entity.Suffix != strings.TrimSpace(c.Entity.Suffix) {
		return fmt.Errorf("entity suffix %q has surrounding whitespace", c.Entity.Suffix)
	}
	for kind := range c.Entity.Overrides {
		if _, err := model.ParseKind(string(kind)); err != nil {
			return fmt.Errorf("entity override: %w", err)
		}
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	if !locales[c.Locale] {
		return fmt.Errorf("locale %q is not supported", c.Locale)
	}
	if c.Dashboard.Port < 1 || c.Dashboard.Port > 65535 {
		return fmt.Errorf("dashboard port (%d) must be in 1..65535", c.Dashboard.Port)
	}
	return nil
}

// Entities resolves the upstream entity for every kind.
func (c *Config) Entities() map[model.Kind]model.Entity {
	result := make(map[model.Kind]model.Entity, len(model.Kinds()))
	for _, k := range model.Kinds() {
		e := model.DefaultEntity(k, c.Entity.Suffix)
		if o, ok := c.Entity.Overrides[k]; ok {
			if o.Type != "" {
				e.Type = o.Type
			}
			if o.ID != "" {
				e.ID = o.ID
			}
			if o.Attribute != "" {
				e.Attribute = o.Attribute
			}
		}
		result[k] = e
	}
	return result
}

// Location returns the configured timezone. UTC keeps timestamps as
// received.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.Timezone)
}

func (c *Config) ListenAddr() string {
	return net.JoinHostPort(c.Dashboard.Host, strconv.Itoa(c.Dashboard.Port))
}

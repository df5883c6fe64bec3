package config

import (
	"errors"
	"os"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Loader struct {
	configPath string
	envFile    string
}

const DefaultConfigPath = "config.yaml"

func NewLoader(configPath string) *Loader {
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	return &Loader{configPath: configPath}
}

// WithEnvFile makes Load read a dotenv file before applying LUMITEMP_*
// overrides. A missing file is not an error.
func (l *Loader) WithEnvFile(path string) *Loader {
	l.envFile = path
	return l
}

func (l *Loader) Load() (*Config, error) {
	path := l.getConfigPath()
	c, err := os.ReadFile(path)
	if err != nil {
		return nil, NewReadError(path, err)
	}
	cfg := NewConfig()
	err = yaml.Unmarshal(c, cfg)
	if err != nil {
		return nil, NewParseError(path, err)
	}
	return l.finish(cfg)
}

// LoadProfile starts from a stock profile instead of a file.
func (l *Loader) LoadProfile(name string) (*Config, error) {
	cfg, err := Profile(name)
	if err != nil {
		return nil, err
	}
	return l.finish(cfg)
}

func (l *Loader) finish(cfg *Config) (*Config, error) {
	if err := l.applyEnv(cfg); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (l *Loader) applyEnv(cfg *Config) error {
	if l.envFile != "" {
		if err := godotenv.Load(l.envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return NewEnvError(err)
		}
	}
	for _, target := range []interface{}{&cfg.STH, &cfg.Scrape, &cfg.Dashboard} {
		if err := envdecode.Decode(target); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
			return NewEnvError(err)
		}
	}
	if tz, ok := os.LookupEnv("LUMITEMP_TIMEZONE"); ok && tz != "" {
		cfg.Timezone = tz
	}
	if locale, ok := os.LookupEnv("LUMITEMP_LOCALE"); ok && locale != "" {
		cfg.Locale = locale
	}
	if suffix, ok := os.LookupEnv("LUMITEMP_ENTITY_SUFFIX"); ok && suffix != "" {
		cfg.Entity.Suffix = suffix
	}
	return nil
}

func (l *Loader) getConfigPath() string {
	return l.configPath
}

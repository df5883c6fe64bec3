package config

import (
	"fmt"
	"sort"
)

// Profiles are the two stock dashboards: 03x keeps UTC timestamps and
// English labels, 04x converts to Sao Paulo time with Portuguese labels.
var profiles = map[string]Config{
	"03x": {
		Entity:   EntityConfig{Suffix: "03x"},
		Timezone: "UTC",
		Locale:   "en",
	},
	"04x": {
		Entity:   EntityConfig{Suffix: "04x"},
		Timezone: "America/Sao_Paulo",
		Locale:   "pt",
	},
}

// Profile returns a defaulted copy of a stock profile.
func Profile(name string) (*Config, error) {
	p, ok := profiles[name]
	if !ok {
		return nil, fmt.Errorf("unknown profile %q (known: %v)", name, ProfileNames())
	}
	cfg := p
	cfg.ApplyDefaults()
	return &cfg, nil
}

func ProfileNames() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

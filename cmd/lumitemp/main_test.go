package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    options
		wantErr bool
	}{
		{
			name: "test.defaults",
			args: nil,
			want: options{envFile: ".env", logLevel: "info", logFormat: "text"},
		},
		{
			name: "test.short.config",
			args: []string{"-c", "configs/lumitemp-04x.yaml", "--log-format", "json"},
			want: options{configPath: "configs/lumitemp-04x.yaml", envFile: ".env", logLevel: "info", logFormat: "json"},
		},
		{
			name: "test.profile",
			args: []string{"--profile", "04x", "--log-level=debug", "--env-file", ""},
			want: options{profile: "04x", logLevel: "debug", logFormat: "text"},
		},
		{
			name:    "test.config.and.profile",
			args:    []string{"--config", "a.yaml", "--profile", "03x"},
			wantErr: true,
		},
		{
			name:    "test.unknown.flag",
			args:    []string{"--nope"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := parseFlags(tt.args)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, *opts)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name     string
		opts     options
		suffix   string
		timezone string
		locale   string
		wantErr  bool
	}{
		{"test.no.flags.uses.03x", options{}, "03x", "UTC", "en", false},
		{"test.profile.04x", options{profile: "04x"}, "04x", "America/Sao_Paulo", "pt", false},
		{"test.config.file", options{configPath: "../../configs/lumitemp-04x.yaml"}, "04x", "America/Sao_Paulo", "pt", false},
		{"test.unknown.profile", options{profile: "05x"}, "", "", "", true},
		{"test.missing.file", options{configPath: "does-not-exist.yaml"}, "", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := loadConfig(&tt.opts)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.suffix, cfg.Entity.Suffix)
			assert.Equal(t, tt.timezone, cfg.Timezone)
			assert.Equal(t, tt.locale, cfg.Locale)
		})
	}
}

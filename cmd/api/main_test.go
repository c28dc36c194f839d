package main

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/fitstack/paygate/config"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.LogConfig
		want zerolog.Level
	}{
		{name: "json debug", cfg: config.LogConfig{Level: "debug", Format: "json"}, want: zerolog.DebugLevel},
		{name: "console warn", cfg: config.LogConfig{Level: "warn", Format: "console"}, want: zerolog.WarnLevel},
		{name: "unknown level falls back to info", cfg: config.LogConfig{Level: "loud", Format: "json"}, want: zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := newLogger(tt.cfg)
			assert.Equal(t, tt.want, logger.GetLevel())
		})
	}
}

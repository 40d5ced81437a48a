// SPDX-License-Identifier: MIT
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/m3uforge/m3uforge/internal/log"
)

// ParseString reads a string from an environment variable or returns
// the default. Empty values count as unset.
func ParseString(key, defaultValue string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		logger := log.WithComponent("config")
		logger.Debug().
			Str("key", key).
			Str("source", "environment").
			Msg("using environment variable")
		return v
	}
	return defaultValue
}

// ParseInt reads an integer from an environment variable, falling back
// to the default on parse errors.
func ParseInt(key string, defaultValue int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		logger := log.WithComponent("config")
		logger.Warn().
			Str("key", key).
			Str("value", v).
			Int("default", defaultValue).
			Msg("invalid integer in environment variable, using default")
		return defaultValue
	}
	return i
}

// ParseDuration reads a Go duration (e.g. "30s") from an environment
// variable, falling back to the default on parse errors.
func ParseDuration(key string, defaultValue time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		logger := log.WithComponent("config")
		logger.Warn().
			Str("key", key).
			Str("value", v).
			Dur("default", defaultValue).
			Msg("invalid duration in environment variable, using default")
		return defaultValue
	}
	return d
}

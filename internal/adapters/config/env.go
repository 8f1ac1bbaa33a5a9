package config

import (
	"os"
	"strconv"

	"go.trai.ch/pnp/internal/core/domain"
	"go.trai.ch/zerr"
)

// Environment variables overriding the configuration file.
const (
	EnvState                = "PNP_STATE"
	EnvAlwaysWarnOnFallback = "PNP_ALWAYS_WARN_ON_FALLBACK"
	EnvDebugLevel           = "PNP_DEBUG_LEVEL"
	EnvCacheSize            = "PNP_CACHE_SIZE"
)

func applyEnv(s *domain.Settings) error {
	if v, ok := os.LookupEnv(EnvState); ok && v != "" {
		s.State = v
	}

	if v, ok := os.LookupEnv(EnvAlwaysWarnOnFallback); ok && v != "" {
		warn, err := strconv.ParseBool(v)
		if err != nil {
			return envError(EnvAlwaysWarnOnFallback, v)
		}
		s.AlwaysWarnOnFallback = warn
	}

	if v, ok := os.LookupEnv(EnvDebugLevel); ok && v != "" {
		level, err := strconv.Atoi(v)
		if err != nil {
			return envError(EnvDebugLevel, v)
		}
		s.DebugLevel = level
	}

	if v, ok := os.LookupEnv(EnvCacheSize); ok && v != "" {
		size, err := strconv.Atoi(v)
		if err != nil {
			return envError(EnvCacheSize, v)
		}
		s.CacheSize = size
	}

	return nil
}

func envError(name, value string) error {
	err := zerr.With(zerr.Wrap(domain.ErrInvalidSetting, "invalid environment override"), "env", name)
	return zerr.With(err, "value", value)
}

package domain

import (
	"path"
	"runtime"
)

const (
	// ConfigFileName is the configuration file looked up from the working directory upward.
	ConfigFileName = ".pnprc.yml"
	// AltConfigFileName is accepted when ConfigFileName is absent.
	AltConfigFileName = ".pnprc.yaml"
	// DefaultStateFile is the serialized state file looked up when none is configured.
	DefaultStateFile = ".pnp.data.json"
	// DefaultAPIFile is the loader file the reserved pnpapi request resolves to.
	DefaultAPIFile = ".pnp.cjs"
	// DefaultCacheSize is the number of qualified paths kept in memory.
	DefaultCacheSize = 4096
)

// DefaultExtensions are the extensions tried during qualification, in order.
var DefaultExtensions = []string{".js", ".json", ".node"}

// DefaultCompatibilityPackages are the legacy tools allowed to provide undeclared dependencies.
var DefaultCompatibilityPackages = []string{"react-scripts", "gatsby"}

// Settings drives how a runtime is opened and how it resolves.
type Settings struct {
	// Root is the directory the configuration was discovered in. Relative paths are resolved from it.
	Root string `yaml:"-"`

	State string `yaml:"state"`

	// BasePath is the directory serialized locations are relative to. Empty means the
	// directory of State.
	BasePath string `yaml:"basePath"`
	APIPath  string `yaml:"apiPath"`

	Extensions []string `yaml:"extensions"`

	// AlwaysWarnOnFallback emits the one-time warning when a fallback locator provides a dependency.
	// Fallback pool matches always warn.
	AlwaysWarnOnFallback bool `yaml:"alwaysWarnOnFallback"`

	CompatibilityMode     bool     `yaml:"compatibilityMode"`
	CompatibilityPackages []string `yaml:"compatibilityPackages"`

	// DebugLevel 0 silences fallback warnings.
	DebugLevel int `yaml:"debugLevel"`

	// CacheSize 0 disables the qualification cache.
	CacheSize   int `yaml:"cacheSize"`
	Concurrency int `yaml:"concurrency"`
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() *Settings {
	return &Settings{
		State:                 DefaultStateFile,
		Extensions:            append([]string(nil), DefaultExtensions...),
		AlwaysWarnOnFallback:  true,
		CompatibilityMode:     true,
		CompatibilityPackages: append([]string(nil), DefaultCompatibilityPackages...),
		DebugLevel:            1,
		CacheSize:             DefaultCacheSize,
		Concurrency:           runtime.NumCPU(),
	}
}

// ResolvedBasePath returns BasePath, or the directory of the state file when it is unset.
func (s *Settings) ResolvedBasePath() string {
	if s.BasePath != "" {
		return s.BasePath
	}
	return path.Dir(s.State)
}

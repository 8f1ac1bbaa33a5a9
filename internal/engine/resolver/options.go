package resolver

import (
	"slices"

	"go.trai.ch/pnp/internal/core/domain"
	"go.trai.ch/pnp/internal/core/ports"
)

type config struct {
	fs                    ports.FileSystem
	logger                ports.Logger
	native                ports.NativeResolver
	apiPath               string
	extensions            []string
	alwaysWarnOnFallback  bool
	compatibilityMode     bool
	compatibilityPackages []string
	debugLevel            int
	cacheSize             int
}

func defaultConfig() config {
	return config{
		extensions:            slices.Clone(domain.DefaultExtensions),
		alwaysWarnOnFallback:  true,
		compatibilityMode:     true,
		compatibilityPackages: slices.Clone(domain.DefaultCompatibilityPackages),
		debugLevel:            1,
		cacheSize:             domain.DefaultCacheSize,
	}
}

// Option configures a Runtime.
type Option func(*config)

// WithFileSystem sets the file system read during qualification. It is required.
func WithFileSystem(fs ports.FileSystem) Option {
	return func(c *config) {
		c.fs = fs
	}
}

// WithLogger sets the logger receiving fallback warnings.
func WithLogger(logger ports.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithNativeResolver replaces the node_modules resolution used for ungoverned issuers.
func WithNativeResolver(native ports.NativeResolver) Option {
	return func(c *config) {
		c.native = native
	}
}

// WithAPIPath sets the path the reserved pnpapi request resolves to.
func WithAPIPath(p string) Option {
	return func(c *config) {
		c.apiPath = p
	}
}

// WithExtensions sets the default qualification extensions, in the order they are tried.
func WithExtensions(extensions ...string) Option {
	return func(c *config) {
		c.extensions = extensions
	}
}

// WithAlwaysWarnOnFallback controls whether fallback locator matches emit a warning.
func WithAlwaysWarnOnFallback(warn bool) Option {
	return func(c *config) {
		c.alwaysWarnOnFallback = warn
	}
}

// WithCompatibilityMode controls whether legacy tools may provide undeclared dependencies.
func WithCompatibilityMode(enabled bool, packages ...string) Option {
	return func(c *config) {
		c.compatibilityMode = enabled
		if len(packages) > 0 {
			c.compatibilityPackages = packages
		}
	}
}

// WithDebugLevel sets the debug level. Level 0 silences fallback warnings.
func WithDebugLevel(level int) Option {
	return func(c *config) {
		c.debugLevel = level
	}
}

// WithCacheSize sets the number of cached qualified paths. Zero disables the cache.
func WithCacheSize(size int) Option {
	return func(c *config) {
		c.cacheSize = size
	}
}

// WithSettings applies every resolution setting of s.
func WithSettings(s *domain.Settings) Option {
	return func(c *config) {
		if s.APIPath != "" {
			c.apiPath = s.APIPath
		}
		if len(s.Extensions) > 0 {
			c.extensions = s.Extensions
		}
		c.alwaysWarnOnFallback = s.AlwaysWarnOnFallback
		c.compatibilityMode = s.CompatibilityMode
		if len(s.CompatibilityPackages) > 0 {
			c.compatibilityPackages = s.CompatibilityPackages
		}
		c.debugLevel = s.DebugLevel
		c.cacheSize = s.CacheSize
	}
}

type resolveConfig struct {
	considerBuiltins bool
	extensions       []string
}

// ResolveOption configures a single resolution.
type ResolveOption func(*resolveConfig)

// WithoutBuiltins resolves builtin names like any other package name.
func WithoutBuiltins() ResolveOption {
	return func(c *resolveConfig) {
		c.considerBuiltins = false
	}
}

// WithResolveExtensions overrides the qualification extensions for one resolution.
func WithResolveExtensions(extensions ...string) ResolveOption {
	return func(c *resolveConfig) {
		c.extensions = extensions
	}
}

func newResolveConfig(opts []ResolveOption) resolveConfig {
	c := resolveConfig{considerBuiltins: true}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

type nopLogger struct{}

func (nopLogger) Info(string) {}
func (nopLogger) Warn(string) {}
func (nopLogger) Error(error) {}

// Package pnpapi is the public Go interface of the Plug'n'Play runtime.
//
// Paths going in and out of an API are native paths. Locations inside the runtime are
// kept in portable form and converted at this boundary.
package pnpapi

import (
	"path/filepath"

	"go.trai.ch/pnp/internal/adapters/config"
	"go.trai.ch/pnp/internal/adapters/fs"
	"go.trai.ch/pnp/internal/adapters/state"
	"go.trai.ch/pnp/internal/core/domain"
	"go.trai.ch/pnp/internal/core/ports"
	"go.trai.ch/pnp/internal/core/ppath"
	"go.trai.ch/pnp/internal/engine/resolver"
	"go.trai.ch/zerr"
)

type (
	// Locator identifies one resolved package instance. The zero Locator is the top level.
	Locator = domain.Locator
	// PackageInformation is one entry of the package registry.
	PackageInformation = domain.PackageInformation
	// ResolutionError is a structured resolution failure.
	ResolutionError = domain.ResolutionError
	// ErrorCode identifies the kind of a ResolutionError.
	ErrorCode = domain.ErrorCode
	// Versions describes the capabilities of the API.
	Versions = domain.Versions
	// ResolveOption configures a single resolution.
	ResolveOption = resolver.ResolveOption
)

var (
	// ErrModuleNotFound matches every resolution error meaning a module cannot be found.
	ErrModuleNotFound = domain.ErrModuleNotFound

	// TopLevelLocator is the locator of the project root.
	TopLevelLocator = domain.TopLevelLocator

	// WithoutBuiltins resolves builtin module names like any other package name.
	WithoutBuiltins = resolver.WithoutBuiltins
	// WithExtensions overrides the extensions tried during qualification.
	WithExtensions = resolver.WithResolveExtensions
)

// Logger receives the fallback warnings of a runtime.
type Logger interface {
	Info(msg string)
	Warn(msg string)
	Error(err error)
}

type options struct {
	logger ports.Logger
	state  string
}

// Option configures how an API is opened.
type Option func(*options)

// WithLogger routes warnings to l instead of discarding them.
func WithLogger(l Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithState skips discovery and opens the given serialized state file.
func WithState(p string) Option {
	return func(o *options) {
		o.state = p
	}
}

// API answers resolution queries for one project.
type API struct {
	rt       *resolver.Runtime
	settings *domain.Settings
}

// Open discovers the configuration from the native directory dir and hydrates the
// runtime it designates.
func Open(dir string, opts ...Option) (*API, error) {
	o := options{logger: discard{}}
	for _, opt := range opts {
		opt(&o)
	}

	var settings *domain.Settings
	if o.state != "" {
		abs, err := filepath.Abs(filepath.Join(dir, o.state))
		if filepath.IsAbs(o.state) {
			abs, err = filepath.Clean(o.state), nil
		}
		if err != nil {
			return nil, zerr.With(zerr.Wrap(domain.ErrInvalidSetting, err.Error()), "state", o.state)
		}
		settings = domain.DefaultSettings()
		settings.State = ppath.ToPortable(abs)
	} else {
		var err error
		settings, err = config.NewLoader(o.logger).Load(dir)
		if err != nil {
			return nil, err
		}
	}

	fileSystem := fs.NewFileSystem()
	st, err := state.NewLoader(fileSystem).Load(settings.State)
	if err != nil {
		return nil, err
	}

	rt, err := resolver.NewFactory(fileSystem, o.logger).Open(st, settings)
	if err != nil {
		return nil, err
	}
	return &API{rt: rt, settings: settings}, nil
}

// VERSIONS reports the capabilities of the API.
func (a *API) VERSIONS() Versions {
	return a.rt.Versions()
}

// StatePath returns the native path of the opened serialized state.
func (a *API) StatePath() string {
	return ppath.FromPortable(a.settings.State)
}

// ResolveRequest resolves request issued from issuer down to a file. It returns false when
// the request is a builtin left to the platform. A trailing separator marks issuer as a
// directory.
func (a *API) ResolveRequest(request, issuer string, opts ...ResolveOption) (string, bool, error) {
	resolved, ok, err := a.rt.ResolveRequest(request, ppath.ToPortable(issuer), opts...)
	if err != nil || !ok {
		return "", ok, err
	}
	return ppath.FromPortable(resolved), true, nil
}

// ResolveToUnqualified resolves request without trying extensions or indexes.
func (a *API) ResolveToUnqualified(request, issuer string, opts ...ResolveOption) (string, bool, error) {
	resolved, ok, err := a.rt.ResolveToUnqualified(request, ppath.ToPortable(issuer), opts...)
	if err != nil || !ok {
		return "", ok, err
	}
	return ppath.FromPortable(resolved), true, nil
}

// ResolveUnqualified tries extensions, indexes and main fields for an unqualified path.
func (a *API) ResolveUnqualified(p string, opts ...ResolveOption) (string, error) {
	resolved, err := a.rt.ResolveUnqualified(ppath.ToPortable(p), opts...)
	if err != nil {
		return "", err
	}
	return ppath.FromPortable(resolved), nil
}

// FindPackageLocator returns the package owning the native path p.
func (a *API) FindPackageLocator(p string) (Locator, bool, error) {
	return a.rt.FindPackageLocator(ppath.ToPortable(p))
}

// GetPackageInformation returns the registry entry of l with a native location.
func (a *API) GetPackageInformation(l Locator) (*PackageInformation, bool) {
	info, ok := a.rt.GetPackageInformation(l)
	if !ok {
		return nil, false
	}
	out := *info
	out.PackageLocation = ppath.FromPortable(info.PackageLocation)
	return &out, true
}

// GetLocator returns the locator of the package declared as name at reference.
func (a *API) GetLocator(name, reference string) Locator {
	return domain.NewLocator(name, reference)
}

// GetDependencyTreeRoots returns the workspaces of the project.
func (a *API) GetDependencyTreeRoots() []Locator {
	return a.rt.GetDependencyTreeRoots()
}

// GetAllLocators returns every package of the registry but the top level.
func (a *API) GetAllLocators() []Locator {
	return a.rt.GetAllLocators()
}

// ResolveVirtual returns the real path behind the native virtual path p.
func (a *API) ResolveVirtual(p string) (string, bool) {
	resolved, ok := a.rt.ResolveVirtual(ppath.ToPortable(p))
	if !ok {
		return "", false
	}
	return ppath.FromPortable(resolved), true
}

// AsResolutionError extracts the ResolutionError carried by err.
func AsResolutionError(err error) (*ResolutionError, bool) {
	return domain.AsResolutionError(err)
}

type discard struct{}

func (discard) Info(string) {}
func (discard) Warn(string) {}
func (discard) Error(error) {}

// Package app implements the application layer for pnp.
package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"go.trai.ch/pnp/internal/core/domain"
	"go.trai.ch/pnp/internal/core/ports"
	"go.trai.ch/pnp/internal/core/ppath"
	"go.trai.ch/pnp/internal/engine/resolver"
	"go.trai.ch/pnp/internal/engine/scheduler"
	"go.trai.ch/pnp/internal/engine/virtual"
	"go.trai.ch/zerr"
	"golang.org/x/sync/singleflight"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	stateLoader  ports.StateLoader
	hasher       ports.Hasher
	factory      *resolver.Factory
	scheduler    *scheduler.Scheduler

	opening  singleflight.Group
	mu       sync.Mutex
	sessions map[string]*Session
}

// New creates a new App instance.
func New(
	configLoader ports.ConfigLoader,
	stateLoader ports.StateLoader,
	hasher ports.Hasher,
	factory *resolver.Factory,
	sched *scheduler.Scheduler,
) *App {
	return &App{
		configLoader: configLoader,
		stateLoader:  stateLoader,
		hasher:       hasher,
		factory:      factory,
		scheduler:    sched,
		sessions:     make(map[string]*Session),
	}
}

// OpenOptions locate the runtime to open.
type OpenOptions struct {
	// Dir is the native working directory the configuration is discovered from.
	Dir string
	// State overrides the discovered state file. Relative paths are resolved from Dir.
	State string
}

// Session is an opened runtime along with what it was opened from.
type Session struct {
	Settings    *domain.Settings
	Runtime     *resolver.Runtime
	Fingerprint string
	dir         string
}

// Open discovers the settings and hydrates the runtime they designate. Runtimes are kept
// for as long as their state file is unchanged, and concurrent opens of the same state
// share a single hydration.
func (a *App) Open(_ context.Context, opts OpenOptions) (*Session, error) {
	dir, err := filepath.Abs(opts.Dir)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrConfigReadFailed, err.Error()), "dir", opts.Dir)
	}

	settings, err := a.loadSettings(dir, opts.State)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}

	fingerprint, err := a.hasher.ComputeFileHash(settings.State)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to fingerprint state"), "state", settings.State)
	}

	key := sessionKey(settings, fingerprint)
	v, err, _ := a.opening.Do(key, func() (any, error) {
		a.mu.Lock()
		cached, ok := a.sessions[key]
		a.mu.Unlock()
		if ok {
			return cached, nil
		}

		state, err := a.stateLoader.Load(settings.State)
		if err != nil {
			return nil, err
		}

		rt, err := a.factory.Open(state, settings)
		if err != nil {
			return nil, zerr.With(err, "state", settings.State)
		}

		sess := &Session{Settings: settings, Runtime: rt, Fingerprint: fingerprint, dir: ppath.ToPortable(dir)}
		a.mu.Lock()
		a.sessions[key] = sess
		a.mu.Unlock()
		return sess, nil
	})
	if err != nil {
		return nil, err
	}

	sess, _ := v.(*Session)
	if sess.dir != ppath.ToPortable(dir) {
		shared := *sess
		shared.dir = ppath.ToPortable(dir)
		return &shared, nil
	}
	return sess, nil
}

func (a *App) loadSettings(dir, state string) (*domain.Settings, error) {
	settings, err := a.configLoader.Load(dir)
	switch {
	case err == nil:
	case state != "" && errors.Is(err, domain.ErrConfigNotFound):
		settings = domain.DefaultSettings()
		settings.Root = ppath.ToPortable(dir)
	default:
		return nil, err
	}

	if state != "" {
		settings.State = absolute(ppath.ToPortable(dir), state)
	}
	return settings, nil
}

func sessionKey(s *domain.Settings, fingerprint string) string {
	return strings.Join([]string{
		s.State,
		fingerprint,
		s.ResolvedBasePath(),
		s.APIPath,
		strings.Join(s.Extensions, ","),
		fmt.Sprint(s.AlwaysWarnOnFallback, s.CompatibilityMode, s.DebugLevel, s.CacheSize),
		strings.Join(s.CompatibilityPackages, ","),
	}, "\x00")
}

// absolute makes the native or portable path p absolute against the portable dir.
func absolute(dir, p string) string {
	p = ppath.ToPortable(p)
	if ppath.IsAbsolute(p) {
		return ppath.Normalize(p)
	}
	return ppath.Join(dir, p)
}

// ResolveOptions configure a batch resolution.
type ResolveOptions struct {
	// Issuer is the file or directory issuing the requests. A trailing slash marks a
	// directory. Empty means the working directory.
	Issuer      string
	NoBuiltins  bool
	Unqualified bool
	Extensions  []string
}

// Resolve resolves every request from the same issuer, concurrently.
func (a *App) Resolve(ctx context.Context, sess *Session, requests []string, opts ResolveOptions) ([]scheduler.Result, error) {
	if len(requests) == 0 {
		return nil, domain.ErrNoRequests
	}

	issuer := sess.dir + "/"
	if opts.Issuer != "" {
		issuer = a.Path(sess, opts.Issuer)
	}

	var resolveOpts []resolver.ResolveOption
	if opts.NoBuiltins {
		resolveOpts = append(resolveOpts, resolver.WithoutBuiltins())
	}
	if len(opts.Extensions) > 0 {
		resolveOpts = append(resolveOpts, resolver.WithResolveExtensions(opts.Extensions...))
	}

	var r scheduler.Resolver = sess.Runtime
	if opts.Unqualified {
		r = unqualifiedResolver{sess.Runtime}
	}

	jobs := make([]scheduler.Job, len(requests))
	for i, request := range requests {
		jobs[i] = scheduler.Job{Request: request, Issuer: issuer}
	}

	return a.scheduler.Run(ctx, r, jobs, sess.Settings.Concurrency, resolveOpts...)
}

type unqualifiedResolver struct {
	rt *resolver.Runtime
}

func (u unqualifiedResolver) ResolveRequest(request, issuer string, opts ...resolver.ResolveOption) (string, bool, error) {
	return u.rt.ResolveToUnqualified(request, issuer, opts...)
}

// Path turns a native path given on the command line into an absolute portable path,
// keeping a trailing separator.
func (a *App) Path(sess *Session, p string) string {
	portable := ppath.ToPortable(p)
	trailing := strings.HasSuffix(portable, "/")
	resolved := absolute(sess.dir, portable)
	if trailing && !strings.HasSuffix(resolved, "/") {
		resolved += "/"
	}
	return resolved
}

// Locate returns the package owning p.
func (a *App) Locate(sess *Session, p string) (domain.Locator, bool, error) {
	return sess.Runtime.FindPackageLocator(a.Path(sess, p))
}

// Info returns the information of the package named name at reference.
// An empty name designates the top-level package.
func (a *App) Info(sess *Session, name, reference string) (domain.Locator, *domain.PackageInformation, error) {
	locator := domain.TopLevelLocator
	if name != "" {
		locator = domain.NewLocator(name, reference)
	}

	if name != "" && reference == "" {
		var found []domain.Locator
		for _, l := range sess.Runtime.GetAllLocators() {
			if l.Name.String() == name {
				found = append(found, l)
			}
		}
		switch len(found) {
		case 0:
			return domain.Locator{}, nil, zerr.With(zerr.Wrap(domain.ErrPackageNotFound, "no package matches"), "name", name)
		case 1:
			locator = found[0]
		default:
			return domain.Locator{}, nil, zerr.With(
				zerr.With(zerr.Wrap(domain.ErrAmbiguousPackage, "a reference is required"), "name", name),
				"candidates", locatorStrings(found),
			)
		}
	}

	info, ok := sess.Runtime.GetPackageInformation(locator)
	if !ok {
		return domain.Locator{}, nil, zerr.With(zerr.Wrap(domain.ErrPackageNotFound, "no package matches"), "locator", locator.String())
	}
	return locator, info, nil
}

func locatorStrings(locators []domain.Locator) []string {
	out := make([]string, len(locators))
	for i, l := range locators {
		out[i] = l.String()
	}
	return out
}

// Locators lists every package, or only the dependency tree roots.
func (a *App) Locators(sess *Session, roots bool) []domain.Locator {
	if roots {
		return sess.Runtime.GetDependencyTreeRoots()
	}
	return sess.Runtime.GetAllLocators()
}

// Virtual returns the real path behind a virtual path.
func (a *App) Virtual(sess *Session, p string) (string, bool) {
	return sess.Runtime.ResolveVirtual(a.Path(sess, p))
}

// MakeVirtual builds the virtual path presenting target under the virtual folder base.
func (a *App) MakeVirtual(base, component, target string) (string, error) {
	p, err := virtual.Make(ppath.ToPortable(base), component, ppath.ToPortable(target))
	if err != nil {
		return "", zerr.With(zerr.With(err, "base", base), "component", component)
	}
	return ppath.FromPortable(p), nil
}

// Status describes an opened runtime.
type Status struct {
	Versions    domain.Versions  `json:"versions"`
	State       string           `json:"state"`
	BasePath    string           `json:"basePath"`
	Fingerprint string           `json:"fingerprint"`
	Packages    int              `json:"packages"`
	Roots       int              `json:"roots"`
	Fallbacks   []domain.Locator `json:"fallbacks"`
}

// Status reports on the opened runtime.
func (a *App) Status(sess *Session) Status {
	return Status{
		Versions:    sess.Runtime.Versions(),
		State:       sess.Settings.State,
		BasePath:    sess.Runtime.BasePath(),
		Fingerprint: sess.Fingerprint,
		Packages:    sess.Runtime.PackageCount(),
		Roots:       len(sess.Runtime.GetDependencyTreeRoots()),
		Fallbacks:   sess.Runtime.FallbackLocators(),
	}
}

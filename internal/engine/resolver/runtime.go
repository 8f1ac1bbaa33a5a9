// Package resolver implements the Plug'n'Play resolution runtime: it hydrates a serialized
// dependency tree and maps module requests to files on disk.
package resolver

import (
	"path"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/dlclark/regexp2"
	"go.trai.ch/pnp/internal/core/domain"
	"go.trai.ch/pnp/internal/core/ports"
	"go.trai.ch/pnp/internal/core/ppath"
	"go.trai.ch/pnp/internal/engine/native"
	"go.trai.ch/pnp/internal/engine/qualifier"
	"go.trai.ch/zerr"
)

// locationEntry is what a registered location maps to.
// A nil *locationEntry in the index marks a blacklisted location.
type locationEntry struct {
	locator domain.Locator
	discard bool
}

// Runtime is a hydrated dependency tree. It is read-only once created
// and safe for concurrent use.
type Runtime struct {
	basePath      string
	apiPath       string
	ignorePattern *regexp2.Regexp

	registry *domain.PackageRegistry

	locations map[string]*locationEntry
	lengths   []int

	fallbackLocators   []domain.Locator
	fallbackPool       map[string]domain.DependencyTarget
	fallbackExclusions map[domain.Locator]struct{}
	enableTopLevel     bool

	roots   []domain.Locator
	rootSet map[domain.Locator]struct{}

	fs        ports.FileSystem
	logger    ports.Logger
	native    ports.NativeResolver
	qualifier *qualifier.Qualifier

	alwaysWarnOnFallback bool
	debugLevel           int

	graphOnce sync.Once
	graph     *domain.Graph

	warnings sync.Map
}

// New hydrates state into a Runtime. basePath is the absolute portable directory
// the serialized locations are relative to.
func New(state *domain.SerializedState, basePath string, opts ...Option) (*Runtime, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.fs == nil {
		return nil, zerr.Wrap(domain.ErrInvalidSetting, "a file system is required")
	}
	if !ppath.IsAbsolute(basePath) {
		return nil, zerr.With(zerr.Wrap(domain.ErrInvalidSetting, "base path must be absolute"), "basePath", basePath)
	}
	if err := state.Validate(); err != nil {
		return nil, err
	}

	q, err := qualifier.New(cfg.fs, cfg.extensions, cfg.cacheSize)
	if err != nil {
		return nil, err
	}

	r := &Runtime{
		basePath:             path.Clean(basePath),
		fs:                   cfg.fs,
		logger:               cfg.logger,
		native:               cfg.native,
		qualifier:            q,
		alwaysWarnOnFallback: cfg.alwaysWarnOnFallback,
		debugLevel:           cfg.debugLevel,
		enableTopLevel:       state.EnableTopLevelFallback,
	}
	if r.logger == nil {
		r.logger = nopLogger{}
	}
	if r.native == nil {
		r.native = native.New(q)
	}

	r.apiPath = cfg.apiPath
	if r.apiPath == "" {
		r.apiPath = path.Join(r.basePath, domain.DefaultAPIFile)
	}

	if err := r.hydrateIgnorePattern(state.IgnorePatternData); err != nil {
		return nil, err
	}
	if err := r.hydrateRegistry(state); err != nil {
		return nil, err
	}
	if err := r.hydrateRoots(state.DependencyTreeRoots); err != nil {
		return nil, err
	}
	r.hydrateFallbacks(state, cfg)

	return r, nil
}

func (r *Runtime) hydrateIgnorePattern(pattern *string) error {
	if pattern == nil {
		return nil
	}
	re, err := regexp2.Compile(*pattern, regexp2.ECMAScript)
	if err != nil {
		return zerr.With(zerr.Wrap(domain.ErrInvalidIgnorePattern, err.Error()), "pattern", *pattern)
	}
	r.ignorePattern = re
	return nil
}

func (r *Runtime) hydrateRegistry(state *domain.SerializedState) error {
	r.registry = domain.NewPackageRegistry()
	r.locations = make(map[string]*locationEntry)

	for _, store := range state.PackageRegistryData {
		for _, ref := range store.References {
			locator, err := domain.LocatorData{Name: store.Name, Reference: ref.Reference}.Locator()
			if err != nil {
				return zerr.With(err, "locator", locatorDisplay(store.Name, ref.Reference))
			}

			data := ref.Information
			r.registry.Add(locator, r.hydratePackage(data))
			r.indexLocation(data.PackageLocation, locator, data.DiscardFromLookup)
		}
	}

	for _, location := range state.LocationBlacklistData {
		r.locations[r.locationKey(location)] = nil
	}

	lengths := make(map[int]struct{}, len(r.locations))
	for key := range r.locations {
		lengths[len(key)] = struct{}{}
	}
	r.lengths = make([]int, 0, len(lengths))
	for length := range lengths {
		r.lengths = append(r.lengths, length)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(r.lengths)))

	return nil
}

func (r *Runtime) hydratePackage(data domain.PackageInformationData) *domain.PackageInformation {
	info := &domain.PackageInformation{
		PackageDependencies: make(map[string]domain.DependencyTarget, len(data.PackageDependencies)),
		PackagePeers:        make(map[string]struct{}, len(data.PackagePeers)),
		LinkType:            data.LinkType,
		DiscardFromLookup:   data.DiscardFromLookup,
	}
	if data.PackageLocation != "" {
		info.PackageLocation = ppath.Join(r.basePath, data.PackageLocation)
	}
	for _, dep := range data.PackageDependencies {
		info.PackageDependencies[dep.Name] = dep.Target
	}
	for _, peer := range data.PackagePeers {
		info.PackagePeers[peer] = struct{}{}
	}
	return info
}

// indexLocation registers a location. When several packages share a location, the last one
// that is not discarded wins, and the location is discarded only if all of them are.
func (r *Runtime) indexLocation(location string, locator domain.Locator, discard bool) {
	if location == "" {
		return
	}
	key := r.locationKey(location)

	entry, ok := r.locations[key]
	if !ok || entry == nil {
		r.locations[key] = &locationEntry{locator: locator, discard: discard}
		return
	}
	entry.discard = entry.discard && discard
	if !discard {
		entry.locator = locator
	}
}

// locationKey turns a serialized location into its index key: base-relative, dot-prefixed
// and ending with a slash.
func (r *Runtime) locationKey(location string) string {
	if ppath.IsAbsolute(location) {
		location = r.relativeLocation(location)
	} else if !isStrictRelative(location) {
		location = "./" + location
	}
	if !strings.HasSuffix(location, "/") {
		location += "/"
	}
	return location
}

func (r *Runtime) hydrateRoots(roots []domain.LocatorData) error {
	r.roots = make([]domain.Locator, 0, len(roots))
	r.rootSet = make(map[domain.Locator]struct{}, len(roots))
	for _, data := range roots {
		locator, err := data.Locator()
		if err != nil {
			return zerr.With(err, "field", "dependencyTreeRoots")
		}
		r.roots = append(r.roots, locator)
		r.rootSet[locator] = struct{}{}
	}
	return nil
}

func (r *Runtime) hydrateFallbacks(state *domain.SerializedState, cfg config) {
	r.fallbackExclusions = make(map[domain.Locator]struct{})
	for _, entry := range state.FallbackExclusionList {
		for _, reference := range entry.References {
			r.fallbackExclusions[domain.NewLocator(entry.Name, reference)] = struct{}{}
		}
	}

	r.fallbackPool = make(map[string]domain.DependencyTarget, len(state.FallbackPool))
	for _, entry := range state.FallbackPool {
		r.fallbackPool[entry.Name] = entry.Target
	}

	if state.EnableTopLevelFallback {
		r.fallbackLocators = append(r.fallbackLocators, domain.TopLevelLocator)
	}
	if cfg.compatibilityMode {
		for _, name := range cfg.compatibilityPackages {
			r.fallbackLocators = append(r.fallbackLocators, r.registry.References(name)...)
		}
	}
}

// dependents returns the reverse dependency graph, built on first use.
func (r *Runtime) dependents() *domain.Graph {
	r.graphOnce.Do(func() {
		r.graph = domain.BuildGraph(r.registry)
	})
	return r.graph
}

func (r *Runtime) isDependencyTreeRoot(l domain.Locator) bool {
	if l.IsTopLevel() {
		return true
	}
	_, ok := r.rootSet[l]
	return ok
}

func (r *Runtime) canUseFallbacks(issuer domain.Locator) bool {
	if issuer.IsTopLevel() {
		return false
	}
	_, excluded := r.fallbackExclusions[issuer]
	return !excluded
}

// FallbackLocators returns the locators consulted, in order, for undeclared dependencies.
func (r *Runtime) FallbackLocators() []domain.Locator {
	return slices.Clone(r.fallbackLocators)
}

// BasePath returns the directory serialized locations are relative to.
func (r *Runtime) BasePath() string {
	return r.basePath
}

func locatorDisplay(name, reference *string) string {
	deref := func(s *string) string {
		if s == nil {
			return "null"
		}
		return *s
	}
	return deref(name) + "@" + deref(reference)
}

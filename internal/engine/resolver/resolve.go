package resolver

import (
	"errors"
	iofs "io/fs"
	"path"
	"regexp"
	"strings"

	"go.trai.ch/pnp/internal/core/domain"
	"go.trai.ch/pnp/internal/core/ppath"
)

// APIRequest is the reserved request resolving to the runtime's own API file.
const APIRequest = "pnpapi"

var (
	bareSpecifierRegExp = regexp.MustCompile(`^((?:node:)?(?:@[^/]+/)?[^/]+)/*(.*)$`)
	windowsDriveRegExp  = regexp.MustCompile(`^[a-zA-Z]:[\\/]`)
	urlRegExp           = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]+:`)
)

// splitBareSpecifier splits a package request into its package name and subpath.
// It returns false for path requests.
func splitBareSpecifier(request string) (string, string, bool) {
	switch {
	case request == "", request == ".", request == "..",
		strings.HasPrefix(request, "/"),
		strings.HasPrefix(request, "./"),
		strings.HasPrefix(request, "../"),
		strings.HasPrefix(request, `\\`),
		windowsDriveRegExp.MatchString(request):
		return "", "", false
	}
	m := bareSpecifierRegExp.FindStringSubmatch(request)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

func isURLRequest(request string) bool {
	return urlRegExp.MatchString(request) && !strings.HasPrefix(request, domain.NodeSchemePrefix)
}

// ResolveToUnqualified maps request, issued from the portable path issuer, to the path it
// designates before any extension or index lookup. It returns false when the request must
// be left to the platform (builtins). An issuer ending with a slash is a directory.
func (r *Runtime) ResolveToUnqualified(request, issuer string, opts ...ResolveOption) (string, bool, error) {
	return r.resolveToUnqualified(request, issuer, newResolveConfig(opts))
}

func (r *Runtime) resolveToUnqualified(request, issuer string, cfg resolveConfig) (string, bool, error) {
	if request == APIRequest {
		return r.apiPath, true, nil
	}
	if cfg.considerBuiltins && domain.IsBuiltinModule(request) {
		return "", false, nil
	}

	requestForDisplay := display(request)
	issuerForDisplay := display(issuer)

	if strings.HasPrefix(request, "#") {
		return "", false, unsupportedError(requestForDisplay, issuerForDisplay, "Private import mappings can't be resolved by the runtime.")
	}
	if isURLRequest(request) {
		return "", false, unsupportedError(requestForDisplay, issuerForDisplay, "URL requests can't be resolved by the runtime.")
	}

	if issuer != "" && r.isPathIgnored(issuer) {
		owned := false
		if ppath.IsAbsolute(request) {
			_, ok, err := r.FindPackageLocator(request)
			if err != nil {
				return "", false, err
			}
			owned = ok
		}
		if !owned {
			resolved, err := r.native.Resolve(request, issuer)
			if err != nil {
				return "", false, ignoredIssuerError(requestForDisplay, issuerForDisplay)
			}
			return resolved, true, nil
		}
	}

	dependencyName, subpath, bare := splitBareSpecifier(request)
	if !bare {
		return r.resolvePathRequest(request, issuer, requestForDisplay, issuerForDisplay)
	}

	if issuer == "" {
		return "", false, apiError(requestForDisplay, issuerForDisplay)
	}

	issuerLocator, ok, err := r.FindPackageLocator(issuer)
	if err != nil {
		return "", false, err
	}
	if !ok {
		resolved, err := r.native.Resolve(request, issuer)
		if err != nil {
			return "", false, outsideTreeError(requestForDisplay, issuerForDisplay)
		}
		return resolved, true, nil
	}

	target, err := r.resolveDependency(dependencyName, requestForDisplay, issuerForDisplay, issuerLocator, cfg)
	if err != nil {
		return "", false, err
	}

	dependencyLocator := target.Locator(dependencyName)
	dependencyInfo, ok := r.registry.Get(dependencyLocator)
	if !ok {
		return "", false, internalError(dependencyLocator)
	}
	if dependencyInfo.PackageLocation == "" {
		return "", false, missingDependencyError(requestForDisplay, issuerForDisplay, issuerLocator, dependencyLocator)
	}

	unqualified := dependencyInfo.PackageLocation
	if subpath != "" {
		unqualified = ppath.Join(dependencyInfo.PackageLocation, subpath)
	}
	return ppath.Normalize(unqualified), true, nil
}

func (r *Runtime) resolvePathRequest(request, issuer, requestForDisplay, issuerForDisplay string) (string, bool, error) {
	var unqualified string
	if ppath.IsAbsolute(request) {
		unqualified = ppath.Normalize(request)
	} else {
		if issuer == "" {
			return "", false, apiError(requestForDisplay, issuerForDisplay)
		}
		dir := issuer
		if !strings.HasSuffix(issuer, "/") {
			dir = path.Dir(issuer)
		}
		unqualified = ppath.Normalize(ppath.Join(dir, request))
	}

	if _, _, err := r.FindPackageLocator(unqualified); err != nil {
		return "", false, err
	}
	return unqualified, true, nil
}

// resolveDependency settles the target of dependencyName for the issuer, going through the
// fallbacks when the issuer does not provide it.
func (r *Runtime) resolveDependency(
	dependencyName, request, issuer string,
	issuerLocator domain.Locator,
	cfg resolveConfig,
) (domain.DependencyTarget, error) {
	issuerInfo, ok := r.registry.Get(issuerLocator)
	if !ok {
		return domain.DependencyTarget{}, internalError(issuerLocator)
	}

	target, declared := issuerInfo.Dependency(dependencyName)
	if declared && !target.IsNull() {
		return target, nil
	}

	fallback, silent, err := r.findFallback(dependencyName, issuerLocator)
	if err != nil {
		return domain.DependencyTarget{}, err
	}
	if silent {
		return fallback, nil
	}

	var resErr error
	if declared {
		resErr = r.missingPeerError(request, issuer, dependencyName, issuerLocator)
	} else {
		resErr = r.undeclaredError(request, issuer, dependencyName, issuerLocator, cfg.considerBuiltins)
	}

	if fallback.IsNull() {
		return domain.DependencyTarget{}, resErr
	}

	r.warnOnce(resErr)
	return fallback, nil
}

// findFallback looks dependencyName up in the fallback locators, then in the fallback pool.
// silent is true when the match may be used without a warning.
func (r *Runtime) findFallback(dependencyName string, issuerLocator domain.Locator) (domain.DependencyTarget, bool, error) {
	if !r.canUseFallbacks(issuerLocator) {
		return domain.NullTarget(), false, nil
	}

	for _, l := range r.fallbackLocators {
		info, ok := r.registry.Get(l)
		if !ok {
			return domain.NullTarget(), false, internalError(l)
		}
		target, ok := info.Dependency(dependencyName)
		if !ok || target.IsNull() {
			continue
		}
		return target, !r.alwaysWarnOnFallback, nil
	}

	if r.enableTopLevel {
		if target, ok := r.fallbackPool[dependencyName]; ok && !target.IsNull() {
			return target, false, nil
		}
	}

	return domain.NullTarget(), false, nil
}

// warnOnce reports the first line of err through the logger, once per distinct message.
func (r *Runtime) warnOnce(err error) {
	if r.debugLevel == 0 {
		return
	}
	message, _, _ := strings.Cut(err.Error(), "\n")
	if _, loaded := r.warnings.LoadOrStore(message, struct{}{}); loaded {
		return
	}
	r.logger.Warn(message)
}

// ResolveUnqualified applies extension, index and main field lookup to an unqualified path.
func (r *Runtime) ResolveUnqualified(unqualified string, opts ...ResolveOption) (string, error) {
	return r.resolveUnqualified(unqualified, newResolveConfig(opts))
}

func (r *Runtime) resolveUnqualified(unqualified string, cfg resolveConfig) (string, error) {
	qualified, candidates, ok := r.qualifier.Qualify(unqualified, cfg.extensions)
	if ok {
		return ppath.Normalize(qualified), nil
	}

	extensions := cfg.extensions
	if extensions == nil {
		extensions = r.qualifier.Extensions()
	}

	locator, owned, err := r.FindPackageLocator(unqualified)
	if err != nil {
		return "", err
	}
	if owned {
		info, ok := r.registry.Get(locator)
		if !ok {
			return "", internalError(locator)
		}
		if info.PackageLocation != "" {
			if _, err := r.fs.Stat(info.PackageLocation); err != nil {
				if errors.Is(err, iofs.ErrNotExist) {
					return "", missingFromDiskError(unqualified, extensions, locator, info.PackageLocation)
				}
				return "", inaccessiblePackageError(unqualified, extensions, locator, info.PackageLocation, err)
			}
		}
	}

	return "", qualificationError(unqualified, extensions, candidates)
}

// ResolveRequest resolves request from issuer down to a file. It returns false when the
// request must be left to the platform. Resolution errors carry the request and issuer.
func (r *Runtime) ResolveRequest(request, issuer string, opts ...ResolveOption) (string, bool, error) {
	cfg := newResolveConfig(opts)

	resolved, ok, err := r.resolveRequest(request, issuer, cfg)
	if err != nil {
		if resErr, isResErr := domain.AsResolutionError(err); isResErr {
			resErr.Data["request"] = display(request)
			if issuer != "" {
				resErr.Data["issuer"] = display(issuer)
			} else {
				resErr.Data["issuer"] = nil
			}
		}
		return "", false, err
	}
	return resolved, ok, nil
}

func (r *Runtime) resolveRequest(request, issuer string, cfg resolveConfig) (string, bool, error) {
	unqualified, ok, err := r.resolveToUnqualified(request, issuer, cfg)
	if err != nil {
		return "", false, err
	}
	if request == APIRequest {
		return unqualified, true, nil
	}
	if !ok {
		return "", false, nil
	}

	qualified, err := r.resolveUnqualified(unqualified, cfg)
	if err != nil {
		return "", false, err
	}
	return qualified, true, nil
}

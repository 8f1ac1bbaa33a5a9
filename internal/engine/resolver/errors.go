package resolver

import (
	"fmt"
	"strings"

	"go.trai.ch/pnp/internal/core/domain"
	"go.trai.ch/pnp/internal/core/ppath"
)

// display renders a portable path the way users see it.
func display(p string) string {
	return ppath.FromPortable(p)
}

// via names the request when it differs from the dependency it designates.
func via(dependencyName, request string) string {
	if dependencyName == request {
		return ""
	}
	return fmt.Sprintf(" (via %q)", request)
}

func blacklistedError(p string) error {
	return domain.NewResolutionError(domain.CodeBlacklisted,
		fmt.Sprintf("A forbidden path has been used in the package resolution process - this is usually caused by one of your tools calling 'fs.realpath' on the return value of 'require.resolve'. Since we need to use symlinks to simultaneously provide valid filesystem paths and disambiguate peer dependencies, they must be passed untransformed to 'require'.\n\nForbidden path: %s", display(p)),
		map[string]any{"location": display(p)})
}

func apiError(request, issuer string) error {
	return domain.NewResolutionError(domain.CodeAPIError,
		"The resolveToUnqualified function must be called with a valid issuer when the path isn't a builtin nor absolute",
		map[string]any{"request": request, "issuer": issuer})
}

func unsupportedError(request, issuer, reason string) error {
	return domain.NewResolutionError(domain.CodeUnsupported,
		fmt.Sprintf("%s\n\nRequire request: %q\nRequired by: %s\n", reason, request, issuer),
		map[string]any{"request": request, "issuer": issuer})
}

func internalError(l domain.Locator) error {
	return domain.NewResolutionError(domain.CodeInternal,
		"Couldn't find a matching entry in the dependency tree for the specified parent (this is probably an internal error)",
		map[string]any{"locator": l})
}

func ignoredIssuerError(request, issuer string) error {
	return domain.NewResolutionError(domain.CodeBuiltinNodeResolutionFailed,
		fmt.Sprintf("The builtin node resolution algorithm was unable to resolve the requested module (it didn't go through the pnp resolver because the issuer was explicitely ignored by the regexp)\n\nRequire request: %q\nRequired by: %s\n", request, issuer),
		map[string]any{"request": request, "issuer": issuer})
}

func outsideTreeError(request, issuer string) error {
	return domain.NewResolutionError(domain.CodeBuiltinNodeResolutionFailed,
		fmt.Sprintf("The builtin node resolution algorithm was unable to resolve the requested module (it didn't go through the pnp resolver because the issuer doesn't seem to be part of the Yarn-managed dependency tree).\n\nRequire path: %q\nRequired by: %s\n", request, issuer),
		map[string]any{"request": request, "issuer": issuer})
}

func missingDependencyError(request, issuer string, issuerLocator, dependency domain.Locator) error {
	return domain.NewResolutionError(domain.CodeMissingDependency,
		fmt.Sprintf("A dependency seems valid but didn't get installed for some reason. This might be caused by a partial install, such as dev vs prod.\n\nRequired package: %s%s\nRequired by: %s (via %s)\n",
			dependency, via(dependency.Name.String(), request), issuerLocator, issuer),
		map[string]any{"request": request, "issuer": issuer, "dependencyLocator": dependency})
}

func ancestorsBreakingChain(ancestors []domain.Locator) string {
	var b strings.Builder
	for _, ancestor := range ancestors {
		fmt.Fprintf(&b, "Ancestor breaking the chain: %s\n", ancestor)
	}
	return b.String()
}

func (r *Runtime) missingPeerError(request, issuer, dependencyName string, issuerLocator domain.Locator) error {
	data := map[string]any{"request": request, "issuer": issuer, "dependencyName": dependencyName}

	if r.isDependencyTreeRoot(issuerLocator) {
		return domain.NewResolutionError(domain.CodeMissingPeerDependency,
			fmt.Sprintf("Your application tried to access %s (a peer dependency); this isn't allowed as there is no ancestor to satisfy the requirement. Use a devDependency if needed.\n\nRequired package: %s%s\nRequired by: %s\n",
				dependencyName, dependencyName, via(dependencyName, request), issuer),
			data)
	}

	broken := r.dependents().BrokenAncestors(r.registry, dependencyName, issuerLocator)
	data["issuerLocator"] = issuerLocator
	data["brokenAncestors"] = broken

	allRoots := true
	for _, ancestor := range broken {
		if !r.isDependencyTreeRoot(ancestor) {
			allRoots = false
			break
		}
	}

	if allRoots {
		return domain.NewResolutionError(domain.CodeMissingPeerDependency,
			fmt.Sprintf("%s tried to access %s (a peer dependency) but it isn't provided by your application; this makes the require call ambiguous and unsound.\n\nRequired package: %s%s\nRequired by: %s (via %s)\n%s\n",
				issuerLocator.Name, dependencyName, dependencyName, via(dependencyName, request), issuerLocator, issuer, ancestorsBreakingChain(broken)),
			data)
	}
	return domain.NewResolutionError(domain.CodeMissingPeerDependency,
		fmt.Sprintf("%s tried to access %s (a peer dependency) but it isn't provided by its ancestors; this makes the require call ambiguous and unsound.\n\nRequired package: %s%s\nRequired by: %s (via %s)\n\n%s\n",
			issuerLocator.Name, dependencyName, dependencyName, via(dependencyName, request), issuerLocator, issuer, ancestorsBreakingChain(broken)),
		data)
}

func (r *Runtime) undeclaredError(request, issuer, dependencyName string, issuerLocator domain.Locator, considerBuiltins bool) error {
	data := map[string]any{"request": request, "issuer": issuer, "dependencyName": dependencyName}
	root := r.isDependencyTreeRoot(issuerLocator)
	if !root {
		data["issuerLocator"] = issuerLocator
	}

	var message string
	switch {
	case !considerBuiltins && domain.IsBuiltinModule(request) && root:
		message = fmt.Sprintf("Your application tried to access %s. While this module is usually interpreted as a Node builtin, your resolver is running inside a non-Node resolution context where such builtins are ignored. Since %s isn't otherwise declared in your dependencies, this makes the require call ambiguous and unsound.\n\nRequired package: %s%s\nRequired by: %s\n",
			dependencyName, dependencyName, dependencyName, via(dependencyName, request), issuer)
	case !considerBuiltins && domain.IsBuiltinModule(request):
		message = fmt.Sprintf("%s tried to access %s. While this module is usually interpreted as a Node builtin, your resolver is running inside a non-Node resolution context where such builtins are ignored. Since %s isn't otherwise declared in %s's dependencies, this makes the require call ambiguous and unsound.\n\nRequired package: %s%s\nRequired by: %s\n",
			issuerLocator.Name, dependencyName, dependencyName, issuerLocator.Name, dependencyName, via(dependencyName, request), issuer)
	case root:
		message = fmt.Sprintf("Your application tried to access %s, but it isn't declared in your dependencies; this makes the require call ambiguous and unsound.\n\nRequired package: %s%s\nRequired by: %s\n",
			dependencyName, dependencyName, via(dependencyName, request), issuer)
	default:
		message = fmt.Sprintf("%s tried to access %s, but it isn't declared in its dependencies; this makes the require call ambiguous and unsound.\n\nRequired package: %s%s\nRequired by: %s (via %s)\n",
			issuerLocator.Name, dependencyName, dependencyName, via(dependencyName, request), issuerLocator, issuer)
	}

	return domain.NewResolutionError(domain.CodeUndeclaredDependency, message, data)
}

func qualificationError(unqualified string, extensions, candidates []string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Qualified path resolution failed: we looked for the following paths, but none could be accessed.\n\nSource path: %s\n", display(unqualified))
	for _, candidate := range candidates {
		fmt.Fprintf(&b, "Not found: %s\n", display(candidate))
	}
	return domain.NewResolutionError(domain.CodeQualifiedPathResolutionFailed, b.String(),
		map[string]any{"unqualifiedPath": display(unqualified), "extensions": extensions, "candidates": candidates})
}

func missingFromDiskError(unqualified string, extensions []string, l domain.Locator, location string) error {
	reason := "Required package missing from disk. If you keep your packages inside your repository then restarting the Node process may be enough. Otherwise, try to run an install first."
	if strings.Contains(location, "/unplugged/") {
		reason = "Required unplugged package missing from disk. This may happen when switching branches without running installs (unplugged packages must be fully materialized on disk to work)."
	}
	return domain.NewResolutionError(domain.CodeQualifiedPathResolutionFailed,
		fmt.Sprintf("%s\n\nMissing package: %s\nExpected package location: %s\n", reason, l, display(location)),
		map[string]any{"unqualifiedPath": display(unqualified), "extensions": extensions, "locator": l})
}

func inaccessiblePackageError(unqualified string, extensions []string, l domain.Locator, location string, cause error) error {
	reason := cause.Error()
	if reason != "" {
		reason = strings.ToLower(reason[:1]) + reason[1:]
	}
	return domain.NewResolutionError(domain.CodeQualifiedPathResolutionFailed,
		fmt.Sprintf("Required package exists but could not be accessed (%s).\n\nMissing package: %s\nExpected package location: %s\n", reason, l, display(location)),
		map[string]any{"unqualifiedPath": display(unqualified), "extensions": extensions, "locator": l})
}

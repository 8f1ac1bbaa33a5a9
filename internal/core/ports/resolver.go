package ports

// NativeResolver resolves a request the way a plain node_modules layout would.
// The runtime defers to it for issuers it does not govern.
//
//go:generate mockgen -destination=mocks/resolver_mock.go -package=mocks -source=resolver.go
type NativeResolver interface {
	// Resolve returns the qualified path of request as seen from the issuer file or directory.
	// Both paths are portable.
	Resolve(request, issuer string) (string, error)
}

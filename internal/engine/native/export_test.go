package native

// LookupPaths exposes lookupPaths for testing.
var LookupPaths = lookupPaths

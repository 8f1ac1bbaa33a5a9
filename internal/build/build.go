// Package build holds build-time information.
package build

// Version is the pnp release, stamped with -ldflags "-X go.trai.ch/pnp/internal/build.Version=...".
var Version = "dev"

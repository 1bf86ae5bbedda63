// Package meta holds build-time metadata for HarborView.
package meta

// Version is the HarborView version. Overridden at build time via
// -ldflags "-X github.com/harborview/harborview/internal/meta.Version=...".
var Version = "v0.0.0-unknown"

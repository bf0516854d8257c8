// Package version exposes build metadata for the vehicle, controller and
// simulator binaries. Version, Commit and BuildTime are set through ldflags.
package version

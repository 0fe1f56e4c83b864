// Package buildinfo exposes the sessgate build version.
//
// Values are injected at build time via ldflags:
//
//	go build -ldflags "-X github.com/yndnr/sessgate/internal/infra/buildinfo.Version=v1.0.0"
//
// Unset values fall back to the module and VCS data embedded by the Go
// toolchain.
package buildinfo

// Package constant defines immutable application-level identifiers and configuration defaults.
package constant

const (
	// Madari is the canonical application identifier used for filesystem paths and CLI branding.
	Madari = "madari"

	// Version is the current application semantic version string.
	Version = "0.1.0"

	// UserAgent is the HTTP User-Agent string sent to addon transports and the tracking service.
	UserAgent = "Madari/1.0"
)

// Build metadata, injected at link time by the release pipeline.
var (
	BuiltAt  = "unknown"
	BuiltBy  = "unknown"
	Revision = "unknown"
)

package mymarket

// Version information for the storefront
const (
	// Version is the current release
	Version = "development"

	// FormatVersion identifies the on-disk artifact layout
	FormatVersion = "v1"

	// BuildDate is set during build time
	BuildDate = "development"

	// GitCommit is set during build time
	GitCommit = "unknown"
)

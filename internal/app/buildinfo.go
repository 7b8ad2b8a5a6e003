package app

// Build information set via -ldflags at build time.
var (
	// BuildVersion is the semantic version of the built binary.
	BuildVersion = "0.0.0-dev"
	// BuildCommit is the VCS commit of the build.
	BuildCommit = "unknown"
	// BuildDate is the ISO-8601 build timestamp.
	BuildDate = "unknown"
)

package app

import "fmt"

// Version, Commit, and BuildTime are set via ldflags at build time.
// Example: go build -ldflags "-X github.com/Thanat-Wut/worddee-api/internal/app.Version=1.2.0"
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// BuildVersion returns a formatted version string for startup logs and the
// version command.
func BuildVersion() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildTime)
}

// ServiceVersion is the version reported by the API: the build version when
// set via ldflags, otherwise the configured one.
func ServiceVersion(configured string) string {
	if Version != "dev" {
		return Version
	}
	return configured
}

// Package version reports what build is running and how it introduces itself to the api.
package version

// BuildInfo holds version information about the build.
type BuildInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Info returns the build information for service. version, commit and date are
// set at build time:
//
//	-ldflags "-X 'stridekit/internal/core/version.version=v0.1.0' -X 'stridekit/internal/core/version.commit=abcd'"
func Info(service string) BuildInfo {
	if service == "" {
		service = "stridekit"
	}
	return BuildInfo{
		Service: service,
		Version: version,
		Commit:  commit,
		Date:    date,
	}
}

// UserAgent is the User-Agent header outbound calls carry, e.g. "stridekit/v0.1.0 (abcd)"
func UserAgent() string {
	bi := Info("")
	return bi.Service + "/" + bi.Version + " (" + bi.Commit + ")"
}

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

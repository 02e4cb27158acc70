// Package buildinfo holds the version stamped into release binaries.
//
// The variables are overridden with ldflags:
//
//	go build -ldflags "-X github.com/matzehuels/designstudio/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/matzehuels/designstudio/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/matzehuels/designstudio/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)" ./cmd/studio
package buildinfo

import "fmt"

var (
	Version = "dev"     // semantic version, e.g. "v1.2.3"
	Commit  = "none"    // git commit
	Date    = "unknown" // build timestamp, RFC 3339
)

// Template is the cobra version template.
func Template() string {
	return fmt.Sprintf("{{.Name}} %s (commit %s, built %s)\n", Short(), Commit, Date)
}

// Short returns the version without the leading "v".
func Short() string {
	if len(Version) > 1 && Version[0] == 'v' {
		return Version[1:]
	}
	return Version
}

// UserAgent identifies the tool to remote APIs, e.g. "design-studio/1.2.3".
func UserAgent() string {
	return "design-studio/" + Short()
}

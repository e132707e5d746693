// Package version holds the build stamp of the unityperf binaries, as served
// by /version and reported to Sentry.
package version

import "sync"

const (
	devVersion = "dev"
	// releasePrefix names the project in Sentry release identifiers.
	releasePrefix = "unityperf-web@"
)

// Info is the build stamp injected through -ldflags at link time.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
}

// Release formats the stamp as a Sentry release, adding the short commit
// when one is known.
func (i Info) Release() string {
	release := releasePrefix + i.Version
	if commit := shortCommit(i.Commit); commit != "" {
		release += "+" + commit
	}
	return release
}

func shortCommit(commit string) string {
	if commit == "" || commit == "unknown" {
		return ""
	}
	if len(commit) > 12 {
		return commit[:12]
	}
	return commit
}

var (
	mu      sync.RWMutex
	current = Info{Version: devVersion}
)

// Set replaces the stamp. An empty version reads as "dev".
func Set(v Info) {
	if v.Version == "" {
		v.Version = devVersion
	}
	mu.Lock()
	current = v
	mu.Unlock()
}

// Current returns the stamp last passed to Set.
func Current() Info {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// Package version reports the blockscan release and build identity.
package version

import (
	"crypto/sha256"
	"encoding/hex"
	"runtime/debug"
	"sync"
)

// Version is the current semantic version
const Version = "0.3.0"

// Set with -ldflags "-X github.com/standardbeagle/blockscan/internal/version.GitCommit=..."
var (
	GitCommit = ""
	BuildDate = ""
)

// build is the identity resolved once from ldflags and embedded build info
type build struct {
	commit string
	date   string
	id     string
}

var (
	resolved    build
	resolveOnce sync.Once
)

func current() build {
	resolveOnce.Do(func() {
		resolved = resolve(GitCommit, BuildDate)
	})
	return resolved
}

// resolve fills commit and date from VCS stamps when ldflags left them
// empty, and fingerprints the toolchain, module and VCS state
func resolve(commit, date string) build {
	b := build{commit: commit, date: date}
	h := sha256.New()
	h.Write([]byte(Version))

	if info, ok := debug.ReadBuildInfo(); ok {
		h.Write([]byte(info.GoVersion))
		h.Write([]byte(info.Main.Path))
		h.Write([]byte(info.Main.Version))
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if b.commit == "" {
					b.commit = s.Value
				}
			case "vcs.time":
				if b.date == "" {
					b.date = s.Value
				}
			case "vcs.modified":
			default:
				continue
			}
			h.Write([]byte(s.Key + "=" + s.Value))
		}
	}

	if b.commit == "" {
		b.commit = "unknown"
	}
	if len(b.commit) > 12 {
		b.commit = b.commit[:12]
	}
	if b.date == "" {
		b.date = "development"
	}
	b.id = hex.EncodeToString(h.Sum(nil))[:16]
	return b
}

// FullInfo returns the version with commit and build date
func FullInfo() string {
	b := current()
	return "blockscan " + Version + " (commit: " + b.commit + ", built: " + b.date + ")"
}

// BuildID returns a stable fingerprint of the running binary
func BuildID() string {
	return current().id
}

package api

import (
	"runtime/debug"
	"sync"
)

// Set with -ldflags "-X github.com/MJE43/pf-casino-engine/internal/api.EngineVersion=...".
var (
	EngineVersion = "dev"
	GitCommit     = ""
	BuildTime     = ""
)

var vcsInfo = sync.OnceValues(func() (revision, built string) {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "", ""
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.time":
			built = s.Value
		}
	}
	return revision, built
})

// GetVersionInfo reports the linker-stamped build, falling back to the VCS
// stamp the go tool embeds.
func GetVersionInfo() VersionInfo {
	v := VersionInfo{EngineVersion: EngineVersion, GitCommit: GitCommit, BuildTime: BuildTime}
	rev, built := vcsInfo()
	if v.GitCommit == "" {
		v.GitCommit = rev
	}
	if v.BuildTime == "" {
		v.BuildTime = built
	}
	return v
}

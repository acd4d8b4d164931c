// Package buildtime tells which build of museflow is running.
//
// version is set at link time:
//
//	go build -ldflags "-X github.com/musecrm/museflow/pkg/buildtime.version=v1.2.3" ./cmd/...
//
// The revision is read from VCS stamps of the build.
package buildtime

import "runtime/debug"

var version = "dev"

func VERSION() string {
	return version
}

// GIT_REVISION is the commit the binary was built from, or "unknown".
func GIT_REVISION() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}
	revision, modified := "unknown", false
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			modified = s.Value == "true"
		}
	}
	if modified {
		revision += "-dirty"
	}
	return revision
}

func VersionString() string {
	return VERSION() + " (commit: " + GIT_REVISION() + ")"
}

// Package version exposes build information, set at link time with -ldflags "-X".
package version

import (
	"runtime/debug"
)

const (
	unknown   = "unknown"
	shortHash = 12
)

//nolint:gochecknoglobals // set by the linker
var (
	name    = "avrocheck"
	version = ""
	commit  = ""
)

// Name returns the project name.
func Name() string {
	return name
}

// Version returns the release version, or the module version when built with go install.
func Version() string {
	if version != "" {
		return version
	}

	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}

	return unknown
}

// Commit returns the vcs revision the binary was built from, with a trailing "*" when the tree was dirty.
func Commit() string {
	if commit != "" {
		return commit
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return unknown
	}

	var revision, modified string

	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.modified":
			modified = setting.Value
		}
	}

	if revision == "" {
		return unknown
	}

	if len(revision) > shortHash {
		revision = revision[:shortHash]
	}

	if modified == "true" {
		revision += "*"
	}

	return revision
}

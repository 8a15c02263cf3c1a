// Package env collects every externally sourced build setting into one
// Inputs value, assembled once at process start. Components receive the
// value instead of reading the process environment themselves.
package env

import (
	"os"
	"path/filepath"
	"strings"
)

// Environment variable names recognized by Load.
const (
	ArchsVar              = "UNIBUILD_ARCHS"
	PlatformVar           = "UNIBUILD_PLATFORM"
	ScratchDirVar         = "UNIBUILD_SCRATCH_DIR"
	TargetPrefixVar       = "UNIBUILD_TARGET_PREFIX"
	TargetNameVar         = "UNIBUILD_TARGET_VAR"
	XcodeTargetSettingVar = "UNIBUILD_XCODE_TARGET_SETTING"
	XcodeTargetFallback   = "MACOSX_DEPLOYMENT_TARGET"
)

// Inputs holds every ambient setting the builder consumes.
type Inputs struct {
	Archs              []string // target architecture override
	Platform           string   // target platform override
	ScratchDir         string   // scratch-root override
	TargetPrefix       string   // deployment-target flag prefix, e.g. "-mmacosx-version-min="
	TargetVersion      string   // deployment-target version paired with TargetPrefix
	XcodeTargetSetting string   // xcodebuild setting-name override
	XcodeTargetValue   string   // fallback deployment-target version for the xcode backend
}

// Load reads the recognized variables through lookup. The deployment-target
// (prefix, variable-name) pair applies only when the prefix, the variable
// name, and the named variable's value are all non-empty; a half-set pair
// is ignored.
func Load(lookup func(string) string) Inputs {
	in := Inputs{
		Platform:           lookup(PlatformVar),
		ScratchDir:         lookup(ScratchDirVar),
		XcodeTargetSetting: lookup(XcodeTargetSettingVar),
		XcodeTargetValue:   lookup(XcodeTargetFallback),
	}
	if v := lookup(ArchsVar); v != "" {
		in.Archs = strings.Fields(v)
	}
	prefix := lookup(TargetPrefixVar)
	if name := lookup(TargetNameVar); prefix != "" && name != "" {
		if version := lookup(name); version != "" {
			in.TargetPrefix = prefix
			in.TargetVersion = version
		}
	}
	return in
}

// FromProcess loads Inputs from the process environment.
func FromProcess() Inputs {
	return Load(os.Getenv)
}

// WorkDir returns the default shared build root used when no --build-root
// flag is given.
func WorkDir() (string, error) {
	userCacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(userCacheDir, ".unibuild"), nil
}

// Package toolchain resolves the target toolchain once per build: the
// architecture list, platform, SDK root, deployment-target flag, and
// compiler/archiver paths.
package toolchain

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/unibuild/unibuild/internal/env"
	"github.com/unibuild/unibuild/internal/executor"
)

// Discovery locates tools and SDKs on the build machine.
type Discovery interface {
	// FindTool returns the absolute path of the named tool within the
	// platform's toolchain.
	FindTool(platform, name string) (string, error)

	// SDKPath returns the SDK sysroot for the named platform.
	SDKPath(platform string) (string, error)
}

// Xcrun implements Discovery by shelling out to xcrun.
type Xcrun struct {
	Runner executor.Runner
}

func (x *Xcrun) FindTool(platform, name string) (string, error) {
	path, err := x.Runner.Output("xcrun", []string{"--sdk", platform, "--find", name}, "", nil)
	if err != nil {
		return "", fmt.Errorf("find %s: %w", name, err)
	}
	if path == "" {
		return "", fmt.Errorf("find %s: xcrun returned nothing", name)
	}
	return path, nil
}

func (x *Xcrun) SDKPath(platform string) (string, error) {
	path, err := x.Runner.Output("xcrun", []string{"--sdk", platform, "--show-sdk-path"}, "", nil)
	if err != nil {
		return "", fmt.Errorf("sdk path for %s: %w", platform, err)
	}
	if path == "" {
		return "", fmt.Errorf("sdk path for %s: xcrun returned nothing", platform)
	}
	return path, nil
}

// Defaults applied when the corresponding input is absent.
const (
	DefaultPlatform           = "macosx"
	DefaultDeploymentFlag     = "-mmacosx-version-min=10.13"
	DefaultTargetVersion      = "10.13"
	DefaultXcodeTargetSetting = "MACOSX_DEPLOYMENT_TARGET"
)

// Context is the toolchain resolved for one build. It is immutable after
// construction.
type Context struct {
	Archs            []string
	Platform         string
	SDKRoot          string
	DeploymentTarget string // complete compiler flag, e.g. "-mmacosx-version-min=10.13"
	CC               string
	AR               string

	// Env exposes the resolved values to argument templating.
	Env map[string]string
}

// NewContext resolves a Context from the build inputs. Any discovery
// failure is fatal; a half-resolved context is never returned.
func NewContext(in env.Inputs, d Discovery) (*Context, error) {
	archs := in.Archs
	if len(archs) == 0 {
		archs = []string{hostArch()}
	}
	platform := in.Platform
	if platform == "" {
		platform = DefaultPlatform
	}

	sdkRoot, err := d.SDKPath(platform)
	if err != nil {
		return nil, fmt.Errorf("toolchain: %w", err)
	}
	cc, err := d.FindTool(platform, "clang")
	if err != nil {
		return nil, fmt.Errorf("toolchain: %w", err)
	}
	ar, err := d.FindTool(platform, "ar")
	if err != nil {
		return nil, fmt.Errorf("toolchain: %w", err)
	}

	target := DefaultDeploymentFlag
	if in.TargetPrefix != "" && in.TargetVersion != "" {
		target = in.TargetPrefix + in.TargetVersion
	}

	return &Context{
		Archs:            archs,
		Platform:         platform,
		SDKRoot:          sdkRoot,
		DeploymentTarget: target,
		CC:               cc,
		AR:               ar,
		Env: map[string]string{
			"CC":       cc,
			"AR":       ar,
			"SDKROOT":  sdkRoot,
			"PLATFORM": platform,
			"ARCHS":    strings.Join(archs, " "),
			"TARGET":   target,
		},
	}, nil
}

// hostArch maps the Go architecture name to the toolchain's name for the
// build machine's architecture.
func hostArch() string {
	switch runtime.GOARCH {
	case "amd64":
		return "x86_64"
	default:
		return runtime.GOARCH
	}
}

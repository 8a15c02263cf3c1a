package builder

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/unibuild/unibuild/internal/fsutil"
	"github.com/unibuild/unibuild/internal/toolchain"
)

const xcodeConfiguration = "Release"

// xcodeBackend wraps xcodebuild. The single configure invocation performs
// the whole build-and-install action; there is no separate make step for an
// IDE-driven build.
type xcodeBackend struct {
	b *Builder
}

// deploymentSetting resolves the xcodebuild deployment-target assignment:
// the setting-name override with its paired version, then the platform
// fallback variable, then the hard default.
func (x *xcodeBackend) deploymentSetting() string {
	in := x.b.inputs
	if in.XcodeTargetSetting != "" && in.TargetVersion != "" {
		return in.XcodeTargetSetting + "=" + in.TargetVersion
	}
	if in.XcodeTargetValue != "" {
		return toolchain.DefaultXcodeTargetSetting + "=" + in.XcodeTargetValue
	}
	return toolchain.DefaultXcodeTargetSetting + "=" + toolchain.DefaultTargetVersion
}

func (x *xcodeBackend) configure(arch, scratchDir, installDir string) error {
	b := x.b
	tc := b.toolchain

	// UNIBUILD_BUILD_ROOT and UNIBUILD_PACKAGE_ROOT are exposed so the
	// library's own build scripts can locate the umbrella build root and
	// the consuming package.
	args := []string{
		"install",
		"-configuration", xcodeConfiguration,
		"ARCHS=" + arch,
		"ONLY_ACTIVE_ARCH=NO",
		"SDKROOT=" + tc.SDKRoot,
		x.deploymentSetting(),
		"SYMROOT=" + scratchDir,
		"DSTROOT=" + installDir,
		"UNIBUILD_BUILD_ROOT=" + b.buildRoot,
		"UNIBUILD_PACKAGE_ROOT=" + b.packageRoot,
	}
	args = append(args, expand(b.config.Args, tc.Env)...)
	args = append(args, expand(b.config.ArgsFor(tc.Platform, arch), tc.Env)...)

	return b.runner.Run("xcodebuild", args, b.sourceRoot, nil)
}

func (x *xcodeBackend) make(string) error {
	// configure already built and installed in one xcodebuild run.
	return nil
}

// install copies the declared outputs from the per-configuration products
// directory into lib, and compiled interface modules into swiftmodules.
// The pipeline calls this after configure has already installed; re-copying
// the same artifacts makes the second call a harmless repeat.
func (x *xcodeBackend) install(scratchDir, installDir string) error {
	b := x.b
	products := x.productsDir(scratchDir)

	libDir := filepath.Join(installDir, "lib")
	if err := os.MkdirAll(libDir, 0o755); err != nil {
		return err
	}
	for _, output := range b.config.Outputs {
		src := filepath.Join(products, output)
		if !fsutil.Exists(src) {
			return fmt.Errorf("%w: %s not in %s", ErrNoArtifact, output, products)
		}
		if err := fsutil.CopyPath(src, filepath.Join(libDir, output)); err != nil {
			return err
		}
	}

	entries, err := os.ReadDir(products)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) != ".swiftmodule" {
			continue
		}
		dest := filepath.Join(installDir, "swiftmodules", e.Name())
		if err := fsutil.CopyPath(filepath.Join(products, e.Name()), dest); err != nil {
			return err
		}
	}
	return nil
}

// productsDir returns xcodebuild's per-configuration output directory under
// SYMROOT. macOS builds use the bare configuration name; other platforms
// append the platform suffix.
func (x *xcodeBackend) productsDir(scratchDir string) string {
	platform := x.b.toolchain.Platform
	if platform == toolchain.DefaultPlatform {
		return filepath.Join(scratchDir, xcodeConfiguration)
	}
	return filepath.Join(scratchDir, xcodeConfiguration+"-"+platform)
}

// merge overrides the generic merge for directory-style bundles: the whole
// bundle is taken from the first architecture, only the inner binary is
// lipo-merged, and each architecture's interface modules are collected into
// the merged bundle. Flat outputs use the generic merge.
func (x *xcodeBackend) merge(output string, inputs []ArchArtifact, dest string) error {
	if filepath.Ext(output) != ".framework" {
		return x.b.mergeArtifacts(inputs, dest)
	}

	if err := fsutil.CopyPath(inputs[0].Path, dest); err != nil {
		return err
	}
	binary := strings.TrimSuffix(output, ".framework")

	binInputs := make([]ArchArtifact, 0, len(inputs))
	for _, in := range inputs {
		binInputs = append(binInputs, ArchArtifact{Arch: in.Arch, Path: filepath.Join(in.Path, binary)})
	}
	if err := x.b.mergeArtifacts(binInputs, filepath.Join(dest, binary)); err != nil {
		return err
	}

	for _, in := range inputs {
		modules := filepath.Join(in.Path, "Modules", binary+".swiftmodule")
		if !fsutil.Exists(modules) {
			continue
		}
		if err := fsutil.CopyDir(modules, filepath.Join(dest, "Modules", binary+".swiftmodule")); err != nil {
			return err
		}
	}
	return nil
}

package builder

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/unibuild/unibuild/internal/fsutil"
)

// Build runs the whole pipeline: the per-architecture configure/make/install
// loop, the metadata install, and one universal-binary merge per declared
// output. Architectures build strictly in declared order; any hook failure
// aborts the build immediately.
//
// The loop is idempotent across repeated invocations: an architecture whose
// declared outputs all exist under its install directory is skipped.
func (b *Builder) Build() error {
	if len(b.config.Outputs) == 0 {
		b.log.Info("no declared outputs, nothing to build", "package", b.packageName)
		return nil
	}

	archs := b.toolchain.Archs
	installDirs := make(map[string]string, len(archs))

	for _, arch := range archs {
		scratchDir := filepath.Join(b.products, arch, "configure")
		installDir := filepath.Join(b.products, arch, "build")
		installDirs[arch] = installDir

		if b.alreadyBuilt(installDir) {
			b.log.Info("already built", "package", b.packageName, "arch", arch)
			continue
		}
		for _, dir := range []string{scratchDir, installDir} {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("%s: %s: %w", b.packageName, arch, err)
			}
		}

		b.log.Info("building", "package", b.packageName, "arch", arch, "kind", b.config.Kind)
		if err := b.backend.configure(arch, scratchDir, installDir); err != nil {
			return fmt.Errorf("%s: %s: configure: %w", b.packageName, arch, err)
		}
		if err := b.backend.make(scratchDir); err != nil {
			return fmt.Errorf("%s: %s: make: %w", b.packageName, arch, err)
		}
		if err := b.backend.install(scratchDir, installDir); err != nil {
			return fmt.Errorf("%s: %s: install: %w", b.packageName, arch, err)
		}
	}

	if len(archs) == 0 {
		return nil
	}

	// Headers and link metadata are assumed identical across architectures;
	// the first architecture's install directory is the source of truth.
	first := installDirs[archs[0]]
	packageDir := filepath.Join(b.buildRoot, b.packageName)

	if err := b.installMetadata(first, b.buildRoot, false); err != nil {
		return fmt.Errorf("%s: metadata: %w", b.packageName, err)
	}
	if err := b.installMetadata(first, packageDir, true); err != nil {
		return fmt.Errorf("%s: metadata: %w", b.packageName, err)
	}

	for _, output := range b.config.Outputs {
		inputs := make([]ArchArtifact, 0, len(archs))
		for _, arch := range archs {
			inputs = append(inputs, ArchArtifact{Arch: arch, Path: artifactPath(installDirs[arch], output)})
		}
		for _, dest := range []string{filepath.Join(b.buildRoot, output), filepath.Join(packageDir, output)} {
			if err := b.backend.merge(output, inputs, dest); err != nil {
				return fmt.Errorf("%s: merge %s: %w", b.packageName, output, err)
			}
		}
	}

	b.log.Info("build complete", "package", b.packageName, "outputs", len(b.config.Outputs))
	return nil
}

// artifactPath locates one declared output inside an architecture's install
// directory. Every backend stages its outputs under lib.
func artifactPath(installDir, output string) string {
	return filepath.Join(installDir, "lib", output)
}

// alreadyBuilt reports whether every declared output exists under the
// architecture's install directory.
func (b *Builder) alreadyBuilt(installDir string) bool {
	for _, output := range b.config.Outputs {
		if !fsutil.Exists(artifactPath(installDir, output)) {
			return false
		}
	}
	return true
}

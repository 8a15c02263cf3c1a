package builder

import (
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

// makeBackend drives an autotools-style source tree: the tree's own
// configure script, then make, then the install target.
type makeBackend struct {
	b *Builder
}

func (m *makeBackend) configure(arch, scratchDir, installDir string) error {
	b := m.b
	tc := b.toolchain

	cflags := strings.Join([]string{
		"-arch " + arch,
		"-isysroot " + tc.SDKRoot,
		tc.DeploymentTarget,
		"-fembed-bitcode",
	}, " ")
	args := []string{
		"--host=" + arch + "-apple-darwin",
		"--prefix=" + installDir,
		"CC=" + tc.CC,
		"CFLAGS=" + cflags,
	}
	// Manifest arguments go ahead of the cross-compilation flags; the
	// platform+architecture overrides go ahead of the generic ones.
	args = append(expand(b.config.Args, tc.Env), args...)
	args = append(expand(b.config.ArgsFor(tc.Platform, arch), tc.Env), args...)

	return b.runner.Run(filepath.Join(b.sourceRoot, "configure"), args, scratchDir, nil)
}

func (m *makeBackend) make(scratchDir string) error {
	jobs := "--jobs=" + strconv.Itoa(runtime.NumCPU())
	return m.b.runner.Run("make", []string{jobs}, scratchDir, nil)
}

func (m *makeBackend) install(scratchDir, _ string) error {
	target := m.b.config.InstallCommand
	if target == "" {
		target = "install"
	}
	return m.b.runner.Run("make", []string{target}, scratchDir, nil)
}

func (m *makeBackend) merge(_ string, inputs []ArchArtifact, dest string) error {
	return m.b.mergeArtifacts(inputs, dest)
}

package builder

// cmakeBackend configures through CMake cache variables; the make and
// install steps are the same as the make backend's.
type cmakeBackend struct {
	makeBackend
}

func (c *cmakeBackend) configure(arch, scratchDir, installDir string) error {
	b := c.b
	tc := b.toolchain

	// CMAKE_PREFIX_PATH points package discovery at the shared build root
	// so already-built dependencies are found there.
	args := []string{
		"-DCMAKE_C_FLAGS=-arch " + arch + " " + tc.DeploymentTarget,
		"-DCMAKE_INSTALL_PREFIX=" + installDir,
		"-DCMAKE_OSX_SYSROOT=" + tc.SDKRoot,
		"-DCMAKE_OSX_ARCHITECTURES=" + arch,
		"-DCMAKE_PREFIX_PATH=" + b.buildRoot,
		"-DPKG_CONFIG_USE_CMAKE_PREFIX_PATH=ON",
	}
	args = append(args, expand(b.config.Args, tc.Env)...)
	args = append(args, expand(b.config.ArgsFor(tc.Platform, arch), tc.Env)...)
	args = append(args, b.sourceRoot)

	return b.runner.Run("cmake", args, scratchDir, nil)
}

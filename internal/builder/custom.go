package builder

import (
	"maps"
	"strings"
)

// customBackend runs manifest-supplied command strings for each hook. The
// toolchain environment, the per-hook directories, and the configuration's
// own environment map are all exposed to the spawned command; a command
// string with no words makes the hook a no-op.
type customBackend struct {
	b *Builder
}

func (c *customBackend) configure(arch, scratchDir, installDir string) error {
	return c.run(c.b.config.Custom.Configure, scratchDir, map[string]string{
		"ARCH":        arch,
		"SCRATCH_DIR": scratchDir,
		"INSTALL_DIR": installDir,
	})
}

func (c *customBackend) make(scratchDir string) error {
	return c.run(c.b.config.Custom.Make, scratchDir, map[string]string{
		"SCRATCH_DIR": scratchDir,
	})
}

func (c *customBackend) install(scratchDir, installDir string) error {
	return c.run(c.b.config.Custom.Install, scratchDir, map[string]string{
		"SCRATCH_DIR": scratchDir,
		"INSTALL_DIR": installDir,
	})
}

func (c *customBackend) merge(_ string, inputs []ArchArtifact, dest string) error {
	return c.b.mergeArtifacts(inputs, dest)
}

func (c *customBackend) run(command, dir string, hookEnv map[string]string) error {
	words := strings.Fields(command)
	if len(words) == 0 {
		return nil
	}
	b := c.b

	env := make(map[string]string, len(b.toolchain.Env)+len(hookEnv)+len(b.config.Custom.Env))
	maps.Copy(env, b.toolchain.Env)
	maps.Copy(env, hookEnv)
	maps.Copy(env, b.config.Custom.Env)

	words = expand(words, env)
	return b.runner.Run(words[0], words[1:], dir, env)
}

package builder

import (
	"os"
	"path/filepath"
)

// ArchArtifact pairs an architecture with its per-architecture artifact
// path. The pipeline populates one per architecture and the merge step
// consumes them.
type ArchArtifact struct {
	Arch string
	Path string
}

// mergeArtifacts combines the per-architecture artifacts into one universal
// binary at dest. Input order is preserved in the lipo invocation; the
// merged result does not depend on it.
func (b *Builder) mergeArtifacts(inputs []ArchArtifact, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	args := []string{"-create"}
	for _, in := range inputs {
		args = append(args, "-arch", in.Arch, in.Path)
	}
	args = append(args, "-output", dest)

	b.log.Debug("merging universal binary", "dest", dest, "archs", len(inputs))
	return b.runner.Run("lipo", args, "", nil)
}

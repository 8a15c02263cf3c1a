package builder

import (
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/unibuild/unibuild/internal/fsutil"
)

// installMetadata copies architecture-independent artifacts from one
// architecture's install directory into destRoot. Headers are assumed
// identical across architectures, so the sourcing architecture wins.
//
// The package-scoped destination additionally receives the
// manifest-declared auxiliary files but no pkgconfig tree.
func (b *Builder) installMetadata(from, destRoot string, packageScoped bool) error {
	include := filepath.Join(from, "include")
	if fsutil.Exists(include) {
		if err := fsutil.CopyDir(include, filepath.Join(b.buildRoot, "include")); err != nil {
			return err
		}
	}

	if !packageScoped {
		if err := b.installPkgConfig(from, destRoot); err != nil {
			return err
		}
	}

	swiftmodules := filepath.Join(from, "swiftmodules")
	if fsutil.Exists(swiftmodules) {
		if err := fsutil.CopyDir(swiftmodules, filepath.Join(destRoot, "swiftmodules")); err != nil {
			return err
		}
	}

	if packageScoped {
		sources := make([]string, 0, len(b.config.AuxiliaryFiles))
		for src := range b.config.AuxiliaryFiles {
			sources = append(sources, src)
		}
		sort.Strings(sources)
		for _, src := range sources {
			dest := filepath.Join(destRoot, b.config.AuxiliaryFiles[src])
			if err := fsutil.CopyPath(filepath.Join(b.packageRoot, src), dest); err != nil {
				return err
			}
		}
	}
	return nil
}

// installPkgConfig copies lib/pkgconfig into destRoot and rewrites the
// per-architecture install prefix embedded in each descriptor. The rewrite
// is a literal text substitution: pkgconfig files embed build-machine-local
// paths that are meaningless after relocation.
func (b *Builder) installPkgConfig(from, destRoot string) error {
	src := filepath.Join(from, "lib", "pkgconfig")
	if !fsutil.Exists(src) {
		return nil
	}
	dest := filepath.Join(destRoot, "lib", "pkgconfig")
	if err := fsutil.CopyDir(src, dest); err != nil {
		return err
	}

	return filepath.WalkDir(dest, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		return fsutil.ReplaceInFile(path, from, destRoot)
	})
}

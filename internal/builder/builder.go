// Package builder orchestrates building one native-library package for
// multiple target architectures with interchangeable build-tool backends,
// merges the per-architecture artifacts into universal binaries, and stages
// headers and link metadata into a shared build root.
package builder

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"golang.org/x/mod/module"

	"github.com/unibuild/unibuild/internal/env"
	"github.com/unibuild/unibuild/internal/executor"
	"github.com/unibuild/unibuild/internal/manifest"
	"github.com/unibuild/unibuild/internal/sourcemap"
	"github.com/unibuild/unibuild/internal/toolchain"
)

// Builder builds one package. Instances are single-use: one per package
// build, never reused.
type Builder struct {
	packageName string
	packageRoot string // the consuming repository
	sourceRoot  string // the library's source checkout; may differ from packageRoot
	buildRoot   string // shared output root across all packages
	products    string // scratch root for per-architecture work
	config      *manifest.BuildConfiguration
	inputs      env.Inputs
	toolchain   *toolchain.Context
	runner      executor.Runner
	backend     backend
	log         *slog.Logger
}

// Options carries the collaborators and roots the factory needs.
type Options struct {
	PackageRoot string
	BuildRoot   string
	Sources     sourcemap.Map
	Inputs      env.Inputs
	Discovery   toolchain.Discovery
	Runner      executor.Runner
	Logger      *slog.Logger
}

// New builds a Builder for the package, resolving its source root and
// toolchain and selecting the backend matching the declared kind.
//
// A package with no build configuration is a dependency anchor: New returns
// (nil, nil) and there is nothing to build. A declared source location that
// the source map cannot resolve is a configuration error; it fails here,
// before any external process runs.
func New(pkg *manifest.Package, opts Options) (*Builder, error) {
	cfg := pkg.Build
	if cfg == nil {
		return nil, nil
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	sourceRoot := opts.PackageRoot
	if cfg.Source != "" {
		if err := module.CheckPath(cfg.Source); err != nil {
			return nil, fmt.Errorf("package %s: invalid source location %q: %w", pkg.Name, cfg.Source, err)
		}
		dir, ok := opts.Sources.Resolve(cfg.Source)
		if !ok {
			return nil, fmt.Errorf("package %s: %w: %s", pkg.Name, ErrUnresolvedSource, cfg.Source)
		}
		sourceRoot = dir
	}

	tc, err := toolchain.NewContext(opts.Inputs, opts.Discovery)
	if err != nil {
		return nil, fmt.Errorf("package %s: %w", pkg.Name, err)
	}

	products := opts.Inputs.ScratchDir
	if products == "" {
		products = filepath.Join(opts.BuildRoot, "products", filepath.Base(sourceRoot))
	}

	b := &Builder{
		packageName: pkg.Name,
		packageRoot: opts.PackageRoot,
		sourceRoot:  sourceRoot,
		buildRoot:   opts.BuildRoot,
		products:    products,
		config:      cfg,
		inputs:      opts.Inputs,
		toolchain:   tc,
		runner:      opts.Runner,
		log:         logger,
	}

	switch cfg.Kind {
	case manifest.KindMake:
		b.backend = &makeBackend{b: b}
	case manifest.KindCMake:
		b.backend = &cmakeBackend{makeBackend{b: b}}
	case manifest.KindXcode:
		b.backend = &xcodeBackend{b: b}
	case manifest.KindCustom:
		if cfg.Custom == nil {
			return nil, fmt.Errorf("package %s: custom backend declared without commands", pkg.Name)
		}
		b.backend = &customBackend{b: b}
	default:
		return nil, fmt.Errorf("package %s: %w: %q", pkg.Name, ErrUnknownKind, cfg.Kind)
	}
	return b, nil
}

// backend is the closed set of build-tool variants. The unexported methods
// seal the interface; the kind switch in New is the only place variants are
// constructed, so a kind without a backend cannot slip through silently.
type backend interface {
	// configure prepares the architecture's build in scratchDir, targeting
	// installDir as the install prefix.
	configure(arch, scratchDir, installDir string) error

	// make drives the wrapped build tool in scratchDir.
	make(scratchDir string) error

	// install stages the built artifacts from scratchDir into installDir.
	install(scratchDir, installDir string) error

	// merge combines the per-architecture artifacts for one declared
	// output into a universal binary at dest.
	merge(output string, inputs []ArchArtifact, dest string) error
}

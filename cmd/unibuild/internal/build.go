package internal

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/unibuild/unibuild/internal/builder"
	"github.com/unibuild/unibuild/internal/env"
	"github.com/unibuild/unibuild/internal/executor"
	"github.com/unibuild/unibuild/internal/manifest"
	"github.com/unibuild/unibuild/internal/sourcemap"
	"github.com/unibuild/unibuild/internal/toolchain"
)

var (
	buildRoot    string
	buildSources string
	buildEnvFile string
	buildVerbose bool
)

var buildCmd = &cobra.Command{
	Use:   "build [manifest]",
	Short: "Build the package described by a manifest",
	Long: `Build compiles one native-library package for every target architecture,
merges the artifacts into universal binaries, and stages headers and link
metadata into the shared build root.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringVar(&buildRoot, "build-root", "", "Shared build root (defaults to the user cache)")
	buildCmd.Flags().StringVar(&buildSources, "sources", "", "Checkouts directory for dependency sources (defaults to <build-root>/checkouts)")
	buildCmd.Flags().StringVar(&buildEnvFile, "env-file", "", "Load environment variables from this file first")
	buildCmd.Flags().BoolVarP(&buildVerbose, "verbose", "v", false, "Enable verbose build output")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	if buildEnvFile != "" {
		if err := godotenv.Load(buildEnvFile); err != nil {
			return fmt.Errorf("failed to load env file: %w", err)
		}
	}

	manifestPath := "unibuild.yaml"
	if len(args) == 1 {
		manifestPath = args[0]
	}
	pkg, err := manifest.Parse(manifestPath, nil)
	if err != nil {
		return fmt.Errorf("failed to parse manifest: %w", err)
	}
	packageRoot, err := filepath.Abs(filepath.Dir(manifestPath))
	if err != nil {
		return err
	}

	root := buildRoot
	if root == "" {
		root, err = env.WorkDir()
		if err != nil {
			return err
		}
	}
	sources := buildSources
	if sources == "" {
		sources = filepath.Join(root, "checkouts")
	}

	level := slog.LevelInfo
	if buildVerbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	logger = logger.With("run", uuid.NewString())

	runner := &executor.ExecRunner{}
	b, err := builder.New(pkg, builder.Options{
		PackageRoot: packageRoot,
		BuildRoot:   root,
		Sources:     sourcemap.Dir{Root: sources},
		Inputs:      env.FromProcess(),
		Discovery:   &toolchain.Xcrun{Runner: runner},
		Runner:      runner,
		Logger:      logger,
	})
	if err != nil {
		return err
	}
	if b == nil {
		logger.Info("package has no build configuration, nothing to build", "package", pkg.Name)
		return nil
	}
	return b.Build()
}

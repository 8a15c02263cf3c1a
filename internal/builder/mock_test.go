package builder

import (
	"io"
	"log/slog"
	"testing"

	"github.com/unibuild/unibuild/internal/env"
	"github.com/unibuild/unibuild/internal/manifest"
	"github.com/unibuild/unibuild/internal/sourcemap"
)

type call struct {
	name string
	args []string
	dir  string
	env  map[string]string
}

// fakeRunner records every invocation and never spawns a process.
type fakeRunner struct {
	calls []call
	fail  func(name string, args []string) error
}

func (r *fakeRunner) Run(name string, args []string, dir string, env map[string]string) error {
	r.calls = append(r.calls, call{name: name, args: args, dir: dir, env: env})
	if r.fail != nil {
		return r.fail(name, args)
	}
	return nil
}

func (r *fakeRunner) Output(name string, args []string, dir string, env map[string]string) (string, error) {
	r.calls = append(r.calls, call{name: name, args: args, dir: dir, env: env})
	return "", nil
}

// named returns the recorded calls whose command name matches.
func (r *fakeRunner) named(name string) []call {
	var out []call
	for _, c := range r.calls {
		if c.name == name {
			out = append(out, c)
		}
	}
	return out
}

// fakeDiscovery returns fixed tool and SDK paths and counts lookups.
type fakeDiscovery struct {
	lookups int
}

func (d *fakeDiscovery) FindTool(_, name string) (string, error) {
	d.lookups++
	return "/toolchain/" + name, nil
}

func (d *fakeDiscovery) SDKPath(platform string) (string, error) {
	d.lookups++
	return "/sdk/" + platform, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testPackage(kind manifest.Kind, outputs ...string) *manifest.Package {
	return &manifest.Package{
		Name: "libfoo",
		Build: &manifest.BuildConfiguration{
			Kind:    kind,
			Outputs: outputs,
		},
	}
}

// testOptions wires a builder against temp roots, a fake runner, and fixed
// toolchain discovery.
func testOptions(t *testing.T, runner *fakeRunner, archs ...string) Options {
	t.Helper()
	return Options{
		PackageRoot: t.TempDir(),
		BuildRoot:   t.TempDir(),
		Sources:     sourcemap.Static{},
		Inputs:      env.Inputs{Archs: archs, ScratchDir: t.TempDir()},
		Discovery:   &fakeDiscovery{},
		Runner:      runner,
		Logger:      discardLogger(),
	}
}

func mustNew(t *testing.T, pkg *manifest.Package, opts Options) *Builder {
	t.Helper()
	b, err := New(pkg, opts)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if b == nil {
		t.Fatal("New() returned nil builder")
	}
	return b
}

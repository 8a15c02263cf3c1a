package builder

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/unibuild/unibuild/internal/manifest"
	"github.com/unibuild/unibuild/internal/toolchain"
)

// plantArtifact creates a declared output under an architecture's install
// directory so the resumability check sees it as built.
func plantArtifact(t *testing.T, b *Builder, arch, output string) string {
	t.Helper()
	path := artifactPath(filepath.Join(b.products, arch, "build"), output)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(arch), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBuildNoDeclaredOutputs(t *testing.T) {
	runner := &fakeRunner{}
	pkg := testPackage(manifest.KindMake) // no outputs
	b := mustNew(t, pkg, testOptions(t, runner, "arm64"))

	if err := b.Build(); err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if len(runner.calls) != 0 {
		t.Errorf("Build() made %d external calls, want 0", len(runner.calls))
	}
}

func TestBuildMakeEndToEnd(t *testing.T) {
	runner := &fakeRunner{}
	pkg := testPackage(manifest.KindMake, "libfoo.a")
	opts := testOptions(t, runner, "arm64")
	b := mustNew(t, pkg, opts)

	if err := b.Build(); err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	// One configure, one make, one make install, then two merges.
	if len(runner.calls) != 5 {
		t.Fatalf("Build() made %d calls, want 5: %+v", len(runner.calls), runner.calls)
	}
	configure := runner.calls[0]
	if filepath.Base(configure.name) != "configure" {
		t.Errorf("first call = %q, want the configure script", configure.name)
	}
	if !strings.HasPrefix(configure.name, b.sourceRoot) {
		t.Errorf("configure script %q not under source root %q", configure.name, b.sourceRoot)
	}
	makes := runner.named("make")
	if len(makes) != 2 {
		t.Fatalf("make invoked %d times, want 2", len(makes))
	}
	if !strings.HasPrefix(makes[0].args[0], "--jobs=") {
		t.Errorf("make args = %v, want a parallelism flag", makes[0].args)
	}
	if !reflect.DeepEqual(makes[1].args, []string{"install"}) {
		t.Errorf("install args = %v, want [install]", makes[1].args)
	}

	lipos := runner.named("lipo")
	if len(lipos) != 2 {
		t.Fatalf("lipo invoked %d times, want 2", len(lipos))
	}
	wantShared := filepath.Join(b.buildRoot, "libfoo.a")
	wantScoped := filepath.Join(b.buildRoot, "libfoo", "libfoo.a")
	if got := lipos[0].args[len(lipos[0].args)-1]; got != wantShared {
		t.Errorf("first merge output = %q, want %q", got, wantShared)
	}
	if got := lipos[1].args[len(lipos[1].args)-1]; got != wantScoped {
		t.Errorf("second merge output = %q, want %q", got, wantScoped)
	}
}

func TestBuildSkipsBuiltArchitecture(t *testing.T) {
	runner := &fakeRunner{}
	pkg := testPackage(manifest.KindMake, "libfoo.a")
	b := mustNew(t, pkg, testOptions(t, runner, "arm64", "x86_64"))

	plantArtifact(t, b, "arm64", "libfoo.a")

	if err := b.Build(); err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	// arm64 is already built: exactly one configure/make/install sequence
	// runs, for x86_64 only. The merges still run for both architectures.
	var configures []call
	for _, c := range runner.calls {
		if filepath.Base(c.name) == "configure" {
			configures = append(configures, c)
		}
	}
	if len(configures) != 1 {
		t.Fatalf("configure ran %d times, want 1", len(configures))
	}
	found := false
	for _, a := range configures[0].args {
		if strings.HasPrefix(a, "--host=x86_64") {
			found = true
		}
	}
	if !found {
		t.Errorf("configure args %v missing --host=x86_64", configures[0].args)
	}
	if got := len(runner.named("make")); got != 2 {
		t.Errorf("make ran %d times, want 2 (one arch only)", got)
	}
	if got := len(runner.named("lipo")); got != 2 {
		t.Errorf("lipo ran %d times, want 2", got)
	}
}

func TestBuildFullySkippedStillMerges(t *testing.T) {
	runner := &fakeRunner{}
	pkg := testPackage(manifest.KindMake, "libfoo.a")
	b := mustNew(t, pkg, testOptions(t, runner, "arm64", "x86_64"))

	p1 := plantArtifact(t, b, "arm64", "libfoo.a")
	p2 := plantArtifact(t, b, "x86_64", "libfoo.a")

	if err := b.Build(); err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	lipos := runner.named("lipo")
	if len(runner.calls) != len(lipos) {
		t.Errorf("non-merge calls ran for fully built package: %+v", runner.calls)
	}
	if len(lipos) != 2 {
		t.Fatalf("lipo invoked %d times, want 2", len(lipos))
	}
	want := []string{"-create", "-arch", "arm64", p1, "-arch", "x86_64", p2, "-output", filepath.Join(b.buildRoot, "libfoo.a")}
	if !reflect.DeepEqual(lipos[0].args, want) {
		t.Errorf("lipo args = %v, want %v", lipos[0].args, want)
	}
}

func TestBuildZeroArchitecturesNoMerge(t *testing.T) {
	runner := &fakeRunner{}
	b := &Builder{
		packageName: "libfoo",
		buildRoot:   t.TempDir(),
		products:    t.TempDir(),
		config:      &manifest.BuildConfiguration{Kind: manifest.KindMake, Outputs: []string{"libfoo.a"}},
		toolchain:   &toolchain.Context{Archs: nil},
		runner:      runner,
		log:         discardLogger(),
	}
	b.backend = &makeBackend{b: b}

	if err := b.Build(); err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if got := len(runner.named("lipo")); got != 0 {
		t.Errorf("lipo invoked %d times with zero architectures, want 0", got)
	}
}

func TestBuildAbortsOnHookFailure(t *testing.T) {
	failure := errors.New("configure: exit status 77")
	runner := &fakeRunner{
		fail: func(name string, args []string) error {
			if filepath.Base(name) == "configure" {
				return failure
			}
			return nil
		},
	}
	pkg := testPackage(manifest.KindMake, "libfoo.a")
	b := mustNew(t, pkg, testOptions(t, runner, "arm64", "x86_64"))

	err := b.Build()
	if !errors.Is(err, failure) {
		t.Fatalf("Build() error = %v, want the configure failure", err)
	}
	for _, want := range []string{"libfoo", "arm64", "configure"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %q context", err, want)
		}
	}
	// No continuation into the second architecture, no merges.
	if got := len(runner.calls); got != 1 {
		t.Errorf("Build() made %d calls after the failure, want 1", got)
	}
}

func TestBuildArchSpecificArgsPrecedeGeneric(t *testing.T) {
	runner := &fakeRunner{}
	pkg := testPackage(manifest.KindMake, "libfoo.a")
	pkg.Build.Args = []string{"--generic"}
	pkg.Build.ArchArgs = map[string]map[string][]string{
		"macosx": {"arm64": {"--arch-specific"}},
	}
	b := mustNew(t, pkg, testOptions(t, runner, "arm64"))

	if err := b.Build(); err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	args := runner.calls[0].args
	if args[0] != "--arch-specific" || args[1] != "--generic" {
		t.Errorf("configure args = %v, want arch-specific ahead of generic", args)
	}
}

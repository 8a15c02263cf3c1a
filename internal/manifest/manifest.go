// Package manifest defines the package descriptor and build configuration
// consumed by the builder.
package manifest

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Kind selects the build-tool backend driving a package's build.
type Kind string

const (
	KindMake   Kind = "make"
	KindCMake  Kind = "cmake"
	KindXcode  Kind = "xcode"
	KindCustom Kind = "custom"
)

// UnmarshalYAML rejects kinds with no matching backend at parse time.
func (k *Kind) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	switch Kind(s) {
	case KindMake, KindCMake, KindXcode, KindCustom:
		*k = Kind(s)
		return nil
	}
	return fmt.Errorf("unknown build kind %q", s)
}

// CustomCommands supplies the three lifecycle commands for the custom
// backend, plus extra environment merged into each invocation.
type CustomCommands struct {
	Configure string            `yaml:"configure,omitempty"`
	Make      string            `yaml:"make,omitempty"`
	Install   string            `yaml:"install,omitempty"`
	Env       map[string]string `yaml:"env,omitempty"`
}

// BuildConfiguration describes how one package's native library is built.
// All fields except Kind are optional.
type BuildConfiguration struct {
	Kind           Kind                           `yaml:"kind"`
	Source         string                         `yaml:"source,omitempty"`         // external source location, resolved via the source map
	Args           []string                       `yaml:"args,omitempty"`           // generic backend arguments
	ArchArgs       map[string]map[string][]string `yaml:"archArgs,omitempty"`       // platform -> architecture -> arguments
	InstallCommand string                         `yaml:"installCommand,omitempty"` // overrides the make install target
	Outputs        []string                       `yaml:"outputs,omitempty"`        // declared artifact names
	AuxiliaryFiles map[string]string              `yaml:"auxiliaryFiles,omitempty"` // package-root-relative source -> destination-relative path
	Custom         *CustomCommands                `yaml:"custom,omitempty"`
}

// ArgsFor returns the argument overrides declared for the given platform
// and architecture, or nil.
func (c *BuildConfiguration) ArgsFor(platform, arch string) []string {
	if c.ArchArgs == nil {
		return nil
	}
	return c.ArchArgs[platform][arch]
}

// Package is the manifest entry for one package. A nil Build means the
// package exists purely as a dependency anchor and there is nothing to
// build.
type Package struct {
	Name  string              `yaml:"name"`
	Build *BuildConfiguration `yaml:"build,omitempty"`
}

// Parse reads and parses a package manifest from either provided data or a
// file path. If data is non-nil, it is used directly and the file parameter
// is ignored.
func Parse(file string, data []byte) (*Package, error) {
	var reader io.Reader

	if data != nil {
		reader = bytes.NewBuffer(data)
	} else {
		f, err := os.Open(file)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		reader = f
	}

	var p Package

	dec := yaml.NewDecoder(reader)
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return nil, err
	}
	if p.Name == "" {
		return nil, fmt.Errorf("manifest: missing package name")
	}

	return &p, nil
}

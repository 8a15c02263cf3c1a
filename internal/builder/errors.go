package builder

import "errors"

// All build failures are fatal to the current package's build; a partially
// built library is unsafe to link against.
var (
	// ErrUnresolvedSource marks a declared source location with no local
	// checkout in the source map.
	ErrUnresolvedSource = errors.New("source location not checked out")

	// ErrUnknownKind marks a build configuration whose kind has no
	// matching backend.
	ErrUnknownKind = errors.New("unknown build kind")

	// ErrNoArtifact marks a declared output missing from the build
	// products directory.
	ErrNoArtifact = errors.New("missing build artifact")
)

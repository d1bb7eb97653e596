package configure

import "errors"

// Sentinel errors for the configure phase. These enable reliable error
// checking with errors.Is()
var (
	// ErrInvalidVersion indicates the target version string is not a
	// valid semantic version
	ErrInvalidVersion = errors.New("invalid version number")

	// ErrUnresolvedToolchain indicates the interpreter or Windows
	// toolchain could not be located
	ErrUnresolvedToolchain = errors.New("toolchain not found")

	// ErrMissingPlatformArtifact indicates a platform-mandated file
	// (exports file, zoslib headers) is absent
	ErrMissingPlatformArtifact = errors.New("required platform artifact not found")
)

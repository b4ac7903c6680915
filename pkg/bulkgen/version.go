package bulkgen

import (
	"fmt"

	"golang.org/x/mod/semver"
)

// Version is the version of the bulkgen binary.
const Version = "v0.3.0"

// ManifestFormatVersion is written into every run manifest.
const ManifestFormatVersion = "v1.1.0"

// IsCompatibleVersion checks if a manifest written with found can be read by
// a binary that writes current.
// Compatibility rules:
// - Major version must match exactly.
// - Minor and patch versions can differ.
func IsCompatibleVersion(found, current string) (bool, error) {
	if !semver.IsValid(found) {
		return false, fmt.Errorf("invalid manifest version: %s", found)
	}
	if !semver.IsValid(current) {
		return false, fmt.Errorf("invalid current version: %s", current)
	}

	return semver.Major(found) == semver.Major(current), nil
}

// CompatibilityError returns a user-friendly message for incompatible versions.
func CompatibilityError(found, current string) error {
	return fmt.Errorf(
		"%w: manifest format %s cannot be read by this build (requires %s.x.x)",
		ErrIncompatibleManifest, found, semver.Major(current),
	)
}

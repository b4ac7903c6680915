package bulkgen

import "errors"

// Sentinel errors for common error conditions
var (
	// Configuration errors
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrUnknownTable  = errors.New("unknown table")

	// Output errors
	ErrCreateOutputDir = errors.New("cannot create output directory")
	ErrWriteTable      = errors.New("cannot write table")

	// Manifest errors
	ErrManifest              = errors.New("manifest error")
	ErrManifestNotFound      = errors.New("manifest not found")
	ErrIncompatibleManifest  = errors.New("incompatible manifest version")
	ErrInvalidManifestRecord = errors.New("invalid manifest record")
)

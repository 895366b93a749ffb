package export

import "errors"

// Sentinel errors for export operations.
var (
	// ErrUnsupportedFormat indicates an unknown export format was requested.
	ErrUnsupportedFormat = errors.New("export: unsupported format")
)

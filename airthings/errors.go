package airthings

import "github.com/pkg/errors"

// Error taxonomy. Callers classify with errors.Cause.
var (
	// ErrDeviceNotFound means the scan window closed without a
	// matching advertisement.
	ErrDeviceNotFound = errors.New("device not found")

	// ErrConnect means all attempts to establish the link failed.
	ErrConnect = errors.New("connect retries exhausted")

	// ErrRead means a characteristic read failed even after the
	// single reconnect the connection manager allows itself.
	ErrRead = errors.New("characteristic read failed")

	// ErrReadTimeout means a characteristic read did not complete
	// within the configured read timeout.
	ErrReadTimeout = errors.New("characteristic read timed out")

	// ErrUnsupportedFormat means the payload version byte did not
	// match the layout this program knows how to decode.
	ErrUnsupportedFormat = errors.New("unsupported payload format")
)

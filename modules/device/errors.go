package device

import "errors"

var (
	// ErrQuotaExceeded is returned when registering a device would push
	// the tenant past its MaxDevices limit.
	ErrQuotaExceeded = errors.New("device quota exceeded")

	// ErrDuplicateSerial is returned when the tenant already has a
	// device with the same serial number.
	ErrDuplicateSerial = errors.New("duplicate device serial number")

	// ErrMissingSerial is returned when a registration omits the serial number.
	ErrMissingSerial = errors.New("device serial number is required")
)

package device

import "errors"

var (
	// ErrNoDevice is returned when a device index is out of range.
	ErrNoDevice = errors.New("device: no such device")

	// ErrDeviceBusy is returned when every device is already reserved by a
	// live context.
	ErrDeviceBusy = errors.New("device: all devices reserved")

	// ErrContextClosed is returned for operations on a closed context.
	ErrContextClosed = errors.New("device: context closed")

	// ErrInvalidLength is returned for negative buffer lengths.
	ErrInvalidLength = errors.New("device: invalid buffer length")

	// ErrLengthMismatch is returned when a host slice does not match the
	// buffer length exactly.
	ErrLengthMismatch = errors.New("device: host slice length does not match buffer")

	// ErrBadWorkSize is returned when a launch has no global work sizes, more
	// than two dimensions, or a non-positive dimension.
	ErrBadWorkSize = errors.New("device: bad global work size")

	// ErrBadArgCount is returned when a launch binds the wrong number of
	// buffer arguments for its kernel.
	ErrBadArgCount = errors.New("device: kernel argument count mismatch")

	// ErrNotProfiled is returned when profiling data is requested from an
	// event whose queue had profiling disabled.
	ErrNotProfiled = errors.New("device: event was not profiled")
)

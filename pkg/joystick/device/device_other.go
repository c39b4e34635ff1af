//go:build !linux

package device

// Open is only supported on Linux.
func Open(index int) (Device, error) {
	return nil, ErrUnsupported
}

// DetectAndOpen is only supported on Linux.
func DetectAndOpen(startIndex int) (Device, error) {
	return nil, ErrUnsupported
}

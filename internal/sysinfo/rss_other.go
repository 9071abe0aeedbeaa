//go:build !linux && !darwin

package sysinfo

// PeakRSS returns ErrUnsupported.
func PeakRSS() (int64, error) {
	return 0, ErrUnsupported
}

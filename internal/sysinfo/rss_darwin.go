//go:build darwin

package sysinfo

import "golang.org/x/sys/unix"

// PeakRSS returns the peak resident set size of the process in bytes.
func PeakRSS() (int64, error) {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		return 0, err
	}
	return int64(ru.Maxrss), nil
}

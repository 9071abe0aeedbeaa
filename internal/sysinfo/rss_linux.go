//go:build linux

package sysinfo

import "golang.org/x/sys/unix"

// PeakRSS returns the peak resident set size of the process in bytes.
func PeakRSS() (int64, error) {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		return 0, err
	}
	// Linux reports kilobytes.
	return int64(ru.Maxrss) * 1024, nil
}

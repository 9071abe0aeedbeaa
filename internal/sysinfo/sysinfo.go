// Package sysinfo reads process resource figures for run reports.
package sysinfo

import "errors"

// ErrUnsupported is returned on platforms without a peak RSS source.
var ErrUnsupported = errors.New("sysinfo: not supported on this platform")

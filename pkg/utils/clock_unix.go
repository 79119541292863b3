// pkg/utils/clock_unix.go

package utils

import "time"

var started = time.Now()

// Clock returns the time elapsed since the process started. It is
// monotonic, so deltas between two calls are safe to use for
// measuring durations even if the wall clock jumps.
func Clock() time.Duration {
	return time.Since(started)
}

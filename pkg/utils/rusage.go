// pkg/utils/rusage.go

package utils

import "syscall"

// CPUUsage reports the user and system CPU time consumed by this
// process so far, in seconds.
func CPUUsage() (user, system float64) {
	var ru syscall.Rusage
	_ = syscall.Getrusage(syscall.RUSAGE_SELF, &ru)
	user = float64(ru.Utime.Sec) + float64(ru.Utime.Usec)/1e6
	system = float64(ru.Stime.Sec) + float64(ru.Stime.Usec)/1e6
	return user, system
}

package health

import (
	"fmt"
	"os"
	"runtime"
	"sync/atomic"
)

// WritableDirCheck reports whether records can still be saved into dir.
// Saves go through a temporary file next to the record, so the directory
// itself must accept new files.
func WritableDirCheck(dir string) CheckFunc {
	return func() Check {
		check := Check{
			Name:    "record_dir",
			Details: map[string]any{"dir": dir},
		}

		info, err := os.Stat(dir)
		if err != nil {
			check.Status = StatusUnhealthy
			check.Message = err.Error()
			return check
		}
		if !info.IsDir() {
			check.Status = StatusUnhealthy
			check.Message = "not a directory"
			return check
		}

		f, err := os.CreateTemp(dir, ".health-*")
		if err != nil {
			check.Status = StatusUnhealthy
			check.Message = err.Error()
			return check
		}
		f.Close()
		os.Remove(f.Name())

		check.Status = StatusHealthy
		check.Message = "Writable"
		return check
	}
}

// DroppedCheck degrades while a notify bus keeps dropping changes for slow
// subscribers. It compares against the count seen by the previous run.
func DroppedCheck(dropped func() uint64) CheckFunc {
	var last atomic.Uint64
	return func() Check {
		check := Check{
			Name:    "notify",
			Details: make(map[string]any),
		}

		now := dropped()
		prev := last.Swap(now)
		check.Details["dropped_total"] = now

		if now > prev {
			check.Status = StatusDegraded
			check.Message = fmt.Sprintf("%d changes dropped since last check", now-prev)
		} else {
			check.Status = StatusHealthy
			check.Message = "Subscribers keeping up"
		}
		return check
	}
}

// MemoryCheck degrades when the heap nears the memory obtained from the OS
func MemoryCheck(getUsage func() (alloc, sys uint64)) CheckFunc {
	return func() Check {
		check := Check{
			Name:    "memory",
			Details: make(map[string]any),
		}

		alloc, sys := getUsage()

		check.Details["alloc_bytes"] = alloc
		check.Details["sys_bytes"] = sys

		usagePercent := 0.0
		if sys > 0 {
			usagePercent = float64(alloc) / float64(sys) * 100
		}

		if usagePercent > 90 {
			check.Status = StatusDegraded
			check.Message = "High memory usage"
		} else {
			check.Status = StatusHealthy
			check.Message = "Memory usage normal"
		}

		return check
	}
}

// RuntimeMemory reads heap and system memory from the Go runtime
func RuntimeMemory() (alloc, sys uint64) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.Alloc, m.Sys
}

package infrastructure

import (
	"runtime"
	"time"
)

// RuntimeStats is a snapshot of Go runtime statistics for health reports.
type RuntimeStats struct {
	GoRoutines  int
	HeapAlloc   uint64
	HeapSys     uint64
	GCCount     uint32
	LastGCPause time.Duration
	CPUCount    int
	GoVersion   string
	Uptime      time.Duration
	Timestamp   time.Time
}

// CollectRuntimeStats reads the current runtime statistics. Uptime is
// measured from startTime.
func CollectRuntimeStats(startTime time.Time) RuntimeStats {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return RuntimeStats{
		GoRoutines:  runtime.NumGoroutine(),
		HeapAlloc:   mem.HeapAlloc,
		HeapSys:     mem.HeapSys,
		GCCount:     mem.NumGC,
		LastGCPause: time.Duration(mem.PauseNs[(mem.NumGC+255)%256]),
		CPUCount:    runtime.NumCPU(),
		GoVersion:   runtime.Version(),
		Uptime:      time.Since(startTime),
		Timestamp:   time.Now(),
	}
}

// FormatStats returns the snapshot as a JSON-friendly map.
func (s RuntimeStats) FormatStats() map[string]interface{} {
	return map[string]interface{}{
		"goroutines":       s.GoRoutines,
		"heap_alloc_mb":    s.HeapAlloc / 1024 / 1024,
		"heap_sys_mb":      s.HeapSys / 1024 / 1024,
		"gc_count":         s.GCCount,
		"last_gc_pause_ms": s.LastGCPause.Milliseconds(),
		"cpu_count":        s.CPUCount,
		"go_version":       s.GoVersion,
		"uptime_seconds":   s.Uptime.Seconds(),
		"timestamp":        s.Timestamp.Format(time.RFC3339),
	}
}

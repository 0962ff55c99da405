// system.go captures process state at report time.

package errhandler

import (
	"os"
	"runtime"
	"time"
)

// SystemState captures process metrics at the time of a report.
type SystemState struct {
	// MemoryBytes is the current heap allocation in bytes.
	MemoryBytes int64

	// GoroutineCount is the number of active goroutines.
	GoroutineCount int

	// UptimeMs is the process uptime in milliseconds.
	UptimeMs int64

	// HostName is the hostname of the machine where the error occurred.
	HostName string
}

// CaptureSystemState captures system metrics at the current moment.
// The startTime parameter is used to calculate process uptime.
func CaptureSystemState(startTime time.Time) *SystemState {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	hostname, _ := os.Hostname() // empty hostname is acceptable

	uptimeMs := time.Since(startTime).Milliseconds()
	if uptimeMs < 0 {
		uptimeMs = 0
	}

	return &SystemState{
		MemoryBytes:    int64(memStats.Alloc),
		GoroutineCount: runtime.NumGoroutine(),
		UptimeMs:       uptimeMs,
		HostName:       hostname,
	}
}

// Context renders the state as a report context.
func (s *SystemState) Context() map[string]any {
	return map[string]any{
		"memory_bytes":    s.MemoryBytes,
		"goroutine_count": s.GoroutineCount,
		"uptime_ms":       s.UptimeMs,
		"host_name":       s.HostName,
	}
}

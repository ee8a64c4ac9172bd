package health

import (
	"context"
	"runtime"
	"time"
)

// GraphLoadedCheck is unhealthy until the first graph has been loaded.
func GraphLoadedCheck(loaded func() bool) CheckFunc {
	return func() Check {
		if !loaded() {
			return Check{Name: "graph", Status: StatusUnhealthy, Message: "Graph not loaded yet"}
		}
		return Check{Name: "graph", Status: StatusHealthy, Message: "Graph loaded"}
	}
}

// RefreshAgeCheck degrades when the last successful load is older than
// maxAge. A zero maxAge disables the age limit.
func RefreshAgeCheck(lastLoad func() time.Time, maxAge time.Duration) CheckFunc {
	return func() Check {
		check := Check{Name: "refresh", Details: make(map[string]any)}

		at := lastLoad()
		if at.IsZero() {
			check.Status = StatusDegraded
			check.Message = "No successful refresh"
			return check
		}

		age := time.Since(at)
		check.Details["last_refresh"] = at
		check.Details["age_seconds"] = age.Seconds()

		if maxAge > 0 && age > maxAge {
			check.Status = StatusDegraded
			check.Message = "Data is stale"
		} else {
			check.Status = StatusHealthy
			check.Message = "Data is fresh"
		}
		return check
	}
}

// EventLoopCheck pings the event loop and fails when it does not answer
// within timeout.
func EventLoopCheck(ping func(context.Context) error, timeout time.Duration) CheckFunc {
	return func() Check {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := ping(ctx); err != nil {
			return Check{Name: "event_loop", Status: StatusUnhealthy, Message: err.Error()}
		}
		return Check{Name: "event_loop", Status: StatusHealthy, Message: "Responsive"}
	}
}

// MemoryCheck degrades when heap allocation exceeds 90% of memory obtained
// from the OS.
func MemoryCheck() CheckFunc {
	return func() Check {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)

		check := Check{
			Name: "memory",
			Details: map[string]any{
				"alloc_bytes": m.Alloc,
				"sys_bytes":   m.Sys,
				"goroutines":  runtime.NumGoroutine(),
			},
			Status:  StatusHealthy,
			Message: "Memory usage normal",
		}
		if m.Sys > 0 && float64(m.Alloc)/float64(m.Sys) > 0.9 {
			check.Status = StatusDegraded
			check.Message = "High memory usage"
		}
		return check
	}
}

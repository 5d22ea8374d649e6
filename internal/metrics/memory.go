package metrics

import (
	"runtime"

	"github.com/agbru/fanout/internal/logging"
)

// MemorySnapshot holds a point-in-time memory reading.
type MemorySnapshot struct {
	HeapAlloc  uint64 // bytes in use by the process
	Sys        uint64 // total bytes obtained from the OS
	NumGC      uint32
	Goroutines int
}

// MemoryCollector reads runtime memory statistics.
type MemoryCollector struct{}

// NewMemoryCollector creates a new memory collector.
func NewMemoryCollector() *MemoryCollector {
	return &MemoryCollector{}
}

// Snapshot reads current memory statistics and the live goroutine count.
func (mc *MemoryCollector) Snapshot() MemorySnapshot {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return MemorySnapshot{
		HeapAlloc:  m.HeapAlloc,
		Sys:        m.Sys,
		NumGC:      m.NumGC,
		Goroutines: runtime.NumGoroutine(),
	}
}

// Fields renders the snapshot as structured log fields.
func (s MemorySnapshot) Fields() []logging.Field {
	return []logging.Field{
		logging.Uint64("heap_alloc_bytes", s.HeapAlloc),
		logging.Uint64("sys_bytes", s.Sys),
		logging.Int("num_gc", int(s.NumGC)),
		logging.Int("goroutines", s.Goroutines),
	}
}

package app

import (
	"runtime"

	"go.uber.org/zap"
)

// memProfile collects garbage and logs heap figures when memory
// profiling is on.
func (s *Service) memProfile(stage string) {
	if !s.overrides.MemProfiling {
		return
	}
	runtime.GC()
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	fields := []zap.Field{
		zap.String("stage", stage),
		zap.Uint64("heap_alloc", m.HeapAlloc),
		zap.Uint64("heap_inuse", m.HeapInuse),
		zap.Uint64("heap_objects", m.HeapObjects),
		zap.Uint64("sys", m.Sys),
		zap.Uint32("num_gc", m.NumGC),
		zap.Int("goroutines", runtime.NumGoroutine()),
	}
	for _, st := range s.Stats() {
		fields = append(fields, zap.Int("cache_"+st.Name, st.Size))
	}
	s.logger.Info("memory profile", fields...)
}

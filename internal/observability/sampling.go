package observability

import (
	"math/rand"
	"sync/atomic"

	"go.uber.org/zap"
)

// LogSampler gates high-volume info logs (page resolutions, clicks) at a
// fixed rate and counts what it let through. A nil sampler logs everything.
type LogSampler struct {
	rate    float64
	total   atomic.Int64
	emitted atomic.Int64
}

// NewLogSampler returns a sampler emitting roughly rate of all calls.
// Rates are clamped to [0, 1].
func NewLogSampler(rate float64) *LogSampler {
	switch {
	case rate > 1:
		rate = 1
	case rate < 0:
		rate = 0
	}
	return &LogSampler{rate: rate}
}

// Sample reports whether the caller should emit its log line.
func (s *LogSampler) Sample() bool {
	if s == nil {
		return true
	}
	s.total.Add(1)
	ok := s.rate >= 1 || (s.rate > 0 && rand.Float64() < s.rate)
	if ok {
		s.emitted.Add(1)
	}
	return ok
}

// Rate returns the configured sampling rate.
func (s *LogSampler) Rate() float64 {
	if s == nil {
		return 1
	}
	return s.rate
}

// Flush logs the counts collected since the previous flush and starts a new
// window. Nothing is logged for an idle window.
func (s *LogSampler) Flush(logger *zap.Logger) {
	if s == nil {
		return
	}
	total := s.total.Swap(0)
	emitted := s.emitted.Swap(0)
	if total == 0 {
		return
	}
	logger.Info("sampling stats",
		zap.Float64("target_rate", s.rate),
		zap.Float64("actual_rate", float64(emitted)/float64(total)),
		zap.Int64("total_logs", total),
		zap.Int64("sampled_logs", emitted),
	)
}

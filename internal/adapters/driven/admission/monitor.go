// Package admission provides admission control monitors consulted by the
// engine before ingesting documents or sizing search results.
package admission

import (
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/recall/internal/core/domain"
	"github.com/custodia-labs/recall/internal/core/ports/driven"
)

// Monitor is an AdmissionMonitor that driving adapters can also charge
// requests against.
type Monitor interface {
	driven.AdmissionMonitor

	// Admit records one request and reports whether it may proceed.
	Admit() bool
}

// Ensure monitors implement the interface.
var (
	_ Monitor = Unlimited{}
	_ Monitor = (*RateMonitor)(nil)
)

// Unlimited is never overloaded and scores every query as trivial.
type Unlimited struct{}

// CognitiveOverload always returns false.
func (Unlimited) CognitiveOverload() bool { return false }

// AssessComplexity always returns 0.
func (Unlimited) AssessComplexity(string) float64 { return 0 }

// Admit always returns true.
func (Unlimited) Admit() bool { return true }

// RateMonitor tracks request load with a token bucket. Driving adapters
// call Admit for every request they accept; the engine sees overload
// once a request has been rejected and the bucket has not refilled since.
// A request that takes the last token is still served in full.
type RateMonitor struct {
	mu             sync.Mutex
	bucket         *rate.Limiter
	rejected       bool
	longQueryWords int
	now            func() time.Time
}

// NewRateMonitor creates a monitor from admission settings.
// Non-positive values fall back to the defaults.
func NewRateMonitor(cfg domain.AdmissionSettings) *RateMonitor {
	defaults := domain.DefaultSettings().Admission
	if cfg.Rate <= 0 {
		cfg.Rate = defaults.Rate
	}
	if cfg.Burst <= 0 {
		cfg.Burst = defaults.Burst
	}
	if cfg.LongQueryWords <= 0 {
		cfg.LongQueryWords = defaults.LongQueryWords
	}

	return &RateMonitor{
		bucket:         rate.NewLimiter(rate.Limit(cfg.Rate), cfg.Burst),
		longQueryWords: cfg.LongQueryWords,
		now:            time.Now,
	}
}

// Admit consumes one token and reports whether the request fits the budget.
func (m *RateMonitor) Admit() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	ok := m.bucket.AllowN(m.now(), 1)
	m.rejected = !ok
	return ok
}

// CognitiveOverload reports whether the last Admit was rejected and no
// whole token has been earned back since.
func (m *RateMonitor) CognitiveOverload() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rejected && m.bucket.TokensAt(m.now()) < 1
}

// AssessComplexity scores text by word count relative to the long query
// threshold, capped at 1.
func (m *RateMonitor) AssessComplexity(text string) float64 {
	words := len(strings.Fields(text))
	score := float64(words) / float64(m.longQueryWords)
	if score > 1 {
		return 1
	}
	return score
}

// New returns the monitor selected by settings.
func New(cfg domain.AdmissionSettings) Monitor {
	if !cfg.Enabled {
		return Unlimited{}
	}
	return NewRateMonitor(cfg)
}

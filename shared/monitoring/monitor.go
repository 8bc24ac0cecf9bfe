package monitoring

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"video-analytics/internal/apperrors"
)

// Monitor counts question outcomes and maintenance checks. Failures caused
// by the question or the upload (parse, validation, no data) are recorded
// but never make the service unhealthy; model and store failures do until
// the next success.
type Monitor struct {
	mu          sync.Mutex
	logger      *zap.Logger
	now         func() time.Time
	answered    map[string]int
	failed      map[string]int
	lastSuccess time.Time
	lastFailure time.Time
	lastErr     error
	checks      map[string]error
}

func NewMonitor(logger *zap.Logger) *Monitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		logger:   logger,
		now:      time.Now,
		answered: make(map[string]int),
		failed:   make(map[string]int),
		checks:   make(map[string]error),
	}
}

// RecordSuccess records an answered question in the given mode.
func (m *Monitor) RecordSuccess(mode string, duration time.Duration) {
	m.mu.Lock()
	m.answered[mode]++
	m.lastSuccess = m.now()
	m.lastErr = nil
	m.mu.Unlock()

	m.logger.Info("question answered", zap.String("mode", mode), zap.Duration("took", duration))
}

// RecordFailure records a failed question. The error kind decides whether
// the failure counts against health.
func (m *Monitor) RecordFailure(mode string, err error, duration time.Duration) {
	kind := KindName(err)

	m.mu.Lock()
	m.failed[kind]++
	critical := isCritical(err)
	if critical {
		m.lastFailure = m.now()
		m.lastErr = err
	}
	m.mu.Unlock()

	if critical {
		m.logger.Error("question failed",
			zap.String("mode", mode), zap.String("kind", kind), zap.Duration("took", duration), zap.Error(err))
		return
	}
	m.logger.Warn("question rejected",
		zap.String("mode", mode), zap.String("kind", kind), zap.Duration("took", duration), zap.Error(err))
}

// RecordCheck stores the latest result of a named maintenance check. A
// failing check makes the service unhealthy until it passes again.
func (m *Monitor) RecordCheck(name string, err error) {
	m.mu.Lock()
	m.checks[name] = err
	m.mu.Unlock()

	if err != nil {
		m.logger.Warn("maintenance check failed", zap.String("check", name), zap.Error(err))
		return
	}
	m.logger.Debug("maintenance check passed", zap.String("check", name))
}

func (m *Monitor) IsHealthy() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, err := range m.checks {
		if err != nil {
			return false
		}
	}
	return m.lastErr == nil
}

// Counts returns a copy of the answered-per-mode and failed-per-kind counters.
func (m *Monitor) Counts() (answered, failed map[string]int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	answered = make(map[string]int, len(m.answered))
	for k, v := range m.answered {
		answered[k] = v
	}
	failed = make(map[string]int, len(m.failed))
	for k, v := range m.failed {
		failed[k] = v
	}
	return answered, failed
}

func (m *Monitor) StatusSummary() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.answered) == 0 && len(m.failed) == 0 && len(m.checks) == 0 {
		return "No questions yet"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "answered: %s; failed: %s", formatCounts(m.answered), formatCounts(m.failed))
	if !m.lastSuccess.IsZero() {
		fmt.Fprintf(&b, "\nlast answer: %s", m.lastSuccess.Format("Jan 2 15:04"))
	}
	if m.lastErr != nil {
		fmt.Fprintf(&b, "\nlast failure: %s: %v", m.lastFailure.Format("Jan 2 15:04"), m.lastErr)
	}

	names := make([]string, 0, len(m.checks))
	for name := range m.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := m.checks[name]; err != nil {
			fmt.Fprintf(&b, "\ncheck %s: %v", name, err)
		} else {
			fmt.Fprintf(&b, "\ncheck %s: ok", name)
		}
	}
	return b.String()
}

// KindName labels err by its failure kind.
func KindName(err error) string {
	switch apperrors.KindOf(err) {
	case apperrors.ErrParse:
		return "parse"
	case apperrors.ErrValidation:
		return "validation"
	case apperrors.ErrNoData:
		return "no_data"
	case apperrors.ErrGeneration:
		return "generation"
	case apperrors.ErrMalformedResponse:
		return "malformed_response"
	case apperrors.ErrExecution:
		return "execution"
	default:
		return "other"
	}
}

func isCritical(err error) bool {
	return !errors.Is(err, apperrors.ErrParse) &&
		!errors.Is(err, apperrors.ErrValidation) &&
		!errors.Is(err, apperrors.ErrNoData)
}

func formatCounts(counts map[string]int) string {
	if len(counts) == 0 {
		return "0"
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%d", k, counts[k])
	}
	return strings.Join(parts, " ")
}

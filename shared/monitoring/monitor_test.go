package monitoring

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"

	"video-analytics/internal/apperrors"
)

func TestMonitorStartsHealthy(t *testing.T) {
	m := NewMonitor(zaptest.NewLogger(t))
	assert.True(t, m.IsHealthy())
	assert.Equal(t, "No questions yet", m.StatusSummary())
}

func TestMonitorUserErrorsKeepHealth(t *testing.T) {
	m := NewMonitor(zaptest.NewLogger(t))

	m.RecordFailure("sql", apperrors.New(apperrors.ErrValidation, "query must start with SELECT"), time.Millisecond)
	m.RecordFailure("file", apperrors.New(apperrors.ErrNoData, "no document loaded"), time.Millisecond)
	m.RecordFailure("file", apperrors.New(apperrors.ErrParse, "invalid JSON"), time.Millisecond)

	assert.True(t, m.IsHealthy())
	_, failed := m.Counts()
	assert.Equal(t, map[string]int{"validation": 1, "no_data": 1, "parse": 1}, failed)
}

func TestMonitorCriticalFailureUntilSuccess(t *testing.T) {
	m := NewMonitor(zaptest.NewLogger(t))
	m.now = func() time.Time { return time.Date(2025, 11, 28, 10, 30, 0, 0, time.UTC) }

	m.RecordFailure("sql", apperrors.Wrap(apperrors.ErrExecution, errors.New("connection refused"), "query failed"), time.Second)
	assert.False(t, m.IsHealthy())
	assert.Contains(t, m.StatusSummary(), "last failure: Nov 28 10:30")

	m.RecordSuccess("sql", time.Second)
	assert.True(t, m.IsHealthy())

	answered, failed := m.Counts()
	assert.Equal(t, map[string]int{"sql": 1}, answered)
	assert.Equal(t, map[string]int{"execution": 1}, failed)
	assert.Contains(t, m.StatusSummary(), "answered: sql=1; failed: execution=1")
}

func TestMonitorChecks(t *testing.T) {
	m := NewMonitor(zaptest.NewLogger(t))

	m.RecordCheck("store", errors.New("dial tcp: refused"))
	m.RecordCheck("cache", nil)
	assert.False(t, m.IsHealthy())
	assert.Contains(t, m.StatusSummary(), "check cache: ok\ncheck store: dial tcp: refused")

	m.RecordCheck("store", nil)
	assert.True(t, m.IsHealthy())
}

func TestKindName(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{apperrors.New(apperrors.ErrGeneration, "x"), "generation"},
		{apperrors.New(apperrors.ErrMalformedResponse, "x"), "malformed_response"},
		{apperrors.New(apperrors.ErrExecution, "x"), "execution"},
		{errors.New("boom"), "other"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, KindName(tt.err))
		})
	}
}

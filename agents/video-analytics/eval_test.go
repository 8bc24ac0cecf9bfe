package videoanalytics

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEvalCases(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eval.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`cases:
  - question: Сколько всего видео есть в системе?
    expected: "150"
    description: all videos
  - question: Сколько разных видео получали новые просмотры 27 ноября 2025?
`), 0o644))

	cases, err := LoadEvalCases(path)
	require.NoError(t, err)
	require.Len(t, cases, 2)
	assert.Equal(t, EvalCase{Question: "Сколько всего видео есть в системе?", Expected: "150", Description: "all videos"}, cases[0])
	assert.Empty(t, cases[1].Expected)
}

func TestLoadEvalCasesRejectsEmptyQuestion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eval.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cases:\n  - expected: \"1\"\n"), 0o644))

	_, err := LoadEvalCases(path)
	assert.ErrorContains(t, err, "eval case 0 has no question")
}

func TestEvaluate(t *testing.T) {
	a := newTestAgent(t, countModel, openSeededStore(t, 150), nil)

	cases := []EvalCase{
		{Question: "Сколько всего видео есть в системе?", Expected: "150"},
		{Question: "Сколько видео набрало больше 100000 просмотров?", Expected: "49"},
		{Question: "Сколько видео в системе?", Expected: "999"},
		{Question: "Сколько видео вообще?"},
	}

	report, err := a.Evaluate(context.Background(), cases, 2)
	require.NoError(t, err)
	require.Len(t, report.Results, 4)
	assert.Equal(t, 3, report.Correct)
	assert.InDelta(t, 0.75, report.Accuracy(), 1e-9)

	assert.Equal(t, "150", report.Results[2].Got)
	assert.False(t, report.Results[2].Correct)
	assert.Equal(t, cases[1], report.Results[1].Case)
}

func TestEvaluateRecordsFailures(t *testing.T) {
	a := newTestAgent(t, scriptedModel{fallback: "не знаю"}, openSeededStore(t, 1), nil)

	report, err := a.Evaluate(context.Background(), []EvalCase{{Question: "Сколько?"}}, 0)
	require.NoError(t, err)
	assert.Zero(t, report.Correct)
	assert.Error(t, report.Results[0].Err)
}

func TestEvaluateCancelled(t *testing.T) {
	a := newTestAgent(t, countModel, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.Evaluate(ctx, []EvalCase{{Question: "Сколько?"}}, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAccuracyEmpty(t *testing.T) {
	assert.Zero(t, EvalReport{}.Accuracy())
}

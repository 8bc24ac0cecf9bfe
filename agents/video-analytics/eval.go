package videoanalytics

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"video-analytics/internal/apperrors"
)

// EvalCase is one question with its expected answer. An empty Expected
// only requires the answer to be a determined integer.
type EvalCase struct {
	Question    string `yaml:"question"`
	Expected    string `yaml:"expected"`
	Description string `yaml:"description"`
}

type evalFile struct {
	Cases []EvalCase `yaml:"cases"`
}

type EvalResult struct {
	Case    EvalCase
	Got     string
	Err     error
	Correct bool
}

type EvalReport struct {
	Results []EvalResult
	Correct int
}

// Accuracy is the share of correct answers in [0, 1].
func (r EvalReport) Accuracy() float64 {
	if len(r.Results) == 0 {
		return 0
	}
	return float64(r.Correct) / float64(len(r.Results))
}

// LoadEvalCases reads a YAML file with a top-level "cases" list.
func LoadEvalCases(path string) ([]EvalCase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read eval file %s: %w", path, err)
	}
	var f evalFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse eval file %s: %w", path, err)
	}
	for i, c := range f.Cases {
		if strings.TrimSpace(c.Question) == "" {
			return nil, fmt.Errorf("eval case %d has no question", i)
		}
	}
	return f.Cases, nil
}

// Evaluate answers every case with at most concurrency questions in flight.
// Per-case failures are recorded in the report; only cancellation of ctx
// fails the run.
func (a *Agent) Evaluate(ctx context.Context, cases []EvalCase, concurrency int) (EvalReport, error) {
	if concurrency < 1 {
		concurrency = 1
	}
	results := make([]EvalResult, len(cases))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, c := range cases {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := a.Answer(gctx, c.Question)
			r := EvalResult{Case: c, Err: err}
			if err == nil {
				r.Got = res.Value
				r.Correct = res.Determined && (c.Expected == "" || strings.TrimSpace(c.Expected) == res.Value)
			}
			results[i] = r
			a.logger.Debug("eval case finished",
				zap.Int("case", i),
				zap.String("question", apperrors.Truncate(c.Question, 100)),
				zap.String("got", r.Got),
				zap.Bool("correct", r.Correct))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return EvalReport{}, fmt.Errorf("evaluation interrupted: %w", err)
	}

	report := EvalReport{Results: results}
	for _, r := range results {
		if r.Correct {
			report.Correct++
		}
	}
	return report, nil
}

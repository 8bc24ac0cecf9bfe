// Package ai adapts language-model providers to a single opaque
// text-completion call and bridges that blocking call onto its own goroutine.
package ai

import (
	"context"
	"fmt"

	"video-analytics/internal/apperrors"
)

// Model is a text-completion oracle. The response shape is provider specific;
// use ExtractText to get the reply text out of it.
type Model interface {
	Complete(ctx context.Context, prompt string) (any, error)
}

// ModelFunc adapts a plain function to Model.
type ModelFunc func(ctx context.Context, prompt string) (any, error)

func (f ModelFunc) Complete(ctx context.Context, prompt string) (any, error) {
	return f(ctx, prompt)
}

type completion struct {
	resp any
	err  error
}

// Invoke runs m.Complete on a separate goroutine and returns the reply text.
// The call itself is not cancelled when ctx ends: Invoke stops waiting and the
// late result is discarded.
func Invoke(ctx context.Context, m Model, prompt string) (string, error) {
	done := make(chan completion, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- completion{err: fmt.Errorf("model panicked: %v", r)}
			}
		}()
		resp, err := m.Complete(context.WithoutCancel(ctx), prompt)
		done <- completion{resp: resp, err: err}
	}()

	select {
	case c := <-done:
		if c.err != nil {
			return "", apperrors.Wrap(apperrors.ErrGeneration, c.err, "model call failed")
		}
		return ExtractText(c.resp)
	case <-ctx.Done():
		return "", apperrors.Wrap(apperrors.ErrGeneration, ctx.Err(), "stopped waiting for model")
	}
}

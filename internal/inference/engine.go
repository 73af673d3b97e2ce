// Package inference predicts letters from glove readings with a stored model.
package inference

import (
	"context"
	"fmt"

	"github.com/verte-zerg/signglove/internal/forest"
	"github.com/verte-zerg/signglove/internal/gesture"
	"github.com/verte-zerg/signglove/internal/store"
)

// InvalidInputShapeError reports a gesture vector of the wrong length.
type InvalidInputShapeError struct {
	Got  int
	Want int
}

func (e *InvalidInputShapeError) Error() string {
	return fmt.Sprintf("invalid input shape: expected exactly %d values, got %d", e.Want, e.Got)
}

// Predict returns the most likely letter for values. Only the top label is
// returned; there is no confidence threshold.
func Predict(m *forest.Forest, values []float64) (string, error) {
	if len(values) != gesture.Fingers {
		return "", &InvalidInputShapeError{Got: len(values), Want: gesture.Fingers}
	}
	if m.Features() != gesture.Fingers {
		return "", fmt.Errorf("model expects %d features, glove has %d", m.Features(), gesture.Fingers)
	}
	return m.Predict(values)
}

// Engine loads the model from a repository and caches it for the session.
type Engine struct {
	repo  store.Repository
	model *forest.Forest
}

// NewEngine returns an Engine with nothing loaded.
func NewEngine(repo store.Repository) *Engine {
	return &Engine{repo: repo}
}

// Load reads the current model from the repository, replacing any cached
// one. It returns store.ErrModelNotFound when no model has been trained.
func (e *Engine) Load(ctx context.Context) error {
	m, err := e.repo.LoadModel(ctx)
	if err != nil {
		return fmt.Errorf("load model: %w", err)
	}
	e.model = m
	return nil
}

// Loaded reports whether a model is cached.
func (e *Engine) Loaded() bool {
	return e.model != nil
}

// Reset drops the cached model so the next prediction reloads it.
func (e *Engine) Reset() {
	e.model = nil
}

// Predict checks the input shape, loads the model if needed and predicts.
func (e *Engine) Predict(ctx context.Context, values []float64) (string, error) {
	if len(values) != gesture.Fingers {
		return "", &InvalidInputShapeError{Got: len(values), Want: gesture.Fingers}
	}
	if e.model == nil {
		if err := e.Load(ctx); err != nil {
			return "", err
		}
	}
	return Predict(e.model, values)
}

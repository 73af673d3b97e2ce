// Package trainer fits, evaluates and persists the gesture classifier.
package trainer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/verte-zerg/signglove/internal/dataset"
	"github.com/verte-zerg/signglove/internal/forest"
	"github.com/verte-zerg/signglove/internal/gesture"
	"github.com/verte-zerg/signglove/internal/model"
	"github.com/verte-zerg/signglove/internal/report"
	"github.com/verte-zerg/signglove/internal/store"
)

const (
	DefaultExamplesPerClass = 5
	DefaultNoise            = 200
	DefaultTestFraction     = 0.2
	DefaultSplitSeed        = 42
	DefaultForestSeed       = 42
)

// DefaultConfig returns the stock training settings.
func DefaultConfig() model.TrainConfig {
	return model.TrainConfig{
		ExamplesPerClass: DefaultExamplesPerClass,
		Noise:            DefaultNoise,
		Trees:            forest.DefaultTrees,
		TestFraction:     DefaultTestFraction,
		SplitSeed:        DefaultSplitSeed,
		ForestSeed:       DefaultForestSeed,
	}
}

// TrainingDataError reports a dataset that cannot train a classifier.
type TrainingDataError struct {
	Partition string
	Classes   int
}

func (e *TrainingDataError) Error() string {
	return fmt.Sprintf("training data error: %s has %d distinct class(es), need at least 2", e.Partition, e.Classes)
}

// Evaluation summarises a fit on the held-out partition.
type Evaluation struct {
	Report    report.Report
	TrainSize int
	TestSize  int
}

// Train splits examples, fits a forest on the training partition and scores
// it on the held-out partition.
func Train(ctx context.Context, examples []dataset.Example, cfg model.TrainConfig) (*forest.Forest, Evaluation, error) {
	if n := len(dataset.Labels(examples)); n < 2 {
		return nil, Evaluation{}, &TrainingDataError{Partition: "dataset", Classes: n}
	}
	train, test, err := dataset.Split(examples, cfg.TestFraction, cfg.SplitSeed)
	if err != nil {
		return nil, Evaluation{}, err
	}
	if n := len(dataset.Labels(train)); n < 2 {
		return nil, Evaluation{}, &TrainingDataError{Partition: "training partition", Classes: n}
	}

	x := make([][]float64, len(train))
	y := make([]string, len(train))
	for i, ex := range train {
		x[i] = ex.Features
		y[i] = ex.Label
	}
	f, err := forest.Fit(ctx, x, y, forest.Params{Trees: cfg.Trees, Seed: cfg.ForestSeed})
	if err != nil {
		return nil, Evaluation{}, err
	}

	truth := make([]string, len(test))
	predicted := make([]string, len(test))
	for i, ex := range test {
		truth[i] = ex.Label
		if predicted[i], err = f.Predict(ex.Features); err != nil {
			return nil, Evaluation{}, err
		}
	}
	rep, err := report.Classify(truth, predicted)
	if err != nil {
		return nil, Evaluation{}, err
	}
	return f, Evaluation{Report: rep, TrainSize: len(train), TestSize: len(test)}, nil
}

// RunRecorder stores completed training runs.
type RunRecorder interface {
	InsertRun(ctx context.Context, run model.TrainingRun) error
}

// Result is the outcome of a persisted training run.
type Result struct {
	Run        model.TrainingRun
	Evaluation Evaluation
	Model      *forest.Forest
}

// Trainer generates data, trains and persists the model.
type Trainer struct {
	repo      store.Repository
	runs      RunRecorder
	gen       *dataset.Generator
	templates map[string]gesture.Reading
	cfg       model.TrainConfig
	log       logrus.FieldLogger
}

// New constructs a Trainer. runs may be nil to skip recording history.
func New(repo store.Repository, runs RunRecorder, cfg model.TrainConfig, log logrus.FieldLogger) *Trainer {
	gen := dataset.New()
	if cfg.DataSeed != nil {
		gen = dataset.NewSeeded(*cfg.DataSeed)
	}
	return &Trainer{
		repo:      repo,
		runs:      runs,
		gen:       gen,
		templates: gesture.Templates(),
		cfg:       cfg,
		log:       log,
	}
}

// Run generates a fresh dataset from the template table, then calls Fit.
func (t *Trainer) Run(ctx context.Context) (Result, error) {
	examples, err := t.gen.Generate(t.templates, t.cfg.ExamplesPerClass, t.cfg.Noise)
	if err != nil {
		return Result{}, fmt.Errorf("generate examples: %w", err)
	}
	return t.Fit(ctx, examples)
}

// Fit trains on examples, overwrites the stored model and records the run.
func (t *Trainer) Fit(ctx context.Context, examples []dataset.Example) (Result, error) {
	startedAt := time.Now()
	t.log.WithFields(logrus.Fields{
		"examples": len(examples),
		"trees":    t.cfg.Trees,
		"noise":    t.cfg.Noise,
	}).Debug("training classifier")

	f, eval, err := Train(ctx, examples, t.cfg)
	if err != nil {
		return Result{}, err
	}
	if err := t.repo.SaveModel(ctx, f); err != nil {
		return Result{}, fmt.Errorf("save model: %w", err)
	}

	run := model.TrainingRun{
		ID:               uuid.NewString(),
		StartedAt:        startedAt,
		EndedAt:          time.Now(),
		Examples:         len(examples),
		TrainSize:        eval.TrainSize,
		TestSize:         eval.TestSize,
		Classes:          len(f.Classes()),
		ExamplesPerClass: t.cfg.ExamplesPerClass,
		Noise:            t.cfg.Noise,
		Trees:            f.Size(),
		Accuracy:         eval.Report.Accuracy,
		MacroF1:          eval.Report.MacroAvg.F1,
		Report:           eval.Report.String(),
	}
	entry := t.log.WithFields(logrus.Fields{
		"run":      run.ID,
		"accuracy": fmt.Sprintf("%.3f", run.Accuracy),
		"nodes":    f.Nodes(),
	})
	if t.runs != nil {
		if err := t.runs.InsertRun(ctx, run); err != nil {
			entry.WithError(err).Warn("failed to record training run")
		}
	}
	entry.Info("model trained and saved")
	return Result{Run: run, Evaluation: eval, Model: f}, nil
}

package trainer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/verte-zerg/signglove/internal/dataset"
	"github.com/verte-zerg/signglove/internal/gesture"
	"github.com/verte-zerg/signglove/internal/model"
	"github.com/verte-zerg/signglove/internal/store"
)

type recorder struct {
	runs []model.TrainingRun
	err  error
}

func (r *recorder) InsertRun(_ context.Context, run model.TrainingRun) error {
	if r.err != nil {
		return r.err
	}
	r.runs = append(r.runs, run)
	return nil
}

func seeded(seed int64) *int64 {
	return &seed
}

func TestTrainRejectsSingleClass(t *testing.T) {
	examples := []dataset.Example{
		{Features: []float64{1, 2, 3, 4, 5}, Label: "A"},
		{Features: []float64{1, 2, 3, 4, 6}, Label: "A"},
	}
	_, _, err := Train(context.Background(), examples, DefaultConfig())
	var dataErr *TrainingDataError
	if !errors.As(err, &dataErr) {
		t.Fatalf("expected TrainingDataError, got %v", err)
	}
	if dataErr.Classes != 1 {
		t.Fatalf("expected 1 class, got %d", dataErr.Classes)
	}
}

func TestTrainRejectsEmptyDataset(t *testing.T) {
	_, _, err := Train(context.Background(), nil, DefaultConfig())
	var dataErr *TrainingDataError
	if !errors.As(err, &dataErr) {
		t.Fatalf("expected TrainingDataError, got %v", err)
	}
}

func TestTrainRejectsSingleClassTrainingPartition(t *testing.T) {
	examples := []dataset.Example{
		{Features: []float64{1, 1, 1, 1, 1}, Label: "A"},
		{Features: []float64{9, 9, 9, 9, 9}, Label: "B"},
	}
	_, _, err := Train(context.Background(), examples, DefaultConfig())
	var dataErr *TrainingDataError
	if !errors.As(err, &dataErr) || dataErr.Partition != "training partition" {
		t.Fatalf("expected training partition error, got %v", err)
	}
}

func TestTrainDefaultSplit(t *testing.T) {
	examples, err := dataset.NewSeeded(1).Generate(gesture.Templates(), DefaultExamplesPerClass, DefaultNoise)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	f, eval, err := Train(context.Background(), examples, DefaultConfig())
	if err != nil {
		t.Fatalf("train: %v", err)
	}
	if eval.TrainSize != 104 || eval.TestSize != 26 || eval.Report.Support != 26 {
		t.Fatalf("unexpected split: %+v", eval)
	}
	if f.Size() != 100 || f.Features() != gesture.Fingers {
		t.Fatalf("unexpected forest shape: trees=%d features=%d", f.Size(), f.Features())
	}
}

// wellSeparated returns letters whose template differs from every other
// template by more than 2*noise in at least one finger, so their noisy
// samples never overlap another class.
func wellSeparated(templates map[string]gesture.Reading, noise int) []string {
	var out []string
	for _, a := range gesture.SortedLetters(templates) {
		ok := true
		for b, rb := range templates {
			if a == b {
				continue
			}
			ra := templates[a]
			far := false
			for i := range ra {
				d := ra[i] - rb[i]
				if d < 0 {
					d = -d
				}
				if d > 2*noise {
					far = true
					break
				}
			}
			if !far {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, a)
		}
	}
	return out
}

func TestCanonicalTemplatesPredictTheirLetter(t *testing.T) {
	templates := gesture.Templates()
	const noise = 100
	letters := wellSeparated(templates, noise)
	if len(letters) < 10 {
		t.Fatalf("expected at least 10 well-separated letters, got %v", letters)
	}

	cfg := DefaultConfig()
	cfg.Noise = noise
	cfg.ExamplesPerClass = 30
	for _, seed := range []int64{1, 2, 3} {
		examples, err := dataset.NewSeeded(seed).Generate(templates, cfg.ExamplesPerClass, cfg.Noise)
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		f, _, err := Train(context.Background(), examples, cfg)
		if err != nil {
			t.Fatalf("train: %v", err)
		}
		correct := 0
		for _, letter := range letters {
			got, err := f.Predict(templates[letter].Floats())
			if err != nil {
				t.Fatalf("predict: %v", err)
			}
			if got == letter {
				correct++
			}
		}
		if float64(correct) < 0.9*float64(len(letters)) {
			t.Fatalf("seed %d: only %d/%d canonical templates predicted correctly", seed, correct, len(letters))
		}
	}
}

func TestFitPersistsAndRecordsRun(t *testing.T) {
	repo := store.NewMemory()
	rec := &recorder{}
	logger, hook := test.NewNullLogger()
	cfg := DefaultConfig()
	cfg.Trees = 10
	cfg.DataSeed = seeded(9)

	tr := New(repo, rec, cfg, logger)
	res, err := tr.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(rec.runs) != 1 || rec.runs[0].ID != res.Run.ID || res.Run.ID == "" {
		t.Fatalf("expected recorded run, got %+v", rec.runs)
	}
	if res.Run.Examples != 130 || res.Run.Trees != 10 || res.Run.Classes != 26 {
		t.Fatalf("unexpected run record: %+v", res.Run)
	}
	if !strings.Contains(res.Run.Report, "weighted avg") {
		t.Fatalf("expected rendered report in run record")
	}
	if _, err := repo.LoadModel(context.Background()); err != nil {
		t.Fatalf("expected saved model: %v", err)
	}
	if hook.LastEntry() == nil || hook.LastEntry().Message != "model trained and saved" {
		t.Fatalf("expected completion log entry")
	}
}

func TestFitLogsRecorderFailureWithoutFailing(t *testing.T) {
	logger, hook := test.NewNullLogger()
	cfg := DefaultConfig()
	cfg.Trees = 5
	cfg.DataSeed = seeded(2)
	tr := New(store.NewMemory(), &recorder{err: errors.New("disk full")}, cfg, logger)
	if _, err := tr.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	warned := false
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			warned = true
		}
	}
	if !warned {
		t.Fatalf("expected warning for recorder failure")
	}
}

func TestRetrainOverwritesPreviousModel(t *testing.T) {
	repo := store.NewMemory()
	logger, _ := test.NewNullLogger()
	cfg := DefaultConfig()
	cfg.Trees = 5
	tr := New(repo, nil, cfg, logger)

	full, err := dataset.NewSeeded(4).Generate(gesture.Templates(), 5, 50)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := tr.Fit(context.Background(), full); err != nil {
		t.Fatalf("first fit: %v", err)
	}

	subset := map[string]gesture.Reading{}
	for _, letter := range []string{"H", "I"} {
		subset[letter], _ = gesture.Lookup(letter)
	}
	small, err := dataset.NewSeeded(5).Generate(subset, 10, 50)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := tr.Fit(context.Background(), small); err != nil {
		t.Fatalf("second fit: %v", err)
	}

	loaded, err := repo.LoadModel(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := strings.Join(loaded.Classes(), ""); got != "HI" {
		t.Fatalf("expected only the latest model, got classes %q", got)
	}
	a, _ := gesture.Lookup("A")
	if got, _ := loaded.Predict(a.Floats()); got == "A" {
		t.Fatalf("latest model cannot predict A")
	}
}

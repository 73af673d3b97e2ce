// Package console implements the line-oriented train/test menu.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/verte-zerg/signglove/internal/decoder"
	"github.com/verte-zerg/signglove/internal/gesture"
	"github.com/verte-zerg/signglove/internal/inference"
	"github.com/verte-zerg/signglove/internal/speech"
	"github.com/verte-zerg/signglove/internal/store"
	"github.com/verte-zerg/signglove/internal/trainer"
	"github.com/verte-zerg/signglove/internal/vocab"
)

// ParseError reports a token that is not an integer.
type ParseError struct {
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid integer %q", e.Input)
}

func (e *ParseError) Unwrap() error { return e.Err }

func parseInt(token string) (int, error) {
	v, err := strconv.Atoi(token)
	if err != nil {
		return 0, &ParseError{Input: token, Err: err}
	}
	return v, nil
}

// ParseGesture parses a line of space-separated integers. The number of
// values is checked by the predictor, not here.
func ParseGesture(line string) ([]float64, error) {
	fields := strings.Fields(line)
	values := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := parseInt(f)
		if err != nil {
			return nil, err
		}
		values = append(values, float64(v))
	}
	return values, nil
}

// Trainer runs a full training cycle.
type Trainer interface {
	Run(ctx context.Context) (trainer.Result, error)
}

// Predictor is the inference engine used by the test action.
type Predictor interface {
	Load(ctx context.Context) error
	Predict(ctx context.Context, values []float64) (string, error)
	Reset()
}

// Menu is an interactive session over a reader and writer.
type Menu struct {
	in       *bufio.Scanner
	out      io.Writer
	trainer  Trainer
	engine   Predictor
	vocab    *vocab.Vocabulary
	notifier speech.Notifier
	log      logrus.FieldLogger
}

// NewMenu wires a menu. A nil notifier disables speech.
func NewMenu(in io.Reader, out io.Writer, tr Trainer, engine Predictor, v *vocab.Vocabulary, n speech.Notifier, log logrus.FieldLogger) *Menu {
	if n == nil {
		n = speech.Nop{}
	}
	return &Menu{
		in:       bufio.NewScanner(in),
		out:      out,
		trainer:  tr,
		engine:   engine,
		vocab:    v,
		notifier: n,
		log:      log,
	}
}

var errEOF = errors.New("end of input")

func (m *Menu) prompt(text string) (string, error) {
	fmt.Fprint(m.out, text)
	if !m.in.Scan() {
		if err := m.in.Err(); err != nil {
			return "", err
		}
		fmt.Fprintln(m.out)
		return "", errEOF
	}
	return strings.TrimSpace(m.in.Text()), nil
}

// Run loops until the user exits or input ends.
func (m *Menu) Run(ctx context.Context) error {
	for {
		fmt.Fprintln(m.out)
		fmt.Fprintln(m.out, "Hand Gesture System")
		fmt.Fprintln(m.out, "1. Train Model")
		fmt.Fprintln(m.out, "2. Test Gestures for Words")
		fmt.Fprintln(m.out, "3. Exit")
		choice, err := m.prompt("Enter your choice (1/2/3): ")
		if err != nil {
			return ignoreEOF(err)
		}
		switch choice {
		case "1":
			if err := m.train(ctx); err != nil {
				return err
			}
		case "2":
			if err := m.test(ctx); err != nil {
				return ignoreEOF(err)
			}
		case "3":
			fmt.Fprintln(m.out, "Exiting. Goodbye!")
			return nil
		default:
			fmt.Fprintln(m.out, "Invalid choice. Please enter 1, 2, or 3.")
		}
	}
}

func ignoreEOF(err error) error {
	if errors.Is(err, errEOF) {
		return nil
	}
	return err
}

func (m *Menu) train(ctx context.Context) error {
	fmt.Fprintln(m.out, "Training model...")
	res, err := m.trainer.Run(ctx)
	if err != nil {
		var dataErr *trainer.TrainingDataError
		if errors.As(err, &dataErr) {
			fmt.Fprintf(m.out, "Error: %v\n", err)
			return nil
		}
		if ctx.Err() != nil {
			return err
		}
		fmt.Fprintf(m.out, "Training failed: %v\n", err)
		return nil
	}
	m.engine.Reset()

	fmt.Fprintln(m.out)
	fmt.Fprintln(m.out, "=== Classification Report ===")
	if err := res.Evaluation.Report.Render(m.out); err != nil {
		return err
	}
	if weak := res.Evaluation.Report.WeakestClasses(5); len(weak) > 0 {
		fmt.Fprintf(m.out, "Weakest letters: %s\n", strings.Join(weak, " "))
	}
	fmt.Fprintf(m.out, "Model trained and saved as '%s'\n", store.ModelName)
	return nil
}

func (m *Menu) test(ctx context.Context) error {
	if err := m.engine.Load(ctx); err != nil {
		if errors.Is(err, store.ErrModelNotFound) {
			fmt.Fprintf(m.out, "Error: trained model '%s' not found. Please train it first.\n", store.ModelName)
			return nil
		}
		return err
	}

	raw, err := m.prompt("How many gestures (letters) do you want to input? ")
	if err != nil {
		return err
	}
	n, err := parseInt(raw)
	if err != nil {
		fmt.Fprintln(m.out, "Invalid number.")
		return nil
	}

	var seq decoder.Sequence
	for i := 0; i < n; i++ {
		line, err := m.prompt(fmt.Sprintf("Enter %d finger values for gesture %d (space-separated): ", gesture.Fingers, i+1))
		if err != nil {
			return err
		}
		letter, err := m.predictLine(ctx, line)
		if err != nil {
			var shapeErr *inference.InvalidInputShapeError
			var parseErr *ParseError
			switch {
			case errors.As(err, &shapeErr):
				fmt.Fprintf(m.out, "Invalid input! Please enter exactly %d integers.\n", gesture.Fingers)
			case errors.As(err, &parseErr):
				fmt.Fprintf(m.out, "Error reading values: %v\n", err)
			default:
				return err
			}
			continue
		}
		seq.Append(letter)
		fmt.Fprintf(m.out, "Predicted letter: %s\n", letter)
	}

	fmt.Fprintln(m.out)
	fmt.Fprintf(m.out, "Final Sequence: %s\n", seq.Prefix())
	res := seq.Decode(m.vocab)
	fmt.Fprintln(m.out, res.String())
	if res.Recognized {
		speech.Announce(ctx, m.notifier, res.Word, m.log)
	}
	return nil
}

func (m *Menu) predictLine(ctx context.Context, line string) (string, error) {
	values, err := ParseGesture(line)
	if err != nil {
		return "", err
	}
	return m.engine.Predict(ctx, values)
}

// Package report computes and renders classifier evaluation reports.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// Scores holds precision, recall and F1 for one class or an average.
type Scores struct {
	Precision float64 `yaml:"precision"`
	Recall    float64 `yaml:"recall"`
	F1        float64 `yaml:"f1"`
	Support   int     `yaml:"support"`
}

// ClassScores are the scores for a single label.
type ClassScores struct {
	Label  string `yaml:"label"`
	Scores `yaml:",inline"`
}

// Report is a per-class evaluation of predictions on a held-out set.
type Report struct {
	Classes     []ClassScores `yaml:"classes"`
	Accuracy    float64       `yaml:"accuracy"`
	MacroAvg    Scores        `yaml:"macro_avg"`
	WeightedAvg Scores        `yaml:"weighted_avg"`
	Support     int           `yaml:"support"`
}

// Classify compares true and predicted labels. Labels appearing in either
// slice are reported in sorted order; undefined ratios count as zero.
func Classify(truth, predicted []string) (Report, error) {
	if len(truth) != len(predicted) {
		return Report{}, fmt.Errorf("label count mismatch: %d true, %d predicted", len(truth), len(predicted))
	}
	type tally struct{ tp, fp, fn, support int }
	tallies := map[string]*tally{}
	entry := func(label string) *tally {
		t, ok := tallies[label]
		if !ok {
			t = &tally{}
			tallies[label] = t
		}
		return t
	}
	correct := 0
	for i, want := range truth {
		got := predicted[i]
		entry(want).support++
		if want == got {
			entry(want).tp++
			correct++
			continue
		}
		entry(want).fn++
		entry(got).fp++
	}

	labels := make([]string, 0, len(tallies))
	for label := range tallies {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	r := Report{Support: len(truth)}
	if len(truth) > 0 {
		r.Accuracy = float64(correct) / float64(len(truth))
	}
	for _, label := range labels {
		t := tallies[label]
		s := Scores{
			Precision: ratio(t.tp, t.tp+t.fp),
			Recall:    ratio(t.tp, t.tp+t.fn),
			Support:   t.support,
		}
		if s.Precision+s.Recall > 0 {
			s.F1 = 2 * s.Precision * s.Recall / (s.Precision + s.Recall)
		}
		r.Classes = append(r.Classes, ClassScores{Label: label, Scores: s})

		r.MacroAvg.Precision += s.Precision
		r.MacroAvg.Recall += s.Recall
		r.MacroAvg.F1 += s.F1
		w := float64(s.Support)
		r.WeightedAvg.Precision += s.Precision * w
		r.WeightedAvg.Recall += s.Recall * w
		r.WeightedAvg.F1 += s.F1 * w
	}
	if n := float64(len(r.Classes)); n > 0 {
		r.MacroAvg.Precision /= n
		r.MacroAvg.Recall /= n
		r.MacroAvg.F1 /= n
	}
	if r.Support > 0 {
		total := float64(r.Support)
		r.WeightedAvg.Precision /= total
		r.WeightedAvg.Recall /= total
		r.WeightedAvg.F1 /= total
	}
	r.MacroAvg.Support = r.Support
	r.WeightedAvg.Support = r.Support
	return r, nil
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

// Render writes the report as an aligned text table.
func (r Report) Render(w io.Writer) error {
	headers := []string{"", "precision", "recall", "f1-score", "support"}
	rows := make([][]string, 0, len(r.Classes)+4)
	for _, c := range r.Classes {
		rows = append(rows, scoreRow(c.Label, c.Scores))
	}
	rows = append(rows,
		nil,
		[]string{"accuracy", "", "", fmt.Sprintf("%.2f", r.Accuracy), fmt.Sprintf("%d", r.Support)},
		scoreRow("macro avg", r.MacroAvg),
		scoreRow("weighted avg", r.WeightedAvg),
	)
	rightAlign := map[int]bool{0: true, 1: true, 2: true, 3: true, 4: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// String renders the report as text.
func (r Report) String() string {
	var b strings.Builder
	if err := r.Render(&b); err != nil {
		return ""
	}
	return b.String()
}

func scoreRow(label string, s Scores) []string {
	return []string{
		label,
		fmt.Sprintf("%.2f", s.Precision),
		fmt.Sprintf("%.2f", s.Recall),
		fmt.Sprintf("%.2f", s.F1),
		fmt.Sprintf("%d", s.Support),
	}
}

// WeakestClasses returns up to n labels with the lowest F1 score, skipping
// labels that scored perfectly.
func (r Report) WeakestClasses(n int) []string {
	if n <= 0 {
		return nil
	}
	candidates := make([]ClassScores, 0, len(r.Classes))
	for _, c := range r.Classes {
		if c.F1 < 1 {
			candidates = append(candidates, c)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].F1 == candidates[j].F1 {
			return candidates[i].Label < candidates[j].Label
		}
		return candidates[i].F1 < candidates[j].F1
	})
	if n > len(candidates) {
		n = len(candidates)
	}
	out := make([]string, 0, n)
	for _, c := range candidates[:n] {
		out = append(out, c.Label)
	}
	return out
}

package report

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/verte-zerg/signglove/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = min(max(idx, 0), len(sparkChars)-1)
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderHistory prints training runs oldest first with an accuracy trend.
func RenderHistory(w io.Writer, runs []model.TrainingRun) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No training runs found.")
		return err
	}
	headers := []string{"Run", "Finished", "Examples", "Noise", "Trees", "Accuracy", "Macro F1"}
	rows := make([][]string, 0, len(runs))
	accs := make([]float64, 0, len(runs))
	for _, run := range runs {
		id := run.ID
		if len(id) > 8 {
			id = id[:8]
		}
		rows = append(rows, []string{
			id,
			run.EndedAt.Local().Format("2006-01-02 15:04:05"),
			fmt.Sprintf("%d/%d", run.TrainSize, run.TestSize),
			fmt.Sprintf("%d", run.Noise),
			fmt.Sprintf("%d", run.Trees),
			fmt.Sprintf("%.2f%%", run.Accuracy*100),
			fmt.Sprintf("%.2f", run.MacroF1),
		})
		accs = append(accs, run.Accuracy)
	}
	rightAlign := map[int]bool{2: true, 3: true, 4: true, 5: true, 6: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if len(runs) > 1 {
		if _, err := fmt.Fprintf(w, "\nAccuracy trend: [%s]\n", Sparkline(accs)); err != nil {
			return err
		}
	}
	return nil
}

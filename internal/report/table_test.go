package report

import "testing"

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Class", "Precision", "Support"}
	rows := [][]string{
		{"A", "1.00", "12"},
		nil,
		{"accuracy", "0.95", "3"},
	}
	rightAlign := map[int]bool{1: true, 2: true}

	lines := formatTable(headers, rows, rightAlign)
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d", len(lines))
	}
	if lines[0] != "Class     Precision  Support" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "A              1.00       12" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "" {
		t.Fatalf("expected blank separator, got %q", lines[2])
	}
	if lines[3] != "accuracy       0.95        3" {
		t.Fatalf("unexpected row line: %q", lines[3])
	}
}

func TestFormatTableEmpty(t *testing.T) {
	if lines := formatTable(nil, nil, nil); lines != nil {
		t.Fatalf("expected nil for empty table, got %v", lines)
	}
}

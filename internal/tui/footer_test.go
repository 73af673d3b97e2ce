package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/verte-zerg/signglove/internal/speech"
	"github.com/verte-zerg/signglove/internal/store"
	"github.com/verte-zerg/signglove/internal/vocab"
)

type scriptedEngine struct {
	err error
}

func (s scriptedEngine) Predict(_ context.Context, values []float64) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return string(rune('A' + int(values[0]))), nil
}

type recordingNotifier struct{ words []string }

func (r *recordingNotifier) Notify(_ context.Context, word string) error {
	r.words = append(r.words, word)
	return nil
}

func newTestModel(engine Predictor, n *recordingNotifier) *Model {
	logger, _ := test.NewNullLogger()
	var notifier speech.Notifier
	if n != nil {
		notifier = n
	}
	return NewModel(context.Background(), engine, vocab.Default(), notifier, logger)
}

func enter(m *Model, line string) tea.Cmd {
	m.input.SetValue(line)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return cmd
}

func TestRenderFooterFormats(t *testing.T) {
	m := newTestModel(scriptedEngine{}, &recordingNotifier{})
	m.seq.Append("H")
	out := m.renderFooter()
	if !containsAll(out, []string{"Letters 1", "enter predict", "esc clear", "ctrl+c quit"}) {
		t.Fatalf("footer missing expected segments: %s", out)
	}
}

func TestEnterPredictsAndDecodes(t *testing.T) {
	n := &recordingNotifier{}
	m := newTestModel(scriptedEngine{}, n)
	enter(m, "7 0 0 0 0")
	enter(m, "8 0 0 0 0")
	if m.seq.Prefix() != "HI" {
		t.Fatalf("expected HI in sequence, got %q", m.seq.Prefix())
	}
	if hint := m.renderHint(); !strings.Contains(hint, "HI is a word") {
		t.Fatalf("unexpected hint %q", hint)
	}

	cmd := enter(m, "")
	if cmd == nil {
		t.Fatalf("expected announce command for recognized word")
	}
	if msg, ok := cmd().(announcedMsg); !ok || msg.word != "HI" {
		t.Fatalf("unexpected message %#v", msg)
	}
	if len(n.words) != 1 || n.words[0] != "HI" {
		t.Fatalf("expected HI announced, got %v", n.words)
	}
	if m.seq.Len() != 0 || m.status != "Recognized Word: HI" {
		t.Fatalf("expected fresh sequence and status, got %d %q", m.seq.Len(), m.status)
	}
}

func TestInputIgnoredWhileSpeaking(t *testing.T) {
	m := newTestModel(scriptedEngine{}, &recordingNotifier{})
	enter(m, "13 0 0 0 0")
	enter(m, "14 0 0 0 0")
	cmd := enter(m, "")
	if cmd == nil || !m.speaking {
		t.Fatalf("expected model to wait for the announcement")
	}
	if !strings.Contains(m.renderFooter(), "speaking") {
		t.Fatalf("footer should show speaking state: %s", m.renderFooter())
	}

	enter(m, "7 0 0 0 0")
	if m.seq.Len() != 0 {
		t.Fatalf("gesture entered during playback should be ignored, got %v", m.seq.Letters())
	}

	m.Update(cmd())
	if m.speaking {
		t.Fatalf("announcement message should end the speaking state")
	}
	enter(m, "7 0 0 0 0")
	if m.seq.Prefix() != "H" {
		t.Fatalf("expected input after playback, got %q", m.seq.Prefix())
	}
}

func TestUnrecognizedWordIsNotAnnounced(t *testing.T) {
	n := &recordingNotifier{}
	m := newTestModel(scriptedEngine{}, n)
	enter(m, "25 0 0 0 0")
	enter(m, "16 0 0 0 0")
	if cmd := enter(m, ""); cmd != nil {
		t.Fatalf("unrecognized word should not produce a command")
	}
	if !m.statusErr || !strings.Contains(m.status, "Z Q") {
		t.Fatalf("unexpected status %q", m.status)
	}
	if len(n.words) != 0 {
		t.Fatalf("nothing should be announced, got %v", n.words)
	}
}

func TestRejectedGesturesLeaveSequenceUnchanged(t *testing.T) {
	m := newTestModel(scriptedEngine{}, nil)
	enter(m, "7 0 0 0 0")
	enter(m, "7 x 0 0 0")
	if m.seq.Len() != 1 || !m.statusErr {
		t.Fatalf("parse error should not append, got %v", m.seq.Letters())
	}

	m.engine = scriptedEngine{err: store.ErrModelNotFound}
	enter(m, "8 0 0 0 0")
	if m.seq.Len() != 1 || !strings.Contains(m.status, "train") {
		t.Fatalf("missing model should not append, status %q", m.status)
	}
}

func TestEscClearsSequence(t *testing.T) {
	m := newTestModel(scriptedEngine{}, nil)
	enter(m, "1 0 0 0 0")
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.seq.Len() != 0 {
		t.Fatalf("expected empty sequence after esc")
	}
	if !strings.Contains(m.View(), "Sequence: (empty)") {
		t.Fatalf("view should show empty sequence")
	}
}

func TestCtrlCQuits(t *testing.T) {
	m := newTestModel(scriptedEngine{}, nil)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected QuitMsg")
	}
}

func containsAll(haystack string, needles []string) bool {
	for _, needle := range needles {
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}

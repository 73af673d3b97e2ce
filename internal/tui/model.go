// Package tui provides the Bubble Tea spelling interface.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/verte-zerg/signglove/internal/console"
	"github.com/verte-zerg/signglove/internal/decoder"
	"github.com/verte-zerg/signglove/internal/inference"
	"github.com/verte-zerg/signglove/internal/speech"
	"github.com/verte-zerg/signglove/internal/store"
	"github.com/verte-zerg/signglove/internal/vocab"
)

const maxHistory = 5

// Predictor maps a glove reading to a letter.
type Predictor interface {
	Predict(ctx context.Context, values []float64) (string, error)
}

type announcedMsg struct {
	word string
}

// Model implements the Bubble Tea spelling UI.
type Model struct {
	ctx      context.Context
	engine   Predictor
	vocab    *vocab.Vocabulary
	notifier speech.Notifier
	log      logrus.FieldLogger

	input   textinput.Model
	seq     decoder.Sequence
	history []decoder.Result

	status    string
	statusErr bool
	// speaking is set while a recognized word is announced; gestures are
	// ignored until playback finishes.
	speaking bool

	width  int
	height int
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A"))
	sequenceStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	wordStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	lettersStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// NewModel constructs a spelling TUI model. A nil notifier disables speech.
func NewModel(ctx context.Context, engine Predictor, v *vocab.Vocabulary, n speech.Notifier, log logrus.FieldLogger) *Model {
	if n == nil {
		n = speech.Nop{}
	}
	input := textinput.New()
	input.Prompt = "Fingers: "
	input.Placeholder = "e.g. 1000 3500 3500 3500 3500"
	input.CharLimit = 64
	input.Cursor.SetMode(cursor.CursorBlink)
	input.Focus()
	return &Model{
		ctx:      ctx,
		engine:   engine,
		vocab:    v,
		notifier: n,
		log:      log,
		input:    input,
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case announcedMsg:
		m.speaking = false
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.speaking {
			return m, nil
		}
		switch msg.Type {
		case tea.KeyEsc:
			m.seq.Reset()
			m.input.SetValue("")
			m.setStatus("Sequence cleared", false)
			return m, nil
		case tea.KeyEnter:
			return m, m.submit()
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) submit() tea.Cmd {
	line := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")
	if line == "" {
		return m.finishWord()
	}
	values, err := console.ParseGesture(line)
	if err != nil {
		m.setStatus(err.Error(), true)
		return nil
	}
	letter, err := m.engine.Predict(m.ctx, values)
	if err != nil {
		var shapeErr *inference.InvalidInputShapeError
		switch {
		case errors.As(err, &shapeErr):
			m.setStatus(fmt.Sprintf("Enter exactly %d integers (got %d)", shapeErr.Want, shapeErr.Got), true)
		case errors.Is(err, store.ErrModelNotFound):
			m.setStatus("No trained model. Run `signglove train` first.", true)
		default:
			m.setStatus(err.Error(), true)
		}
		return nil
	}
	m.seq.Append(letter)
	m.setStatus(fmt.Sprintf("Predicted letter: %s", letter), false)
	return nil
}

func (m *Model) finishWord() tea.Cmd {
	if m.seq.Len() == 0 {
		m.setStatus("Nothing to decode", true)
		return nil
	}
	res := m.seq.Decode(m.vocab)
	m.history = append(m.history, res)
	if len(m.history) > maxHistory {
		m.history = m.history[len(m.history)-maxHistory:]
	}
	m.setStatus(res.String(), !res.Recognized)
	if !res.Recognized {
		return nil
	}
	m.speaking = true
	ctx, n, log, word := m.ctx, m.notifier, m.log, res.Word
	return func() tea.Msg {
		speech.Announce(ctx, n, word, log)
		return announcedMsg{word: word}
	}
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Glove spelling"))
	b.WriteString("\n\n")
	b.WriteString(m.renderSequence())
	b.WriteString("\n")
	if hint := m.renderHint(); hint != "" {
		b.WriteString(lettersStyle.Render(hint))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	if m.status != "" {
		style := sequenceStyle
		if m.statusErr {
			style = errorStyle
		}
		b.WriteString(style.Render(m.status))
		b.WriteString("\n")
	}
	if len(m.history) > 0 {
		b.WriteString("\n")
		for _, res := range m.history {
			b.WriteString(renderResult(res))
			b.WriteString("\n")
		}
	}
	content := b.String()
	footer := footerStyle.Render(m.renderFooter())
	if m.width == 0 || m.height < 3 {
		return content + "\n" + footer
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) renderSequence() string {
	if m.seq.Len() == 0 {
		return lettersStyle.Render("Sequence: (empty)")
	}
	return "Sequence: " + sequenceStyle.Render(strings.Join(m.seq.Letters(), " "))
}

func (m *Model) renderHint() string {
	prefix := m.seq.Prefix()
	if prefix == "" {
		return ""
	}
	count := len(m.vocab.WithPrefix(prefix))
	switch {
	case count == 0:
		return fmt.Sprintf("No words start with %s", prefix)
	case m.vocab.Contains(prefix):
		return fmt.Sprintf("%s is a word (%d matching word%s)", prefix, count, plural(count))
	default:
		return fmt.Sprintf("%d matching word%s for %s", count, plural(count), prefix)
	}
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

func renderResult(res decoder.Result) string {
	if res.Recognized {
		return wordStyle.Render(res.Word)
	}
	return lettersStyle.Render(strings.Join(res.Letters, " ") + " (?)")
}

func (m *Model) renderFooter() string {
	if m.speaking {
		return fmt.Sprintf("Letters %d  speaking...  ctrl+c quit", m.seq.Len())
	}
	segments := []string{
		fmt.Sprintf("Letters %d", m.seq.Len()),
		"enter predict",
		"empty enter decode",
		"esc clear",
		"ctrl+c quit",
	}
	return strings.Join(segments, "  ")
}

// Package speech announces recognized words through external commands.
package speech

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"
)

// Default command templates. {text} is replaced by the word and {file} by
// the temporary audio path.
const (
	DefaultSynth = "espeak-ng -w {file} {text}"
	DefaultPlay  = "aplay -q {file}"
)

// Notifier speaks a recognized word. Notify blocks until playback ends.
type Notifier interface {
	Notify(ctx context.Context, word string) error
}

// Nop is a Notifier that does nothing.
type Nop struct{}

// Notify implements Notifier.
func (Nop) Notify(context.Context, string) error { return nil }

// CommandNotifier synthesizes a word into a temporary audio file with one
// command and plays it with another.
type CommandNotifier struct {
	Synth string
	Play  string
	// TempDir holds the audio file; empty means os.TempDir.
	TempDir string
}

// NewCommandNotifier returns a notifier using the given command templates,
// falling back to the defaults for empty values.
func NewCommandNotifier(synth, play string) *CommandNotifier {
	if strings.TrimSpace(synth) == "" {
		synth = DefaultSynth
	}
	if strings.TrimSpace(play) == "" {
		play = DefaultPlay
	}
	return &CommandNotifier{Synth: synth, Play: play}
}

// Notify implements Notifier. The audio file is removed whether or not the
// commands succeed.
func (n *CommandNotifier) Notify(ctx context.Context, word string) error {
	if word == "" {
		return errors.New("nothing to speak")
	}
	file, err := os.CreateTemp(n.TempDir, "signglove-*.wav")
	if err != nil {
		return fmt.Errorf("create audio file: %w", err)
	}
	path := file.Name()
	defer func() {
		_ = os.Remove(path)
	}()
	if err := file.Close(); err != nil {
		return fmt.Errorf("close audio file: %w", err)
	}

	if err := run(ctx, n.Synth, word, path); err != nil {
		return fmt.Errorf("synthesize %q: %w", word, err)
	}
	if err := run(ctx, n.Play, word, path); err != nil {
		return fmt.Errorf("play %q: %w", word, err)
	}
	return nil
}

func expand(template, text, file string) ([]string, error) {
	fields := strings.Fields(template)
	if len(fields) == 0 {
		return nil, errors.New("empty command")
	}
	for i, f := range fields {
		f = strings.ReplaceAll(f, "{text}", text)
		fields[i] = strings.ReplaceAll(f, "{file}", file)
	}
	return fields, nil
}

func run(ctx context.Context, template, text, file string) error {
	args, err := expand(template, text, file)
	if err != nil {
		return err
	}
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%s: %w: %s", args[0], err, msg)
		}
		return fmt.Errorf("%s: %w", args[0], err)
	}
	return nil
}

// Announce speaks word through n. Failures are logged and never returned.
func Announce(ctx context.Context, n Notifier, word string, log logrus.FieldLogger) {
	if n == nil {
		return
	}
	if err := n.Notify(ctx, word); err != nil {
		log.WithError(err).WithField("word", word).Warn("speech output failed")
		return
	}
	log.WithField("word", word).Debug("word announced")
}

// Package decoder turns a sequence of predicted letters into a word.
package decoder

import (
	"fmt"
	"strings"

	"github.com/verte-zerg/signglove/internal/vocab"
)

// Result is the outcome of decoding a letter sequence.
type Result struct {
	// Word is empty unless Recognized.
	Word       string
	Recognized bool
	Letters    []string
}

// String renders the result the way the console prints it.
func (r Result) String() string {
	if r.Recognized {
		return fmt.Sprintf("Recognized Word: %s", r.Word)
	}
	return fmt.Sprintf("Recognized Letters (not a valid word): %s", strings.Join(r.Letters, " "))
}

// Decode concatenates and upper-cases letters and checks the result against
// v. Word is set only when the result is recognized. An empty sequence is
// never recognized.
func Decode(letters []string, v *vocab.Vocabulary) Result {
	res := Result{Letters: append([]string(nil), letters...)}
	word := strings.ToUpper(strings.Join(letters, ""))
	if word != "" && v.Contains(word) {
		res.Word = word
		res.Recognized = true
	}
	return res
}

// Sequence accumulates letters for one spelling session.
type Sequence struct {
	letters []string
}

// Append adds a predicted letter.
func (s *Sequence) Append(letter string) {
	s.letters = append(s.letters, letter)
}

// Len returns the number of letters collected.
func (s *Sequence) Len() int {
	return len(s.letters)
}

// Letters returns a copy of the collected letters.
func (s *Sequence) Letters() []string {
	return append([]string(nil), s.letters...)
}

// Prefix returns the collected letters joined together.
func (s *Sequence) Prefix() string {
	return strings.Join(s.letters, "")
}

// Reset clears the sequence.
func (s *Sequence) Reset() {
	s.letters = nil
}

// Decode decodes the collected letters and clears the sequence.
func (s *Sequence) Decode(v *vocab.Vocabulary) Result {
	res := Decode(s.letters, v)
	s.Reset()
	return res
}

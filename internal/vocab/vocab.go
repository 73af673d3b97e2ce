// Package vocab holds the set of words the decoder recognises.
package vocab

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/google/btree"
)

var builtinWords = []string{
	"HI", "BYE", "YES", "NO", "OK", "HELP", "LOVE", "YOU",
	"GO", "RUN", "STOP", "START", "EAT", "DRINK", "WATER", "FOOD", "HOME", "FIRE",
	"SAVE", "SIT", "STAND", "COME", "WAIT", "CALL", "DANCE", "OPEN", "CLOSE", "LOOK",
	"SEE", "TALK", "LISTEN", "WALK", "TURN", "RIGHT", "LEFT", "UP", "DOWN", "IN", "OUT",
	"GIVE", "TAKE", "BRING", "CARRY", "THROW", "CATCH", "HOLD", "READ", "WRITE", "SLEEP",
	"WAKE", "EYE", "HAND", "LEG", "HEAD", "DOOR", "WINDOW", "CHAIR", "TABLE", "BED", "ROOM",
	"BOOK", "PEN", "BAG", "SHIRT", "PANTS", "SHOES", "LIGHT", "FAN", "TV", "PHONE", "CLOCK",
	"SCHOOL", "COLLEGE", "WORK", "PLAY", "STUDY", "TEACH", "LEARN", "LAUGH", "CRY", "SMILE",
	"ANGRY", "HAPPY", "TIRED", "SAD", "HUNGRY", "THIRSTY", "FAST", "SLOW", "BIG", "SMALL",
	"HOT", "COLD", "GOOD", "BAD", "NEW", "OLD", "NEAR", "FAR", "CLEAN", "DIRTY",
}

var builtin = New(builtinWords)

// Vocabulary is an immutable, ordered set of upper-case words.
type Vocabulary struct {
	tree *btree.BTreeG[string]
}

// Default returns the built-in vocabulary.
func Default() *Vocabulary {
	return builtin
}

// New builds a vocabulary from words, upper-casing them and dropping entries
// that are not plain A-Z.
func New(words []string) *Vocabulary {
	tree := btree.NewOrderedG[string](8)
	for _, w := range words {
		w = strings.ToUpper(strings.TrimSpace(w))
		if !isPlainWord(w) {
			continue
		}
		tree.ReplaceOrInsert(w)
	}
	return &Vocabulary{tree: tree}
}

func isPlainWord(word string) bool {
	if word == "" {
		return false
	}
	for i := 0; i < len(word); i++ {
		if word[i] < 'A' || word[i] > 'Z' {
			return false
		}
	}
	return true
}

// Load reads one word per line from path.
func Load(path string) (*Vocabulary, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only word list.
			_ = cerr
		}
	}()

	var words []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	v := New(words)
	if v.Len() == 0 {
		return nil, fmt.Errorf("word list %s has no usable words", path)
	}
	return v, nil
}

// Contains reports whether word is in the vocabulary. Matching is exact.
func (v *Vocabulary) Contains(word string) bool {
	return v.tree.Has(word)
}

// Len returns the number of words.
func (v *Vocabulary) Len() int {
	return v.tree.Len()
}

// Words returns all words in sorted order.
func (v *Vocabulary) Words() []string {
	out := make([]string, 0, v.tree.Len())
	v.tree.Ascend(func(w string) bool {
		out = append(out, w)
		return true
	})
	return out
}

// WithPrefix returns the sorted words starting with prefix.
func (v *Vocabulary) WithPrefix(prefix string) []string {
	var out []string
	v.tree.AscendGreaterOrEqual(prefix, func(w string) bool {
		if !strings.HasPrefix(w, prefix) {
			return false
		}
		out = append(out, w)
		return true
	})
	return out
}

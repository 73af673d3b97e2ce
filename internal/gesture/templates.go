// Package gesture holds the canonical glove readings for each letter.
package gesture

import (
	"fmt"
	"sort"
)

// Fingers is the number of bend sensors on the glove.
const Fingers = 5

// Reading is one sample of the five finger-bend sensors, thumb first.
type Reading [Fingers]int

// Floats converts the reading to a feature vector.
func (r Reading) Floats() []float64 {
	out := make([]float64, Fingers)
	for i, v := range r {
		out[i] = float64(v)
	}
	return out
}

// Estimated sensor values for each alphabet gesture.
var templates = map[string]Reading{
	"A": {4000, 1000, 1000, 1000, 1000},
	"B": {1000, 4000, 4000, 4000, 4000},
	"C": {4000, 4000, 4000, 4000, 4000},
	"D": {1000, 4000, 1000, 1000, 1000},
	"E": {4000, 2000, 2000, 2000, 2000},
	"F": {4000, 2000, 2000, 1000, 1000},
	"G": {3900, 3900, 1000, 1000, 1000},
	"H": {1000, 4000, 4000, 1000, 1000},
	"I": {1000, 1000, 1000, 1000, 4000},
	"J": {1000, 1000, 1000, 1200, 4000},
	"K": {4000, 4000, 2000, 1000, 1000},
	"L": {4000, 4000, 1000, 1000, 1000},
	"M": {4000, 4000, 4000, 1000, 1000},
	"N": {4000, 4000, 1000, 1000, 4000},
	"O": {3700, 3700, 3700, 3700, 3700},
	"P": {4000, 4000, 4000, 1000, 1000},
	"Q": {4000, 4000, 2000, 2000, 2000},
	"R": {2000, 4400, 4000, 1000, 1000},
	"S": {4200, 4200, 4200, 4200, 4200},
	"T": {4000, 1000, 4000, 4000, 4000},
	"U": {1000, 4000, 4000, 1000, 1000},
	"V": {1000, 4000, 4000, 1000, 1100},
	"W": {1000, 4000, 4000, 4000, 1000},
	"X": {4000, 2000, 1000, 1000, 1000},
	"Y": {4000, 1000, 1000, 1000, 4000},
	"Z": {4000, 4000, 1000, 4000, 1000},
}

// Templates returns a copy of the template table.
func Templates() map[string]Reading {
	out := make(map[string]Reading, len(templates))
	for letter, reading := range templates {
		out[letter] = reading
	}
	return out
}

// Lookup returns the template for a letter.
func Lookup(letter string) (Reading, bool) {
	r, ok := templates[letter]
	return r, ok
}

// Letters returns the template letters in alphabetical order.
func Letters() []string {
	return SortedLetters(templates)
}

// SortedLetters returns the keys of a template table in alphabetical order.
func SortedLetters(table map[string]Reading) []string {
	letters := make([]string, 0, len(table))
	for letter := range table {
		letters = append(letters, letter)
	}
	sort.Strings(letters)
	return letters
}

// Validate checks that a template table is usable: at least one entry and
// every key a single letter A-Z. Readings always have Fingers values.
func Validate(table map[string]Reading) error {
	if len(table) == 0 {
		return fmt.Errorf("template table is empty")
	}
	for letter := range table {
		if len(letter) != 1 || letter[0] < 'A' || letter[0] > 'Z' {
			return fmt.Errorf("invalid template key %q", letter)
		}
	}
	return nil
}

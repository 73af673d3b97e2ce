// Package dataset builds noisy training examples from gesture templates.
package dataset

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/verte-zerg/signglove/internal/gesture"
)

// MaxNoise bounds the noise range so the draw width cannot overflow.
const MaxNoise = 1 << 20

// Example is one labelled feature vector.
type Example struct {
	Features []float64
	Label    string
}

// Generator produces randomized training examples.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a Generator whose output is reproducible for a seed.
func NewSeeded(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Generate produces perClass noisy copies of every template. Each value is
// shifted by a uniform integer in [-noise, noise]; results are not clamped.
func (g *Generator) Generate(templates map[string]gesture.Reading, perClass, noise int) ([]Example, error) {
	if perClass < 0 {
		return nil, fmt.Errorf("examples per class must be >= 0, got %d", perClass)
	}
	if noise < 0 || noise > MaxNoise {
		return nil, fmt.Errorf("noise range must be between 0 and %d, got %d", MaxNoise, noise)
	}
	letters := gesture.SortedLetters(templates)
	out := make([]Example, 0, len(letters)*perClass)
	for _, letter := range letters {
		reading := templates[letter]
		for i := 0; i < perClass; i++ {
			out = append(out, Example{
				Features: addNoise(g.rnd, reading, noise),
				Label:    letter,
			})
		}
	}
	return out, nil
}

func addNoise(rnd *rand.Rand, reading gesture.Reading, noise int) []float64 {
	values := make([]float64, len(reading))
	for i, v := range reading {
		values[i] = float64(v + rnd.Intn(2*noise+1) - noise)
	}
	return values
}

// Split shuffles examples with a fixed seed and holds out
// ceil(testFraction*n) of them for evaluation.
func Split(examples []Example, testFraction float64, seed int64) (train, test []Example, err error) {
	if testFraction <= 0 || testFraction >= 1 {
		return nil, nil, fmt.Errorf("test fraction must be between 0 and 1, got %v", testFraction)
	}
	n := len(examples)
	nTest := int(math.Ceil(testFraction * float64(n)))
	if n > 0 && nTest >= n {
		return nil, nil, fmt.Errorf("not enough examples to split: %d", n)
	}
	perm := rand.New(rand.NewSource(seed)).Perm(n)
	test = make([]Example, 0, nTest)
	train = make([]Example, 0, n-nTest)
	for i, idx := range perm {
		if i < nTest {
			test = append(test, examples[idx])
			continue
		}
		train = append(train, examples[idx])
	}
	return train, test, nil
}

// Labels returns the distinct labels present in examples.
func Labels(examples []Example) map[string]struct{} {
	out := map[string]struct{}{}
	for _, ex := range examples {
		out[ex.Label] = struct{}{}
	}
	return out
}

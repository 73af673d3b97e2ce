// Package forest implements a random forest classifier over small numeric
// feature vectors.
//
// Trees are CART classifiers grown to purity on bootstrap samples, choosing
// among sqrt(features) random candidate features at each split. Prediction
// averages the leaf class distributions of all trees and returns the label
// with the highest mean; ties resolve to the alphabetically first label.
package forest

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
)

// DefaultTrees is the ensemble size used when Params.Trees is zero.
const DefaultTrees = 100

// Params controls forest fitting.
type Params struct {
	Trees int
	// MaxFeatures is the number of candidate features per split; zero means
	// floor(sqrt(features)).
	MaxFeatures int
	Seed        int64
	// Workers bounds parallel tree construction; zero means GOMAXPROCS.
	Workers int
}

// Forest is a fitted, immutable random forest.
type Forest struct {
	classes  []string
	features int
	trees    []*Tree
}

// Fit grows a forest on rows x labelled y. The fitted forest depends only on
// the data and p.Seed, not on how tree construction is scheduled.
func Fit(ctx context.Context, x [][]float64, y []string, p Params) (*Forest, error) {
	if len(x) == 0 {
		return nil, fmt.Errorf("no training rows")
	}
	if len(x) != len(y) {
		return nil, fmt.Errorf("row count %d does not match label count %d", len(x), len(y))
	}
	features := len(x[0])
	if features == 0 {
		return nil, fmt.Errorf("rows have no features")
	}
	for i, row := range x {
		if len(row) != features {
			return nil, fmt.Errorf("row %d has %d features, expected %d", i, len(row), features)
		}
	}
	if p.Trees == 0 {
		p.Trees = DefaultTrees
	}
	if p.Trees < 0 {
		return nil, fmt.Errorf("tree count must be > 0, got %d", p.Trees)
	}
	maxFeatures := p.MaxFeatures
	if maxFeatures <= 0 {
		maxFeatures = int(math.Sqrt(float64(features)))
	}
	maxFeatures = min(max(maxFeatures, 1), features)
	workers := p.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	classes, encoded := encodeLabels(y)

	seeds := make([]int64, p.Trees)
	master := rand.New(rand.NewSource(p.Seed))
	for i := range seeds {
		seeds[i] = master.Int63()
	}

	trees := make([]*Tree, p.Trees)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range trees {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			trees[i] = fitTree(x, encoded, len(classes), maxFeatures, seeds[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fit forest: %w", err)
	}
	return &Forest{classes: classes, features: features, trees: trees}, nil
}

func encodeLabels(y []string) ([]string, []int) {
	set := map[string]struct{}{}
	for _, label := range y {
		set[label] = struct{}{}
	}
	classes := make([]string, 0, len(set))
	for label := range set {
		classes = append(classes, label)
	}
	sort.Strings(classes)
	index := make(map[string]int, len(classes))
	for i, c := range classes {
		index[c] = i
	}
	encoded := make([]int, len(y))
	for i, label := range y {
		encoded[i] = index[label]
	}
	return classes, encoded
}

// Predict returns the most likely label for x.
func (f *Forest) Predict(x []float64) (string, error) {
	if len(x) != f.features {
		return "", fmt.Errorf("expected %d features, got %d", f.features, len(x))
	}
	sum := make([]float64, len(f.classes))
	for _, t := range f.trees {
		for c, p := range t.distribution(x) {
			sum[c] += p
		}
	}
	best := 0
	for c := 1; c < len(sum); c++ {
		if sum[c] > sum[best] {
			best = c
		}
	}
	return f.classes[best], nil
}

// Classes returns the sorted labels the forest can predict.
func (f *Forest) Classes() []string {
	return append([]string(nil), f.classes...)
}

// Features returns the expected input vector length.
func (f *Forest) Features() int {
	return f.features
}

// Size returns the number of trees.
func (f *Forest) Size() int {
	return len(f.trees)
}

// Nodes returns the total node count across all trees.
func (f *Forest) Nodes() int {
	total := 0
	for _, t := range f.trees {
		total += len(t.nodes)
	}
	return total
}

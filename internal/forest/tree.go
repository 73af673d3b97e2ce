package forest

import (
	"math/rand"
	"sort"
)

const leafFeature = -1

// node is a decision node or, when Feature is leafFeature, a leaf holding the
// class distribution of the training samples that reached it.
type node struct {
	Feature   int
	Threshold float64
	Left      int
	Right     int
	Value     []float64
}

// Tree is a fitted CART classification tree stored as a flat node slice with
// the root at index 0.
type Tree struct {
	nodes []node
}

// distribution returns the leaf class distribution for x.
func (t *Tree) distribution(x []float64) []float64 {
	i := 0
	for {
		n := &t.nodes[i]
		if n.Feature == leafFeature {
			return n.Value
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// Depth returns the number of edges on the longest root-to-leaf path.
func (t *Tree) Depth() int {
	var walk func(i int) int
	walk = func(i int) int {
		n := t.nodes[i]
		if n.Feature == leafFeature {
			return 0
		}
		return 1 + max(walk(n.Left), walk(n.Right))
	}
	return walk(0)
}

type treeBuilder struct {
	x           [][]float64
	y           []int
	nClasses    int
	maxFeatures int
	rnd         *rand.Rand
	nodes       []node
}

// fitTree grows a tree on a bootstrap sample of the rows until every leaf is
// pure or cannot be split further.
func fitTree(x [][]float64, y []int, nClasses, maxFeatures int, seed int64) *Tree {
	b := &treeBuilder{
		x:           x,
		y:           y,
		nClasses:    nClasses,
		maxFeatures: maxFeatures,
		rnd:         rand.New(rand.NewSource(seed)),
	}
	sample := make([]int, len(x))
	for i := range sample {
		sample[i] = b.rnd.Intn(len(x))
	}
	b.build(sample)
	return &Tree{nodes: b.nodes}
}

func (b *treeBuilder) build(idx []int) int {
	counts := b.classCounts(idx)
	id := len(b.nodes)
	b.nodes = append(b.nodes, node{Feature: leafFeature})
	if len(idx) < 2 || isPure(counts) {
		b.nodes[id].Value = normalize(counts, len(idx))
		return id
	}
	feature, threshold, ok := b.bestSplit(idx)
	if !ok {
		b.nodes[id].Value = normalize(counts, len(idx))
		return id
	}
	var left, right []int
	for _, i := range idx {
		if b.x[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	l := b.build(left)
	r := b.build(right)
	b.nodes[id] = node{Feature: feature, Threshold: threshold, Left: l, Right: r}
	return id
}

// bestSplit scans candidate features in random order and returns the split
// with the lowest weighted Gini impurity. Constant features do not count
// towards maxFeatures, and the scan continues past maxFeatures until at least
// one valid split is found.
func (b *treeBuilder) bestSplit(idx []int) (int, float64, bool) {
	nFeatures := len(b.x[0])
	sorted := make([]int, len(idx))
	leftCounts := make([]int, b.nClasses)
	rightCounts := make([]int, b.nClasses)

	found := false
	bestFeature, bestThreshold, bestScore := 0, 0.0, -1.0
	visited := 0
	for _, f := range b.rnd.Perm(nFeatures) {
		if found && visited >= b.maxFeatures {
			break
		}
		copy(sorted, idx)
		sort.SliceStable(sorted, func(i, j int) bool {
			return b.x[sorted[i]][f] < b.x[sorted[j]][f]
		})
		if b.x[sorted[0]][f] == b.x[sorted[len(sorted)-1]][f] {
			continue
		}
		visited++

		for c := range leftCounts {
			leftCounts[c] = 0
			rightCounts[c] = 0
		}
		for _, i := range sorted {
			rightCounts[b.y[i]]++
		}
		for pos := 0; pos < len(sorted)-1; pos++ {
			label := b.y[sorted[pos]]
			leftCounts[label]++
			rightCounts[label]--
			lo := b.x[sorted[pos]][f]
			hi := b.x[sorted[pos+1]][f]
			if lo == hi {
				continue
			}
			score := giniProxy(leftCounts, pos+1) + giniProxy(rightCounts, len(sorted)-pos-1)
			if score > bestScore {
				threshold := lo + (hi-lo)/2
				if threshold >= hi {
					threshold = lo
				}
				found = true
				bestFeature, bestThreshold, bestScore = f, threshold, score
			}
		}
	}
	return bestFeature, bestThreshold, found
}

func (b *treeBuilder) classCounts(idx []int) []int {
	counts := make([]int, b.nClasses)
	for _, i := range idx {
		counts[b.y[i]]++
	}
	return counts
}

// giniProxy is sum(count^2)/n. Maximising the sum of both children's proxies
// minimises the weighted Gini impurity of the split.
func giniProxy(counts []int, n int) float64 {
	if n == 0 {
		return 0
	}
	sum := 0
	for _, c := range counts {
		sum += c * c
	}
	return float64(sum) / float64(n)
}

func isPure(counts []int) bool {
	nonZero := 0
	for _, c := range counts {
		if c > 0 {
			nonZero++
		}
	}
	return nonZero <= 1
}

func normalize(counts []int, n int) []float64 {
	out := make([]float64, len(counts))
	if n == 0 {
		return out
	}
	for i, c := range counts {
		out[i] = float64(c) / float64(n)
	}
	return out
}

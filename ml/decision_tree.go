package ml

import (
	"math/rand"
	"sort"
)

const leaf = -1

// Node is one entry of a flattened tree. Leaves have Feature == -1 and
// carry the class distribution of the training rows that reached them.
type Node struct {
	Feature      int       `json:"f"`
	Threshold    float64   `json:"t,omitempty"`
	Left         int       `json:"l,omitempty"`
	Right        int       `json:"r,omitempty"`
	Distribution []float64 `json:"d,omitempty"`
}

// DecisionTree is a CART classification tree split on Gini impurity.
// Rows with x[Feature] <= Threshold go left.
type DecisionTree struct {
	Nodes []Node `json:"nodes"`
}

type treeBuilder struct {
	features    [][]float64
	codes       []int
	numClasses  int
	numFeatures int
	params      Hyperparameters
	rng         *rand.Rand
	nodes       []Node
}

func buildTree(features [][]float64, codes []int, rows []int, numClasses int, params Hyperparameters, rng *rand.Rand) *DecisionTree {
	b := &treeBuilder{
		features:    features,
		codes:       codes,
		numClasses:  numClasses,
		numFeatures: len(features[0]),
		params:      params,
		rng:         rng,
	}
	b.grow(rows, 0)
	return &DecisionTree{Nodes: b.nodes}
}

func (b *treeBuilder) grow(rows []int, depth int) int {
	id := len(b.nodes)
	b.nodes = append(b.nodes, Node{Feature: leaf})

	counts := b.classCounts(rows)
	if b.shouldStop(rows, counts, depth) {
		b.nodes[id].Distribution = distribution(counts, len(rows))
		return id
	}

	split, ok := b.bestSplit(rows, gini(counts, len(rows))*float64(len(rows)))
	if !ok || split.leftSize == 0 || split.leftSize == len(rows) {
		b.nodes[id].Distribution = distribution(counts, len(rows))
		return id
	}

	left := make([]int, 0, split.leftSize)
	right := make([]int, 0, len(rows)-split.leftSize)
	for _, r := range rows {
		if b.features[r][split.feature] <= split.threshold {
			left = append(left, r)
		} else {
			right = append(right, r)
		}
	}

	l := b.grow(left, depth+1)
	r := b.grow(right, depth+1)
	b.nodes[id] = Node{Feature: split.feature, Threshold: split.threshold, Left: l, Right: r}
	return id
}

func (b *treeBuilder) shouldStop(rows []int, counts []int, depth int) bool {
	if len(rows) < b.params.MinSamplesSplit || len(rows) < 2*b.params.MinSamplesLeaf {
		return true
	}
	if b.params.MaxDepth > 0 && depth >= b.params.MaxDepth {
		return true
	}
	nonZero := 0
	for _, c := range counts {
		if c > 0 {
			nonZero++
		}
	}
	return nonZero <= 1
}

type candidate struct {
	feature   int
	threshold float64
	impurity  float64
	leftSize  int
}

// bestSplit looks at a random subset of features first and only widens the
// search to the remaining features when the subset yields no improving split.
func (b *treeBuilder) bestSplit(rows []int, parentImpurity float64) (candidate, bool) {
	order := b.rng.Perm(b.numFeatures)
	k := b.params.featuresPerSplit(b.numFeatures)

	best := candidate{impurity: parentImpurity}
	found := false
	for i, f := range order {
		if i >= k && found {
			break
		}
		if c, ok := b.splitOn(rows, f); ok && c.impurity < best.impurity {
			best = c
			found = true
		}
	}
	return best, found
}

func (b *treeBuilder) splitOn(rows []int, feature int) (candidate, bool) {
	sorted := make([]int, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return b.features[sorted[i]][feature] < b.features[sorted[j]][feature]
	})

	total := b.classCounts(sorted)
	left := make([]int, b.numClasses)
	right := make([]int, b.numClasses)
	copy(right, total)

	n := len(sorted)
	minLeaf := b.params.MinSamplesLeaf
	best := candidate{feature: feature}
	found := false
	for i := 1; i < n; i++ {
		code := b.codes[sorted[i-1]]
		left[code]++
		right[code]--

		prev := b.features[sorted[i-1]][feature]
		cur := b.features[sorted[i]][feature]
		if prev == cur || i < minLeaf || n-i < minLeaf {
			continue
		}
		impurity := gini(left, i)*float64(i) + gini(right, n-i)*float64(n-i)
		if !found || impurity < best.impurity {
			best.impurity = impurity
			best.threshold = prev + (cur-prev)/2
			// Adjacent floats can round the midpoint up onto cur.
			if best.threshold >= cur {
				best.threshold = prev
			}
			best.leftSize = i
			found = true
		}
	}
	return best, found
}

func (b *treeBuilder) classCounts(rows []int) []int {
	counts := make([]int, b.numClasses)
	for _, r := range rows {
		counts[b.codes[r]]++
	}
	return counts
}

func gini(counts []int, n int) float64 {
	if n == 0 {
		return 0
	}
	sum := 0.0
	for _, c := range counts {
		p := float64(c) / float64(n)
		sum += p * p
	}
	return 1 - sum
}

func distribution(counts []int, n int) []float64 {
	d := make([]float64, len(counts))
	if n == 0 {
		return d
	}
	for i, c := range counts {
		d[i] = float64(c) / float64(n)
	}
	return d
}

// leafFor walks the tree for x and returns the leaf distribution.
func (t *DecisionTree) leafFor(x []float64) []float64 {
	i := 0
	for {
		n := t.Nodes[i]
		if n.Feature == leaf {
			return n.Distribution
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

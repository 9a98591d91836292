// Package ml implements the unsupervised outlier model used by the
// process anomaly detector: an ensemble of randomized isolation trees.
//
// Anomalies isolate in fewer random splits than normal points because
// they sit in sparse regions of feature space. Each tree partitions a
// random subsample of the training rows by repeatedly picking a random
// feature and a random split value within that feature's observed
// range. The average path length to isolate a query point, normalized
// by the expected path length for the subsample size, yields a score
// in (0,1] where values near 1 mean strong isolation.
package ml

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// ErrNotTrained is returned when scoring is requested before Fit has
// completed successfully.
var ErrNotTrained = errors.New("isolation forest: model not trained")

const (
	// DefaultNumTrees is the ensemble size.
	DefaultNumTrees = 100

	// DefaultSubsampleSize is the per-tree training subsample,
	// capped at the training set size.
	DefaultSubsampleSize = 256

	// eulerMascheroni is used in the harmonic-number approximation
	// H(n) ~ ln(n) + gamma.
	eulerMascheroni = 0.5772156649015329
)

// isolationNode is one node of an isolation tree. Trees are immutable
// once built and owned exclusively by their forest.
type isolationNode struct {
	splitFeature int
	splitValue   float64
	left         *isolationNode
	right        *isolationNode
	size         int
	leaf         bool
}

// IsolationForest scores feature vectors by how quickly random
// partitioning isolates them. A fixed seed makes subsample selection
// and split choices reproducible.
type IsolationForest struct {
	numTrees      int
	subsampleSize int
	contamination float64
	rng           *rand.Rand

	trees     []*isolationNode
	sampleLen int
	width     int
	threshold float64
	trained   bool
}

// Options configures an IsolationForest.
type Options struct {
	// NumTrees is the ensemble size; DefaultNumTrees when zero.
	NumTrees int

	// SubsampleSize is the per-tree subsample; DefaultSubsampleSize
	// when zero. Always capped at the training set size.
	SubsampleSize int

	// Contamination is the expected anomalous fraction of the
	// training population, used to place the decision threshold.
	Contamination float64

	// Seed seeds the forest's random source.
	Seed int64
}

// NewIsolationForest creates an untrained forest.
func NewIsolationForest(opts Options) *IsolationForest {
	numTrees := opts.NumTrees
	if numTrees <= 0 {
		numTrees = DefaultNumTrees
	}
	subsample := opts.SubsampleSize
	if subsample <= 0 {
		subsample = DefaultSubsampleSize
	}
	return &IsolationForest{
		numTrees:      numTrees,
		subsampleSize: subsample,
		contamination: opts.Contamination,
		rng:           rand.New(rand.NewSource(opts.Seed)),
	}
}

// Trained reports whether Fit has completed successfully.
func (f *IsolationForest) Trained() bool {
	return f.trained
}

// Threshold returns the decision threshold chosen at fit time. Zero
// until trained.
func (f *IsolationForest) Threshold() float64 {
	return f.threshold
}

// Fit builds the ensemble from the given row matrix and derives the
// decision threshold as the (1-contamination)-quantile of the training
// scores. Any previous ensemble is fully replaced; there is no
// incremental update.
func (f *IsolationForest) Fit(rows [][]float64) error {
	if len(rows) == 0 {
		return errors.New("isolation forest: empty training set")
	}
	width := len(rows[0])
	if width == 0 {
		return errors.New("isolation forest: zero-width feature vectors")
	}
	for i, row := range rows {
		if len(row) != width {
			return fmt.Errorf("isolation forest: row %d has %d features, want %d", i, len(row), width)
		}
	}

	sampleLen := f.subsampleSize
	if sampleLen > len(rows) {
		sampleLen = len(rows)
	}
	// Height limit from the iForest construction: average tree
	// height for n points grows as log2(n).
	maxDepth := int(math.Ceil(math.Log2(float64(sampleLen)))) + 1

	trees := make([]*isolationNode, 0, f.numTrees)
	for i := 0; i < f.numTrees; i++ {
		sample := f.subsample(rows, sampleLen)
		trees = append(trees, f.buildTree(sample, 0, maxDepth))
	}

	f.trees = trees
	f.sampleLen = sampleLen
	f.width = width
	f.trained = true

	f.threshold = f.trainingThreshold(rows)
	return nil
}

// trainingThreshold scores every training row and returns the score at
// the (1-contamination)-quantile, so that approximately the
// contamination fraction of the training set itself scores at or above
// it. With contamination 0 the threshold sits just above the maximum
// training score, so only stronger isolation than anything seen in
// training is flagged.
func (f *IsolationForest) trainingThreshold(rows [][]float64) float64 {
	scores := make([]float64, len(rows))
	for i, row := range rows {
		scores[i] = f.scoreTrained(row)
	}
	sort.Float64s(scores)

	if f.contamination <= 0 {
		return math.Nextafter(scores[len(scores)-1], math.Inf(1))
	}
	idx := int(math.Ceil(float64(len(scores)) * (1 - f.contamination)))
	if idx >= len(scores) {
		idx = len(scores) - 1
	}
	if idx < 0 {
		idx = 0
	}
	return scores[idx]
}

// Score returns the anomaly score for one feature vector. Values near
// 1 indicate strong isolation; values at or below 0.5 indicate normal
// density.
func (f *IsolationForest) Score(vector []float64) (float64, error) {
	if !f.trained {
		return 0, ErrNotTrained
	}
	if err := f.checkWidth(vector); err != nil {
		return 0, err
	}
	return f.scoreTrained(vector), nil
}

// Predict classifies one feature vector against the fit-time
// threshold. True means anomalous.
func (f *IsolationForest) Predict(vector []float64) (bool, float64, error) {
	score, err := f.Score(vector)
	if err != nil {
		return false, 0, err
	}
	return score >= f.threshold, score, nil
}

func (f *IsolationForest) checkWidth(vector []float64) error {
	if len(vector) != f.width {
		return fmt.Errorf("isolation forest: vector has %d features, want %d", len(vector), f.width)
	}
	return nil
}

// scoreTrained computes 2^(-E[h(x)] / c(sampleLen)).
func (f *IsolationForest) scoreTrained(vector []float64) float64 {
	total := 0.0
	for _, tree := range f.trees {
		total += pathLength(tree, vector, 0)
	}
	avg := total / float64(len(f.trees))
	c := averagePathLength(f.sampleLen)
	if c == 0 {
		return 0.5
	}
	return math.Pow(2, -avg/c)
}

// subsample draws sampleLen rows without replacement via a partial
// Fisher-Yates shuffle.
func (f *IsolationForest) subsample(rows [][]float64, sampleLen int) [][]float64 {
	idx := make([]int, len(rows))
	for i := range idx {
		idx[i] = i
	}
	for i := 0; i < sampleLen; i++ {
		j := i + f.rng.Intn(len(idx)-i)
		idx[i], idx[j] = idx[j], idx[i]
	}
	sample := make([][]float64, sampleLen)
	for i := 0; i < sampleLen; i++ {
		sample[i] = rows[idx[i]]
	}
	return sample
}

// buildTree recursively partitions the sample until a node holds at
// most one point, all points are identical, or the depth limit is hit.
func (f *IsolationForest) buildTree(rows [][]float64, depth, maxDepth int) *isolationNode {
	if len(rows) <= 1 || depth >= maxDepth || allIdentical(rows) {
		return &isolationNode{size: len(rows), leaf: true}
	}

	feature := f.rng.Intn(len(rows[0]))
	minVal, maxVal := featureRange(rows, feature)
	if minVal == maxVal {
		// Constant on the chosen feature; retrying other features
		// is not worth the bookkeeping at these sample sizes.
		return &isolationNode{size: len(rows), leaf: true}
	}
	split := minVal + f.rng.Float64()*(maxVal-minVal)

	var left, right [][]float64
	for _, row := range rows {
		if row[feature] < split {
			left = append(left, row)
		} else {
			right = append(right, row)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return &isolationNode{size: len(rows), leaf: true}
	}

	return &isolationNode{
		splitFeature: feature,
		splitValue:   split,
		left:         f.buildTree(left, depth+1, maxDepth),
		right:        f.buildTree(right, depth+1, maxDepth),
		size:         len(rows),
	}
}

// pathLength counts splits to isolate the vector, adding the expected
// remaining depth when a populated leaf is reached.
func pathLength(node *isolationNode, vector []float64, depth int) float64 {
	if node.leaf {
		return float64(depth) + averagePathLength(node.size)
	}
	if vector[node.splitFeature] < node.splitValue {
		return pathLength(node.left, vector, depth+1)
	}
	return pathLength(node.right, vector, depth+1)
}

// averagePathLength is c(n), the expected path length of an
// unsuccessful BST search over n points:
// c(n) = 2H(n-1) - 2(n-1)/n.
func averagePathLength(n int) float64 {
	switch {
	case n <= 1:
		return 0
	case n == 2:
		return 1
	}
	h := math.Log(float64(n-1)) + eulerMascheroni
	return 2*h - 2*float64(n-1)/float64(n)
}

func allIdentical(rows [][]float64) bool {
	first := rows[0]
	for _, row := range rows[1:] {
		for j := range first {
			if math.Abs(row[j]-first[j]) > 1e-12 {
				return false
			}
		}
	}
	return true
}

func featureRange(rows [][]float64, feature int) (float64, float64) {
	minVal, maxVal := rows[0][feature], rows[0][feature]
	for _, row := range rows[1:] {
		v := row[feature]
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	return minVal, maxVal
}

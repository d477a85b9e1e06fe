// Package ml implements the model primitives used by the prediction
// pipelines: a random forest classifier, a feed-forward neural network,
// feature scaling, and PCA.
package ml

import (
	"math"
	"math/rand"
	"sort"

	apperrors "nse-insight/internal/errors"
)

// ForestConfig holds random forest hyperparameters.
type ForestConfig struct {
	Trees       int   `json:"trees"`
	MaxDepth    int   `json:"max_depth"`
	MinSplit    int   `json:"min_split"`
	MinLeaf     int   `json:"min_leaf"`
	MaxFeatures int   `json:"max_features"` // 0 means sqrt(total)
	Seed        int64 `json:"seed"`
}

// TreeNode is a node in a decision tree. Leaf nodes carry a class
// probability distribution; internal nodes carry a split.
type TreeNode struct {
	Feature   int       `json:"feature,omitempty"`
	Threshold float64   `json:"threshold,omitempty"`
	Left      *TreeNode `json:"left,omitempty"`
	Right     *TreeNode `json:"right,omitempty"`
	Probs     []float64 `json:"probs,omitempty"`
}

// RandomForest is an ensemble of decision trees trained on bootstrap
// samples with per-split feature subsampling.
type RandomForest struct {
	Config      ForestConfig `json:"config"`
	Roots       []*TreeNode  `json:"roots"`
	NumClasses  int          `json:"num_classes"`
	NumFeatures int          `json:"num_features"`
	Importance  []float64    `json:"importance"`
}

// TrainForest trains a random forest on the given samples. Training is
// deterministic for a fixed seed.
func TrainForest(cfg ForestConfig, x [][]float64, y []int, numClasses int) (*RandomForest, error) {
	if len(x) == 0 || len(x) != len(y) {
		return nil, apperrors.Wrap(apperrors.ErrInsufficientData, "forest training")
	}
	if cfg.Trees <= 0 || cfg.MaxDepth <= 0 || numClasses < 2 {
		return nil, apperrors.New("invalid forest configuration")
	}

	numFeatures := len(x[0])
	maxFeatures := cfg.MaxFeatures
	if maxFeatures <= 0 || maxFeatures > numFeatures {
		maxFeatures = int(math.Sqrt(float64(numFeatures)))
		if maxFeatures < 1 {
			maxFeatures = 1
		}
	}

	rf := &RandomForest{
		Config:      cfg,
		NumClasses:  numClasses,
		NumFeatures: numFeatures,
		Importance:  make([]float64, numFeatures),
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	n := len(x)

	for t := 0; t < cfg.Trees; t++ {
		// Bootstrap sample
		indices := make([]int, n)
		for i := range indices {
			indices[i] = rng.Intn(n)
		}
		builder := &treeBuilder{
			cfg:         cfg,
			x:           x,
			y:           y,
			numClasses:  numClasses,
			maxFeatures: maxFeatures,
			rng:         rng,
			importance:  rf.Importance,
			total:       float64(n),
		}
		rf.Roots = append(rf.Roots, builder.build(indices, 0))
	}

	// Normalize accumulated impurity decreases
	var totalImp float64
	for _, v := range rf.Importance {
		totalImp += v
	}
	if totalImp > 0 {
		for i := range rf.Importance {
			rf.Importance[i] /= totalImp
		}
	}

	return rf, nil
}

type treeBuilder struct {
	cfg         ForestConfig
	x           [][]float64
	y           []int
	numClasses  int
	maxFeatures int
	rng         *rand.Rand
	importance  []float64
	total       float64
}

func (b *treeBuilder) build(indices []int, depth int) *TreeNode {
	counts := make([]float64, b.numClasses)
	for _, i := range indices {
		counts[b.y[i]]++
	}

	if depth >= b.cfg.MaxDepth || len(indices) < b.cfg.MinSplit || pure(counts) {
		return leaf(counts)
	}

	feature, threshold, gain := b.bestSplit(indices, counts)
	if gain <= 0 {
		return leaf(counts)
	}

	var left, right []int
	for _, i := range indices {
		if b.x[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) < b.cfg.MinLeaf || len(right) < b.cfg.MinLeaf {
		return leaf(counts)
	}

	// Weighted impurity decrease, accumulated across the forest
	b.importance[feature] += gain * float64(len(indices)) / b.total

	return &TreeNode{
		Feature:   feature,
		Threshold: threshold,
		Left:      b.build(left, depth+1),
		Right:     b.build(right, depth+1),
	}
}

func (b *treeBuilder) bestSplit(indices []int, parentCounts []float64) (int, float64, float64) {
	parentGini := gini(parentCounts, float64(len(indices)))

	// Sample candidate features without replacement
	numFeatures := len(b.x[0])
	perm := b.rng.Perm(numFeatures)[:b.maxFeatures]

	bestFeature := -1
	bestThreshold := 0.0
	bestGain := 0.0

	for _, f := range perm {
		leftCounts := make([]float64, b.numClasses)
		rightCounts := append([]float64(nil), parentCounts...)
		nLeft := 0.0
		nRight := float64(len(indices))

		// Walk samples in value order, moving them left one at a time
		order := make([]int, len(indices))
		copy(order, indices)
		sortByFeature(order, b.x, f)

		for i := 0; i < len(order)-1; i++ {
			c := b.y[order[i]]
			leftCounts[c]++
			rightCounts[c]--
			nLeft++
			nRight--

			v, next := b.x[order[i]][f], b.x[order[i+1]][f]
			if v == next {
				continue
			}

			weighted := (nLeft*gini(leftCounts, nLeft) + nRight*gini(rightCounts, nRight)) / (nLeft + nRight)
			gain := parentGini - weighted
			if gain > bestGain {
				bestGain = gain
				bestFeature = f
				bestThreshold = (v + next) / 2
			}
		}
	}

	return bestFeature, bestThreshold, bestGain
}

func gini(counts []float64, n float64) float64 {
	if n == 0 {
		return 0
	}
	impurity := 1.0
	for _, c := range counts {
		p := c / n
		impurity -= p * p
	}
	return impurity
}

func pure(counts []float64) bool {
	nonZero := 0
	for _, c := range counts {
		if c > 0 {
			nonZero++
		}
	}
	return nonZero <= 1
}

func leaf(counts []float64) *TreeNode {
	var total float64
	for _, c := range counts {
		total += c
	}
	probs := make([]float64, len(counts))
	if total > 0 {
		for i, c := range counts {
			probs[i] = c / total
		}
	}
	return &TreeNode{Probs: probs}
}

// PredictProba returns the class probability distribution for one sample,
// averaged over all trees.
func (rf *RandomForest) PredictProba(features []float64) ([]float64, error) {
	if len(features) != rf.NumFeatures {
		return nil, apperrors.Wrapf(apperrors.ErrFeatureMismatch,
			"expected %d features, got %d", rf.NumFeatures, len(features))
	}
	probs := make([]float64, rf.NumClasses)
	for _, root := range rf.Roots {
		node := root
		for node.Probs == nil {
			if features[node.Feature] <= node.Threshold {
				node = node.Left
			} else {
				node = node.Right
			}
		}
		for i, p := range node.Probs {
			probs[i] += p
		}
	}
	for i := range probs {
		probs[i] /= float64(len(rf.Roots))
	}
	return probs, nil
}

// Predict returns the most probable class for one sample.
func (rf *RandomForest) Predict(features []float64) (int, error) {
	probs, err := rf.PredictProba(features)
	if err != nil {
		return 0, err
	}
	return argmax(probs), nil
}

// FeatureImportance returns the normalized impurity-decrease importances.
func (rf *RandomForest) FeatureImportance() []float64 {
	return append([]float64(nil), rf.Importance...)
}

func argmax(values []float64) int {
	best := 0
	for i, v := range values[1:] {
		if v > values[best] {
			best = i + 1
		}
	}
	return best
}

func sortByFeature(indices []int, x [][]float64, f int) {
	sort.SliceStable(indices, func(a, b int) bool {
		return x[indices[a]][f] < x[indices[b]][f]
	})
}

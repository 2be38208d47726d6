package anomaly

import (
	"math"
	"math/rand"
	"sort"
)

// Isolation forest parameters. The seed is fixed so the same input always
// produces identical verdicts.
const (
	minIsolationPoints = 10
	isolationTrees     = 100
	isolationSubsample = 256
	isolationSeed      = 42
)

const eulerMascheroni = 0.5772156649015329

type isoNode struct {
	left, right *isoNode
	feature     int
	split       float64
	size        int // external node: number of samples that terminated here
}

// DetectIsolation runs an isolation-forest ensemble over the stacked feature
// columns (rows = observations). It returns per-observation flags for the
// top contamination fraction and scores min-max normalized to [0,1], higher
// meaning more anomalous. Fewer than ten observations return all-false and
// zero scores; a zero-variance batch normalizes to 0.5 everywhere.
func DetectIsolation(features [][]float64, contamination float64) ([]bool, []float64) {
	n := len(features)
	flags := make([]bool, n)
	scores := make([]float64, n)
	if n < minIsolationPoints {
		return flags, scores
	}

	rng := rand.New(rand.NewSource(isolationSeed))
	sub := min(isolationSubsample, n)
	heightLimit := int(math.Ceil(math.Log2(float64(sub))))

	trees := make([]*isoNode, isolationTrees)
	for t := range trees {
		sample := make([]int, sub)
		for i := range sample {
			sample[i] = rng.Intn(n)
		}
		trees[t] = buildIsoTree(features, sample, 0, heightLimit, rng)
	}

	raw := make([]float64, n)
	cn := avgPathLength(float64(sub))
	for i, row := range features {
		var sum float64
		for _, tree := range trees {
			sum += pathLength(tree, row, 0)
		}
		mean := sum / float64(len(trees))
		raw[i] = math.Pow(2, -mean/cn)
	}

	// Flag the contamination share with the highest raw scores.
	k := int(float64(n) * contamination)
	if k > 0 {
		order := make([]int, n)
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool { return raw[order[a]] > raw[order[b]] })
		for _, idx := range order[:k] {
			flags[idx] = true
		}
	}

	minS, maxS := raw[0], raw[0]
	for _, s := range raw[1:] {
		minS = math.Min(minS, s)
		maxS = math.Max(maxS, s)
	}
	if maxS > minS {
		for i, s := range raw {
			scores[i] = (s - minS) / (maxS - minS)
		}
	} else {
		for i := range scores {
			scores[i] = 0.5
		}
	}
	return flags, scores
}

func buildIsoTree(features [][]float64, idx []int, depth, limit int, rng *rand.Rand) *isoNode {
	if depth >= limit || len(idx) <= 1 {
		return &isoNode{size: len(idx)}
	}
	nFeat := len(features[0])

	// Pick a feature with spread; all-constant partitions terminate.
	feat := -1
	var lo, hi float64
	for _, f := range rng.Perm(nFeat) {
		lo, hi = features[idx[0]][f], features[idx[0]][f]
		for _, i := range idx[1:] {
			v := features[i][f]
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		if hi > lo {
			feat = f
			break
		}
	}
	if feat < 0 {
		return &isoNode{size: len(idx)}
	}

	split := lo + rng.Float64()*(hi-lo)
	var left, right []int
	for _, i := range idx {
		if features[i][feat] < split {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	return &isoNode{
		feature: feat,
		split:   split,
		left:    buildIsoTree(features, left, depth+1, limit, rng),
		right:   buildIsoTree(features, right, depth+1, limit, rng),
	}
}

func pathLength(node *isoNode, row []float64, depth float64) float64 {
	if node.left == nil {
		return depth + avgPathLength(float64(node.size))
	}
	if row[node.feature] < node.split {
		return pathLength(node.left, row, depth+1)
	}
	return pathLength(node.right, row, depth+1)
}

// avgPathLength is c(n), the expected path length of an unsuccessful BST
// search, used to calibrate isolation depths.
func avgPathLength(n float64) float64 {
	if n <= 1 {
		return 0
	}
	return 2*(math.Log(n-1)+eulerMascheroni) - 2*(n-1)/n
}

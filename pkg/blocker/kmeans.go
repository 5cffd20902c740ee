// Package blocker partitions a pruned posting list into geometrically
// coherent blocks, either by a fixed stride or by clustering document ids
// around randomly sampled centroids (spec §4.D).
package blocker

import (
	"errors"
	"math"
	"math/rand"

	"github.com/fschlatt/seismic/pkg/sparse"
)

// ErrNotImplemented is returned when truncated k-means training is
// requested: the spec reserves the parameter but leaves the path
// unimplemented, and callers must fail loudly rather than silently fall
// back to full centroid comparisons.
var ErrNotImplemented = errors.New("blocker: truncated k-means training is not implemented")

// KMeansConfig configures the random-k-means blocker.
type KMeansConfig struct {
	CentroidFraction        float32
	TruncatedKMeansTraining bool
	TruncationSize          int
	MinClusterSize          int
}

// RandomKMeans clusters the documents named by docIDs around randomly
// sampled centroids, dissolves undersized clusters into the next-best
// surviving centroid, and returns the documents reordered by cluster
// (centroid-id order, empties dropped) together with the resulting block
// offsets.
func RandomKMeans[C sparse.Component, T sparse.Value](docIDs []int, dataset *sparse.Dataset[C, T], cfg KMeansConfig, rng *rand.Rand) ([]int, []int, error) {
	if len(docIDs) == 0 {
		return nil, []int{0}, nil
	}
	if cfg.TruncatedKMeansTraining {
		return nil, nil, ErrNotImplemented
	}

	n := len(docIDs)
	nCentroids := int(cfg.CentroidFraction * float32(n))
	if nCentroids < 1 {
		nCentroids = 1
	}
	if nCentroids > n {
		nCentroids = n
	}

	perm := rng.Perm(n)
	centroidIdx := perm[:nCentroids]

	dim := dataset.Dim()
	centroidComponents := make([][]C, nCentroids)
	centroidValues := make([][]float32, nCentroids)
	centroidDense := make([][]float32, nCentroids)
	for ci, idx := range centroidIdx {
		comps, vals := dataset.Get(docIDs[idx])
		valsF32 := make([]float32, len(vals))
		dense := make([]float32, dim)
		for i, v := range vals {
			f := v.Float32()
			valsF32[i] = f
			dense[int(comps[i])] = f
		}
		centroidComponents[ci] = comps
		centroidValues[ci] = valsF32
		centroidDense[ci] = dense
	}

	// scores[i][ci] is the inner product of document i against centroid ci;
	// kept around so dissolved clusters can be redistributed without
	// recomputing distances.
	scores := make([][]float32, n)
	assignment := make([]int, n)
	for i, docID := range docIDs {
		comps, vals := dataset.Get(docID)
		row := make([]float32, nCentroids)
		best, bestScore := 0, float32(math.Inf(-1))
		for ci := 0; ci < nCentroids; ci++ {
			var s float32
			if len(centroidComponents[ci]) < sparse.ThresholdBinarySearch {
				s = sparse.DotSparseMerge(centroidComponents[ci], centroidValues[ci], comps, vals)
			} else {
				s = sparse.DotDenseSparse(centroidDense[ci], comps, vals)
			}
			row[ci] = s
			if s > bestScore {
				bestScore = s
				best = ci
			}
		}
		scores[i] = row
		assignment[i] = best
	}

	clusters := make([][]int, nCentroids)
	for i, c := range assignment {
		clusters[c] = append(clusters[c], i)
	}

	dissolved := make([]bool, nCentroids)
	survivors := 0
	for c := range clusters {
		if len(clusters[c]) > 0 && len(clusters[c]) < cfg.MinClusterSize {
			dissolved[c] = true
		} else if len(clusters[c]) > 0 {
			survivors++
		}
	}
	if survivors == 0 {
		// Every non-empty cluster is undersized: dissolving all of them
		// would leave nothing to redistribute to, so keep the clustering
		// as-is rather than producing an empty result.
		for c := range dissolved {
			dissolved[c] = false
		}
	} else {
		for c := range clusters {
			if !dissolved[c] {
				continue
			}
			members := clusters[c]
			clusters[c] = nil
			for _, i := range members {
				best, bestScore := -1, float32(math.Inf(-1))
				for ci := 0; ci < nCentroids; ci++ {
					if dissolved[ci] {
						continue
					}
					s := scores[i][ci]
					if s > bestScore {
						bestScore = s
						best = ci
					}
				}
				clusters[best] = append(clusters[best], i)
			}
		}
	}

	reordered := make([]int, 0, n)
	blockOffsets := make([]int, 0, nCentroids+1)
	blockOffsets = append(blockOffsets, 0)
	for c := 0; c < nCentroids; c++ {
		if len(clusters[c]) == 0 {
			continue
		}
		for _, i := range clusters[c] {
			reordered = append(reordered, docIDs[i])
		}
		blockOffsets = append(blockOffsets, len(reordered))
	}

	return reordered, blockOffsets, nil
}

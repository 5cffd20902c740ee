package blocker

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/fschlatt/seismic/pkg/sparse"
)

func clusterableDataset(t *testing.T) (*sparse.Dataset[uint16, sparse.F32], []int) {
	t.Helper()
	// Two well-separated clusters of 4 documents each, living on disjoint
	// components so inner product assignment is unambiguous.
	var components []uint16
	var values []sparse.F32
	offsets := []int{0}
	for i := 0; i < 4; i++ {
		components = append(components, 0)
		values = append(values, 1)
		offsets = append(offsets, len(components))
	}
	for i := 0; i < 4; i++ {
		components = append(components, 1)
		values = append(values, 1)
		offsets = append(offsets, len(components))
	}
	ds, err := sparse.New[uint16, sparse.F32](components, values, offsets, 2)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	docIDs := make([]int, 8)
	for i := range docIDs {
		docIDs[i] = i
	}
	return ds, docIDs
}

func TestRandomKMeansPreservesAllDocuments(t *testing.T) {
	ds, docIDs := clusterableDataset(t)
	cfg := KMeansConfig{CentroidFraction: 0.25, MinClusterSize: 2}
	rng := rand.New(rand.NewSource(1))

	reordered, blockOffsets, err := RandomKMeans(docIDs, ds, cfg, rng)
	if err != nil {
		t.Fatalf("RandomKMeans() error = %v", err)
	}
	if len(reordered) != len(docIDs) {
		t.Fatalf("RandomKMeans() returned %d docs, want %d", len(reordered), len(docIDs))
	}

	seen := make(map[int]bool)
	for _, id := range reordered {
		if seen[id] {
			t.Errorf("RandomKMeans() duplicated document %d", id)
		}
		seen[id] = true
	}
	for _, id := range docIDs {
		if !seen[id] {
			t.Errorf("RandomKMeans() dropped document %d", id)
		}
	}

	if blockOffsets[0] != 0 {
		t.Errorf("blockOffsets[0] = %d, want 0", blockOffsets[0])
	}
	if last := blockOffsets[len(blockOffsets)-1]; last != len(reordered) {
		t.Errorf("final blockOffsets entry = %d, want %d", last, len(reordered))
	}
	for i := 1; i < len(blockOffsets); i++ {
		if blockOffsets[i] <= blockOffsets[i-1] {
			t.Errorf("blockOffsets not strictly increasing at index %d: %v", i, blockOffsets)
		}
	}
}

func TestRandomKMeansEmptyInput(t *testing.T) {
	ds, _ := clusterableDataset(t)
	cfg := KMeansConfig{CentroidFraction: 0.25, MinClusterSize: 2}
	rng := rand.New(rand.NewSource(1))

	reordered, blockOffsets, err := RandomKMeans(nil, ds, cfg, rng)
	if err != nil {
		t.Fatalf("RandomKMeans() error = %v", err)
	}
	if len(reordered) != 0 {
		t.Errorf("RandomKMeans(nil) = %v, want empty", reordered)
	}
	if len(blockOffsets) != 1 || blockOffsets[0] != 0 {
		t.Errorf("RandomKMeans(nil) blockOffsets = %v, want [0]", blockOffsets)
	}
}

func TestRandomKMeansTruncatedTrainingNotImplemented(t *testing.T) {
	ds, docIDs := clusterableDataset(t)
	cfg := KMeansConfig{CentroidFraction: 0.25, MinClusterSize: 2, TruncatedKMeansTraining: true}
	rng := rand.New(rand.NewSource(1))

	_, _, err := RandomKMeans(docIDs, ds, cfg, rng)
	if !errors.Is(err, ErrNotImplemented) {
		t.Errorf("RandomKMeans() error = %v, want ErrNotImplemented", err)
	}
}

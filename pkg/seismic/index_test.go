package seismic

import (
	"errors"
	"testing"

	"github.com/fschlatt/seismic/pkg/sparse"
)

func corpus(t *testing.T) *sparse.Dataset[uint16, sparse.F32] {
	t.Helper()
	// 5 documents over a 6-dimensional vocabulary, each with a distinct
	// "signature" component so nearest-neighbor search has one clear winner
	// per query.
	components := []uint16{
		0, 1, // doc0
		1, 2, // doc1
		2, 3, // doc2
		3, 4, // doc3
		4, 5, // doc4
	}
	values := []sparse.F32{
		3, 1,
		3, 1,
		3, 1,
		3, 1,
		3, 1,
	}
	offsets := []int{0, 2, 4, 6, 8, 10}
	ds, err := sparse.New[uint16, sparse.F32](components, values, offsets, 6)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return ds
}

func noPruningConfig() Configuration {
	return Configuration{
		Pruning:       PruningStrategy{Kind: PruningFixedSize, NPostings: 1000},
		Blocking:      BlockingStrategy{Kind: BlockingFixedSize, BlockSize: 1000},
		Summarization: SummarizationStrategy{Kind: SummarizationEnergyPreserving, SummaryEnergy: 1.0},
		Seed:          7,
	}
}

func TestBuildProducesOnePostingListPerComponent(t *testing.T) {
	ds := corpus(t)
	idx, err := Build(ds, noPruningConfig())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if got, want := idx.NumComponents(), ds.Dim(); got != want {
		t.Errorf("NumComponents() = %d, want %d", got, want)
	}
	// Component 0 only appears in doc0.
	if got, want := idx.List(0).Len(), 1; got != want {
		t.Errorf("List(0).Len() = %d, want %d", got, want)
	}
	// Component 1 appears in doc0 and doc1.
	if got, want := idx.List(1).Len(), 2; got != want {
		t.Errorf("List(1).Len() = %d, want %d", got, want)
	}
}

func TestBuildRejectsInvalidConfiguration(t *testing.T) {
	ds := corpus(t)
	cfg := noPruningConfig()
	cfg.Pruning.NPostings = 0
	if _, err := Build(ds, cfg); !errors.Is(err, ErrConfigurationInvalid) {
		t.Errorf("Build() error = %v, want ErrConfigurationInvalid", err)
	}
}

func TestBuildPropagatesNotImplemented(t *testing.T) {
	ds := corpus(t)
	cfg := noPruningConfig()
	cfg.Blocking.Kind = BlockingRandomKmeans
	cfg.Blocking.CentroidFraction = 0.5
	cfg.Blocking.MinClusterSize = 1
	cfg.Blocking.TruncatedKMeansTraining = true
	if _, err := Build(ds, cfg); err == nil {
		t.Error("Build() with truncated k-means training returned nil error, want an error")
	}
}

func TestGlobalThresholdPruningCapsListLength(t *testing.T) {
	items := make([]scored, 10)
	for i := range items {
		items[i] = scored{docID: i, score: float32(i)}
	}
	perComponent := [][]scored{items, items} // 2 components sharing the same candidates

	pruned := globalThresholdPrune(perComponent, 2, 1.5)
	for c, docIDs := range pruned {
		if len(docIDs) > 3 { // ceil(2*1.5) == 3
			t.Errorf("component %d kept %d postings, want <= 3 (n_postings*max_fraction)", c, len(docIDs))
		}
	}
}

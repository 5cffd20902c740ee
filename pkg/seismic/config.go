package seismic

import "fmt"

// PruningKind selects how a raw per-component posting list is cut down
// before blocking (spec §4.H).
type PruningKind int

const (
	// PruningFixedSize keeps each posting list's top NPostings scores.
	PruningFixedSize PruningKind = iota
	// PruningGlobalThreshold pools every list's scores, keeps only those at
	// or above the (D*NPostings)-th largest overall (D = number of
	// components), then re-applies FixedSize
	// capped at NPostings*MaxFraction so no single list runs away.
	PruningGlobalThreshold
)

// PruningStrategy configures posting-list pruning.
type PruningStrategy struct {
	Kind        PruningKind
	NPostings   int
	MaxFraction float32 // GlobalThreshold only
}

// BlockingKind selects how a pruned posting list's documents are grouped
// into the blocks a summary is built over (spec §4.D).
type BlockingKind int

const (
	// BlockingFixedSize groups documents into contiguous runs of BlockSize,
	// in whatever order pruning left them.
	BlockingFixedSize BlockingKind = iota
	// BlockingRandomKmeans clusters documents around randomly sampled
	// centroids and orders blocks by centroid id.
	BlockingRandomKmeans
)

// BlockingStrategy configures block formation.
type BlockingStrategy struct {
	Kind BlockingKind

	BlockSize int // FixedSize only

	CentroidFraction        float32 // RandomKmeans only
	TruncatedKMeansTraining bool
	TruncationSize          int
	MinClusterSize          int
}

// SummarizationKind selects how a block's documents are collapsed into one
// summary vector (spec §4.E).
type SummarizationKind int

const (
	// SummarizationFixedSize keeps the NComponents highest per-component
	// maxima.
	SummarizationFixedSize SummarizationKind = iota
	// SummarizationEnergyPreserving keeps the shortest value-sorted prefix
	// whose cumulative sum exceeds SummaryEnergy times the total.
	SummarizationEnergyPreserving
)

// SummarizationStrategy configures block summarization.
type SummarizationStrategy struct {
	Kind SummarizationKind

	NComponents   int     // FixedSize only
	SummaryEnergy float32 // EnergyPreserving only
}

// Configuration bundles everything InvertedIndex.Build needs to go from a
// forward Dataset to a queryable index (spec §6).
type Configuration struct {
	Pruning       PruningStrategy
	Blocking      BlockingStrategy
	Summarization SummarizationStrategy

	// Seed drives every random choice the build makes. Each posting list's
	// k-means run derives its own stream from Seed and the list's component
	// id, so a parallel build is reproducible regardless of goroutine
	// scheduling order (spec invariant: build determinism).
	Seed int64
}

// DefaultConfiguration mirrors the reference build tool's flag defaults:
// n_postings=3500 (the library default; the CLI's own default is larger,
// see cmd/cli), block_size=10, centroid_fraction=0.1, summary_energy=0.4,
// min_cluster_size=2, truncation disabled.
func DefaultConfiguration() Configuration {
	return Configuration{
		Pruning: PruningStrategy{
			Kind:      PruningFixedSize,
			NPostings: 3500,
		},
		Blocking: BlockingStrategy{
			Kind:                    BlockingRandomKmeans,
			BlockSize:               10,
			CentroidFraction:        0.1,
			TruncatedKMeansTraining: false,
			TruncationSize:          32,
			MinClusterSize:          2,
		},
		Summarization: SummarizationStrategy{
			Kind:          SummarizationEnergyPreserving,
			SummaryEnergy: 0.4,
		},
		Seed: 42,
	}
}

// Validate checks that every parameter is within the range the builder
// assumes. It does not check TruncatedKMeansTraining: that path fails at
// build time with ErrNotImplemented regardless of how it's set here.
func (c Configuration) Validate() error {
	if c.Pruning.NPostings <= 0 {
		return fmt.Errorf("%w: pruning n_postings must be > 0, got %d", ErrConfigurationInvalid, c.Pruning.NPostings)
	}
	if c.Pruning.Kind == PruningGlobalThreshold && c.Pruning.MaxFraction <= 1 {
		return fmt.Errorf("%w: global threshold max_fraction must be > 1, got %f", ErrConfigurationInvalid, c.Pruning.MaxFraction)
	}
	switch c.Blocking.Kind {
	case BlockingFixedSize:
		if c.Blocking.BlockSize <= 0 {
			return fmt.Errorf("%w: blocking block_size must be > 0, got %d", ErrConfigurationInvalid, c.Blocking.BlockSize)
		}
	case BlockingRandomKmeans:
		if c.Blocking.CentroidFraction <= 0 || c.Blocking.CentroidFraction > 1 {
			return fmt.Errorf("%w: blocking centroid_fraction must be in (0,1], got %f", ErrConfigurationInvalid, c.Blocking.CentroidFraction)
		}
		if c.Blocking.MinClusterSize <= 0 {
			return fmt.Errorf("%w: blocking min_cluster_size must be > 0, got %d", ErrConfigurationInvalid, c.Blocking.MinClusterSize)
		}
	default:
		return fmt.Errorf("%w: unknown blocking kind %d", ErrConfigurationInvalid, c.Blocking.Kind)
	}
	switch c.Summarization.Kind {
	case SummarizationFixedSize:
		if c.Summarization.NComponents <= 0 {
			return fmt.Errorf("%w: summarization n_components must be > 0, got %d", ErrConfigurationInvalid, c.Summarization.NComponents)
		}
	case SummarizationEnergyPreserving:
		if c.Summarization.SummaryEnergy <= 0 || c.Summarization.SummaryEnergy > 1 {
			return fmt.Errorf("%w: summarization summary_energy must be in (0,1], got %f", ErrConfigurationInvalid, c.Summarization.SummaryEnergy)
		}
	default:
		return fmt.Errorf("%w: unknown summarization kind %d", ErrConfigurationInvalid, c.Summarization.Kind)
	}
	return nil
}

// QueryConfiguration configures Query (spec §4.I).
type QueryConfiguration struct {
	// K is the number of results to return.
	K int
	// QueryCut bounds how many of the query's highest-magnitude components
	// are used to pick which posting lists to visit.
	QueryCut int
	// HeapFactor scales the current k-th best score when deciding whether a
	// block can be skipped on its summary score alone: a block is skipped
	// when its summary dot product is < -HeapFactor*heap.Top().
	HeapFactor float32
}

// DefaultQueryConfiguration mirrors the reference query defaults.
func DefaultQueryConfiguration() QueryConfiguration {
	return QueryConfiguration{K: 10, QueryCut: 20, HeapFactor: 0.9}
}

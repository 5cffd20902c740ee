package seismic

import (
	"errors"
	"testing"
)

func TestDefaultConfigurationValidates(t *testing.T) {
	if err := DefaultConfiguration().Validate(); err != nil {
		t.Errorf("DefaultConfiguration().Validate() error = %v, want nil", err)
	}
}

func TestValidateRejectsBadParameters(t *testing.T) {
	tests := []struct {
		name string
		cfg  Configuration
	}{
		{
			name: "zero n_postings",
			cfg: Configuration{
				Pruning:       PruningStrategy{Kind: PruningFixedSize, NPostings: 0},
				Blocking:      BlockingStrategy{Kind: BlockingFixedSize, BlockSize: 1},
				Summarization: SummarizationStrategy{Kind: SummarizationFixedSize, NComponents: 1},
			},
		},
		{
			name: "global threshold max_fraction too small",
			cfg: Configuration{
				Pruning:       PruningStrategy{Kind: PruningGlobalThreshold, NPostings: 10, MaxFraction: 1},
				Blocking:      BlockingStrategy{Kind: BlockingFixedSize, BlockSize: 1},
				Summarization: SummarizationStrategy{Kind: SummarizationFixedSize, NComponents: 1},
			},
		},
		{
			name: "kmeans centroid fraction out of range",
			cfg: Configuration{
				Pruning:       PruningStrategy{Kind: PruningFixedSize, NPostings: 10},
				Blocking:      BlockingStrategy{Kind: BlockingRandomKmeans, CentroidFraction: 1.5, MinClusterSize: 2},
				Summarization: SummarizationStrategy{Kind: SummarizationFixedSize, NComponents: 1},
			},
		},
		{
			name: "energy preserving fraction zero",
			cfg: Configuration{
				Pruning:       PruningStrategy{Kind: PruningFixedSize, NPostings: 10},
				Blocking:      BlockingStrategy{Kind: BlockingFixedSize, BlockSize: 1},
				Summarization: SummarizationStrategy{Kind: SummarizationEnergyPreserving, SummaryEnergy: 0},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); !errors.Is(err, ErrConfigurationInvalid) {
				t.Errorf("Validate() error = %v, want ErrConfigurationInvalid", err)
			}
		})
	}
}

package seismic

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"unsafe"

	"github.com/fschlatt/seismic/pkg/sparse"
	"github.com/fschlatt/seismic/pkg/summary"
)

// scored is one (document, score) pair produced by distributing a dataset
// across its components, before pruning.
type scored struct {
	docID int
	score float32
}

// InvertedIndex is the built, queryable index (spec §4.H): one PostingList
// per component, built against a frozen forward Dataset.
type InvertedIndex[C sparse.Component, T sparse.Value] struct {
	dataset *sparse.Dataset[C, T]
	lists   []*PostingList[C]
	cfg     Configuration
}

// Build distributes dataset's vectors by component, prunes each component's
// candidate list, blocks and summarizes the survivors in parallel (one
// goroutine per component), and freezes the result (spec §4.H).
func Build[C sparse.Component, T sparse.Value](dataset *sparse.Dataset[C, T], cfg Configuration) (*InvertedIndex[C, T], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	dim := dataset.Dim()
	perComponent := make([][]scored, dim)
	for docID := 0; docID < dataset.Len(); docID++ {
		comps, vals := dataset.Get(docID)
		for i, c := range comps {
			perComponent[c] = append(perComponent[c], scored{docID: docID, score: vals[i].Float32()})
		}
	}

	var prunedDocIDs [][]int
	switch cfg.Pruning.Kind {
	case PruningFixedSize:
		prunedDocIDs = make([][]int, dim)
		for c := 0; c < dim; c++ {
			prunedDocIDs[c] = fixedSizePrune(perComponent[c], cfg.Pruning.NPostings)
		}
	case PruningGlobalThreshold:
		prunedDocIDs = globalThresholdPrune(perComponent, cfg.Pruning.NPostings, cfg.Pruning.MaxFraction)
	default:
		return nil, fmt.Errorf("%w: unknown pruning kind %d", ErrConfigurationInvalid, cfg.Pruning.Kind)
	}

	lists := make([]*PostingList[C], dim)
	errs := make([]error, dim)
	var wg sync.WaitGroup
	for c := 0; c < dim; c++ {
		if len(prunedDocIDs[c]) == 0 {
			lists[c] = &PostingList[C]{blockOffsets: []int{0}, summaries: summary.Build[C](nil, nil)}
			continue
		}
		wg.Add(1)
		go func(c int) {
			defer wg.Done()
			pl, err := BuildPostingList(dataset, prunedDocIDs[c], cfg, cfg.Seed+int64(c))
			if err != nil {
				errs[c] = err
				return
			}
			lists[c] = pl
		}(c)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return &InvertedIndex[C, T]{dataset: dataset, lists: lists, cfg: cfg}, nil
}

// Assemble reassembles an InvertedIndex from its already-built parts, as
// read back from a serialized index. Unlike Build, it performs no pruning,
// blocking, or summarization.
func Assemble[C sparse.Component, T sparse.Value](dataset *sparse.Dataset[C, T], lists []*PostingList[C], cfg Configuration) *InvertedIndex[C, T] {
	return &InvertedIndex[C, T]{dataset: dataset, lists: lists, cfg: cfg}
}

// Dataset returns the index's underlying forward store.
func (idx *InvertedIndex[C, T]) Dataset() *sparse.Dataset[C, T] { return idx.dataset }

// NumComponents returns the number of posting lists (the dataset's
// dimensionality).
func (idx *InvertedIndex[C, T]) NumComponents() int { return len(idx.lists) }

// List returns component c's posting list.
func (idx *InvertedIndex[C, T]) List(c int) *PostingList[C] { return idx.lists[c] }

// Config returns the configuration the index was built with.
func (idx *InvertedIndex[C, T]) Config() Configuration { return idx.cfg }

// SpaceUsageBytes reports the index's approximate resident size: the
// forward dataset's flat buffers plus every posting list's packed
// postings and quantized summaries.
func (idx *InvertedIndex[C, T]) SpaceUsageBytes() int {
	var c C
	var t T
	total := idx.dataset.Nnz()*(int(unsafe.Sizeof(c))+int(unsafe.Sizeof(t))) + (idx.dataset.Len()+1)*8
	for _, pl := range idx.lists {
		total += pl.SpaceUsageBytes()
	}
	return total
}

func fixedSizePrune(items []scored, n int) []int {
	if n <= 0 || len(items) == 0 {
		return nil
	}
	sorted := make([]scored, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].score > sorted[j].score })
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	docIDs := make([]int, len(sorted))
	for i, s := range sorted {
		docIDs[i] = s.docID
	}
	return docIDs
}

// globalThresholdPrune pools every component's candidates and keeps the
// overall top D*n (D = number of components), so each list survives with
// n postings on average, then re-applies fixedSizePrune per component
// capped at n*maxFraction so no single component's list grows unbounded
// just because many of its documents cleared the global bar.
func globalThresholdPrune(perComponent [][]scored, n int, maxFraction float32) [][]int {
	total := 0
	for _, lst := range perComponent {
		total += len(lst)
	}
	pooled := make([]scored, 0, total)
	for _, lst := range perComponent {
		pooled = append(pooled, lst...)
	}

	totPostings := len(perComponent) * n
	if total > 0 && totPostings > total-1 {
		totPostings = total - 1
	}
	threshold := nthLargestScore(pooled, totPostings)
	perListCap := int(math.Ceil(float64(n) * float64(maxFraction)))

	result := make([][]int, len(perComponent))
	for c, lst := range perComponent {
		var kept []scored
		for _, s := range lst {
			if s.score >= threshold {
				kept = append(kept, s)
			}
		}
		result[c] = fixedSizePrune(kept, perListCap)
	}
	return result
}

// nthLargestScore returns the n-th largest score among all, or +Inf if
// nothing should clear the bar (n<=0), or -Inf if every candidate does
// (n exceeds the population).
func nthLargestScore(all []scored, n int) float32 {
	if n <= 0 {
		return float32(math.Inf(1))
	}
	if n > len(all) {
		return float32(math.Inf(-1))
	}
	sorted := make([]scored, len(all))
	copy(sorted, all)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].score > sorted[j].score })
	return sorted[n-1].score
}

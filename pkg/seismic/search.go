package seismic

import (
	"sort"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/fschlatt/seismic/pkg/sparse"
	"github.com/fschlatt/seismic/pkg/topk"
)

// queryComponent pairs a query component with its value, so the query can
// be sorted by magnitude without losing the component it came from.
type queryComponent[C sparse.Component] struct {
	component C
	value     float32
}

// Query runs an approximate top-k search against the index (spec §4.I).
// queryComponents and queryValues must be sorted by component id ascending,
// the same convention every stored sparse vector follows. Components at or
// beyond the index's dimensionality are skipped. Each returned Result's
// Offset field holds the document id (mapped back from the forward offset
// via OffsetToID), not the flat-buffer offset.
func Query[C sparse.Component, T sparse.Value](idx *InvertedIndex[C, T], queryComponents []C, queryValues []float32, qcfg QueryConfiguration) []topk.Result {
	pairs := make([]queryComponent[C], len(queryComponents))
	for i := range queryComponents {
		pairs[i] = queryComponent[C]{component: queryComponents[i], value: queryValues[i]}
	}
	sort.Slice(pairs, func(i, j int) bool {
		return abs32(pairs[i].value) > abs32(pairs[j].value)
	})
	cut := qcfg.QueryCut
	if cut > len(pairs) {
		cut = len(pairs)
	}

	var dense []float32
	if len(queryComponents) >= sparse.ThresholdBinarySearch {
		dense = make([]float32, idx.dataset.Dim())
		for i, c := range queryComponents {
			if int(c) < len(dense) {
				dense[int(c)] = queryValues[i]
			}
		}
	}

	heap := topk.New(qcfg.K)
	visited := roaring64.New()

	for i := 0; i < cut; i++ {
		component := int(pairs[i].component)
		if component >= idx.NumComponents() {
			continue
		}
		list := idx.lists[component]
		if list.Len() == 0 {
			continue
		}
		searchList(idx, list, queryComponents, queryValues, dense, qcfg, heap, visited)
	}

	results := heap.TopK()
	out := make([]topk.Result, len(results))
	for i, r := range results {
		out[i] = topk.Result{Similarity: r.Similarity, Offset: uint64(idx.dataset.OffsetToID(int(r.Offset)))}
	}
	// Stable-sort descending by similarity, tie-broken by smaller document
	// id, since the heap only orders by similarity.
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Similarity != out[j].Similarity {
			return out[i].Similarity > out[j].Similarity
		}
		return out[i].Offset < out[j].Offset
	})
	return out
}

// searchList evaluates one posting list against a query: it matmuls the
// query against the list's block summaries, skips any block whose summary
// score cannot possibly beat the current k-th best, and otherwise scores
// every document in the block. The next block to evaluate is prefetched
// one step ahead of the one currently being scored.
func searchList[C sparse.Component, T sparse.Value](
	idx *InvertedIndex[C, T],
	list *PostingList[C],
	queryComponents []C,
	queryValues []float32,
	dense []float32,
	qcfg QueryConfiguration,
	heap *topk.Heap,
	visited *roaring64.Bitmap,
) {
	scores := list.summaries.MatmulWithQuery(queryComponents, queryValues)

	// The skip test is re-checked against the heap's live state as blocks
	// are consumed, so a block near the end of the list can be pruned by a
	// k-th best the earlier blocks in this same list just tightened. At
	// most one block is held queued at a time: once a block survives the
	// test, the next surviving block is prefetched before the queued one
	// is actually evaluated.
	queued := -1
	for b := 0; b < list.NumBlocks(); b++ {
		if heap.Len() >= qcfg.K && scores[b] < -qcfg.HeapFactor*heap.Top() {
			continue
		}
		if queued >= 0 {
			prefetchBlock(idx.dataset, list, b)
			evaluateBlock(idx.dataset, list, queued, queryComponents, queryValues, dense, heap, visited)
		}
		queued = b
	}
	if queued >= 0 {
		evaluateBlock(idx.dataset, list, queued, queryComponents, queryValues, dense, heap, visited)
	}
}

func prefetchBlock[C sparse.Component, T sparse.Value](dataset *sparse.Dataset[C, T], list *PostingList[C], b int) {
	block := list.Block(b)
	if len(block) == 0 {
		return
	}
	offset, length := unpackOffsetLen(block[0])
	dataset.PrefetchVecWithOffset(offset, length)
}

func evaluateBlock[C sparse.Component, T sparse.Value](
	dataset *sparse.Dataset[C, T],
	list *PostingList[C],
	b int,
	queryComponents []C,
	queryValues []float32,
	dense []float32,
	heap *topk.Heap,
	visited *roaring64.Bitmap,
) {
	for _, word := range list.Block(b) {
		offset, length := unpackOffsetLen(word)
		key := uint64(offset)
		if visited.Contains(key) {
			continue
		}
		visited.Add(key)
		comps, vals := dataset.GetWithOffset(offset, length)
		dot := sparse.Dot(dense, queryComponents, queryValues, comps, vals)
		heap.Push(-dot, key)
	}
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

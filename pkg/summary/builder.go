// Package summary builds the per-block summary vectors (spec §4.E) and the
// quantized, packed store those summaries live in at query time (spec §4.F).
package summary

import (
	"sort"

	"github.com/fschlatt/seismic/pkg/sparse"
)

// maxUnion computes, for one block of documents, the per-component maximum
// value seen across the block. Shared by both summarization strategies.
func maxUnion[C sparse.Component, T sparse.Value](dataset *sparse.Dataset[C, T], block []int) map[C]float32 {
	agg := make(map[C]float32)
	for _, docID := range block {
		for c, v := range dataset.IterVector(docID) {
			f := v.Float32()
			if cur, ok := agg[c]; !ok || f > cur {
				agg[c] = f
			}
		}
	}
	return agg
}

type pair[C sparse.Component] struct {
	component C
	value     float32
}

func sortedByValueDesc[C sparse.Component](agg map[C]float32) []pair[C] {
	pairs := make([]pair[C], 0, len(agg))
	for c, v := range agg {
		pairs = append(pairs, pair[C]{component: c, value: v})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].value > pairs[j].value })
	return pairs
}

func toComponentsAscending[C sparse.Component](pairs []pair[C]) ([]C, []float32) {
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].component < pairs[j].component })
	components := make([]C, len(pairs))
	values := make([]float32, len(pairs))
	for i, p := range pairs {
		components[i] = p.component
		values[i] = p.value
	}
	return components, values
}

// FixedSize summarizes a block by taking the nComponents highest
// per-component maxima, then re-sorting by component id so the summary can
// be binary-searched like any other sparse vector.
func FixedSize[C sparse.Component, T sparse.Value](dataset *sparse.Dataset[C, T], block []int, nComponents int) ([]C, []float32) {
	agg := maxUnion(dataset, block)
	pairs := sortedByValueDesc(agg)
	if len(pairs) > nComponents {
		pairs = pairs[:nComponents]
	}
	return toComponentsAscending(pairs)
}

// EnergyPreserving summarizes a block by taking the shortest value-sorted
// prefix whose cumulative sum exceeds fraction times the total sum, then
// re-sorting that prefix by component id.
func EnergyPreserving[C sparse.Component, T sparse.Value](dataset *sparse.Dataset[C, T], block []int, fraction float32) ([]C, []float32) {
	agg := maxUnion(dataset, block)
	pairs := sortedByValueDesc(agg)

	var total float32
	for _, p := range pairs {
		total += p.value
	}

	var acc float32
	cut := len(pairs)
	for i, p := range pairs {
		acc += p.value
		if acc/total > fraction {
			cut = i + 1
			break
		}
	}
	return toComponentsAscending(pairs[:cut])
}

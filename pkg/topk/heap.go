// Package topk implements the bounded max-heap used to track the current
// k best query candidates, in the style of the teacher's hnsw candidate/
// result heaps (container/heap.Interface backed by a plain slice).
package topk

import "container/heap"

// Result is one entry of a drained top-k: an absolute similarity and the
// document offset it was computed against.
type Result struct {
	Similarity float32
	Offset     uint64
}

type item struct {
	key    float32 // caller-negated similarity; largest key is worst-of-best
	offset uint64
}

type items []item

func (h items) Len() int            { return len(h) }
func (h items) Less(i, j int) bool  { return h[i].key > h[j].key } // max-heap on key
func (h items) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *items) Push(x interface{}) { *h = append(*h, x.(item)) }
func (h *items) Pop() interface{} {
	old := *h
	n := len(old)
	top := old[n-1]
	*h = old[:n-1]
	return top
}

// Heap is a bounded max-heap of capacity k keyed by a float32. Callers push
// negated similarities so that the heap's max (Top) is the k-th best
// candidate seen so far — the one to evict when a better one arrives.
type Heap struct {
	h items
	k int
}

// New creates a heap with capacity k.
func New(k int) *Heap {
	return &Heap{h: make(items, 0, k), k: k}
}

// Len returns the number of entries currently held (≤ k).
func (q *Heap) Len() int { return q.h.Len() }

// Top returns the current maximum key (the worst of the best-k so far).
// Only meaningful once Len() > 0.
func (q *Heap) Top() float32 { return q.h[0].key }

// Push inserts unconditionally until the heap is full, then replaces the
// max if the new key is smaller.
func (q *Heap) Push(key float32, offset uint64) {
	if q.h.Len() < q.k {
		heap.Push(&q.h, item{key: key, offset: offset})
		return
	}
	if key < q.h[0].key {
		q.h[0] = item{key: key, offset: offset}
		heap.Fix(&q.h, 0)
	}
}

// TopK drains the heap into descending-similarity order (ascending stored
// key, since keys are negated similarities).
func (q *Heap) TopK() []Result {
	n := q.h.Len()
	results := make([]Result, n)
	for i := n - 1; i >= 0; i-- {
		top := heap.Pop(&q.h).(item)
		results[i] = Result{Similarity: -top.key, Offset: top.offset}
	}
	return results
}

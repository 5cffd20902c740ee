package summary

import (
	"math"
	"sort"

	"github.com/fschlatt/seismic/pkg/sparse"
)

// Quantized is the packed 8-bit summary store for one posting list's
// blocks (spec §4.F): B rows, each a quantized sparse vector sharing the
// dataset's global component space, plus the per-row min/scale needed to
// dequantize.
type Quantized[C sparse.Component] struct {
	mins       []float32
	scales     []float32
	components []C
	payload    []uint8
	offsets    []int
}

// Build quantizes B summary rows (each a component/value pair of slices)
// into a Quantized bundle. Each row is quantized independently: min and max
// are taken over that row's values, scale = (max-min)/255.
func Build[C sparse.Component](rowComponents [][]C, rowValues [][]float32) *Quantized[C] {
	b := len(rowValues)
	mins := make([]float32, b)
	scales := make([]float32, b)
	offsets := make([]int, b+1)

	total := 0
	for _, vs := range rowValues {
		total += len(vs)
	}
	components := make([]C, 0, total)
	payload := make([]uint8, 0, total)

	for row, vs := range rowValues {
		min, max := float32(math.Inf(1)), float32(math.Inf(-1))
		for _, v := range vs {
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
		if len(vs) == 0 {
			min, max = 0, 0
		}
		scale := (max - min) / 255
		mins[row] = min
		scales[row] = scale

		for i, v := range vs {
			var q uint8
			if scale > 0 {
				q = uint8(math.Round(float64((v - min) / scale)))
			}
			payload = append(payload, q)
			components = append(components, rowComponents[row][i])
		}
		offsets[row+1] = len(components)
	}

	return &Quantized[C]{mins: mins, scales: scales, components: components, payload: payload, offsets: offsets}
}

// FromParts rebuilds a Quantized bundle from its raw parts, as read back
// from a serialized index.
func FromParts[C sparse.Component](mins, scales []float32, components []C, payload []uint8, offsets []int) *Quantized[C] {
	return &Quantized[C]{mins: mins, scales: scales, components: components, payload: payload, offsets: offsets}
}

// Parts exposes the bundle's raw fields for serialization.
func (q *Quantized[C]) Parts() (mins, scales []float32, components []C, payload []uint8, offsets []int) {
	return q.mins, q.scales, q.components, q.payload, q.offsets
}

// Rows returns the number of summary rows (blocks) in the bundle.
func (q *Quantized[C]) Rows() int { return len(q.offsets) - 1 }

// Row returns row b's raw components, quantized payload, min, and scale.
func (q *Quantized[C]) Row(b int) ([]C, []uint8, float32, float32) {
	start, end := q.offsets[b], q.offsets[b+1]
	return q.components[start:end], q.payload[start:end], q.mins[b], q.scales[b]
}

// Dequantize reconstructs a row b value from its quantized code.
func (q *Quantized[C]) Dequantize(row int, code uint8) float32 {
	return q.mins[row] + q.scales[row]*float32(code)
}

// MatmulWithQuery computes the inner product of every summary row against
// the query, returning one dot product per row. queryComponents must be
// sorted ascending (the natural order a loaded sparse vector is already
// in), so each row's lookups are a binary search rather than a full scan.
func (q *Quantized[C]) MatmulWithQuery(queryComponents []C, queryValues []float32) []float32 {
	out := make([]float32, q.Rows())
	for b := 0; b < q.Rows(); b++ {
		start, end := q.offsets[b], q.offsets[b+1]
		min, scale := q.mins[b], q.scales[b]
		var sum float32
		for i := start; i < end; i++ {
			c := q.components[i]
			idx := sort.Search(len(queryComponents), func(j int) bool { return queryComponents[j] >= c })
			if idx < len(queryComponents) && queryComponents[idx] == c {
				sum += queryValues[idx] * (min + scale*float32(q.payload[i]))
			}
		}
		out[b] = sum
	}
	return out
}

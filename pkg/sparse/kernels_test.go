package sparse

import (
	"math"
	"testing"
)

const epsilon = 1e-5

func almostEqual(a, b float32) bool {
	return math.Abs(float64(a-b)) < epsilon
}

func TestDotDenseSparse(t *testing.T) {
	dense := []float32{1, 2, 3, 4, 5}
	components := []uint16{0, 2, 4}
	values := []F32{2, 3, 1}

	got := DotDenseSparse(dense, components, values)
	want := float32(1*2 + 3*3 + 5*1)
	if !almostEqual(got, want) {
		t.Errorf("DotDenseSparse() = %v, want %v", got, want)
	}
}

func TestDotSparseMerge(t *testing.T) {
	tests := []struct {
		name             string
		queryComponents  []uint16
		queryValues      []float32
		components       []uint16
		values           []F32
		want             float32
	}{
		{
			name:            "full overlap",
			queryComponents: []uint16{1, 3, 5},
			queryValues:     []float32{2, 3, 4},
			components:      []uint16{1, 3, 5},
			values:          []F32{1, 1, 1},
			want:            9,
		},
		{
			name:            "partial overlap",
			queryComponents: []uint16{0, 2, 4},
			queryValues:     []float32{1, 1, 1},
			components:      []uint16{2, 3, 4},
			values:          []F32{5, 5, 5},
			want:            10,
		},
		{
			name:            "no overlap",
			queryComponents: []uint16{0, 1},
			queryValues:     []float32{1, 1},
			components:      []uint16{2, 3},
			values:          []F32{1, 1},
			want:            0,
		},
		{
			name:            "empty query",
			queryComponents: nil,
			queryValues:     nil,
			components:      []uint16{0, 1},
			values:          []F32{1, 1},
			want:            0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DotSparseMerge(tt.queryComponents, tt.queryValues, tt.components, tt.values)
			if !almostEqual(got, tt.want) {
				t.Errorf("DotSparseMerge() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDotAgreesAcrossKernels(t *testing.T) {
	dim := 20
	components := []uint16{1, 4, 9, 15}
	values := []F32{1, 2, 3, 4}
	dense := make([]float32, dim)
	for i, c := range components {
		dense[c] = float32(values[i])
	}

	// A short query (< ThresholdBinarySearch) picks the merge kernel; a
	// long one picks dense. Both must agree on the same inputs.
	shortQuery := []uint16{4, 15}
	shortValues := []float32{1, 1}

	merged := DotSparseMerge(shortQuery, shortValues, components, values)
	denseResult := DotDenseSparse(dense, shortQuery, shortValues)
	if !almostEqual(merged, denseResult) {
		t.Errorf("merge kernel = %v, dense kernel = %v, want equal", merged, denseResult)
	}

	got := Dot(dense, shortQuery, shortValues, components, values)
	if !almostEqual(got, merged) {
		t.Errorf("Dot() = %v, want %v (short query routes to merge)", got, merged)
	}
}

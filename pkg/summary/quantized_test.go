package summary

import (
	"math"
	"testing"
)

func almostEqual(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-2
}

func TestQuantizedRoundTrip(t *testing.T) {
	rowComponents := [][]uint16{{0, 2, 4}, {1, 3}}
	rowValues := [][]float32{{1, 5, 3}, {2, 8}}

	q := Build(rowComponents, rowValues)
	if got, want := q.Rows(), 2; got != want {
		t.Fatalf("Rows() = %d, want %d", got, want)
	}

	for row := range rowValues {
		comps, payload, min, scale := q.Row(row)
		if len(comps) != len(rowValues[row]) {
			t.Fatalf("Row(%d) has %d components, want %d", row, len(comps), len(rowValues[row]))
		}
		for i, v := range rowValues[row] {
			dq := q.Dequantize(row, payload[i])
			if !almostEqual(dq, v) {
				t.Errorf("row %d component %d: dequantized %v, want ~%v", row, i, dq, v)
			}
		}
		_ = min
		_ = scale
	}
}

func TestMatmulWithQuery(t *testing.T) {
	rowComponents := [][]uint16{{0, 2, 4}, {1, 3}}
	rowValues := [][]float32{{1, 5, 3}, {2, 8}}
	q := Build(rowComponents, rowValues)

	queryComponents := []uint16{0, 2, 4}
	queryValues := []float32{1, 1, 1}

	dots := q.MatmulWithQuery(queryComponents, queryValues)
	if len(dots) != 2 {
		t.Fatalf("MatmulWithQuery() returned %d rows, want 2", len(dots))
	}
	// row 0 shares every component with the query: dot ~= 1+5+3 = 9
	if !almostEqualLoose(dots[0], 9) {
		t.Errorf("MatmulWithQuery() row 0 = %v, want ~9", dots[0])
	}
	// row 1 shares no component with the query
	if dots[1] != 0 {
		t.Errorf("MatmulWithQuery() row 1 = %v, want 0", dots[1])
	}
}

func almostEqualLoose(a, b float32) bool {
	return math.Abs(float64(a-b)) < 0.5
}

func TestQuantizedEmptyRow(t *testing.T) {
	q := Build([][]uint16{{}}, [][]float32{{}})
	comps, payload, _, _ := q.Row(0)
	if len(comps) != 0 || len(payload) != 0 {
		t.Errorf("Row(0) = (%v, %v), want both empty", comps, payload)
	}
}

package sparse

import (
	"errors"
	"testing"
)

func tinyDataset(t *testing.T) *Dataset[uint16, F32] {
	t.Helper()
	// doc0: {1:1, 3:2}; doc1: {}; doc2: {0:5, 2:1, 4:2}
	components := []uint16{1, 3, 0, 2, 4}
	values := []F32{1, 2, 5, 1, 2}
	offsets := []int{0, 2, 2, 5}
	ds, err := New[uint16, F32](components, values, offsets, 5)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return ds
}

func TestDatasetBasics(t *testing.T) {
	ds := tinyDataset(t)

	if got, want := ds.Len(), 3; got != want {
		t.Errorf("Len() = %d, want %d", got, want)
	}
	if got, want := ds.Dim(), 5; got != want {
		t.Errorf("Dim() = %d, want %d", got, want)
	}
	if got, want := ds.Nnz(), 5; got != want {
		t.Errorf("Nnz() = %d, want %d", got, want)
	}
	if got, want := ds.VectorLen(1), 0; got != want {
		t.Errorf("VectorLen(1) = %d, want %d", got, want)
	}

	comps, vals := ds.Get(2)
	if len(comps) != 3 || comps[0] != 0 || comps[1] != 2 || comps[2] != 4 {
		t.Errorf("Get(2) components = %v, want [0 2 4]", comps)
	}
	if len(vals) != 3 || vals[0].Float32() != 5 {
		t.Errorf("Get(2) values = %v, want first element 5", vals)
	}
}

func TestDatasetOffsetToID(t *testing.T) {
	ds := tinyDataset(t)
	for docID := 0; docID < ds.Len(); docID++ {
		offset := ds.VectorOffset(docID)
		// An empty vector owns no entries: its offset is where the next
		// non-empty document starts, and that document owns it (doc1 here
		// shares offset 2 with doc2).
		want := docID
		for want < ds.Len()-1 && ds.VectorLen(want) == 0 {
			want++
		}
		if got := ds.OffsetToID(offset); got != want {
			t.Errorf("OffsetToID(%d) = %d, want %d", offset, got, want)
		}
	}
}

func TestDatasetIterVector(t *testing.T) {
	ds := tinyDataset(t)
	var components []uint16
	var values []float32
	for c, v := range ds.IterVector(0) {
		components = append(components, c)
		values = append(values, v.Float32())
	}
	if len(components) != 2 || components[0] != 1 || components[1] != 3 {
		t.Errorf("IterVector(0) components = %v, want [1 3]", components)
	}
	if len(values) != 2 || values[0] != 1 || values[1] != 2 {
		t.Errorf("IterVector(0) values = %v, want [1 2]", values)
	}
}

func TestNewRejectsMalformedInput(t *testing.T) {
	tests := []struct {
		name       string
		components []uint16
		values     []F32
		offsets    []int
		dim        int
	}{
		{
			name:       "offsets not starting at zero",
			components: []uint16{0},
			values:     []F32{1},
			offsets:    []int{1, 1},
			dim:        1,
		},
		{
			name:       "offsets decreasing",
			components: []uint16{0, 1},
			values:     []F32{1, 1},
			offsets:    []int{0, 2, 1},
			dim:        2,
		},
		{
			name:       "final offset mismatch",
			components: []uint16{0},
			values:     []F32{1},
			offsets:    []int{0, 2},
			dim:        1,
		},
		{
			name:       "components not strictly increasing",
			components: []uint16{1, 1},
			values:     []F32{1, 1},
			offsets:    []int{0, 2},
			dim:        2,
		},
		{
			name:       "zero dimension",
			components: nil,
			values:     nil,
			offsets:    []int{0},
			dim:        0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New[uint16, F32](tt.components, tt.values, tt.offsets, tt.dim)
			if !errors.Is(err, ErrMalformedInput) {
				t.Errorf("New() error = %v, want ErrMalformedInput", err)
			}
		})
	}
}

func TestQuantizeF16(t *testing.T) {
	ds := tinyDataset(t)
	narrowed := QuantizeF16(ds)

	if narrowed.Len() != ds.Len() || narrowed.Dim() != ds.Dim() {
		t.Fatalf("QuantizeF16() shape mismatch: got len=%d dim=%d, want len=%d dim=%d",
			narrowed.Len(), narrowed.Dim(), ds.Len(), ds.Dim())
	}
	_, vals := narrowed.Get(2)
	if !almostEqual(vals[0].Float32(), 5) {
		t.Errorf("QuantizeF16() value = %v, want ~5", vals[0].Float32())
	}
}

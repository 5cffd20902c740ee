package dataio

import (
	"bytes"
	"testing"

	"github.com/fschlatt/seismic/pkg/sparse"
)

func TestDatasetRoundTrip(t *testing.T) {
	components := []uint16{0, 2, 1, 3, 4}
	values := []sparse.F32{1, 2, 3, 4, 5}
	offsets := []int{0, 2, 5}
	ds, err := sparse.New[uint16, sparse.F32](components, values, offsets, 5)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	var buf bytes.Buffer
	if err := WriteDataset(&buf, ds); err != nil {
		t.Fatalf("WriteDataset() error = %v", err)
	}

	got, err := ReadDataset[uint16](&buf, 5)
	if err != nil {
		t.Fatalf("ReadDataset() error = %v", err)
	}

	if got.Len() != ds.Len() || got.Dim() != ds.Dim() || got.Nnz() != ds.Nnz() {
		t.Fatalf("ReadDataset() shape = (len=%d dim=%d nnz=%d), want (len=%d dim=%d nnz=%d)",
			got.Len(), got.Dim(), got.Nnz(), ds.Len(), ds.Dim(), ds.Nnz())
	}
	for docID := 0; docID < ds.Len(); docID++ {
		wantComps, wantVals := ds.Get(docID)
		gotComps, gotVals := got.Get(docID)
		for i := range wantComps {
			if gotComps[i] != wantComps[i] || gotVals[i].Float32() != wantVals[i].Float32() {
				t.Errorf("document %d entry %d = (%d, %v), want (%d, %v)",
					docID, i, gotComps[i], gotVals[i].Float32(), wantComps[i], wantVals[i].Float32())
			}
		}
	}
}

func TestReadDatasetInfersDimWhenZero(t *testing.T) {
	components := []uint16{0, 4}
	values := []sparse.F32{1, 2}
	offsets := []int{0, 2}
	ds, err := sparse.New[uint16, sparse.F32](components, values, offsets, 5)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	var buf bytes.Buffer
	if err := WriteDataset(&buf, ds); err != nil {
		t.Fatalf("WriteDataset() error = %v", err)
	}

	got, err := ReadDataset[uint16](&buf, 0)
	if err != nil {
		t.Fatalf("ReadDataset() error = %v", err)
	}
	if got.Dim() != 5 {
		t.Errorf("ReadDataset() inferred dim = %d, want 5 (highest component + 1)", got.Dim())
	}
}

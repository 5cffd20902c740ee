// Package dataio reads and writes the binary formats the core engine's
// types are stored in: the dataset loader format and the full index
// serialization format (spec §6).
package dataio

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/fschlatt/seismic/pkg/sparse"
)

// WriteDataset serializes ds in the dataset binary format: a 4-byte
// little-endian document count, then per document a 4-byte length followed
// by that many components and that many 32-bit float values, all
// little-endian. The component width is whatever C is; it is fixed for the
// whole file and is not itself recorded, matching the format's external
// contract that width is known out of band.
func WriteDataset[C sparse.Component](w io.Writer, ds *sparse.Dataset[C, sparse.F32]) error {
	bw := bufio.NewWriter(w)

	if err := binary.Write(bw, binary.LittleEndian, uint32(ds.Len())); err != nil {
		return fmt.Errorf("dataio: write document count: %w", err)
	}

	for docID := 0; docID < ds.Len(); docID++ {
		comps, vals := ds.Get(docID)
		if err := binary.Write(bw, binary.LittleEndian, uint32(len(comps))); err != nil {
			return fmt.Errorf("dataio: write vector length for document %d: %w", docID, err)
		}
		for _, c := range comps {
			if err := binary.Write(bw, binary.LittleEndian, c); err != nil {
				return fmt.Errorf("dataio: write component for document %d: %w", docID, err)
			}
		}
		for _, v := range vals {
			if err := binary.Write(bw, binary.LittleEndian, float32(v)); err != nil {
				return fmt.Errorf("dataio: write value for document %d: %w", docID, err)
			}
		}
	}

	return bw.Flush()
}

// ReadDataset deserializes a dataset binary file into a Dataset[C, F32].
// dim is supplied by the caller because the file format doesn't record the
// vocabulary size, only per-document non-zero counts; when dim is 0, the
// highest component id actually present plus one is used instead.
func ReadDataset[C sparse.Component](r io.Reader, dim int) (*sparse.Dataset[C, sparse.F32], error) {
	br := bufio.NewReader(r)

	var n uint32
	if err := binary.Read(br, binary.LittleEndian, &n); err != nil {
		return nil, fmt.Errorf("dataio: read document count: %w", err)
	}

	offsets := make([]int, n+1)
	var components []C
	var values []sparse.F32
	maxComponent := 0

	for docID := uint32(0); docID < n; docID++ {
		var length uint32
		if err := binary.Read(br, binary.LittleEndian, &length); err != nil {
			return nil, fmt.Errorf("dataio: read vector length for document %d: %w", docID, err)
		}

		docComponents := make([]C, length)
		for i := range docComponents {
			if err := binary.Read(br, binary.LittleEndian, &docComponents[i]); err != nil {
				return nil, fmt.Errorf("dataio: read component for document %d: %w", docID, err)
			}
			if int(docComponents[i]) > maxComponent {
				maxComponent = int(docComponents[i])
			}
		}
		docValues := make([]sparse.F32, length)
		for i := range docValues {
			var v float32
			if err := binary.Read(br, binary.LittleEndian, &v); err != nil {
				return nil, fmt.Errorf("dataio: read value for document %d: %w", docID, err)
			}
			docValues[i] = sparse.F32(v)
		}

		components = append(components, docComponents...)
		values = append(values, docValues...)
		offsets[docID+1] = offsets[docID] + int(length)
	}

	if dim == 0 {
		dim = maxComponent + 1
	}

	return sparse.New[C, sparse.F32](components, values, offsets, dim)
}

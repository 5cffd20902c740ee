package dataio

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/fschlatt/seismic/pkg/seismic"
	"github.com/fschlatt/seismic/pkg/sparse"
	"github.com/fschlatt/seismic/pkg/summary"
)

// indexFormatVersion is the version tag written at the start of every
// serialized index. It is bumped whenever the on-disk layout changes.
const indexFormatVersion uint32 = 1

// WriteIndex serializes idx in the index binary format (spec §6): a
// version tag, the configuration, the forward dataset, the posting list
// count, and each posting list's packed postings, block offsets, and
// quantized summary. The forward dataset must already be narrowed to
// half-precision values, matching the stored representation the rest of
// the index uses.
func WriteIndex[C sparse.Component](w io.Writer, idx *seismic.InvertedIndex[C, sparse.F16]) error {
	bw := bufio.NewWriter(w)

	if err := binary.Write(bw, binary.LittleEndian, indexFormatVersion); err != nil {
		return fmt.Errorf("dataio: write version tag: %w", err)
	}
	if err := writeConfiguration(bw, idx.Config()); err != nil {
		return err
	}
	if err := writeForwardDataset(bw, idx.Dataset()); err != nil {
		return err
	}

	if err := binary.Write(bw, binary.LittleEndian, uint32(idx.NumComponents())); err != nil {
		return fmt.Errorf("dataio: write posting list count: %w", err)
	}
	for c := 0; c < idx.NumComponents(); c++ {
		if err := writePostingList(bw, idx.List(c)); err != nil {
			return fmt.Errorf("dataio: write posting list %d: %w", c, err)
		}
	}

	return bw.Flush()
}

// ReadIndex deserializes an index previously written by WriteIndex.
func ReadIndex[C sparse.Component](r io.Reader) (*seismic.InvertedIndex[C, sparse.F16], error) {
	br := bufio.NewReader(r)

	var version uint32
	if err := binary.Read(br, binary.LittleEndian, &version); err != nil {
		return nil, fmt.Errorf("dataio: read version tag: %w", err)
	}
	if version != indexFormatVersion {
		return nil, fmt.Errorf("dataio: unsupported index format version %d", version)
	}

	cfg, err := readConfiguration(br)
	if err != nil {
		return nil, err
	}
	dataset, err := readForwardDataset[C](br)
	if err != nil {
		return nil, err
	}

	var numLists uint32
	if err := binary.Read(br, binary.LittleEndian, &numLists); err != nil {
		return nil, fmt.Errorf("dataio: read posting list count: %w", err)
	}
	lists := make([]*seismic.PostingList[C], numLists)
	for c := range lists {
		pl, err := readPostingList[C](br)
		if err != nil {
			return nil, fmt.Errorf("dataio: read posting list %d: %w", c, err)
		}
		lists[c] = pl
	}

	return seismic.Assemble(dataset, lists, cfg), nil
}

func writeConfiguration(w io.Writer, cfg seismic.Configuration) error {
	fields := []any{
		int32(cfg.Pruning.Kind), int32(cfg.Pruning.NPostings), cfg.Pruning.MaxFraction,
		int32(cfg.Blocking.Kind), int32(cfg.Blocking.BlockSize), cfg.Blocking.CentroidFraction,
		cfg.Blocking.TruncatedKMeansTraining, int32(cfg.Blocking.TruncationSize), int32(cfg.Blocking.MinClusterSize),
		int32(cfg.Summarization.Kind), int32(cfg.Summarization.NComponents), cfg.Summarization.SummaryEnergy,
		cfg.Seed,
	}
	for _, f := range fields {
		if err := binary.Write(w, binary.LittleEndian, f); err != nil {
			return fmt.Errorf("dataio: write configuration: %w", err)
		}
	}
	return nil
}

func readConfiguration(r io.Reader) (seismic.Configuration, error) {
	var cfg seismic.Configuration
	var pruningKind, blockingKind, summarizationKind int32
	var nPostings, blockSize, truncationSize, minClusterSize, nComponents int32
	var truncated bool

	fields := []any{
		&pruningKind, &nPostings, &cfg.Pruning.MaxFraction,
		&blockingKind, &blockSize, &cfg.Blocking.CentroidFraction,
		&truncated, &truncationSize, &minClusterSize,
		&summarizationKind, &nComponents, &cfg.Summarization.SummaryEnergy,
		&cfg.Seed,
	}
	for _, f := range fields {
		if err := binary.Read(r, binary.LittleEndian, f); err != nil {
			return cfg, fmt.Errorf("dataio: read configuration: %w", err)
		}
	}

	cfg.Pruning.Kind = seismic.PruningKind(pruningKind)
	cfg.Pruning.NPostings = int(nPostings)
	cfg.Blocking.Kind = seismic.BlockingKind(blockingKind)
	cfg.Blocking.BlockSize = int(blockSize)
	cfg.Blocking.TruncatedKMeansTraining = truncated
	cfg.Blocking.TruncationSize = int(truncationSize)
	cfg.Blocking.MinClusterSize = int(minClusterSize)
	cfg.Summarization.Kind = seismic.SummarizationKind(summarizationKind)
	cfg.Summarization.NComponents = int(nComponents)

	return cfg, nil
}

func writeForwardDataset[C sparse.Component](w io.Writer, ds *sparse.Dataset[C, sparse.F16]) error {
	if err := writeSlice(w, ds.RawComponents()); err != nil {
		return fmt.Errorf("dataio: write forward components: %w", err)
	}
	if err := writeSlice(w, ds.RawValues()); err != nil {
		return fmt.Errorf("dataio: write forward values: %w", err)
	}
	if err := writeSlice(w, toInt64(ds.RawOffsets())); err != nil {
		return fmt.Errorf("dataio: write forward offsets: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(ds.Dim())); err != nil {
		return fmt.Errorf("dataio: write dim: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(ds.Len())); err != nil {
		return fmt.Errorf("dataio: write document count: %w", err)
	}
	return nil
}

func readForwardDataset[C sparse.Component](r io.Reader) (*sparse.Dataset[C, sparse.F16], error) {
	components, err := readSlice[C](r)
	if err != nil {
		return nil, fmt.Errorf("dataio: read forward components: %w", err)
	}
	values, err := readSlice[sparse.F16](r)
	if err != nil {
		return nil, fmt.Errorf("dataio: read forward values: %w", err)
	}
	rawOffsets, err := readSlice[int64](r)
	if err != nil {
		return nil, fmt.Errorf("dataio: read forward offsets: %w", err)
	}
	var dim, n uint32
	if err := binary.Read(r, binary.LittleEndian, &dim); err != nil {
		return nil, fmt.Errorf("dataio: read dim: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, fmt.Errorf("dataio: read document count: %w", err)
	}

	return sparse.New[C, sparse.F16](components, values, fromInt64(rawOffsets), int(dim))
}

func writePostingList[C sparse.Component](w io.Writer, pl *seismic.PostingList[C]) error {
	if err := writeSlice(w, pl.PackedPostings()); err != nil {
		return fmt.Errorf("packed postings: %w", err)
	}
	if err := writeSlice(w, toInt64(pl.BlockOffsets())); err != nil {
		return fmt.Errorf("block offsets: %w", err)
	}
	mins, scales, components, payload, offsets := pl.Summaries().Parts()
	if err := writeSlice(w, mins); err != nil {
		return fmt.Errorf("summary mins: %w", err)
	}
	if err := writeSlice(w, scales); err != nil {
		return fmt.Errorf("summary scales: %w", err)
	}
	if err := writeSlice(w, components); err != nil {
		return fmt.Errorf("summary components: %w", err)
	}
	if err := writeSlice(w, payload); err != nil {
		return fmt.Errorf("summary payload: %w", err)
	}
	if err := writeSlice(w, toInt64(offsets)); err != nil {
		return fmt.Errorf("summary offsets: %w", err)
	}
	return nil
}

func readPostingList[C sparse.Component](r io.Reader) (*seismic.PostingList[C], error) {
	packedPostings, err := readSlice[uint64](r)
	if err != nil {
		return nil, fmt.Errorf("packed postings: %w", err)
	}
	rawBlockOffsets, err := readSlice[int64](r)
	if err != nil {
		return nil, fmt.Errorf("block offsets: %w", err)
	}
	mins, err := readSlice[float32](r)
	if err != nil {
		return nil, fmt.Errorf("summary mins: %w", err)
	}
	scales, err := readSlice[float32](r)
	if err != nil {
		return nil, fmt.Errorf("summary scales: %w", err)
	}
	components, err := readSlice[C](r)
	if err != nil {
		return nil, fmt.Errorf("summary components: %w", err)
	}
	payload, err := readSlice[uint8](r)
	if err != nil {
		return nil, fmt.Errorf("summary payload: %w", err)
	}
	rawOffsets, err := readSlice[int64](r)
	if err != nil {
		return nil, fmt.Errorf("summary offsets: %w", err)
	}

	summaries := summary.FromParts(mins, scales, components, payload, fromInt64(rawOffsets))
	return seismic.NewPostingList(packedPostings, fromInt64(rawBlockOffsets), summaries), nil
}

// writeSlice writes a 4-byte element count followed by each element,
// little-endian.
func writeSlice[E any](w io.Writer, s []E) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(s))); err != nil {
		return err
	}
	for _, e := range s {
		if err := binary.Write(w, binary.LittleEndian, e); err != nil {
			return err
		}
	}
	return nil
}

func readSlice[E any](r io.Reader) ([]E, error) {
	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, err
	}
	s := make([]E, count)
	for i := range s {
		if err := binary.Read(r, binary.LittleEndian, &s[i]); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func toInt64(s []int) []int64 {
	out := make([]int64, len(s))
	for i, v := range s {
		out[i] = int64(v)
	}
	return out
}

func fromInt64(s []int64) []int {
	out := make([]int, len(s))
	for i, v := range s {
		out[i] = int(v)
	}
	return out
}

package seismic

import (
	"fmt"
	"math/rand"
	"unsafe"

	"github.com/fschlatt/seismic/pkg/blocker"
	"github.com/fschlatt/seismic/pkg/sparse"
	"github.com/fschlatt/seismic/pkg/summary"
)

// maxPackedOffset and maxPackedLength bound what packOffsetLen can encode
// into a single uint64 posting word: 48 bits of offset, 16 bits of length
// (spec §4.G).
const (
	maxPackedOffset = (1 << 48) - 1
	maxPackedLength = (1 << 16) - 1
)

func packOffsetLen(offset, length int) (uint64, error) {
	if offset < 0 || offset > maxPackedOffset {
		return 0, fmt.Errorf("%w: forward offset %d exceeds 2^48-1", ErrOutOfRange, offset)
	}
	if length < 0 || length > maxPackedLength {
		return 0, fmt.Errorf("%w: vector length %d exceeds 2^16-1", ErrOutOfRange, length)
	}
	return (uint64(offset) << 16) | uint64(length), nil
}

func unpackOffsetLen(packed uint64) (int, int) {
	return int(packed >> 16), int(packed & maxPackedLength)
}

// PostingList is one component's pruned, blocked, and summarized document
// list (spec §4.G): packedPostings addresses the forward Dataset directly
// by flat-buffer offset rather than by document id, and summaries holds one
// quantized row per block for query-time pruning.
type PostingList[C sparse.Component] struct {
	packedPostings []uint64
	blockOffsets   []int
	summaries      *summary.Quantized[C]
}

// NumBlocks returns the number of blocks in the list.
func (p *PostingList[C]) NumBlocks() int { return len(p.blockOffsets) - 1 }

// Len returns the number of documents in the list.
func (p *PostingList[C]) Len() int { return len(p.packedPostings) }

// Block returns the packed posting words of block b.
func (p *PostingList[C]) Block(b int) []uint64 {
	return p.packedPostings[p.blockOffsets[b]:p.blockOffsets[b+1]]
}

// Summaries returns the list's quantized block summaries.
func (p *PostingList[C]) Summaries() *summary.Quantized[C] { return p.summaries }

// BlockOffsets returns the list's block boundaries, for serialization.
func (p *PostingList[C]) BlockOffsets() []int { return p.blockOffsets }

// PackedPostings returns the list's raw packed posting words, for
// serialization.
func (p *PostingList[C]) PackedPostings() []uint64 { return p.packedPostings }

// NewPostingList reassembles a PostingList from its raw parts, as read back
// from a serialized index.
func NewPostingList[C sparse.Component](packedPostings []uint64, blockOffsets []int, summaries *summary.Quantized[C]) *PostingList[C] {
	return &PostingList[C]{packedPostings: packedPostings, blockOffsets: blockOffsets, summaries: summaries}
}

// SpaceUsageBytes reports the approximate resident size of the posting
// list: 8 bytes per packed posting and per block offset, plus the summary
// components and quantized payload.
func (p *PostingList[C]) SpaceUsageBytes() int {
	total := len(p.packedPostings) * 8
	total += len(p.blockOffsets) * 8
	var c C
	compSize := int(unsafe.Sizeof(c))
	for b := 0; b < p.summaries.Rows(); b++ {
		comps, payload, _, _ := p.summaries.Row(b)
		total += len(comps)*compSize + len(payload)
	}
	return total
}

// BuildPostingList blocks docIDs, summarizes each resulting block, and
// packs the final per-block document order into posting words that
// reference dataset directly by forward offset (spec §4.D-G).
//
// docIDs has already been pruned by the caller; BuildPostingList only
// blocks, summarizes, and packs.
func BuildPostingList[C sparse.Component, T sparse.Value](dataset *sparse.Dataset[C, T], docIDs []int, cfg Configuration, listSeed int64) (*PostingList[C], error) {
	var (
		ordered      []int
		blockOffsets []int
		err          error
	)
	switch cfg.Blocking.Kind {
	case BlockingFixedSize:
		ordered, blockOffsets = blocker.FixedSize(docIDs, cfg.Blocking.BlockSize)
	case BlockingRandomKmeans:
		rng := rand.New(rand.NewSource(listSeed))
		kcfg := blocker.KMeansConfig{
			CentroidFraction:        cfg.Blocking.CentroidFraction,
			TruncatedKMeansTraining: cfg.Blocking.TruncatedKMeansTraining,
			TruncationSize:          cfg.Blocking.TruncationSize,
			MinClusterSize:          cfg.Blocking.MinClusterSize,
		}
		ordered, blockOffsets, err = blocker.RandomKMeans(docIDs, dataset, kcfg, rng)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: unknown blocking kind %d", ErrConfigurationInvalid, cfg.Blocking.Kind)
	}

	numBlocks := len(blockOffsets) - 1
	rowComponents := make([][]C, numBlocks)
	rowValues := make([][]float32, numBlocks)
	for b := 0; b < numBlocks; b++ {
		block := ordered[blockOffsets[b]:blockOffsets[b+1]]
		switch cfg.Summarization.Kind {
		case SummarizationFixedSize:
			rowComponents[b], rowValues[b] = summary.FixedSize(dataset, block, cfg.Summarization.NComponents)
		case SummarizationEnergyPreserving:
			rowComponents[b], rowValues[b] = summary.EnergyPreserving(dataset, block, cfg.Summarization.SummaryEnergy)
		default:
			return nil, fmt.Errorf("%w: unknown summarization kind %d", ErrConfigurationInvalid, cfg.Summarization.Kind)
		}
	}
	summaries := summary.Build(rowComponents, rowValues)

	packed := make([]uint64, len(ordered))
	for i, docID := range ordered {
		offset := dataset.VectorOffset(docID)
		length := dataset.VectorLen(docID)
		word, err := packOffsetLen(offset, length)
		if err != nil {
			return nil, err
		}
		packed[i] = word
	}

	return &PostingList[C]{packedPostings: packed, blockOffsets: blockOffsets, summaries: summaries}, nil
}

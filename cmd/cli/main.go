package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/fschlatt/seismic/pkg/dataio"
	"github.com/fschlatt/seismic/pkg/observability"
	"github.com/fschlatt/seismic/pkg/seismic"
	"github.com/fschlatt/seismic/pkg/sparse"
)

const version = "1.0.0"

func main() {
	if len(os.Args) < 2 {
		showUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	switch command {
	case "build":
		handleBuild(os.Args[2:])
	case "search":
		handleSearch(os.Args[2:])
	case "version":
		fmt.Printf("seismic-cli version %s\n", version)
	case "help", "-h", "--help":
		showUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		showUsage()
		os.Exit(1)
	}
}

func handleBuild(args []string) {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	var (
		input            = fs.String("input", "", "dataset binary file to build from (required)")
		output           = fs.String("output", "index.bin", "index file to write")
		nPostings        = fs.Int("n-postings", 6000, "pruning target")
		blockSize        = fs.Int("block-size", 10, "FixedSize block size (only used with -blocking=fixed)")
		blocking         = fs.String("blocking", "kmeans", "blocking strategy: kmeans or fixed")
		centroidFraction = fs.Float64("centroid-fraction", 0.1, "k-means centroid ratio")
		summaryEnergy    = fs.Float64("summary-energy", 0.5, "EnergyPreserving fraction")
		truncation       = fs.Bool("truncation", false, "enable truncated k-means")
		truncationSize   = fs.Int("truncation-size", 16, "components kept per centroid when truncating")
		minClusterSize   = fs.Int("min-cluster-size", 2, "dissolution threshold")
		seed             = fs.Int64("seed", 42, "base RNG seed")
	)
	fs.Parse(args)

	if *input == "" {
		fmt.Println("Error: -input is required")
		fs.Usage()
		os.Exit(1)
	}

	logger := observability.NewDefaultLogger()

	f, err := os.Open(*input)
	if err != nil {
		logger.Fatalf("failed to open dataset file %s: %v", *input, err)
	}
	ds, err := dataio.ReadDataset[uint16](f, 0)
	f.Close()
	if err != nil {
		logger.Fatalf("failed to read dataset: %v", err)
	}
	logger.Infof("loaded dataset: %d documents, dim %d", ds.Len(), ds.Dim())

	blockingKind := seismic.BlockingRandomKmeans
	if *blocking == "fixed" {
		blockingKind = seismic.BlockingFixedSize
	}

	cfg := seismic.Configuration{
		Pruning: seismic.PruningStrategy{
			Kind:      seismic.PruningFixedSize,
			NPostings: *nPostings,
		},
		Blocking: seismic.BlockingStrategy{
			Kind:                    blockingKind,
			BlockSize:               *blockSize,
			CentroidFraction:        float32(*centroidFraction),
			TruncatedKMeansTraining: *truncation,
			TruncationSize:          *truncationSize,
			MinClusterSize:          *minClusterSize,
		},
		Summarization: seismic.SummarizationStrategy{
			Kind:          seismic.SummarizationEnergyPreserving,
			SummaryEnergy: float32(*summaryEnergy),
		},
		Seed: *seed,
	}

	narrowed := sparse.QuantizeF16(ds)

	var index *seismic.InvertedIndex[uint16, sparse.F16]
	err = logger.LogOperation("build inverted index", func() error {
		var buildErr error
		index, buildErr = seismic.Build(narrowed, cfg)
		return buildErr
	})
	if err != nil {
		logger.Fatalf("build failed: %v", err)
	}

	logger.Infof("index built: %d components, %d bytes", index.NumComponents(), index.SpaceUsageBytes())

	out, err := os.Create(*output)
	if err != nil {
		logger.Fatalf("failed to create output file %s: %v", *output, err)
	}
	defer out.Close()

	if err := dataio.WriteIndex(out, index); err != nil {
		logger.Fatalf("failed to write index: %v", err)
	}

	fmt.Printf("Wrote index to %s\n", *output)
}

type searchQuery struct {
	Components []uint16  `json:"components"`
	Values     []float32 `json:"values"`
}

func handleSearch(args []string) {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	var (
		indexPath  = fs.String("index", "", "index file to search (required)")
		queryStr   = fs.String("query", "", "query as JSON {\"components\":[...],\"values\":[...]} (required)")
		k          = fs.Int("k", 10, "number of results to return")
		queryCut   = fs.Int("query-cut", 20, "number of top query components to search")
		heapFactor = fs.Float64("heap-factor", 0.9, "block-skip heap factor")
	)
	fs.Parse(args)

	if *indexPath == "" || *queryStr == "" {
		fmt.Println("Error: -index and -query are required")
		fs.Usage()
		os.Exit(1)
	}

	var query searchQuery
	if err := json.Unmarshal([]byte(*queryStr), &query); err != nil {
		fmt.Printf("Error parsing query: %v\n", err)
		os.Exit(1)
	}
	if len(query.Components) != len(query.Values) {
		fmt.Println("Error: query components and values must have the same length")
		os.Exit(1)
	}

	f, err := os.Open(*indexPath)
	if err != nil {
		fmt.Printf("Error opening index %s: %v\n", *indexPath, err)
		os.Exit(1)
	}
	defer f.Close()

	index, err := dataio.ReadIndex[uint16](f)
	if err != nil {
		fmt.Printf("Error reading index: %v\n", err)
		os.Exit(1)
	}

	qcfg := seismic.QueryConfiguration{
		K:          *k,
		QueryCut:   *queryCut,
		HeapFactor: float32(*heapFactor),
	}

	start := time.Now()
	results := seismic.Query(index, query.Components, query.Values, qcfg)
	elapsed := time.Since(start)

	fmt.Printf("Found %d results (search took %v)\n\n", len(results), elapsed)
	for i, r := range results {
		fmt.Printf("%d. doc=%d similarity=%.6f\n", i+1, r.Offset, r.Similarity)
	}
}

func showUsage() {
	fmt.Println(`seismic-cli - build and query sparse approximate nearest neighbor indexes

Usage:
  seismic-cli <command> [options]

Commands:
  build     Build an index from a dataset file
  search    Search a built index
  version   Show version
  help      Show this help message

Examples:

  # Build an index
  seismic-cli build -input dataset.bin -output index.bin -n-postings 6000

  # Search an index
  seismic-cli search -index index.bin -query '{"components":[1,5,9],"values":[0.8,0.5,0.2]}' -k 10
`)
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/fschlatt/seismic/pkg/seismic"
)

// Config holds all server configuration.
type Config struct {
	Server ServerConfig
	Index  IndexConfig
	Query  QueryConfig
	Data   DataConfig
}

// ServerConfig holds REST server configuration.
type ServerConfig struct {
	Host            string        // Server host (default: "0.0.0.0")
	Port            int           // Server port (default: 8080)
	RequestTimeout  time.Duration // Request timeout
	ShutdownTimeout time.Duration // Graceful shutdown timeout
	EnableTLS       bool          // Enable TLS
	CertFile        string        // TLS certificate file
	KeyFile         string        // TLS key file
}

// IndexConfig holds posting-list build configuration, mirroring
// seismic.Configuration field for field.
type IndexConfig struct {
	NPostings               int     // candidates retained per component after pruning
	MaxFraction             float32 // cap applied after GlobalThreshold pruning, as a fraction of NPostings
	BlockSize               int     // target block size for FixedSize blocking
	CentroidFraction        float32 // fraction of a list used as k-means centroids
	TruncatedKMeansTraining bool    // reserved, not implemented
	TruncationSize          int     // reserved, not implemented
	MinClusterSize          int     // clusters smaller than this are dissolved
	SummaryEnergy           float32 // energy fraction retained by EnergyPreserving summaries
	Seed                    int64   // base RNG seed for deterministic builds
}

// QueryConfig holds default query-time parameters.
type QueryConfig struct {
	K          int     // number of results to return
	QueryCut   int     // number of top query components to search
	HeapFactor float32 // heap-based block skipping factor
}

// DataConfig holds on-disk storage configuration.
type DataConfig struct {
	DataDir  string // directory holding dataset and index files
	IndexFile string // index file name within DataDir
}

// ToSeismicConfiguration converts IndexConfig into seismic.Configuration,
// using RandomKmeans blocking and EnergyPreserving summarization — the same
// profile as seismic.DefaultConfiguration — since those are the strategies
// with a field in every IndexConfig the environment can populate. Callers
// that need FixedSize blocking/summarization or GlobalThreshold pruning
// construct seismic.Configuration directly.
func (c IndexConfig) ToSeismicConfiguration() seismic.Configuration {
	return seismic.Configuration{
		Pruning: seismic.PruningStrategy{
			Kind:        seismic.PruningFixedSize,
			NPostings:   c.NPostings,
			MaxFraction: c.MaxFraction,
		},
		Blocking: seismic.BlockingStrategy{
			Kind:                    seismic.BlockingRandomKmeans,
			BlockSize:               c.BlockSize,
			CentroidFraction:        c.CentroidFraction,
			TruncatedKMeansTraining: c.TruncatedKMeansTraining,
			TruncationSize:          c.TruncationSize,
			MinClusterSize:          c.MinClusterSize,
		},
		Summarization: seismic.SummarizationStrategy{
			Kind:          seismic.SummarizationEnergyPreserving,
			SummaryEnergy: c.SummaryEnergy,
		},
		Seed: c.Seed,
	}
}

// ToSeismicQueryConfiguration converts QueryConfig into seismic.QueryConfiguration.
func (c QueryConfig) ToSeismicQueryConfiguration() seismic.QueryConfiguration {
	return seismic.QueryConfiguration{
		K:          c.K,
		QueryCut:   c.QueryCut,
		HeapFactor: c.HeapFactor,
	}
}

// Default returns default configuration.
func Default() *Config {
	def := seismic.DefaultConfiguration()
	defQ := seismic.DefaultQueryConfiguration()
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			RequestTimeout:  30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			EnableTLS:       false,
		},
		Index: IndexConfig{
			NPostings:               def.Pruning.NPostings,
			MaxFraction:             def.Pruning.MaxFraction,
			BlockSize:               def.Blocking.BlockSize,
			CentroidFraction:        def.Blocking.CentroidFraction,
			TruncatedKMeansTraining: def.Blocking.TruncatedKMeansTraining,
			TruncationSize:          def.Blocking.TruncationSize,
			MinClusterSize:          def.Blocking.MinClusterSize,
			SummaryEnergy:           def.Summarization.SummaryEnergy,
			Seed:                    def.Seed,
		},
		Query: QueryConfig{
			K:          defQ.K,
			QueryCut:   defQ.QueryCut,
			HeapFactor: defQ.HeapFactor,
		},
		Data: DataConfig{
			DataDir:   "./data",
			IndexFile: "index.bin",
		},
	}
}

// LoadFromEnv loads configuration from environment variables, falling back
// to Default() for anything unset.
func LoadFromEnv() *Config {
	cfg := Default()

	if host := os.Getenv("SEISMIC_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if port := os.Getenv("SEISMIC_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
	if timeout := os.Getenv("SEISMIC_REQUEST_TIMEOUT"); timeout != "" {
		if t, err := time.ParseDuration(timeout); err == nil {
			cfg.Server.RequestTimeout = t
		}
	}
	if enableTLS := os.Getenv("SEISMIC_ENABLE_TLS"); enableTLS == "true" {
		cfg.Server.EnableTLS = true
		cfg.Server.CertFile = os.Getenv("SEISMIC_TLS_CERT")
		cfg.Server.KeyFile = os.Getenv("SEISMIC_TLS_KEY")
	}

	if n := os.Getenv("SEISMIC_N_POSTINGS"); n != "" {
		if v, err := strconv.Atoi(n); err == nil {
			cfg.Index.NPostings = v
		}
	}
	if b := os.Getenv("SEISMIC_BLOCK_SIZE"); b != "" {
		if v, err := strconv.Atoi(b); err == nil {
			cfg.Index.BlockSize = v
		}
	}
	if cf := os.Getenv("SEISMIC_CENTROID_FRACTION"); cf != "" {
		if v, err := strconv.ParseFloat(cf, 32); err == nil {
			cfg.Index.CentroidFraction = float32(v)
		}
	}
	if se := os.Getenv("SEISMIC_SUMMARY_ENERGY"); se != "" {
		if v, err := strconv.ParseFloat(se, 32); err == nil {
			cfg.Index.SummaryEnergy = float32(v)
		}
	}
	if s := os.Getenv("SEISMIC_SEED"); s != "" {
		if v, err := strconv.ParseInt(s, 10, 64); err == nil {
			cfg.Index.Seed = v
		}
	}

	if k := os.Getenv("SEISMIC_QUERY_K"); k != "" {
		if v, err := strconv.Atoi(k); err == nil {
			cfg.Query.K = v
		}
	}
	if qc := os.Getenv("SEISMIC_QUERY_CUT"); qc != "" {
		if v, err := strconv.Atoi(qc); err == nil {
			cfg.Query.QueryCut = v
		}
	}
	if hf := os.Getenv("SEISMIC_HEAP_FACTOR"); hf != "" {
		if v, err := strconv.ParseFloat(hf, 32); err == nil {
			cfg.Query.HeapFactor = float32(v)
		}
	}

	if dataDir := os.Getenv("SEISMIC_DATA_DIR"); dataDir != "" {
		cfg.Data.DataDir = dataDir
	}
	if indexFile := os.Getenv("SEISMIC_INDEX_FILE"); indexFile != "" {
		cfg.Data.IndexFile = indexFile
	}

	return cfg
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d (must be 1-65535)", c.Server.Port)
	}
	if c.Server.EnableTLS {
		if c.Server.CertFile == "" || c.Server.KeyFile == "" {
			return fmt.Errorf("TLS enabled but cert or key file not specified")
		}
	}

	if err := c.Index.ToSeismicConfiguration().Validate(); err != nil {
		return fmt.Errorf("invalid index configuration: %w", err)
	}

	if c.Query.K < 1 {
		return fmt.Errorf("invalid query k: %d (must be > 0)", c.Query.K)
	}
	if c.Query.QueryCut < 1 {
		return fmt.Errorf("invalid query cut: %d (must be > 0)", c.Query.QueryCut)
	}

	if c.Data.DataDir == "" {
		return fmt.Errorf("data directory not specified")
	}

	return nil
}

// Address returns the server address (host:port).
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

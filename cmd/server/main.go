package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fschlatt/seismic/pkg/api/rest"
	"github.com/fschlatt/seismic/pkg/api/rest/middleware"
	"github.com/fschlatt/seismic/pkg/config"
	"github.com/fschlatt/seismic/pkg/dataio"
	"github.com/fschlatt/seismic/pkg/observability"
	"github.com/fschlatt/seismic/pkg/seismic"
	"github.com/fschlatt/seismic/pkg/sparse"
)

var (
	version = "1.0.0"
	commit  = "dev"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "show version and exit")
		showHelp    = flag.Bool("help", false, "show help and exit")
		host        = flag.String("host", "", "server host (overrides config/env)")
		port        = flag.Int("port", 0, "server port (overrides config/env)")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("seismic server v%s (commit: %s)\n", version, commit)
		os.Exit(0)
	}

	if *showHelp {
		showUsage()
		os.Exit(0)
	}

	printBanner()

	logger := observability.NewDefaultLogger()
	metrics := observability.NewMetrics()

	cfg := config.LoadFromEnv()
	if *host != "" {
		cfg.Server.Host = *host
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("invalid configuration: %v", err)
	}

	index := loadIndex(cfg, logger)
	handler := rest.NewHandler(index, metrics, logger)

	restConfig := rest.Config{
		Host:        cfg.Server.Host,
		Port:        cfg.Server.Port,
		CORSEnabled: true,
		CORSOrigins: []string{"*"},
		Auth: middleware.AuthConfig{
			Enabled: false,
		},
		RateLimit: middleware.RateLimitConfig{
			Enabled:        true,
			RequestsPerSec: 100,
			Burst:          200,
			PerIP:          true,
		},
	}
	server := rest.NewServer(restConfig, handler, logger)

	printStartupInfo(cfg)

	errChan := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil {
			errChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	logger.Info("server is ready, press Ctrl+C to stop")
	select {
	case sig := <-sigChan:
		logger.Infof("received signal: %v", sig)
	case err := <-errChan:
		logger.Errorf("server error: %v", err)
	}

	logger.Info("shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		logger.Errorf("error stopping server: %v", err)
	}

	logger.Info("server stopped, goodbye")
}

// loadIndex reads a previously built index off disk, if one is present at
// cfg.Data.DataDir/cfg.Data.IndexFile. A missing file is not fatal: the
// server starts with no index loaded and Handler.Reload can populate it
// later once a build completes.
func loadIndex(cfg *config.Config, logger *observability.Logger) *seismic.InvertedIndex[uint16, sparse.F16] {
	path := filepath.Join(cfg.Data.DataDir, cfg.Data.IndexFile)
	f, err := os.Open(path)
	if err != nil {
		logger.Warnf("no index found at %s, starting without a loaded index: %v", path, err)
		return nil
	}
	defer f.Close()

	index, err := dataio.ReadIndex[uint16](f)
	if err != nil {
		logger.Errorf("failed to read index at %s: %v", path, err)
		return nil
	}
	logger.Infof("loaded index from %s (%d documents, %d components)", path, index.Dataset().Len(), index.NumComponents())
	return index
}

func printBanner() {
	banner := `
╔═══════════════════════════════════════════════════════════╗
║                                                           ║
║   ___  _____ ___ ____ __  __ ___ ____                      ║
║  / __||_   _|_ _/ ___|  \/  |_ _/ ___|                     ║
║  \__ \  | |  | |\___ \ |\/| || | |                         ║
║  |___/  |_| |___|___/_|  |_|___\____|                      ║
║                                                           ║
║   Sparse approximate nearest neighbor search              ║
║                                                           ║
╚═══════════════════════════════════════════════════════════╝
`
	fmt.Println(banner)
	fmt.Printf("Version: %s (commit: %s)\n\n", version, commit)
}

func printStartupInfo(cfg *config.Config) {
	fmt.Println("\n╔════════════════════════════════════════════════════════╗")
	fmt.Println("║               Server Configuration                     ║")
	fmt.Println("╠════════════════════════════════════════════════════════╣")
	fmt.Printf("║ Address:          %-35s ║\n", cfg.Server.Address())
	fmt.Printf("║ TLS Enabled:      %-35v ║\n", cfg.Server.EnableTLS)
	fmt.Println("╠════════════════════════════════════════════════════════╣")
	fmt.Println("║               Index Configuration                      ║")
	fmt.Println("╠════════════════════════════════════════════════════════╣")
	fmt.Printf("║ N Postings:       %-35d ║\n", cfg.Index.NPostings)
	fmt.Printf("║ Block Size:       %-35d ║\n", cfg.Index.BlockSize)
	fmt.Printf("║ Centroid Frac:    %-35v ║\n", cfg.Index.CentroidFraction)
	fmt.Printf("║ Summary Energy:   %-35v ║\n", cfg.Index.SummaryEnergy)
	fmt.Printf("║ Data Dir:         %-35s ║\n", cfg.Data.DataDir)
	fmt.Println("╠════════════════════════════════════════════════════════╣")
	fmt.Println("║               Query Defaults                           ║")
	fmt.Println("╠════════════════════════════════════════════════════════╣")
	fmt.Printf("║ K:                %-35d ║\n", cfg.Query.K)
	fmt.Printf("║ Query Cut:        %-35d ║\n", cfg.Query.QueryCut)
	fmt.Printf("║ Heap Factor:      %-35v ║\n", cfg.Query.HeapFactor)
	fmt.Println("╚════════════════════════════════════════════════════════╝")
	fmt.Println()
}

func showUsage() {
	fmt.Println("seismic server - sparse approximate nearest neighbor search")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  seismic-server [options]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -help             Show this help message")
	fmt.Println("  -version          Show version information")
	fmt.Println("  -host HOST        Server host (default: 0.0.0.0)")
	fmt.Println("  -port PORT        Server port (default: 8080)")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  SEISMIC_HOST                Server host")
	fmt.Println("  SEISMIC_PORT                Server port")
	fmt.Println("  SEISMIC_REQUEST_TIMEOUT     Request timeout (e.g., 30s)")
	fmt.Println("  SEISMIC_ENABLE_TLS          Enable TLS (true/false)")
	fmt.Println("  SEISMIC_N_POSTINGS          Posting-list candidates kept per component")
	fmt.Println("  SEISMIC_BLOCK_SIZE          Target block size for FixedSize blocking")
	fmt.Println("  SEISMIC_CENTROID_FRACTION   RandomKmeans centroid fraction")
	fmt.Println("  SEISMIC_SUMMARY_ENERGY      EnergyPreserving summary energy")
	fmt.Println("  SEISMIC_SEED                Base RNG seed for deterministic builds")
	fmt.Println("  SEISMIC_QUERY_K             Default number of results returned")
	fmt.Println("  SEISMIC_QUERY_CUT           Default number of query components searched")
	fmt.Println("  SEISMIC_HEAP_FACTOR         Default block-skip heap factor")
	fmt.Println("  SEISMIC_DATA_DIR            Data directory path")
	fmt.Println("  SEISMIC_INDEX_FILE          Index file name within the data directory")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  # Start with default configuration")
	fmt.Println("  seismic-server")
	fmt.Println()
	fmt.Println("  # Start on custom port")
	fmt.Println("  seismic-server -port 9090")
	fmt.Println()
	fmt.Println("  # Start with environment variables")
	fmt.Println("  SEISMIC_PORT=9090 SEISMIC_N_POSTINGS=6000 seismic-server")
	fmt.Println()
}

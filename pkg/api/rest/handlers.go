package rest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/fschlatt/seismic/pkg/observability"
	"github.com/fschlatt/seismic/pkg/seismic"
	"github.com/fschlatt/seismic/pkg/sparse"
)

// Handler serves the query and introspection endpoints over a loaded index.
// Index is replaced wholesale by Reload, never mutated in place, so readers
// never observe a half-built index.
type Handler struct {
	mu      sync.RWMutex
	index   *seismic.InvertedIndex[uint16, sparse.F16]
	metrics *observability.Metrics
	logger  *observability.Logger
}

// NewHandler creates a REST handler over an already-built index.
func NewHandler(index *seismic.InvertedIndex[uint16, sparse.F16], metrics *observability.Metrics, logger *observability.Logger) *Handler {
	return &Handler{index: index, metrics: metrics, logger: logger}
}

// Reload atomically swaps in a newly built index.
func (h *Handler) Reload(index *seismic.InvertedIndex[uint16, sparse.F16]) {
	h.mu.Lock()
	h.index = index
	h.mu.Unlock()
}

func (h *Handler) current() *seismic.InvertedIndex[uint16, sparse.F16] {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.index
}

// HealthCheck handles GET /v1/health.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}

// GetStats handles GET /v1/stats.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	idx := h.current()
	if idx == nil {
		writeError(w, "No index loaded", http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, statsResponse{
		NumDocuments:    idx.Dataset().Len(),
		NumComponents:   idx.NumComponents(),
		SpaceUsageBytes: idx.SpaceUsageBytes(),
		Config:          idx.Config(),
	}, http.StatusOK)
}

type statsResponse struct {
	NumDocuments    int                   `json:"num_documents"`
	NumComponents   int                   `json:"num_components"`
	SpaceUsageBytes int                   `json:"space_usage_bytes"`
	Config          seismic.Configuration `json:"config"`
}

// searchRequest is the JSON body accepted by POST /v1/search.
type searchRequest struct {
	Components []uint16 `json:"components"`
	Values     []float32 `json:"values"`
	K          int     `json:"k,omitempty"`
	QueryCut   int     `json:"query_cut,omitempty"`
	HeapFactor float32 `json:"heap_factor,omitempty"`
}

type searchResult struct {
	DocID      int     `json:"doc_id"`
	Similarity float32 `json:"similarity"`
}

// Search handles POST /v1/search.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	if len(req.Components) != len(req.Values) {
		writeError(w, "components and values must have the same length", http.StatusBadRequest)
		return
	}

	idx := h.current()
	if idx == nil {
		writeError(w, "No index loaded", http.StatusServiceUnavailable)
		return
	}

	qcfg := seismic.DefaultQueryConfiguration()
	if req.K > 0 {
		qcfg.K = req.K
	}
	if req.QueryCut > 0 {
		qcfg.QueryCut = req.QueryCut
	}
	if req.HeapFactor > 0 {
		qcfg.HeapFactor = req.HeapFactor
	}

	start := time.Now()
	hits := seismic.Query(idx, req.Components, req.Values, qcfg)
	elapsed := time.Since(start)

	results := make([]searchResult, len(hits))
	for i, hit := range hits {
		results[i] = searchResult{DocID: hit.Offset, Similarity: hit.Similarity}
	}

	if h.metrics != nil {
		h.metrics.RecordQuery(elapsed, len(results), 0, 0)
	}
	if h.logger != nil {
		h.logger.Debugf("search returned %d results in %v", len(results), elapsed)
	}

	writeJSON(w, map[string]interface{}{"results": results, "took_ms": elapsed.Milliseconds()}, http.StatusOK)
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, fmt.Sprintf("Failed to encode response: %v", err), http.StatusInternalServerError)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":  message,
		"status": statusCode,
	})
}

// ParseIntQuery parses an integer query parameter.
func ParseIntQuery(r *http.Request, key string, defaultValue int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return parsed
}

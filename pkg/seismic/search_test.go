package seismic

import "testing"

func TestQueryExactRecallOnTinyCorpus(t *testing.T) {
	ds := corpus(t)
	idx, err := Build(ds, noPruningConfig())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	// Query matches doc2's signature (components 2 and 3) exactly.
	queryComponents := []uint16{2, 3}
	queryValues := []float32{3, 1}
	qcfg := QueryConfiguration{K: 1, QueryCut: 2, HeapFactor: 0.9}

	results := Query(idx, queryComponents, queryValues, qcfg)
	if len(results) != 1 {
		t.Fatalf("Query() returned %d results, want 1", len(results))
	}
	if results[0].Offset != 2 {
		t.Errorf("Query() top result = doc %d, want doc 2", results[0].Offset)
	}
}

func TestQueryReturnsDescendingSimilarity(t *testing.T) {
	ds := corpus(t)
	idx, err := Build(ds, noPruningConfig())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	queryComponents := []uint16{1, 2, 3}
	queryValues := []float32{1, 1, 1}
	qcfg := QueryConfiguration{K: 5, QueryCut: 3, HeapFactor: 0.9}

	results := Query(idx, queryComponents, queryValues, qcfg)
	for i := 1; i < len(results); i++ {
		if results[i-1].Similarity < results[i].Similarity {
			t.Errorf("Query() not descending at index %d: %v then %v", i, results[i-1].Similarity, results[i].Similarity)
		}
	}
}

func TestQuerySkipsComponentsBeyondIndexRange(t *testing.T) {
	ds := corpus(t)
	idx, err := Build(ds, noPruningConfig())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	// A component id outside the built vocabulary must not panic; the
	// executor silently skips it.
	queryComponents := []uint16{2, 200}
	queryValues := []float32{1, 1}
	qcfg := QueryConfiguration{K: 1, QueryCut: 2, HeapFactor: 0.9}

	results := Query(idx, queryComponents, queryValues, qcfg)
	if len(results) == 0 {
		t.Error("Query() returned no results, want at least one from the in-range component")
	}
}

package search

import (
	"math"
	"testing"
)

func TestOptionsAndDefaults(t *testing.T) {
	def := defaultConfig()
	if def.minTokenRunes != 2 || def.stopwords == nil || def.maxDocs != 0 {
		t.Fatalf("defaultConfig unexpected: %#v", def)
	}
	if _, ok := def.stopwords["and"]; !ok {
		t.Fatalf("default stopwords should include 'and'")
	}

	cfg := def
	WithMinTokenRunes(3)(&cfg)
	if cfg.minTokenRunes != 3 {
		t.Fatalf("WithMinTokenRunes failed: %d", cfg.minTokenRunes)
	}
	WithMinTokenRunes(-1)(&cfg) // no-op
	if cfg.minTokenRunes != 3 {
		t.Fatalf("negative minTokenRunes should be ignored")
	}

	WithStopwords([]string{"  The ", "", "An"})(&cfg)
	if _, ok := cfg.stopwords["the"]; !ok {
		t.Fatalf("WithStopwords failed (missing 'the'): %#v", cfg.stopwords)
	}
	if _, ok := cfg.stopwords["and"]; ok {
		t.Fatalf("WithStopwords should replace the default list")
	}

	cfg2 := def
	WithStopwords(nil)(&cfg2) // keeps default
	if _, ok := cfg2.stopwords["and"]; !ok {
		t.Fatalf("empty stopwords should keep the default list")
	}

	WithMaxDocs(2)(&cfg)
	if cfg.maxDocs != 2 {
		t.Fatalf("WithMaxDocs failed: %d", cfg.maxDocs)
	}
	WithMaxDocs(0)(&cfg) // no-op
	if cfg.maxDocs != 2 {
		t.Fatalf("non-positive maxDocs should be ignored")
	}
}

func TestTopK_RanksByJaccardAndKeepsOrderOnTies(t *testing.T) {
	idx := NewIndex([]Document{
		{ID: "a", Text: "Stainless steel pipes"},
		{ID: "b", Text: "Steel pipes"},
		{ID: "c", Text: "Cotton yarn"},
		{ID: "d", Text: "Galvanized steel pipes"},
		{ID: "e", Text: "and of the"}, // only stopwords: skipped
	})
	if idx.Len() != 4 {
		t.Fatalf("expected 4 indexed docs, got %d", idx.Len())
	}

	res := idx.TopK("STEEL pipes", 0)
	if len(res) != 3 {
		t.Fatalf("expected 3 matches, got %+v", res)
	}
	if res[0].ID != "b" || math.Abs(res[0].Score-1.0) > 1e-9 {
		t.Fatalf("exact match should rank first: %+v", res)
	}
	// a and d tie at 2/3; input order wins.
	if res[1].ID != "a" || res[2].ID != "d" {
		t.Fatalf("tie order not preserved: %+v", res)
	}

	if got := idx.TopK("steel", 1); len(got) != 1 {
		t.Fatalf("k should cap results: %+v", got)
	}
	if got := idx.TopK("   ", 3); got != nil {
		t.Fatalf("blank query should return nil")
	}
	if got := idx.TopK("the and", 3); got != nil {
		t.Fatalf("stopword-only query should return nil")
	}
	if got := idx.TopK("granite", 3); got != nil {
		t.Fatalf("no overlap should return nil")
	}
}

func TestNewIndex_MaxDocsAndEmpty(t *testing.T) {
	idx := NewIndex([]Document{{ID: "1", Text: "alpha"}, {ID: "2", Text: "beta"}, {ID: "3", Text: "gamma"}}, WithMaxDocs(2))
	if idx.Len() != 2 {
		t.Fatalf("expected maxDocs cap, got %d", idx.Len())
	}
	if NewIndex(nil).TopK("alpha", 1) != nil {
		t.Fatalf("empty index should return nil")
	}
}

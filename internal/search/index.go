// Package search provides text folding, tokenization and a small,
// deterministic, concurrency-safe in-memory index over lead texts.
//
//   - No logging in the library (callers decide how/what to log)
//   - Functional options (Option pattern)
//   - Unicode-aware tokenization with optional stop-word removal
//   - Immutable, read-only index after construction (safe for concurrent use)
//   - Deterministic scoring and sorting (stable order for ties)
//
// Scoring uses Jaccard similarity between the query token set and each
// document's token set: score = |Q ∩ D| / |Q ∪ D|.
package search

import (
	"sort"
	"strings"
)

// Document is one indexed text with the caller's identifier.
type Document struct {
	ID   string
	Text string
}

// Result is a ranked document with its similarity score.
type Result struct {
	ID    string
	Score float64
}

// Index is the minimal interface implemented by all search indices.
type Index interface {
	TopK(query string, k int) []Result
	Len() int
}

// ----------------------------------------------------------------------------
// Options

type Option func(*config)

type config struct {
	minTokenRunes int
	stopwords     map[string]struct{}
	maxDocs       int
}

func defaultConfig() config {
	return config{
		minTokenRunes: 2,
		stopwords:     StopSet(DefaultStopwords),
		maxDocs:       0,
	}
}

// WithMinTokenRunes drops tokens shorter than n runes.
func WithMinTokenRunes(n int) Option {
	return func(c *config) {
		if n >= 0 {
			c.minTokenRunes = n
		}
	}
}

// WithStopwords replaces the default stop-word list. An empty list keeps the default.
func WithStopwords(words []string) Option {
	return func(c *config) {
		if m := StopSet(words); m != nil {
			c.stopwords = m
		}
	}
}

// WithMaxDocs caps how many documents are indexed.
func WithMaxDocs(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxDocs = n
		}
	}
}

// ----------------------------------------------------------------------------
// Implementation

type doc struct {
	id     string
	tokens map[string]struct{}
	tLen   int
	order  int
}

type index struct {
	cfg  config
	docs []doc
}

// NewIndex builds an Index from docs. Documents without significant tokens
// are skipped.
func NewIndex(docs []Document, opts ...Option) Index {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	out := make([]doc, 0, len(docs))
	for i, d := range docs {
		toks := Tokenize(d.Text, cfg.stopwords, cfg.minTokenRunes)
		if len(toks) == 0 {
			continue
		}
		out = append(out, doc{id: d.ID, tokens: toks, tLen: len(toks), order: i})
		if cfg.maxDocs > 0 && len(out) >= cfg.maxDocs {
			break
		}
	}
	return &index{cfg: cfg, docs: out}
}

func (i *index) Len() int { return len(i.docs) }

// TopK returns up to k best-matching documents by Jaccard similarity. Ties
// keep the input order. k <= 0 returns every match.
func (i *index) TopK(q string, k int) []Result {
	if len(i.docs) == 0 || strings.TrimSpace(q) == "" {
		return nil
	}
	qTokens := Tokenize(q, i.cfg.stopwords, i.cfg.minTokenRunes)
	if len(qTokens) == 0 {
		return nil
	}
	qLen := len(qTokens)

	type scored struct {
		id    string
		score float64
		order int
	}
	buf := make([]scored, 0, len(i.docs))
	for _, d := range i.docs {
		over := Overlap(qTokens, d.tokens)
		if over == 0 {
			continue
		}
		union := float64(qLen + d.tLen - over)
		buf = append(buf, scored{id: d.id, score: float64(over) / union, order: d.order})
	}
	if len(buf) == 0 {
		return nil
	}

	sort.SliceStable(buf, func(a, b int) bool {
		if buf[a].score != buf[b].score {
			return buf[a].score > buf[b].score
		}
		return buf[a].order < buf[b].order
	})

	if k <= 0 || k > len(buf) {
		k = len(buf)
	}
	out := make([]Result, k)
	for j := 0; j < k; j++ {
		out[j] = Result{ID: buf[j].id, Score: buf[j].score}
	}
	return out
}

// Package marketplace implements the vendor-side lead filter. It is a pure
// function over in-memory values: no I/O, no logging and no shared state.
package marketplace

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tbourn/go-trademart-backend/internal/domain"
	"github.com/tbourn/go-trademart-backend/internal/search"
)

// Preferences is the filter a vendor declared. An empty list or an absent
// bound disables filtering on that axis.
type Preferences struct {
	Categories []string
	Cities     []string
	States     []string
	MinBudget  decimal.NullDecimal
	MaxBudget  decimal.NullDecimal
}

// FromVendorPreference converts the stored row. A nil row yields the empty filter.
func FromVendorPreference(p *domain.VendorPreference) Preferences {
	if p == nil {
		return Preferences{}
	}
	return Preferences{
		Categories: p.Categories,
		Cities:     p.Cities,
		States:     p.States,
		MinBudget:  p.MinBudget,
		MaxBudget:  p.MaxBudget,
	}
}

// IsEmpty reports whether the filter matches every lead.
func (p Preferences) IsEmpty() bool {
	return len(nonBlank(p.Categories)) == 0 &&
		len(nonBlank(p.Cities)) == 0 &&
		len(nonBlank(p.States)) == 0 &&
		!p.MinBudget.Valid && !p.MaxBudget.Valid
}

// Filter returns the leads matching prefs in their input order. The
// category, location and budget predicates are combined with AND.
func Filter(leads []domain.Lead, prefs Preferences) []domain.Lead {
	if prefs.IsEmpty() {
		return leads
	}
	m := compile(prefs)
	out := make([]domain.Lead, 0, len(leads))
	for _, l := range leads {
		if m.match(l) {
			out = append(out, l)
		}
	}
	return out
}

type category struct {
	folded string
	tokens map[string]struct{}
}

type matcher struct {
	categories []category
	cities     map[string]struct{}
	states     map[string]struct{}
	min, max   decimal.NullDecimal
}

var stop = search.StopSet(search.DefaultStopwords)

// minTokenRunes keeps short codes such as "hp" or "ac" significant.
const minTokenRunes = 2

func compile(p Preferences) matcher {
	m := matcher{
		cities: foldSet(p.Cities),
		states: foldSet(p.States),
		min:    p.MinBudget,
		max:    p.MaxBudget,
	}
	for _, c := range nonBlank(p.Categories) {
		m.categories = append(m.categories, category{
			folded: search.Fold(c),
			tokens: search.Tokenize(c, stop, minTokenRunes),
		})
	}
	return m
}

func (m matcher) match(l domain.Lead) bool {
	return m.matchCategory(l) && m.matchLocation(l) && m.matchBudget(l)
}

// matchCategory accepts a lead whose category (or, lacking one, its product
// name and title) contains a preferred category, is contained by one, or
// shares a significant token with one.
func (m matcher) matchCategory(l domain.Lead) bool {
	if len(m.categories) == 0 {
		return true
	}
	text := l.Category
	if strings.TrimSpace(text) == "" {
		text = l.ProductName + " " + l.Title
	}
	folded := search.Fold(text)
	if folded == "" {
		return false
	}
	tokens := search.Tokenize(text, stop, minTokenRunes)
	for _, c := range m.categories {
		if c.folded == "" {
			continue
		}
		if strings.Contains(folded, c.folded) || strings.Contains(c.folded, folded) {
			return true
		}
		if search.Overlap(tokens, c.tokens) > 0 {
			return true
		}
	}
	return false
}

// matchLocation accepts a lead whose city is a preferred city or whose state
// is a preferred state.
func (m matcher) matchLocation(l domain.Lead) bool {
	if len(m.cities) == 0 && len(m.states) == 0 {
		return true
	}
	if _, ok := m.cities[search.Fold(l.City)]; ok {
		return true
	}
	_, ok := m.states[search.Fold(l.State)]
	return ok
}

// matchBudget accepts a lead whose budget lies within [min, max]. Leads
// without a budget are accepted.
func (m matcher) matchBudget(l domain.Lead) bool {
	if !l.Budget.Valid {
		return true
	}
	b := l.Budget.Decimal
	if m.min.Valid && b.LessThan(m.min.Decimal) {
		return false
	}
	if m.max.Valid && b.GreaterThan(m.max.Decimal) {
		return false
	}
	return true
}

func foldSet(vals []string) map[string]struct{} {
	out := make(map[string]struct{}, len(vals))
	for _, v := range vals {
		if f := search.Fold(v); f != "" {
			out[f] = struct{}{}
		}
	}
	return out
}

func nonBlank(vals []string) []string {
	out := vals[:0:0]
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}

// Package catalog derives the displayed product sequence from a snapshot, a
// free-text query and a sort state.
package catalog

import (
	"cmp"
	"math"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"github.com/sandeepkv93/invotrac/internal/domain"
)

type entry struct {
	product domain.Product
	num     float64
	text    string
}

// Derive filters products by query and orders the survivors by state. The
// input slice is never modified. Ties keep their input order.
func Derive(products []domain.Product, query string, state SortState) []domain.Product {
	state = state.normalized()
	fold := cases.Fold()
	q := fold.String(strings.TrimSpace(query))

	entries := make([]entry, 0, len(products))
	for _, p := range products {
		if q != "" && !matches(p, q, fold) {
			continue
		}
		entries = append(entries, keyed(p, state.Key, fold))
	}

	compare := compareText
	if state.Key.Numeric() {
		compare = compareNumeric
	}
	slices.SortStableFunc(entries, func(a, b entry) int {
		c := compare(a, b)
		if state.Direction == Desc {
			return -c
		}
		return c
	})

	out := make([]domain.Product, len(entries))
	for i, e := range entries {
		out[i] = e.product
	}
	return out
}

// Matches reports whether p passes the query filter.
func Matches(p domain.Product, query string) bool {
	fold := cases.Fold()
	q := fold.String(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return matches(p, q, fold)
}

func matches(p domain.Product, q string, fold cases.Caser) bool {
	if strings.Contains(strconv.FormatInt(p.ID, 10), q) {
		return true
	}
	if p.Name != "" && strings.Contains(fold.String(p.Name), q) {
		return true
	}
	return p.Description != "" && strings.Contains(fold.String(p.Description), q)
}

func keyed(p domain.Product, key SortKey, fold cases.Caser) entry {
	e := entry{product: p}
	switch key {
	case KeyID:
		e.num = float64(p.ID)
	case KeyPrice:
		e.num = p.Price.Float()
	case KeyQuantity:
		e.num = p.Quantity.Float()
	case KeyName:
		e.text = fold.String(p.Name)
	case KeyDescription:
		e.text = fold.String(p.Description)
	}
	return e
}

// compareNumeric orders NaN after every number and equal to other NaNs.
func compareNumeric(a, b entry) int {
	aNaN, bNaN := math.IsNaN(a.num), math.IsNaN(b.num)
	switch {
	case aNaN && bNaN:
		return 0
	case aNaN:
		return 1
	case bNaN:
		return -1
	}
	return cmp.Compare(a.num, b.num)
}

func compareText(a, b entry) int {
	return strings.Compare(a.text, b.text)
}

// Package clienttest runs an in-process products backend for tests.
package clienttest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/sandeepkv93/invotrac/internal/domain"
)

type failure struct {
	status int
	detail string
}

// Backend mimics the products API: bare lists, mutation envelopes and the
// 200 {"error": ...} reply for a missing product.
type Backend struct {
	*httptest.Server

	mu       sync.Mutex
	products map[int64]domain.Product
	fail     map[string]failure
	hits     map[string]int
	headers  []http.Header
}

func NewBackend(seed ...domain.Product) *Backend {
	b := &Backend{
		products: make(map[int64]domain.Product),
		fail:     make(map[string]failure),
		hits:     make(map[string]int),
	}
	for _, p := range seed {
		b.products[p.ID] = p
	}
	r := chi.NewRouter()
	r.Use(b.record)
	r.Get("/products/", b.list)
	r.Post("/products/", b.create)
	r.Get("/products/{id}", b.get)
	r.Put("/products/{id}", b.update)
	r.Delete("/products/{id}", b.remove)
	b.Server = httptest.NewServer(r)
	return b
}

// FailNext makes the next request with the given method answer status with a
// FastAPI style detail body.
func (b *Backend) FailNext(method string, status int, detail string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fail[method] = failure{status: status, detail: detail}
}

func (b *Backend) Hits(method string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[method]
}

func (b *Backend) LastHeaders() http.Header {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.headers) == 0 {
		return nil
	}
	return b.headers[len(b.headers)-1]
}

func (b *Backend) Snapshot() []domain.Product {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sortedLocked()
}

func (b *Backend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.hits[r.Method]++
		b.headers = append(b.headers, r.Header.Clone())
		f, failing := b.fail[r.Method]
		delete(b.fail, r.Method)
		b.mu.Unlock()
		if failing {
			writeJSON(w, f.status, map[string]string{"detail": f.detail})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) list(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	out := b.sortedLocked()
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	b.mu.Lock()
	p, found := b.products[id]
	b.mu.Unlock()
	if !found {
		writeJSON(w, http.StatusOK, map[string]string{"error": "Product not found"})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (b *Backend) create(w http.ResponseWriter, r *http.Request) {
	var p domain.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": []map[string]string{{"msg": "invalid body"}}})
		return
	}
	b.mu.Lock()
	_, exists := b.products[p.ID]
	if !exists {
		b.products[p.ID] = p
	}
	b.mu.Unlock()
	if exists {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Product with this ID already exists"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Product created successfully", "product": p})
}

func (b *Backend) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var p domain.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": []map[string]string{{"msg": "invalid body"}}})
		return
	}
	b.mu.Lock()
	_, exists := b.products[id]
	if exists {
		p.ID = id
		b.products[id] = p
	}
	b.mu.Unlock()
	if !exists {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Product not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Product updated successfully", "product": p})
}

func (b *Backend) remove(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	b.mu.Lock()
	_, exists := b.products[id]
	delete(b.products, id)
	b.mu.Unlock()
	if !exists {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Product not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Product deleted successfully"})
}

func (b *Backend) sortedLocked() []domain.Product {
	out := make([]domain.Product, 0, len(b.products))
	for _, p := range b.products {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, c domain.Product) int {
		switch {
		case a.ID < c.ID:
			return -1
		case a.ID > c.ID:
			return 1
		}
		return 0
	})
	return out
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": []map[string]string{{"msg": "id must be an integer"}}})
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

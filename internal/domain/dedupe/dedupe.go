// Package dedupe detects repeated invoices within a batch.
package dedupe

import (
	"container/list"
	"strings"
	"sync"
)

// Deduper remembers invoice keys it has seen.
type Deduper interface {
	// SeenAndRecord reports whether key was already recorded and records it
	// if it was not. Safe for concurrent use.
	SeenAndRecord(key string) bool
	Size() int
}

// InvoiceKey builds the key identifying one invoice of one party. The party
// is compared exactly as transactions are grouped: trimmed, case-sensitive.
func InvoiceKey(party, invoice string) string {
	return strings.TrimSpace(party) + "\x00" + strings.TrimSpace(invoice)
}

// inMemoryDeduper keeps keys in a map plus an insertion-ordered list. When
// bounded it forgets the oldest key first.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]*list.Element
	order   *list.List // front is oldest
	maxSize int        // <= 0 means unbounded
}

// NewInMemoryDeduper creates an in-memory deduper.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]*list.Element)
	d.order = list.New()
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[key]; ok {
		return true
	}
	if d.maxSize > 0 && len(d.seen) >= d.maxSize {
		d.evictOldest()
	}
	d.seen[key] = d.order.PushBack(key)
	return false
}

// evictOldest drops the front of the list. Caller holds d.mu.
func (d *inMemoryDeduper) evictOldest() {
	e := d.order.Front()
	if e == nil {
		return
	}
	d.order.Remove(e)
	delete(d.seen, e.Value.(string))
}

func (d *inMemoryDeduper) Size() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}

package storage

import (
	"sync"

	"auction-etl/models"
)

// MemoryWriter accumulates rows in memory.
type MemoryWriter struct {
	mu      sync.Mutex
	rows    map[models.Relation][]string
	flushes int
	closed  bool
}

func NewMemoryWriter() *MemoryWriter {
	return &MemoryWriter{rows: make(map[models.Relation][]string)}
}

func (m *MemoryWriter) Append(rel models.Relation, rows []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[rel] = append(m.rows[rel], rows...)
	return nil
}

func (m *MemoryWriter) Flush() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flushes++
	return nil
}

func (m *MemoryWriter) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Rows returns a copy of everything appended for rel.
func (m *MemoryWriter) Rows(rel models.Relation) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.rows[rel]))
	copy(out, m.rows[rel])
	return out
}

// Flushes reports how many times Flush was called.
func (m *MemoryWriter) Flushes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.flushes
}

// Closed reports whether Close was called.
func (m *MemoryWriter) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

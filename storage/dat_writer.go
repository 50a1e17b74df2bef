package storage

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"auction-etl/models"
)

// DatWriter appends rendered rows to one file per relation. Files are opened
// in append mode and never truncated, so repeated runs accumulate.
// It is safe for concurrent use.
type DatWriter struct {
	mu      sync.Mutex
	dir     string
	suffix  string
	files   map[models.Relation]*os.File
	writers map[models.Relation]*bufio.Writer
}

// NewDatWriter opens (creating if needed) the four relation files under dir.
func NewDatWriter(dir, suffix string) (*DatWriter, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("dat: create output dir: %w", err)
	}

	w := &DatWriter{
		dir:     dir,
		suffix:  suffix,
		files:   make(map[models.Relation]*os.File, len(models.AllRelations)),
		writers: make(map[models.Relation]*bufio.Writer, len(models.AllRelations)),
	}
	for _, rel := range models.AllRelations {
		path := w.Path(rel)
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			_ = w.Close()
			return nil, fmt.Errorf("dat: open %q: %w", path, err)
		}
		w.files[rel] = f
		w.writers[rel] = bufio.NewWriter(f)
	}
	return w, nil
}

// Path returns the file a relation is written to.
func (w *DatWriter) Path(rel models.Relation) string {
	return DatPath(w.dir, rel, w.suffix)
}

// DatPath builds <dir>/<RELATION><suffix>.
func DatPath(dir string, rel models.Relation, suffix string) string {
	return filepath.Join(dir, rel.Name()+suffix)
}

// Append buffers rows for rel, one per line.
func (w *DatWriter) Append(rel models.Relation, rows []string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	bw, ok := w.writers[rel]
	if !ok {
		return fmt.Errorf("dat: unknown relation %v", rel)
	}
	for _, row := range rows {
		if _, err := bw.WriteString(row); err != nil {
			return fmt.Errorf("dat: write %s row: %w", rel.Name(), err)
		}
		if err := bw.WriteByte('\n'); err != nil {
			return fmt.Errorf("dat: write %s row: %w", rel.Name(), err)
		}
	}
	return nil
}

// Flush pushes buffered rows of every relation to disk.
func (w *DatWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.flushLocked()
}

func (w *DatWriter) flushLocked() error {
	var errs []error
	for _, rel := range models.AllRelations {
		if bw, ok := w.writers[rel]; ok {
			if err := bw.Flush(); err != nil {
				errs = append(errs, fmt.Errorf("dat: flush %s: %w", rel.Name(), err))
			}
		}
	}
	return errors.Join(errs...)
}

// Close flushes and closes every underlying file.
func (w *DatWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	errs := []error{w.flushLocked()}
	for rel, f := range w.files {
		if err := f.Close(); err != nil {
			errs = append(errs, fmt.Errorf("dat: close %s: %w", rel.Name(), err))
		}
	}
	w.files = map[models.Relation]*os.File{}
	w.writers = map[models.Relation]*bufio.Writer{}
	return errors.Join(errs...)
}

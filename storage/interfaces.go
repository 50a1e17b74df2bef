package storage

import "auction-etl/models"

// RowWriter is the interface any relation sink must satisfy. Append must
// not reorder rows within a call.
type RowWriter interface {
	Append(rel models.Relation, rows []string) error
	Flush() error
	Close() error
}

// Loader bulk-loads relation files into a database.
type Loader interface {
	Clear() error
	LoadDir(dir, suffix string) (map[models.Relation]int, error)
	Count(rel models.Relation) (int, error)
	Close() error
}

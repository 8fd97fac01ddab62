// Package targets holds helpers shared by the persistence gateways.
package targets

import (
	"github.com/google/uuid"
	"github.com/mmrzaf/fixturegen/internal/domain"
)

// Document is one record ready to be written, with its assigned identifier.
type Document struct {
	ID     string
	Record domain.Record
}

// Assign gives every record a fresh identifier. The returned documents
// carry a copy of the record with the identifier stored under "_id".
func Assign(records []domain.Record) []Document {
	docs := make([]Document, len(records))
	for i, rec := range records {
		id := uuid.NewString()
		stored := rec.Clone()
		stored[domain.IDField] = id
		docs[i] = Document{ID: id, Record: stored}
	}
	return docs
}

// Result builds the insert result for docs in insertion order.
func Result(docs []Document) *domain.InsertResult {
	res := &domain.InsertResult{
		IDs:     make([]string, len(docs)),
		Records: make([]domain.PersistedRecord, len(docs)),
	}
	for i, d := range docs {
		res.IDs[i] = d.ID
		res.Records[i] = domain.PersistedRecord{ID: d.ID, Record: d.Record}
	}
	return res
}

// Body returns the record without its identifier field, for stores that
// keep the identifier in a dedicated column or metadata field.
func (d Document) Body() domain.Record {
	body := d.Record.Clone()
	delete(body, domain.IDField)
	return body
}

// Batches splits items into consecutive slices of at most size elements.
func Batches[T any](items []T, size int) [][]T {
	if size <= 0 || len(items) <= size {
		if len(items) == 0 {
			return nil
		}
		return [][]T{items}
	}
	out := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		out = append(out, items[start:end])
	}
	return out
}

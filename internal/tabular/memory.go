package tabular

import (
	"context"
	"fmt"
)

// Memory is an in-process Store backed by fixed rows. Each table lists the
// columns it exposes so that missing-column behaviour matches real sources.
type Memory struct {
	tables map[string]memoryTable
}

type memoryTable struct {
	columns map[string]bool
	rows    []Row
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{tables: make(map[string]memoryTable)}
}

// Put registers a table with the given columns and rows, replacing any
// previous table of the same name. It must not be called concurrently with
// ReadTable.
func (m *Memory) Put(name string, columns []string, rows []Row) {
	cols := make(map[string]bool, len(columns))
	for _, c := range columns {
		cols[c] = true
	}
	m.tables[name] = memoryTable{columns: cols, rows: rows}
}

// ReadTable implements Store.
func (m *Memory) ReadTable(ctx context.Context, name string, columns []Column) ([]Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t, ok := m.tables[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, name)
	}

	for _, c := range columns {
		if !c.Optional && !t.columns[c.Name] {
			return nil, MissingColumnError(name, c.Name)
		}
	}

	out := make([]Row, 0, len(t.rows))
	for _, src := range t.rows {
		row := make(Row, len(columns))
		for _, c := range columns {
			if v, ok := src[c.Name]; ok && t.columns[c.Name] {
				row[c.Name] = v
			}
		}
		out = append(out, row)
	}
	return out, nil
}

package domain

import "fmt"

// TrainingSchema is the ordered column manifest the model was fit against.
// Column order is load-bearing: aligned vectors must reproduce it exactly.
// The manifest is produced by the training process and treated as a versioned
// artifact; a missing or malformed manifest is a startup failure when schema
// encoding is selected, never a per-request one.
type TrainingSchema struct {
	columns []string
	index   map[string]int
}

// NewTrainingSchema validates and wraps a column manifest. It rejects empty
// manifests and duplicate columns.
func NewTrainingSchema(columns []string) (*TrainingSchema, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("training schema: no columns")
	}
	index := make(map[string]int, len(columns))
	for i, col := range columns {
		if col == "" {
			return nil, fmt.Errorf("training schema: empty column name at position %d", i)
		}
		if prev, dup := index[col]; dup {
			return nil, fmt.Errorf("training schema: duplicate column %q at positions %d and %d", col, prev, i)
		}
		index[col] = i
	}
	return &TrainingSchema{columns: append([]string(nil), columns...), index: index}, nil
}

// Len returns the number of columns.
func (s *TrainingSchema) Len() int { return len(s.columns) }

// Columns returns a copy of the manifest in training order.
func (s *TrainingSchema) Columns() []string {
	out := make([]string, len(s.columns))
	copy(out, s.columns)
	return out
}

// Index returns the position of col and whether it is part of the schema.
func (s *TrainingSchema) Index(col string) (int, bool) {
	i, ok := s.index[col]
	return i, ok
}

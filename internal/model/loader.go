package model

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/aerostat/flight-delay-service/internal/domain"
)

// artifactFile is the on-disk JSON layout exported by the training pipeline.
type artifactFile struct {
	Name      string             `json:"name"`
	Kind      string             `json:"kind"`
	Encoding  string             `json:"encoding"`
	Intercept float64            `json:"intercept"`
	Weights   map[string]float64 `json:"weights"`
}

// LoadSchema reads a training column manifest: a JSON array of column names
// in training order. The manifest is versioned alongside the model artifact.
func LoadSchema(path string) (*domain.TrainingSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read column manifest: %w", err)
	}
	var columns []string
	if err := json.Unmarshal(data, &columns); err != nil {
		return nil, fmt.Errorf("parse column manifest %s: %w", path, err)
	}
	schema, err := domain.NewTrainingSchema(columns)
	if err != nil {
		return nil, fmt.Errorf("column manifest %s: %w", path, err)
	}
	return schema, nil
}

// Load reads and validates a model artifact. Schema-encoded artifacts need
// the training schema the service aligned against; pipeline-encoded ones
// embed their own encoding and take a nil schema.
func Load(path string, schema *domain.TrainingSchema) (*LinearModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model artifact: %w", err)
	}

	var file artifactFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse model artifact %s: %w", path, err)
	}

	kind, err := ParseKind(file.Kind)
	if err != nil {
		return nil, fmt.Errorf("model artifact %s: %w", path, err)
	}
	encoding, err := domain.ParseEncodingMode(file.Encoding)
	if err != nil {
		return nil, fmt.Errorf("model artifact %s: %w", path, err)
	}
	if len(file.Weights) == 0 {
		return nil, fmt.Errorf("model artifact %s: no weights", path)
	}
	if encoding == domain.EncodingSchema && schema == nil {
		return nil, domain.ErrSchemaUnavailable
	}

	return &LinearModel{
		name:      file.Name,
		kind:      kind,
		encoding:  encoding,
		intercept: file.Intercept,
		weights:   file.Weights,
		schema:    schema,
	}, nil
}

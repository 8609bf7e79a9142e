package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// EncodingMode declares which input contract the loaded model artifact uses.
type EncodingMode string

const (
	// EncodingPipeline means the artifact encodes categoricals itself and
	// consumes the raw ordered tuple.
	EncodingPipeline EncodingMode = "pipeline"

	// EncodingSchema means the artifact consumes a pre-expanded one-hot row
	// aligned to the training column manifest.
	EncodingSchema EncodingMode = "schema"
)

// ParseEncodingMode validates a mode string from an artifact manifest.
func ParseEncodingMode(s string) (EncodingMode, error) {
	switch EncodingMode(s) {
	case EncodingPipeline, EncodingSchema:
		return EncodingMode(s), nil
	default:
		return "", fmt.Errorf("unknown encoding mode %q", s)
	}
}

// Request field names, as they appear in the prediction JSON body.
const (
	FieldCarrier   = "carrier"
	FieldOrigin    = "origin"
	FieldDest      = "dest"
	FieldDayOfWeek = "dayOfWeek"
	FieldDepHour   = "depHour"
	FieldLength    = "length"
)

// Logical feature names, as they appear in the training column manifest.
const (
	ColAirline     = "Airline"
	ColAirportFrom = "AirportFrom"
	ColAirportTo   = "AirportTo"
	ColDayOfWeek   = "DayOfWeek"
	ColTime        = "Time"
	ColLength      = "Length"
)

// Defaults applied by schema encoding when an optional field is absent.
const (
	DefaultDayOfWeek = 1
	DefaultDepHour   = 10
	DefaultLength    = 120
)

// RawInput is one untrusted prediction request body.
type RawInput map[string]any

// FeatureRow is the per-request row handed to the model collaborator.
// Pipeline encoding fills only the raw fields; schema encoding additionally
// normalizes the categoricals, derives Time, and fills Vector with the
// one-hot expansion aligned to the training schema.
type FeatureRow struct {
	Airline     string
	AirportFrom string
	AirportTo   string
	DayOfWeek   float64
	DepHour     float64
	Length      float64

	// Time is the HHMM-style schedule encoding (DepHour * 100), set in
	// schema mode only.
	Time float64

	// Vector is the row projected onto the training schema, in schema
	// column order. Nil in pipeline mode.
	Vector []float64
}

// Aligner maps raw request fields onto the feature space the model was
// trained on. It is immutable and safe for concurrent use.
type Aligner struct {
	mode     EncodingMode
	airlines Vocabulary
	airports Vocabulary
	schema   *TrainingSchema
}

// NewAligner builds an aligner for the declared mode. Schema encoding
// requires a training schema; its absence is ErrSchemaUnavailable so that
// startup fails fast instead of every request failing later.
func NewAligner(mode EncodingMode, airlines, airports Vocabulary, schema *TrainingSchema) (*Aligner, error) {
	if mode == EncodingSchema && schema == nil {
		return nil, ErrSchemaUnavailable
	}
	return &Aligner{mode: mode, airlines: airlines, airports: airports, schema: schema}, nil
}

// Mode returns the declared encoding mode.
func (a *Aligner) Mode() EncodingMode { return a.mode }

// Schema returns the training schema, nil in pipeline mode.
func (a *Aligner) Schema() *TrainingSchema { return a.schema }

// Align produces the model-ready feature row for one request.
func (a *Aligner) Align(in RawInput) (FeatureRow, error) {
	if a.mode == EncodingPipeline {
		return a.alignPipeline(in)
	}
	return a.alignSchema(in)
}

// alignPipeline extracts the raw ordered tuple. Every field is required and
// categoricals pass through unnormalized; the artifact owns the encoding.
func (a *Aligner) alignPipeline(in RawInput) (FeatureRow, error) {
	var row FeatureRow
	var err error

	if row.Airline, err = requireString(in, FieldCarrier); err != nil {
		return FeatureRow{}, err
	}
	if row.AirportFrom, err = requireString(in, FieldOrigin); err != nil {
		return FeatureRow{}, err
	}
	if row.AirportTo, err = requireString(in, FieldDest); err != nil {
		return FeatureRow{}, err
	}
	if row.DayOfWeek, err = requireNumber(in, FieldDayOfWeek); err != nil {
		return FeatureRow{}, err
	}
	if row.DepHour, err = requireNumber(in, FieldDepHour); err != nil {
		return FeatureRow{}, err
	}
	if row.Length, err = requireNumber(in, FieldLength); err != nil {
		return FeatureRow{}, err
	}
	return row, nil
}

// alignSchema applies defaults, normalizes categoricals, derives the Time
// encoding, and projects the row onto the training schema. It never fails on
// an absent field; only a present-but-uncoercible numeric is an error.
func (a *Aligner) alignSchema(in RawInput) (FeatureRow, error) {
	row := FeatureRow{
		Airline:     a.airlines.Normalize(stringOrDefault(in, FieldCarrier, Other)),
		AirportFrom: a.airports.Normalize(stringOrDefault(in, FieldOrigin, Other)),
		AirportTo:   a.airports.Normalize(stringOrDefault(in, FieldDest, Other)),
	}

	var err error
	if row.DayOfWeek, err = numberOrDefault(in, FieldDayOfWeek, DefaultDayOfWeek); err != nil {
		return FeatureRow{}, err
	}
	if row.DepHour, err = numberOrDefault(in, FieldDepHour, DefaultDepHour); err != nil {
		return FeatureRow{}, err
	}
	if row.Length, err = numberOrDefault(in, FieldLength, DefaultLength); err != nil {
		return FeatureRow{}, err
	}
	row.Time = row.DepHour * 100

	row.Vector = a.expand(row)
	return row, nil
}

// expand projects a row onto the training schema: numeric columns carry
// their values, the one-hot column of each normalized category carries 1,
// and every other column is 0. The result has exactly the schema's length
// and order for every input.
func (a *Aligner) expand(row FeatureRow) []float64 {
	values := map[string]float64{
		ColDayOfWeek: row.DayOfWeek,
		ColTime:      row.Time,
		ColLength:    row.Length,
	}
	hot := map[string]struct{}{}
	hot[ColAirline+"_"+row.Airline] = struct{}{}
	hot[ColAirportFrom+"_"+row.AirportFrom] = struct{}{}
	hot[ColAirportTo+"_"+row.AirportTo] = struct{}{}

	vec := make([]float64, a.schema.Len())
	for i, col := range a.schema.Columns() {
		if v, ok := values[col]; ok {
			vec[i] = v
			continue
		}
		if _, ok := hot[col]; ok {
			vec[i] = 1
		}
	}
	return vec
}

func requireString(in RawInput, field string) (string, error) {
	v, ok := in[field]
	if !ok || v == nil {
		return "", &MissingFieldError{Field: field}
	}
	s, ok := v.(string)
	if !ok {
		return "", &TypeConversionError{Field: field, Value: v}
	}
	return s, nil
}

func requireNumber(in RawInput, field string) (float64, error) {
	v, ok := in[field]
	if !ok || v == nil {
		return 0, &MissingFieldError{Field: field}
	}
	return coerceNumber(field, v)
}

func stringOrDefault(in RawInput, field, def string) string {
	v, ok := in[field]
	if !ok || v == nil {
		return def
	}
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func numberOrDefault(in RawInput, field string, def float64) (float64, error) {
	v, ok := in[field]
	if !ok || v == nil {
		return def, nil
	}
	return coerceNumber(field, v)
}

// coerceNumber accepts the shapes a JSON body can produce for a numeric
// field: numbers, json.Number, and numeric strings.
func coerceNumber(field string, v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, &TypeConversionError{Field: field, Value: v}
		}
		return f, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, &TypeConversionError{Field: field, Value: v}
		}
		return f, nil
	default:
		return 0, &TypeConversionError{Field: field, Value: v}
	}
}

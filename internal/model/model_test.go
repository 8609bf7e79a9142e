package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aerostat/flight-delay-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const testColumns = `["DayOfWeek","Time","Length","Airline_AA","Airline_OTHER","AirportFrom_JFK","AirportFrom_OTHER","AirportTo_LAX","AirportTo_OTHER"]`

func TestLoadSchema(t *testing.T) {
	t.Run("valid manifest", func(t *testing.T) {
		schema, err := LoadSchema(writeFile(t, "columns.json", testColumns))
		require.NoError(t, err)
		assert.Equal(t, 9, schema.Len())
		assert.Equal(t, "DayOfWeek", schema.Columns()[0])
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadSchema(filepath.Join(t.TempDir(), "nope.json"))
		assert.ErrorContains(t, err, "read column manifest")
	})

	t.Run("malformed JSON", func(t *testing.T) {
		_, err := LoadSchema(writeFile(t, "columns.json", `{"not":"a list"}`))
		assert.ErrorContains(t, err, "parse column manifest")
	})

	t.Run("duplicate columns rejected", func(t *testing.T) {
		_, err := LoadSchema(writeFile(t, "columns.json", `["Time","Time"]`))
		assert.ErrorContains(t, err, "duplicate column")
	})
}

func TestLoad(t *testing.T) {
	schema, err := LoadSchema(writeFile(t, "columns.json", testColumns))
	require.NoError(t, err)

	t.Run("schema-encoded regressor", func(t *testing.T) {
		path := writeFile(t, "model.json", `{
			"name": "delay-reg-v1",
			"kind": "regressor",
			"encoding": "schema",
			"intercept": 5,
			"weights": {"Length": 0.1, "Airline_AA": 12}
		}`)
		m, err := Load(path, schema)
		require.NoError(t, err)
		assert.Equal(t, "delay-reg-v1", m.Name())
		assert.Equal(t, KindRegressor, m.Kind())
		assert.Equal(t, domain.EncodingSchema, m.Encoding())
	})

	t.Run("schema encoding without schema", func(t *testing.T) {
		path := writeFile(t, "model.json", `{"kind":"regressor","encoding":"schema","weights":{"Length":1}}`)
		_, err := Load(path, nil)
		assert.ErrorIs(t, err, domain.ErrSchemaUnavailable)
	})

	t.Run("unknown kind", func(t *testing.T) {
		path := writeFile(t, "model.json", `{"kind":"ranker","encoding":"schema","weights":{"Length":1}}`)
		_, err := Load(path, schema)
		assert.ErrorContains(t, err, "unknown model kind")
	})

	t.Run("unknown encoding", func(t *testing.T) {
		path := writeFile(t, "model.json", `{"kind":"regressor","encoding":"onehot","weights":{"Length":1}}`)
		_, err := Load(path, schema)
		assert.ErrorContains(t, err, "unknown encoding mode")
	})

	t.Run("no weights", func(t *testing.T) {
		path := writeFile(t, "model.json", `{"kind":"regressor","encoding":"schema","weights":{}}`)
		_, err := Load(path, schema)
		assert.ErrorContains(t, err, "no weights")
	})

	t.Run("missing artifact", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "model.json"), schema)
		assert.ErrorContains(t, err, "read model artifact")
	})
}

func TestPredictSchemaEncoding(t *testing.T) {
	schema, err := LoadSchema(writeFile(t, "columns.json", testColumns))
	require.NoError(t, err)

	path := writeFile(t, "model.json", `{
		"kind": "regressor",
		"encoding": "schema",
		"intercept": 2,
		"weights": {"Length": 0.1, "Airline_AA": 10, "AirportFrom_JFK": 5}
	}`)
	m, err := Load(path, schema)
	require.NoError(t, err)

	aligner, err := domain.NewAligner(domain.EncodingSchema, domain.AirlineVocabulary(), domain.AirportVocabulary(), schema)
	require.NoError(t, err)

	row, err := aligner.Align(domain.RawInput{
		"carrier": "AA", "origin": "JFK", "dest": "LAX",
		"dayOfWeek": 3.0, "depHour": 9.0, "length": 100.0,
	})
	require.NoError(t, err)

	preds, err := m.Predict([]domain.FeatureRow{row})
	require.NoError(t, err)
	require.Len(t, preds, 1)
	// 2 + 0.1*100 + 10 + 5
	assert.InDelta(t, 27.0, preds[0], 1e-9)
}

func TestPredictSchemaEncodingRejectsMismatchedVector(t *testing.T) {
	schema, err := LoadSchema(writeFile(t, "columns.json", testColumns))
	require.NoError(t, err)

	path := writeFile(t, "model.json", `{"kind":"regressor","encoding":"schema","weights":{"Length":1}}`)
	m, err := Load(path, schema)
	require.NoError(t, err)

	_, err = m.Predict([]domain.FeatureRow{{Vector: []float64{1, 2}}})
	assert.ErrorContains(t, err, "model expects")
}

func TestPredictPipelineEncoding(t *testing.T) {
	path := writeFile(t, "model.json", `{
		"kind": "regressor",
		"encoding": "pipeline",
		"intercept": 1,
		"weights": {"DepHour": 0.5, "Length": 0.01, "Airline_WN": 8, "AirportFrom_ORD": 3}
	}`)
	m, err := Load(path, nil)
	require.NoError(t, err)

	t.Run("known categories pick up their weights", func(t *testing.T) {
		row := domain.FeatureRow{Airline: "WN", AirportFrom: "ORD", AirportTo: "LAX", DepHour: 10, Length: 100}
		preds, err := m.Predict([]domain.FeatureRow{row})
		require.NoError(t, err)
		// 1 + 0.5*10 + 0.01*100 + 8 + 3
		assert.InDelta(t, 18.0, preds[0], 1e-9)
	})

	t.Run("unseen category contributes nothing", func(t *testing.T) {
		row := domain.FeatureRow{Airline: "ZZ", AirportFrom: "ORD", DepHour: 10, Length: 100}
		preds, err := m.Predict([]domain.FeatureRow{row})
		require.NoError(t, err)
		assert.InDelta(t, 10.0, preds[0], 1e-9)
	})

	t.Run("order is preserved across a batch", func(t *testing.T) {
		rows := []domain.FeatureRow{
			{DepHour: 2},
			{DepHour: 4},
		}
		preds, err := m.Predict(rows)
		require.NoError(t, err)
		assert.InDelta(t, 2.0, preds[0], 1e-9)
		assert.InDelta(t, 3.0, preds[1], 1e-9)
	})
}

func TestPredictClassifier(t *testing.T) {
	path := writeFile(t, "model.json", `{
		"kind": "classifier",
		"encoding": "pipeline",
		"intercept": -5,
		"weights": {"DepHour": 1}
	}`)
	m, err := Load(path, nil)
	require.NoError(t, err)

	preds, err := m.Predict([]domain.FeatureRow{
		{DepHour: 10},
		{DepHour: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0}, preds)
}

// Command validate sanity-checks a model artifact and column manifest pair
// before deployment: it loads both through the same code path the service
// uses, aligns a probe request, and scores it. A non-zero exit means the
// artifacts would put the service into its degraded state.
//
// Usage:
//
//	go run ./cmd/validate -model artifacts/model.json -columns artifacts/columns.json
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/aerostat/flight-delay-service/internal/domain"
	"github.com/aerostat/flight-delay-service/internal/model"
)

func main() {
	modelPath := flag.String("model", "", "path to the model artifact")
	columnsPath := flag.String("columns", "", "path to the training column manifest (schema encoding only)")
	flag.Parse()

	if *modelPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if err := run(*modelPath, *columnsPath); err != nil {
		fmt.Fprintln(os.Stderr, "validation failed:", err)
		os.Exit(1)
	}
}

func run(modelPath, columnsPath string) error {
	var schema *domain.TrainingSchema
	if columnsPath != "" {
		s, err := model.LoadSchema(columnsPath)
		if err != nil {
			return err
		}
		schema = s
		fmt.Printf("column manifest: %d columns\n", s.Len())
	}

	m, err := model.Load(modelPath, schema)
	if err != nil {
		return err
	}
	fmt.Printf("model: name=%s kind=%s encoding=%s\n", m.Name(), m.Kind(), m.Encoding())

	aligner, err := domain.NewAligner(m.Encoding(), domain.AirlineVocabulary(), domain.AirportVocabulary(), schema)
	if err != nil {
		return err
	}

	probe := domain.RawInput{
		"carrier":   "AA",
		"origin":    "JFK",
		"dest":      "LAX",
		"dayOfWeek": 3,
		"depHour":   15,
		"length":    210,
	}
	row, err := aligner.Align(probe)
	if err != nil {
		return fmt.Errorf("probe alignment: %w", err)
	}

	preds, err := m.Predict([]domain.FeatureRow{row})
	if err != nil {
		return fmt.Errorf("probe scoring: %w", err)
	}

	var out domain.Outcome
	if m.Kind() == model.KindClassifier {
		out = domain.ShapeBinary(preds[0])
	} else {
		out = domain.ShapeContinuous(preds[0])
	}
	fmt.Printf("probe prediction: %.4f -> %s\n", preds[0], out.Status)

	return nil
}

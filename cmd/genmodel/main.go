// Command genmodel emits demo artifacts so the prediction and dashboard
// services can run end to end without the real training pipeline: a model
// artifact, its training column manifest, and a small synthetic historical
// dataset. It uses the actual domain vocabularies so the generated column
// manifest matches what the alignment layer produces.
//
// Usage:
//
//	go run ./cmd/genmodel -out-dir artifacts
//	go run ./cmd/genmodel -out-dir artifacts -kind classifier -encoding pipeline
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"hash/fnv"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/aerostat/flight-delay-service/internal/domain"
)

type artifact struct {
	Name      string             `json:"name"`
	Kind      string             `json:"kind"`
	Encoding  string             `json:"encoding"`
	Intercept float64            `json:"intercept"`
	Weights   map[string]float64 `json:"weights"`
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	outDir := flag.String("out-dir", "", "output directory for generated artifacts")
	kind := flag.String("kind", "regressor", "model kind: regressor or classifier")
	encoding := flag.String("encoding", "schema", "encoding mode: schema or pipeline")
	rows := flag.Int("rows", 500, "synthetic dataset rows")
	flag.Parse()

	if *outDir == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out-dir")
	}
	if _, err := domain.ParseEncodingMode(*encoding); err != nil {
		return err
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	columns := trainingColumns()
	if *encoding == string(domain.EncodingSchema) {
		path := filepath.Join(*outDir, "columns.json")
		if err := writeJSON(path, columns); err != nil {
			return fmt.Errorf("writing column manifest: %w", err)
		}
		log.Printf("wrote column manifest: %s (%d columns)", path, len(columns))
	}

	modelPath := filepath.Join(*outDir, "model.json")
	if err := writeJSON(modelPath, buildArtifact(*kind, *encoding, columns)); err != nil {
		return fmt.Errorf("writing model artifact: %w", err)
	}
	log.Printf("wrote model artifact: %s (kind=%s encoding=%s)", modelPath, *kind, *encoding)

	dataPath := filepath.Join(*outDir, "airlines.csv")
	if err := writeDataset(dataPath, *rows); err != nil {
		return fmt.Errorf("writing dataset: %w", err)
	}
	log.Printf("wrote synthetic dataset: %s (%d rows)", dataPath, *rows)

	return nil
}

// trainingColumns reproduces the manifest shape the training pipeline
// exports: numeric columns first, then one-hot expansions of each
// categorical vocabulary including the sentinel.
func trainingColumns() []string {
	columns := []string{domain.ColDayOfWeek, domain.ColTime, domain.ColLength}
	for _, code := range withOther(domain.AirlineVocabulary().Codes()) {
		columns = append(columns, domain.ColAirline+"_"+code)
	}
	for _, code := range withOther(domain.AirportVocabulary().Codes()) {
		columns = append(columns, domain.ColAirportFrom+"_"+code)
	}
	for _, code := range withOther(domain.AirportVocabulary().Codes()) {
		columns = append(columns, domain.ColAirportTo+"_"+code)
	}
	return columns
}

func withOther(codes []string) []string {
	return append(codes, domain.Other)
}

func buildArtifact(kind, encoding string, columns []string) artifact {
	weights := make(map[string]float64, len(columns)+1)
	for _, col := range columns {
		weights[col] = pseudoWeight(col)
	}
	if encoding == string(domain.EncodingPipeline) {
		// Pipeline artifacts consume the raw departure hour rather than the
		// schedule-time encoding.
		delete(weights, domain.ColTime)
		weights["DepHour"] = pseudoWeight("DepHour")
	}

	intercept := 4.0
	if kind == "classifier" {
		intercept = -6.0
	}
	return artifact{
		Name:      "flight-delay-demo-" + kind,
		Kind:      kind,
		Encoding:  encoding,
		Intercept: intercept,
		Weights:   weights,
	}
}

// pseudoWeight derives a stable weight in [-5, 5) from the column name, so
// regenerated artifacts score identically.
func pseudoWeight(col string) float64 {
	h := fnv.New32a()
	h.Write([]byte(col))
	return float64(h.Sum32()%1000)/100.0 - 5.0
}

func writeDataset(path string, rows int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"id", "Airline", "Flight", "AirportFrom", "AirportTo", "DayOfWeek", "Time", "Length", "Delay"}); err != nil {
		return err
	}

	airlines := domain.AirlineVocabulary().Codes()
	airports := append(domain.AirportVocabulary().Codes(), "SAN", "PDX", "AUS")

	for i := 0; i < rows; i++ {
		airline := airlines[i%len(airlines)]
		from := airports[i%len(airports)]
		to := airports[(i+3)%len(airports)]
		day := i%7 + 1
		depHour := 6 + i%16
		length := 60 + (i*17)%300

		// Roughly a third of flights delayed, delay magnitude varies by row.
		delay := 0
		if i%3 == 0 {
			delay = 5 + (i*13)%90
		}

		record := []string{
			strconv.Itoa(i + 1),
			airline,
			strconv.Itoa(100 + i),
			from,
			to,
			strconv.Itoa(day),
			strconv.Itoa(depHour * 100),
			strconv.Itoa(length),
			strconv.Itoa(delay),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return w.Error()
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

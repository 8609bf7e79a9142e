// Package aggregate is the reporting half of the system: a single batch pass
// over the historical flight dataset that produces the summary counts and
// grouped tables the dashboard renders. It shares the vocabulary-bucketing
// policy with the prediction path so reported categories stay stable as new
// codes appear in the data.
package aggregate

import (
	"log/slog"
	"sort"
	"time"

	"github.com/aerostat/flight-delay-service/internal/domain"
	"github.com/aerostat/flight-delay-service/internal/observability"
)

// AirlineCounts is the per-airline on-time/delayed breakdown.
type AirlineCounts struct {
	Airline string `json:"airline"`
	OnTime  int    `json:"on_time"`
	Delayed int    `json:"delayed"`
}

// DayDelay is the summed delay for one day of the week (1–7).
type DayDelay struct {
	DayOfWeek  int     `json:"day_of_week"`
	TotalDelay float64 `json:"total_delay"`
}

// StatusTotals is the overall on-time/delayed split.
type StatusTotals struct {
	OnTime  int `json:"on_time"`
	Delayed int `json:"delayed"`
}

// Summary holds the headline cardinalities after allow-list filtering.
type Summary struct {
	TotalAirlines     int `json:"total_airlines"`
	TotalOrigins      int `json:"total_origins"`
	TotalDestinations int `json:"total_destinations"`
	TotalFlights      int `json:"total_flights"`
}

// Report is everything the presentation layer needs. All orders are stable:
// airlines sorted by code, days ascending.
type Report struct {
	Summary      Summary         `json:"summary"`
	ByAirline    []AirlineCounts `json:"by_airline"`
	DelayByDay   []DayDelay      `json:"delay_by_day"`
	StatusTotals StatusTotals    `json:"status_totals"`
}

// Builder runs the aggregation pass. It is stateless between runs; each
// Build is a full recomputation over its input.
type Builder struct {
	airlines domain.Vocabulary
	airports domain.Vocabulary
	metrics  *observability.Metrics
	logger   *slog.Logger
}

// NewBuilder creates a Builder using the shared vocabularies: the airline
// vocabulary doubles as the reporting allow-list, the airport vocabulary as
// the bucketing watchlist.
func NewBuilder(airlines, airports domain.Vocabulary, metrics *observability.Metrics, logger *slog.Logger) *Builder {
	return &Builder{airlines: airlines, airports: airports, metrics: metrics, logger: logger}
}

// Build computes the report: bucket airports, derive flight status, restrict
// to the airline allow-list, then count and group. Deterministic for a given
// input; no hidden state.
func (b *Builder) Build(records []FlightRecord) Report {
	start := time.Now()

	airlines := map[string]struct{}{}
	origins := map[string]struct{}{}
	destinations := map[string]struct{}{}
	byAirline := map[string]*AirlineCounts{}
	byDay := map[int]float64{}
	var totals StatusTotals
	total := 0

	for _, rec := range records {
		// The sentinel is a vocabulary member but not part of the allow-list:
		// reporting covers the model's actual carriers.
		if !b.airlines.Contains(rec.Airline) || rec.Airline == domain.Other {
			continue
		}
		total++

		origin := b.airports.Normalize(rec.AirportFrom)
		dest := b.airports.Normalize(rec.AirportTo)
		delayed := rec.Delay > 0

		airlines[rec.Airline] = struct{}{}
		origins[origin] = struct{}{}
		destinations[dest] = struct{}{}

		counts := byAirline[rec.Airline]
		if counts == nil {
			counts = &AirlineCounts{Airline: rec.Airline}
			byAirline[rec.Airline] = counts
		}
		if delayed {
			counts.Delayed++
			totals.Delayed++
		} else {
			counts.OnTime++
			totals.OnTime++
		}

		byDay[rec.DayOfWeek] += rec.Delay
	}

	report := Report{
		Summary: Summary{
			TotalAirlines:     len(airlines),
			TotalOrigins:      len(origins),
			TotalDestinations: len(destinations),
			TotalFlights:      total,
		},
		ByAirline:    sortedAirlines(byAirline),
		DelayByDay:   sortedDays(byDay),
		StatusTotals: totals,
	}

	b.metrics.DatasetRows.Add(float64(len(records)))
	b.metrics.ReportBuildDuration.Observe(time.Since(start).Seconds())
	b.logger.Info("aggregation pass complete",
		"rows", len(records),
		"flights", report.Summary.TotalFlights,
		"airlines", report.Summary.TotalAirlines,
	)
	return report
}

func sortedAirlines(byAirline map[string]*AirlineCounts) []AirlineCounts {
	out := make([]AirlineCounts, 0, len(byAirline))
	for _, c := range byAirline {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Airline < out[j].Airline })
	return out
}

func sortedDays(byDay map[int]float64) []DayDelay {
	out := make([]DayDelay, 0, len(byDay))
	for day, sum := range byDay {
		out = append(out, DayDelay{DayOfWeek: day, TotalDelay: sum})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DayOfWeek < out[j].DayOfWeek })
	return out
}

// Package outbreak flags abnormal case counts using a z-score against the
// historical baseline of each disease and region.
package outbreak

import (
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"

	"phc-analytics/config"
	"phc-analytics/errors"
	"phc-analytics/models"
)

// Detector assesses case series. It holds no mutable state and is safe for
// concurrent use.
type Detector struct {
	cfg             config.OutbreakConfig
	recommendations RecommendationTable
}

// Option customises a Detector.
type Option func(*Detector)

// WithRecommendations replaces the built-in recommendation table.
func WithRecommendations(table RecommendationTable) Option {
	return func(d *Detector) {
		d.recommendations = table.clone()
	}
}

// New creates a Detector from cfg.
func New(cfg config.OutbreakConfig, opts ...Option) (*Detector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("outbreak config: %w", err)
	}
	d := &Detector{
		cfg:             cfg,
		recommendations: DefaultRecommendations(),
	}
	for _, opt := range opts {
		opt(d)
	}
	for _, s := range []models.Severity{models.SeverityNone, models.SeverityModerate, models.SeveritySevere} {
		if _, ok := d.recommendations[models.DiseaseGeneric][s]; !ok {
			return nil, fmt.Errorf("recommendation table: generic entry missing severity %s", s)
		}
	}
	return d, nil
}

// Assess classifies the current case count of series against its history.
func (d *Detector) Assess(series models.CaseSeries) (*models.OutbreakAssessment, error) {
	const op = "outbreak.Assess"

	if series.Current < 0 {
		return nil, errors.Invalid(op, "current_cases", "must be >= 0, got %d", series.Current)
	}
	if len(series.Historical) == 0 {
		return nil, &errors.EvalError{
			Op:    op,
			Field: "historical_cases",
			Err:   fmt.Errorf("%w: at least one historical sample is required", errors.ErrInsufficientData),
		}
	}
	for i, v := range series.Historical {
		if v < 0 {
			return nil, errors.Invalid(op, "historical_cases", "sample %d must be >= 0, got %d", i, v)
		}
	}

	history := series.Historical
	if d.cfg.TrimOutliers {
		if trimmed := trimOutliers(history); len(trimmed) > 0 {
			history = trimmed
		}
	}

	samples := make([]float64, len(history))
	for i, v := range history {
		samples[i] = float64(v)
	}
	mean := stat.Mean(samples, nil)
	sd := d.stdDev(samples)

	current := float64(series.Current)
	degenerate := distinct(history) < 2 || sd == 0
	sigma := sd
	if degenerate {
		sigma = d.cfg.Epsilon
	}
	z := (current - mean) / sigma

	severity := d.classify(z)
	isOutbreak := severity > models.SeverityNone
	if degenerate {
		// No historical variance: any excess over the constant baseline counts.
		isOutbreak = current > mean
		if !isOutbreak {
			severity = models.SeverityNone
		} else if severity == models.SeverityNone {
			severity = models.SeverityModerate
		}
	}

	multiplier := math.Inf(1)
	if mean > 0 {
		multiplier = current / mean
	}

	disease, known := models.ParseDisease(series.Disease)

	return &models.OutbreakAssessment{
		Disease:          series.Disease,
		Region:           series.Region,
		PeriodType:       series.PeriodType,
		IsOutbreak:       isOutbreak,
		Severity:         severity,
		ZScore:           z,
		CurrentCases:     series.Current,
		HistoricalMean:   mean,
		HistoricalStdDev: sd,
		Multiplier:       multiplier,
		KnownDisease:     known,
		Recommendations:  d.recommendations.lookup(disease, severity),
	}, nil
}

// Survey assesses every series and summarises the result. It fails as a
// whole if any series is rejected.
func (d *Detector) Survey(series []models.CaseSeries) (*models.SurveillanceReport, error) {
	report := &models.SurveillanceReport{
		Assessments:    make([]models.OutbreakAssessment, 0, len(series)),
		TotalMonitored: len(series),
		OverallStatus:  models.StatusNormal,
	}
	for i, s := range series {
		a, err := d.Assess(s)
		if err != nil {
			return nil, fmt.Errorf("series %d (%s/%s): %w", i, s.Disease, s.Region, err)
		}
		if a.IsOutbreak {
			report.Outbreaks++
		}
		if a.Severity == models.SeveritySevere {
			report.SevereOutbreaks++
		}
		report.Assessments = append(report.Assessments, *a)
	}

	switch {
	case report.SevereOutbreaks > 0:
		report.OverallStatus = models.StatusCritical
	case report.Outbreaks > 0:
		report.OverallStatus = models.StatusAlert
	}
	return report, nil
}

func (d *Detector) classify(z float64) models.Severity {
	switch {
	case z >= d.cfg.SevereZ:
		return models.SeveritySevere
	case z >= d.cfg.ModerateZ:
		return models.SeverityModerate
	default:
		return models.SeverityNone
	}
}

func (d *Detector) stdDev(samples []float64) float64 {
	if len(samples) < 2 {
		return 0
	}
	if d.cfg.StdDev == config.StdDevPopulation {
		return stat.PopStdDev(samples, nil)
	}
	return stat.StdDev(samples, nil)
}

func distinct(values []int) int {
	seen := make(map[int]struct{}, len(values))
	for _, v := range values {
		seen[v] = struct{}{}
	}
	return len(seen)
}

// trimOutliers drops zero samples, which usually mean missing reports, and
// samples outside 1.5 IQR of the quartiles.
func trimOutliers(values []int) []int {
	positive := make([]float64, 0, len(values))
	for _, v := range values {
		if v > 0 {
			positive = append(positive, float64(v))
		}
	}
	if len(positive) == 0 {
		return nil
	}
	sorted := slices.Clone(positive)
	slices.Sort(sorted)
	q1 := stat.Quantile(0.25, stat.LinInterp, sorted, nil)
	q3 := stat.Quantile(0.75, stat.LinInterp, sorted, nil)
	iqr := q3 - q1
	lower, upper := q1-1.5*iqr, q3+1.5*iqr

	out := make([]int, 0, len(positive))
	for _, v := range positive {
		if v >= lower && v <= upper {
			out = append(out, int(v))
		}
	}
	return out
}

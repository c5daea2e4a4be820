// Package metrics provides Prometheus observability metrics for the PHC analytics run.
// It includes Critical and Important metrics for public-health and operational visibility.
package metrics

import (
	"math"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"phc-analytics/models"
)

// Registry is the custom prometheus registry for our application
var Registry = prometheus.NewRegistry()

// factory allows us to register metrics to our custom Registry directly
var factory = promauto.With(Registry)

// =============================================================================
// CRITICAL METRICS - Public Health Impact Visibility
// =============================================================================

// AssessmentsTotal counts outbreak assessments by disease and severity.
var AssessmentsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "outbreak",
	Name:      "assessments_total",
	Help:      "Outbreak assessments by disease and severity",
}, []string{"disease", "severity"})

// ActiveOutbreaks tracks the outbreaks flagged by the latest surveillance run.
var ActiveOutbreaks = factory.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "outbreak",
	Name:      "active",
	Help:      "Outbreaks flagged in the latest surveillance run by severity",
}, []string{"severity"})

// ZScore tracks the latest z-score per disease and region.
var ZScore = factory.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "outbreak",
	Name:      "z_score",
	Help:      "Latest z-score of current cases against the historical baseline",
}, []string{"disease", "region"})

// StaffingGap tracks missing staff by role.
var StaffingGap = factory.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "staffing",
	Name:      "gap",
	Help:      "Staff required but not on duty, by role",
}, []string{"role"})

// StaffingRequired tracks required staff by role.
var StaffingRequired = factory.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "staffing",
	Name:      "required",
	Help:      "Staff required for the predicted patient load, by role",
}, []string{"role"})

// StaffingUrgency is the urgency grade of the latest staffing evaluation
// (0 low, 1 moderate, 2 high, 3 critical).
var StaffingUrgency = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "staffing",
	Name:      "urgency",
	Help:      "Urgency grade of the latest staffing evaluation (0=low .. 3=critical)",
})

// StockAlerts tracks drugs per alert level.
var StockAlerts = factory.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "inventory",
	Name:      "alerts",
	Help:      "Number of drugs at each stockout alert level",
}, []string{"level"})

// DaysRemaining tracks projected days of stock per drug. Drugs without
// usage are not reported.
var DaysRemaining = factory.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "inventory",
	Name:      "days_remaining",
	Help:      "Projected days until stockout per drug",
}, []string{"drug"})

// =============================================================================
// IMPORTANT METRICS - Operational Health
// =============================================================================

// ParserErrorsTotal tracks parse errors by input kind.
var ParserErrorsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "parser",
	Name:      "errors_total",
	Help:      "Total parse errors by input kind",
}, []string{"input"})

// ParserRecordsTotal tracks records successfully parsed by input kind.
var ParserRecordsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "parser",
	Name:      "records_total",
	Help:      "Total CSV records successfully parsed",
}, []string{"input"})

// ParserDurationSeconds tracks time to parse input files.
var ParserDurationSeconds = factory.NewHistogram(prometheus.HistogramOpts{
	Namespace: "parser",
	Name:      "duration_seconds",
	Help:      "Time taken to parse CSV input file",
	Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
})

// EvaluationDurationSeconds tracks evaluation time by evaluator.
var EvaluationDurationSeconds = factory.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "analytics",
	Name:      "evaluation_duration_seconds",
	Help:      "Time taken by each evaluator",
	Buckets:   []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
}, []string{"evaluator"})

// EvaluationErrorsTotal counts rejected evaluations by evaluator.
var EvaluationErrorsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "analytics",
	Name:      "evaluation_errors_total",
	Help:      "Evaluations rejected because of invalid or insufficient input",
}, []string{"evaluator"})

// =============================================================================
// Helper Functions
// =============================================================================

// RecordSurveillance updates the outbreak metrics from a surveillance report.
func RecordSurveillance(report *models.SurveillanceReport) {
	ActiveOutbreaks.Reset()
	ActiveOutbreaks.WithLabelValues(models.SeverityModerate.String()).Set(float64(report.Outbreaks - report.SevereOutbreaks))
	ActiveOutbreaks.WithLabelValues(models.SeveritySevere.String()).Set(float64(report.SevereOutbreaks))

	for _, a := range report.Assessments {
		AssessmentsTotal.WithLabelValues(a.Disease, a.Severity.String()).Inc()
		ZScore.WithLabelValues(a.Disease, a.Region).Set(a.ZScore)
	}
}

// RecordStaffing updates the staffing metrics from an assessment.
func RecordStaffing(a *models.StaffingAssessment) {
	for _, ra := range a.Roles {
		StaffingGap.WithLabelValues(string(ra.Role)).Set(float64(ra.Gap))
		StaffingRequired.WithLabelValues(string(ra.Role)).Set(float64(ra.Required))
	}
	StaffingUrgency.Set(float64(a.Urgency))
}

// RecordInventory updates the inventory metrics from an assessment.
func RecordInventory(a *models.InventoryAssessment) {
	StockAlerts.Reset()
	StockAlerts.WithLabelValues(models.AlertCritical.String()).Set(float64(a.CriticalCount))
	StockAlerts.WithLabelValues(models.AlertWarning.String()).Set(float64(a.WarningCount))
	StockAlerts.WithLabelValues(models.AlertOK.String()).Set(float64(a.TotalDrugs - a.CriticalCount - a.WarningCount))

	DaysRemaining.Reset()
	for _, p := range a.Drugs {
		if math.IsInf(p.DaysRemaining, 1) {
			continue
		}
		DaysRemaining.WithLabelValues(p.DrugName).Set(p.DaysRemaining)
	}
}

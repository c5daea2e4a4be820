package models

import "strings"

// Disease is one of the diseases with a dedicated recommendation table.
// DiseaseGeneric covers every other disease name.
type Disease int

const (
	DiseaseGeneric Disease = iota
	DiseaseMalaria
	DiseaseTyphoid
	DiseaseCholera
	DiseaseMeningitis
)

var diseaseNames = map[string]Disease{
	"malaria":    DiseaseMalaria,
	"typhoid":    DiseaseTyphoid,
	"cholera":    DiseaseCholera,
	"meningitis": DiseaseMeningitis,
}

// ParseDisease maps a free-form disease name onto a Disease. The boolean is
// false when the name is not recognised and DiseaseGeneric is returned.
func ParseDisease(name string) (Disease, bool) {
	d, ok := diseaseNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return DiseaseGeneric, false
	}
	return d, true
}

func (d Disease) String() string {
	switch d {
	case DiseaseMalaria:
		return "malaria"
	case DiseaseTyphoid:
		return "typhoid"
	case DiseaseCholera:
		return "cholera"
	case DiseaseMeningitis:
		return "meningitis"
	default:
		return "generic"
	}
}

// CaseSeries holds the case counts for one disease, region and period type.
// Historical is ordered oldest first and is never modified by the detector.
type CaseSeries struct {
	Disease    string
	Region     string
	PeriodType string
	Current    int
	Historical []int
}

// OutbreakAssessment is the result of assessing a single CaseSeries.
type OutbreakAssessment struct {
	Disease          string
	Region           string
	PeriodType       string
	IsOutbreak       bool
	Severity         Severity
	ZScore           float64
	CurrentCases     int
	HistoricalMean   float64
	HistoricalStdDev float64
	// Multiplier is CurrentCases / HistoricalMean, +Inf when the mean is zero.
	Multiplier float64
	// KnownDisease is false when the generic recommendation table was used.
	KnownDisease    bool
	Recommendations []string
}

// SurveillanceReport aggregates the assessments of several series.
type SurveillanceReport struct {
	Assessments     []OutbreakAssessment
	TotalMonitored  int
	Outbreaks       int
	SevereOutbreaks int
	OverallStatus   SurveillanceStatus
}

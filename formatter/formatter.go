package formatter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"phc-analytics/models"
)

// Report bundles the results of one analytics run. Nil sections are
// omitted from every output format.
type Report struct {
	RunID        string
	Surveillance *models.SurveillanceReport
	Staffing     *models.StaffingAssessment
	Inventory    *models.InventoryAssessment
}

// ReportData holds prepared report data used by all formatters
type ReportData struct {
	RunID        string            `json:"run_id,omitempty"`
	Surveillance *SurveillanceData `json:"surveillance,omitempty"`
	Staffing     *StaffingData     `json:"staffing,omitempty"`
	Inventory    *InventoryData    `json:"inventory,omitempty"`
}

// SurveillanceData is the rendering of a surveillance report
type SurveillanceData struct {
	OverallStatus   models.SurveillanceStatus `json:"overall_status"`
	TotalMonitored  int                       `json:"total_monitored"`
	Outbreaks       int                       `json:"outbreaks_detected"`
	SevereOutbreaks int                       `json:"severe_outbreaks"`
	Assessments     []AssessmentData          `json:"assessments"`
}

// AssessmentData is the rendering of one outbreak assessment.
// Multiplier is null when the historical mean is zero.
type AssessmentData struct {
	Disease         string          `json:"disease"`
	Region          string          `json:"region"`
	PeriodType      string          `json:"period_type"`
	IsOutbreak      bool            `json:"is_outbreak"`
	Severity        models.Severity `json:"severity"`
	ZScore          float64         `json:"z_score"`
	CurrentCases    int             `json:"current_cases"`
	HistoricalMean  float64         `json:"historical_mean"`
	Multiplier      *float64        `json:"multiplier"`
	AlertMessage    string          `json:"alert_message"`
	Recommendations []string        `json:"recommendations"`
}

// StaffingData is the rendering of a staffing assessment
type StaffingData struct {
	PredictedPatients float64             `json:"predicted_patients"`
	FacilityType      models.FacilityType `json:"facility_type"`
	Urgency           models.Urgency      `json:"urgency"`
	Roles             []RoleData          `json:"roles"`
	UnknownRoles      []models.Role       `json:"unknown_roles,omitempty"`
	Recommendations   []string            `json:"recommendations"`
}

// RoleData is the rendering of one role. LoadRatio is null when nobody is
// on duty for a non-zero load.
type RoleData struct {
	Role              models.Role `json:"role"`
	Required          int         `json:"required"`
	Current           int         `json:"current"`
	Gap               int         `json:"gap"`
	Surplus           int         `json:"surplus"`
	Workload          float64     `json:"workload"`
	WorkloadUndefined bool        `json:"workload_undefined"`
	LoadRatio         *float64    `json:"load_ratio"`
}

// InventoryData is the rendering of an inventory assessment
type InventoryData struct {
	OverallStatus models.AlertLevel `json:"overall_status"`
	TotalDrugs    int               `json:"total_drugs"`
	CriticalCount int               `json:"critical_count"`
	WarningCount  int               `json:"warning_count"`
	Drugs         []DrugData        `json:"drugs"`
}

// DrugData is the rendering of one stock projection. DaysRemaining and
// ProjectedStockout are null when the drug is not being used.
type DrugData struct {
	Drug              string            `json:"drug"`
	CurrentStock      float64           `json:"current_stock"`
	DailyUsage        float64           `json:"daily_usage"`
	DaysRemaining     *float64          `json:"days_remaining"`
	Unbounded         bool              `json:"unbounded"`
	ProjectedStockout string            `json:"projected_stockout,omitempty"`
	AlertLevel        models.AlertLevel `json:"alert_level"`
	CriticalDrug      bool              `json:"critical_drug"`
	Recommendations   []string          `json:"recommendations"`
}

// AlertMessage returns the one-line human readable summary of an assessment.
func AlertMessage(a *models.OutbreakAssessment) string {
	switch {
	case a.Severity == models.SeveritySevere:
		return fmt.Sprintf("SEVERE OUTBREAK ALERT: %s cases are %s above normal (%d vs %.0f average)",
			a.Disease, formatMultiplier(a.Multiplier), a.CurrentCases, a.HistoricalMean)
	case a.IsOutbreak:
		return fmt.Sprintf("OUTBREAK ALERT: %s cases are %s above normal (%d vs %.0f average)",
			a.Disease, formatMultiplier(a.Multiplier), a.CurrentCases, a.HistoricalMean)
	default:
		return fmt.Sprintf("Normal levels: %s cases are within normal range (%d vs %.0f average)",
			a.Disease, a.CurrentCases, a.HistoricalMean)
	}
}

// prepareReportData converts the results into their rendering
func prepareReportData(report *Report) *ReportData {
	data := &ReportData{RunID: report.RunID}

	if s := report.Surveillance; s != nil {
		sd := &SurveillanceData{
			OverallStatus:   s.OverallStatus,
			TotalMonitored:  s.TotalMonitored,
			Outbreaks:       s.Outbreaks,
			SevereOutbreaks: s.SevereOutbreaks,
			Assessments:     make([]AssessmentData, 0, len(s.Assessments)),
		}
		for i := range s.Assessments {
			a := &s.Assessments[i]
			sd.Assessments = append(sd.Assessments, AssessmentData{
				Disease:         a.Disease,
				Region:          a.Region,
				PeriodType:      a.PeriodType,
				IsOutbreak:      a.IsOutbreak,
				Severity:        a.Severity,
				ZScore:          round(a.ZScore, 2),
				CurrentCases:    a.CurrentCases,
				HistoricalMean:  round(a.HistoricalMean, 1),
				Multiplier:      finite(round(a.Multiplier, 2)),
				AlertMessage:    AlertMessage(a),
				Recommendations: a.Recommendations,
			})
		}
		data.Surveillance = sd
	}

	if s := report.Staffing; s != nil {
		sd := &StaffingData{
			PredictedPatients: s.PredictedPatients,
			FacilityType:      s.FacilityType,
			Urgency:           s.Urgency,
			Roles:             make([]RoleData, 0, len(s.Roles)),
			UnknownRoles:      s.UnknownRoles,
			Recommendations:   s.Recommendations,
		}
		for _, ra := range s.Roles {
			sd.Roles = append(sd.Roles, RoleData{
				Role:              ra.Role,
				Required:          ra.Required,
				Current:           ra.Current,
				Gap:               ra.Gap,
				Surplus:           ra.Surplus,
				Workload:          round(ra.Workload, 1),
				WorkloadUndefined: ra.WorkloadUndefined,
				LoadRatio:         finite(round(ra.LoadRatio, 2)),
			})
		}
		data.Staffing = sd
	}

	if inv := report.Inventory; inv != nil {
		id := &InventoryData{
			OverallStatus: inv.OverallStatus,
			TotalDrugs:    inv.TotalDrugs,
			CriticalCount: inv.CriticalCount,
			WarningCount:  inv.WarningCount,
			Drugs:         make([]DrugData, 0, len(inv.Drugs)),
		}
		for _, p := range inv.Drugs {
			dd := DrugData{
				Drug:            p.DrugName,
				CurrentStock:    p.CurrentStock,
				DailyUsage:      p.DailyUsage,
				DaysRemaining:   finite(round(p.DaysRemaining, 2)),
				Unbounded:       p.Unbounded(),
				AlertLevel:      p.AlertLevel,
				CriticalDrug:    p.CriticalDrug,
				Recommendations: p.Recommendations,
			}
			if p.ProjectedStockout != nil {
				dd.ProjectedStockout = p.ProjectedStockout.Format(time.DateOnly)
			}
			id.Drugs = append(id.Drugs, dd)
		}
		data.Inventory = id
	}

	return data
}

// FormatText returns the text representation of the report
func FormatText(report *Report) string {
	data := prepareReportData(report)
	var sb strings.Builder

	if s := data.Surveillance; s != nil {
		sb.WriteString("OUTBREAK SURVEILLANCE\n")
		sb.WriteString(fmt.Sprintf("Overall status: %s\n", s.OverallStatus))
		sb.WriteString(fmt.Sprintf("Diseases monitored: %d, outbreaks: %d, severe: %d\n",
			s.TotalMonitored, s.Outbreaks, s.SevereOutbreaks))
		for _, a := range s.Assessments {
			sb.WriteString(fmt.Sprintf("\n%s %s [%s, %s]\n", statusIcon(a), strings.ToUpper(a.Disease), a.Region, a.PeriodType))
			sb.WriteString(fmt.Sprintf("  Current cases: %d, historical average: %.1f, z-score: %.2f\n",
				a.CurrentCases, a.HistoricalMean, a.ZScore))
			sb.WriteString(fmt.Sprintf("  Status: %s\n", strings.ToUpper(a.Severity.String())))
			sb.WriteString(fmt.Sprintf("  Alert: %s\n", a.AlertMessage))
			writeBullets(&sb, a.Recommendations)
		}
		sb.WriteString("\n")
	}

	if s := data.Staffing; s != nil {
		sb.WriteString("STAFFING\n")
		sb.WriteString(fmt.Sprintf("Predicted patients: %g (%s facility)\n", s.PredictedPatients, s.FacilityType))
		sb.WriteString(fmt.Sprintf("Urgency: %s\n", strings.ToUpper(s.Urgency.String())))
		for _, r := range s.Roles {
			workload := fmt.Sprintf("%.1f", r.Workload)
			if r.WorkloadUndefined {
				workload = "N/A (nobody on duty)"
			}
			sb.WriteString(fmt.Sprintf("  %s: required=%d, current=%d, gap=%d, workload=%s\n",
				r.Role, r.Required, r.Current, r.Gap, workload))
		}
		if len(s.UnknownRoles) > 0 {
			names := make([]string, 0, len(s.UnknownRoles))
			for _, role := range s.UnknownRoles {
				names = append(names, string(role))
			}
			sb.WriteString(fmt.Sprintf("  Ignored roles: %s\n", strings.Join(names, ", ")))
		}
		writeBullets(&sb, s.Recommendations)
		sb.WriteString("\n")
	}

	if inv := data.Inventory; inv != nil {
		sb.WriteString("INVENTORY\n")
		sb.WriteString(fmt.Sprintf("Overall status: %s (critical=%d, warning=%d, drugs=%d)\n",
			strings.ToUpper(inv.OverallStatus.String()), inv.CriticalCount, inv.WarningCount, inv.TotalDrugs))
		for _, d := range inv.Drugs {
			if d.Unbounded || d.DaysRemaining == nil {
				sb.WriteString(fmt.Sprintf("  %s: no usage recorded [%s]\n", d.Drug, d.AlertLevel))
				continue
			}
			stockout := d.ProjectedStockout
			if stockout == "" {
				stockout = "beyond projection horizon"
			}
			sb.WriteString(fmt.Sprintf("  %s: %.2f days remaining, stockout %s [%s]\n",
				d.Drug, *d.DaysRemaining, stockout, d.AlertLevel))
		}
	}

	return sb.String()
}

// FormatJSON returns the JSON representation of the report
func FormatJSON(report *Report) string {
	data := prepareReportData(report)
	jsonBytes, _ := json.MarshalIndent(data, "", "  ")
	return string(jsonBytes)
}

// FormatCSV returns the CSV representation of the report, one row per
// assessed disease, role and drug.
func FormatCSV(report *Report) string {
	data := prepareReportData(report)
	var sb strings.Builder
	writer := csv.NewWriter(&sb)

	// Write header
	writer.Write([]string{"Section", "Subject", "Status", "Value", "Details", "Recommendations"})

	if s := data.Surveillance; s != nil {
		for _, a := range s.Assessments {
			writer.Write([]string{
				"outbreak",
				fmt.Sprintf("%s/%s", a.Disease, a.Region),
				a.Severity.String(),
				fmt.Sprintf("%.2f", a.ZScore),
				fmt.Sprintf("current=%d,mean=%.1f,multiplier=%s", a.CurrentCases, a.HistoricalMean, formatOptional(a.Multiplier)),
				strings.Join(a.Recommendations, "; "),
			})
		}
	}

	if s := data.Staffing; s != nil {
		for _, r := range s.Roles {
			writer.Write([]string{
				"staffing",
				string(r.Role),
				s.Urgency.String(),
				fmt.Sprintf("%d", r.Gap),
				fmt.Sprintf("required=%d,current=%d,load_ratio=%s", r.Required, r.Current, formatOptional(r.LoadRatio)),
				"",
			})
		}
	}

	if inv := data.Inventory; inv != nil {
		for _, d := range inv.Drugs {
			writer.Write([]string{
				"inventory",
				d.Drug,
				d.AlertLevel.String(),
				formatOptional(d.DaysRemaining),
				fmt.Sprintf("stock=%g,usage=%g,stockout=%s", d.CurrentStock, d.DailyUsage, d.ProjectedStockout),
				strings.Join(d.Recommendations, "; "),
			})
		}
	}

	writer.Flush()
	return sb.String()
}

func statusIcon(a AssessmentData) string {
	switch {
	case a.Severity == models.SeveritySevere:
		return "[SEVERE]"
	case a.IsOutbreak:
		return "[ALERT]"
	default:
		return "[OK]"
	}
}

func writeBullets(sb *strings.Builder, items []string) {
	for _, item := range items {
		sb.WriteString(fmt.Sprintf("  • %s\n", item))
	}
}

func formatMultiplier(m float64) string {
	if math.IsInf(m, 1) {
		return "N/A"
	}
	return fmt.Sprintf("%.1fx", m)
}

func formatOptional(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", *v)
}

// finite returns nil for infinite or NaN values, which JSON cannot encode.
func finite(v float64) *float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return &v
}

func round(v float64, places int) float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return v
	}
	p := math.Pow(10, float64(places))
	if r := math.Round(v*p) / p; !math.IsInf(r, 0) {
		return r
	}
	return v
}

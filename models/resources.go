package models

import (
	"math"
	"strings"
	"time"
)

// Role is a staff role evaluated by the staffing calculator.
type Role string

const (
	RoleNurse      Role = "nurse"
	RoleDoctor     Role = "doctor"
	RolePharmacist Role = "pharmacist"
)

// Roles lists every role in reporting order.
var Roles = []Role{RoleNurse, RoleDoctor, RolePharmacist}

// ParseRole accepts singular and plural role names, case-insensitively.
func ParseRole(s string) (Role, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimSuffix(s, "s")
	for _, r := range Roles {
		if string(r) == s {
			return r, true
		}
	}
	return "", false
}

// StaffRoster maps a role to the number of staff currently on duty.
// Absent roles count as zero.
type StaffRoster map[Role]int

// Count returns the number of staff for role, zero if absent.
func (r StaffRoster) Count(role Role) int {
	return r[role]
}

// RoleAssessment is the staffing evaluation of a single role.
type RoleAssessment struct {
	Role Role
	// Capacity is the facility-adjusted number of patients one staff member
	// handles per day.
	Capacity float64
	Required int
	Current  int
	Gap      int
	Surplus  int
	// Workload is patients per current staff member, using one member when
	// nobody is on duty. WorkloadUndefined marks that case.
	Workload          float64
	WorkloadUndefined bool
	// LoadRatio is Workload / Capacity, +Inf when nobody is on duty for a
	// non-zero load.
	LoadRatio float64
}

// StaffingAssessment is the result of a staffing evaluation.
type StaffingAssessment struct {
	PredictedPatients float64
	FacilityType      FacilityType
	Roles             []RoleAssessment
	Urgency           Urgency
	Recommendations   []string
	// UnknownRoles are roster roles that have no capacity and were ignored.
	UnknownRoles []Role
}

// Role returns the assessment for role.
func (a *StaffingAssessment) Role(role Role) (RoleAssessment, bool) {
	for _, ra := range a.Roles {
		if ra.Role == role {
			return ra, true
		}
	}
	return RoleAssessment{}, false
}

// DrugStock is the stock snapshot of one drug.
type DrugStock struct {
	DrugName     string
	CurrentStock float64
	DailyUsage   float64
}

// StockProjection is the stockout projection of one drug.
type StockProjection struct {
	DrugName     string
	CurrentStock float64
	DailyUsage   float64
	// DaysRemaining is +Inf when the drug is not being used.
	DaysRemaining float64
	// ProjectedStockout is nil when DaysRemaining is unbounded or beyond
	// the projection horizon.
	ProjectedStockout *time.Time
	AlertLevel        AlertLevel
	CriticalDrug      bool
	Recommendations   []string
}

// Unbounded reports whether the stock never runs out at the current usage.
func (p StockProjection) Unbounded() bool {
	return math.IsInf(p.DaysRemaining, 1)
}

// InventoryAssessment aggregates the projections of a set of drugs.
// Drugs is sorted by drug name.
type InventoryAssessment struct {
	Drugs         []StockProjection
	OverallStatus AlertLevel
	TotalDrugs    int
	CriticalCount int
	WarningCount  int
}

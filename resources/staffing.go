package resources

import (
	"fmt"
	"maps"
	"math"
	"slices"

	"phc-analytics/errors"
	"phc-analytics/models"
)

var roleDuties = map[models.Role]string{
	models.RoleNurse:      "Current workload too high",
	models.RoleDoctor:     "Patient load exceeds capacity",
	models.RolePharmacist: "Prescription load too high",
}

// EvaluateStaffing compares the staff needed for predictedPatients against
// the roster. A nil roster means nobody is on duty. Prescriptions are
// approximated by the patient count. Roster roles without a capacity are
// left out of the evaluation and listed in UnknownRoles.
func (e *Evaluator) EvaluateStaffing(predictedPatients float64, roster models.StaffRoster, facility models.FacilityType) (*models.StaffingAssessment, error) {
	const op = "resources.EvaluateStaffing"

	if !validQuantity(predictedPatients) {
		return nil, errors.Invalid(op, "predicted_patients", "must be a finite number >= 0, got %v", predictedPatients)
	}
	factor, ok := e.staffing.FacilityFactors[facility]
	if !ok {
		return nil, errors.Invalid(op, "facility_type", "unsupported facility type %q", facility)
	}
	var unknown []models.Role
	for _, role := range slices.Sorted(maps.Keys(roster)) {
		if count := roster[role]; count < 0 {
			return nil, errors.Invalid(op, "current_staff", "%s count must be >= 0, got %d", role, count)
		}
		if _, known := e.staffing.Capacity[role]; !known {
			unknown = append(unknown, role)
		}
	}

	assessment := &models.StaffingAssessment{
		PredictedPatients: predictedPatients,
		FacilityType:      facility,
		Roles:             make([]models.RoleAssessment, 0, len(models.Roles)),
		UnknownRoles:      unknown,
	}

	maxRatio := 0.0
	for _, role := range models.Roles {
		ra := e.evaluateRole(role, predictedPatients, roster.Count(role), factor)
		maxRatio = math.Max(maxRatio, ra.LoadRatio)
		assessment.Roles = append(assessment.Roles, ra)
	}

	assessment.Urgency = e.urgency(maxRatio)
	assessment.Recommendations = staffingRecommendations(assessment)
	return assessment, nil
}

func (e *Evaluator) evaluateRole(role models.Role, patients float64, current int, factor float64) models.RoleAssessment {
	capacity := e.staffing.Capacity[role] * factor
	required := requiredStaff(patients, capacity)

	ra := models.RoleAssessment{
		Role:              role,
		Capacity:          capacity,
		Required:          required,
		Current:           current,
		Gap:               max(0, required-current),
		Surplus:           max(0, current-required),
		Workload:          patients / float64(max(current, 1)),
		WorkloadUndefined: current == 0,
	}
	switch {
	case current == 0 && patients > 0:
		ra.LoadRatio = math.Inf(1)
	default:
		ra.LoadRatio = ra.Workload / capacity
	}
	return ra
}

// requiredStaff is patients/capacity rounded up. The relative tolerance
// absorbs float error on exact quotients such as 48/(30*0.8) without
// swallowing a real excess such as 30.00000001/30.
func requiredStaff(patients, capacity float64) int {
	q := patients / capacity
	return int(math.Ceil(q - q*1e-12))
}

func (e *Evaluator) urgency(ratio float64) models.Urgency {
	switch {
	case ratio > e.staffing.CriticalLoad:
		return models.UrgencyCritical
	case ratio > e.staffing.HighLoad:
		return models.UrgencyHigh
	case ratio > e.staffing.ModerateLoad:
		return models.UrgencyModerate
	default:
		return models.UrgencyLow
	}
}

func staffingRecommendations(a *models.StaffingAssessment) []string {
	var recs []string
	if a.Urgency == models.UrgencyCritical {
		recs = append(recs,
			"IMMEDIATE ACTION REQUIRED",
			"Contact district health office for emergency staffing",
		)
	}
	for _, ra := range a.Roles {
		if ra.Gap > 0 {
			recs = append(recs, fmt.Sprintf("Add %d %s(s) - %s", ra.Gap, ra.Role, roleDuties[ra.Role]))
		}
	}
	for _, ra := range a.Roles {
		if ra.Surplus > 0 {
			recs = append(recs, fmt.Sprintf("Consider reassigning %d %s(s) - Overstaffed", ra.Surplus, ra.Role))
		}
	}
	if a.Urgency >= models.UrgencyHigh {
		recs = append(recs, "Implement extended hours and prepare for patient overflow")
	}
	if len(recs) == 0 {
		recs = append(recs, "Staffing levels adequate")
	}
	return recs
}

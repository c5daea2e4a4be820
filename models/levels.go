package models

import (
	"fmt"
	"strings"
)

// Severity grades an outbreak assessment. Values are ordered: a higher
// value is a worse grade.
type Severity int

const (
	SeverityNone Severity = iota
	SeverityModerate
	SeveritySevere
)

var severityNames = [...]string{"none", "moderate", "severe"}

func (s Severity) String() string {
	if s < SeverityNone || s > SeveritySevere {
		return fmt.Sprintf("Severity(%d)", int(s))
	}
	return severityNames[s]
}

func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Urgency grades a staffing assessment, ordered like Severity.
type Urgency int

const (
	UrgencyLow Urgency = iota
	UrgencyModerate
	UrgencyHigh
	UrgencyCritical
)

var urgencyNames = [...]string{"low", "moderate", "high", "critical"}

func (u Urgency) String() string {
	if u < UrgencyLow || u > UrgencyCritical {
		return fmt.Sprintf("Urgency(%d)", int(u))
	}
	return urgencyNames[u]
}

func (u Urgency) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

// AlertLevel grades the stockout risk of a drug, ordered like Severity.
type AlertLevel int

const (
	AlertOK AlertLevel = iota
	AlertWarning
	AlertCritical
)

var alertNames = [...]string{"ok", "warning", "critical"}

func (a AlertLevel) String() string {
	if a < AlertOK || a > AlertCritical {
		return fmt.Sprintf("AlertLevel(%d)", int(a))
	}
	return alertNames[a]
}

func (a AlertLevel) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// SurveillanceStatus summarises a set of outbreak assessments.
type SurveillanceStatus string

const (
	StatusNormal   SurveillanceStatus = "NORMAL"
	StatusAlert    SurveillanceStatus = "ALERT"
	StatusCritical SurveillanceStatus = "CRITICAL"
)

// FacilityType adjusts per-role capacity for the kind of facility.
type FacilityType string

const (
	FacilityStandard FacilityType = "standard"
	FacilityRural    FacilityType = "rural"
	FacilityBusy     FacilityType = "busy"
)

// FacilityTypes lists the supported facility types.
var FacilityTypes = []FacilityType{FacilityStandard, FacilityRural, FacilityBusy}

// ParseFacilityType resolves a facility type name, case-insensitively.
// The empty string resolves to FacilityStandard.
func ParseFacilityType(s string) (FacilityType, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return FacilityStandard, true
	}
	for _, ft := range FacilityTypes {
		if string(ft) == s {
			return ft, true
		}
	}
	return "", false
}

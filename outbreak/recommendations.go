package outbreak

import "phc-analytics/models"

// RecommendationTable maps a disease and severity to an ordered list of
// actions. The DiseaseGeneric entry is the fallback for diseases without a
// table of their own and must cover every severity.
type RecommendationTable map[models.Disease]map[models.Severity][]string

// DefaultRecommendations returns the built-in recommendation table.
func DefaultRecommendations() RecommendationTable {
	return RecommendationTable{
		models.DiseaseGeneric: {
			models.SeverityNone: {
				"Continue routine monitoring",
				"Maintain standard protocols",
				"Document case patterns",
			},
			models.SeverityModerate: {
				"Increase monitoring frequency",
				"Notify health authorities",
				"Prepare additional resources",
				"Review infection control measures",
				"Consider targeted interventions",
			},
			models.SeveritySevere: {
				"Immediate notification to health authorities",
				"Activate emergency response protocols",
				"Increase surveillance and testing",
				"Consider isolation/quarantine measures",
				"Prepare for increased patient load",
				"Alert nearby healthcare facilities",
			},
		},
		models.DiseaseMalaria: {
			models.SeverityNone: {
				"Continue routine monitoring",
				"Maintain bed net distribution",
			},
			models.SeverityModerate: {
				"Notify health authorities",
				"Increase rapid diagnostic testing",
				"Distribute mosquito nets and repellents",
				"Check ACT stock levels",
			},
			models.SeveritySevere: {
				"Activate emergency response protocols",
				"Immediate notification to health authorities",
				"Intensify vector control measures",
				"Distribute mosquito nets and repellents",
				"Secure emergency ACT supply",
				"Prepare for increased patient load",
			},
		},
		models.DiseaseTyphoid: {
			models.SeverityNone: {
				"Continue routine monitoring",
				"Promote safe food handling",
			},
			models.SeverityModerate: {
				"Notify health authorities",
				"Confirm cases with laboratory testing",
				"Inspect food and water sources",
				"Promote hand hygiene",
			},
			models.SeveritySevere: {
				"Activate emergency response protocols",
				"Immediate notification to health authorities",
				"Trace and treat contaminated water sources",
				"Secure antibiotic supply",
				"Prepare for increased patient load",
			},
		},
		models.DiseaseCholera: {
			models.SeverityNone: {
				"Continue routine monitoring",
				"Promote hand hygiene",
			},
			models.SeverityModerate: {
				"Notify health authorities",
				"Ensure clean water supply",
				"Promote hand hygiene",
				"Stock ORS and IV fluids",
			},
			models.SeveritySevere: {
				"Activate emergency response protocols",
				"Immediate notification to health authorities",
				"Set up oral rehydration points",
				"Ensure clean water supply",
				"Consider isolation/quarantine measures",
				"Alert nearby healthcare facilities",
			},
		},
		models.DiseaseMeningitis: {
			models.SeverityNone: {
				"Continue routine monitoring",
				"Maintain vaccination coverage",
			},
			models.SeverityModerate: {
				"Notify health authorities",
				"Implement respiratory precautions",
				"Review vaccination coverage",
				"Prepare additional resources",
			},
			models.SeveritySevere: {
				"Activate emergency response protocols",
				"Immediate notification to health authorities",
				"Consider mass vaccination if available",
				"Implement respiratory precautions",
				"Alert nearby healthcare facilities",
			},
		},
	}
}

// lookup returns a copy of the actions for disease and severity, falling
// back to the generic table when the disease has no entry for severity.
func (t RecommendationTable) lookup(disease models.Disease, severity models.Severity) []string {
	actions, ok := t[disease][severity]
	if !ok {
		actions = t[models.DiseaseGeneric][severity]
	}
	out := make([]string, len(actions))
	copy(out, actions)
	return out
}

func (t RecommendationTable) clone() RecommendationTable {
	out := make(RecommendationTable, len(t))
	for disease, bySeverity := range t {
		inner := make(map[models.Severity][]string, len(bySeverity))
		for severity, actions := range bySeverity {
			inner[severity] = append([]string(nil), actions...)
		}
		out[disease] = inner
	}
	return out
}

package models_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"phc-analytics/models"
)

func TestParseRole(t *testing.T) {
	tests := map[string]struct {
		input    string
		expected models.Role
		ok       bool
	}{
		"Singular":  {input: "nurse", expected: models.RoleNurse, ok: true},
		"Plural":    {input: "Doctors", expected: models.RoleDoctor, ok: true},
		"Padded":    {input: " pharmacists ", expected: models.RolePharmacist, ok: true},
		"Unknown":   {input: "surgeon", ok: false},
		"EmptyName": {input: "", ok: false},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, ok := models.ParseRole(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseDisease(t *testing.T) {
	d, ok := models.ParseDisease(" Malaria")
	assert.True(t, ok)
	assert.Equal(t, models.DiseaseMalaria, d)

	d, ok = models.ParseDisease("Lassa fever")
	assert.False(t, ok)
	assert.Equal(t, models.DiseaseGeneric, d)
	assert.Equal(t, "generic", d.String())
}

func TestParseFacilityType(t *testing.T) {
	ft, ok := models.ParseFacilityType("")
	assert.True(t, ok)
	assert.Equal(t, models.FacilityStandard, ft)

	ft, ok = models.ParseFacilityType("RURAL")
	assert.True(t, ok)
	assert.Equal(t, models.FacilityRural, ft)

	_, ok = models.ParseFacilityType("hospital")
	assert.False(t, ok)
}

func TestLevels_Ordering(t *testing.T) {
	assert.Less(t, models.SeverityNone, models.SeverityModerate)
	assert.Less(t, models.SeverityModerate, models.SeveritySevere)
	assert.Less(t, models.AlertOK, models.AlertWarning)
	assert.Less(t, models.AlertWarning, models.AlertCritical)
	assert.Less(t, models.UrgencyHigh, models.UrgencyCritical)
}

func TestLevels_MarshalText(t *testing.T) {
	out, err := json.Marshal(map[string]any{
		"severity": models.SeveritySevere,
		"urgency":  models.UrgencyModerate,
		"alert":    models.AlertWarning,
	})
	assert.NoError(t, err)
	assert.JSONEq(t, `{"severity":"severe","urgency":"moderate","alert":"warning"}`, string(out))
	assert.Equal(t, "Severity(7)", models.Severity(7).String())
}

// Package config holds the thresholds, capacity ratios and drug lists used
// by the outbreak detector and the resource evaluator.
package config

import (
	"fmt"
	"maps"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"phc-analytics/models"
)

// StdDevMode selects the standard deviation estimator used for z-scores.
type StdDevMode string

const (
	// StdDevSample divides by n-1.
	StdDevSample StdDevMode = "sample"
	// StdDevPopulation divides by n.
	StdDevPopulation StdDevMode = "population"
)

// Config is the complete analytics configuration.
type Config struct {
	Outbreak  OutbreakConfig  `yaml:"outbreak" json:"outbreak"`
	Staffing  StaffingConfig  `yaml:"staffing" json:"staffing"`
	Inventory InventoryConfig `yaml:"inventory" json:"inventory"`
}

// OutbreakConfig configures the z-score anomaly detector.
type OutbreakConfig struct {
	// ModerateZ: a z-score >= this value is a moderate outbreak
	ModerateZ float64 `yaml:"moderateZ" json:"moderateZ"`

	// SevereZ: a z-score >= this value is a severe outbreak
	SevereZ float64 `yaml:"severeZ" json:"severeZ"`

	// Epsilon replaces a zero standard deviation, at least MinEpsilon
	Epsilon float64 `yaml:"epsilon" json:"epsilon"`

	// StdDev is "sample" or "population"
	StdDev StdDevMode `yaml:"stdDev" json:"stdDev"`

	// TrimOutliers drops zero samples and samples outside 1.5 IQR of the
	// quartiles before computing the baseline
	TrimOutliers bool `yaml:"trimOutliers" json:"trimOutliers"`
}

// StaffingConfig configures the staffing calculator.
type StaffingConfig struct {
	// Capacity is the number of patients (prescriptions for pharmacists)
	// one staff member handles per day
	Capacity map[models.Role]float64 `yaml:"capacity" json:"capacity"`

	// FacilityFactors multiply Capacity per facility type
	FacilityFactors map[models.FacilityType]float64 `yaml:"facilityFactors" json:"facilityFactors"`

	// Load ratio bands: ratio <= ModerateLoad is low urgency, <= HighLoad
	// moderate, <= CriticalLoad high, above it critical
	ModerateLoad float64 `yaml:"moderateLoad" json:"moderateLoad"`
	HighLoad     float64 `yaml:"highLoad" json:"highLoad"`
	CriticalLoad float64 `yaml:"criticalLoad" json:"criticalLoad"`
}

// InventoryConfig configures the stockout calculator.
type InventoryConfig struct {
	// CriticalDrugs are matched case-insensitively against drug names
	CriticalDrugs []string `yaml:"criticalDrugs" json:"criticalDrugs"`

	// Day thresholds for drugs on the critical list
	CriticalDrugWarningDays  float64 `yaml:"criticalDrugWarningDays" json:"criticalDrugWarningDays"`
	CriticalDrugCriticalDays float64 `yaml:"criticalDrugCriticalDays" json:"criticalDrugCriticalDays"`

	// Day thresholds for every other drug
	WarningDays  float64 `yaml:"warningDays" json:"warningDays"`
	CriticalDays float64 `yaml:"criticalDays" json:"criticalDays"`
}

// Default returns the built-in configuration. Each call returns a fresh copy.
func Default() *Config {
	return &Config{
		Outbreak: OutbreakConfig{
			ModerateZ: 2.0,
			SevereZ:   3.0,
			Epsilon:   1e-9,
			StdDev:    StdDevSample,
		},
		Staffing: StaffingConfig{
			Capacity: map[models.Role]float64{
				models.RoleNurse:      30,
				models.RoleDoctor:     50,
				models.RolePharmacist: 100,
			},
			FacilityFactors: map[models.FacilityType]float64{
				models.FacilityStandard: 1.0,
				models.FacilityRural:    1.2,
				models.FacilityBusy:     0.8,
			},
			ModerateLoad: 1.0,
			HighLoad:     1.5,
			CriticalLoad: 2.0,
		},
		Inventory: InventoryConfig{
			CriticalDrugs: []string{
				"ACT", "Artemether", "Quinine", "Chloroquine",
				"Ceftriaxone", "Penicillin", "Amoxicillin",
				"ORS", "Zinc", "Vitamin A",
				"Insulin", "Metformin",
				"Salbutamol", "Prednisolone",
				"Oxytocin",
			},
			CriticalDrugWarningDays:  14,
			CriticalDrugCriticalDays: 7,
			WarningDays:              7,
			CriticalDays:             3,
		},
	}
}

// Load reads a YAML file and overlays it onto Default. Keys missing from
// the file keep their default values. An empty path returns Default.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := Parse(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse overlays YAML data onto cfg and validates the result.
func Parse(data []byte, cfg *Config) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Clone returns a deep copy of c.
func (c *Config) Clone() *Config {
	out := *c
	out.Staffing = c.Staffing.Clone()
	out.Inventory = c.Inventory.Clone()
	return &out
}

// Clone returns a deep copy of c.
func (c StaffingConfig) Clone() StaffingConfig {
	c.Capacity = maps.Clone(c.Capacity)
	c.FacilityFactors = maps.Clone(c.FacilityFactors)
	return c
}

// Clone returns a deep copy of c.
func (c InventoryConfig) Clone() InventoryConfig {
	c.CriticalDrugs = slices.Clone(c.CriticalDrugs)
	return c
}

// Validate checks for invalid configuration values.
func (c *Config) Validate() error {
	if err := c.Outbreak.Validate(); err != nil {
		return fmt.Errorf("outbreak: %w", err)
	}
	if err := c.Staffing.Validate(); err != nil {
		return fmt.Errorf("staffing: %w", err)
	}
	if err := c.Inventory.Validate(); err != nil {
		return fmt.Errorf("inventory: %w", err)
	}
	return nil
}

// MinEpsilon keeps (current-mean)/epsilon finite for any int case count.
const MinEpsilon = 1e-12

// Validate checks for invalid configuration values.
func (c OutbreakConfig) Validate() error {
	if c.ModerateZ <= 0 {
		return fmt.Errorf("moderateZ must be > 0, got %.2f", c.ModerateZ)
	}
	if c.SevereZ < c.ModerateZ {
		return fmt.Errorf("severeZ (%.2f) should be >= moderateZ (%.2f)", c.SevereZ, c.ModerateZ)
	}
	if !(c.Epsilon >= MinEpsilon) {
		return fmt.Errorf("epsilon should be >= %g, got %g", MinEpsilon, c.Epsilon)
	}
	switch c.StdDev {
	case StdDevSample, StdDevPopulation:
	default:
		return fmt.Errorf("stdDev must be %q or %q, got %q", StdDevSample, StdDevPopulation, c.StdDev)
	}
	return nil
}

// Validate checks for invalid configuration values.
func (c StaffingConfig) Validate() error {
	for _, role := range models.Roles {
		if capacity, ok := c.Capacity[role]; !ok || capacity <= 0 {
			return fmt.Errorf("capacity for %s must be > 0, got %.1f", role, capacity)
		}
	}
	for _, ft := range models.FacilityTypes {
		if factor, ok := c.FacilityFactors[ft]; !ok || factor <= 0 {
			return fmt.Errorf("facility factor for %s must be > 0, got %.2f", ft, factor)
		}
	}
	if c.ModerateLoad <= 0 {
		return fmt.Errorf("moderateLoad must be > 0, got %.2f", c.ModerateLoad)
	}
	if c.HighLoad < c.ModerateLoad || c.CriticalLoad < c.HighLoad {
		return fmt.Errorf("load bands must be ascending, got %.2f, %.2f, %.2f",
			c.ModerateLoad, c.HighLoad, c.CriticalLoad)
	}
	return nil
}

// Validate checks for invalid configuration values.
func (c InventoryConfig) Validate() error {
	if c.CriticalDays < 0 || c.CriticalDrugCriticalDays < 0 {
		return fmt.Errorf("critical day thresholds must be >= 0")
	}
	if c.WarningDays < c.CriticalDays {
		return fmt.Errorf("warningDays (%.1f) should be >= criticalDays (%.1f)", c.WarningDays, c.CriticalDays)
	}
	if c.CriticalDrugWarningDays < c.CriticalDrugCriticalDays {
		return fmt.Errorf("criticalDrugWarningDays (%.1f) should be >= criticalDrugCriticalDays (%.1f)",
			c.CriticalDrugWarningDays, c.CriticalDrugCriticalDays)
	}
	return nil
}

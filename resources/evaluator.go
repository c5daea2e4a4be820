// Package resources computes staffing gaps and drug stockout risk for a
// facility from its expected patient load and stock levels.
package resources

import (
	"fmt"
	"math"
	"strings"
	"time"

	"phc-analytics/config"
)

// Evaluator runs the staffing and inventory calculators. It is immutable
// after construction and safe for concurrent use.
type Evaluator struct {
	staffing      config.StaffingConfig
	inventory     config.InventoryConfig
	criticalDrugs map[string]struct{}
	now           func() time.Time
}

// Option customises an Evaluator.
type Option func(*Evaluator)

// WithClock sets the clock used to date projected stockouts.
func WithClock(now func() time.Time) Option {
	return func(e *Evaluator) {
		e.now = now
	}
}

// New creates an Evaluator from the staffing and inventory configuration.
func New(staffing config.StaffingConfig, inventory config.InventoryConfig, opts ...Option) (*Evaluator, error) {
	if err := staffing.Validate(); err != nil {
		return nil, fmt.Errorf("staffing config: %w", err)
	}
	if err := inventory.Validate(); err != nil {
		return nil, fmt.Errorf("inventory config: %w", err)
	}
	e := &Evaluator{
		staffing:      staffing.Clone(),
		inventory:     inventory.Clone(),
		criticalDrugs: make(map[string]struct{}, len(inventory.CriticalDrugs)),
		now:           time.Now,
	}
	for _, name := range inventory.CriticalDrugs {
		e.criticalDrugs[normalizeDrug(name)] = struct{}{}
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// IsCriticalDrug reports whether name is on the critical-drug list.
func (e *Evaluator) IsCriticalDrug(name string) bool {
	_, ok := e.criticalDrugs[normalizeDrug(name)]
	return ok
}

func normalizeDrug(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func validQuantity(v float64) bool {
	return v >= 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}

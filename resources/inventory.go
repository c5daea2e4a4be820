package resources

import (
	"math"
	"slices"
	"strings"
	"time"

	"phc-analytics/errors"
	"phc-analytics/models"
)

// maxProjectionDays bounds the projected stockout date. Beyond it the
// projection keeps its days remaining but carries no date.
const maxProjectionDays = 36500

// EvaluateInventory projects the stockout of every drug in stocks. Keys are
// the drug names and override any DrugName in the value. The result is
// sorted by drug name.
func (e *Evaluator) EvaluateInventory(stocks map[string]models.DrugStock) (*models.InventoryAssessment, error) {
	names := make([]string, 0, len(stocks))
	for name := range stocks {
		names = append(names, name)
	}
	slices.Sort(names)

	assessment := &models.InventoryAssessment{
		Drugs:         make([]models.StockProjection, 0, len(names)),
		OverallStatus: models.AlertOK,
		TotalDrugs:    len(names),
	}
	today := e.today()
	for _, name := range names {
		stock := stocks[name]
		stock.DrugName = name
		p, err := e.project(stock, today)
		if err != nil {
			return nil, err
		}
		switch p.AlertLevel {
		case models.AlertCritical:
			assessment.CriticalCount++
		case models.AlertWarning:
			assessment.WarningCount++
		}
		assessment.OverallStatus = max(assessment.OverallStatus, p.AlertLevel)
		assessment.Drugs = append(assessment.Drugs, *p)
	}
	return assessment, nil
}

// PredictStockout projects the stockout of a single drug.
func (e *Evaluator) PredictStockout(stock models.DrugStock) (*models.StockProjection, error) {
	return e.project(stock, e.today())
}

func (e *Evaluator) project(stock models.DrugStock, today time.Time) (*models.StockProjection, error) {
	const op = "resources.EvaluateInventory"

	if strings.TrimSpace(stock.DrugName) == "" {
		return nil, errors.Invalid(op, "drug_name", "must not be empty")
	}
	if !validQuantity(stock.CurrentStock) {
		return nil, errors.Invalid(op, "current_stock", "%s: must be a finite number >= 0, got %v", stock.DrugName, stock.CurrentStock)
	}
	if !validQuantity(stock.DailyUsage) {
		return nil, errors.Invalid(op, "daily_usage", "%s: must be a finite number >= 0, got %v", stock.DrugName, stock.DailyUsage)
	}

	p := &models.StockProjection{
		DrugName:      stock.DrugName,
		CurrentStock:  stock.CurrentStock,
		DailyUsage:    stock.DailyUsage,
		DaysRemaining: math.Inf(1),
		AlertLevel:    models.AlertOK,
		CriticalDrug:  e.IsCriticalDrug(stock.DrugName),
	}
	if stock.DailyUsage > 0 {
		p.DaysRemaining = stock.CurrentStock / stock.DailyUsage
		if p.DaysRemaining <= maxProjectionDays {
			stockout := today.AddDate(0, 0, int(math.Floor(p.DaysRemaining)))
			p.ProjectedStockout = &stockout
		}
		p.AlertLevel = e.alertLevel(p.DaysRemaining, p.CriticalDrug)
	}
	p.Recommendations = stockRecommendations(p)
	return p, nil
}

func (e *Evaluator) alertLevel(days float64, critical bool) models.AlertLevel {
	warning, immediate := e.inventory.WarningDays, e.inventory.CriticalDays
	if critical {
		warning, immediate = e.inventory.CriticalDrugWarningDays, e.inventory.CriticalDrugCriticalDays
	}
	switch {
	case days <= immediate:
		return models.AlertCritical
	case days <= warning:
		return models.AlertWarning
	default:
		return models.AlertOK
	}
}

// today is the current UTC date at midnight.
func (e *Evaluator) today() time.Time {
	now := e.now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func stockRecommendations(p *models.StockProjection) []string {
	var recs []string
	switch {
	case p.Unbounded():
		recs = append(recs, "No usage recorded - monitor closely")
	case p.AlertLevel == models.AlertCritical:
		recs = append(recs,
			"IMMEDIATE ACTION: Order now",
			"Contact emergency supply chain",
			"Consider borrowing from nearby facilities",
		)
	case p.AlertLevel == models.AlertWarning:
		recs = append(recs,
			"Order within 24 hours",
			"Contact district pharmacy",
		)
	default:
		recs = append(recs, "Stock levels adequate")
	}
	if p.CriticalDrug {
		recs = append(recs, "Critical drug - prioritize restocking")
	}
	return recs
}

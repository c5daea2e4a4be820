package outbreak_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phc-analytics/config"
	customerrors "phc-analytics/errors"
	"phc-analytics/models"
	"phc-analytics/outbreak"
)

var baselineHistory = []int{20, 22, 18, 25, 21, 23, 19, 24, 20, 22}

func newDetector(t *testing.T, mutate func(*config.OutbreakConfig)) *outbreak.Detector {
	t.Helper()
	cfg := config.Default().Outbreak
	if mutate != nil {
		mutate(&cfg)
	}
	d, err := outbreak.New(cfg)
	require.NoError(t, err)
	return d
}

func TestAssess(t *testing.T) {
	tests := map[string]struct {
		series           models.CaseSeries
		expectedOutbreak bool
		expectedSeverity models.Severity
		expectedZ        float64
		zDelta           float64
	}{
		"SevereMalariaOutbreak": {
			series:           models.CaseSeries{Disease: "Malaria", Region: "Kano", PeriodType: "weekly", Current: 65, Historical: baselineHistory},
			expectedOutbreak: true,
			expectedSeverity: models.SeveritySevere,
			expectedZ:        19.63,
			zDelta:           0.01,
		},
		"NormalMalaria": {
			series:           models.CaseSeries{Disease: "Malaria", Current: 25, Historical: baselineHistory},
			expectedOutbreak: false,
			expectedSeverity: models.SeverityNone,
			expectedZ:        1.62,
			zDelta:           0.01,
		},
		"ModerateJustAboveThreshold": {
			// mean 21.4, sd 2.2211: 21.4 + 2*2.2211 = 25.84
			series:           models.CaseSeries{Disease: "Typhoid", Current: 26, Historical: baselineHistory},
			expectedOutbreak: true,
			expectedSeverity: models.SeverityModerate,
			expectedZ:        2.07,
			zDelta:           0.01,
		},
		"BelowBaseline": {
			series:           models.CaseSeries{Disease: "Cholera", Current: 5, Historical: baselineHistory},
			expectedOutbreak: false,
			expectedSeverity: models.SeverityNone,
			expectedZ:        -7.38,
			zDelta:           0.01,
		},
		"ConstantHistory_SameValue": {
			series:           models.CaseSeries{Disease: "Cholera", Current: 10, Historical: []int{10, 10, 10, 10}},
			expectedOutbreak: false,
			expectedSeverity: models.SeverityNone,
			expectedZ:        0,
			zDelta:           0,
		},
		"SingleSample_Equal": {
			series:           models.CaseSeries{Disease: "Meningitis", Current: 4, Historical: []int{4}},
			expectedOutbreak: false,
			expectedSeverity: models.SeverityNone,
		},
	}

	d := newDetector(t, nil)
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			a, err := d.Assess(tt.series)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedOutbreak, a.IsOutbreak)
			assert.Equal(t, tt.expectedSeverity, a.Severity)
			assert.InDelta(t, tt.expectedZ, a.ZScore, tt.zDelta)
			assert.Equal(t, tt.series.Current, a.CurrentCases)
			assert.NotEmpty(t, a.Recommendations)
		})
	}
}

func TestAssess_ScenarioDetails(t *testing.T) {
	d := newDetector(t, nil)
	a, err := d.Assess(models.CaseSeries{Disease: "Malaria", Region: "Kano", PeriodType: "weekly", Current: 65, Historical: baselineHistory})
	require.NoError(t, err)

	assert.Equal(t, "Malaria", a.Disease)
	assert.Equal(t, "Kano", a.Region)
	assert.Equal(t, "weekly", a.PeriodType)
	assert.InDelta(t, 21.4, a.HistoricalMean, 1e-9)
	assert.InDelta(t, 3.04, a.Multiplier, 0.01)
	assert.True(t, a.KnownDisease)
	assert.Contains(t, a.Recommendations, "Activate emergency response protocols")
	assert.Contains(t, a.Recommendations, "Immediate notification to health authorities")
	assert.Contains(t, a.Recommendations, "Intensify vector control measures")
}

func TestAssess_PopulationStdDev(t *testing.T) {
	d := newDetector(t, func(c *config.OutbreakConfig) { c.StdDev = config.StdDevPopulation })
	a, err := d.Assess(models.CaseSeries{Disease: "Malaria", Current: 65, Historical: baselineHistory})
	require.NoError(t, err)
	// population variance 44.4/10 = 4.44
	assert.InDelta(t, math.Sqrt(4.44), a.HistoricalStdDev, 1e-9)
	assert.InDelta(t, 43.6/math.Sqrt(4.44), a.ZScore, 1e-9)
	assert.Equal(t, models.SeveritySevere, a.Severity)
}

func TestAssess_NoVariance(t *testing.T) {
	tests := map[string]struct {
		current          int
		historical       []int
		expectedOutbreak bool
	}{
		"ExcessOverConstant": {current: 11, historical: []int{10, 10, 10}, expectedOutbreak: true},
		"EqualToConstant":    {current: 10, historical: []int{10, 10, 10}, expectedOutbreak: false},
		"BelowConstant":      {current: 9, historical: []int{10, 10, 10}, expectedOutbreak: false},
		"SingleSampleExcess": {current: 3, historical: []int{2}, expectedOutbreak: true},
		"AllZeroThenCase":    {current: 1, historical: []int{0, 0, 0}, expectedOutbreak: true},
	}

	d := newDetector(t, nil)
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			a, err := d.Assess(models.CaseSeries{Disease: "Cholera", Current: tt.current, Historical: tt.historical})
			require.NoError(t, err)
			assert.Equal(t, tt.expectedOutbreak, a.IsOutbreak)
			assert.False(t, math.IsNaN(a.ZScore))
			if tt.expectedOutbreak {
				assert.NotEqual(t, models.SeverityNone, a.Severity)
			} else {
				assert.Equal(t, models.SeverityNone, a.Severity)
			}
		})
	}
}

func TestAssess_SmallestEpsilonKeepsZFinite(t *testing.T) {
	d := newDetector(t, func(cfg *config.OutbreakConfig) {
		cfg.Epsilon = config.MinEpsilon
	})

	a, err := d.Assess(models.CaseSeries{Disease: "Cholera", Current: 2_000_000_000, Historical: []int{0, 0}})
	require.NoError(t, err)
	assert.False(t, math.IsInf(a.ZScore, 0))
	assert.Equal(t, models.SeveritySevere, a.Severity)
}

func TestAssess_ConstantSeriesNeverAnOutbreak(t *testing.T) {
	d := newDetector(t, nil)
	for c := 0; c <= 50; c += 5 {
		for n := 1; n <= 6; n++ {
			history := make([]int, n)
			for i := range history {
				history[i] = c
			}
			a, err := d.Assess(models.CaseSeries{Disease: "Typhoid", Current: c, Historical: history})
			require.NoError(t, err)
			assert.False(t, a.IsOutbreak, "c=%d n=%d", c, n)
			assert.Equal(t, models.SeverityNone, a.Severity, "c=%d n=%d", c, n)
		}
	}
}

func TestAssess_ZScoreNonIncreasingInVariance(t *testing.T) {
	d := newDetector(t, nil)
	// Every history has mean 20; the spread widens with each step.
	previous := math.Inf(1)
	for spread := 0; spread <= 10; spread++ {
		history := []int{20 - spread, 20, 20 + spread}
		a, err := d.Assess(models.CaseSeries{Disease: "Malaria", Current: 30, Historical: history})
		require.NoError(t, err)
		assert.LessOrEqual(t, a.ZScore, previous, "spread=%d", spread)
		previous = a.ZScore
	}
}

func TestAssess_SeverityMonotonicInZ(t *testing.T) {
	d := newDetector(t, nil)
	previous := models.SeverityNone
	for current := 0; current <= 80; current++ {
		a, err := d.Assess(models.CaseSeries{Disease: "Malaria", Current: current, Historical: baselineHistory})
		require.NoError(t, err)
		assert.GreaterOrEqual(t, a.Severity, previous, "current=%d", current)
		previous = a.Severity
	}
}

func TestAssess_MultiplierUnboundedForZeroMean(t *testing.T) {
	d := newDetector(t, nil)
	a, err := d.Assess(models.CaseSeries{Disease: "Meningitis", Current: 2, Historical: []int{0, 0, 0, 0}})
	require.NoError(t, err)
	assert.True(t, math.IsInf(a.Multiplier, 1))
}

func TestAssess_UnknownDiseaseUsesGenericTable(t *testing.T) {
	d := newDetector(t, nil)
	a, err := d.Assess(models.CaseSeries{Disease: "Lassa fever", Current: 65, Historical: baselineHistory})
	require.NoError(t, err)
	assert.False(t, a.KnownDisease)
	assert.Equal(t, outbreak.DefaultRecommendations()[models.DiseaseGeneric][models.SeveritySevere], a.Recommendations)
}

func TestAssess_DiseaseNameIsCaseInsensitive(t *testing.T) {
	d := newDetector(t, nil)
	a, err := d.Assess(models.CaseSeries{Disease: "  CHOLERA ", Current: 45, Historical: []int{8, 10, 9, 11, 7, 9, 8, 10, 9, 7}})
	require.NoError(t, err)
	assert.True(t, a.KnownDisease)
	assert.Contains(t, a.Recommendations, "Set up oral rehydration points")
}

func TestAssess_Errors(t *testing.T) {
	tests := map[string]struct {
		series        models.CaseSeries
		expectedError error
	}{
		"NegativeCurrent": {
			series:        models.CaseSeries{Disease: "Malaria", Current: -1, Historical: baselineHistory},
			expectedError: customerrors.ErrInvalidInput,
		},
		"NegativeHistorical": {
			series:        models.CaseSeries{Disease: "Malaria", Current: 5, Historical: []int{3, -2, 4}},
			expectedError: customerrors.ErrInvalidInput,
		},
		"EmptyHistory": {
			series:        models.CaseSeries{Disease: "Malaria", Current: 5},
			expectedError: customerrors.ErrInsufficientData,
		},
	}

	d := newDetector(t, nil)
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			a, err := d.Assess(tt.series)
			assert.Nil(t, a)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.expectedError), "expected %v, got %v", tt.expectedError, err)

			var evalErr *customerrors.EvalError
			assert.True(t, errors.As(err, &evalErr))
		})
	}
}

func TestAssess_DoesNotMutateHistory(t *testing.T) {
	d := newDetector(t, func(c *config.OutbreakConfig) { c.TrimOutliers = true })
	history := []int{12, 0, 10, 300, 11}
	_, err := d.Assess(models.CaseSeries{Disease: "Malaria", Current: 20, Historical: history})
	require.NoError(t, err)
	assert.Equal(t, []int{12, 0, 10, 300, 11}, history)
}

func TestAssess_TrimOutliers(t *testing.T) {
	history := []int{10, 11, 12, 10, 11, 0, 200}
	series := models.CaseSeries{Disease: "Typhoid", Current: 20, Historical: history}

	trimmed := newDetector(t, func(c *config.OutbreakConfig) { c.TrimOutliers = true })
	a, err := trimmed.Assess(series)
	require.NoError(t, err)
	assert.InDelta(t, 10.8, a.HistoricalMean, 1e-9)
	assert.Equal(t, models.SeveritySevere, a.Severity)

	plain := newDetector(t, nil)
	b, err := plain.Assess(series)
	require.NoError(t, err)
	assert.False(t, b.IsOutbreak)
}

func TestAssess_Idempotent(t *testing.T) {
	d := newDetector(t, nil)
	series := models.CaseSeries{Disease: "Malaria", Region: "Kano", Current: 65, Historical: baselineHistory}
	first, err := d.Assess(series)
	require.NoError(t, err)
	second, err := d.Assess(series)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, math.Float64bits(first.ZScore), math.Float64bits(second.ZScore))
}

func TestAssess_CustomThresholds(t *testing.T) {
	d := newDetector(t, func(c *config.OutbreakConfig) {
		c.ModerateZ = 1.0
		c.SevereZ = 1.5
	})
	a, err := d.Assess(models.CaseSeries{Disease: "Malaria", Current: 25, Historical: baselineHistory})
	require.NoError(t, err)
	assert.Equal(t, models.SeveritySevere, a.Severity)
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg := config.Default().Outbreak
	cfg.SevereZ = 1.0
	_, err := outbreak.New(cfg)
	assert.Error(t, err)

	cfg = config.Default().Outbreak
	cfg.Epsilon = 1e-320
	_, err = outbreak.New(cfg)
	assert.Error(t, err)

	_, err = outbreak.New(config.Default().Outbreak, outbreak.WithRecommendations(outbreak.RecommendationTable{}))
	assert.Error(t, err)
}

func TestWithRecommendations(t *testing.T) {
	table := outbreak.DefaultRecommendations()
	table[models.DiseaseMalaria][models.SeveritySevere] = []string{"Call the district team"}

	d, err := outbreak.New(config.Default().Outbreak, outbreak.WithRecommendations(table))
	require.NoError(t, err)

	// later edits to the caller's table do not leak into the detector
	table[models.DiseaseMalaria][models.SeveritySevere][0] = "changed"

	a, err := d.Assess(models.CaseSeries{Disease: "malaria", Current: 65, Historical: baselineHistory})
	require.NoError(t, err)
	assert.Equal(t, []string{"Call the district team"}, a.Recommendations)
}

func TestSurvey(t *testing.T) {
	d := newDetector(t, nil)
	series := []models.CaseSeries{
		{Disease: "Malaria", Current: 65, Historical: baselineHistory},
		{Disease: "Typhoid", Current: 12, Historical: []int{10, 11, 9, 12, 10, 11, 9, 12, 10, 11}},
		{Disease: "Cholera", Current: 45, Historical: []int{8, 10, 9, 11, 7, 9, 8, 10, 9, 7}},
		{Disease: "Meningitis", Current: 3, Historical: []int{2, 1, 2, 3, 1, 2, 1, 3, 2, 1}},
	}

	report, err := d.Survey(series)
	require.NoError(t, err)
	assert.Equal(t, 4, report.TotalMonitored)
	assert.Equal(t, 2, report.Outbreaks)
	assert.Equal(t, 2, report.SevereOutbreaks)
	assert.Equal(t, models.StatusCritical, report.OverallStatus)
	require.Len(t, report.Assessments, 4)
	assert.Equal(t, "Malaria", report.Assessments[0].Disease)
}

func TestSurvey_Statuses(t *testing.T) {
	d := newDetector(t, nil)

	normal, err := d.Survey([]models.CaseSeries{{Disease: "Malaria", Current: 21, Historical: baselineHistory}})
	require.NoError(t, err)
	assert.Equal(t, models.StatusNormal, normal.OverallStatus)

	alert, err := d.Survey([]models.CaseSeries{{Disease: "Malaria", Current: 26, Historical: baselineHistory}})
	require.NoError(t, err)
	assert.Equal(t, models.StatusAlert, alert.OverallStatus)

	empty, err := d.Survey(nil)
	require.NoError(t, err)
	assert.Equal(t, models.StatusNormal, empty.OverallStatus)
	assert.Equal(t, 0, empty.TotalMonitored)
}

func TestSurvey_FailsAtomically(t *testing.T) {
	d := newDetector(t, nil)
	report, err := d.Survey([]models.CaseSeries{
		{Disease: "Malaria", Current: 65, Historical: baselineHistory},
		{Disease: "Typhoid", Current: 3},
	})
	assert.Nil(t, report)
	assert.ErrorIs(t, err, customerrors.ErrInsufficientData)
}

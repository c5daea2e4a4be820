package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"phc-analytics/config"
	"phc-analytics/formatter"
	"phc-analytics/metrics"
	"phc-analytics/models"
	"phc-analytics/outbreak"
	"phc-analytics/parser"
	"phc-analytics/resources"
)

func main() {
	// Define flags
	casesFile := flag.String("cases", "", "Case series CSV file: disease, region, period, current, history...")
	rosterFile := flag.String("roster", "", "Staff roster CSV file: role, count")
	inventoryFile := flag.String("inventory", "", "Drug inventory CSV file: drug, current_stock, daily_usage")
	patients := flag.Float64("patients", -1, "Predicted patients per day for the staffing evaluation (-1 = skip)")
	facility := flag.String("facility", "standard", "Facility type: standard|rural|busy")
	configFile := flag.String("config", "", "YAML file overriding the built-in thresholds")
	format := flag.String("format", "text", "Output format: text|json|csv")
	metricsAddr := flag.String("metrics-addr", "", "Address to expose Prometheus metrics (e.g., :9090)")
	pushGateway := flag.String("push-url", "", "Pushgateway URL to push metrics to (e.g., http://localhost:9091)")
	wait := flag.Bool("wait", false, "Keep process running after completion to allow for metric scraping")
	logLevel := flag.String("log-level", "info", "Log level: debug|info|warn|error")

	// Parse command-line flags
	flag.Parse()

	logger, err := newLogger(*logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	runID := uuid.New().String()
	logger = logger.With(zap.String("run_id", runID))

	// Start metrics server if address provided
	if *metricsAddr != "" {
		go func() {
			http.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
			logger.Info("metrics server listening", zap.String("addr", *metricsAddr+"/metrics"))
			if err := http.ListenAndServe(*metricsAddr, nil); err != nil {
				logger.Error("metrics server error", zap.Error(err))
			}
		}()
	}

	// At least one evaluation must be requested
	if *casesFile == "" && *inventoryFile == "" && *patients < 0 {
		fmt.Fprintln(os.Stderr, "Error: one of -cases, -patients or -inventory is required")
		fmt.Fprintln(os.Stderr, "\nUsage:")
		flag.PrintDefaults()
		os.Exit(1)
	}
	if *rosterFile != "" && *patients < 0 {
		fatal(logger, "-roster requires -patients", nil)
	}

	// Validate format enum
	validFormats := map[string]bool{"text": true, "json": true, "csv": true}
	if !validFormats[*format] {
		fatal(logger, fmt.Sprintf("format must be one of: text, json, csv (got: %s)", *format), nil)
	}

	facilityType, ok := models.ParseFacilityType(*facility)
	if !ok {
		fatal(logger, fmt.Sprintf("facility must be one of: standard, rural, busy (got: %s)", *facility), nil)
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		fatal(logger, "loading configuration", err)
	}

	report := &formatter.Report{RunID: runID}

	if *casesFile != "" {
		series, err := parseFile(*casesFile, "cases", parser.ParseCases)
		if err != nil {
			fatal(logger, "parsing case series", err)
		}
		logger.Debug("parsed case series", zap.Int("series", len(series)))

		detector, err := outbreak.New(cfg.Outbreak)
		if err != nil {
			fatal(logger, "creating outbreak detector", err)
		}

		start := time.Now()
		report.Surveillance, err = detector.Survey(series)
		metrics.EvaluationDurationSeconds.WithLabelValues("outbreak").Observe(time.Since(start).Seconds())
		if err != nil {
			metrics.EvaluationErrorsTotal.WithLabelValues("outbreak").Inc()
			fatal(logger, "assessing outbreaks", err)
		}
		metrics.RecordSurveillance(report.Surveillance)
		logger.Info("outbreak surveillance complete",
			zap.String("status", string(report.Surveillance.OverallStatus)),
			zap.Int("monitored", report.Surveillance.TotalMonitored),
			zap.Int("outbreaks", report.Surveillance.Outbreaks),
			zap.Int("severe", report.Surveillance.SevereOutbreaks),
		)
	}

	var evaluator *resources.Evaluator
	if *patients >= 0 || *inventoryFile != "" {
		evaluator, err = resources.New(cfg.Staffing, cfg.Inventory)
		if err != nil {
			fatal(logger, "creating resource evaluator", err)
		}
	}

	if *patients >= 0 {
		var roster models.StaffRoster
		if *rosterFile != "" {
			roster, err = parseFile(*rosterFile, "roster", parser.ParseRoster)
			if err != nil {
				fatal(logger, "parsing staff roster", err)
			}
		}

		start := time.Now()
		report.Staffing, err = evaluator.EvaluateStaffing(*patients, roster, facilityType)
		metrics.EvaluationDurationSeconds.WithLabelValues("staffing").Observe(time.Since(start).Seconds())
		if err != nil {
			metrics.EvaluationErrorsTotal.WithLabelValues("staffing").Inc()
			fatal(logger, "evaluating staffing", err)
		}
		metrics.RecordStaffing(report.Staffing)
		logger.Info("staffing evaluation complete",
			zap.Float64("patients", *patients),
			zap.String("facility", string(facilityType)),
			zap.Stringer("urgency", report.Staffing.Urgency),
		)
	}

	if *inventoryFile != "" {
		stocks, err := parseFile(*inventoryFile, "inventory", parser.ParseInventory)
		if err != nil {
			fatal(logger, "parsing inventory", err)
		}

		start := time.Now()
		report.Inventory, err = evaluator.EvaluateInventory(stocks)
		metrics.EvaluationDurationSeconds.WithLabelValues("inventory").Observe(time.Since(start).Seconds())
		if err != nil {
			metrics.EvaluationErrorsTotal.WithLabelValues("inventory").Inc()
			fatal(logger, "evaluating inventory", err)
		}
		metrics.RecordInventory(report.Inventory)
		logger.Info("inventory evaluation complete",
			zap.Stringer("status", report.Inventory.OverallStatus),
			zap.Int("drugs", report.Inventory.TotalDrugs),
			zap.Int("critical", report.Inventory.CriticalCount),
			zap.Int("warning", report.Inventory.WarningCount),
		)
	}

	// Output based on format
	switch *format {
	case "json":
		fmt.Println(formatter.FormatJSON(report))
	case "csv":
		fmt.Print(formatter.FormatCSV(report))
	default: // "text"
		fmt.Print(formatter.FormatText(report))
	}

	// Handle metrics pushing or waiting
	if *pushGateway != "" {
		jobName := "phc_analytics"
		if err := push.New(*pushGateway, jobName).Grouping("run_id", runID).Gatherer(metrics.Registry).Push(); err != nil {
			logger.Error("pushing to Pushgateway", zap.String("url", *pushGateway), zap.Error(err))
		} else {
			logger.Info("metrics pushed to Pushgateway", zap.String("url", *pushGateway))
		}
	}

	if *wait && *metricsAddr != "" {
		logger.Info("process kept alive for metric scraping, press Ctrl+C to exit")
		// Wait for interrupt signal
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logger.Info("exiting")
	} else if *metricsAddr != "" && *pushGateway == "" {
		// Small delay to allow final scrape if not waiting explicitly
		time.Sleep(100 * time.Millisecond)
	}
}

// newLogger builds a JSON production logger writing to stderr so reports
// on stdout stay machine readable.
func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

// parseFile opens path and parses it with parse, recording parser metrics
// under the given input kind.
func parseFile[T any](path, kind string, parse func(io.Reader) (T, error)) (T, error) {
	var zero T
	file, err := os.Open(path)
	if err != nil {
		return zero, fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close()

	start := time.Now()
	data, err := parse(file)
	metrics.ParserDurationSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ParserErrorsTotal.WithLabelValues(kind).Inc()
		return zero, fmt.Errorf("%s: %w", path, err)
	}
	metrics.ParserRecordsTotal.WithLabelValues(kind).Add(float64(recordCount(data)))
	return data, nil
}

func recordCount(data any) int {
	switch v := data.(type) {
	case []models.CaseSeries:
		return len(v)
	case models.StaffRoster:
		return len(v)
	case map[string]models.DrugStock:
		return len(v)
	default:
		return 0
	}
}

func fatal(logger *zap.Logger, msg string, err error) {
	if err != nil {
		logger.Error(msg, zap.Error(err))
	} else {
		logger.Error(msg)
	}
	logger.Sync()
	os.Exit(1)
}

package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"phc-analytics/errors"
	"phc-analytics/models"
)

// ParseCases reads case series from CSV data.
// Each row is: disease, region, period_type, current, h1, h2, ...
// with at least one historical count. Lines starting with '#' are comments.
func ParseCases(r io.Reader) ([]models.CaseSeries, error) {
	var series []models.CaseSeries
	err := readRecords(r, func(line int, record []string) error {
		if len(record) < 5 {
			return &errors.ParseError{Line: line, Record: record, Err: errors.ErrInvalidFieldCount}
		}

		s := models.CaseSeries{
			Disease:    strings.TrimSpace(record[0]),
			Region:     strings.TrimSpace(record[1]),
			PeriodType: strings.TrimSpace(record[2]),
		}
		if s.Disease == "" {
			return &errors.ParseError{Line: line, Record: record, Err: errors.ErrEmptyName}
		}

		current, err := parseCount(record[3])
		if err != nil {
			return &errors.ParseError{Line: line, Record: record, Err: err}
		}
		s.Current = current

		s.Historical = make([]int, 0, len(record)-4)
		for _, field := range record[4:] {
			v, err := parseCount(field)
			if err != nil {
				return &errors.ParseError{Line: line, Record: record, Err: err}
			}
			s.Historical = append(s.Historical, v)
		}

		series = append(series, s)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return series, nil
}

// ParseRoster reads a staff roster from CSV data.
// Each row is: role, count. Roles may be singular or plural.
// A role listed twice has its counts summed. Unrecognised role names are
// kept as written (lower case) so the staffing evaluation can report them.
func ParseRoster(r io.Reader) (models.StaffRoster, error) {
	roster := make(models.StaffRoster)
	err := readRecords(r, func(line int, record []string) error {
		if len(record) != 2 {
			return &errors.ParseError{Line: line, Record: record, Err: errors.ErrInvalidFieldCount}
		}

		name := strings.ToLower(strings.TrimSpace(record[0]))
		if name == "" {
			return &errors.ParseError{Line: line, Record: record, Err: errors.ErrEmptyName}
		}
		role, ok := models.ParseRole(name)
		if !ok {
			role = models.Role(name)
		}

		count, err := parseCount(record[1])
		if err != nil {
			return &errors.ParseError{Line: line, Record: record, Err: err}
		}

		roster[role] += count
		return nil
	})
	if err != nil {
		return nil, err
	}
	return roster, nil
}

// ParseInventory reads drug stock levels from CSV data.
// Each row is: drug, current_stock, daily_usage. The result is keyed by
// drug name; a repeated drug replaces the earlier row.
func ParseInventory(r io.Reader) (map[string]models.DrugStock, error) {
	stocks := make(map[string]models.DrugStock)
	err := readRecords(r, func(line int, record []string) error {
		if len(record) != 3 {
			return &errors.ParseError{Line: line, Record: record, Err: errors.ErrInvalidFieldCount}
		}

		name := strings.TrimSpace(record[0])
		if name == "" {
			return &errors.ParseError{Line: line, Record: record, Err: errors.ErrEmptyName}
		}

		stock, err := parseQuantity(record[1])
		if err != nil {
			return &errors.ParseError{Line: line, Record: record, Err: err}
		}
		usage, err := parseQuantity(record[2])
		if err != nil {
			return &errors.ParseError{Line: line, Record: record, Err: err}
		}

		stocks[name] = models.DrugStock{DrugName: name, CurrentStock: stock, DailyUsage: usage}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stocks, nil
}

// readRecords calls fn for every data row, skipping blank lines and
// '#' comments. line is the 1-based line number of the row.
func readRecords(r io.Reader, fn func(line int, record []string) error) error {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	reader.Comment = '#'

	for {
		record, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			// csv.ParseError already carries the line number
			return fmt.Errorf("error reading CSV: %w", err)
		}
		line, _ := reader.FieldPos(0)
		if err := fn(line, record); err != nil {
			return err
		}
	}
}

func parseCount(field string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(field))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", errors.ErrInvalidCount, err)
	}
	if v < 0 {
		return 0, fmt.Errorf("%w: %d is negative", errors.ErrInvalidCount, v)
	}
	return v, nil
}

// parseQuantity rejects negative, NaN and infinite values; strconv accepts
// "NaN" and "Inf" spellings.
func parseQuantity(field string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", errors.ErrInvalidQuantity, err)
	}
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q must be a finite number >= 0", errors.ErrInvalidQuantity, strings.TrimSpace(field))
	}
	return v, nil
}

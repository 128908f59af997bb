// Package shaper turns raw report rows into the structures the dashboard
// charts, tables and scorecards consume. All functions are pure.
package shaper

import (
	"fmt"
	"math"
	"strconv"

	apperrors "github.com/jrsteele09/ga-dashboard/internal/errors"
	"github.com/jrsteele09/ga-dashboard/reports"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ShapeError reports a row set that does not have the expected shape.
type ShapeError struct {
	Shape  string
	Row    int
	Reason string
}

func (e *ShapeError) Error() string {
	if e.Row < 0 {
		return fmt.Sprintf("shape %s: %s", e.Shape, e.Reason)
	}
	return fmt.Sprintf("shape %s: row %d: %s", e.Shape, e.Row, e.Reason)
}

func (e *ShapeError) Is(target error) bool {
	return target == apperrors.ErrShape
}

func shapeErr(shape string, row int, format string, args ...any) error {
	return &ShapeError{Shape: shape, Row: row, Reason: fmt.Sprintf(format, args...)}
}

// TimePoint is one point of the users/sessions line chart.
type TimePoint struct {
	Date     string `json:"date"`
	Users    int64  `json:"Users"`
	Sessions int64  `json:"Sessions"`
}

// Slice is one segment of a categorical (pie) chart.
type Slice struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

// Scorecard holds aggregate values exactly as the API returned them.
type Scorecard struct {
	Users          string `json:"users"`
	EngagementRate string `json:"engagementRate"`
	Conversions    string `json:"conversions"`
}

// ScorecardDisplay is the rendered form of a Scorecard.
type ScorecardDisplay struct {
	Users          string `json:"users"`
	EngagementRate string `json:"engagementRate"`
	Conversions    string `json:"conversions"`
}

// NewPrinter returns a printer for locale, falling back to en-US when the
// tag cannot be parsed.
func NewPrinter(locale string) *message.Printer {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.AmericanEnglish
	}
	return message.NewPrinter(tag)
}

// TimeSeries maps date rows (YYYYMMDD, users, sessions, ...) to MM/DD points,
// keeping input order.
func TimeSeries(rows []reports.Row) ([]TimePoint, error) {
	const shape = "time series"
	if len(rows) == 0 {
		return nil, shapeErr(shape, -1, "no rows")
	}
	points := make([]TimePoint, 0, len(rows))
	for i, row := range rows {
		if len(row.Dimensions) < 1 || len(row.Metrics) < 2 {
			return nil, shapeErr(shape, i, "want 1 dimension and 2 metrics, got %d and %d", len(row.Dimensions), len(row.Metrics))
		}
		date := row.Dimensions[0]
		if len(date) != 8 {
			return nil, shapeErr(shape, i, "date %q is not YYYYMMDD", date)
		}
		users, err := parseCount(shape, i, row.Metrics[0])
		if err != nil {
			return nil, err
		}
		sessions, err := parseCount(shape, i, row.Metrics[1])
		if err != nil {
			return nil, err
		}
		points = append(points, TimePoint{Date: date[4:6] + "/" + date[6:8], Users: users, Sessions: sessions})
	}
	return points, nil
}

// Categorical pairs each row's dimension with its integer metric.
func Categorical(rows []reports.Row) ([]Slice, error) {
	const shape = "categorical"
	if len(rows) == 0 {
		return nil, shapeErr(shape, -1, "no rows")
	}
	slices := make([]Slice, 0, len(rows))
	for i, row := range rows {
		name, raw, err := pair(shape, i, row)
		if err != nil {
			return nil, err
		}
		v, err := parseCount(shape, i, raw)
		if err != nil {
			return nil, err
		}
		slices = append(slices, Slice{Name: name, Value: v})
	}
	return slices, nil
}

// ScorecardOf reads the first row of a dimensionless report.
func ScorecardOf(rows []reports.Row) (Scorecard, error) {
	const shape = "scorecard"
	if len(rows) == 0 {
		return Scorecard{}, shapeErr(shape, -1, "no rows")
	}
	m := rows[0].Metrics
	if len(m) < 3 {
		return Scorecard{}, shapeErr(shape, 0, "want 3 metrics, got %d", len(m))
	}
	return Scorecard{Users: m[0], EngagementRate: m[1], Conversions: m[2]}, nil
}

// Display renders counts with thousands separators and the engagement rate
// as a two-decimal percentage. Fractional counts are truncated and values
// that are not numbers are shown as returned, so Display never fails.
func (s Scorecard) Display(p *message.Printer) ScorecardDisplay {
	return ScorecardDisplay{
		Users:          displayCount(p, s.Users),
		EngagementRate: displayRate(p, s.EngagementRate),
		Conversions:    displayCount(p, s.Conversions),
	}
}

func displayCount(p *message.Printer, raw string) string {
	if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return p.Sprintf("%d", v)
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return p.Sprintf("%d", int64(f))
	}
	return raw
}

func displayRate(p *message.Printer, raw string) string {
	rate, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return raw
	}
	return p.Sprintf("%.2f%%", rate*100)
}

// Ranked renders rows as two-column table cells with localized counts.
func Ranked(rows []reports.Row, p *message.Printer) ([][2]string, error) {
	const shape = "ranked list"
	if len(rows) == 0 {
		return nil, shapeErr(shape, -1, "no rows")
	}
	out := make([][2]string, 0, len(rows))
	for i, row := range rows {
		name, raw, err := pair(shape, i, row)
		if err != nil {
			return nil, err
		}
		v, err := parseCount(shape, i, raw)
		if err != nil {
			return nil, err
		}
		out = append(out, [2]string{name, p.Sprintf("%d", v)})
	}
	return out, nil
}

func pair(shape string, i int, row reports.Row) (string, string, error) {
	if len(row.Dimensions) < 1 || len(row.Metrics) < 1 {
		return "", "", shapeErr(shape, i, "want 1 dimension and 1 metric, got %d and %d", len(row.Dimensions), len(row.Metrics))
	}
	return row.Dimensions[0], row.Metrics[0], nil
}

func parseCount(shape string, i int, raw string) (int64, error) {
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, shapeErr(shape, i, "%q is not an integer", raw)
	}
	return v, nil
}

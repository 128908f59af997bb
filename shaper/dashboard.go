package shaper

import (
	"github.com/jrsteele09/ga-dashboard/reports"
	"golang.org/x/text/message"
)

// Dashboard is the combined payload of the five reports.
type Dashboard struct {
	Overview   []TimePoint      `json:"overview"`
	Traffic    []Slice          `json:"traffic"`
	Scorecards Scorecard        `json:"scorecards"`
	Display    ScorecardDisplay `json:"scorecardDisplay"`
	Locations  [][2]string      `json:"locations"`
	Events     [][2]string      `json:"events"`
}

// BuildDashboard shapes a complete set of report rows keyed by report name.
// A missing report is a shape error like any other missing row set.
func BuildDashboard(rows map[string][]reports.Row, p *message.Printer) (*Dashboard, error) {
	var (
		d   Dashboard
		err error
	)
	if d.Overview, err = TimeSeries(rows[reports.Overview]); err != nil {
		return nil, err
	}
	if d.Traffic, err = Categorical(rows[reports.Traffic]); err != nil {
		return nil, err
	}
	if d.Scorecards, err = ScorecardOf(rows[reports.Scorecards]); err != nil {
		return nil, err
	}
	d.Display = d.Scorecards.Display(p)
	if d.Locations, err = Ranked(rows[reports.Locations], p); err != nil {
		return nil, err
	}
	if d.Events, err = Ranked(rows[reports.Events], p); err != nil {
		return nil, err
	}
	return &d, nil
}

// Shape applies the shape that belongs to the named report.
func Shape(report string, rows []reports.Row, p *message.Printer) (any, error) {
	switch report {
	case reports.Overview:
		return TimeSeries(rows)
	case reports.Traffic:
		return Categorical(rows)
	case reports.Scorecards:
		sc, err := ScorecardOf(rows)
		if err != nil {
			return nil, err
		}
		return sc.Display(p), nil
	case reports.Locations, reports.Events:
		return Ranked(rows, p)
	default:
		return nil, shapeErr(report, -1, "no shape for report")
	}
}

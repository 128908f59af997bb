package reports

import (
	"fmt"
	"net/url"
	"slices"

	apperrors "github.com/jrsteele09/ga-dashboard/internal/errors"
)

// Report names, also the last path segment of /api/data/{name}.
const (
	Overview   = "overview"
	Traffic    = "traffic"
	Scorecards = "scorecards"
	Locations  = "locations"
	Events     = "events"
)

// OrderKind is the ordering rule of a report.
type OrderKind int

const (
	OrderNone OrderKind = iota
	OrderDimensionAlphanumeric
	OrderMetricNumericDesc
)

func (o OrderKind) String() string {
	switch o {
	case OrderDimensionAlphanumeric:
		return "dimension_alphanumeric"
	case OrderMetricNumericDesc:
		return "metric_numeric_desc"
	default:
		return "none"
	}
}

// Spec is a named, fixed report template.
type Spec struct {
	Name       string
	Dimensions []string
	Metrics    []string
	Order      OrderKind
	// OrderField is the dimension or metric the Order applies to.
	OrderField string
	// Limit caps the row count; zero means no limit.
	Limit int64
}

var catalog = []Spec{
	{
		Name:       Overview,
		Dimensions: []string{"date"},
		Metrics:    []string{"activeUsers", "sessions", "newUsers"},
		Order:      OrderDimensionAlphanumeric,
		OrderField: "date",
	},
	{
		Name:       Traffic,
		Dimensions: []string{"sessionDefaultChannelGroup"},
		Metrics:    []string{"sessions"},
		Order:      OrderMetricNumericDesc,
		OrderField: "sessions",
	},
	{
		Name:    Scorecards,
		Metrics: []string{"activeUsers", "engagementRate", "conversions"},
	},
	{
		Name:       Locations,
		Dimensions: []string{"country"},
		Metrics:    []string{"activeUsers"},
		Order:      OrderMetricNumericDesc,
		OrderField: "activeUsers",
		Limit:      10,
	},
	{
		Name:       Events,
		Dimensions: []string{"eventName"},
		Metrics:    []string{"eventCount"},
		Order:      OrderMetricNumericDesc,
		OrderField: "eventCount",
		Limit:      10,
	},
}

// Names lists the report names in dashboard order.
func Names() []string {
	names := make([]string, 0, len(catalog))
	for _, s := range catalog {
		names = append(names, s.Name)
	}
	return names
}

// Lookup returns a copy of the named spec.
func Lookup(name string) (Spec, error) {
	for _, s := range catalog {
		if s.Name == name {
			return s.clone(), nil
		}
	}
	return Spec{}, fmt.Errorf("%w: %q", apperrors.ErrUnknownReport, name)
}

// MustLookup panics on unknown names; for the fixed names above.
func MustLookup(name string) Spec {
	s, err := Lookup(name)
	if err != nil {
		panic(err)
	}
	return s
}

func (s Spec) clone() Spec {
	s.Dimensions = slices.Clone(s.Dimensions)
	s.Metrics = slices.Clone(s.Metrics)
	return s
}

const (
	DefaultStartDate = "28daysAgo"
	DefaultEndDate   = "today"
)

// DateRange is forwarded to the API as-is; the API rejects malformed values.
type DateRange struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// ResolveDateRange reads startDate/endDate, substituting defaults only when absent.
func ResolveDateRange(q url.Values) DateRange {
	dr := DateRange{StartDate: q.Get("startDate"), EndDate: q.Get("endDate")}
	if dr.StartDate == "" {
		dr.StartDate = DefaultStartDate
	}
	if dr.EndDate == "" {
		dr.EndDate = DefaultEndDate
	}
	return dr
}

package reports_test

import (
	"net/url"
	"testing"

	apperrors "github.com/jrsteele09/ga-dashboard/internal/errors"
	"github.com/jrsteele09/ga-dashboard/reports"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	require.Equal(t, []string{"overview", "traffic", "scorecards", "locations", "events"}, reports.Names())

	t.Run("known report", func(t *testing.T) {
		s, err := reports.Lookup(reports.Locations)
		require.NoError(t, err)
		require.Equal(t, []string{"country"}, s.Dimensions)
		require.Equal(t, []string{"activeUsers"}, s.Metrics)
		require.Equal(t, reports.OrderMetricNumericDesc, s.Order)
		require.Equal(t, int64(10), s.Limit)
	})

	t.Run("returned specs are copies", func(t *testing.T) {
		s := reports.MustLookup(reports.Overview)
		s.Metrics[0] = "mutated"
		require.Equal(t, "activeUsers", reports.MustLookup(reports.Overview).Metrics[0])
	})

	t.Run("unknown report", func(t *testing.T) {
		_, err := reports.Lookup("revenue")
		require.ErrorIs(t, err, apperrors.ErrUnknownReport)
	})
}

func TestResolveDateRange(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  reports.DateRange
	}{
		{name: "defaults", query: "", want: reports.DateRange{StartDate: "28daysAgo", EndDate: "today"}},
		{name: "explicit", query: "startDate=2024-01-01&endDate=2024-01-31", want: reports.DateRange{StartDate: "2024-01-01", EndDate: "2024-01-31"}},
		{name: "start only", query: "startDate=7daysAgo", want: reports.DateRange{StartDate: "7daysAgo", EndDate: "today"}},
		{name: "malformed forwarded verbatim", query: "startDate=not-a-date", want: reports.DateRange{StartDate: "not-a-date", EndDate: "today"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			q, err := url.ParseQuery(tc.query)
			require.NoError(t, err)
			require.Equal(t, tc.want, reports.ResolveDateRange(q))
		})
	}
}

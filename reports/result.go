package reports

import "google.golang.org/api/analyticsdata/v1beta"

// Row is one result tuple: dimension values then metric values,
// in the order the report Spec declares them.
type Row struct {
	Dimensions []string
	Metrics    []string
}

// Result is one report response. Raw keeps the upstream payload for pass-through.
type Result struct {
	Report string
	Rows   []Row
	Raw    *analyticsdata.RunReportResponse
}

// RowsFromResponse flattens the API rows into value tuples.
func RowsFromResponse(resp *analyticsdata.RunReportResponse) []Row {
	if resp == nil {
		return nil
	}
	rows := make([]Row, 0, len(resp.Rows))
	for _, r := range resp.Rows {
		if r == nil {
			continue
		}
		row := Row{
			Dimensions: make([]string, 0, len(r.DimensionValues)),
			Metrics:    make([]string, 0, len(r.MetricValues)),
		}
		for _, d := range r.DimensionValues {
			if d != nil {
				row.Dimensions = append(row.Dimensions, d.Value)
			}
		}
		for _, m := range r.MetricValues {
			if m != nil {
				row.Metrics = append(row.Metrics, m.Value)
			}
		}
		rows = append(rows, row)
	}
	return rows
}

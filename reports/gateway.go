package reports

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jrsteele09/ga-dashboard/credentials"
	apperrors "github.com/jrsteele09/ga-dashboard/internal/errors"
	"github.com/jrsteele09/ga-dashboard/internal/logging"
	"github.com/jrsteele09/ga-dashboard/internal/metrics"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/oauth2"
	"google.golang.org/api/analyticsdata/v1beta"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const breakerName = "analytics-data-api"

// GatewayConfig configures a Gateway.
type GatewayConfig struct {
	PropertyID string
	// Endpoint overrides the Analytics Data API base URL; empty uses Google's.
	Endpoint       string
	BreakerEnabled bool
}

// Gateway executes report specs against the Analytics Data API on behalf of
// an authorized client. It is safe for concurrent use.
type Gateway struct {
	property string
	endpoint string
	breaker  *gobreaker.CircuitBreaker[*analyticsdata.RunReportResponse]
}

func NewGateway(cfg GatewayConfig) *Gateway {
	g := &Gateway{
		property: "properties/" + strings.TrimPrefix(cfg.PropertyID, "properties/"),
		endpoint: cfg.Endpoint,
	}
	if g.endpoint != "" && !strings.HasSuffix(g.endpoint, "/") {
		g.endpoint += "/"
	}
	if cfg.BreakerEnabled {
		g.breaker = newBreaker()
	}
	return g
}

// newBreaker opens after a 60% failure rate over at least 10 calls. Only
// upstream 5xx answers and failed round trips count as failures.
func newBreaker() *gobreaker.CircuitBreaker[*analyticsdata.RunReportResponse] {
	metrics.BreakerState.WithLabelValues(breakerName).Set(0)

	return gobreaker.NewCircuitBreaker[*analyticsdata.RunReportResponse](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		IsSuccessful: func(err error) bool {
			return !isUpstreamFailure(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Logger().Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("[reports] circuit breaker state change")
			metrics.BreakerState.WithLabelValues(name).Set(stateValue(to))
		},
	})
}

// isUpstreamFailure reports whether err says the Analytics Data API itself is
// unhealthy. Credential and token refresh errors belong to one session and
// never count.
func isUpstreamFailure(err error) bool {
	switch {
	case err == nil, errors.Is(err, context.Canceled), errors.Is(err, apperrors.ErrCredentials):
		return false
	}
	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) {
		return false
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code >= http.StatusInternalServerError
	}
	var uerr *url.Error
	return errors.As(err, &uerr)
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

// Property is the "properties/{id}" resource name reports run against.
func (g *Gateway) Property() string {
	return g.property
}

// BuildRequest translates a spec and date range into a runReport body.
func (g *Gateway) BuildRequest(spec Spec, dr DateRange) *analyticsdata.RunReportRequest {
	req := &analyticsdata.RunReportRequest{
		DateRanges: []*analyticsdata.DateRange{{StartDate: dr.StartDate, EndDate: dr.EndDate}},
		Limit:      spec.Limit,
	}
	for _, d := range spec.Dimensions {
		req.Dimensions = append(req.Dimensions, &analyticsdata.Dimension{Name: d})
	}
	for _, m := range spec.Metrics {
		req.Metrics = append(req.Metrics, &analyticsdata.Metric{Name: m})
	}

	switch spec.Order {
	case OrderDimensionAlphanumeric:
		req.OrderBys = []*analyticsdata.OrderBy{{
			Dimension: &analyticsdata.DimensionOrderBy{DimensionName: spec.OrderField, OrderType: "ALPHANUMERIC"},
		}}
	case OrderMetricNumericDesc:
		req.OrderBys = []*analyticsdata.OrderBy{{
			Metric: &analyticsdata.MetricOrderBy{MetricName: spec.OrderField},
			Desc:   true,
		}}
	}
	return req
}

// Run issues exactly one runReport call. Failures come back as *GatewayError.
func (g *Gateway) Run(ctx context.Context, spec Spec, client credentials.AuthorizedClient, dr DateRange) (*Result, error) {
	start := time.Now()
	defer func() {
		metrics.ReportDuration.WithLabelValues(spec.Name).Observe(time.Since(start).Seconds())
	}()

	call := func() (*analyticsdata.RunReportResponse, error) {
		svc, err := g.service(ctx, client.HTTPClient(ctx))
		if err != nil {
			return nil, err
		}
		return svc.Properties.RunReport(g.property, g.BuildRequest(spec, dr)).Context(ctx).Do()
	}

	var (
		resp *analyticsdata.RunReportResponse
		err  error
	)
	if g.breaker != nil {
		resp, err = g.breaker.Execute(call)
	} else {
		resp, err = call()
	}

	if err != nil {
		outcome := "failure"
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			outcome = "rejected"
		}
		metrics.ReportCalls.WithLabelValues(spec.Name, outcome).Inc()
		logging.Ctx(ctx).Error().Err(err).Str("report", spec.Name).Str("outcome", outcome).Msg("[reports Run] runReport failed")
		return nil, newGatewayError(spec.Name, err)
	}

	metrics.ReportCalls.WithLabelValues(spec.Name, "success").Inc()
	return &Result{Report: spec.Name, Rows: RowsFromResponse(resp), Raw: resp}, nil
}

func (g *Gateway) service(ctx context.Context, httpClient *http.Client) (*analyticsdata.Service, error) {
	opts := []option.ClientOption{option.WithHTTPClient(httpClient)}
	if g.endpoint != "" {
		opts = append(opts, option.WithEndpoint(g.endpoint))
	}
	return analyticsdata.NewService(ctx, opts...)
}

// GatewayError carries the upstream message of a failed report call.
type GatewayError struct {
	Report string
	// Status is the upstream HTTP status, 0 when the call never got an answer.
	Status  int
	Message string
	Err     error
}

func newGatewayError(report string, err error) *GatewayError {
	ge := &GatewayError{Report: report, Message: err.Error(), Err: err}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		ge.Status = gerr.Code
		if gerr.Message != "" {
			ge.Message = gerr.Message
		}
	}
	return ge
}

func (e *GatewayError) Error() string {
	return e.Report + ": " + e.Message
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

func (e *GatewayError) Is(target error) bool {
	return target == apperrors.ErrGateway
}

package registry

import (
	"context"
	"errors"
	"sync"
	"testing"

	"portalextract/internal/validate"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

type report struct {
	kind string
	id   string
}

type recordingAPI struct {
	mu      sync.Mutex
	reports []report
}

func (r *recordingAPI) add(kind, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, report{kind: kind, id: id})
}

func (r *recordingAPI) ReportBroken(id string, params ...any)  { r.add("broken", id) }
func (r *recordingAPI) ReportWarning(id string, params ...any) { r.add("warning", id) }
func (r *recordingAPI) ReportDebug(msg string, params ...any)  { r.add("debug", msg) }
func (r *recordingAPI) ReportCount(id string, count int64)     { r.add("count", id) }

func TestCatalogue(t *testing.T) {
	reg := Default(&recordingAPI{})
	pages := reg.Pages()
	require.Len(t, pages, 22)

	require.Equal(t, "albo/calendar", pages[0].Key())
	require.Equal(t, "manabo/timetable", pages[len(pages)-1].Key())

	inputs := map[Input]int{}
	for _, p := range pages {
		inputs[p.Input]++
	}
	require.Equal(t, map[Input]int{JSON: 5, HTML: 17}, inputs)
}

func TestRegisterDuplicate(t *testing.T) {
	reg := Default(&recordingAPI{})
	require.Panics(t, func() {
		reg.Register(Page{Portal: PortalManabo, Name: "news", Input: HTML, Parse: Adapt(func(string) (int, error) { return 0, nil })})
	})
}

func TestSuggest(t *testing.T) {
	reg := Default(&recordingAPI{})

	cases := []struct {
		portal   string
		page     string
		expected string
		ok       bool
	}{
		{portal: "manabo", page: "timetabel", expected: "manabo/timetable", ok: true},
		{portal: "manabo", page: "classcontent", expected: "manabo/classContent", ok: true},
		{portal: "albo", page: "calender", expected: "albo/calendar", ok: true},
		{portal: "qqqq", page: "xyz", ok: false},
	}
	for _, c := range cases {
		suggestion, ok := reg.Suggest(c.portal, c.page)
		require.Equal(t, c.ok, ok, c.page)
		require.Equal(t, c.expected, suggestion, c.page)
	}
}

func TestRunUnknownPage(t *testing.T) {
	tel := &recordingAPI{}
	reg := Default(tel)

	_, err := reg.Run(context.Background(), "manabo", "timetabel", "")
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	require.Equal(t, "manabo/timetable", notFound.Suggestion)
	require.Equal(t, "unknown page manabo/timetabel, did you mean manabo/timetable?", err.Error())
	require.Equal(t, []report{{kind: "debug", id: report_registry_lookup}}, tel.reports)
}

func TestRunInstrumentation(t *testing.T) {
	ctx := context.Background()

	reader := sdkmetric.NewManualReader()
	meterProvider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	spans := tracetest.NewSpanRecorder()
	tracerProvider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))

	tel := &recordingAPI{}
	reg := Default(tel, WithTracerProvider(tracerProvider), WithMeterProvider(meterProvider))

	record, err := reg.Run(ctx, "manabo", "news", `<table class="table-info"><tbody><tr><td>no news</td></tr></tbody></table>`)
	require.NoError(t, err)
	require.NotNil(t, record)

	_, err = reg.Run(ctx, "albo", "calendar", "not json")
	require.Error(t, err)
	var verr *validate.Error
	require.True(t, errors.As(err, &verr))

	failing := New(tel, WithTracerProvider(tracerProvider), WithMeterProvider(meterProvider))
	failing.Register(Page{Portal: "test", Name: "broken", Input: HTML, Parse: func(string) (any, error) {
		return nil, errors.New("boom")
	}})
	_, err = failing.Run(ctx, "test", "broken", "")
	require.EqualError(t, err, "test/broken: boom")

	require.Equal(t, []report{
		{kind: "warning", id: report_registry_run},
		{kind: "broken", id: report_registry_run},
	}, tel.reports)

	ended := spans.Ended()
	require.Len(t, ended, 3)
	require.Equal(t, codes.Unset, ended[0].Status().Code)
	require.Equal(t, codes.Error, ended[1].Status().Code)
	require.Equal(t, codes.Error, ended[2].Status().Code)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	outcomes := map[string]int64{}
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name != "extractions" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				outcome, _ := dp.Attributes.Value("outcome")
				outcomes[outcome.AsString()] += dp.Value
			}
		}
	}
	require.Equal(t, map[string]int64{OutcomeOk: 1, OutcomeInvalid: 1, OutcomeError: 1}, outcomes)
}

package scraper

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/monitoring/apiv3/v2/monitoringpb"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/timestamppb"
)

type recordingWriter struct {
	projectID string
	series    []*monitoringpb.TimeSeries
	err       error
	calls     int
}

func (w *recordingWriter) WriteTimeSeries(ctx context.Context, projectID string, series []*monitoringpb.TimeSeries) error {
	w.calls++
	w.projectID = projectID
	w.series = series
	return w.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newMetricsServer serves a registry shaped like the API's /metrics endpoint.
func newMetricsServer(t *testing.T) *httptest.Server {
	t.Helper()
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "islandcities_http_requests_total",
		Help: "Total number of HTTP requests by path, method and code.",
	}, []string{"path", "method", "code"})
	loaded := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "islandcities_cities_loaded",
		Help: "Number of city records in the current snapshot.",
	})
	latency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "islandcities_reload_seconds",
		Help:    "Reload duration.",
		Buckets: []float64{1, 5},
	})
	reg.MustRegister(requests, loaded, latency)

	requests.WithLabelValues("/api/haskai", "GET", "200").Add(3)
	loaded.Set(42)
	latency.Observe(0.5)
	latency.Observe(3)
	latency.Observe(10)

	srv := httptest.NewServer(promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	t.Cleanup(srv.Close)
	return srv
}

func TestConfigValidate(t *testing.T) {
	testCases := []struct {
		name      string
		cfg       Config
		want      Config
		expectErr bool
	}{
		{
			name: "Defaults filled",
			cfg:  Config{MetricsURL: "http://api/metrics", ProjectID: "p"},
			want: Config{MetricsURL: "http://api/metrics", ProjectID: "p", Location: DefaultLocation, Namespace: DefaultNamespace},
		},
		{
			name: "Explicit location kept",
			cfg:  Config{MetricsURL: "http://api/metrics", ProjectID: "p", Location: "europe-west1"},
			want: Config{MetricsURL: "http://api/metrics", ProjectID: "p", Location: "europe-west1", Namespace: DefaultNamespace},
		},
		{name: "Missing metrics URL", cfg: Config{ProjectID: "p"}, expectErr: true},
		{name: "Missing project", cfg: Config{MetricsURL: "http://api/metrics"}, expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, tc.cfg)
		})
	}
}

func TestScrapeAndIngest(t *testing.T) {
	srv := newMetricsServer(t)
	writer := &recordingWriter{}
	s, err := New(Config{MetricsURL: srv.URL, ProjectID: "island-project"}, writer, discardLogger())
	require.NoError(t, err)
	fixed := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	require.NoError(t, s.ScrapeAndIngest(context.Background()))

	assert.Equal(t, 1, writer.calls)
	assert.Equal(t, "island-project", writer.projectID)
	require.Len(t, writer.series, 3, "runtime metrics must be filtered out")

	byType := make(map[string]*monitoringpb.TimeSeries)
	for _, ts := range writer.series {
		byType[ts.GetMetric().GetType()] = ts
		assert.Equal(t, "prometheus_target", ts.GetResource().GetType())
		assert.Equal(t, DefaultLocation, ts.GetResource().GetLabels()["location"])
		assert.Equal(t, "islandcities", ts.GetResource().GetLabels()["job"])
		assert.Equal(t, fixed.Unix(), ts.GetPoints()[0].GetInterval().GetEndTime().GetSeconds())
	}

	counter := byType["prometheus.googleapis.com/islandcities_http_requests_total"]
	require.NotNil(t, counter)
	assert.Equal(t, 3.0, counter.GetPoints()[0].GetValue().GetDoubleValue())
	assert.Equal(t, map[string]string{"path": "/api/haskai", "method": "GET", "code": "200"}, counter.GetMetric().GetLabels())

	gauge := byType["prometheus.googleapis.com/islandcities_cities_loaded"]
	require.NotNil(t, gauge)
	assert.Equal(t, 42.0, gauge.GetPoints()[0].GetValue().GetDoubleValue())

	hist := byType["prometheus.googleapis.com/islandcities_reload_seconds"]
	require.NotNil(t, hist)
	dist := hist.GetPoints()[0].GetValue().GetDistributionValue()
	require.NotNil(t, dist)
	assert.Equal(t, int64(3), dist.GetCount())
	assert.InDelta(t, 4.5, dist.GetMean(), 1e-9)
	assert.Equal(t, []float64{1, 5}, dist.GetBucketOptions().GetExplicitBuckets().GetBounds())
	assert.Equal(t, []int64{1, 1, 1}, dist.GetBucketCounts())
}

func TestScrapeAndIngest_Errors(t *testing.T) {
	t.Run("Endpoint returns error status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		writer := &recordingWriter{}
		s, err := New(Config{MetricsURL: srv.URL, ProjectID: "p"}, writer, discardLogger())
		require.NoError(t, err)

		err = s.ScrapeAndIngest(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status code 503")
		assert.Zero(t, writer.calls)
	})

	t.Run("Unparseable exposition", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, "islandcities_broken{ 1\n")
		}))
		defer srv.Close()

		s, err := New(Config{MetricsURL: srv.URL, ProjectID: "p"}, &recordingWriter{}, discardLogger())
		require.NoError(t, err)

		err = s.ScrapeAndIngest(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse prometheus metrics")
	})

	t.Run("Nothing to ingest", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, "# TYPE go_goroutines gauge\ngo_goroutines 7\n")
		}))
		defer srv.Close()

		writer := &recordingWriter{}
		s, err := New(Config{MetricsURL: srv.URL, ProjectID: "p"}, writer, discardLogger())
		require.NoError(t, err)

		require.NoError(t, s.ScrapeAndIngest(context.Background()))
		assert.Zero(t, writer.calls)
	})

	t.Run("Writer fails", func(t *testing.T) {
		srv := newMetricsServer(t)
		writer := &recordingWriter{err: errors.New("permission denied")}
		s, err := New(Config{MetricsURL: srv.URL, ProjectID: "p"}, writer, discardLogger())
		require.NoError(t, err)

		err = s.ScrapeAndIngest(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "permission denied")
	})
}

func TestServeHTTP(t *testing.T) {
	srv := newMetricsServer(t)

	t.Run("Success", func(t *testing.T) {
		s, err := New(Config{MetricsURL: srv.URL, ProjectID: "p"}, &recordingWriter{}, discardLogger())
		require.NoError(t, err)

		rr := httptest.NewRecorder()
		s.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "Success\n", rr.Body.String())
	})

	t.Run("Failure", func(t *testing.T) {
		s, err := New(Config{MetricsURL: srv.URL, ProjectID: "p"}, &recordingWriter{err: errors.New("quota exceeded")}, discardLogger())
		require.NoError(t, err)

		rr := httptest.NewRecorder()
		s.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", nil))

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.True(t, strings.Contains(rr.Body.String(), "quota exceeded"))
	})
}

func TestCreateDistributionPoint(t *testing.T) {
	ts := timestamppb.Now()

	t.Run("Explicit +Inf bucket", func(t *testing.T) {
		h := &dto.Histogram{
			SampleCount: proto.Uint64(4),
			SampleSum:   proto.Float64(8),
			Bucket: []*dto.Bucket{
				{UpperBound: proto.Float64(0.1), CumulativeCount: proto.Uint64(1)},
				{UpperBound: proto.Float64(1), CumulativeCount: proto.Uint64(3)},
				{UpperBound: proto.Float64(math.Inf(1)), CumulativeCount: proto.Uint64(4)},
			},
		}
		dist := createDistributionPoint(ts, h, discardLogger()).GetValue().GetDistributionValue()
		assert.Equal(t, []float64{0.1, 1}, dist.GetBucketOptions().GetExplicitBuckets().GetBounds())
		assert.Equal(t, []int64{1, 2, 1}, dist.GetBucketCounts())
		assert.Equal(t, 2.0, dist.GetMean())
	})

	t.Run("Empty histogram", func(t *testing.T) {
		dist := createDistributionPoint(ts, &dto.Histogram{}, discardLogger()).GetValue().GetDistributionValue()
		assert.Zero(t, dist.GetCount())
		assert.Zero(t, dist.GetMean())
		assert.Empty(t, dist.GetBucketOptions().GetExplicitBuckets().GetBounds())
		assert.Equal(t, []int64{0}, dist.GetBucketCounts())
	})
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := New(Config{}, &recordingWriter{}, discardLogger())
	assert.Error(t, err)
}

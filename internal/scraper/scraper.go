// Package scraper pulls Prometheus metrics from the islandcities service and
// writes them to Google Cloud Monitoring as prometheus_target time series.
//
// It runs as a separate, request-triggered service (see cmd/scraper) so that
// the API itself carries no Cloud Monitoring credentials:
//  1. A scheduler calls the scraper's HTTP endpoint.
//  2. The scraper fetches the text exposition from METRICS_URL.
//  3. Counters, gauges, untyped metrics and histograms in the configured
//     namespace are converted to TimeSeries.
//  4. The series are written with the Cloud Monitoring API.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	monitoring "cloud.google.com/go/monitoring/apiv3/v2"
	"cloud.google.com/go/monitoring/apiv3/v2/monitoringpb"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/genproto/googleapis/api/distribution"
	"google.golang.org/genproto/googleapis/api/metric"
	"google.golang.org/genproto/googleapis/api/monitoredres"
	"google.golang.org/protobuf/types/known/timestamppb"
)

const (
	DefaultLocation  = "us-west1"
	DefaultNamespace = "islandcities"
)

// Config describes where metrics are read from and how they are labelled.
type Config struct {
	MetricsURL string
	ProjectID  string
	Location   string
	Namespace  string
}

// Validate fills defaults and reports missing required fields.
func (c *Config) Validate() error {
	if c.MetricsURL == "" {
		return errors.New("metrics URL must be set")
	}
	if c.ProjectID == "" {
		return errors.New("project ID must be set")
	}
	if c.Location == "" {
		c.Location = DefaultLocation
	}
	if c.Namespace == "" {
		c.Namespace = DefaultNamespace
	}
	return nil
}

// Writer stores converted time series.
type Writer interface {
	WriteTimeSeries(ctx context.Context, projectID string, series []*monitoringpb.TimeSeries) error
}

// CloudWriter writes to Google Cloud Monitoring. A client is created per
// call; the underlying gRPC connections are pooled by the library.
type CloudWriter struct{}

func (CloudWriter) WriteTimeSeries(ctx context.Context, projectID string, series []*monitoringpb.TimeSeries) error {
	client, err := monitoring.NewMetricClient(ctx)
	if err != nil {
		return fmt.Errorf("failed to create monitoring client: %w", err)
	}
	defer client.Close()

	req := &monitoringpb.CreateTimeSeriesRequest{
		Name:       "projects/" + projectID,
		TimeSeries: series,
	}
	if err := client.CreateTimeSeries(ctx, req); err != nil {
		return fmt.Errorf("failed to write time series data: %w", err)
	}
	return nil
}

type Scraper struct {
	cfg        Config
	writer     Writer
	httpClient *http.Client
	logger     *slog.Logger
	now        func() time.Time
}

func New(cfg Config, writer Writer, logger *slog.Logger) (*Scraper, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Scraper{
		cfg:        cfg,
		writer:     writer,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
		now:        time.Now,
	}, nil
}

// ServeHTTP runs one scrape per request and answers 500 on failure.
func (s *Scraper) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.logger.Info("scrape request received")
	if err := s.ScrapeAndIngest(r.Context()); err != nil {
		s.logger.Error("error during scrape and ingest", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.logger.Info("successfully scraped and ingested metrics")
	fmt.Fprintln(w, "Success")
}

func (s *Scraper) ScrapeAndIngest(ctx context.Context) error {
	families, err := s.fetch(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch metrics: %w", err)
	}

	series := s.Convert(families)
	if len(series) == 0 {
		s.logger.Info("no metric samples found to ingest")
		return nil
	}

	if err := s.writer.WriteTimeSeries(ctx, s.cfg.ProjectID, series); err != nil {
		return fmt.Errorf("failed to ingest metrics: %w", err)
	}
	s.logger.Debug("time series written", "count", len(series))
	return nil
}

func (s *Scraper) fetch(ctx context.Context) (map[string]*dto.MetricFamily, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.MetricsURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http request failed with status code %d", resp.StatusCode)
	}

	var parser expfmt.TextParser
	families, err := parser.TextToMetricFamilies(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse prometheus metrics: %w", err)
	}
	return families, nil
}

// Convert turns the metric families of the configured namespace into
// TimeSeries. Runtime metrics (go_*, process_*) and summaries are skipped.
func (s *Scraper) Convert(families map[string]*dto.MetricFamily) []*monitoringpb.TimeSeries {
	resource := &monitoredres.MonitoredResource{
		Type: "prometheus_target",
		Labels: map[string]string{
			"project_id": s.cfg.ProjectID,
			"location":   s.cfg.Location,
			"cluster":    "__gce__",
			"namespace":  s.cfg.Namespace,
			"job":        s.cfg.Namespace,
			"instance":   s.cfg.MetricsURL,
		},
	}
	now := timestamppb.New(s.now())
	prefix := s.cfg.Namespace + "_"

	var series []*monitoringpb.TimeSeries
	for name, mf := range families {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := make(map[string]string, len(m.GetLabel()))
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}

			var point *monitoringpb.Point
			switch mf.GetType() {
			case dto.MetricType_COUNTER:
				point = createPoint(now, m.GetCounter().GetValue())
			case dto.MetricType_GAUGE:
				point = createPoint(now, m.GetGauge().GetValue())
			case dto.MetricType_UNTYPED:
				point = createPoint(now, m.GetUntyped().GetValue())
			case dto.MetricType_HISTOGRAM:
				point = createDistributionPoint(now, m.GetHistogram(), s.logger)
			case dto.MetricType_SUMMARY:
				s.logger.Debug("skipping metric with unhandled summary type", "metric", name)
				continue
			default:
				s.logger.Warn("skipping metric with unhandled type", "metric", name, "type", mf.GetType())
				continue
			}

			series = append(series, &monitoringpb.TimeSeries{
				Metric: &metric.Metric{
					Type:   "prometheus.googleapis.com/" + name,
					Labels: labels,
				},
				Resource: resource,
				Points:   []*monitoringpb.Point{point},
			})
		}
	}
	return series
}

func createPoint(timestamp *timestamppb.Timestamp, value float64) *monitoringpb.Point {
	return &monitoringpb.Point{
		Interval: &monitoringpb.TimeInterval{
			EndTime: timestamp,
		},
		Value: &monitoringpb.TypedValue{
			Value: &monitoringpb.TypedValue_DoubleValue{
				DoubleValue: value,
			},
		},
	}
}

// clampCount converts a Prometheus count to int64, capping at MaxInt64.
func clampCount(v uint64, logger *slog.Logger, what string) int64 {
	if v > math.MaxInt64 {
		logger.Warn("histogram count exceeds MaxInt64, capping value", "count", what, "value", v)
		return math.MaxInt64
	}
	return int64(v)
}

// createDistributionPoint converts cumulative Prometheus buckets into the
// per-bucket counts of a Cloud Monitoring Distribution. The implicit +Inf
// bucket becomes the overflow bucket.
func createDistributionPoint(timestamp *timestamppb.Timestamp, h *dto.Histogram, logger *slog.Logger) *monitoringpb.Point {
	buckets := h.GetBucket()
	bounds := make([]float64, 0, len(buckets))
	counts := make([]int64, 0, len(buckets)+1)
	var last uint64
	for _, b := range buckets {
		if math.IsInf(b.GetUpperBound(), +1) {
			continue
		}
		var inBucket uint64
		if b.GetCumulativeCount() > last {
			inBucket = b.GetCumulativeCount() - last
			last = b.GetCumulativeCount()
		}
		bounds = append(bounds, b.GetUpperBound())
		counts = append(counts, clampCount(inBucket, logger, "bucket"))
	}
	var overflow uint64
	if h.GetSampleCount() > last {
		overflow = h.GetSampleCount() - last
	}
	counts = append(counts, clampCount(overflow, logger, "overflow"))

	var mean float64
	if h.GetSampleCount() > 0 {
		mean = h.GetSampleSum() / float64(h.GetSampleCount())
	}

	dist := &distribution.Distribution{
		Count: clampCount(h.GetSampleCount(), logger, "sample"),
		Mean:  mean,
		BucketOptions: &distribution.Distribution_BucketOptions{
			Options: &distribution.Distribution_BucketOptions_ExplicitBuckets{
				ExplicitBuckets: &distribution.Distribution_BucketOptions_Explicit{
					Bounds: bounds,
				},
			},
		},
		BucketCounts: counts,
	}

	return &monitoringpb.Point{
		Interval: &monitoringpb.TimeInterval{
			EndTime: timestamp,
		},
		Value: &monitoringpb.TypedValue{
			Value: &monitoringpb.TypedValue_DistributionValue{
				DistributionValue: dist,
			},
		},
	}
}

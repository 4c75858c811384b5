package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var meter = otel.Meter("analysis-metrics")

// AnalysisMetrics provides metrics collection for nutrition analyses
type AnalysisMetrics struct {
	analysesRequestedCounter  metric.Int64Counter
	analysesCompletedCounter  metric.Int64Counter
	analysesFailedCounter     metric.Int64Counter
	analysisDurationHistogram metric.Float64Histogram
	analysesActiveGauge       metric.Int64UpDownCounter
}

// NewAnalysisMetrics creates a new analysis metrics collector
func NewAnalysisMetrics() (*AnalysisMetrics, error) {
	analysesRequestedCounter, err := meter.Int64Counter(
		"calorie_tracker.analyses.requested",
		metric.WithDescription("Total number of nutrition analyses requested"),
		metric.WithUnit("{analysis}"),
	)
	if err != nil {
		return nil, err
	}

	analysesCompletedCounter, err := meter.Int64Counter(
		"calorie_tracker.analyses.completed",
		metric.WithDescription("Total number of nutrition analyses completed successfully"),
		metric.WithUnit("{analysis}"),
	)
	if err != nil {
		return nil, err
	}

	analysesFailedCounter, err := meter.Int64Counter(
		"calorie_tracker.analyses.failed",
		metric.WithDescription("Total number of nutrition analyses that failed"),
		metric.WithUnit("{analysis}"),
	)
	if err != nil {
		return nil, err
	}

	analysisDurationHistogram, err := meter.Float64Histogram(
		"calorie_tracker.analysis.duration",
		metric.WithDescription("Duration of nutrition analysis in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	analysesActiveGauge, err := meter.Int64UpDownCounter(
		"calorie_tracker.analyses.active",
		metric.WithDescription("Number of currently running nutrition analyses"),
		metric.WithUnit("{analysis}"),
	)
	if err != nil {
		return nil, err
	}

	return &AnalysisMetrics{
		analysesRequestedCounter:  analysesRequestedCounter,
		analysesCompletedCounter:  analysesCompletedCounter,
		analysesFailedCounter:     analysesFailedCounter,
		analysisDurationHistogram: analysisDurationHistogram,
		analysesActiveGauge:       analysesActiveGauge,
	}, nil
}

// RecordAnalysisStarted records a new analysis request
func (am *AnalysisMetrics) RecordAnalysisStarted(ctx context.Context) {
	am.analysesRequestedCounter.Add(ctx, 1)
	am.analysesActiveGauge.Add(ctx, 1)
}

// RecordAnalysisCompleted records a successful analysis
func (am *AnalysisMetrics) RecordAnalysisCompleted(ctx context.Context, confidence string, duration time.Duration) {
	am.analysesCompletedCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("analysis.confidence", confidence),
			attribute.String("status", "completed"),
		),
	)
	am.analysisDurationHistogram.Record(ctx, duration.Seconds(),
		metric.WithAttributes(
			attribute.String("status", "completed"),
		),
	)
	am.analysesActiveGauge.Add(ctx, -1)
}

// RecordAnalysisFailed records a failed analysis
func (am *AnalysisMetrics) RecordAnalysisFailed(ctx context.Context, errorCode string, duration time.Duration) {
	am.analysesFailedCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("error.code", errorCode),
			attribute.String("status", "failed"),
		),
	)
	am.analysisDurationHistogram.Record(ctx, duration.Seconds(),
		metric.WithAttributes(
			attribute.String("status", "failed"),
		),
	)
	am.analysesActiveGauge.Add(ctx, -1)
}

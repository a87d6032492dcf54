package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys.
var (
	AttrOperation = attribute.Key("operation")
	AttrReportKey = attribute.Key("report")
	AttrFormatKey = attribute.Key("format")
	AttrResult    = attribute.Key("result")
	AttrTemplate  = attribute.Key("template")
	AttrDryRunKey = attribute.Key("dry_run")
)

// ExportDurationBuckets are bucket boundaries for document generation (seconds).
var ExportDurationBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}

// Metrics holds the application instruments. A nil *Metrics records nothing.
type Metrics struct {
	calculationsSaved   metric.Int64Counter
	calculationsUpdated metric.Int64Counter
	belowMargin         metric.Int64Counter
	exports             metric.Int64Counter
	exportDuration      metric.Float64Histogram
	logins              metric.Int64Counter
	captchas            metric.Int64Counter
	mails               metric.Int64Counter
}

// NewMetrics creates the application instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error
	counters := []struct {
		target      *metric.Int64Counter
		name        string
		description string
	}{
		{&m.calculationsSaved, "calculation.saved", "Calculations created, edited, cloned or deleted"},
		{&m.calculationsUpdated, "calculation.recomputed", "Calculations whose totals changed during a bulk update"},
		{&m.belowMargin, "calculation.below_margin", "Calculations saved below the minimum margin"},
		{&m.exports, "export.generated", "Generated documents"},
		{&m.logins, "auth.login", "Login attempts"},
		{&m.captchas, "captcha.checked", "Captcha validations"},
		{&m.mails, "mail.sent", "Outgoing mails"},
	}
	for _, c := range counters {
		*c.target, err = meter.Int64Counter(c.name, metric.WithDescription(c.description), metric.WithUnit("1"))
		if err != nil {
			return nil, fmt.Errorf("failed to create counter %s: %w", c.name, err)
		}
	}

	m.exportDuration, err = meter.Float64Histogram("export.duration",
		metric.WithDescription("Document generation time"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(ExportDurationBuckets...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create histogram export.duration: %w", err)
	}
	return m, nil
}

// CalculationSaved counts a persisted change of the given operation.
func (m *Metrics) CalculationSaved(ctx context.Context, operation string) {
	if m == nil {
		return
	}
	m.calculationsSaved.Add(ctx, 1, metric.WithAttributes(AttrOperation.String(operation)))
}

// CalculationsRecomputed counts calculations changed by a bulk update.
func (m *Metrics) CalculationsRecomputed(ctx context.Context, count int, dryRun bool) {
	if m == nil || count <= 0 {
		return
	}
	m.calculationsUpdated.Add(ctx, int64(count), metric.WithAttributes(AttrDryRunKey.Bool(dryRun)))
}

// BelowMargin counts a below-minimum-margin save.
func (m *Metrics) BelowMargin(ctx context.Context) {
	if m == nil {
		return
	}
	m.belowMargin.Add(ctx, 1)
}

// ExportGenerated records a generated document and its duration.
func (m *Metrics) ExportGenerated(ctx context.Context, report, format string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		AttrReportKey.String(report),
		AttrFormatKey.String(format),
		AttrResult.String(result(err == nil)),
	)
	m.exports.Add(ctx, 1, attrs)
	m.exportDuration.Record(ctx, elapsed.Seconds(), attrs)
}

// Login counts a login attempt.
func (m *Metrics) Login(ctx context.Context, success bool) {
	if m == nil {
		return
	}
	m.logins.Add(ctx, 1, metric.WithAttributes(AttrResult.String(result(success))))
}

// Captcha counts a captcha validation.
func (m *Metrics) Captcha(ctx context.Context, valid bool) {
	if m == nil {
		return
	}
	m.captchas.Add(ctx, 1, metric.WithAttributes(AttrResult.String(result(valid))))
}

// MailSent counts an outgoing mail of the given template.
func (m *Metrics) MailSent(ctx context.Context, template string, err error) {
	if m == nil {
		return
	}
	m.mails.Add(ctx, 1, metric.WithAttributes(
		AttrTemplate.String(template),
		AttrResult.String(result(err == nil)),
	))
}

func result(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}

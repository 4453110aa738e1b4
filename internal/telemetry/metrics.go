package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/WailSalutem-Health-Care/patient-registry-service"

// Metrics holds the registry's business counters
type Metrics struct {
	PatientTotal metric.Int64Counter
	ReportTotal  metric.Int64Counter
}

// InitMetrics creates the counters on the global meter provider. Call it after
// InitProvider so they are exported.
func InitMetrics() (*Metrics, error) {
	meter := otel.Meter(instrumentationName)

	patientTotal, err := meter.Int64Counter(
		"patient_total",
		metric.WithDescription("Total number of patient operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, err
	}

	reportTotal, err := meter.Int64Counter(
		"patient_report_total",
		metric.WithDescription("Total number of report file operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		PatientTotal: patientTotal,
		ReportTotal:  reportTotal,
	}, nil
}

// RecordPatientOperation records a patient operation metric
func (m *Metrics) RecordPatientOperation(ctx context.Context, operation string) {
	if m == nil {
		return
	}
	m.PatientTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
	))
}

// RecordReportOperation records a report file operation (stored, deleted, served)
func (m *Metrics) RecordReportOperation(ctx context.Context, operation string) {
	if m == nil {
		return
	}
	m.ReportTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
	))
}

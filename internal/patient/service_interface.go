package patient

import (
	"context"
	"io"

	"github.com/WailSalutem-Health-Care/patient-registry-service/internal/pagination"
	"github.com/WailSalutem-Health-Care/patient-registry-service/internal/reports"
)

// ServiceInterface defines the contract for patient business logic operations
type ServiceInterface interface {
	CreatePatient(ctx context.Context, form PatientForm, report *ReportUpload) (*Patient, error)
	GetPatient(ctx context.Context, id string) (*Patient, error)
	ListPatients(ctx context.Context) ([]Patient, error)
	ListPatientsWithPagination(ctx context.Context, params pagination.Params) (*PaginatedPatientListResponse, error)
	SearchPatients(ctx context.Context, query string) ([]Patient, error)
	UpdatePatient(ctx context.Context, id string, form PatientUpdateForm, report *ReportUpload) (*Patient, error)
	DeletePatient(ctx context.Context, id string) error
	OpenReport(ctx context.Context, filename string) (reports.File, error)
}

// ReportStore is the file store holding uploaded reports.
type ReportStore interface {
	Save(ctx context.Context, name string, content io.Reader) (int64, error)
	Open(ctx context.Context, name string) (reports.File, error)
	Delete(ctx context.Context, name string) error
	List(ctx context.Context) ([]string, error)
}

// MetricsRecorder receives operation counts.
type MetricsRecorder interface {
	RecordPatientOperation(ctx context.Context, operation string)
	RecordReportOperation(ctx context.Context, operation string)
}

var (
	_ ServiceInterface = (*Service)(nil)
	_ ReportStore      = (*reports.DiskStore)(nil)
)

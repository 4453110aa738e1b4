package patient

import "context"

// RepositoryInterface defines the contract for patient data access
type RepositoryInterface interface {
	CreatePatient(ctx context.Context, p *Patient) (*Patient, error)
	Exists(ctx context.Context, id string) (bool, error)
	GetPatient(ctx context.Context, id string) (*Patient, error)
	ListPatients(ctx context.Context) ([]Patient, error)
	ListPatientsWithPagination(ctx context.Context, limit, offset int) ([]Patient, int, error)
	SearchPatients(ctx context.Context, query string) ([]Patient, error)
	UpdatePatient(ctx context.Context, p *Patient) (*Patient, error)
	DeletePatient(ctx context.Context, id string) error
	ListReportFiles(ctx context.Context) ([]string, error)
}

// Ensure Repository implements RepositoryInterface
var _ RepositoryInterface = (*Repository)(nil)

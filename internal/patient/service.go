package patient

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/WailSalutem-Health-Care/patient-registry-service/internal/messaging"
	"github.com/WailSalutem-Health-Care/patient-registry-service/internal/pagination"
	"github.com/WailSalutem-Health-Care/patient-registry-service/internal/reports"
)

const tracerName = "github.com/WailSalutem-Health-Care/patient-registry-service/internal/patient"

type Service struct {
	repo      RepositoryInterface
	reports   ReportStore
	publisher messaging.PublisherInterface
	metrics   MetricsRecorder
	log       *zap.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewService wires the registry. publisher and metrics may be nil.
func NewService(repo RepositoryInterface, store ReportStore, publisher messaging.PublisherInterface, metrics MetricsRecorder, log *zap.Logger) *Service {
	return &Service{
		repo:      repo,
		reports:   store,
		publisher: publisher,
		metrics:   metrics,
		log:       log,
		tracer:    otel.Tracer(tracerName),
		now:       time.Now,
	}
}

// CreatePatient validates an intake, stores an accepted PDF report and
// persists the new record. Checks run in order: duplicate identifier, contact,
// emergency contact, date of birth, field widths.
func (s *Service) CreatePatient(ctx context.Context, form PatientForm, report *ReportUpload) (*Patient, error) {
	id := GenerateID(form.Name, form.DOB)

	ctx, span := s.tracer.Start(ctx, "patient.CreatePatient", trace.WithAttributes(attribute.String("patient.id", id)))
	defer span.End()

	exists, err := s.repo.Exists(ctx, id)
	if err != nil {
		return nil, s.fail(span, fmt.Errorf("failed to check patient id: %w", err))
	}
	if exists {
		return nil, s.fail(span, ErrDuplicateID)
	}

	if !IsValidContact(form.Contact) {
		return nil, s.fail(span, ErrInvalidContact)
	}
	if form.EmergencyContact != "" && !IsValidContact(form.EmergencyContact) {
		return nil, s.fail(span, ErrInvalidEmergencyContact)
	}

	age, err := AgeAt(form.DOB, s.now())
	if err != nil {
		return nil, s.fail(span, err)
	}

	p := &Patient{
		ID:               id,
		Name:             form.Name,
		DOB:              form.DOB,
		Age:              age,
		Gender:           form.Gender,
		Contact:          form.Contact,
		Address:          form.Address,
		EmergencyContact: form.EmergencyContact,
		BloodGroup:       form.BloodGroup,
		Diagnosis:        form.Diagnosis,
		AdmitDate:        form.AdmitDate,
		DischargeDate:    form.DischargeDate,
	}
	if err := checkLengths(recordLimits(p)); err != nil {
		return nil, s.fail(span, err)
	}

	stored, err := s.storeReport(ctx, id, report)
	if err != nil {
		return nil, s.fail(span, err)
	}
	p.ReportFile = stored

	created, err := s.repo.CreatePatient(ctx, p)
	if err != nil {
		// A racing insert that lost on the primary key shares the file name
		// with the winner, so the file stays.
		if stored != nil && !errors.Is(err, ErrDuplicateID) {
			s.removeReport(ctx, *stored)
		}
		return nil, s.fail(span, err)
	}

	s.record(ctx, "create")
	s.log.Info("patient created", zap.String("patient_id", created.ID), zap.Bool("has_report", created.ReportFile != nil))

	s.publish(ctx, messaging.EventPatientCreated, messaging.PatientCreatedEvent{
		BaseEvent: messaging.NewBaseEvent(messaging.EventPatientCreated),
		Data:      recordData(created),
	})

	return created, nil
}

func (s *Service) GetPatient(ctx context.Context, id string) (*Patient, error) {
	ctx, span := s.tracer.Start(ctx, "patient.GetPatient", trace.WithAttributes(attribute.String("patient.id", id)))
	defer span.End()

	p, err := s.repo.GetPatient(ctx, id)
	if err != nil {
		return nil, s.fail(span, err)
	}

	s.record(ctx, "get")
	return p, nil
}

// ListPatients returns every record in insertion order.
func (s *Service) ListPatients(ctx context.Context) ([]Patient, error) {
	ctx, span := s.tracer.Start(ctx, "patient.ListPatients")
	defer span.End()

	patients, err := s.repo.ListPatients(ctx)
	if err != nil {
		return nil, s.fail(span, fmt.Errorf("failed to list patients: %w", err))
	}

	s.record(ctx, "list")
	return patients, nil
}

func (s *Service) ListPatientsWithPagination(ctx context.Context, params pagination.Params) (*PaginatedPatientListResponse, error) {
	ctx, span := s.tracer.Start(ctx, "patient.ListPatientsWithPagination")
	defer span.End()

	params.Validate()

	patients, total, err := s.repo.ListPatientsWithPagination(ctx, params.Limit, params.CalculateOffset())
	if err != nil {
		return nil, s.fail(span, fmt.Errorf("failed to list patients: %w", err))
	}

	s.record(ctx, "list")
	return &PaginatedPatientListResponse{
		Success:    true,
		Patients:   patients,
		Pagination: params.CalculateMeta(total),
	}, nil
}

// SearchPatients trims query and matches it against identifiers and contact
// numbers. A blank query matches nothing.
func (s *Service) SearchPatients(ctx context.Context, query string) ([]Patient, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []Patient{}, nil
	}

	ctx, span := s.tracer.Start(ctx, "patient.SearchPatients")
	defer span.End()

	patients, err := s.repo.SearchPatients(ctx, query)
	if err != nil {
		return nil, s.fail(span, fmt.Errorf("failed to search patients: %w", err))
	}

	s.record(ctx, "search")
	return patients, nil
}

// UpdatePatient overwrites every editable field. Contacts are not
// re-validated and age is taken as given. The identifier never changes.
func (s *Service) UpdatePatient(ctx context.Context, id string, form PatientUpdateForm, report *ReportUpload) (*Patient, error) {
	ctx, span := s.tracer.Start(ctx, "patient.UpdatePatient", trace.WithAttributes(attribute.String("patient.id", id)))
	defer span.End()

	p, err := s.repo.GetPatient(ctx, id)
	if err != nil {
		return nil, s.fail(span, err)
	}

	p.Name = form.Name
	p.DOB = form.DOB
	p.Age = form.Age
	p.Gender = form.Gender
	p.Contact = form.Contact
	p.Address = form.Address
	p.EmergencyContact = form.EmergencyContact
	p.BloodGroup = form.BloodGroup
	p.Diagnosis = form.Diagnosis
	p.AdmitDate = form.AdmitDate
	p.DischargeDate = form.DischargeDate
	if err := checkLengths(recordLimits(p)); err != nil {
		return nil, s.fail(span, err)
	}

	stored, err := s.storeReport(ctx, p.ID, report)
	if err != nil {
		return nil, s.fail(span, err)
	}
	if stored != nil {
		p.ReportFile = stored
	}

	updated, err := s.repo.UpdatePatient(ctx, p)
	if err != nil {
		return nil, s.fail(span, err)
	}

	s.record(ctx, "update")
	s.log.Info("patient updated", zap.String("patient_id", updated.ID))

	s.publish(ctx, messaging.EventPatientUpdated, messaging.PatientUpdatedEvent{
		BaseEvent: messaging.NewBaseEvent(messaging.EventPatientUpdated),
		Data:      recordData(updated),
	})

	return updated, nil
}

// DeletePatient removes the record and, best effort, its report file.
func (s *Service) DeletePatient(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "patient.DeletePatient", trace.WithAttributes(attribute.String("patient.id", id)))
	defer span.End()

	p, err := s.repo.GetPatient(ctx, id)
	if err != nil {
		return s.fail(span, err)
	}

	removed := false
	if p.ReportFile != nil {
		removed = s.removeReport(ctx, *p.ReportFile)
	}

	if err := s.repo.DeletePatient(ctx, id); err != nil {
		return s.fail(span, err)
	}

	s.record(ctx, "delete")
	s.log.Info("patient deleted", zap.String("patient_id", id), zap.Bool("report_removed", removed))

	s.publish(ctx, messaging.EventPatientDeleted, messaging.PatientDeletedEvent{
		BaseEvent: messaging.NewBaseEvent(messaging.EventPatientDeleted),
		Data: messaging.PatientDeletedData{
			PatientID:     id,
			ReportRemoved: removed,
			DeletedAt:     s.now().UTC(),
		},
	})

	return nil
}

// OpenReport returns the stored report named filename. The caller closes it.
func (s *Service) OpenReport(ctx context.Context, filename string) (reports.File, error) {
	ctx, span := s.tracer.Start(ctx, "patient.OpenReport", trace.WithAttributes(attribute.String("report.file", filename)))
	defer span.End()

	f, err := s.reports.Open(ctx, filename)
	if err != nil {
		return nil, s.fail(span, err)
	}

	if s.metrics != nil {
		s.metrics.RecordReportOperation(ctx, "served")
	}
	return f, nil
}

// storeReport saves report under the patient's report name if it is a PDF.
// It returns the stored name, or nil when nothing was stored.
func (s *Service) storeReport(ctx context.Context, id string, report *ReportUpload) (*string, error) {
	if report == nil || report.Content == nil || !reports.IsPDF(report.Filename) {
		return nil, nil
	}

	name := reports.ReportFilename(id)
	n, err := s.reports.Save(ctx, name, report.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to store report: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordReportOperation(ctx, "stored")
	}
	s.log.Debug("report stored", zap.String("patient_id", id), zap.String("file", name), zap.Int64("bytes", n))

	return &name, nil
}

func (s *Service) removeReport(ctx context.Context, name string) bool {
	err := s.reports.Delete(ctx, name)
	switch {
	case err == nil:
		if s.metrics != nil {
			s.metrics.RecordReportOperation(ctx, "deleted")
		}
		return true
	case errors.Is(err, reports.ErrReportNotFound):
		return false
	default:
		s.log.Warn("failed to remove report file", zap.String("file", name), zap.Error(err))
		return false
	}
}

func (s *Service) publish(ctx context.Context, routingKey string, event interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, routingKey, event); err != nil {
		s.log.Warn("failed to publish event", zap.String("routing_key", routingKey), zap.Error(err))
	}
}

func (s *Service) record(ctx context.Context, operation string) {
	if s.metrics != nil {
		s.metrics.RecordPatientOperation(ctx, operation)
	}
}

func (s *Service) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func recordData(p *Patient) messaging.PatientRecordData {
	return messaging.PatientRecordData{
		PatientID:     p.ID,
		Name:          p.Name,
		DateOfBirth:   p.DOB,
		Age:           p.Age,
		Diagnosis:     p.Diagnosis,
		AdmitDate:     p.AdmitDate,
		DischargeDate: p.DischargeDate,
		HasReport:     p.ReportFile != nil,
	}
}

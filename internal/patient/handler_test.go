package patient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/WailSalutem-Health-Care/patient-registry-service/internal/pagination"
	"github.com/WailSalutem-Health-Care/patient-registry-service/internal/reports"
	"github.com/WailSalutem-Health-Care/patient-registry-service/internal/testutil"
)

// mockService implements ServiceInterface for testing
type mockService struct {
	createPatientFunc              func(ctx context.Context, form PatientForm, report *ReportUpload) (*Patient, error)
	getPatientFunc                 func(ctx context.Context, id string) (*Patient, error)
	listPatientsFunc               func(ctx context.Context) ([]Patient, error)
	listPatientsWithPaginationFunc func(ctx context.Context, params pagination.Params) (*PaginatedPatientListResponse, error)
	searchPatientsFunc             func(ctx context.Context, query string) ([]Patient, error)
	updatePatientFunc              func(ctx context.Context, id string, form PatientUpdateForm, report *ReportUpload) (*Patient, error)
	deletePatientFunc              func(ctx context.Context, id string) error
	openReportFunc                 func(ctx context.Context, filename string) (reports.File, error)
}

func (m *mockService) CreatePatient(ctx context.Context, form PatientForm, report *ReportUpload) (*Patient, error) {
	if m.createPatientFunc != nil {
		return m.createPatientFunc(ctx, form, report)
	}
	return nil, errors.New("not implemented")
}

func (m *mockService) GetPatient(ctx context.Context, id string) (*Patient, error) {
	if m.getPatientFunc != nil {
		return m.getPatientFunc(ctx, id)
	}
	return nil, errors.New("not implemented")
}

func (m *mockService) ListPatients(ctx context.Context) ([]Patient, error) {
	if m.listPatientsFunc != nil {
		return m.listPatientsFunc(ctx)
	}
	return nil, errors.New("not implemented")
}

func (m *mockService) ListPatientsWithPagination(ctx context.Context, params pagination.Params) (*PaginatedPatientListResponse, error) {
	if m.listPatientsWithPaginationFunc != nil {
		return m.listPatientsWithPaginationFunc(ctx, params)
	}
	return nil, errors.New("not implemented")
}

func (m *mockService) SearchPatients(ctx context.Context, query string) ([]Patient, error) {
	if m.searchPatientsFunc != nil {
		return m.searchPatientsFunc(ctx, query)
	}
	return nil, errors.New("not implemented")
}

func (m *mockService) UpdatePatient(ctx context.Context, id string, form PatientUpdateForm, report *ReportUpload) (*Patient, error) {
	if m.updatePatientFunc != nil {
		return m.updatePatientFunc(ctx, id, form, report)
	}
	return nil, errors.New("not implemented")
}

func (m *mockService) DeletePatient(ctx context.Context, id string) error {
	if m.deletePatientFunc != nil {
		return m.deletePatientFunc(ctx, id)
	}
	return errors.New("not implemented")
}

func (m *mockService) OpenReport(ctx context.Context, filename string) (reports.File, error) {
	if m.openReportFunc != nil {
		return m.openReportFunc(ctx, filename)
	}
	return nil, errors.New("not implemented")
}

const testUploadLimit = 1 << 20

func newTestHandler(svc ServiceInterface) *Handler {
	return NewHandler(svc, testUploadLimit, zap.NewNop())
}

func intakeForm() map[string]string {
	return map[string]string{
		"name":      "John",
		"dob":       "1990-05-01",
		"gender":    "Male",
		"contact":   "1234567890",
		"address":   "12 Elm Street",
		"emergency": "",
		"blood":     "O+",
		"diagnosis": "Flu",
		"admit":     "2025-05-30",
		"discharge": "",
	}
}

func existingPatient(ctx context.Context, id string) (*Patient, error) {
	return &Patient{ID: id}, nil
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	return body
}

func TestHandler_CreatePatient_Success(t *testing.T) {
	var gotForm PatientForm
	var gotReport *ReportUpload

	svc := &mockService{
		createPatientFunc: func(ctx context.Context, form PatientForm, report *ReportUpload) (*Patient, error) {
			gotForm = form
			gotReport = report
			return &Patient{ID: "JOHN1990", Name: form.Name, Age: 35}, nil
		},
	}
	handler := newTestHandler(svc)

	req := testutil.NewMultipartRequest(t, http.MethodPost, "/patients", intakeForm(), nil)
	rec := httptest.NewRecorder()
	handler.CreatePatient(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp PatientSuccessResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !resp.Success || resp.Message != "Patient added successfully!" {
		t.Errorf("Unexpected response: %+v", resp)
	}
	if resp.Patient == nil || resp.Patient.ID != "JOHN1990" {
		t.Errorf("Expected patient JOHN1990 in response, got %+v", resp.Patient)
	}
	if gotForm.Contact != "1234567890" || gotForm.BloodGroup != "O+" || gotForm.AdmitDate != "2025-05-30" {
		t.Errorf("Form fields not mapped: %+v", gotForm)
	}
	if gotReport != nil {
		t.Errorf("Expected no report upload, got %+v", gotReport)
	}
}

func TestHandler_CreatePatient_WithReport(t *testing.T) {
	var gotName, gotContent string

	svc := &mockService{
		createPatientFunc: func(ctx context.Context, form PatientForm, report *ReportUpload) (*Patient, error) {
			if report == nil {
				t.Fatal("Expected report upload, got nil")
			}
			gotName = report.Filename
			b, err := io.ReadAll(report.Content)
			if err != nil {
				t.Fatalf("Failed to read upload: %v", err)
			}
			gotContent = string(b)
			return &Patient{ID: "JOHN1990"}, nil
		},
	}
	handler := newTestHandler(svc)

	req := testutil.NewMultipartRequest(t, http.MethodPost, "/patients", intakeForm(), &testutil.FormFile{
		Field:    "report",
		Filename: "scan.pdf",
		Content:  []byte("%PDF-1.4 test"),
	})
	rec := httptest.NewRecorder()
	handler.CreatePatient(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotName != "scan.pdf" || gotContent != "%PDF-1.4 test" {
		t.Errorf("Unexpected upload: %q %q", gotName, gotContent)
	}
}

func TestHandler_CreatePatient_MissingField(t *testing.T) {
	called := false
	svc := &mockService{
		createPatientFunc: func(ctx context.Context, form PatientForm, report *ReportUpload) (*Patient, error) {
			called = true
			return nil, nil
		},
	}
	handler := newTestHandler(svc)

	fields := intakeForm()
	delete(fields, "blood")

	req := testutil.NewMultipartRequest(t, http.MethodPost, "/patients", fields, nil)
	rec := httptest.NewRecorder()
	handler.CreatePatient(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
	if called {
		t.Error("Expected service not to be called")
	}
	if body := decodeError(t, rec); body["message"] != "Missing form field: blood" {
		t.Errorf("Unexpected message: %v", body["message"])
	}
}

func TestHandler_CreatePatient_URLEncodedForm(t *testing.T) {
	svc := &mockService{
		createPatientFunc: func(ctx context.Context, form PatientForm, report *ReportUpload) (*Patient, error) {
			if report != nil {
				t.Error("Expected no report for url-encoded form")
			}
			return &Patient{ID: "JOHN1990"}, nil
		},
	}
	handler := newTestHandler(svc)

	values := url.Values{}
	for k, v := range intakeForm() {
		values.Set(k, v)
	}
	req := httptest.NewRequest(http.MethodPost, "/patients", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	handler.CreatePatient(rec, req)

	if rec.Code != http.StatusCreated {
		t.Errorf("Expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandler_CreatePatient_ServiceErrors(t *testing.T) {
	testCases := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"duplicate", ErrDuplicateID, http.StatusConflict, "Patient with this ID already exists."},
		{"contact", ErrInvalidContact, http.StatusBadRequest, "Contact number must be 10 digits."},
		{"emergency", ErrInvalidEmergencyContact, http.StatusBadRequest, "Emergency contact must be 10 digits if provided."},
		{"dob", ErrInvalidDOB, http.StatusBadRequest, "Date of birth must be in YYYY-MM-DD format."},
		{"field width", &FieldTooLongError{Field: "Blood group", Max: 5}, http.StatusBadRequest, "Blood group must be at most 5 characters."},
		{"column width", ErrFieldTooLong, http.StatusBadRequest, "A field value is too long."},
		{"internal", errors.New("disk full"), http.StatusInternalServerError, "disk full"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockService{
				createPatientFunc: func(ctx context.Context, form PatientForm, report *ReportUpload) (*Patient, error) {
					return nil, tc.err
				},
			}
			handler := newTestHandler(svc)

			req := testutil.NewMultipartRequest(t, http.MethodPost, "/patients", intakeForm(), nil)
			rec := httptest.NewRecorder()
			handler.CreatePatient(rec, req)

			if rec.Code != tc.wantStatus {
				t.Errorf("Expected status %d, got %d", tc.wantStatus, rec.Code)
			}
			if body := decodeError(t, rec); body["message"] != tc.wantMsg {
				t.Errorf("Expected message %q, got %v", tc.wantMsg, body["message"])
			}
		})
	}
}

func TestHandler_CreatePatient_PayloadTooLarge(t *testing.T) {
	handler := NewHandler(&mockService{}, 1024, zap.NewNop())

	fields := intakeForm()
	fields["address"] = strings.Repeat("a", 64*1024)

	req := testutil.NewMultipartRequest(t, http.MethodPost, "/patients", fields, nil)
	rec := httptest.NewRecorder()
	handler.CreatePatient(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("Expected status 413, got %d", rec.Code)
	}
}

func TestHandler_ListPatients_All(t *testing.T) {
	svc := &mockService{
		listPatientsFunc: func(ctx context.Context) ([]Patient, error) {
			return []Patient{{ID: "JOHN1990"}, {ID: "MARI2001"}}, nil
		},
		listPatientsWithPaginationFunc: func(ctx context.Context, params pagination.Params) (*PaginatedPatientListResponse, error) {
			t.Error("Expected unpaginated listing")
			return nil, nil
		},
	}
	handler := newTestHandler(svc)

	rec := httptest.NewRecorder()
	handler.ListPatients(rec, httptest.NewRequest(http.MethodGet, "/patients", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var resp PatientListResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Total != 2 || resp.Patients[0].ID != "JOHN1990" {
		t.Errorf("Unexpected response: %+v", resp)
	}
}

func TestHandler_ListPatients_Paginated(t *testing.T) {
	var gotParams pagination.Params
	svc := &mockService{
		listPatientsWithPaginationFunc: func(ctx context.Context, params pagination.Params) (*PaginatedPatientListResponse, error) {
			gotParams = params
			return &PaginatedPatientListResponse{
				Success:    true,
				Patients:   []Patient{{ID: "MARI2001"}},
				Pagination: params.CalculateMeta(3),
			}, nil
		},
	}
	handler := newTestHandler(svc)

	rec := httptest.NewRecorder()
	handler.ListPatients(rec, httptest.NewRequest(http.MethodGet, "/patients?page=2&limit=2", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	if gotParams.Page != 2 || gotParams.Limit != 2 {
		t.Errorf("Expected page 2 limit 2, got %+v", gotParams)
	}

	var resp PaginatedPatientListResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Pagination.TotalRecords != 3 || len(resp.Patients) != 1 {
		t.Errorf("Unexpected response: %+v", resp)
	}
}

func TestHandler_SearchPatients(t *testing.T) {
	var gotQuery string
	svc := &mockService{
		searchPatientsFunc: func(ctx context.Context, query string) ([]Patient, error) {
			gotQuery = query
			return []Patient{{ID: "JOHN1990"}}, nil
		},
	}
	handler := newTestHandler(svc)

	rec := httptest.NewRecorder()
	handler.SearchPatients(rec, httptest.NewRequest(http.MethodGet, "/patients/search?q=john", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	if gotQuery != "john" {
		t.Errorf("Expected query 'john', got %q", gotQuery)
	}

	var resp PatientListResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Total != 1 {
		t.Errorf("Expected 1 match, got %d", resp.Total)
	}
}

func TestHandler_GetPatient_NotFound(t *testing.T) {
	svc := &mockService{
		getPatientFunc: func(ctx context.Context, id string) (*Patient, error) {
			return nil, ErrNotFound
		},
	}
	handler := newTestHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/patients/NOPE2000", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "NOPE2000"})
	rec := httptest.NewRecorder()
	handler.GetPatient(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
	if body := decodeError(t, rec); body["message"] != "Patient not found." {
		t.Errorf("Unexpected message: %v", body["message"])
	}
}

func TestHandler_GetPatient_Success(t *testing.T) {
	svc := &mockService{
		getPatientFunc: func(ctx context.Context, id string) (*Patient, error) {
			return &Patient{ID: id, Name: "John"}, nil
		},
	}
	handler := newTestHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/patients/JOHN1990", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "JOHN1990"})
	rec := httptest.NewRecorder()
	handler.GetPatient(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var resp PatientSuccessResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Patient == nil || resp.Patient.ID != "JOHN1990" {
		t.Errorf("Unexpected patient: %+v", resp.Patient)
	}
}

func TestHandler_UpdatePatient_Success(t *testing.T) {
	var gotID string
	var gotForm PatientUpdateForm

	svc := &mockService{
		getPatientFunc: existingPatient,
		updatePatientFunc: func(ctx context.Context, id string, form PatientUpdateForm, report *ReportUpload) (*Patient, error) {
			gotID = id
			gotForm = form
			return &Patient{ID: id, Name: form.Name, Age: form.Age}, nil
		},
	}
	handler := newTestHandler(svc)

	fields := intakeForm()
	fields["name"] = "Johnny"
	fields["age"] = "36"

	req := testutil.NewMultipartRequest(t, http.MethodPut, "/patients/JOHN1990", fields, nil)
	req = mux.SetURLVars(req, map[string]string{"id": "JOHN1990"})
	rec := httptest.NewRecorder()
	handler.UpdatePatient(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotID != "JOHN1990" || gotForm.Name != "Johnny" || gotForm.Age != 36 {
		t.Errorf("Unexpected update call: id=%s form=%+v", gotID, gotForm)
	}

	var resp PatientSuccessResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Message != "Patient updated successfully." {
		t.Errorf("Unexpected message: %s", resp.Message)
	}
}

func TestHandler_UpdatePatient_InvalidAge(t *testing.T) {
	handler := newTestHandler(&mockService{getPatientFunc: existingPatient})

	fields := intakeForm()
	fields["age"] = "thirty"

	req := testutil.NewMultipartRequest(t, http.MethodPut, "/patients/JOHN1990", fields, nil)
	req = mux.SetURLVars(req, map[string]string{"id": "JOHN1990"})
	rec := httptest.NewRecorder()
	handler.UpdatePatient(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestHandler_UpdatePatient_MissingAge(t *testing.T) {
	handler := newTestHandler(&mockService{getPatientFunc: existingPatient})

	req := testutil.NewMultipartRequest(t, http.MethodPut, "/patients/JOHN1990", intakeForm(), nil)
	req = mux.SetURLVars(req, map[string]string{"id": "JOHN1990"})
	rec := httptest.NewRecorder()
	handler.UpdatePatient(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
	if body := decodeError(t, rec); body["message"] != "Missing form field: age" {
		t.Errorf("Unexpected message: %v", body["message"])
	}
}

func TestHandler_UpdatePatient_UnknownIDBeforeFormChecks(t *testing.T) {
	called := false
	svc := &mockService{
		getPatientFunc: func(ctx context.Context, id string) (*Patient, error) {
			return nil, ErrNotFound
		},
		updatePatientFunc: func(ctx context.Context, id string, form PatientUpdateForm, report *ReportUpload) (*Patient, error) {
			called = true
			return nil, nil
		},
	}
	handler := newTestHandler(svc)

	testCases := map[string]func(map[string]string){
		"missing age": func(f map[string]string) {},
		"bad age":     func(f map[string]string) { f["age"] = "thirty" },
	}

	for name, mutate := range testCases {
		t.Run(name, func(t *testing.T) {
			fields := intakeForm()
			mutate(fields)

			req := testutil.NewMultipartRequest(t, http.MethodPut, "/patients/NOPE2000", fields, nil)
			req = mux.SetURLVars(req, map[string]string{"id": "NOPE2000"})
			rec := httptest.NewRecorder()
			handler.UpdatePatient(rec, req)

			if rec.Code != http.StatusNotFound {
				t.Errorf("Expected status 404, got %d", rec.Code)
			}
			if body := decodeError(t, rec); body["message"] != "Patient not found." {
				t.Errorf("Unexpected message: %v", body["message"])
			}
		})
	}

	if called {
		t.Error("Expected update not to be attempted")
	}
}

func TestHandler_UpdatePatient_FieldTooLong(t *testing.T) {
	svc := &mockService{
		getPatientFunc: existingPatient,
		updatePatientFunc: func(ctx context.Context, id string, form PatientUpdateForm, report *ReportUpload) (*Patient, error) {
			return nil, &FieldTooLongError{Field: "Gender", Max: 10}
		},
	}
	handler := newTestHandler(svc)

	fields := intakeForm()
	fields["age"] = "35"
	fields["gender"] = "Not specified"

	req := testutil.NewMultipartRequest(t, http.MethodPut, "/patients/JOHN1990", fields, nil)
	req = mux.SetURLVars(req, map[string]string{"id": "JOHN1990"})
	rec := httptest.NewRecorder()
	handler.UpdatePatient(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
	body := decodeError(t, rec)
	if body["error"] != "validation_error" || body["message"] != "Gender must be at most 10 characters." {
		t.Errorf("Unexpected error body: %v", body)
	}
}

func TestHandler_DeletePatient(t *testing.T) {
	var deleted string
	svc := &mockService{
		deletePatientFunc: func(ctx context.Context, id string) error {
			deleted = id
			return nil
		},
	}
	handler := newTestHandler(svc)

	req := httptest.NewRequest(http.MethodDelete, "/patients/JOHN1990", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "JOHN1990"})
	rec := httptest.NewRecorder()
	handler.DeletePatient(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	if deleted != "JOHN1990" {
		t.Errorf("Expected JOHN1990 to be deleted, got %q", deleted)
	}
	if body := decodeError(t, rec); body["message"] != "Patient deleted successfully." {
		t.Errorf("Unexpected message: %v", body["message"])
	}
}

func TestHandler_DeletePatient_NotFound(t *testing.T) {
	svc := &mockService{
		deletePatientFunc: func(ctx context.Context, id string) error {
			return ErrNotFound
		},
	}
	handler := newTestHandler(svc)

	req := httptest.NewRequest(http.MethodDelete, "/patients/NOPE2000", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "NOPE2000"})
	rec := httptest.NewRecorder()
	handler.DeletePatient(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}

func TestHandler_GetReport(t *testing.T) {
	store, err := reports.NewDiskStore(afero.NewMemMapFs(), "/reports", zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to create report store: %v", err)
	}
	content := "%PDF-1.4\n%test report\n"
	if _, err := store.Save(context.Background(), "JOHN1990_report.pdf", strings.NewReader(content)); err != nil {
		t.Fatalf("Failed to seed report: %v", err)
	}

	svc := &mockService{
		openReportFunc: func(ctx context.Context, filename string) (reports.File, error) {
			return store.Open(ctx, filename)
		},
	}
	handler := newTestHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/reports/JOHN1990_report.pdf", nil)
	req = mux.SetURLVars(req, map[string]string{"filename": "JOHN1990_report.pdf"})
	rec := httptest.NewRecorder()
	handler.GetReport(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Expected Content-Type application/pdf, got %s", ct)
	}
	if rec.Body.String() != content {
		t.Errorf("Unexpected body: %q", rec.Body.String())
	}
}

func TestHandler_GetReport_NotFound(t *testing.T) {
	svc := &mockService{
		openReportFunc: func(ctx context.Context, filename string) (reports.File, error) {
			return nil, reports.ErrReportNotFound
		},
	}
	handler := newTestHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/reports/missing.pdf", nil)
	req = mux.SetURLVars(req, map[string]string{"filename": "missing.pdf"})
	rec := httptest.NewRecorder()
	handler.GetReport(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
	if body := decodeError(t, rec); body["message"] != "Report not found." {
		t.Errorf("Unexpected message: %v", body["message"])
	}
}

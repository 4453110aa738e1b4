package patient

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/WailSalutem-Health-Care/patient-registry-service/internal/pagination"
	"github.com/WailSalutem-Health-Care/patient-registry-service/internal/reports"
)

// Form field names of the intake and edit forms.
const (
	fieldName      = "name"
	fieldDOB       = "dob"
	fieldAge       = "age"
	fieldGender    = "gender"
	fieldContact   = "contact"
	fieldAddress   = "address"
	fieldEmergency = "emergency"
	fieldBlood     = "blood"
	fieldDiagnosis = "diagnosis"
	fieldAdmit     = "admit"
	fieldDischarge = "discharge"
	fieldReport    = "report"
)

var intakeFields = []string{
	fieldName, fieldDOB, fieldGender, fieldContact, fieldAddress, fieldEmergency,
	fieldBlood, fieldDiagnosis, fieldAdmit, fieldDischarge,
}

type Handler struct {
	service        ServiceInterface
	maxUploadBytes int64
	log            *zap.Logger
}

func NewHandler(service ServiceInterface, maxUploadBytes int64, log *zap.Logger) *Handler {
	return &Handler{
		service:        service,
		maxUploadBytes: maxUploadBytes,
		log:            log,
	}
}

type PatientSuccessResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Patient *Patient `json:"patient,omitempty"`
}

type PatientListResponse struct {
	Success  bool      `json:"success"`
	Patients []Patient `json:"patients"`
	Total    int       `json:"total"`
}

func (h *Handler) CreatePatient(w http.ResponseWriter, r *http.Request) {
	form, ok := h.parseForm(w, r)
	if !ok {
		return
	}
	defer cleanupForm(r)

	if missing := missingField(form, intakeFields); missing != "" {
		respondError(w, http.StatusBadRequest, "validation_error", "Missing form field: "+missing)
		return
	}

	report, closeReport, err := reportUpload(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid report upload: "+err.Error())
		return
	}
	defer closeReport()

	patient, err := h.service.CreatePatient(r.Context(), PatientForm{
		Name:             form.Get(fieldName),
		DOB:              form.Get(fieldDOB),
		Gender:           form.Get(fieldGender),
		Contact:          form.Get(fieldContact),
		Address:          form.Get(fieldAddress),
		EmergencyContact: form.Get(fieldEmergency),
		BloodGroup:       form.Get(fieldBlood),
		Diagnosis:        form.Get(fieldDiagnosis),
		AdmitDate:        form.Get(fieldAdmit),
		DischargeDate:    form.Get(fieldDischarge),
	}, report)
	if err != nil {
		h.respondServiceError(w, "creation_failed", err)
		return
	}

	respondJSON(w, http.StatusCreated, PatientSuccessResponse{
		Success: true,
		Message: "Patient added successfully!",
		Patient: patient,
	})
}

// ListPatients returns every record, or one page of them when page or limit
// is present in the query string.
func (h *Handler) ListPatients(w http.ResponseWriter, r *http.Request) {
	if pagination.Requested(r) {
		response, err := h.service.ListPatientsWithPagination(r.Context(), pagination.ParseParams(r))
		if err != nil {
			h.respondServiceError(w, "fetch_failed", err)
			return
		}
		respondJSON(w, http.StatusOK, response)
		return
	}

	patients, err := h.service.ListPatients(r.Context())
	if err != nil {
		h.respondServiceError(w, "fetch_failed", err)
		return
	}

	respondJSON(w, http.StatusOK, PatientListResponse{
		Success:  true,
		Patients: patients,
		Total:    len(patients),
	})
}

func (h *Handler) SearchPatients(w http.ResponseWriter, r *http.Request) {
	patients, err := h.service.SearchPatients(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.respondServiceError(w, "search_failed", err)
		return
	}

	respondJSON(w, http.StatusOK, PatientListResponse{
		Success:  true,
		Patients: patients,
		Total:    len(patients),
	})
}

func (h *Handler) GetPatient(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	patient, err := h.service.GetPatient(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, "fetch_failed", err)
		return
	}

	respondJSON(w, http.StatusOK, PatientSuccessResponse{
		Success: true,
		Message: "Patient retrieved successfully",
		Patient: patient,
	})
}

// UpdatePatient answers an unknown id with 404 before the form is read.
func (h *Handler) UpdatePatient(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if _, err := h.service.GetPatient(r.Context(), id); err != nil {
		h.respondServiceError(w, "update_failed", err)
		return
	}

	form, ok := h.parseForm(w, r)
	if !ok {
		return
	}
	defer cleanupForm(r)

	if missing := missingField(form, append([]string{fieldAge}, intakeFields...)); missing != "" {
		respondError(w, http.StatusBadRequest, "validation_error", "Missing form field: "+missing)
		return
	}

	age, err := ParseAge(form.Get(fieldAge))
	if err != nil {
		h.respondServiceError(w, "update_failed", err)
		return
	}

	report, closeReport, err := reportUpload(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid report upload: "+err.Error())
		return
	}
	defer closeReport()

	patient, err := h.service.UpdatePatient(r.Context(), id, PatientUpdateForm{
		Name:             form.Get(fieldName),
		DOB:              form.Get(fieldDOB),
		Age:              age,
		Gender:           form.Get(fieldGender),
		Contact:          form.Get(fieldContact),
		Address:          form.Get(fieldAddress),
		EmergencyContact: form.Get(fieldEmergency),
		BloodGroup:       form.Get(fieldBlood),
		Diagnosis:        form.Get(fieldDiagnosis),
		AdmitDate:        form.Get(fieldAdmit),
		DischargeDate:    form.Get(fieldDischarge),
	}, report)
	if err != nil {
		h.respondServiceError(w, "update_failed", err)
		return
	}

	respondJSON(w, http.StatusOK, PatientSuccessResponse{
		Success: true,
		Message: "Patient updated successfully.",
		Patient: patient,
	})
}

func (h *Handler) DeletePatient(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.service.DeletePatient(r.Context(), id); err != nil {
		h.respondServiceError(w, "deletion_failed", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Patient deleted successfully.",
	})
}

// GetReport streams a stored report with a sniffed Content-Type.
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	filename := mux.Vars(r)["filename"]

	f, err := h.service.OpenReport(r.Context(), filename)
	if err != nil {
		if errors.Is(err, reports.ErrReportNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "Report not found.")
			return
		}
		h.respondServiceError(w, "fetch_failed", err)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		h.respondServiceError(w, "fetch_failed", err)
		return
	}

	mtype, err := mimetype.DetectReader(f)
	if err != nil {
		h.respondServiceError(w, "fetch_failed", err)
		return
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		h.respondServiceError(w, "fetch_failed", err)
		return
	}

	w.Header().Set("Content-Type", mtype.String())
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

// parseForm reads a multipart or url-encoded body of at most maxUploadBytes.
func (h *Handler) parseForm(w http.ResponseWriter, r *http.Request) (url.Values, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	err := r.ParseMultipartForm(h.maxUploadBytes)
	if err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || errors.Is(err, multipart.ErrMessageTooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, "payload_too_large", "Request body exceeds the upload limit")
			return nil, false
		}
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid form payload: "+err.Error())
		return nil, false
	}

	return r.PostForm, true
}

// missingField returns the first name absent from form. Present but empty
// values count as supplied.
func missingField(form url.Values, names []string) string {
	for _, name := range names {
		if !form.Has(name) {
			return name
		}
	}
	return ""
}

// reportUpload returns the uploaded report, or nil when none was sent.
func reportUpload(r *http.Request) (*ReportUpload, func(), error) {
	if r.MultipartForm == nil {
		return nil, func() {}, nil
	}

	file, header, err := r.FormFile(fieldReport)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, func() {}, err
	}

	return &ReportUpload{Filename: header.Filename, Content: file}, func() { file.Close() }, nil
}

func cleanupForm(r *http.Request) {
	if r.MultipartForm != nil {
		_ = r.MultipartForm.RemoveAll()
	}
}

func (h *Handler) respondServiceError(w http.ResponseWriter, fallbackType string, err error) {
	switch {
	case errors.Is(err, ErrDuplicateID):
		respondError(w, http.StatusConflict, "duplicate_id", "Patient with this ID already exists.")
	case errors.Is(err, ErrInvalidContact):
		respondError(w, http.StatusBadRequest, "validation_error", "Contact number must be 10 digits.")
	case errors.Is(err, ErrInvalidEmergencyContact):
		respondError(w, http.StatusBadRequest, "validation_error", "Emergency contact must be 10 digits if provided.")
	case errors.Is(err, ErrInvalidDOB):
		respondError(w, http.StatusBadRequest, "validation_error", "Date of birth must be in YYYY-MM-DD format.")
	case errors.Is(err, ErrInvalidAge):
		respondError(w, http.StatusBadRequest, "validation_error", "Age must be a whole number.")
	case errors.Is(err, ErrFieldTooLong):
		msg := "A field value is too long."
		var tooLong *FieldTooLongError
		if errors.As(err, &tooLong) {
			msg = tooLong.Error() + "."
		}
		respondError(w, http.StatusBadRequest, "validation_error", msg)
	case errors.Is(err, ErrNotFound):
		respondError(w, http.StatusNotFound, "not_found", "Patient not found.")
	default:
		h.log.Error("patient request failed", zap.String("error_type", fallbackType), zap.Error(err))
		respondError(w, http.StatusInternalServerError, fallbackType, err.Error())
	}
}

func respondJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, statusCode int, errorType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":   errorType,
		"message": message,
	})
}

package patient

import (
	"io"
	"time"

	"github.com/WailSalutem-Health-Care/patient-registry-service/internal/pagination"
)

// Patient is a stored patient record.
type Patient struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	DOB              string    `json:"dob"` // Format: YYYY-MM-DD
	Age              int       `json:"age"`
	Gender           string    `json:"gender"`
	Contact          string    `json:"contact"`
	Address          string    `json:"address"`
	EmergencyContact string    `json:"emergency_contact"`
	BloodGroup       string    `json:"blood_group"`
	Diagnosis        string    `json:"diagnosis"`
	AdmitDate        string    `json:"admit_date"`
	DischargeDate    string    `json:"discharge_date"`
	ReportFile       *string   `json:"report_file,omitempty"`
	CreatedAt        time.Time `json:"-"`
}

// PatientForm carries intake data. Age is derived, so it is absent here.
type PatientForm struct {
	Name             string
	DOB              string
	Gender           string
	Contact          string
	Address          string
	EmergencyContact string
	BloodGroup       string
	Diagnosis        string
	AdmitDate        string
	DischargeDate    string
}

// PatientUpdateForm replaces every editable field of an existing record,
// including an explicitly supplied age.
type PatientUpdateForm struct {
	Name             string
	DOB              string
	Age              int
	Gender           string
	Contact          string
	Address          string
	EmergencyContact string
	BloodGroup       string
	Diagnosis        string
	AdmitDate        string
	DischargeDate    string
}

// ReportUpload is a client supplied report file. Filename is the name the
// client sent and is only used to decide whether the file is kept.
type ReportUpload struct {
	Filename string
	Content  io.Reader
}

type PaginatedPatientListResponse struct {
	Success    bool            `json:"success"`
	Patients   []Patient       `json:"patients"`
	Pagination pagination.Meta `json:"pagination"`
}

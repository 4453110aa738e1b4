package messaging

import (
	"time"

	"github.com/google/uuid"
)

// Event routing keys
const (
	EventPatientCreated = "patient.created"
	EventPatientUpdated = "patient.updated"
	EventPatientDeleted = "patient.deleted"
)

const ServiceName = "patient-registry"

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventType   string    `json:"event_type"`
	EventID     string    `json:"event_id"`
	Timestamp   time.Time `json:"timestamp"`
	ServiceName string    `json:"service_name"`
}

// PatientCreatedEvent is published after a new record is stored.
type PatientCreatedEvent struct {
	BaseEvent
	Data PatientRecordData `json:"data"`
}

// PatientUpdatedEvent is published after a record is overwritten.
type PatientUpdatedEvent struct {
	BaseEvent
	Data PatientRecordData `json:"data"`
}

type PatientRecordData struct {
	PatientID     string `json:"patient_id"`
	Name          string `json:"name"`
	DateOfBirth   string `json:"date_of_birth"`
	Age           int    `json:"age"`
	Diagnosis     string `json:"diagnosis,omitempty"`
	AdmitDate     string `json:"admit_date,omitempty"`
	DischargeDate string `json:"discharge_date,omitempty"`
	HasReport     bool   `json:"has_report"`
}

// PatientDeletedEvent represents a patient deletion event
type PatientDeletedEvent struct {
	BaseEvent
	Data PatientDeletedData `json:"data"`
}

type PatientDeletedData struct {
	PatientID     string    `json:"patient_id"`
	ReportRemoved bool      `json:"report_removed"`
	DeletedAt     time.Time `json:"deleted_at"`
}

// NewBaseEvent creates a base event with common fields
func NewBaseEvent(eventType string) BaseEvent {
	return BaseEvent{
		EventType:   eventType,
		EventID:     uuid.NewString(),
		Timestamp:   time.Now().UTC(),
		ServiceName: ServiceName,
	}
}

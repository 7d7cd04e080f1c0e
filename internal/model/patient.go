package model

import (
	"time"

	"github.com/google/uuid"
)

// PatientStatus enumerates the admission states a patient record can be
// in. Stored as text; always validate before trusting a value that
// crossed a process boundary.
type PatientStatus string

const (
	PatientStatusOutpatient  PatientStatus = "outpatient"
	PatientStatusInpatient   PatientStatus = "inpatient"
	PatientStatusEmergency   PatientStatus = "emergency"
	PatientStatusDischarged  PatientStatus = "discharged"
	PatientStatusTransferred PatientStatus = "transferred"
)

// Valid reports whether s is one of the known statuses.
func (s PatientStatus) Valid() bool {
	switch s {
	case PatientStatusOutpatient,
		PatientStatusInpatient,
		PatientStatusEmergency,
		PatientStatusDischarged,
		PatientStatusTransferred:
		return true
	default:
		return false
	}
}

// Admitted reports whether the patient currently occupies a bed.
func (s PatientStatus) Admitted() bool {
	return s == PatientStatusInpatient || s == PatientStatusEmergency
}

// Dischargeable reports whether a discharge may be recorded from this
// state. Discharging an outpatient or an already discharged patient is
// a data-entry error, not a transition.
func (s PatientStatus) Dischargeable() bool {
	switch s {
	case PatientStatusInpatient, PatientStatusEmergency, PatientStatusTransferred:
		return true
	default:
		return false
	}
}

// Patient is a clinical record. CreatedBy references the provisioning
// user; personal data fields are mutable only through the gated update
// path.
type Patient struct {
	Base
	Name         string        `json:"name" db:"name"`
	RecordNumber string        `json:"record_number" db:"record_number"`
	Status       PatientStatus `json:"status" db:"status"`
	CreatedBy    uuid.UUID     `json:"created_by" db:"created_by"`

	// Personal data block, gated by its own permission.
	DateOfBirth *time.Time `json:"date_of_birth,omitempty" db:"date_of_birth"`
	IDNumber    *string    `json:"id_number,omitempty" db:"id_number"`
	Address     *string    `json:"address,omitempty" db:"address"`
	Phone       *string    `json:"phone,omitempty" db:"phone"`
}

// UpdatePersonalDataRequest carries the owner-only mutable fields.
type UpdatePersonalDataRequest struct {
	DateOfBirth *time.Time `json:"date_of_birth"`
	IDNumber    *string    `json:"id_number"`
	Address     *string    `json:"address"`
	Phone       *string    `json:"phone"`
}

// ChangeStatusRequest carries a requested admission-state transition.
type ChangeStatusRequest struct {
	Status string `json:"status" binding:"required,patient_status"`
}

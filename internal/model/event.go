package model

import (
	"github.com/google/uuid"
)

// EventType classifies a clinical event entry.
type EventType string

const (
	EventTypeDailyNote          EventType = "daily_note"
	EventTypeSimpleNote         EventType = "simple_note"
	EventTypeHistoryAndPhysical EventType = "history_and_physical"
	EventTypeExamResult         EventType = "exam_result"
	EventTypeDischargeReport    EventType = "discharge_report"
)

// Event is a timestamped clinical entry attached to a patient. The
// creator and CreatedAt pair drive the edit/delete time window, so
// CreatedAt is always stamped from server time in UTC.
type Event struct {
	Base
	PatientID uuid.UUID `json:"patient_id" db:"patient_id"`
	CreatedBy uuid.UUID `json:"created_by" db:"created_by"`
	Type      EventType `json:"type" db:"type"`
	Content   string    `json:"content" db:"content"`
}

// CreateEventRequest represents a new clinical entry.
type CreateEventRequest struct {
	Type    string `json:"type" binding:"required,oneof=daily_note simple_note history_and_physical exam_result discharge_report"`
	Content string `json:"content" binding:"required"`
}

// UpdateEventRequest carries an edit to an existing entry.
type UpdateEventRequest struct {
	Content string `json:"content" binding:"required"`
}

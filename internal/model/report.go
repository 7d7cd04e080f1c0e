package model

import (
	"time"

	"github.com/google/uuid"
)

// ConsistencyIssueKind classifies a finding of the user-population
// consistency report.
type ConsistencyIssueKind string

const (
	IssueMissingProfessionGroup ConsistencyIssueKind = "missing_profession_group"
	IssueForeignProfessionGroup ConsistencyIssueKind = "foreign_profession_group"
	IssueInactiveManager        ConsistencyIssueKind = "inactive_manager"
	IssueUnknownProfession      ConsistencyIssueKind = "unknown_profession"
)

// ConsistencyIssue describes one user whose group memberships do not
// match their profession.
type ConsistencyIssue struct {
	UserID     uuid.UUID            `json:"user_id"`
	Email      string               `json:"email"`
	Profession string               `json:"profession"`
	Group      string               `json:"group,omitempty"`
	Kind       ConsistencyIssueKind `json:"kind"`
	Detail     string               `json:"detail"`
}

// ConsistencyReport is the read-only audit surface over the whole user
// population.
type ConsistencyReport struct {
	GeneratedAt time.Time          `json:"generated_at"`
	UsersTotal  int                `json:"users_total"`
	Issues      []ConsistencyIssue `json:"issues"`
}

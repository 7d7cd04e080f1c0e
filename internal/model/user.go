package model

import (
	"time"
)

// Profession is the closed set of clinical roles a user can hold.
// Adding a variant requires revisiting every switch over this type.
type Profession int

const (
	ProfessionUnknown Profession = iota
	ProfessionDoctor
	ProfessionResident
	ProfessionNurse
	ProfessionPhysiotherapist
	ProfessionStudent
)

func (p Profession) String() string {
	switch p {
	case ProfessionDoctor:
		return "doctor"
	case ProfessionResident:
		return "resident"
	case ProfessionNurse:
		return "nurse"
	case ProfessionPhysiotherapist:
		return "physiotherapist"
	case ProfessionStudent:
		return "student"
	default:
		return "unknown"
	}
}

// ProfessionFromString maps a stored label back to its enum value.
// Unrecognized labels map to ProfessionUnknown, which every permission
// check treats as "no role".
func ProfessionFromString(s string) Profession {
	switch s {
	case "doctor":
		return ProfessionDoctor
	case "resident":
		return ProfessionResident
	case "nurse":
		return ProfessionNurse
	case "physiotherapist":
		return ProfessionPhysiotherapist
	case "student":
		return ProfessionStudent
	default:
		return ProfessionUnknown
	}
}

// Group name constants. Group membership is the coarse, user-level
// authorization signal; profession is the fine-grained one.
const (
	GroupDoctors          = "doctors"
	GroupResidents        = "residents"
	GroupNurses           = "nurses"
	GroupPhysiotherapists = "physiotherapists"
	GroupStudents         = "students"
	GroupPatientManagers  = "patient_managers"
)

// ExpectedGroup returns the membership group a user of the given
// profession is supposed to carry. Empty string for unknown professions.
func ExpectedGroup(p Profession) string {
	switch p {
	case ProfessionDoctor:
		return GroupDoctors
	case ProfessionResident:
		return GroupResidents
	case ProfessionNurse:
		return GroupNurses
	case ProfessionPhysiotherapist:
		return GroupPhysiotherapists
	case ProfessionStudent:
		return GroupStudents
	default:
		return ""
	}
}

// ProfessionGroups lists every profession-bound group name.
func ProfessionGroups() []string {
	return []string{
		GroupDoctors,
		GroupResidents,
		GroupNurses,
		GroupPhysiotherapists,
		GroupStudents,
	}
}

// User represents a clinical staff account. Accounts are never deleted,
// only deactivated.
type User struct {
	Base
	Email        string     `json:"email" db:"email"`
	Name         string     `json:"name" db:"name"`
	PasswordHash string     `json:"-" db:"password_hash"`
	Profession   Profession `json:"profession" db:"profession"`
	IsActive     bool       `json:"is_active" db:"is_active"`
	LastLoginAt  *time.Time `json:"last_login_at" db:"last_login_at"`

	// Groups is loaded alongside the user row; it is not a column.
	Groups []string `json:"groups" db:"-"`

	// Authenticated is set by the authentication middleware after the
	// request credential has been verified. It is never persisted.
	Authenticated bool `json:"-" db:"-"`
}

// IsAuthenticated reports whether this user came from a verified
// credential. A nil user is never authenticated.
func (u *User) IsAuthenticated() bool {
	return u != nil && u.Authenticated
}

// IsDoctor reports whether the user holds the doctor profession.
func (u *User) IsDoctor() bool {
	return u != nil && u.Profession == ProfessionDoctor
}

// InGroup reports membership in the named group.
func (u *User) InGroup(name string) bool {
	if u == nil {
		return false
	}
	for _, g := range u.Groups {
		if g == name {
			return true
		}
	}
	return false
}

// CreateUserRequest represents account provisioning parameters
type CreateUserRequest struct {
	Email      string `json:"email" binding:"required,email"`
	Name       string `json:"name" binding:"required"`
	Password   string `json:"password" binding:"required,min=8"`
	Profession string `json:"profession" binding:"required,oneof=doctor resident nurse physiotherapist student"`
}

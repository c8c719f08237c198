package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role classifies an account as a point grantor or recipient. Roles are
// compared only through the named variants, never through raw integers.
type Role string

const (
	// RoleTeacher may award points and read dashboards.
	RoleTeacher Role = "teacher"
	// RoleStudent accumulates points and spends them in the store.
	RoleStudent Role = "student"
)

// Valid reports whether the role is a known variant.
func (r Role) Valid() bool {
	return r == RoleTeacher || r == RoleStudent
}

// Gender is used only to pick a display avatar.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// Account is an identity in the points economy. The QRCode is assigned
// once at registration and never reused or reassigned.
type Account struct {
	ID           uuid.UUID  `json:"id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"` // Never expose
	Email        string     `json:"email"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Gender       Gender     `json:"gender"`
	PhoneNumber  string     `json:"phone_number,omitempty"`
	Birthday     *time.Time `json:"birthday,omitempty"`
	Role         Role       `json:"role"`
	QRCode       string     `json:"qr_code"`
	Active       bool       `json:"active"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// DisplayName returns "First Last", falling back to the username.
func (a *Account) DisplayName() string {
	name := strings.TrimSpace(a.FirstName + " " + a.LastName)
	if name == "" {
		return a.Username
	}
	return name
}

// Avatar returns the emoji avatar for the account's gender.
func (a *Account) Avatar() string {
	switch a.Gender {
	case GenderMale:
		return "👦"
	case GenderFemale:
		return "👧"
	default:
		return "⭐"
	}
}

// Status renders the active flag the way clients expect it.
func (a *Account) Status() string {
	if a.Active {
		return "active"
	}
	return "inactive"
}

// IsTeacher reports whether the account may grant points.
func (a *Account) IsTeacher() bool {
	return a.Role == RoleTeacher
}

// IsStudent reports whether the account may receive points.
func (a *Account) IsStudent() bool {
	return a.Role == RoleStudent
}

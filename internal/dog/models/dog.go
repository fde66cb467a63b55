// Package models defines the dog aggregate and its public enums.
package models

import (
	"time"

	id "pawport/pkg/domain"
	dErrors "pawport/pkg/domain-errors"
)

// ServiceRole is the declared task type of a service dog.
type ServiceRole string

const (
	RoleMobility      ServiceRole = "mobility"
	RoleGuide         ServiceRole = "guide"
	RolePsychiatric   ServiceRole = "psychiatric"
	RoleMedicalAlert  ServiceRole = "medical_alert"
	RoleAutismSupport ServiceRole = "autism_support"
	RoleHearing       ServiceRole = "hearing"
)

var serviceRoles = map[ServiceRole]struct{}{
	RoleMobility:      {},
	RoleGuide:         {},
	RolePsychiatric:   {},
	RoleMedicalAlert:  {},
	RoleAutismSupport: {},
	RoleHearing:       {},
}

func (r ServiceRole) String() string { return string(r) }

func (r ServiceRole) IsValid() bool {
	_, ok := serviceRoles[r]
	return ok
}

// ParseServiceRole validates a role string at trust boundaries.
func ParseServiceRole(s string) (ServiceRole, error) {
	r := ServiceRole(s)
	if !r.IsValid() {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "unknown service role: %s", s)
	}
	return r, nil
}

// VerificationLevel is the public tier a business sees.
//
// Levels order YELLOW < GREEN < BLUE. The tier machine re-derives the
// level from scratch on every recompute; there is no hysteresis.
type VerificationLevel string

const (
	// LevelYellow is the initial tier: required records incomplete.
	LevelYellow VerificationLevel = "yellow"
	// LevelGreen means required records are present but not both vet-
	// and trainer-verified, or the dog is held for human review.
	LevelGreen VerificationLevel = "green"
	// LevelBlue is the premium tier: verified records and high scores.
	LevelBlue VerificationLevel = "blue"
)

func (l VerificationLevel) String() string { return string(l) }

func (l VerificationLevel) IsValid() bool {
	switch l {
	case LevelYellow, LevelGreen, LevelBlue:
		return true
	}
	return false
}

// ParseVerificationLevel validates a tier string (admin overrides).
func ParseVerificationLevel(s string) (VerificationLevel, error) {
	l := VerificationLevel(s)
	if !l.IsValid() {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "unknown verification level: %s", s)
	}
	return l, nil
}

// Dog is the core profile. The verification level is derived state:
// only the verification service's tiering step and explicit admin
// overrides mutate it.
type Dog struct {
	ID        id.DogID     `json:"id"`
	HandlerID id.HandlerID `json:"handler_id"`

	Name        string      `json:"name"`
	Breed       string      `json:"breed"`
	WeightLbs   float64     `json:"weight_lbs,omitempty"`
	Microchip   string      `json:"microchip,omitempty"`
	PhotoURL    string      `json:"photo_url,omitempty"`
	ServiceRole ServiceRole `json:"service_role"`

	VerificationLevel VerificationLevel `json:"verification_level"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

package domain

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire format for dates of birth
const DateLayout = "2006-01-02"

// EntityType distinguishes people from organizations
type EntityType string

const (
	EntityTypeIndividual   EntityType = "individual"
	EntityTypeOrganization EntityType = "organization"
)

// Entity is a party to be screened (a payment sender or recipient, or an ad-hoc lookup).
// It is treated as immutable for the duration of a screening call.
type Entity struct {
	Name           string     `json:"name"`
	Aliases        []string   `json:"aliases,omitempty"`
	DateOfBirth    string     `json:"date_of_birth,omitempty"` // YYYY-MM-DD
	Nationality    string     `json:"nationality,omitempty"`
	PassportNumber string     `json:"passport_number,omitempty"`
	EntityType     EntityType `json:"entity_type"`
}

// Validate checks the fields required before any matching is attempted
func (e Entity) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return fmt.Errorf("%w: entity name is required", ErrInvalidInput)
	}
	switch e.EntityType {
	case "", EntityTypeIndividual, EntityTypeOrganization:
	default:
		return fmt.Errorf("%w: unknown entity type %q", ErrInvalidInput, e.EntityType)
	}
	if e.DateOfBirth != "" {
		if _, err := time.Parse(DateLayout, e.DateOfBirth); err != nil {
			return fmt.Errorf("%w: date_of_birth must be YYYY-MM-DD", ErrInvalidInput)
		}
	}
	return nil
}

// SanctionsEntry is one listing from a sanctions reference list.
// Entries are read-only once loaded into a reference snapshot.
type SanctionsEntry struct {
	ID              string     `json:"id" db:"id"`
	Name            string     `json:"name" db:"entity_name"`
	Aliases         []string   `json:"aliases,omitempty" db:"aliases"`
	Source          string     `json:"source" db:"source"`
	ListName        string     `json:"list_name" db:"list_name"`
	EntityType      EntityType `json:"entity_type" db:"entity_type"`
	DateOfBirth     string     `json:"date_of_birth,omitempty" db:"date_of_birth"`
	Nationality     string     `json:"nationality,omitempty" db:"nationality"`
	PassportNumber  string     `json:"passport_number,omitempty" db:"passport_number"`
	Country         string     `json:"country,omitempty" db:"country"`
	DesignationDate string     `json:"designation_date,omitempty" db:"designation_date"`
	Reason          string     `json:"reason,omitempty" db:"reason"`
}

// AllNames returns the listed name followed by its aliases
func (s SanctionsEntry) AllNames() []string {
	names := make([]string, 0, len(s.Aliases)+1)
	names = append(names, s.Name)
	return append(names, s.Aliases...)
}

// AllNames returns the entity name followed by its aliases
func (e Entity) AllNames() []string {
	names := make([]string, 0, len(e.Aliases)+1)
	names = append(names, e.Name)
	return append(names, e.Aliases...)
}

package model

import (
	"fmt"
	"strings"
	"time"
)

// ActiveTerm is the active school year joined to its year and semester.
type ActiveTerm struct {
	YearDescription     string `json:"year_description"`
	SemesterDescription string `json:"semester_description"`
	SemesterCode        string `json:"semester_code"`
}

// ApplicantNumberPrefix is the leading year of the description ("2025-2026" -> "2025")
// followed by the semester code.
func (t ActiveTerm) ApplicantNumberPrefix() string {
	year, _, _ := strings.Cut(t.YearDescription, "-")
	return year + t.SemesterCode
}

// FormatApplicantNumber joins the term prefix with a zero-padded sequence.
func (t ActiveTerm) FormatApplicantNumber(seq int) string {
	return fmt.Sprintf("%s%05d", t.ApplicantNumberPrefix(), seq)
}

type ApplicantNumber struct {
	ApplicantNumber string    `json:"applicant_number"`
	PersonID        string    `json:"person_id"`
	QRCode          string    `json:"qr_code,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

package patient

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

const contactDigits = 10

// IsValidContact reports whether s is exactly ten ASCII digits.
func IsValidContact(s string) bool {
	if len(s) != contactDigits {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// AgeAt returns now's year minus the birth year in dob. No month or day
// adjustment is made.
func AgeAt(dob string, now time.Time) (int, error) {
	year, err := strconv.Atoi(strings.TrimSpace(birthYear(dob)))
	if err != nil {
		return 0, ErrInvalidDOB
	}
	return now.Year() - year, nil
}

// ParseAge parses a client supplied age.
func ParseAge(s string) (int, error) {
	age, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, ErrInvalidAge
	}
	return age, nil
}

type fieldLimit struct {
	label string
	value string
	max   int
}

// checkLengths matches the VARCHAR widths of the patients table. Lengths are
// counted in characters, as PostgreSQL does.
func checkLengths(fields []fieldLimit) error {
	for _, f := range fields {
		if utf8.RuneCountInString(f.value) > f.max {
			return &FieldTooLongError{Field: f.label, Max: f.max}
		}
	}
	return nil
}

func recordLimits(p *Patient) []fieldLimit {
	return []fieldLimit{
		{"Name", p.Name, 100},
		{"Date of birth", p.DOB, 10},
		{"Gender", p.Gender, 10},
		{"Contact", p.Contact, 15},
		{"Address", p.Address, 200},
		{"Emergency contact", p.EmergencyContact, 15},
		{"Blood group", p.BloodGroup, 5},
		{"Diagnosis", p.Diagnosis, 100},
		{"Admit date", p.AdmitDate, 20},
		{"Discharge date", p.DischargeDate, 20},
	}
}

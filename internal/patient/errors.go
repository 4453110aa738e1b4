package patient

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateID             = errors.New("patient with this ID already exists")
	ErrInvalidContact          = errors.New("contact number must be 10 digits")
	ErrInvalidEmergencyContact = errors.New("emergency contact must be 10 digits if provided")
	ErrInvalidDOB              = errors.New("date of birth must start with a numeric year")
	ErrInvalidAge              = errors.New("age must be a whole number")
	ErrFieldTooLong            = errors.New("field value is too long")
	ErrNotFound                = errors.New("patient not found")
)

// FieldTooLongError names the field that exceeds its column width.
type FieldTooLongError struct {
	Field string
	Max   int
}

func (e *FieldTooLongError) Error() string {
	return fmt.Sprintf("%s must be at most %d characters", e.Field, e.Max)
}

func (e *FieldTooLongError) Is(target error) bool {
	return target == ErrFieldTooLong
}

package campus

import (
	"errors"
	"fmt"
)

// ErrNotFound matches every NotFoundError via errors.Is.
var ErrNotFound = errors.New("not found")

// Entity kinds used in NotFoundError.
const (
	KindStudent = "Student"
	KindCourse  = "Course"
)

// NotFoundError is returned when an operation targets an id that does not exist.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return e.Kind + " not found"
}

// Is reports whether target is ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// Code returns a machine-readable error code.
func (e *NotFoundError) Code() string {
	return "NOT_FOUND"
}

// Hint returns a user-friendly suggestion for resolving this error.
func (e *NotFoundError) Hint() string {
	if e.Kind == KindCourse {
		return fmt.Sprintf("No course has id %q. Query getAllCourses to list available ids.", e.ID)
	}
	return fmt.Sprintf("No student has id %q. Query getAllStudents to list available ids.", e.ID)
}

// SeedError is returned by New when the seed data is inconsistent.
type SeedError struct {
	Kind  string
	ID    string
	Index int
}

func (e *SeedError) Error() string {
	return fmt.Sprintf("duplicate %s id %q in seed data at index %d", e.Kind, e.ID, e.Index)
}

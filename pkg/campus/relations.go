package campus

import (
	"slices"
	"sort"
	"strconv"
	"time"
)

// CoursesOf returns the courses the student is enrolled in, in course
// collection order. Enrolled ids that no longer match a course are skipped.
func (s *Store) CoursesOf(studentID string) []Course {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.enrollments[studentID]
	out := make([]Course, 0, len(ids))
	if len(ids) == 0 {
		return out
	}
	for _, c := range s.courses {
		if slices.Contains(ids, c.ID) {
			out = append(out, *c)
		}
	}
	return out
}

// StudentsOf returns the students enrolled in the course, ordered by student
// id. Enrollment entries whose student no longer exists are skipped.
func (s *Store) StudentsOf(courseID string) []Student {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Student, 0)
	for _, studentID := range s.enrollmentKeys() {
		if !slices.Contains(s.enrollments[studentID], courseID) {
			continue
		}
		if i := s.studentIndex(studentID); i >= 0 {
			out = append(out, *s.students[i])
		}
	}
	return out
}

// EnrolledCourseIDs returns the raw enrollment list of a student, including
// ids of courses that have since been deleted.
func (s *Store) EnrolledCourseIDs(studentID string) ([]string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids, ok := s.enrollments[studentID]
	if !ok {
		return nil, false
	}
	return append([]string{}, ids...), true
}

// Enroll adds the course to the student's enrollment list. Enrolling twice is
// a no-op.
func (s *Store) Enroll(studentID, courseID string) (Student, error) {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.lookupPair(OpEnroll, studentID, courseID)
	if err != nil {
		return Student{}, err
	}

	if !slices.Contains(s.enrollments[studentID], courseID) {
		s.enrollments[studentID] = append(s.enrollments[studentID], courseID)
	}

	s.log.Debug("student enrolled", "studentId", studentID, "courseId", courseID)
	s.observer.OnMutation(KindStudent, OpEnroll, studentID, time.Since(start))
	return *st, nil
}

// Unenroll removes the course from the student's enrollment list.
func (s *Store) Unenroll(studentID, courseID string) (Student, error) {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.lookupPair(OpUnenroll, studentID, courseID)
	if err != nil {
		return Student{}, err
	}

	s.enrollments[studentID] = slices.DeleteFunc(s.enrollments[studentID], func(cid string) bool {
		return cid == courseID
	})

	s.log.Debug("student unenrolled", "studentId", studentID, "courseId", courseID)
	s.observer.OnMutation(KindStudent, OpUnenroll, studentID, time.Since(start))
	return *st, nil
}

// lookupPair resolves both ends of an enrollment change. Callers hold s.mu.
func (s *Store) lookupPair(op, studentID, courseID string) (*Student, error) {
	i := s.studentIndex(studentID)
	if i < 0 {
		err := &NotFoundError{Kind: KindStudent, ID: studentID}
		s.observer.OnError(KindStudent, op, err)
		return nil, err
	}
	if s.courseIndex(courseID) < 0 {
		err := &NotFoundError{Kind: KindCourse, ID: courseID}
		s.observer.OnError(KindStudent, op, err)
		return nil, err
	}
	return s.students[i], nil
}

// enrollmentKeys returns the enrollment map keys with integer keys first in
// numeric order, then the rest in lexical order.
func (s *Store) enrollmentKeys() []string {
	keys := make([]string, 0, len(s.enrollments))
	for k := range s.enrollments {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, errA := strconv.Atoi(keys[i])
		b, errB := strconv.Atoi(keys[j])
		switch {
		case errA == nil && errB == nil:
			return a < b
		case errA == nil:
			return true
		case errB == nil:
			return false
		default:
			return keys[i] < keys[j]
		}
	})
	return keys
}

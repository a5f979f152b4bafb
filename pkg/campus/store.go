package campus

import (
	"log/slog"
	"sync"
	"time"

	"github.com/getmockd/registrar/internal/id"
	"github.com/getmockd/registrar/pkg/logging"
)

// Store owns the student and course collections and the enrollment relation.
type Store struct {
	mu          sync.RWMutex
	students    []*Student
	courses     []*Course
	enrollments map[string][]string

	seed       Snapshot
	policy     id.Policy
	studentIDs id.Allocator
	courseIDs  id.Allocator
	cascade    bool

	log      *slog.Logger
	observer Observer
}

// Option configures a Store.
type Option func(*Store)

// WithSeed replaces the default seed data.
func WithSeed(seed Snapshot) Option {
	return func(s *Store) {
		s.seed = seed.Clone()
	}
}

// WithIDPolicy selects how new ids are assigned. The default is id.PolicySequence.
func WithIDPolicy(p id.Policy) Option {
	return func(s *Store) {
		s.policy = p
	}
}

// WithCascadeCourseDelete makes DeleteCourse strip the course id from every
// enrollment list. Without it the ids are left behind and skipped at read time.
func WithCascadeCourseDelete(enabled bool) Option {
	return func(s *Store) {
		s.cascade = enabled
	}
}

// WithLogger sets the logger used for mutation traces.
func WithLogger(log *slog.Logger) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

// WithObserver registers a mutation observer.
func WithObserver(o Observer) Option {
	return func(s *Store) {
		if o != nil {
			s.observer = o
		}
	}
}

// New creates a Store loaded with seed data.
func New(opts ...Option) (*Store, error) {
	s := &Store{
		seed:     DefaultSeed(),
		policy:   id.PolicySequence,
		log:      logging.Nop(),
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.studentIDs = id.NewAllocator(s.policy)
	s.courseIDs = id.NewAllocator(s.policy)

	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// load replaces the current contents with the seed. Callers hold s.mu or
// have exclusive access.
func (s *Store) load() error {
	s.studentIDs.Reset()
	s.courseIDs.Reset()

	seen := make(map[string]bool, len(s.seed.Students))
	students := make([]*Student, 0, len(s.seed.Students))
	for i, st := range s.seed.Students {
		if seen[st.ID] {
			return &SeedError{Kind: KindStudent, ID: st.ID, Index: i}
		}
		seen[st.ID] = true
		st := st
		students = append(students, &st)
		s.studentIDs.Observe(st.ID)
	}

	seen = make(map[string]bool, len(s.seed.Courses))
	courses := make([]*Course, 0, len(s.seed.Courses))
	for i, c := range s.seed.Courses {
		if seen[c.ID] {
			return &SeedError{Kind: KindCourse, ID: c.ID, Index: i}
		}
		seen[c.ID] = true
		c := c
		courses = append(courses, &c)
		s.courseIDs.Observe(c.ID)
	}

	s.students = students
	s.courses = courses
	s.enrollments = s.seed.Clone().Enrollments
	return nil
}

// Reset restores the seed data and restarts id assignment.
func (s *Store) Reset() {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	// The seed was validated by New, so load cannot fail here.
	_ = s.load()
	s.log.Info("store reset to seed", "students", len(s.students), "courses", len(s.courses))
	s.observer.OnMutation("", OpReset, "", time.Since(start))
}

// Snapshot returns a detached copy of the current contents.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := Snapshot{
		Students:    make([]Student, len(s.students)),
		Courses:     make([]Course, len(s.courses)),
		Enrollments: make(map[string][]string, len(s.enrollments)),
	}
	for i, st := range s.students {
		out.Students[i] = *st
	}
	for i, c := range s.courses {
		out.Courses[i] = *c
	}
	for k, v := range s.enrollments {
		out.Enrollments[k] = append([]string{}, v...)
	}
	return out
}

// IDPolicy returns the id assignment policy in effect.
func (s *Store) IDPolicy() id.Policy {
	return s.policy
}

// Students returns every student in insertion order.
func (s *Store) Students() []Student {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Student, len(s.students))
	for i, st := range s.students {
		out[i] = *st
	}
	return out
}

// Student returns the first student with the given id.
func (s *Store) Student(studentID string) (Student, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.studentIndex(studentID); i >= 0 {
		return *s.students[i], true
	}
	return Student{}, false
}

// StudentsByMajor returns students whose major equals major exactly.
func (s *Store) StudentsByMajor(major string) []Student {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Student, 0)
	for _, st := range s.students {
		if st.Major == major {
			out = append(out, *st)
		}
	}
	return out
}

// Courses returns every course in insertion order.
func (s *Store) Courses() []Course {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Course, len(s.courses))
	for i, c := range s.courses {
		out[i] = *c
	}
	return out
}

// Course returns the first course with the given id.
func (s *Store) Course(courseID string) (Course, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.courseIndex(courseID); i >= 0 {
		return *s.courses[i], true
	}
	return Course{}, false
}

// AddStudent appends a new student and gives it an empty enrollment list.
func (s *Store) AddStudent(in StudentInput) Student {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	st := &Student{
		ID:    s.studentIDs.Next(len(s.students)),
		Name:  in.Name,
		Email: in.Email,
		Age:   in.Age,
		Major: in.Major,
	}
	s.students = append(s.students, st)
	s.enrollments[st.ID] = []string{}

	s.log.Debug("student added", "studentId", st.ID)
	s.observer.OnMutation(KindStudent, OpAdd, st.ID, time.Since(start))
	return *st
}

// UpdateStudent overwrites every writable field of the student.
func (s *Store) UpdateStudent(studentID string, in StudentInput) (Student, error) {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.studentIndex(studentID)
	if i < 0 {
		err := &NotFoundError{Kind: KindStudent, ID: studentID}
		s.observer.OnError(KindStudent, OpUpdate, err)
		return Student{}, err
	}

	st := s.students[i]
	st.Name = in.Name
	st.Email = in.Email
	st.Age = in.Age
	st.Major = in.Major

	s.log.Debug("student updated", "studentId", studentID)
	s.observer.OnMutation(KindStudent, OpUpdate, studentID, time.Since(start))
	return *st, nil
}

// DeleteStudent removes the first student with the given id together with
// its enrollment list. It reports false when there was nothing to remove.
func (s *Store) DeleteStudent(studentID string) (Student, bool) {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.studentIndex(studentID)
	if i < 0 {
		return Student{}, false
	}

	removed := *s.students[i]
	s.students = append(s.students[:i], s.students[i+1:]...)
	delete(s.enrollments, studentID)

	s.log.Debug("student deleted", "studentId", studentID)
	s.observer.OnMutation(KindStudent, OpDelete, studentID, time.Since(start))
	return removed, true
}

// AddCourse appends a new course. Courses own no enrollment entry.
func (s *Store) AddCourse(in CourseInput) Course {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	c := &Course{
		ID:         s.courseIDs.Next(len(s.courses)),
		Title:      in.Title,
		Code:       in.Code,
		Credits:    in.Credits,
		Instructor: in.Instructor,
	}
	s.courses = append(s.courses, c)

	s.log.Debug("course added", "courseId", c.ID)
	s.observer.OnMutation(KindCourse, OpAdd, c.ID, time.Since(start))
	return *c
}

// UpdateCourse overwrites every writable field of the course.
func (s *Store) UpdateCourse(courseID string, in CourseInput) (Course, error) {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.courseIndex(courseID)
	if i < 0 {
		err := &NotFoundError{Kind: KindCourse, ID: courseID}
		s.observer.OnError(KindCourse, OpUpdate, err)
		return Course{}, err
	}

	c := s.courses[i]
	c.Title = in.Title
	c.Code = in.Code
	c.Credits = in.Credits
	c.Instructor = in.Instructor

	s.log.Debug("course updated", "courseId", courseID)
	s.observer.OnMutation(KindCourse, OpUpdate, courseID, time.Since(start))
	return *c, nil
}

// DeleteCourse removes the first course with the given id. Enrollment lists
// keep the id unless the store was built WithCascadeCourseDelete.
func (s *Store) DeleteCourse(courseID string) (Course, bool) {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.courseIndex(courseID)
	if i < 0 {
		return Course{}, false
	}

	removed := *s.courses[i]
	s.courses = append(s.courses[:i], s.courses[i+1:]...)

	pruned := 0
	if s.cascade {
		for studentID, ids := range s.enrollments {
			kept := ids[:0]
			for _, cid := range ids {
				if cid != courseID {
					kept = append(kept, cid)
				}
			}
			pruned += len(ids) - len(kept)
			s.enrollments[studentID] = kept
		}
	}

	s.log.Debug("course deleted", "courseId", courseID, "cascade", s.cascade, "prunedEnrollments", pruned)
	s.observer.OnMutation(KindCourse, OpDelete, courseID, time.Since(start))
	return removed, true
}

func (s *Store) studentIndex(studentID string) int {
	for i, st := range s.students {
		if st.ID == studentID {
			return i
		}
	}
	return -1
}

func (s *Store) courseIndex(courseID string) int {
	for i, c := range s.courses {
		if c.ID == courseID {
			return i
		}
	}
	return -1
}

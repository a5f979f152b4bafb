package campus

// Student is an enrolled person.
type Student struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Email string `json:"email" yaml:"email"`
	Age   int    `json:"age" yaml:"age"`
	Major string `json:"major" yaml:"major"`
}

// Course is something students enroll into.
type Course struct {
	ID         string `json:"id" yaml:"id"`
	Title      string `json:"title" yaml:"title"`
	Code       string `json:"code" yaml:"code"`
	Credits    int    `json:"credits" yaml:"credits"`
	Instructor string `json:"instructor" yaml:"instructor"`
}

// StudentInput carries the writable student fields.
type StudentInput struct {
	Name  string
	Email string
	Age   int
	Major string
}

// CourseInput carries the writable course fields.
type CourseInput struct {
	Title      string
	Code       string
	Credits    int
	Instructor string
}

// Snapshot is a detached copy of the store contents.
type Snapshot struct {
	Students    []Student           `json:"students" yaml:"students"`
	Courses     []Course            `json:"courses" yaml:"courses"`
	Enrollments map[string][]string `json:"enrollments" yaml:"enrollments"`
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Students:    append([]Student(nil), s.Students...),
		Courses:     append([]Course(nil), s.Courses...),
		Enrollments: make(map[string][]string, len(s.Enrollments)),
	}
	for k, v := range s.Enrollments {
		out.Enrollments[k] = append([]string{}, v...)
	}
	return out
}

// DefaultSeed returns the data a fresh registrar starts with.
func DefaultSeed() Snapshot {
	return Snapshot{
		Students: []Student{
			{ID: "1", Name: "Ahmed Hassan", Email: "ahmed@iti.edu", Age: 22, Major: "Computer Science"},
			{ID: "2", Name: "Fatma Ali", Email: "fatma@iti.edu", Age: 21, Major: "Information Systems"},
		},
		Courses: []Course{
			{ID: "1", Title: "Data Structures", Code: "CS201", Credits: 3, Instructor: "Dr. Mohamed"},
			{ID: "2", Title: "Database Systems", Code: "CS301", Credits: 4, Instructor: "Dr. Sarah"},
		},
		Enrollments: map[string][]string{
			"1": {"1", "2"},
			"2": {"2"},
		},
	}
}

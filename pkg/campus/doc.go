// Package campus holds the registrar entity store: students, courses and the
// enrollment relation between them.
//
// A Store is an explicit object; nothing in this package keeps package-level
// state. All operations are safe for concurrent use. Reads take a shared lock
// and mutations an exclusive one, so every operation is atomic on its own.
//
// Core types:
//
//   - Store: owner of the three collections
//   - Student, Course: entity records, always returned by value
//   - Snapshot: a detached copy of the store contents, also used as seed data
//   - NotFoundError: returned by updates and enrollment changes on unknown ids
//
// Relations are derived on demand. CoursesOf and StudentsOf scan the
// enrollment map each time they are called; nothing is cached.
//
// Usage:
//
//	store, err := campus.New(campus.WithIDPolicy(id.PolicySequence))
//	if err != nil {
//	    return err
//	}
//	s := store.AddStudent(campus.StudentInput{Name: "Mona", Email: "mona@iti.edu", Age: 23, Major: "AI"})
//	courses := store.CoursesOf(s.ID)
package campus

// Package resolver binds the registrar GraphQL schema to a campus.Store.
package resolver

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/getmockd/registrar/pkg/campus"
	"github.com/getmockd/registrar/pkg/graphql"
	"github.com/getmockd/registrar/pkg/logging"
)

// SDL is the registrar GraphQL schema.
//
//go:embed schema.graphql
var SDL string

// Schema parses SDL.
func Schema() (*graphql.Schema, error) {
	schema, err := graphql.ParseSchema(SDL)
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(); err != nil {
		return nil, fmt.Errorf("registrar schema: %w", err)
	}
	return schema, nil
}

// Resolver serves every Query, Mutation and relation field from one store.
type Resolver struct {
	store *campus.Store
}

// New creates a Resolver backed by store.
func New(store *campus.Store) *Resolver {
	return &Resolver{store: store}
}

// NewExecutor builds an executor over SDL with every field bound to store.
func NewExecutor(store *campus.Store, config *graphql.Config, opts ...graphql.ExecutorOption) (*graphql.Executor, error) {
	schema, err := Schema()
	if err != nil {
		return nil, err
	}
	exec := graphql.NewExecutor(schema, config, opts...)
	if err := New(store).Bind(exec); err != nil {
		return nil, err
	}
	return exec, nil
}

// Bind registers the resolvers on exec.
func (r *Resolver) Bind(exec *graphql.Executor) error {
	bindings := map[string]graphql.FieldResolveFn{
		"Query.getAllStudents":        r.getAllStudents,
		"Query.getStudent":            r.getStudent,
		"Query.getAllCourses":         r.getAllCourses,
		"Query.getCourse":             r.getCourse,
		"Query.searchStudentsByMajor": r.searchStudentsByMajor,

		"Mutation.addStudent":      r.addStudent,
		"Mutation.updateStudent":   r.updateStudent,
		"Mutation.deleteStudent":   r.deleteStudent,
		"Mutation.addCourse":       r.addCourse,
		"Mutation.updateCourse":    r.updateCourse,
		"Mutation.deleteCourse":    r.deleteCourse,
		"Mutation.enrollStudent":   r.enrollStudent,
		"Mutation.unenrollStudent": r.unenrollStudent,
		"Mutation.resetData":       r.resetData,

		"Student.courses": r.studentCourses,
		"Course.students": r.courseStudents,
	}
	for path, fn := range bindings {
		if err := exec.Register(path, fn); err != nil {
			return fmt.Errorf("bind %s: %w", path, err)
		}
	}
	return nil
}

func (r *Resolver) getAllStudents(_ context.Context, _ graphql.ResolveParams) (interface{}, error) {
	return r.store.Students(), nil
}

func (r *Resolver) getStudent(_ context.Context, p graphql.ResolveParams) (interface{}, error) {
	if st, ok := r.store.Student(stringArg(p, "id")); ok {
		return st, nil
	}
	return nil, nil
}

func (r *Resolver) getAllCourses(_ context.Context, _ graphql.ResolveParams) (interface{}, error) {
	return r.store.Courses(), nil
}

func (r *Resolver) getCourse(_ context.Context, p graphql.ResolveParams) (interface{}, error) {
	if c, ok := r.store.Course(stringArg(p, "id")); ok {
		return c, nil
	}
	return nil, nil
}

func (r *Resolver) searchStudentsByMajor(_ context.Context, p graphql.ResolveParams) (interface{}, error) {
	return r.store.StudentsByMajor(stringArg(p, "major")), nil
}

func (r *Resolver) addStudent(_ context.Context, p graphql.ResolveParams) (interface{}, error) {
	return r.store.AddStudent(studentInput(p)), nil
}

func (r *Resolver) updateStudent(ctx context.Context, p graphql.ResolveParams) (interface{}, error) {
	st, err := r.store.UpdateStudent(stringArg(p, "id"), studentInput(p))
	if err != nil {
		logging.FromContext(ctx).Warn("update rejected", "studentId", stringArg(p, "id"), "error", err)
		return nil, err
	}
	return st, nil
}

func (r *Resolver) deleteStudent(_ context.Context, p graphql.ResolveParams) (interface{}, error) {
	if st, ok := r.store.DeleteStudent(stringArg(p, "id")); ok {
		return st, nil
	}
	return nil, nil
}

func (r *Resolver) addCourse(_ context.Context, p graphql.ResolveParams) (interface{}, error) {
	return r.store.AddCourse(courseInput(p)), nil
}

func (r *Resolver) updateCourse(ctx context.Context, p graphql.ResolveParams) (interface{}, error) {
	c, err := r.store.UpdateCourse(stringArg(p, "id"), courseInput(p))
	if err != nil {
		logging.FromContext(ctx).Warn("update rejected", "courseId", stringArg(p, "id"), "error", err)
		return nil, err
	}
	return c, nil
}

func (r *Resolver) deleteCourse(_ context.Context, p graphql.ResolveParams) (interface{}, error) {
	if c, ok := r.store.DeleteCourse(stringArg(p, "id")); ok {
		return c, nil
	}
	return nil, nil
}

func (r *Resolver) enrollStudent(_ context.Context, p graphql.ResolveParams) (interface{}, error) {
	st, err := r.store.Enroll(stringArg(p, "studentId"), stringArg(p, "courseId"))
	if err != nil {
		return nil, err
	}
	return st, nil
}

func (r *Resolver) unenrollStudent(_ context.Context, p graphql.ResolveParams) (interface{}, error) {
	st, err := r.store.Unenroll(stringArg(p, "studentId"), stringArg(p, "courseId"))
	if err != nil {
		return nil, err
	}
	return st, nil
}

func (r *Resolver) resetData(ctx context.Context, _ graphql.ResolveParams) (interface{}, error) {
	r.store.Reset()
	logging.FromContext(ctx).Info("data reset")
	return true, nil
}

// studentCourses resolves Student.courses. It only runs when the field is
// selected.
func (r *Resolver) studentCourses(_ context.Context, p graphql.ResolveParams) (interface{}, error) {
	st, ok := p.Source.(campus.Student)
	if !ok {
		return nil, fmt.Errorf("Student.courses: unexpected parent %T", p.Source)
	}
	return r.store.CoursesOf(st.ID), nil
}

// courseStudents resolves Course.students.
func (r *Resolver) courseStudents(_ context.Context, p graphql.ResolveParams) (interface{}, error) {
	c, ok := p.Source.(campus.Course)
	if !ok {
		return nil, fmt.Errorf("Course.students: unexpected parent %T", p.Source)
	}
	return r.store.StudentsOf(c.ID), nil
}

func stringArg(p graphql.ResolveParams, name string) string {
	s, _ := p.Args[name].(string)
	return s
}

func intArg(p graphql.ResolveParams, name string) int {
	n, _ := p.Args[name].(int)
	return n
}

func studentInput(p graphql.ResolveParams) campus.StudentInput {
	return campus.StudentInput{
		Name:  stringArg(p, "name"),
		Email: stringArg(p, "email"),
		Age:   intArg(p, "age"),
		Major: stringArg(p, "major"),
	}
}

func courseInput(p graphql.ResolveParams) campus.CourseInput {
	return campus.CourseInput{
		Title:      stringArg(p, "title"),
		Code:       stringArg(p, "code"),
		Credits:    intArg(p, "credits"),
		Instructor: stringArg(p, "instructor"),
	}
}

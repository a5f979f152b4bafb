package resolver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/registrar/internal/id"
	"github.com/getmockd/registrar/pkg/campus"
	"github.com/getmockd/registrar/pkg/graphql"
)

type harness struct {
	store *campus.Store
	exec  *graphql.Executor
}

func newHarness(t *testing.T, opts ...campus.Option) *harness {
	t.Helper()
	store, err := campus.New(opts...)
	require.NoError(t, err)
	exec, err := NewExecutor(store, &graphql.Config{Introspection: true})
	require.NoError(t, err)
	return &harness{store: store, exec: exec}
}

func (h *harness) do(t *testing.T, query string, vars map[string]interface{}) *graphql.GraphQLResponse {
	t.Helper()
	return h.exec.Execute(context.Background(), &graphql.GraphQLRequest{Query: query, Variables: vars})
}

// ok runs query and fails the test on any GraphQL error.
func (h *harness) ok(t *testing.T, query string, vars map[string]interface{}) map[string]interface{} {
	t.Helper()
	resp := h.do(t, query, vars)
	require.Empty(t, resp.Errors)
	data, isMap := graphql.Plain(resp.Data).(map[string]interface{})
	require.True(t, isMap, "data = %#v", resp.Data)
	return data
}

func obj(v interface{}) map[string]interface{} {
	m, _ := graphql.Plain(v).(map[string]interface{})
	return m
}

func list(v interface{}) []interface{} {
	l, _ := v.([]interface{})
	return l
}

func pluck(items []interface{}, key string) []interface{} {
	out := make([]interface{}, len(items))
	for i, item := range items {
		out[i] = obj(item)[key]
	}
	return out
}

func TestSchema(t *testing.T) {
	schema, err := Schema()
	require.NoError(t, err)

	assert.Equal(t, []string{"getAllCourses", "getAllStudents", "getCourse", "getStudent", "searchStudentsByMajor"}, schema.ListQueries())
	assert.Equal(t, []string{
		"addCourse", "addStudent", "deleteCourse", "deleteStudent", "enrollStudent",
		"resetData", "unenrollStudent", "updateCourse", "updateStudent",
	}, schema.ListMutations())
}

func TestGetAllStudents(t *testing.T) {
	h := newHarness(t)

	data := h.ok(t, `{ getAllStudents { id name email age major } }`, nil)
	students := list(data["getAllStudents"])
	require.Len(t, students, 2)
	assert.Equal(t, map[string]interface{}{
		"id": "1", "name": "Ahmed Hassan", "email": "ahmed@iti.edu", "age": 22, "major": "Computer Science",
	}, obj(students[0]))
	assert.Equal(t, "Fatma Ali", obj(students[1])["name"])
}

func TestGetStudent_AbsentIsNull(t *testing.T) {
	h := newHarness(t)

	for _, missing := range []string{"0", "3", "999", "abc", ""} {
		data := h.ok(t, `query($id: ID!) { getStudent(id: $id) { id } }`, map[string]interface{}{"id": missing})
		v, present := data["getStudent"]
		assert.True(t, present, "id %q", missing)
		assert.Nil(t, v, "id %q", missing)
	}
}

func TestGetCourse(t *testing.T) {
	h := newHarness(t)

	data := h.ok(t, `{ getCourse(id: "2") { title code credits instructor } missing: getCourse(id: "9") { id } }`, nil)
	assert.Equal(t, map[string]interface{}{
		"title": "Database Systems", "code": "CS301", "credits": 4, "instructor": "Dr. Sarah",
	}, obj(data["getCourse"]))
	assert.Nil(t, data["missing"])

	data = h.ok(t, `{ getAllCourses { id } }`, nil)
	assert.Equal(t, []interface{}{"1", "2"}, pluck(list(data["getAllCourses"]), "id"))
}

func TestSearchStudentsByMajor(t *testing.T) {
	h := newHarness(t)

	data := h.ok(t, `{ searchStudentsByMajor(major: "Computer Science") { name } }`, nil)
	assert.Equal(t, []interface{}{"Ahmed Hassan"}, pluck(list(data["searchStudentsByMajor"]), "name"))

	data = h.ok(t, `{ searchStudentsByMajor(major: "Medicine") { name } }`, nil)
	assert.Equal(t, []interface{}{}, data["searchStudentsByMajor"], "no match is an empty list, not null")
}

func TestAddStudentThenGet(t *testing.T) {
	h := newHarness(t)

	vars := map[string]interface{}{
		"name": "Mona Adel", "email": "mona@iti.edu", "age": float64(23), "major": "Artificial Intelligence",
	}
	data := h.ok(t, `mutation($name: String!, $email: String!, $age: Int!, $major: String!) {
		addStudent(name: $name, email: $email, age: $age, major: $major) { id name email age major courses { id } }
	}`, vars)
	added := obj(data["addStudent"])
	require.NotNil(t, added)
	assert.Equal(t, "3", added["id"])
	assert.Equal(t, []interface{}{}, added["courses"])

	data = h.ok(t, `query($id: ID!) { getStudent(id: $id) { id name email age major } }`, map[string]interface{}{"id": added["id"]})
	got := obj(data["getStudent"])
	delete(added, "courses")
	assert.Equal(t, added, got)
}

func TestDeleteStudent(t *testing.T) {
	h := newHarness(t)

	data := h.ok(t, `mutation { deleteStudent(id: "1") { id name } }`, nil)
	assert.Equal(t, "Ahmed Hassan", obj(data["deleteStudent"])["name"])

	data = h.ok(t, `{ getAllStudents { id } getCourse(id: "2") { students { id } } }`, nil)
	assert.Equal(t, []interface{}{"2"}, pluck(list(data["getAllStudents"]), "id"))
	assert.Equal(t, []interface{}{"2"}, pluck(list(obj(data["getCourse"])["students"]), "id"))

	_, ok := h.store.EnrolledCourseIDs("1")
	assert.False(t, ok, "enrollment entry removed")

	data = h.ok(t, `mutation { deleteStudent(id: "1") { id } }`, nil)
	assert.Nil(t, data["deleteStudent"], "deleting an absent id yields null")
}

func TestUpdateStudent(t *testing.T) {
	h := newHarness(t)

	data := h.ok(t, `mutation {
		updateStudent(id: "2", name: "Fatma A.", email: "fa@iti.edu", age: 22, major: "Data Science") { id name major }
	}`, nil)
	assert.Equal(t, map[string]interface{}{"id": "2", "name": "Fatma A.", "major": "Data Science"}, obj(data["updateStudent"]))
}

func TestUpdateStudent_NotFound(t *testing.T) {
	h := newHarness(t)
	before := h.store.Students()

	resp := h.do(t, `mutation {
		updateStudent(id: "42", name: "Ghost", email: "g@iti.edu", age: 30, major: "None") { id }
	}`, nil)

	require.Len(t, resp.Errors, 1)
	gqlErr := resp.Errors[0]
	assert.Equal(t, "Student not found", gqlErr.Message)
	assert.Equal(t, "NOT_FOUND", gqlErr.Extensions["code"])
	assert.Contains(t, gqlErr.Extensions["hint"], "getAllStudents")
	assert.Equal(t, []interface{}{"updateStudent"}, gqlErr.Path)

	data := obj(resp.Data)
	assert.Nil(t, data["updateStudent"])
	assert.Equal(t, before, h.store.Students())
}

func TestCourseMutations(t *testing.T) {
	h := newHarness(t)

	data := h.ok(t, `mutation {
		addCourse(title: "Operating Systems", code: "CS310", credits: 3, instructor: "Dr. Omar") { id title students { id } }
	}`, nil)
	added := obj(data["addCourse"])
	assert.Equal(t, "3", added["id"])
	assert.Equal(t, []interface{}{}, added["students"])

	data = h.ok(t, `mutation {
		updateCourse(id: "3", title: "OS", code: "CS310", credits: 4, instructor: "Dr. Omar") { title credits }
	}`, nil)
	assert.Equal(t, map[string]interface{}{"title": "OS", "credits": 4}, obj(data["updateCourse"]))

	resp := h.do(t, `mutation { updateCourse(id: "77", title: "x", code: "x", credits: 1, instructor: "x") { id } }`, nil)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "Course not found", resp.Errors[0].Message)

	data = h.ok(t, `mutation { deleteCourse(id: "3") { title } again: deleteCourse(id: "3") { title } }`, nil)
	assert.Equal(t, "OS", obj(data["deleteCourse"])["title"])
	assert.Nil(t, data["again"])
}

func TestRelations_Seed(t *testing.T) {
	h := newHarness(t)

	data := h.ok(t, `{
		getStudent(id: "1") { courses { id title } }
		getCourse(id: "2") { students { id } }
	}`, nil)

	courses := list(obj(data["getStudent"])["courses"])
	assert.Equal(t, []interface{}{"1", "2"}, pluck(courses, "id"))
	assert.Equal(t, []interface{}{"Data Structures", "Database Systems"}, pluck(courses, "title"))

	students := list(obj(data["getCourse"])["students"])
	assert.Equal(t, []interface{}{"1", "2"}, pluck(students, "id"))
}

func TestRelations_Nested(t *testing.T) {
	h := newHarness(t)

	data := h.ok(t, `{ getStudent(id: "2") { courses { code students { name } } } }`, nil)
	courses := list(obj(data["getStudent"])["courses"])
	require.Len(t, courses, 1)
	assert.Equal(t, "CS301", obj(courses[0])["code"])
	assert.Equal(t, []interface{}{"Ahmed Hassan", "Fatma Ali"}, pluck(list(obj(courses[0])["students"]), "name"))
}

func TestDeleteCourse_DanglingEnrollment(t *testing.T) {
	h := newHarness(t)

	h.ok(t, `mutation { deleteCourse(id: "1") { id } }`, nil)

	resp := h.do(t, `{ getStudent(id: "1") { courses { id } } }`, nil)
	require.Empty(t, resp.Errors, "resolving a dangling reference must not error")
	assert.Equal(t, []interface{}{"2"}, pluck(list(obj(obj(resp.Data)["getStudent"])["courses"]), "id"))

	ids, _ := h.store.EnrolledCourseIDs("1")
	assert.Equal(t, []string{"1", "2"}, ids, "the reference itself stays")
}

func TestDeleteCourse_Cascade(t *testing.T) {
	h := newHarness(t, campus.WithCascadeCourseDelete(true))

	h.ok(t, `mutation { deleteCourse(id: "1") { id } }`, nil)

	ids, _ := h.store.EnrolledCourseIDs("1")
	assert.Equal(t, []string{"2"}, ids)
}

func TestEnrollment(t *testing.T) {
	h := newHarness(t)

	data := h.ok(t, `mutation { enrollStudent(studentId: "2", courseId: "1") { courses { id } } }`, nil)
	assert.Equal(t, []interface{}{"1", "2"}, pluck(list(obj(data["enrollStudent"])["courses"]), "id"))

	data = h.ok(t, `mutation { enrollStudent(studentId: "2", courseId: "1") { id } }`, nil)
	assert.Equal(t, "2", obj(data["enrollStudent"])["id"])
	ids, _ := h.store.EnrolledCourseIDs("2")
	assert.Equal(t, []string{"2", "1"}, ids, "enrolling twice is idempotent")

	data = h.ok(t, `mutation { unenrollStudent(studentId: "2", courseId: "2") { courses { id } } }`, nil)
	assert.Equal(t, []interface{}{"1"}, pluck(list(obj(data["unenrollStudent"])["courses"]), "id"))

	resp := h.do(t, `mutation { enrollStudent(studentId: "2", courseId: "9") { id } }`, nil)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "Course not found", resp.Errors[0].Message)
}

func TestResetData(t *testing.T) {
	h := newHarness(t)

	h.ok(t, `mutation { addStudent(name: "Tmp", email: "t@iti.edu", age: 20, major: "X") { id } }`, nil)
	h.ok(t, `mutation { deleteCourse(id: "2") { id } }`, nil)

	data := h.ok(t, `mutation { resetData }`, nil)
	assert.Equal(t, true, data["resetData"])
	assert.Equal(t, campus.DefaultSeed(), h.store.Snapshot())
}

func TestIDPolicyLength_ThroughGraphQL(t *testing.T) {
	h := newHarness(t, campus.WithIDPolicy(id.PolicyLength))

	h.ok(t, `mutation { deleteStudent(id: "1") { id } }`, nil)
	data := h.ok(t, `mutation { addStudent(name: "Clash", email: "c@iti.edu", age: 20, major: "X") { id } }`, nil)
	assert.Equal(t, "2", obj(data["addStudent"])["id"])

	data = h.ok(t, `{ getAllStudents { id name } }`, nil)
	assert.Equal(t, []interface{}{"2", "2"}, pluck(list(data["getAllStudents"]), "id"))
}

func TestSerialMutationsInOneRequest(t *testing.T) {
	h := newHarness(t)

	data := h.ok(t, `mutation {
		a: addStudent(name: "A", email: "a@iti.edu", age: 20, major: "X") { id }
		b: addStudent(name: "B", email: "b@iti.edu", age: 21, major: "X") { id }
		found: enrollStudent(studentId: "4", courseId: "1") { name }
	}`, nil)
	assert.Equal(t, "3", obj(data["a"])["id"])
	assert.Equal(t, "4", obj(data["b"])["id"])
	assert.Equal(t, "B", obj(data["found"])["name"])
}

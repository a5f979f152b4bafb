// Package id provides identifier assignment for registrar entities and
// request trace identifiers.
//
// Entity identifiers are decimal strings. Two assignment policies exist:
//
//   - Sequence: a monotonic counter that starts above the largest numeric id
//     already observed and never goes back, so ids stay unique after deletes.
//   - Length: the id is the collection length plus one. This reproduces the
//     behavior of the first registrar deployment and can hand out an id that
//     is still in use once an entity has been deleted.
//
// Allocators are not safe for concurrent use; the owning store serializes
// access under its own lock.
//
// TraceID returns a random UUID used to correlate log lines for one request.
package id

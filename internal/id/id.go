package id

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// Policy selects how new entity identifiers are assigned.
type Policy string

// Supported policies.
const (
	PolicySequence Policy = "sequence"
	PolicyLength   Policy = "length"
)

// ParsePolicy parses a policy name. The empty string selects PolicySequence.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", string(PolicySequence):
		return PolicySequence, nil
	case string(PolicyLength):
		return PolicyLength, nil
	default:
		return "", fmt.Errorf("unknown id policy %q (want %q or %q)", s, PolicySequence, PolicyLength)
	}
}

// Allocator assigns identifiers for a single collection.
type Allocator interface {
	// Next returns the id for a new entity. size is the current number of
	// entities in the collection.
	Next(size int) string
	// Observe records an id that already exists in the collection.
	Observe(id string)
	// Reset forgets everything observed or issued so far.
	Reset()
}

// NewAllocator returns an Allocator for the given policy.
// Unknown policies fall back to PolicySequence.
func NewAllocator(p Policy) Allocator {
	if p == PolicyLength {
		return &Length{}
	}
	return &Sequence{}
}

// Sequence issues strictly increasing ids.
type Sequence struct {
	last int
}

// Next implements Allocator.
func (s *Sequence) Next(_ int) string {
	s.last++
	return strconv.Itoa(s.last)
}

// Observe implements Allocator. Non-numeric ids are ignored.
func (s *Sequence) Observe(id string) {
	n, err := strconv.Atoi(id)
	if err != nil {
		return
	}
	if n > s.last {
		s.last = n
	}
}

// Reset implements Allocator.
func (s *Sequence) Reset() {
	s.last = 0
}

// Length issues len(collection)+1.
type Length struct{}

// Next implements Allocator.
func (Length) Next(size int) string {
	return strconv.Itoa(size + 1)
}

// Observe implements Allocator.
func (Length) Observe(string) {}

// Reset implements Allocator.
func (Length) Reset() {}

// TraceID returns a new random identifier for request correlation.
func TraceID() string {
	return uuid.NewString()
}

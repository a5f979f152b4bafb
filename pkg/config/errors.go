package config

import (
	"fmt"
	"strings"
)

// Problem is one violation found in a seed document.
type Problem struct {
	// Path is a JSON Pointer to the offending value ("" for the document root).
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (p Problem) String() string {
	path := p.Path
	if path == "" {
		path = "/"
	}
	return path + ": " + p.Message
}

// ValidationError lists every problem found in a seed document.
type ValidationError struct {
	// Source is the file the document came from, when known.
	Source   string
	Problems []Problem
}

func (e *ValidationError) add(path, message string) {
	e.Problems = append(e.Problems, Problem{Path: path, Message: message})
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	if e.Source != "" {
		fmt.Fprintf(&b, "%s: ", e.Source)
	}
	fmt.Fprintf(&b, "invalid seed document (%d problem", len(e.Problems))
	if len(e.Problems) != 1 {
		b.WriteString("s")
	}
	b.WriteString(")")
	for _, p := range e.Problems {
		b.WriteString("\n  ")
		b.WriteString(p.String())
	}
	return b.String()
}

// Code returns a machine-readable error code.
func (e *ValidationError) Code() string {
	return "INVALID_SEED"
}

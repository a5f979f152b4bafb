// Package config loads seed documents for the registrar store.
//
// A seed document lists students, courses and enrollments in YAML or JSON:
//
//	students:
//	  - id: "1"
//	    name: Ahmed Hassan
//	    email: ahmed@iti.edu
//	    age: 22
//	    major: Computer Science
//	courses:
//	  - id: "1"
//	    title: Data Structures
//	    code: CS201
//	    credits: 3
//	    instructor: Dr. Mohamed
//	enrollments:
//	  "1": ["1"]
//
// Documents are checked against the embedded SeedSchema before they are
// converted to a campus.Snapshot; every violation is reported in a
// ValidationError keyed by JSON Pointer.
package config

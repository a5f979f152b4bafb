package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/getmockd/registrar/pkg/campus"
)

// Common errors for seed loading/saving.
var (
	ErrFileNotFound     = errors.New("seed file not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidSyntax    = errors.New("invalid YAML/JSON syntax")
	ErrEmptyFile        = errors.New("seed file is empty")
)

// SeedSchema is the JSON Schema every seed document must satisfy.
//
//go:embed seed.schema.json
var SeedSchema string

const seedSchemaURL = "seed.schema.json"

var (
	seedSchemaOnce sync.Once
	seedSchema     *jsonschema.Schema
	seedSchemaErr  error
)

func compiledSeedSchema() (*jsonschema.Schema, error) {
	seedSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource(seedSchemaURL, strings.NewReader(SeedSchema)); err != nil {
			seedSchemaErr = fmt.Errorf("failed to add seed schema resource: %w", err)
			return
		}
		seedSchema, seedSchemaErr = compiler.Compile(seedSchemaURL)
	})
	return seedSchema, seedSchemaErr
}

// LoadSeedFile reads a seed document from a YAML or JSON file.
func LoadSeedFile(path string) (campus.Snapshot, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return campus.Snapshot{}, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		if os.IsPermission(err) {
			return campus.Snapshot{}, fmt.Errorf("%w: %s", ErrPermissionDenied, path)
		}
		return campus.Snapshot{}, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return campus.Snapshot{}, fmt.Errorf("path is a directory, not a file: %s", path)
	}

	file, err := os.Open(path)
	if err != nil {
		if os.IsPermission(err) {
			return campus.Snapshot{}, fmt.Errorf("%w: %s", ErrPermissionDenied, path)
		}
		return campus.Snapshot{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		return campus.Snapshot{}, fmt.Errorf("failed to read file: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return campus.Snapshot{}, fmt.Errorf("%w: %s", ErrEmptyFile, path)
	}

	snap, err := ParseSeed(data)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			verr.Source = path
			return campus.Snapshot{}, verr
		}
		return campus.Snapshot{}, fmt.Errorf("%s: %w", path, err)
	}
	return snap, nil
}

// ParseSeed parses a YAML or JSON seed document, validates it and converts it
// to a snapshot. Numeric ids are accepted and converted to strings.
func ParseSeed(data []byte) (campus.Snapshot, error) {
	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return campus.Snapshot{}, fmt.Errorf("%w: %v", ErrInvalidSyntax, err)
	}
	if raw == nil {
		return campus.Snapshot{}, ErrEmptyFile
	}

	doc, err := toJSONValue(normalizeYAML(raw))
	if err != nil {
		return campus.Snapshot{}, err
	}

	if err := ValidateSeedDocument(doc); err != nil {
		return campus.Snapshot{}, err
	}

	stringifyIDs(doc)
	encoded, err := json.Marshal(doc)
	if err != nil {
		return campus.Snapshot{}, fmt.Errorf("failed to encode seed: %w", err)
	}
	var snap campus.Snapshot
	if err := json.Unmarshal(encoded, &snap); err != nil {
		return campus.Snapshot{}, fmt.Errorf("failed to decode seed: %w", err)
	}
	if snap.Students == nil {
		snap.Students = []campus.Student{}
	}
	if snap.Courses == nil {
		snap.Courses = []campus.Course{}
	}
	if snap.Enrollments == nil {
		snap.Enrollments = map[string][]string{}
	}

	if err := checkSeed(snap); err != nil {
		return campus.Snapshot{}, err
	}
	return snap, nil
}

// ValidateSeedDocument validates a decoded JSON value against SeedSchema.
func ValidateSeedDocument(doc interface{}) error {
	schema, err := compiledSeedSchema()
	if err != nil {
		return err
	}
	if err := schema.Validate(doc); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			result := &ValidationError{}
			collectSchemaErrors(ve, result)
			return result
		}
		return err
	}
	return nil
}

// SaveSeedFile writes a snapshot as a seed document. The format follows the
// file extension (.yaml, .yml for YAML, otherwise JSON).
func SaveSeedFile(path string, snap campus.Snapshot) error {
	var data []byte
	var err error

	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".yaml" || ext == ".yml" {
		data, err = yaml.Marshal(snap)
	} else {
		data, err = json.MarshalIndent(snap, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal seed: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}
	return nil
}

// checkSeed reports problems the schema cannot express: duplicate ids.
func checkSeed(snap campus.Snapshot) error {
	result := &ValidationError{}

	seen := make(map[string]bool, len(snap.Students))
	for i, st := range snap.Students {
		if seen[st.ID] {
			result.add(fmt.Sprintf("/students/%d/id", i), fmt.Sprintf("duplicate student id %q", st.ID))
		}
		seen[st.ID] = true
	}

	seen = make(map[string]bool, len(snap.Courses))
	for i, c := range snap.Courses {
		if seen[c.ID] {
			result.add(fmt.Sprintf("/courses/%d/id", i), fmt.Sprintf("duplicate course id %q", c.ID))
		}
		seen[c.ID] = true
	}

	if len(result.Problems) > 0 {
		return result
	}
	return nil
}

func collectSchemaErrors(err *jsonschema.ValidationError, result *ValidationError) {
	if len(err.Causes) == 0 {
		result.add(err.InstanceLocation, err.Message)
		return
	}
	for _, cause := range err.Causes {
		collectSchemaErrors(cause, result)
	}
}

// normalizeYAML converts yaml.v3 maps with non-string keys (for example
// enrollment keys written as bare integers) into map[string]interface{}.
func normalizeYAML(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			out[k] = normalizeYAML(item)
		}
		return out
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			out[fmt.Sprint(k)] = normalizeYAML(item)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = normalizeYAML(item)
		}
		return out
	}
	return v
}

// toJSONValue round-trips v through encoding/json so the validator sees the
// same value types json.Unmarshal produces.
func toJSONValue(v interface{}) (interface{}, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("seed document is not representable as JSON: %w", err)
	}
	var out interface{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode seed document: %w", err)
	}
	return out, nil
}

// stringifyIDs rewrites numeric ids in a validated document as strings.
func stringifyIDs(doc interface{}) {
	root, ok := doc.(map[string]interface{})
	if !ok {
		return
	}
	for _, key := range []string{"students", "courses"} {
		items, _ := root[key].([]interface{})
		for _, item := range items {
			if m, ok := item.(map[string]interface{}); ok {
				m["id"] = idString(m["id"])
			}
		}
	}
	if enrollments, ok := root["enrollments"].(map[string]interface{}); ok {
		for _, ids := range enrollments {
			list, _ := ids.([]interface{})
			for i, v := range list {
				list[i] = idString(v)
			}
		}
	}
}

func idString(v interface{}) interface{} {
	switch val := v.(type) {
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	}
	return v
}

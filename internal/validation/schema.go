package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/goliatone/go-sitecms/internal/apperrors"
)

var (
	ErrSchemaInvalid = errors.New("validation: schema invalid")
	// ErrSchemaValidation is the validation-class cause of every payload error.
	ErrSchemaValidation = apperrors.Validation("PAYLOAD_INVALID", "validation: payload does not match schema")
)

// Issue is a single validation failure at a JSON pointer location.
type Issue struct {
	Location string `json:"location"`
	Message  string `json:"message"`
}

// PayloadError lists every schema violation found in a payload.
type PayloadError struct {
	Schema string
	Issues []Issue
}

func (e *PayloadError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		location := issue.Location
		if location == "" {
			location = "#"
		} else if !strings.HasPrefix(location, "#") {
			location = "#" + location
		}
		parts = append(parts, fmt.Sprintf("%s: %s", location, issue.Message))
	}
	if len(parts) == 0 {
		return ErrSchemaValidation.Error()
	}
	return e.Schema + ": " + strings.Join(parts, "; ")
}

func (e *PayloadError) Unwrap() error { return ErrSchemaValidation }

// Issues extracts validation issues from err.
func Issues(err error) []Issue {
	var payloadErr *PayloadError
	if errors.As(err, &payloadErr) {
		return payloadErr.Issues
	}
	if err == nil {
		return nil
	}
	return []Issue{{Message: err.Error()}}
}

// Schema is a compiled draft 2020-12 JSON schema.
type Schema struct {
	name     string
	compiled *jsonschema.Schema
}

// Compile compiles a schema expressed as a Go map.
func Compile(name string, schema map[string]any) (*Schema, error) {
	encoded, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSchemaInvalid, name, err)
	}
	resource := name + ".json"
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(resource, bytes.NewReader(encoded)); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSchemaInvalid, name, err)
	}
	compiled, err := compiler.Compile(resource)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSchemaInvalid, name, err)
	}
	return &Schema{name: name, compiled: compiled}, nil
}

// MustCompile is Compile for package level schemas.
func MustCompile(name string, schema map[string]any) *Schema {
	compiled, err := Compile(name, schema)
	if err != nil {
		panic(err)
	}
	return compiled
}

// Validate checks payload, which may be any JSON-marshalable value.
func (s *Schema) Validate(payload any) error {
	if s == nil || s.compiled == nil {
		return nil
	}
	doc, err := normalize(payload)
	if err != nil {
		return &PayloadError{Schema: s.name, Issues: []Issue{{Message: err.Error()}}}
	}
	if err := s.compiled.Validate(doc); err != nil {
		var validationErr *jsonschema.ValidationError
		if errors.As(err, &validationErr) {
			return &PayloadError{Schema: s.name, Issues: collect(validationErr)}
		}
		return &PayloadError{Schema: s.name, Issues: []Issue{{Message: err.Error()}}}
	}
	return nil
}

// normalize round trips payload through encoding/json so the validator sees
// plain maps, slices and numbers.
func normalize(payload any) (any, error) {
	switch payload.(type) {
	case map[string]any, []any, nil:
		return payload, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func collect(root *jsonschema.ValidationError) []Issue {
	var issues []Issue
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if node == nil {
			return
		}
		if len(node.Causes) == 0 {
			issues = append(issues, Issue{
				Location: strings.TrimSpace(node.InstanceLocation),
				Message:  strings.TrimSpace(node.Message),
			})
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(root)
	return issues
}

// Registry caches compiled schemas by name.
type Registry struct {
	mu      sync.RWMutex
	schemas map[string]*Schema
}

func NewRegistry() *Registry {
	return &Registry{schemas: make(map[string]*Schema)}
}

// Register compiles and stores a schema, replacing any previous one.
func (r *Registry) Register(name string, schema map[string]any) error {
	compiled, err := Compile(name, schema)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.schemas[name] = compiled
	r.mu.Unlock()
	return nil
}

// Validate checks payload against the named schema. Unknown names pass.
func (r *Registry) Validate(name string, payload any) error {
	r.mu.RLock()
	schema := r.schemas[name]
	r.mu.RUnlock()
	return schema.Validate(payload)
}

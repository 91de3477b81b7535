package gateways

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/sync/singleflight"

	"github.com/QuietWire-Civic-AI/dbom-core/internal/domain/entities"
	"github.com/QuietWire-Civic-AI/dbom-core/internal/domain/interfaces"
	"github.com/QuietWire-Civic-AI/dbom-core/schema"
)

// SchemaRegistry loads the attestation schema and compiles it once per identifier.
// Lifecycle: Load (or Register) at startup, then Validator/Validate from any goroutine.
type SchemaRegistry struct {
	id     string
	path   string
	logger interfaces.Logger

	mu       sync.RWMutex
	sources  map[string][]byte
	compiled map[string]*jsonschema.Schema
	versions map[string]uint64

	group    singleflight.Group
	compiles atomic.Int64
}

// RegistryOption configures a SchemaRegistry
type RegistryOption func(*SchemaRegistry)

// WithSchemaID overrides the identifier the schema is registered under
func WithSchemaID(id string) RegistryOption {
	return func(r *SchemaRegistry) {
		r.id = id
	}
}

// WithSchemaPath overrides the file Load reads
func WithSchemaPath(path string) RegistryOption {
	return func(r *SchemaRegistry) {
		r.path = path
	}
}

// WithRegistryLogger sets the logger for compile events
func WithRegistryLogger(logger interfaces.Logger) RegistryOption {
	return func(r *SchemaRegistry) {
		r.logger = interfaces.OrNoOp(logger)
	}
}

// NewSchemaRegistry creates an empty registry for the DBoM schema
func NewSchemaRegistry(opts ...RegistryOption) *SchemaRegistry {
	r := &SchemaRegistry{
		id:       schema.ID,
		path:     schema.DefaultPath,
		logger:   &interfaces.NoOpLogger{},
		sources:  make(map[string][]byte),
		compiled: make(map[string]*jsonschema.Schema),
		versions: make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SchemaID returns the identifier of the attestation schema
func (r *SchemaRegistry) SchemaID() string {
	return r.id
}

// Load reads the schema file and registers it under the registry's identifier
func (r *SchemaRegistry) Load() error {
	//nolint:gosec // G304: schema path is operator configuration
	data, err := os.ReadFile(r.path)
	if err != nil {
		return fmt.Errorf("%w: %v", entities.ErrSchemaLoad, err)
	}
	if err := r.Register(r.id, data); err != nil {
		return fmt.Errorf("%s: %w", r.path, err)
	}
	return nil
}

// LoadEmbedded registers the schema shipped with the module
func (r *SchemaRegistry) LoadEmbedded() error {
	return r.Register(r.id, schema.Default)
}

// Register stores a schema document under id. Registering an id again replaces
// the previous document and drops its compiled form.
func (r *SchemaRegistry) Register(id string, data []byte) error {
	if !json.Valid(data) {
		return fmt.Errorf("%w: schema %s is not valid JSON", entities.ErrSchemaLoad, id)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.compiled, id)
	r.sources[id] = bytes.Clone(data)
	r.versions[id]++
	return nil
}

// Validator returns the compiled attestation schema, compiling it on first use
func (r *SchemaRegistry) Validator() (*jsonschema.Schema, error) {
	return r.validatorFor(r.id)
}

func (r *SchemaRegistry) validatorFor(id string) (*jsonschema.Schema, error) {
	r.mu.RLock()
	compiled, ok := r.compiled[id]
	r.mu.RUnlock()
	if ok {
		return compiled, nil
	}

	// Concurrent first callers share one compilation
	v, err, _ := r.group.Do(id, func() (interface{}, error) {
		r.mu.RLock()
		if compiled, ok := r.compiled[id]; ok {
			r.mu.RUnlock()
			return compiled, nil
		}
		source, loaded := r.sources[id]
		version := r.versions[id]
		r.mu.RUnlock()

		if !loaded {
			return nil, fmt.Errorf("%w: schema %s was never loaded", entities.ErrSchemaLoad, id)
		}

		compiled, err := r.compile(id, source)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		if r.versions[id] == version {
			r.compiled[id] = compiled
		}
		r.mu.Unlock()
		return compiled, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*jsonschema.Schema), nil
}

func (r *SchemaRegistry) compile(id string, source []byte) (*jsonschema.Schema, error) {
	start := time.Now()
	r.compiles.Add(1)

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.AssertFormat = true

	if err := compiler.AddResource(id, bytes.NewReader(source)); err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrSchemaCompile, err)
	}
	compiled, err := compiler.Compile(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrSchemaCompile, err)
	}

	r.logger.Debug("schema compiled",
		interfaces.F("id", id),
		interfaces.F("duration", time.Since(start).String()),
	)
	return compiled, nil
}

// Validate runs a decoded JSON value against the compiled schema.
// Schema violations are returned in the result, never as an error.
func (r *SchemaRegistry) Validate(doc interface{}) (*entities.ValidationResult, error) {
	compiled, err := r.Validator()
	if err != nil {
		return nil, err
	}

	result := &entities.ValidationResult{Valid: true, Errors: []entities.ValidationError{}}

	err = compiled.Validate(doc)
	if err == nil {
		return result, nil
	}

	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return nil, fmt.Errorf("validator failed: %w", err)
	}

	result.Valid = false
	result.Errors = flattenErrors(verr)
	return result, nil
}

// flattenErrors turns the validator's error tree into leaf violations ordered by location
func flattenErrors(root *jsonschema.ValidationError) []entities.ValidationError {
	var out []entities.ValidationError

	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) > 0 {
			for _, cause := range e.Causes {
				walk(cause)
			}
			return
		}
		out = append(out, leafErrors(e)...)
	}
	walk(root)

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].SchemaPath < out[j].SchemaPath
	})
	return out
}

var quotedName = regexp.MustCompile(`'((?:[^'\\]|\\.)*)'`)

func leafErrors(e *jsonschema.ValidationError) []entities.ValidationError {
	rule := e.KeywordLocation
	if i := strings.LastIndex(rule, "/"); i >= 0 {
		rule = rule[i+1:]
	}

	if rule == "required" {
		// One violation per missing property, pointing at where it should be
		matches := quotedName.FindAllStringSubmatch(e.Message, -1)
		if len(matches) > 0 {
			out := make([]entities.ValidationError, 0, len(matches))
			for _, m := range matches {
				name := strings.ReplaceAll(m[1], `\'`, `'`)
				out = append(out, entities.ValidationError{
					Path:       e.InstanceLocation + "/" + escapePointer(name),
					Rule:       rule,
					SchemaPath: e.KeywordLocation,
					Message:    fmt.Sprintf("missing required property %q", name),
				})
			}
			return out
		}
	}

	return []entities.ValidationError{{
		Path:       e.InstanceLocation,
		Rule:       rule,
		SchemaPath: e.KeywordLocation,
		Message:    e.Message,
	}}
}

// escapePointer escapes a JSON pointer reference token (RFC 6901)
func escapePointer(token string) string {
	return strings.NewReplacer("~", "~0", "/", "~1").Replace(token)
}

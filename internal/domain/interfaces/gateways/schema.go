// Package gateways defines interfaces for infrastructure the domain depends on.
package gateways

import "github.com/QuietWire-Civic-AI/dbom-core/internal/domain/entities"

// SchemaGateway gives access to the compiled attestation schema
type SchemaGateway interface {
	// SchemaID returns the identifier the schema is registered under
	SchemaID() string

	// Validate runs a decoded JSON value (maps, slices, float64, string, bool, nil)
	// against the compiled schema. Schema violations are reported in the result;
	// the error is reserved for a missing or uncompilable schema.
	Validate(doc interface{}) (*entities.ValidationResult, error)
}

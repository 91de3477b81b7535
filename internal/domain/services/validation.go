// Package services implements domain business logic and use cases.
package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/QuietWire-Civic-AI/dbom-core/internal/domain/entities"
	"github.com/QuietWire-Civic-AI/dbom-core/internal/domain/interfaces/gateways"
	"github.com/QuietWire-Civic-AI/dbom-core/internal/domain/interfaces/services"
)

// validationService runs documents against the schema held by the gateway.
// It never mutates its input.
type validationService struct {
	schema gateways.SchemaGateway
}

// NewValidationService creates a validation service backed by a schema gateway
func NewValidationService(schema gateways.SchemaGateway) services.ValidationService {
	return &validationService{schema: schema}
}

// ValidateBytes parses data as JSON and validates the result
func (s *validationService) ValidateBytes(ctx context.Context, data []byte) (*entities.ValidationResult, error) {
	doc, err := DecodeJSON(data)
	if err != nil {
		return nil, err
	}
	return s.ValidateDocument(ctx, doc)
}

// ValidateDocument validates a decoded JSON value
func (s *validationService) ValidateDocument(_ context.Context, doc interface{}) (*entities.ValidationResult, error) {
	result, err := s.schema.Validate(doc)
	if err != nil {
		return nil, fmt.Errorf("validation against %s failed: %w", s.schema.SchemaID(), err)
	}
	return result, nil
}

// ValidateAttestation validates a typed attestation through its JSON encoding
func (s *validationService) ValidateAttestation(ctx context.Context, attestation *entities.Attestation) (*entities.ValidationResult, error) {
	if attestation == nil {
		return nil, fmt.Errorf("attestation cannot be nil")
	}

	data, err := json.Marshal(attestation)
	if err != nil {
		return nil, fmt.Errorf("failed to encode attestation: %w", err)
	}
	return s.ValidateBytes(ctx, data)
}

// DecodeJSON decodes data into a generic JSON value, reporting entities.ErrParse on failure
func DecodeJSON(data []byte) (interface{}, error) {
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrParse, err)
	}
	return doc, nil
}

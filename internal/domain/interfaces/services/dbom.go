// Package services defines interfaces for domain service contracts.
package services

import (
	"context"

	"github.com/QuietWire-Civic-AI/dbom-core/internal/domain/entities"
)

// ValidationService validates documents against the attestation schema
type ValidationService interface {
	// ValidateBytes parses data as JSON and validates it; invalid JSON yields entities.ErrParse
	ValidateBytes(ctx context.Context, data []byte) (*entities.ValidationResult, error)

	// ValidateDocument validates an already decoded JSON value
	ValidateDocument(ctx context.Context, doc interface{}) (*entities.ValidationResult, error)

	// ValidateAttestation validates a typed attestation
	ValidateAttestation(ctx context.Context, attestation *entities.Attestation) (*entities.ValidationResult, error)
}

// MappingService converts SPDX documents into attestations
type MappingService interface {
	// MapSPDX maps a parsed SPDX document; packageID selects the subject package
	MapSPDX(doc *entities.SPDXDocument, packageID string) (*entities.Attestation, error)

	// MapSPDXBytes parses and maps raw SPDX JSON
	MapSPDXBytes(data []byte, packageID string) (*entities.Attestation, error)
}

// QueryService filters attestation claims
type QueryService interface {
	// QueryClaims returns the claims matching q in document order
	QueryClaims(attestation *entities.Attestation, q entities.ClaimQuery) []entities.Claim
}

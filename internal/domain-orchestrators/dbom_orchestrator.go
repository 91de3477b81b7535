// Package orchestrators coordinates domain services into DBoM use cases.
package orchestrators

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/opencontainers/go-digest"

	"github.com/QuietWire-Civic-AI/dbom-core/internal/domain/entities"
	"github.com/QuietWire-Civic-AI/dbom-core/internal/domain/interfaces"
	"github.com/QuietWire-Civic-AI/dbom-core/internal/domain/interfaces/gateways"
	"github.com/QuietWire-Civic-AI/dbom-core/internal/domain/interfaces/repositories"
	"github.com/QuietWire-Civic-AI/dbom-core/internal/domain/interfaces/services"
)

// DBoMOrchestrator runs the decode -> map -> validate -> query pipeline.
// Parse and mapping failures come back as errors wrapping entities.ErrParse or
// entities.ErrMapping; schema violations come back as results.
type DBoMOrchestrator struct {
	validation services.ValidationService
	mapping    services.MappingService
	query      services.QueryService
	logger     interfaces.Logger
}

// NewDBoMOrchestrator creates a new orchestrator
func NewDBoMOrchestrator(
	validation services.ValidationService,
	mapping services.MappingService,
	query services.QueryService,
	logger interfaces.Logger,
) *DBoMOrchestrator {
	return &DBoMOrchestrator{
		validation: validation,
		mapping:    mapping,
		query:      query,
		logger:     interfaces.OrNoOp(logger),
	}
}

// QueryResult is the response shape of a claim query
type QueryResult struct {
	Count  int              `json:"count"`
	Claims []entities.Claim `json:"claims"`
}

// ConversionResult is a mapped attestation with its own validation outcome
type ConversionResult struct {
	Attestation *entities.Attestation      `json:"attestation"`
	Digest      digest.Digest              `json:"digest"`
	Valid       bool                       `json:"valid"`
	Errors      []entities.ValidationError `json:"errors"`
}

// DocumentReport is the validation outcome of one document in a batch
type DocumentReport struct {
	Path   string
	Result *entities.ValidationResult
	Err    error
}

// SignedAttestation is a canonical attestation and its detached signature
type SignedAttestation struct {
	Attestation *entities.Attestation
	Canonical   []byte
	Digest      digest.Digest
	Signature   []byte
	KeyID       string
}

// Validate validates a raw JSON document
func (o *DBoMOrchestrator) Validate(ctx context.Context, data []byte) (*entities.ValidationResult, error) {
	return o.validation.ValidateBytes(ctx, data)
}

// ValidateRepository validates every document in repo. A document that fails to
// read or parse is reported in its DocumentReport; only listing errors abort.
func (o *DBoMOrchestrator) ValidateRepository(ctx context.Context, repo repositories.DocumentRepository) ([]DocumentReport, error) {
	paths, err := repo.ListDocuments(ctx)
	if err != nil {
		return nil, err
	}

	reports := make([]DocumentReport, 0, len(paths))
	for _, path := range paths {
		reports = append(reports, o.ValidateDocument(ctx, repo, path))
	}
	return reports, nil
}

// ValidateDocument reads and validates a single document from repo
func (o *DBoMOrchestrator) ValidateDocument(ctx context.Context, repo repositories.DocumentRepository, path string) DocumentReport {
	report := DocumentReport{Path: path}

	data, err := repo.ReadDocument(ctx, path)
	if err != nil {
		report.Err = err
		return report
	}

	report.Result, report.Err = o.validation.ValidateBytes(ctx, data)
	if report.Err == nil {
		o.logger.Debug("document validated",
			interfaces.F("path", path),
			interfaces.F("valid", report.Result.Valid),
			interfaces.F("errors", len(report.Result.Errors)),
		)
	}
	return report
}

// Query decodes an attestation and filters its claims
func (o *DBoMOrchestrator) Query(_ context.Context, data []byte, q entities.ClaimQuery) (*QueryResult, error) {
	attestation, err := DecodeAttestation(data)
	if err != nil {
		return nil, err
	}

	claims := o.query.QueryClaims(attestation, q)
	return &QueryResult{Count: len(claims), Claims: claims}, nil
}

// Convert maps an SPDX document and, when validate is set, validates the result
func (o *DBoMOrchestrator) Convert(ctx context.Context, data []byte, packageID string, validate bool) (*ConversionResult, error) {
	attestation, err := o.mapping.MapSPDXBytes(data, packageID)
	if err != nil {
		return nil, err
	}

	d, err := attestation.Digest()
	if err != nil {
		return nil, err
	}

	result := &ConversionResult{
		Attestation: attestation,
		Digest:      d,
		Valid:       true,
		Errors:      []entities.ValidationError{},
	}

	if validate {
		validation, err := o.validation.ValidateAttestation(ctx, attestation)
		if err != nil {
			return nil, err
		}
		result.Valid = validation.Valid
		result.Errors = validation.Errors
	}

	o.logger.Debug("spdx converted",
		interfaces.F("claims", len(attestation.Claims)),
		interfaces.F("digest", d.String()),
	)
	return result, nil
}

// Sign canonicalizes an attestation and signs the canonical bytes
func (o *DBoMOrchestrator) Sign(_ context.Context, data []byte, signer gateways.Signer) (*SignedAttestation, error) {
	attestation, err := DecodeAttestation(data)
	if err != nil {
		return nil, err
	}

	canonical, err := attestation.Canonical()
	if err != nil {
		return nil, err
	}

	signature, err := signer.Sign(canonical)
	if err != nil {
		return nil, err
	}

	return &SignedAttestation{
		Attestation: attestation,
		Canonical:   canonical,
		Digest:      digest.FromBytes(canonical),
		Signature:   signature,
		KeyID:       signer.KeyID(),
	}, nil
}

// DecodeAttestation parses data into a typed attestation, reporting entities.ErrParse on failure
func DecodeAttestation(data []byte) (*entities.Attestation, error) {
	var attestation entities.Attestation
	if err := json.Unmarshal(data, &attestation); err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrParse, err)
	}
	return &attestation, nil
}

package orchestrators

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/QuietWire-Civic-AI/dbom-core/internal/domain/entities"
	"github.com/QuietWire-Civic-AI/dbom-core/internal/domain/services"
)

// Mock implementations

type mockValidationService struct {
	result *entities.ValidationResult
	err    error
	calls  int
}

func (m *mockValidationService) ValidateBytes(_ context.Context, data []byte) (*entities.ValidationResult, error) {
	m.calls++
	if _, err := services.DecodeJSON(data); err != nil {
		return nil, err
	}
	return m.result, m.err
}

func (m *mockValidationService) ValidateDocument(_ context.Context, _ interface{}) (*entities.ValidationResult, error) {
	m.calls++
	return m.result, m.err
}

func (m *mockValidationService) ValidateAttestation(_ context.Context, _ *entities.Attestation) (*entities.ValidationResult, error) {
	m.calls++
	return m.result, m.err
}

type mockDocumentRepository struct {
	docs    map[string][]byte
	order   []string
	listErr error
}

func (m *mockDocumentRepository) ListDocuments(_ context.Context) ([]string, error) {
	return m.order, m.listErr
}

func (m *mockDocumentRepository) ReadDocument(_ context.Context, path string) ([]byte, error) {
	data, ok := m.docs[path]
	if !ok {
		return nil, fmt.Errorf("read %s: not found", path)
	}
	return data, nil
}

type mockSigner struct {
	signed []byte
	err    error
}

func (m *mockSigner) Sign(data []byte) ([]byte, error) {
	m.signed = data
	if m.err != nil {
		return nil, m.err
	}
	return []byte("SIGNATURE"), nil
}

func (m *mockSigner) KeyID() string { return "ABCDEF" }

const spdxDoc = `{
  "spdxVersion": "SPDX-2.3",
  "creationInfo": {"created": "2025-01-02T03:04:05Z"},
  "packages": [
    {
      "SPDXID": "SPDXRef-A",
      "name": "left-pad",
      "externalRefs": [
        {"referenceCategory": "PACKAGE-MANAGER", "referenceType": "purl", "referenceLocator": "pkg:npm/left-pad@1.0.0"}
      ]
    }
  ],
  "relationships": [
    {"spdxElementId": "SPDXRef-A", "relatedSpdxElement": "SPDXRef-B", "relationshipType": "DEPENDS_ON"}
  ]
}`

const attestationDoc = `{
  "type": "attestation",
  "subject": {"artifact": {"purl": "pkg:npm/app@1.0.0"}},
  "claims": [
    {"predicate": "depends_on", "object": {"purl": "pkg:npm/lib@2.0.0"}, "label": "Reported", "confidence": 0.8},
    {"predicate": "built_by", "object": "ci:github", "label": "Verified", "confidence": 1}
  ],
  "provenance": {"issuer": "tool:test", "issued": "2025-01-02T03:04:05Z"}
}`

func newTestOrchestrator(t *testing.T, validation *mockValidationService) *DBoMOrchestrator {
	t.Helper()
	mapper, err := services.NewSPDXMapper(services.WithClock(func() time.Time {
		return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	}))
	require.NoError(t, err)
	return NewDBoMOrchestrator(validation, mapper, services.NewQueryService(), nil)
}

func validResult() *entities.ValidationResult {
	return &entities.ValidationResult{Valid: true, Errors: []entities.ValidationError{}}
}

func TestOrchestratorValidate(t *testing.T) {
	o := newTestOrchestrator(t, &mockValidationService{result: validResult()})

	result, err := o.Validate(context.Background(), []byte(attestationDoc))
	require.NoError(t, err)
	assert.True(t, result.Valid)

	_, err = o.Validate(context.Background(), []byte("{"))
	assert.True(t, errors.Is(err, entities.ErrParse))
}

func TestOrchestratorValidateRepository(t *testing.T) {
	repo := &mockDocumentRepository{
		order: []string{"a.json", "b.json", "missing.json"},
		docs: map[string][]byte{
			"a.json": []byte(attestationDoc),
			"b.json": []byte("not json"),
		},
	}
	o := newTestOrchestrator(t, &mockValidationService{result: validResult()})

	reports, err := o.ValidateRepository(context.Background(), repo)
	require.NoError(t, err)
	require.Len(t, reports, 3)

	assert.Equal(t, "a.json", reports[0].Path)
	assert.NoError(t, reports[0].Err)
	assert.True(t, reports[0].Result.Valid)

	assert.True(t, errors.Is(reports[1].Err, entities.ErrParse))
	assert.Error(t, reports[2].Err)
}

func TestOrchestratorValidateRepositoryListError(t *testing.T) {
	repo := &mockDocumentRepository{listErr: errors.New("permission denied")}
	o := newTestOrchestrator(t, &mockValidationService{result: validResult()})

	_, err := o.ValidateRepository(context.Background(), repo)
	assert.EqualError(t, err, "permission denied")
}

func TestOrchestratorQuery(t *testing.T) {
	o := newTestOrchestrator(t, &mockValidationService{})

	result, err := o.Query(context.Background(), []byte(attestationDoc), entities.ClaimQuery{Predicate: "depends_on"})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Count)
	assert.Equal(t, entities.PurlObject("pkg:npm/lib@2.0.0"), result.Claims[0].Object)

	result, err = o.Query(context.Background(), []byte(attestationDoc), entities.ClaimQuery{Predicate: "nope"})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Count)
	assert.NotNil(t, result.Claims)

	_, err = o.Query(context.Background(), []byte("[1,"), entities.ClaimQuery{})
	assert.True(t, errors.Is(err, entities.ErrParse))
}

func TestOrchestratorQueryReturnsClaimsUnchanged(t *testing.T) {
	o := newTestOrchestrator(t, &mockValidationService{})
	doc := `{"claims": [{"predicate": "contains", "object": {"name": "x", "version": "1"}, "note": "kept"}]}`

	result, err := o.Query(context.Background(), []byte(doc), entities.ClaimQuery{Predicate: "contains"})
	require.NoError(t, err)
	require.Equal(t, 1, result.Count)

	claim := result.Claims[0]
	assert.Nil(t, claim.Confidence)
	assert.False(t, claim.Object.IsPurl())

	data, err := json.Marshal(claim)
	require.NoError(t, err)
	assert.JSONEq(t, `{"predicate": "contains", "object": {"name": "x", "version": "1"}, "note": "kept"}`, string(data))
}

func TestOrchestratorQueryRejectsBadClaimObject(t *testing.T) {
	o := newTestOrchestrator(t, &mockValidationService{})

	_, err := o.Query(context.Background(), []byte(`{"claims": [{"predicate": "p", "object": 42}]}`), entities.ClaimQuery{})
	assert.True(t, errors.Is(err, entities.ErrParse))
}

func TestOrchestratorConvert(t *testing.T) {
	validation := &mockValidationService{result: validResult()}
	o := newTestOrchestrator(t, validation)

	result, err := o.Convert(context.Background(), []byte(spdxDoc), "", false)
	require.NoError(t, err)
	assert.Equal(t, 0, validation.calls)
	assert.True(t, result.Valid)
	assert.Equal(t, "pkg:npm/left-pad@1.0.0", result.Attestation.Subject.Artifact.Purl)
	assert.Equal(t, "2025-01-02T03:04:05Z", result.Attestation.Provenance.Issued)

	canonical, err := result.Attestation.Canonical()
	require.NoError(t, err)
	assert.Equal(t, digest.FromBytes(canonical), result.Digest)
}

func TestOrchestratorConvertWithValidation(t *testing.T) {
	invalid := &entities.ValidationResult{
		Valid:  false,
		Errors: []entities.ValidationError{{Path: "/provenance/issued", Rule: "format", Message: "bad"}},
	}
	validation := &mockValidationService{result: invalid}
	o := newTestOrchestrator(t, validation)

	result, err := o.Convert(context.Background(), []byte(spdxDoc), "", true)
	require.NoError(t, err)
	assert.Equal(t, 1, validation.calls)
	assert.False(t, result.Valid)
	assert.Len(t, result.Errors, 1)
}

func TestOrchestratorConvertErrors(t *testing.T) {
	o := newTestOrchestrator(t, &mockValidationService{result: validResult()})

	_, err := o.Convert(context.Background(), []byte("{"), "", false)
	assert.True(t, errors.Is(err, entities.ErrParse))

	_, err = o.Convert(context.Background(), []byte(`{"packages": {}}`), "", false)
	assert.True(t, errors.Is(err, entities.ErrMapping))

	failing := newTestOrchestrator(t, &mockValidationService{err: errors.New("schema unavailable")})
	_, err = failing.Convert(context.Background(), []byte(spdxDoc), "", true)
	assert.EqualError(t, err, "schema unavailable")
}

func TestOrchestratorSign(t *testing.T) {
	o := newTestOrchestrator(t, &mockValidationService{})
	signer := &mockSigner{}

	signed, err := o.Sign(context.Background(), []byte(attestationDoc), signer)
	require.NoError(t, err)

	assert.Equal(t, signed.Canonical, signer.signed)
	assert.Equal(t, []byte("SIGNATURE"), signed.Signature)
	assert.Equal(t, "ABCDEF", signed.KeyID)
	assert.Equal(t, digest.FromBytes(signed.Canonical), signed.Digest)
	assert.Contains(t, string(signed.Canonical), `"claims":[`)
}

func TestOrchestratorSignErrors(t *testing.T) {
	o := newTestOrchestrator(t, &mockValidationService{})

	_, err := o.Sign(context.Background(), []byte("nope"), &mockSigner{})
	assert.True(t, errors.Is(err, entities.ErrParse))

	signingErr := fmt.Errorf("%w: locked key", entities.ErrSigning)
	_, err = o.Sign(context.Background(), []byte(attestationDoc), &mockSigner{err: signingErr})
	assert.True(t, errors.Is(err, entities.ErrSigning))
}

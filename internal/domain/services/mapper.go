package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/opencontainers/go-digest"

	"github.com/QuietWire-Civic-AI/dbom-core/internal/domain/entities"
	"github.com/QuietWire-Civic-AI/dbom-core/internal/domain/interfaces/services"
)

// Predicates of the normalized vocabulary
const (
	PredicateContains    = "contains"
	PredicateDependsOn   = "depends_on"
	PredicateDerivesFrom = "derives_from"
	PredicateRelated     = "related"
)

var predicateTable = map[string]string{
	"CONTAINS":      PredicateContains,
	"CONTAINED_BY":  PredicateContains,
	"DEPENDS_ON":    PredicateDependsOn,
	"ANCESTOR_OF":   PredicateDerivesFrom,
	"DESCENDANT_OF": PredicateDerivesFrom,
}

// spdxMapper implements MappingService as a pure transformation.
// The clock is the only source of non-determinism.
type spdxMapper struct {
	policy entities.MappingPolicy
	now    func() time.Time
}

// MapperOption configures the SPDX mapper
type MapperOption func(*spdxMapper)

// WithClock fixes the clock used when a document has no creation timestamp
func WithClock(now func() time.Time) MapperOption {
	return func(m *spdxMapper) {
		m.now = now
	}
}

// WithPolicy replaces the default mapping policy
func WithPolicy(policy entities.MappingPolicy) MapperOption {
	return func(m *spdxMapper) {
		m.policy = policy
	}
}

// NewSPDXMapper creates a mapper. The policy is validated once here.
func NewSPDXMapper(opts ...MapperOption) (services.MappingService, error) {
	m := &spdxMapper{
		policy: entities.DefaultMappingPolicy(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}

	if err := m.policy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid mapping policy: %w", err)
	}
	return m, nil
}

// MapSPDXBytes parses raw SPDX JSON and maps it
func (m *spdxMapper) MapSPDXBytes(data []byte, packageID string) (*entities.Attestation, error) {
	doc, err := decodeSPDX(data)
	if err != nil {
		return nil, err
	}
	return m.MapSPDX(doc, packageID)
}

// MapSPDX transforms one SPDX document into one attestation.
// An empty packageID, or one that matches no package, selects the first package.
func (m *spdxMapper) MapSPDX(doc *entities.SPDXDocument, packageID string) (*entities.Attestation, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: document is nil", entities.ErrMapping)
	}

	pkg := selectPackage(doc.Packages, packageID)

	attestation := &entities.Attestation{
		Type:       entities.AttestationType,
		Claims:     m.deriveClaims(doc, pkg),
		Provenance: m.provenance(doc),
	}

	if pkg != nil {
		attestation.Subject.Artifact = entities.Artifact{
			Purl:   purlFromExternalRefs(pkg.ExternalRefs),
			Digest: m.digests(pkg.Checksums),
		}
	}

	return attestation, nil
}

func selectPackage(pkgs []entities.SPDXPackage, packageID string) *entities.SPDXPackage {
	if len(pkgs) == 0 {
		return nil
	}
	if packageID != "" {
		if pkg := findPackage(pkgs, packageID); pkg != nil {
			return pkg
		}
	}
	return &pkgs[0]
}

func findPackage(pkgs []entities.SPDXPackage, spdxID string) *entities.SPDXPackage {
	for i := range pkgs {
		if pkgs[i].SPDXID == spdxID {
			return &pkgs[i]
		}
	}
	return nil
}

// purlFromExternalRefs returns the locator of the first purl reference
func purlFromExternalRefs(refs []entities.SPDXExternalRef) string {
	for _, ref := range refs {
		if strings.EqualFold(ref.ReferenceType, "purl") && ref.ReferenceLocator != "" {
			return ref.ReferenceLocator
		}
	}
	return ""
}

// NormalizeDigestAlgorithm lowercases an SPDX algorithm name and strips separators ("SHA-256" -> "sha256")
func NormalizeDigestAlgorithm(name string) digest.Algorithm {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.NewReplacer("-", "", "_", "").Replace(name)
	return digest.Algorithm(name)
}

func (m *spdxMapper) digests(checksums []entities.SPDXChecksum) map[string]string {
	out := make(map[string]string)
	for _, c := range checksums {
		alg := NormalizeDigestAlgorithm(c.Algorithm)
		if !m.policy.AllowsDigest(alg) {
			continue
		}

		value := c.ChecksumValue
		if m.policy.StrictDigests {
			value = strings.ToLower(value)
			if err := alg.Validate(value); err != nil {
				continue
			}
		}
		out[alg.String()] = value
	}

	if len(out) == 0 {
		return nil
	}
	return out
}

func (m *spdxMapper) deriveClaims(doc *entities.SPDXDocument, pkg *entities.SPDXPackage) []entities.Claim {
	claims := make([]entities.Claim, 0)
	// Without an SPDXID no relationship can name the package as its source
	if pkg == nil || pkg.SPDXID == "" {
		return claims
	}

	for _, rel := range doc.Relationships {
		if rel.RelatedSPDXElement == "" || rel.Source() != pkg.SPDXID {
			continue
		}

		claims = append(claims, entities.Claim{
			Predicate:  NormalizePredicate(rel.RelationshipType),
			Object:     resolveObject(doc.Packages, rel.RelatedSPDXElement),
			Label:      m.policy.Label,
			Confidence: entities.Confidence(m.policy.Confidence),
		})
	}

	return claims
}

// NormalizePredicate maps an SPDX relationship type onto the claim vocabulary.
// Unknown types pass through lowercased.
func NormalizePredicate(relationshipType string) string {
	t := strings.ToUpper(strings.TrimSpace(relationshipType))
	if t == "" {
		return PredicateRelated
	}
	if predicate, ok := predicateTable[t]; ok {
		return predicate
	}
	return strings.ToLower(t)
}

// resolveObject prefers the target package's purl, then its name, then the raw element id
func resolveObject(pkgs []entities.SPDXPackage, related string) entities.ClaimObject {
	target := findPackage(pkgs, related)
	if target == nil {
		return entities.IDObject(related)
	}

	if purl := purlFromExternalRefs(target.ExternalRefs); entities.IsPurl(purl) {
		return entities.PurlObject(purl)
	}
	if name := target.DisplayName(); name != "" {
		return entities.IDObject(name)
	}
	return entities.IDObject(related)
}

func (m *spdxMapper) provenance(doc *entities.SPDXDocument) entities.Provenance {
	p := entities.Provenance{
		Issuer: m.policy.UnknownIssuer,
		Source: doc.DocumentNamespace,
	}

	if info := doc.CreationInfo; info != nil {
		if len(info.Creators) > 0 && info.Creators[0] != "" {
			p.Issuer = info.Creators[0]
		}
		p.Issued = info.Created
	}
	if p.Issued == "" {
		p.Issued = m.now().UTC().Format(time.RFC3339)
	}

	return p
}

// decodeSPDX checks the document shape before decoding into typed records,
// so type mismatches surface as ErrMapping rather than partial results.
func decodeSPDX(data []byte) (*entities.SPDXDocument, error) {
	var generic interface{}
	if err := json.Unmarshal(data, &generic); err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrParse, err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return nil, fmt.Errorf("%w: document must be a JSON object", entities.ErrMapping)
	}

	for _, key := range []string{"packages", "relationships"} {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		raw = bytes.TrimSpace(raw)
		if !bytes.Equal(raw, []byte("null")) && (len(raw) == 0 || raw[0] != '[') {
			return nil, fmt.Errorf("%w: %s must be an array", entities.ErrMapping, key)
		}
	}

	var doc entities.SPDXDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrMapping, err)
	}
	return &doc, nil
}

package services

import (
	"github.com/QuietWire-Civic-AI/dbom-core/internal/domain/entities"
	"github.com/QuietWire-Civic-AI/dbom-core/internal/domain/interfaces/services"
)

// queryService filters claims without touching the attestation
type queryService struct{}

// NewQueryService creates a claim query service
func NewQueryService() services.QueryService {
	return &queryService{}
}

// QueryClaims returns the ordered subsequence of claims matching q.
// Predicates compare exactly; a purl matches the subject's purl or the claim object's purl.
// No match yields an empty, non-nil slice.
func (s *queryService) QueryClaims(attestation *entities.Attestation, q entities.ClaimQuery) []entities.Claim {
	matched := make([]entities.Claim, 0)
	if attestation == nil {
		return matched
	}

	subjectMatches := q.Purl != "" && attestation.Subject.Artifact.Purl == q.Purl

	for _, claim := range attestation.Claims {
		if q.Predicate != "" && claim.Predicate != q.Predicate {
			continue
		}
		if q.Purl != "" && !subjectMatches && claim.Object.Purl != q.Purl {
			continue
		}
		matched = append(matched, claim)
	}

	return matched
}

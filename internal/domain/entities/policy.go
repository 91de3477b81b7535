package entities

import (
	"fmt"
	"math"

	"github.com/opencontainers/go-digest"
)

// Mapping defaults
const (
	DefaultConfidence    = 0.8
	DefaultLabel         = "Reported"
	DefaultUnknownIssuer = "spdx:unknown"
)

// MappingPolicy holds the SPDX mapping choices that drafts disagreed on
type MappingPolicy struct {
	DigestAlgorithms []digest.Algorithm // retained checksum algorithms
	Confidence       float64
	Label            string
	UnknownIssuer    string
	StrictDigests    bool // drop checksum values that are not valid hex for their algorithm
}

// DefaultMappingPolicy returns the canonical policy: sha256/384/512, "Reported", 0.8
func DefaultMappingPolicy() MappingPolicy {
	return MappingPolicy{
		DigestAlgorithms: []digest.Algorithm{digest.SHA256, digest.SHA384, digest.SHA512},
		Confidence:       DefaultConfidence,
		Label:            DefaultLabel,
		UnknownIssuer:    DefaultUnknownIssuer,
	}
}

// Validate checks the policy invariants
func (p MappingPolicy) Validate() error {
	if math.IsNaN(p.Confidence) || p.Confidence < 0 || p.Confidence > 1 {
		return fmt.Errorf("confidence %v out of range [0, 1]", p.Confidence)
	}
	if p.Label == "" {
		return fmt.Errorf("label cannot be empty")
	}
	if p.UnknownIssuer == "" {
		return fmt.Errorf("unknown issuer cannot be empty")
	}
	for _, alg := range p.DigestAlgorithms {
		if !alg.Available() {
			return fmt.Errorf("unsupported digest algorithm %q", alg)
		}
	}
	return nil
}

// AllowsDigest reports whether checksums of the given normalized algorithm are retained
func (p MappingPolicy) AllowsDigest(alg digest.Algorithm) bool {
	for _, allowed := range p.DigestAlgorithms {
		if allowed == alg {
			return true
		}
	}
	return false
}

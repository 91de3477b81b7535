// Package yaml provides YAML-backed mapping policy parsing and document loading.
package yaml

import (
	"fmt"
	"os"

	"github.com/opencontainers/go-digest"
	"gopkg.in/yaml.v3"

	"github.com/QuietWire-Civic-AI/dbom-core/internal/domain/entities"
	"github.com/QuietWire-Civic-AI/dbom-core/internal/domain/services"
)

// yamlPolicy represents the raw YAML structure of a mapping policy file
type yamlPolicy struct {
	DigestAlgorithms []string `yaml:"digest_algorithms"`
	Confidence       *float64 `yaml:"confidence"`
	Label            string   `yaml:"label"`
	UnknownIssuer    string   `yaml:"unknown_issuer"`
	StrictDigests    bool     `yaml:"strict_digests"`
}

// PolicyParser parses YAML mapping policy files
type PolicyParser struct{}

// NewPolicyParser creates a new YAML policy parser
func NewPolicyParser() *PolicyParser {
	return &PolicyParser{}
}

// ParseFile parses a YAML policy file into a MappingPolicy
func (p *PolicyParser) ParseFile(filePath string) (entities.MappingPolicy, error) {
	//nolint:gosec // G304: filePath is operator-supplied policy configuration
	data, err := os.ReadFile(filePath)
	if err != nil {
		return entities.MappingPolicy{}, fmt.Errorf("failed to read file %s: %w", filePath, err)
	}

	return p.Parse(data)
}

// Parse parses YAML bytes into a MappingPolicy. Absent fields keep their defaults.
func (p *PolicyParser) Parse(data []byte) (entities.MappingPolicy, error) {
	var raw yamlPolicy
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return entities.MappingPolicy{}, fmt.Errorf("failed to parse YAML: %w", err)
	}

	policy := entities.DefaultMappingPolicy()
	if raw.DigestAlgorithms != nil {
		policy.DigestAlgorithms = convertAlgorithms(raw.DigestAlgorithms)
	}
	if raw.Confidence != nil {
		policy.Confidence = *raw.Confidence
	}
	if raw.Label != "" {
		policy.Label = raw.Label
	}
	if raw.UnknownIssuer != "" {
		policy.UnknownIssuer = raw.UnknownIssuer
	}
	policy.StrictDigests = raw.StrictDigests

	if err := policy.Validate(); err != nil {
		return entities.MappingPolicy{}, fmt.Errorf("invalid policy: %w", err)
	}

	return policy, nil
}

// convertAlgorithms normalizes names the same way SPDX checksums are normalized
func convertAlgorithms(names []string) []digest.Algorithm {
	algs := make([]digest.Algorithm, 0, len(names))
	for _, name := range names {
		algs = append(algs, services.NormalizeDigestAlgorithm(name))
	}
	return algs
}

package yaml

import (
	"testing"
)

// FuzzPolicyParser checks the policy parser never panics and never
// returns a policy that violates its invariants.
//
// Run with: go test -fuzz=FuzzPolicyParser -fuzztime=30s
func FuzzPolicyParser(f *testing.F) {
	f.Add([]byte(`digest_algorithms: [sha256, sha384, sha512]
confidence: 0.8
label: Reported
unknown_issuer: spdx:unknown
`))
	f.Add([]byte(``))
	f.Add([]byte(`{}`))
	f.Add([]byte(`[]`))
	f.Add([]byte(`confidence: -1`))
	f.Add([]byte(`digest_algorithms: SHA-256`))
	f.Add([]byte(`label: a\nlabel: b`))

	parser := NewPolicyParser()

	f.Fuzz(func(t *testing.T, data []byte) {
		policy, err := parser.Parse(data)
		if err != nil {
			return
		}
		if policy.Confidence < 0 || policy.Confidence > 1 {
			t.Errorf("accepted confidence %v", policy.Confidence)
		}
		if policy.Label == "" {
			t.Error("accepted empty label")
		}
	})
}

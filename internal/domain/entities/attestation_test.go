package entities

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaimObjectJSON(t *testing.T) {
	tests := []struct {
		name string
		obj  ClaimObject
		want string
	}{
		{name: "purl object", obj: PurlObject("pkg:npm/left-pad@1.0.0"), want: `{"purl":"pkg:npm/left-pad@1.0.0"}`},
		{name: "identifier", obj: IDObject("SPDXRef-B"), want: `"SPDXRef-B"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.obj)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(data))

			var decoded ClaimObject
			require.NoError(t, json.Unmarshal(data, &decoded))
			assert.Equal(t, tt.obj, decoded)
		})
	}
}

func TestClaimObjectUnmarshalRejectsNumbers(t *testing.T) {
	var obj ClaimObject
	err := json.Unmarshal([]byte(`42`), &obj)
	assert.Error(t, err)
}

func TestClaimObjectKeepsOtherObjects(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantPurl string
		wantStr  string
	}{
		{name: "object without purl", input: `{"name": "x", "version": "1"}`, wantStr: `{"name":"x","version":"1"}`},
		{name: "purl with extra keys", input: `{"purl": "pkg:npm/a@1", "scope": "dev"}`, wantPurl: "pkg:npm/a@1", wantStr: `{"purl":"pkg:npm/a@1","scope":"dev"}`},
		{name: "non-string purl", input: `{"purl": 7}`, wantStr: `{"purl":7}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var obj ClaimObject
			require.NoError(t, json.Unmarshal([]byte(tt.input), &obj))
			assert.Equal(t, tt.wantPurl, obj.Purl)
			assert.Equal(t, tt.wantStr, obj.String())

			data, err := json.Marshal(obj)
			require.NoError(t, err)
			assert.JSONEq(t, tt.input, string(data))
		})
	}
}

func TestClaimObjectUnmarshalRejectsNonObjects(t *testing.T) {
	for _, input := range []string{`null`, `[1]`, `true`} {
		var obj ClaimObject
		assert.Error(t, json.Unmarshal([]byte(input), &obj), input)
	}
}

func TestClaimRoundTripIsLossless(t *testing.T) {
	input := `{"predicate":"contains","object":{"name":"x","version":"1"},"note":"kept","weight":[1,2]}`

	var claim Claim
	require.NoError(t, json.Unmarshal([]byte(input), &claim))
	assert.Nil(t, claim.Confidence)
	assert.Equal(t, "", claim.Label)
	assert.Len(t, claim.Extra, 2)

	data, err := json.Marshal(claim)
	require.NoError(t, err)
	assert.JSONEq(t, input, string(data))
}

func TestClaimKeepsExplicitZeroConfidence(t *testing.T) {
	var claim Claim
	require.NoError(t, json.Unmarshal([]byte(`{"predicate":"p","object":"o","confidence":0}`), &claim))
	require.NotNil(t, claim.Confidence)
	assert.Equal(t, 0.0, *claim.Confidence)

	data, err := json.Marshal(claim)
	require.NoError(t, err)
	assert.JSONEq(t, `{"predicate":"p","object":"o","confidence":0}`, string(data))
}

func TestCanonicalSortsKeys(t *testing.T) {
	att := &Attestation{
		Type: AttestationType,
		Subject: Subject{Artifact: Artifact{
			Purl:   "pkg:npm/left-pad@1.0.0",
			Digest: map[string]string{"sha512": "bb", "sha256": "aa"},
		}},
		Claims: []Claim{
			{Predicate: "depends_on", Object: IDObject("SPDXRef-B"), Label: "Reported", Confidence: Confidence(0.8)},
		},
		Provenance: Provenance{Issuer: "tool:test", Issued: "2024-01-01T00:00:00Z"},
	}

	data, err := att.Canonical()
	require.NoError(t, err)

	got := string(data)
	assert.NotContains(t, got, " ")
	assert.True(t, strings.Index(got, `"claims"`) < strings.Index(got, `"provenance"`))
	assert.True(t, strings.Index(got, `"provenance"`) < strings.Index(got, `"subject"`))
	assert.True(t, strings.Index(got, `"subject"`) < strings.Index(got, `"type"`))

	d, err := att.Digest()
	require.NoError(t, err)
	assert.Equal(t, digest.SHA256, d.Algorithm())
	assert.Equal(t, digest.FromBytes(data), d)
}

func TestIsPurl(t *testing.T) {
	assert.True(t, IsPurl("pkg:npm/left-pad@1.0.0"))
	assert.True(t, IsPurl("pkg:maven/org.apache/commons-lang3@3.12.0?type=jar"))
	assert.False(t, IsPurl(""))
	assert.False(t, IsPurl("left-pad"))
	assert.False(t, IsPurl("SPDXRef-B"))
}

func TestMappingPolicyValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *MappingPolicy)
		wantErr bool
	}{
		{name: "default", mutate: func(_ *MappingPolicy) {}},
		{name: "confidence above one", mutate: func(p *MappingPolicy) { p.Confidence = 1.5 }, wantErr: true},
		{name: "negative confidence", mutate: func(p *MappingPolicy) { p.Confidence = -0.1 }, wantErr: true},
		{name: "empty label", mutate: func(p *MappingPolicy) { p.Label = "" }, wantErr: true},
		{name: "empty issuer", mutate: func(p *MappingPolicy) { p.UnknownIssuer = "" }, wantErr: true},
		{name: "unknown algorithm", mutate: func(p *MappingPolicy) {
			p.DigestAlgorithms = append(p.DigestAlgorithms, digest.Algorithm("md5"))
		}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultMappingPolicy()
			tt.mutate(&p)
			err := p.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMappingPolicyAllowsDigest(t *testing.T) {
	p := DefaultMappingPolicy()
	assert.True(t, p.AllowsDigest(digest.SHA256))
	assert.True(t, p.AllowsDigest(digest.SHA512))
	assert.False(t, p.AllowsDigest(digest.Algorithm("md5")))
	assert.False(t, p.AllowsDigest(digest.Algorithm("sha1")))
}

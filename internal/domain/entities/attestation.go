// Package entities defines core domain models and data structures.
package entities

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/opencontainers/go-digest"
)

// AttestationType is the fixed discriminator of a DBoM document
const AttestationType = "attestation"

// Attestation is a DBoM document: claims about a subject artifact and its relationships
type Attestation struct {
	ID         string            `json:"id,omitempty"`
	Type       string            `json:"type"`
	Subject    Subject           `json:"subject"`
	Claims     []Claim           `json:"claims"`
	Provenance Provenance        `json:"provenance"`
	Events     []json.RawMessage `json:"events,omitempty"`
	Evidence   []json.RawMessage `json:"evidence,omitempty"`
}

// Subject identifies what the attestation is about
type Subject struct {
	Artifact Artifact `json:"artifact"`
}

// Artifact holds the identifiers of the subject. Both fields are optional.
type Artifact struct {
	Purl   string            `json:"purl,omitempty"`
	Digest map[string]string `json:"digest,omitempty"` // normalized algorithm -> hex
}

// Claim is one assertion within an attestation.
// Confidence is nil when the document does not state one. Fields outside the
// known set are kept in Extra and written back on encoding.
type Claim struct {
	Predicate  string                     `json:"predicate"`
	Object     ClaimObject                `json:"object"`
	Label      string                     `json:"label,omitempty"`
	Confidence *float64                   `json:"confidence,omitempty"`
	Extra      map[string]json.RawMessage `json:"-"`
}

var claimFields = []string{"predicate", "object", "label", "confidence"}

// Confidence returns a pointer to v for use in Claim literals
func Confidence(v float64) *float64 {
	return &v
}

// UnmarshalJSON decodes the known fields and keeps everything else in Extra
func (c *Claim) UnmarshalJSON(data []byte) error {
	type plain Claim
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	for _, key := range claimFields {
		delete(fields, key)
	}
	if len(fields) > 0 {
		p.Extra = fields
	}

	*c = Claim(p)
	return nil
}

// MarshalJSON encodes the known fields merged with Extra
func (c Claim) MarshalJSON() ([]byte, error) {
	type plain Claim
	data, err := json.Marshal(plain(c))
	if err != nil || len(c.Extra) == 0 {
		return data, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	for key, value := range c.Extra {
		if _, known := fields[key]; !known {
			fields[key] = value
		}
	}
	return json.Marshal(fields)
}

// Provenance describes who produced the attestation and when
type Provenance struct {
	Issuer      string   `json:"issuer"`
	Issued      string   `json:"issued"`
	Source      string   `json:"source,omitempty"`
	Method      string   `json:"method,omitempty"`
	Reviewer    string   `json:"reviewer,omitempty"`
	Uncertainty *float64 `json:"uncertainty,omitempty"`
}

// ClaimObject is either an opaque identifier string or an object.
// Objects of the form {"purl": ...} set only Purl. Any other object is kept
// verbatim in Raw, with Purl set when it carries a string purl.
type ClaimObject struct {
	Purl string
	ID   string
	Raw  json.RawMessage
}

// PurlObject returns a claim object referencing a package URL
func PurlObject(purl string) ClaimObject {
	return ClaimObject{Purl: purl}
}

// IDObject returns a claim object holding an opaque identifier
func IDObject(id string) ClaimObject {
	return ClaimObject{ID: id}
}

// IsPurl reports whether the object references a package URL
func (o ClaimObject) IsPurl() bool {
	return o.Purl != ""
}

// String renders the object the way the query CLI prints it: identifiers
// verbatim, objects as compact JSON
func (o ClaimObject) String() string {
	if o.Raw != nil {
		var buf bytes.Buffer
		if err := json.Compact(&buf, o.Raw); err == nil {
			return buf.String()
		}
		return string(o.Raw)
	}
	if o.IsPurl() {
		data, _ := o.MarshalJSON()
		return string(data)
	}
	return o.ID
}

// MarshalJSON encodes the object as it was read, as {"purl": ...}, or as a bare string
func (o ClaimObject) MarshalJSON() ([]byte, error) {
	if o.Raw != nil {
		return o.Raw, nil
	}
	if o.IsPurl() {
		return json.Marshal(struct {
			Purl string `json:"purl"`
		}{Purl: o.Purl})
	}
	return json.Marshal(o.ID)
}

// UnmarshalJSON accepts a string or an object. Other JSON values are rejected.
func (o *ClaimObject) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("claim object is empty")
	}

	switch data[0] {
	case '"':
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*o = ClaimObject{ID: id}
		return nil
	case '{':
	default:
		return fmt.Errorf("claim object must be a string or an object, got %s", data)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("claim object: %w", err)
	}

	var purl string
	if raw, ok := fields["purl"]; ok {
		// A non-string purl is kept only in Raw
		_ = json.Unmarshal(raw, &purl)
	}

	if purl != "" && len(fields) == 1 {
		*o = ClaimObject{Purl: purl}
		return nil
	}
	*o = ClaimObject{Purl: purl, Raw: append(json.RawMessage(nil), data...)}
	return nil
}

// Canonical returns the attestation as JSON with sorted keys and no insignificant whitespace
func (a *Attestation) Canonical() ([]byte, error) {
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("failed to encode attestation: %w", err)
	}

	// Round-trip through a generic value so object keys come out sorted
	var generic interface{}
	if err := json.Unmarshal(data, &generic); err != nil {
		return nil, fmt.Errorf("failed to canonicalize attestation: %w", err)
	}
	return json.Marshal(generic)
}

// Digest returns the sha256 content digest of the canonical encoding
func (a *Attestation) Digest() (digest.Digest, error) {
	data, err := a.Canonical()
	if err != nil {
		return "", err
	}
	return digest.FromBytes(data), nil
}

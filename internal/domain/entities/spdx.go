package entities

// SPDXDocument is the subset of an SPDX 2.x JSON document consumed by the mapper
type SPDXDocument struct {
	SPDXVersion       string             `json:"spdxVersion,omitempty"`
	SPDXID            string             `json:"SPDXID,omitempty"`
	Name              string             `json:"name,omitempty"`
	DocumentNamespace string             `json:"documentNamespace,omitempty"`
	CreationInfo      *SPDXCreationInfo  `json:"creationInfo,omitempty"`
	Packages          []SPDXPackage      `json:"packages"`
	Relationships     []SPDXRelationship `json:"relationships"`
}

// SPDXCreationInfo carries document creation metadata
type SPDXCreationInfo struct {
	Created  string   `json:"created,omitempty"`
	Creators []string `json:"creators,omitempty"`
}

// SPDXPackage is a package entry of an SPDX document
type SPDXPackage struct {
	SPDXID       string            `json:"SPDXID"`
	Name         string            `json:"name,omitempty"`
	PackageName  string            `json:"packageName,omitempty"` // older tool output
	VersionInfo  string            `json:"versionInfo,omitempty"`
	Checksums    []SPDXChecksum    `json:"checksums,omitempty"`
	ExternalRefs []SPDXExternalRef `json:"externalRefs,omitempty"`
}

// DisplayName returns the package name, whichever field carries it
func (p *SPDXPackage) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.PackageName
}

// SPDXChecksum is a package checksum such as {"algorithm": "SHA-256", "checksumValue": "..."}
type SPDXChecksum struct {
	Algorithm     string `json:"algorithm"`
	ChecksumValue string `json:"checksumValue"`
}

// SPDXExternalRef is an external reference of a package
type SPDXExternalRef struct {
	ReferenceCategory string `json:"referenceCategory,omitempty"`
	ReferenceType     string `json:"referenceType"`
	ReferenceLocator  string `json:"referenceLocator"`
}

// SPDXRelationship links two SPDX elements
type SPDXRelationship struct {
	SPDXElementID      string `json:"spdxElementId,omitempty"`
	SPDXElement        string `json:"spdxElement,omitempty"`
	RelationshipType   string `json:"relationshipType"`
	RelatedSPDXElement string `json:"relatedSpdxElement"`
}

// Source returns the source side of the relationship
func (r *SPDXRelationship) Source() string {
	if r.SPDXElementID != "" {
		return r.SPDXElementID
	}
	return r.SPDXElement
}

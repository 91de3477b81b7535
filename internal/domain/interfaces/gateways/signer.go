package gateways

// Signer produces detached signatures over attestation bytes
type Signer interface {
	// Sign returns an ASCII-armored detached signature over data
	Sign(data []byte) ([]byte, error)

	// KeyID identifies the signing key
	KeyID() string
}

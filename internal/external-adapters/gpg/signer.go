// Package gpg signs attestations with OpenPGP detached signatures.
package gpg

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/ProtonMail/go-crypto/openpgp"

	"github.com/QuietWire-Civic-AI/dbom-core/internal/domain/entities"
)

// Signer produces ASCII-armored detached signatures using ProtonMail's go-crypto
// (a maintained fork of golang.org/x/crypto/openpgp)
type Signer struct {
	entity *openpgp.Entity
}

// NewSignerFromFile loads a private key from an armored or binary key file
func NewSignerFromFile(keyPath string, passphrase []byte) (*Signer, error) {
	//nolint:gosec // G304: keyPath is user-provided for signing
	f, err := os.Open(keyPath)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open key file: %v", entities.ErrSigning, err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer f.Close()

	return NewSigner(f, passphrase)
}

// NewSigner reads a keyring from r and picks the first entity holding a private key.
// Encrypted keys are unlocked with passphrase.
func NewSigner(r io.Reader, passphrase []byte) (*Signer, error) {
	// Limit key material to 1MB
	data, err := io.ReadAll(io.LimitReader(r, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read key: %v", entities.ErrSigning, err)
	}

	keyring, err := openpgp.ReadArmoredKeyRing(bytes.NewReader(data))
	if err != nil {
		keyring, err = openpgp.ReadKeyRing(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read key: %v", entities.ErrSigning, err)
		}
	}

	for _, entity := range keyring {
		if entity.PrivateKey == nil {
			continue
		}
		if err := unlock(entity, passphrase); err != nil {
			return nil, err
		}
		return &Signer{entity: entity}, nil
	}

	return nil, fmt.Errorf("%w: no private key found", entities.ErrSigning)
}

func unlock(entity *openpgp.Entity, passphrase []byte) error {
	if entity.PrivateKey.Encrypted {
		if len(passphrase) == 0 {
			return fmt.Errorf("%w: private key is encrypted, passphrase required", entities.ErrSigning)
		}
		if err := entity.PrivateKey.Decrypt(passphrase); err != nil {
			return fmt.Errorf("%w: failed to decrypt private key: %v", entities.ErrSigning, err)
		}
	}

	for _, sub := range entity.Subkeys {
		if sub.PrivateKey == nil || !sub.PrivateKey.Encrypted {
			continue
		}
		if err := sub.PrivateKey.Decrypt(passphrase); err != nil {
			return fmt.Errorf("%w: failed to decrypt subkey: %v", entities.ErrSigning, err)
		}
	}
	return nil
}

// Sign returns an armored detached signature over data
func (s *Signer) Sign(data []byte) ([]byte, error) {
	var out bytes.Buffer
	if err := openpgp.ArmoredDetachSign(&out, s.entity, bytes.NewReader(data), nil); err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrSigning, err)
	}
	return out.Bytes(), nil
}

// KeyID returns the primary key fingerprint in upper-case hex
func (s *Signer) KeyID() string {
	return fmt.Sprintf("%X", s.entity.PrimaryKey.Fingerprint)
}

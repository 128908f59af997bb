package sessions

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

const sealerInfo = "ga-dashboard session store v1"

// Sealer encrypts session blobs before they leave the process. The key is
// derived from the session secret so a single secret drives cookies and storage.
type Sealer struct {
	key []byte
}

func NewSealer(secret []byte) (*Sealer, error) {
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte(sealerInfo)), key); err != nil {
		return nil, fmt.Errorf("[sessions NewSealer] derive key: %w", err)
	}
	return &Sealer{key: key}, nil
}

// Seal returns nonce||ciphertext. The session id is bound as additional data.
func (s *Sealer) Seal(sessionID string, plaintext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return nil, fmt.Errorf("[sessions Sealer] cipher: %w", err)
	}
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("[sessions Sealer] nonce: %w", err)
	}
	return aead.Seal(nonce, nonce, plaintext, []byte(sessionID)), nil
}

// Open reverses Seal. It fails when the blob was stored under another session id.
func (s *Sealer) Open(sessionID string, sealed []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return nil, fmt.Errorf("[sessions Sealer] cipher: %w", err)
	}
	if len(sealed) < aead.NonceSize()+aead.Overhead() {
		return nil, fmt.Errorf("[sessions Sealer] sealed blob too short")
	}
	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ciphertext, []byte(sessionID))
	if err != nil {
		return nil, fmt.Errorf("[sessions Sealer] open: %w", err)
	}
	return plaintext, nil
}

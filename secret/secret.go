// Package secret seals chunk payloads with a passphrase so a hidden message
// is unreadable without it.
package secret

import (
	"bytes"
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

var (
	ErrNotSealed       = errors.New("payload is not sealed")
	ErrWrongPassphrase = errors.New("wrong passphrase or corrupted payload")
)

const (
	magic    = "pmS1"
	saltSize = 16
	// argon2id parameters, RFC 9106 second recommended option
	argonTime    = 3
	argonMemory  = 64 * 1024
	argonThreads = 4
)

// Overhead is the size a sealed payload adds to its plaintext.
const Overhead = len(magic) + saltSize + chacha20poly1305.NonceSizeX + chacha20poly1305.Overhead

// Seal encrypts plaintext as magic, salt, nonce and ciphertext.
func Seal(passphrase string, plaintext []byte) ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("salt: %w", err)
	}
	aead, err := chacha20poly1305.NewX(deriveKey(passphrase, salt))
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("nonce: %w", err)
	}
	header := make([]byte, 0, Overhead-chacha20poly1305.Overhead)
	header = append(header, magic...)
	header = append(header, salt...)
	header = append(header, nonce...)
	out := make([]byte, len(header), len(plaintext)+Overhead)
	copy(out, header)
	// the header is authenticated as additional data
	return aead.Seal(out, nonce, plaintext, header), nil
}

func Open(passphrase string, sealed []byte) ([]byte, error) {
	if !IsSealed(sealed) {
		return nil, ErrNotSealed
	}
	headerSize := len(magic) + saltSize + chacha20poly1305.NonceSizeX
	salt := sealed[len(magic) : len(magic)+saltSize]
	nonce := sealed[len(magic)+saltSize : headerSize]
	aead, err := chacha20poly1305.NewX(deriveKey(passphrase, salt))
	if err != nil {
		return nil, err
	}
	plaintext, err := aead.Open(nil, nonce, sealed[headerSize:], sealed[:headerSize])
	if err != nil {
		return nil, ErrWrongPassphrase
	}
	return plaintext, nil
}

// IsSealed only checks framing; it cannot tell a passphrase is right.
func IsSealed(b []byte) bool {
	return len(b) >= Overhead && bytes.HasPrefix(b, []byte(magic))
}

func deriveKey(passphrase string, salt []byte) []byte {
	return argon2.IDKey([]byte(passphrase), salt, argonTime, argonMemory, argonThreads, chacha20poly1305.KeySize)
}

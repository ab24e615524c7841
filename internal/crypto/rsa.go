// RSA-OAEP helpers for hybrid encryption. These primitives are available to
// offline audit tooling (encrypting the symmetric key material to an
// operator keypair); the live request path does not call them.
package crypto

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"encoding/pem"

	"github.com/eqos-digital/contact-backend/internal/apperr"
)

// DefaultRSABits is the modulus size used by production key generation.
const DefaultRSABits = 4096

// GenerateKeyPair creates an RSA keypair of the given modulus size and
// returns the private key as PKCS#8 PEM and the public key as PKIX PEM.
// bits <= 0 selects DefaultRSABits.
func GenerateKeyPair(bits int) (privatePEM, publicPEM string, err error) {
	if bits <= 0 {
		bits = DefaultRSABits
	}
	key, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return "", "", apperr.Wrap(apperr.KindCrypto, "RSA key generation failed", err)
	}

	privDER, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return "", "", apperr.Wrap(apperr.KindCrypto, "RSA key encoding failed", err)
	}
	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		return "", "", apperr.Wrap(apperr.KindCrypto, "RSA key encoding failed", err)
	}

	privatePEM = string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: privDER}))
	publicPEM = string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER}))
	return privatePEM, publicPEM, nil
}

// EncryptRSA encrypts data with the PEM-encoded public key using
// RSA-OAEP-SHA256 and returns the ciphertext hex encoded.
func EncryptRSA(publicPEM, data string) (string, error) {
	block, _ := pem.Decode([]byte(publicPEM))
	if block == nil {
		return "", apperr.New(apperr.KindCrypto, "invalid RSA public key PEM")
	}
	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return "", apperr.Wrap(apperr.KindCrypto, "invalid RSA public key", err)
	}
	rsaPub, ok := pub.(*rsa.PublicKey)
	if !ok {
		return "", apperr.New(apperr.KindCrypto, "key is not an RSA public key")
	}

	ct, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, rsaPub, []byte(data), nil)
	if err != nil {
		return "", apperr.Wrap(apperr.KindCrypto, "RSA encryption failed", err)
	}
	return hex.EncodeToString(ct), nil
}

// DecryptRSA decrypts hex ciphertext with the PEM-encoded PKCS#8 private key.
func DecryptRSA(privatePEM, encoded string) (string, error) {
	block, _ := pem.Decode([]byte(privatePEM))
	if block == nil {
		return "", apperr.New(apperr.KindCrypto, "invalid RSA private key PEM")
	}
	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return "", apperr.Wrap(apperr.KindCrypto, "invalid RSA private key", err)
	}
	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return "", apperr.New(apperr.KindCrypto, "key is not an RSA private key")
	}

	ct, err := hex.DecodeString(encoded)
	if err != nil {
		return "", apperr.New(apperr.KindCrypto, "invalid RSA ciphertext encoding")
	}
	plain, err := rsa.DecryptOAEP(sha256.New(), rand.Reader, rsaKey, ct, nil)
	if err != nil {
		return "", apperr.Wrap(apperr.KindCrypto, "RSA decryption failed", err)
	}
	return string(plain), nil
}

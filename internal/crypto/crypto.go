// Package crypto implements the authenticated-encryption and integrity
// primitives behind the contact audit trail: AES-256-GCM with a per-call
// random IV, HMAC-SHA256 signing with constant-time verification, the
// encrypt-then-MAC composition used by the orchestrator, PBKDF2 key
// derivation, and secure token generation. RSA-OAEP helpers for hybrid
// encryption live in rsa.go.
//
// Encoded forms:
//   - EncryptAuthenticated: "ivHex:authTagHex:cipherHex"
//   - EncryptAndSign:       "<encrypted>||<hmacHex>"
//
// All segments are hex, so the ':' and '||' delimiters cannot occur inside
// a field; decode paths still validate segment counts and hex content.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/pbkdf2"

	"github.com/eqos-digital/contact-backend/internal/apperr"
)

const (
	// ivLength is the GCM nonce size in bytes. 16 matches the payload
	// format produced by the original audit tooling; decrypters must use
	// the same size.
	ivLength = 16
	// gcmTagLength is the GCM authentication tag size in bytes.
	gcmTagLength = 16

	// pbkdf2Iterations is the PBKDF2 work factor for sensitive-data hashing.
	pbkdf2Iterations = 100000
)

// EncryptAuthenticated encrypts plaintext with AES-256-GCM under a key
// derived from key via SHA-256 and returns "ivHex:authTagHex:cipherHex".
// A fresh random 128-bit IV is generated per call, so two calls with
// identical inputs never produce the same output.
func EncryptAuthenticated(plaintext, key string) (string, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return "", err
	}

	iv := make([]byte, ivLength)
	if _, err := rand.Read(iv); err != nil {
		return "", apperr.Wrap(apperr.KindCrypto, "AES encryption failed", err)
	}

	sealed := gcm.Seal(nil, iv, []byte(plaintext), nil)
	// Seal appends the tag to the ciphertext; split it back out so the
	// encoded form carries the tag as its own segment.
	ct := sealed[:len(sealed)-gcmTagLength]
	tag := sealed[len(sealed)-gcmTagLength:]

	return hex.EncodeToString(iv) + ":" + hex.EncodeToString(tag) + ":" + hex.EncodeToString(ct), nil
}

// DecryptAuthenticated reverses EncryptAuthenticated. It fails when the
// encoded string does not have exactly three colon-delimited hex segments,
// when the authentication tag does not verify, or when the key is wrong.
func DecryptAuthenticated(encoded, key string) (string, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return "", err
	}

	parts := strings.Split(encoded, ":")
	if len(parts) != 3 {
		return "", apperr.New(apperr.KindCrypto, "invalid encrypted data format")
	}

	iv, err := hex.DecodeString(parts[0])
	if err != nil || len(iv) != ivLength {
		return "", apperr.New(apperr.KindCrypto, "invalid encrypted data format")
	}
	tag, err := hex.DecodeString(parts[1])
	if err != nil {
		return "", apperr.New(apperr.KindCrypto, "invalid encrypted data format")
	}
	ct, err := hex.DecodeString(parts[2])
	if err != nil {
		return "", apperr.New(apperr.KindCrypto, "invalid encrypted data format")
	}

	plain, err := gcm.Open(nil, iv, append(ct, tag...), nil)
	if err != nil {
		return "", apperr.Wrap(apperr.KindCrypto, "AES decryption failed", err)
	}
	return string(plain), nil
}

// HMACSign returns the hex HMAC-SHA256 of data under secret.
func HMACSign(data, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}

// HMACVerify reports whether signature is a valid HMAC-SHA256 of data under
// secret. Comparison is constant time (hmac.Equal); never replace this with
// ordinary string equality.
func HMACVerify(data, signature, secret string) bool {
	expected := HMACSign(data, secret)
	return hmac.Equal([]byte(signature), []byte(expected))
}

// EncryptAndSign produces the double-layer audit payload: the AES-GCM
// encoding of plaintext, concatenated with an outer HMAC signature over the
// encrypted segment. This is the only operation the orchestrator invokes.
func EncryptAndSign(plaintext, aesKey, hmacSecret string) (string, error) {
	encrypted, err := EncryptAuthenticated(plaintext, aesKey)
	if err != nil {
		return "", err
	}
	return encrypted + "||" + HMACSign(encrypted, hmacSecret), nil
}

// VerifyAndDecrypt reverses EncryptAndSign. The HMAC is verified before any
// decryption is attempted; a bad signature fails closed with an integrity
// error and the ciphertext is never touched.
func VerifyAndDecrypt(encoded, aesKey, hmacSecret string) (string, error) {
	parts := strings.Split(encoded, "||")
	if len(parts) != 2 {
		return "", apperr.New(apperr.KindCrypto, "invalid signed payload format")
	}
	if !HMACVerify(parts[0], parts[1], hmacSecret) {
		return "", apperr.New(apperr.KindIntegrity, "HMAC signature verification failed")
	}
	return DecryptAuthenticated(parts[0], aesKey)
}

// GenerateSalt returns length random bytes, hex encoded.
func GenerateSalt(length int) (string, error) {
	return GenerateSecureToken(length)
}

// GenerateSecureToken returns length random bytes, hex encoded. The
// resulting string is 2*length characters long.
func GenerateSecureToken(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", apperr.Wrap(apperr.KindCrypto, "token generation failed", err)
	}
	return hex.EncodeToString(b), nil
}

// HashSensitiveData hashes data with PBKDF2-SHA256 (100000 iterations,
// 64-byte output). When salt is empty a fresh 32-byte salt is generated.
// Returns the hex hash and the salt that was used.
func HashSensitiveData(data, salt string) (hash, usedSalt string, err error) {
	usedSalt = salt
	if usedSalt == "" {
		usedSalt, err = GenerateSalt(32)
		if err != nil {
			return "", "", err
		}
	}
	sum := pbkdf2.Key([]byte(data), []byte(usedSalt), pbkdf2Iterations, 64, sha256.New)
	return hex.EncodeToString(sum), usedSalt, nil
}

// VerifySensitiveData reports whether data hashes to hash under salt.
// Constant-time comparison.
func VerifySensitiveData(data, hash, salt string) bool {
	computed, _, err := HashSensitiveData(data, salt)
	if err != nil {
		return false
	}
	return hmac.Equal([]byte(hash), []byte(computed))
}

// DeriveKey derives a 256-bit key from masterKey and salt with PBKDF2-SHA256
// and returns it hex encoded. iterations <= 0 falls back to the default
// work factor.
func DeriveKey(masterKey, salt string, iterations int) string {
	if iterations <= 0 {
		iterations = pbkdf2Iterations
	}
	return hex.EncodeToString(pbkdf2.Key([]byte(masterKey), []byte(salt), iterations, 32, sha256.New))
}

// newGCM builds an AES-256-GCM AEAD from the SHA-256 digest of key, with
// the 16-byte nonce size the encoded format requires.
func newGCM(key string) (cipher.AEAD, error) {
	if key == "" {
		return nil, apperr.New(apperr.KindCrypto, "encryption key must not be empty")
	}
	derived := sha256.Sum256([]byte(key))
	block, err := aes.NewCipher(derived[:])
	if err != nil {
		return nil, apperr.Wrap(apperr.KindCrypto, "cipher initialization failed", err)
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, ivLength)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindCrypto, "cipher initialization failed", err)
	}
	return gcm, nil
}

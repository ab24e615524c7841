package crypto

import (
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"github.com/eqos-digital/contact-backend/internal/apperr"
)

func TestEncryptAuthenticated_RoundTrip(t *testing.T) {
	enc, err := EncryptAuthenticated("hello world", "secret-key")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	got, err := DecryptAuthenticated(enc, "secret-key")
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if got != "hello world" {
		t.Fatalf("round trip mismatch: %q", got)
	}
}

func TestEncryptAuthenticated_FreshIV(t *testing.T) {
	a, err := EncryptAuthenticated("same plaintext", "k")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	b, err := EncryptAuthenticated("same plaintext", "k")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if a == b {
		t.Fatal("identical ciphertexts for identical inputs; IV is not fresh")
	}
}

func TestEncryptAuthenticated_EncodingShape(t *testing.T) {
	enc, err := EncryptAuthenticated("payload", "k")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	parts := strings.Split(enc, ":")
	if len(parts) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(parts))
	}
	// Every segment must be pure hex so the ':' delimiter stays unambiguous.
	for i, p := range parts {
		if _, err := hex.DecodeString(p); err != nil {
			t.Fatalf("segment %d is not hex: %v", i, err)
		}
	}
	if len(parts[0]) != ivLength*2 {
		t.Fatalf("iv segment length = %d, want %d", len(parts[0]), ivLength*2)
	}
}

func TestEncryptAuthenticated_EmptyKey(t *testing.T) {
	if _, err := EncryptAuthenticated("data", ""); apperr.KindOf(err) != apperr.KindCrypto {
		t.Fatalf("expected crypto error for empty key, got %v", err)
	}
}

func TestDecryptAuthenticated_Failures(t *testing.T) {
	enc, err := EncryptAuthenticated("data", "right-key")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	cases := []struct {
		name    string
		encoded string
		key     string
	}{
		{"wrong segment count", "deadbeef:cafebabe", "right-key"},
		{"not hex", "zz:zz:zz", "right-key"},
		{"wrong key", enc, "wrong-key"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := DecryptAuthenticated(tc.encoded, tc.key); apperr.KindOf(err) != apperr.KindCrypto {
				t.Fatalf("expected crypto error, got %v", err)
			}
		})
	}
}

func TestDecryptAuthenticated_TamperedCiphertext(t *testing.T) {
	enc, err := EncryptAuthenticated("data", "k")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	// Flip one hex digit inside the ciphertext segment.
	tampered := flipLastHexDigit(enc)
	if _, err := DecryptAuthenticated(tampered, "k"); err == nil {
		t.Fatal("expected auth failure on tampered ciphertext")
	}
}

func TestHMACVerify(t *testing.T) {
	sig := HMACSign("payload", "secret")
	if !HMACVerify("payload", sig, "secret") {
		t.Fatal("valid signature rejected")
	}
	if HMACVerify("payload", sig, "other-secret") {
		t.Fatal("signature accepted under wrong secret")
	}
	if HMACVerify("other payload", sig, "secret") {
		t.Fatal("signature accepted for wrong data")
	}
}

func TestEncryptAndSign_RoundTrip(t *testing.T) {
	payload := `{"name":"Jo","email":"jo@x.com"}`
	enc, err := EncryptAndSign(payload, "aes-key", "hmac-secret")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	got, err := VerifyAndDecrypt(enc, "aes-key", "hmac-secret")
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if got != payload {
		t.Fatalf("round trip mismatch: %q", got)
	}
}

func TestVerifyAndDecrypt_TamperedSignature(t *testing.T) {
	enc, err := EncryptAndSign("data", "aes-key", "hmac-secret")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	tampered := flipLastHexDigit(enc)
	_, err = VerifyAndDecrypt(tampered, "aes-key", "hmac-secret")
	if apperr.KindOf(err) != apperr.KindIntegrity {
		t.Fatalf("expected integrity error, got %v", err)
	}
}

func TestVerifyAndDecrypt_WrongHMACSecret(t *testing.T) {
	enc, err := EncryptAndSign("data", "aes-key", "hmac-secret")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	_, err = VerifyAndDecrypt(enc, "aes-key", "other-secret")
	if apperr.KindOf(err) != apperr.KindIntegrity {
		t.Fatalf("expected integrity error, got %v", err)
	}
}

func TestVerifyAndDecrypt_BadFraming(t *testing.T) {
	_, err := VerifyAndDecrypt("no-delimiter-here", "aes-key", "hmac-secret")
	if apperr.KindOf(err) != apperr.KindCrypto {
		t.Fatalf("expected crypto error, got %v", err)
	}
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		t.Fatal("expected apperr.Error")
	}
}

func TestHashSensitiveData(t *testing.T) {
	hash, salt, err := HashSensitiveData("p@ssw0rd", "")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if salt == "" {
		t.Fatal("expected generated salt")
	}
	if !VerifySensitiveData("p@ssw0rd", hash, salt) {
		t.Fatal("valid data rejected")
	}
	if VerifySensitiveData("wrong", hash, salt) {
		t.Fatal("wrong data accepted")
	}

	// Explicit salt is deterministic.
	h1, _, _ := HashSensitiveData("data", "fixed-salt")
	h2, _, _ := HashSensitiveData("data", "fixed-salt")
	if h1 != h2 {
		t.Fatal("same data+salt produced different hashes")
	}
}

func TestDeriveKey(t *testing.T) {
	k1 := DeriveKey("master", "salt", 1000)
	k2 := DeriveKey("master", "salt", 1000)
	if k1 != k2 {
		t.Fatal("derivation is not deterministic")
	}
	if len(k1) != 64 { // 32 bytes hex
		t.Fatalf("derived key length = %d, want 64", len(k1))
	}
	if DeriveKey("master", "other-salt", 1000) == k1 {
		t.Fatal("different salts produced the same key")
	}
}

func TestGenerateSecureToken(t *testing.T) {
	tok, err := GenerateSecureToken(32)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	if len(tok) != 64 {
		t.Fatalf("token length = %d, want 64", len(tok))
	}
	other, _ := GenerateSecureToken(32)
	if tok == other {
		t.Fatal("two tokens were identical")
	}
}

func TestRSA_RoundTrip(t *testing.T) {
	priv, pub, err := GenerateKeyPair(2048) // small modulus keeps the test fast
	if err != nil {
		t.Fatalf("keypair: %v", err)
	}
	enc, err := EncryptRSA(pub, "hybrid key material")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	got, err := DecryptRSA(priv, enc)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if got != "hybrid key material" {
		t.Fatalf("round trip mismatch: %q", got)
	}

	if _, err := EncryptRSA("not a pem", "x"); apperr.KindOf(err) != apperr.KindCrypto {
		t.Fatalf("expected crypto error for bad PEM, got %v", err)
	}
}

// flipLastHexDigit changes the final character of an encoded payload to a
// different hex digit, simulating single-character tampering.
func flipLastHexDigit(s string) string {
	last := s[len(s)-1]
	repl := byte('0')
	if last == '0' {
		repl = '1'
	}
	return s[:len(s)-1] + string(repl)
}

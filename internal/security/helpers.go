package security

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const alphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

func HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func CheckPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// HashString is the hex SHA-256 digest of input. It is not keyed; use
// Signer.Sign where authenticity matters.
func HashString(input string) string {
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}

// ExtractBearerToken returns the token of an "Authorization: Bearer x" header.
func ExtractBearerToken(header string) (string, bool) {
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

// ValidateAPIKey compares key against every configured key in constant time.
func ValidateAPIKey(key string, valid []string) bool {
	if key == "" {
		return false
	}
	ok := 0
	for _, v := range valid {
		if v == "" {
			continue
		}
		ok |= subtle.ConstantTimeCompare([]byte(key), []byte(v))
	}
	return ok == 1
}

// NewSessionID - sess_<unix ms>_<uuid hex>
func NewSessionID(now time.Time) string {
	return fmt.Sprintf("sess_%d_%s", now.UnixMilli(), strings.ReplaceAll(uuid.NewString(), "-", ""))
}

// NewSecureID returns a random UUID, optionally prefixed as "<prefix>_<uuid>".
func NewSecureID(prefix string) string {
	id := uuid.NewString()
	if prefix == "" {
		return id
	}
	return prefix + "_" + id
}

// RandomString draws n alphanumeric characters from crypto/rand.
func RandomString(n int) (string, error) {
	if n <= 0 {
		n = 16
	}
	limit := big.NewInt(int64(len(alphanumeric)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("read random: %w", err)
		}
		b[i] = alphanumeric[idx.Int64()]
	}
	return string(b), nil
}

func EncodeBase64URL(data []byte) string {
	return base64.RawURLEncoding.EncodeToString(data)
}

// DecodeBase64URL accepts both padded and unpadded input.
func DecodeBase64URL(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "="))
}

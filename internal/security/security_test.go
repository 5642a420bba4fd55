package security

import (
	"regexp"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSigner(t *testing.T, now time.Time) *Signer {
	t.Helper()
	s, err := NewSigner("test-secret")
	require.NoError(t, err)
	return s.WithClock(func() time.Time { return now })
}

func TestNewSignerRequiresSecret(t *testing.T) {
	_, err := NewSigner("")
	assert.ErrorIs(t, err, ErrEmptySecret)
}

func TestSignVerify(t *testing.T) {
	s := newTestSigner(t, time.Now())
	payload := []byte(`{"ticket":1}`)

	sig := s.Sign(payload)
	assert.True(t, s.Verify(payload, sig))
	assert.False(t, s.Verify([]byte(`{"ticket":2}`), sig))
	assert.False(t, s.Verify(payload, "not base64!"))

	other, err := NewSigner("other-secret")
	require.NoError(t, err)
	assert.False(t, other.Verify(payload, sig))
}

func TestTempToken(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	s := newTestSigner(t, now)

	tok, err := s.IssueTempToken("user-42", time.Hour)
	require.NoError(t, err)

	uid, err := s.ValidateTempToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-42", uid)

	later := s.WithClock(func() time.Time { return now.Add(2 * time.Hour) })
	_, err = later.ValidateTempToken(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = s.ValidateTempToken("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCreateJWT(t *testing.T) {
	now := time.Now()
	s := newTestSigner(t, now)

	raw, err := s.CreateJWT(map[string]any{"role": "producer"}, 0)
	require.NoError(t, err)

	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) { return []byte("test-secret"), nil })
	require.NoError(t, err)
	assert.Equal(t, "producer", claims["role"])
	assert.EqualValues(t, now.Add(DefaultTokenTTL).Unix(), claims["exp"])
}

func TestPasswords(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "s3cret"))
	assert.False(t, CheckPassword(hash, "wrong"))
}

func TestHashString(t *testing.T) {
	assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", HashString("hello"))
}

func TestExtractBearerToken(t *testing.T) {
	tok, ok := ExtractBearerToken("Bearer abc.def")
	assert.True(t, ok)
	assert.Equal(t, "abc.def", tok)

	_, ok = ExtractBearerToken("Basic xyz")
	assert.False(t, ok)
	_, ok = ExtractBearerToken("Bearer ")
	assert.False(t, ok)
}

func TestValidateAPIKey(t *testing.T) {
	keys := []string{"", "key-one", "key-two"}
	assert.True(t, ValidateAPIKey("key-two", keys))
	assert.False(t, ValidateAPIKey("key-three", keys))
	assert.False(t, ValidateAPIKey("", keys))
}

func TestIDs(t *testing.T) {
	now := time.UnixMilli(1760000000000)
	assert.Regexp(t, regexp.MustCompile(`^sess_1760000000000_[0-9a-f]{32}$`), NewSessionID(now))
	assert.Regexp(t, regexp.MustCompile(`^evt_[0-9a-f-]{36}$`), NewSecureID("evt"))
	assert.Len(t, NewSecureID(""), 36)

	s, err := RandomString(24)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^[A-Za-z0-9]{24}$`), s)
}

func TestBase64URL(t *testing.T) {
	enc := EncodeBase64URL([]byte("hola?>"))
	assert.NotContains(t, enc, "=")
	dec, err := DecodeBase64URL(enc + "==")
	require.NoError(t, err)
	assert.Equal(t, "hola?>", string(dec))
}

func TestTicketQR(t *testing.T) {
	s := newTestSigner(t, time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC))

	data, err := s.EncodeTicketQR(123, "ana@example.com")
	require.NoError(t, err)

	qr, err := s.DecodeTicketQR(data)
	require.NoError(t, err)
	assert.Equal(t, "123", qr.TicketID)
	assert.Equal(t, "ana@example.com", qr.Email)
	assert.Equal(t, Issuer, qr.Platform)

	_, err = s.DecodeTicketQR(data + "x")
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = s.DecodeTicketQR("no-separator")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

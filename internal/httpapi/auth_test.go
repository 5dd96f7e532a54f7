package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestJWT_RoundTrip(t *testing.T) {
	m := NewJWTManager(testSecret)

	token, err := m.GenerateToken("staff-1", "Front Desk", time.Hour)
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "staff-1", claims.Subject)
	assert.Equal(t, "Front Desk", claims.Name)
}

func TestJWT_WrongSecret(t *testing.T) {
	token, err := NewJWTManager(testSecret).GenerateToken("staff-1", "", time.Hour)
	require.NoError(t, err)

	_, err = NewJWTManager("another-secret-another-secret-xx").ValidateToken(token)
	require.Error(t, err)
}

func TestJWT_Expired(t *testing.T) {
	m := NewJWTManager(testSecret)
	token, err := m.GenerateToken("staff-1", "", -time.Minute)
	require.NoError(t, err)

	_, err = m.ValidateToken(token)
	require.Error(t, err)
}

func TestRequireStaff(t *testing.T) {
	m := NewJWTManager(testSecret)
	token, err := m.GenerateToken("staff-1", "", time.Hour)
	require.NoError(t, err)

	var seenStaffID string
	h := m.requireStaff(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenStaffID = staffIDFrom(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	// No credentials.
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Garbage token.
	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer nonsense")
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Authorization header.
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "staff-1", seenStaffID)

	// Query parameter, the websocket client path.
	seenStaffID = ""
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?token="+token, nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "staff-1", seenStaffID)
}

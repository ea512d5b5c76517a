package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "renalmatch/pkg/domain"
)

const testSigningKey = "test-signing-key"

func protectedHandler(t *testing.T, want id.HospitalID) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got := GetHospitalID(r.Context())
		assert.Equal(t, want, got, "hospital ID should flow through context")
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireHospital(t *testing.T) {
	hospitalID := mustHospitalID(t)
	validator := NewJWTValidator(testSigningKey)
	handler := RequireHospital(validator, nil)(protectedHandler(t, hospitalID))

	t.Run("rejects missing token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/sessions", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rejects malformed token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/sessions", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rejects token signed with wrong key", func(t *testing.T) {
		token, err := SignToken("some-other-key", hospitalID)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/sessions", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("accepts valid token and sets context", func(t *testing.T) {
		token, err := SignToken(testSigningKey, hospitalID)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/sessions", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestGetHospitalID_MissingValue(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	got := GetHospitalID(req.Context())
	assert.True(t, got.IsNil())
}

func mustHospitalID(t *testing.T) id.HospitalID {
	t.Helper()
	hid, err := id.ParseHospitalID("a3bb189e-8bf9-3888-9912-ace4e6543002")
	require.NoError(t, err)
	return hid
}

package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-jwt-secret")

func signToken(t *testing.T, key []byte, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func runMiddleware(t *testing.T, authorization string) (*httptest.ResponseRecorder, string) {
	t.Helper()
	var gotUserID string
	h := Middleware(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID, _ = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec, gotUserID
}

func TestMiddleware_ValidToken(t *testing.T) {
	tok := signToken(t, secret, jwt.MapClaims{
		"sub": "u1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	rec, userID := runMiddleware(t, "Bearer "+tok)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", userID)
}

func TestMiddleware_Rejections(t *testing.T) {
	expired := signToken(t, secret, jwt.MapClaims{
		"sub": "u1",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	wrongKey := signToken(t, []byte("other-secret"), jwt.MapClaims{"sub": "u1"})
	noSubject := signToken(t, secret, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()})

	cases := map[string]string{
		"missing header": "",
		"not bearer":     "Token abc",
		"garbage":        "Bearer not-a-jwt",
		"expired":        "Bearer " + expired,
		"wrong key":      "Bearer " + wrongKey,
		"no subject":     "Bearer " + noSubject,
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			rec, userID := runMiddleware(t, header)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Empty(t, userID)
			assert.JSONEq(t, `{"success":false,"message":"unauthorized"}`, rec.Body.String())
		})
	}
}

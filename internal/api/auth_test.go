package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"savings_system/internal/domain"
)

func TestRegisterEndpoint(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/auth/register", "", bodyMap{
		"email":     "A@X.com",
		"password":  "secret1",
		"firstName": "A",
		"lastName":  "B",
	})
	expectStatus(t, w, http.StatusCreated)

	var resp struct {
		Message string        `json:"message"`
		User    domain.User   `json:"user"`
		Device  domain.Device `json:"device"`
	}
	decode(t, w, &resp)
	assert.Equal(t, "a@x.com", resp.User.Email, "emails are lowercased")
	assert.False(t, resp.Device.IsVerified)
	assert.NotEmpty(t, resp.Device.DeviceID)
	assert.NotContains(t, w.Body.String(), "password", "hashes never leave the API")

	// Duplicate email
	w = env.do(t, http.MethodPost, "/api/auth/register", "", bodyMap{
		"email":     "a@x.com",
		"password":  "secret1",
		"firstName": "A",
		"lastName":  "B",
	})
	expectStatus(t, w, http.StatusBadRequest)
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)

	cases := []bodyMap{
		{"email": "not-an-email", "password": "secret1", "firstName": "A", "lastName": "B"},
		{"email": "a@x.com", "password": "short", "firstName": "A", "lastName": "B"},
		{"email": "a@x.com", "password": "secret1", "lastName": "B"},
		{},
	}
	for _, body := range cases {
		w := env.do(t, http.MethodPost, "/api/auth/register", "", body)
		expectStatus(t, w, http.StatusBadRequest)
	}
}

func TestLoginEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.registerVerified(t, "a@x.com", "secret1")

	w := env.do(t, http.MethodPost, "/api/auth/login", "", bodyMap{
		"email":    "a@x.com",
		"password": "secret1",
	})
	expectStatus(t, w, http.StatusOK)

	var resp struct {
		Token string      `json:"token"`
		User  domain.User `json:"user"`
	}
	decode(t, w, &resp)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "a@x.com", resp.User.Email)

	// Wrong password
	w = env.do(t, http.MethodPost, "/api/auth/login", "", bodyMap{
		"email":    "a@x.com",
		"password": "wrong-pass",
	})
	expectStatus(t, w, http.StatusUnauthorized)
}

func TestLoginUnverifiedDevice(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.auth.Register("a@x.com", "secret1", "A", "B")
	require.NoError(t, err)

	w := env.do(t, http.MethodPost, "/api/auth/login", "", bodyMap{
		"email":    "a@x.com",
		"password": "secret1",
	})
	expectStatus(t, w, http.StatusUnauthorized)
	assert.Contains(t, w.Body.String(), "verification")
}

func TestVerifyTokenEndpoint(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerVerified(t, "a@x.com", "secret1")

	w := env.do(t, http.MethodGet, "/api/auth/verify-token", token, nil)
	expectStatus(t, w, http.StatusOK)

	var resp struct {
		User   domain.User    `json:"user"`
		Device *domain.Device `json:"device"`
	}
	decode(t, w, &resp)
	assert.Equal(t, "a@x.com", resp.User.Email)
	require.NotNil(t, resp.Device)
	assert.True(t, resp.Device.IsVerified)

	// Missing and malformed tokens
	w = env.do(t, http.MethodGet, "/api/auth/verify-token", "", nil)
	expectStatus(t, w, http.StatusUnauthorized)
	w = env.do(t, http.MethodGet, "/api/auth/verify-token", "garbage", nil)
	expectStatus(t, w, http.StatusUnauthorized)

	// Deactivation invalidates a still-valid token here too
	_, err := env.admin.SetUserAccess(resp.User.ID, false)
	require.NoError(t, err)
	w = env.do(t, http.MethodGet, "/api/auth/verify-token", token, nil)
	expectStatus(t, w, http.StatusUnauthorized)
}

func TestPasswordResetEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.registerVerified(t, "a@x.com", "secret1")

	w := env.do(t, http.MethodPost, "/api/auth/request-password-reset", "", bodyMap{"email": "a@x.com"})
	expectStatus(t, w, http.StatusOK)
	var resp struct {
		Message      string `json:"message"`
		TempPassword string `json:"tempPassword"`
	}
	decode(t, w, &resp)
	require.NotEmpty(t, resp.TempPassword)

	// Unknown email returns the same message without a password
	w = env.do(t, http.MethodPost, "/api/auth/request-password-reset", "", bodyMap{"email": "nobody@x.com"})
	expectStatus(t, w, http.StatusOK)
	var unknown struct {
		Message      string `json:"message"`
		TempPassword string `json:"tempPassword"`
	}
	decode(t, w, &unknown)
	assert.Equal(t, resp.Message, unknown.Message)
	assert.Empty(t, unknown.TempPassword)

	// The temporary password logs in
	w = env.do(t, http.MethodPost, "/api/auth/login", "", bodyMap{
		"email":    "a@x.com",
		"password": resp.TempPassword,
	})
	expectStatus(t, w, http.StatusOK)
}

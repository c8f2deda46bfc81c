package api_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/rongwang/timesheet-server/internal/api/testutils"
	"github.com/rongwang/timesheet-server/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignup(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	// Test case 1: Successful signup
	signupReq := models.SignUpRequest{
		Email:           "newuser@example.com",
		Password:        "Password123",
		ConfirmPassword: "Password123",
		Name:            "New User",
	}

	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/auth/signup",
		signupReq,
		nil,
	)

	assert.Equal(t, http.StatusCreated, w.Code)

	var authResponse models.AuthResponse
	testutils.DecodeJSON(t, w, &authResponse)
	assert.NotEmpty(t, authResponse.UserID)
	assert.Equal(t, "newuser@example.com", authResponse.Email)

	// Test case 2: Duplicate email
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/auth/signup",
		signupReq,
		nil,
	)

	assert.Equal(t, http.StatusConflict, w.Code)

	// Test case 3: Invalid request (missing required fields)
	invalidReq := models.SignUpRequest{
		Email: "invalid@example.com",
		// Missing password and name
	}

	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/auth/signup",
		invalidReq,
		nil,
	)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Test case 4: Passwords do not match
	mismatchReq := models.SignUpRequest{
		Email:           "mismatch@example.com",
		Password:        "Password123",
		ConfirmPassword: "Password321",
		Name:            "Mismatch",
	}

	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/auth/signup",
		mismatchReq,
		nil,
	)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var errResponse models.ErrorResponse
	testutils.DecodeJSON(t, w, &errResponse)
	assert.Equal(t, "VALIDATION_ERROR", errResponse.Code)
}

func TestLogin(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	// Test case 1: Successful login
	loginReq := models.LoginRequest{
		Email:    "testuser@example.com",
		Password: testutils.TestPassword,
	}

	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/auth/login",
		loginReq,
		nil,
	)

	require.Equal(t, http.StatusOK, w.Code)

	var authResponse models.AuthResponse
	testutils.DecodeJSON(t, w, &authResponse)
	assert.Equal(t, testCtx.TestUserID, authResponse.UserID)
	require.NotEmpty(t, authResponse.Token)

	// The issued token opens protected routes
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		"/api/profile",
		nil,
		testutils.AuthHeaders(authResponse.Token),
	)

	assert.Equal(t, http.StatusOK, w.Code)

	// Test case 2: Invalid credentials
	invalidLoginReq := models.LoginRequest{
		Email:    "testuser@example.com",
		Password: "wrongpassword",
	}

	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/auth/login",
		invalidLoginReq,
		nil,
	)

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Test case 3: User not found
	nonExistentUserReq := models.LoginRequest{
		Email:    "nonexistent@example.com",
		Password: testutils.TestPassword,
	}

	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/auth/login",
		nonExistentUserReq,
		nil,
	)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	tests := []struct {
		name    string
		headers map[string]string
	}{
		{name: "missing header", headers: nil},
		{name: "wrong scheme", headers: map[string]string{"Authorization": "Basic " + testCtx.TestUserJWT}},
		{name: "garbage token", headers: testutils.AuthHeaders("not-a-jwt")},
		{name: "expired token", headers: testutils.AuthHeaders(testCtx.Token(t, testCtx.TestUserID, time.Now().Add(-time.Hour)))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/timesheets", nil, tt.headers)
			assert.Equal(t, http.StatusUnauthorized, w.Code)

			var errResponse models.ErrorResponse
			testutils.DecodeJSON(t, w, &errResponse)
			assert.Equal(t, "UNAUTHORIZED", errResponse.Code)
		})
	}
}

func TestAuthMiddleware_UnknownUser(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	// Validly signed, but for a user that does not exist
	token := testCtx.Token(t, "00000000-0000-0000-0000-000000000000", time.Now().Add(time.Hour))

	w := testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/profile", nil, testutils.AuthHeaders(token))
	assert.Equal(t, http.StatusNotFound, w.Code)

	var errResponse models.ErrorResponse
	testutils.DecodeJSON(t, w, &errResponse)
	assert.Equal(t, "NOT_FOUND", errResponse.Code)
}

func TestHealth(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	w := testutils.PerformRequest(testCtx.Router, http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

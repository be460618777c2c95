package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dimitrije/lessonforge-api/internal/logger"
	"github.com/dimitrije/lessonforge-api/internal/middleware"
	"github.com/dimitrije/lessonforge-api/internal/models"
	"github.com/dimitrije/lessonforge-api/internal/services"
	"github.com/dimitrije/lessonforge-api/internal/testutil"
	"github.com/dimitrije/lessonforge-api/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	driftmw "github.com/m1z23r/drift/pkg/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupAuthTest(t *testing.T) (*testutil.MockUserService, *testutil.MockTokenService, *testutil.MockJWTService, *AuthHandler) {
	t.Helper()
	mockUserService := new(testutil.MockUserService)
	mockTokenService := new(testutil.MockTokenService)
	mockJWTService := new(testutil.MockJWTService)

	handler := NewAuthHandler(mockUserService, mockTokenService, mockJWTService, logger.Nop())

	return mockUserService, mockTokenService, mockJWTService, handler
}

func postRefresh(handler *AuthHandler, path string, body dto.RefreshTokenRequest) *httptest.ResponseRecorder {
	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Post("/auth/refresh", handler.RefreshToken)
	app.Post("/auth/logout", handler.Logout)

	jsonBody, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)
	return rec
}

func TestAuthHandler_RefreshToken_Success(t *testing.T) {
	mockUserService, mockTokenService, mockJWTService, handler := setupAuthTest(t)

	userID := uuid.New()
	tenantID := uuid.New()
	user := &models.User{
		ID:       userID,
		TenantID: tenantID,
		Email:    "test@example.com",
		Name:     "Test User",
	}

	oldRefreshToken := "old-refresh-token"
	newTokenPair := &services.TokenPair{
		AccessToken:  "new-access-token",
		RefreshToken: "new-refresh-token",
		ExpiresIn:    900,
	}

	mockJWTService.On("ValidateRefreshToken", oldRefreshToken).Return(userID, nil)
	mockUserService.On("GetByID", mock.Anything, userID).Return(user, nil)
	mockJWTService.On("GenerateTokenPair", userID, tenantID, "test@example.com").Return(newTokenPair, nil)
	mockJWTService.On("RefreshExpiry").Return(7 * 24 * time.Hour)
	mockTokenService.On("Rotate", mock.Anything, userID, oldRefreshToken, "new-refresh-token", mock.AnythingOfType("time.Time")).Return(nil)

	rec := postRefresh(handler, "/auth/refresh", dto.RefreshTokenRequest{RefreshToken: oldRefreshToken})

	assert.Equal(t, http.StatusOK, rec.Code)

	var response dto.TokenResponse
	err := json.Unmarshal(rec.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, "new-access-token", response.AccessToken)
	assert.Equal(t, "new-refresh-token", response.RefreshToken)
	assert.Equal(t, int64(900), response.ExpiresIn)

	mockUserService.AssertExpectations(t)
	mockJWTService.AssertExpectations(t)
	mockTokenService.AssertExpectations(t)
}

func TestAuthHandler_RefreshToken_Reused(t *testing.T) {
	mockUserService, mockTokenService, mockJWTService, handler := setupAuthTest(t)

	userID := uuid.New()
	user := &models.User{ID: userID, TenantID: uuid.New(), Email: "test@example.com"}

	mockJWTService.On("ValidateRefreshToken", "used-token").Return(userID, nil)
	mockUserService.On("GetByID", mock.Anything, userID).Return(user, nil)
	mockJWTService.On("GenerateTokenPair", userID, user.TenantID, user.Email).Return(&services.TokenPair{RefreshToken: "new-refresh"}, nil)
	mockJWTService.On("RefreshExpiry").Return(time.Hour)
	mockTokenService.On("Rotate", mock.Anything, userID, "used-token", "new-refresh", mock.Anything).Return(services.ErrRefreshTokenRevoked)

	rec := postRefresh(handler, "/auth/refresh", dto.RefreshTokenRequest{RefreshToken: "used-token"})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "refresh token not found or expired")
	assert.NotContains(t, rec.Body.String(), "new-refresh")
}

func TestAuthHandler_RefreshToken_StoreFailure(t *testing.T) {
	mockUserService, mockTokenService, mockJWTService, handler := setupAuthTest(t)

	userID := uuid.New()
	user := &models.User{ID: userID, TenantID: uuid.New(), Email: "test@example.com"}

	mockJWTService.On("ValidateRefreshToken", "token").Return(userID, nil)
	mockUserService.On("GetByID", mock.Anything, userID).Return(user, nil)
	mockJWTService.On("GenerateTokenPair", userID, user.TenantID, user.Email).Return(&services.TokenPair{RefreshToken: "fresh"}, nil)
	mockJWTService.On("RefreshExpiry").Return(time.Hour)
	mockTokenService.On("Rotate", mock.Anything, userID, "token", "fresh", mock.Anything).Return(errors.New("db down"))

	rec := postRefresh(handler, "/auth/refresh", dto.RefreshTokenRequest{RefreshToken: "token"})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "failed to store refresh token")
}

func TestAuthHandler_RefreshToken_InvalidToken(t *testing.T) {
	_, mockTokenService, mockJWTService, handler := setupAuthTest(t)

	mockJWTService.On("ValidateRefreshToken", "invalid-token").Return(uuid.Nil, errors.New("invalid token"))

	rec := postRefresh(handler, "/auth/refresh", dto.RefreshTokenRequest{RefreshToken: "invalid-token"})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid refresh token")

	mockJWTService.AssertExpectations(t)
	mockTokenService.AssertNotCalled(t, "Rotate")
}

func TestAuthHandler_RefreshToken_UnknownUser(t *testing.T) {
	mockUserService, _, mockJWTService, handler := setupAuthTest(t)

	userID := uuid.New()
	mockJWTService.On("ValidateRefreshToken", "token").Return(userID, nil)
	mockUserService.On("GetByID", mock.Anything, userID).Return(nil, errors.New("no rows"))

	rec := postRefresh(handler, "/auth/refresh", dto.RefreshTokenRequest{RefreshToken: "token"})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "user not found")
}

func TestAuthHandler_RefreshToken_MissingToken(t *testing.T) {
	_, _, _, handler := setupAuthTest(t)

	rec := postRefresh(handler, "/auth/refresh", dto.RefreshTokenRequest{RefreshToken: ""})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "refresh_token is a required field")
}

func TestAuthHandler_Logout_Success(t *testing.T) {
	_, mockTokenService, _, handler := setupAuthTest(t)

	mockTokenService.On("Revoke", mock.Anything, "some-refresh-token").Return(nil)

	rec := postRefresh(handler, "/auth/logout", dto.RefreshTokenRequest{RefreshToken: "some-refresh-token"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "logged out")

	mockTokenService.AssertExpectations(t)
}

func TestAuthHandler_Logout_EmptyToken(t *testing.T) {
	_, mockTokenService, _, handler := setupAuthTest(t)

	rec := postRefresh(handler, "/auth/logout", dto.RefreshTokenRequest{RefreshToken: ""})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "logged out")
	mockTokenService.AssertNotCalled(t, "Revoke")
}

func TestAuthHandler_LogoutAll_Success(t *testing.T) {
	_, mockTokenService, _, handler := setupAuthTest(t)
	jwtSvc := testutil.TestJWTService()

	userID := uuid.New()

	mockTokenService.On("RevokeAll", mock.Anything, userID).Return(nil)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(middleware.Auth(jwtSvc))
	app.Post("/auth/logout-all", handler.LogoutAll)

	token := testutil.GenerateTestToken(t, jwtSvc, userID, uuid.New())
	req := httptest.NewRequest(http.MethodPost, "/auth/logout-all", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "all sessions logged out")

	mockTokenService.AssertExpectations(t)
}

func TestAuthHandler_LogoutAll_NotAuthenticated(t *testing.T) {
	_, _, _, handler := setupAuthTest(t)
	jwtSvc := testutil.TestJWTService()

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(middleware.Auth(jwtSvc))
	app.Post("/auth/logout-all", handler.LogoutAll)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout-all", nil)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

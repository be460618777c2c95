package handlers

import (
	"errors"
	"time"

	"github.com/dimitrije/lessonforge-api/internal/services"
	"github.com/dimitrije/lessonforge-api/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/rs/zerolog"
)

// AuthHandler rotates and revokes refresh tokens. Sign-in happens upstream;
// the first pair is issued by the admin CLI or the identity service.
type AuthHandler struct {
	userService  UserServiceInterface
	tokenService TokenServiceInterface
	jwtService   JWTServiceInterface
	log          zerolog.Logger
}

func NewAuthHandler(
	userService UserServiceInterface,
	tokenService TokenServiceInterface,
	jwtService JWTServiceInterface,
	log zerolog.Logger,
) *AuthHandler {
	return &AuthHandler{
		userService:  userService,
		tokenService: tokenService,
		jwtService:   jwtService,
		log:          log,
	}
}

func (h *AuthHandler) RefreshToken(c *drift.Context) {
	var req dto.RefreshTokenRequest
	if !bind(c, &req) {
		return
	}

	userID, err := h.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		c.Unauthorized("invalid refresh token")
		return
	}

	ctx := c.Request.Context()

	user, err := h.userService.GetByID(ctx, userID)
	if err != nil {
		c.Unauthorized("user not found")
		return
	}

	tokenPair, err := h.jwtService.GenerateTokenPair(user.ID, user.TenantID, user.Email)
	if err != nil {
		c.InternalServerError("failed to generate tokens")
		return
	}

	expiresAt := time.Now().Add(h.jwtService.RefreshExpiry())
	if err := h.tokenService.Rotate(ctx, user.ID, req.RefreshToken, tokenPair.RefreshToken, expiresAt); err != nil {
		if errors.Is(err, services.ErrRefreshTokenRevoked) {
			c.Unauthorized("refresh token not found or expired")
			return
		}
		h.log.Error().Err(err).Str("user_id", user.ID.String()).Msg("refresh token rotation failed")
		c.InternalServerError("failed to store refresh token")
		return
	}

	_ = c.JSON(200, dto.TokenResponse{
		AccessToken:  tokenPair.AccessToken,
		RefreshToken: tokenPair.RefreshToken,
		ExpiresIn:    tokenPair.ExpiresIn,
	})
}

func (h *AuthHandler) Logout(c *drift.Context) {
	var req dto.RefreshTokenRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.RefreshToken != "" {
		_ = h.tokenService.Revoke(c.Request.Context(), req.RefreshToken)
	}

	_ = c.JSON(200, map[string]string{"message": "logged out"})
}

func (h *AuthHandler) LogoutAll(c *drift.Context) {
	userID, _, ok := caller(c)
	if !ok {
		return
	}

	if err := h.tokenService.RevokeAll(c.Request.Context(), userID); err != nil {
		h.log.Error().Err(err).Str("user_id", userID.String()).Msg("revoke all tokens failed")
		c.InternalServerError("failed to revoke tokens")
		return
	}

	_ = c.JSON(200, map[string]string{"message": "all sessions logged out"})
}

package dto

import (
	"time"

	"github.com/dimitrije/lessonforge-api/internal/models"
	"github.com/google/uuid"
)

type CreateShareRequest struct {
	ContentID      uuid.UUID                `json:"content_id" validate:"required"`
	ContentType    string                   `json:"content_type" validate:"required,content_type"`
	ShareType      string                   `json:"share_type" validate:"required,share_type"`
	Recipients     []string                 `json:"recipients" validate:"required_if=ShareType email,omitempty,dive,required"`
	Permissions    *models.SharePermissions `json:"permissions"`
	RequireLogin   bool                     `json:"require_login"`
	ExpirationDate *time.Time               `json:"expiration_date"`
	AllowComments  *bool                    `json:"allow_comments"`
	ShowAnalytics  bool                     `json:"show_analytics"`
	Password       string                   `json:"password" validate:"max=72"`
}

// UpdateShareRequest leaves absent fields untouched. An empty password
// removes it; clear_expiration removes the expiration date.
type UpdateShareRequest struct {
	Recipients      []string                 `json:"recipients" validate:"omitempty,dive,required"`
	Permissions     *models.SharePermissions `json:"permissions"`
	RequireLogin    *bool                    `json:"require_login"`
	ExpirationDate  *time.Time               `json:"expiration_date"`
	ClearExpiration bool                     `json:"clear_expiration"`
	AllowComments   *bool                    `json:"allow_comments"`
	ShowAnalytics   *bool                    `json:"show_analytics"`
	Password        *string                  `json:"password" validate:"omitempty,max=72"`
	IsActive        *bool                    `json:"is_active"`
}

type ShareCommentRequest struct {
	Text string `json:"text" validate:"required,max=10000"`
}

type ShareResponse struct {
	*models.Share
	HasPassword bool   `json:"has_password"`
	URL         string `json:"url,omitempty"`
}

func NewShareResponse(s *models.Share, baseURL string) ShareResponse {
	resp := ShareResponse{Share: s, HasPassword: s.HasPassword()}
	if s.ShareToken != nil {
		resp.URL = baseURL + "/api/v1/s/" + *s.ShareToken
	}
	return resp
}

// PublicShareResponse is what a viewer of a share sees. Statistics are
// only included when the sharer enabled analytics.
type PublicShareResponse struct {
	ID           uuid.UUID               `json:"id"`
	ContentType  models.ContentType      `json:"content_type"`
	Permissions  models.SharePermissions `json:"permissions"`
	RequireLogin bool                    `json:"require_login"`
	HasPassword  bool                    `json:"has_password"`
	ExpiresAt    *time.Time              `json:"expires_at"`
	Statistics   *models.ShareStatistics `json:"statistics,omitempty"`
	Comments     []models.ShareComment   `json:"comments"`
	Content      *models.ContentItem     `json:"content,omitempty"`
}

func NewPublicShareResponse(s *models.Share, content *models.ContentItem) PublicShareResponse {
	resp := PublicShareResponse{
		ID:           s.ID,
		ContentType:  s.ContentType,
		Permissions:  s.Permissions,
		RequireLogin: s.Settings.RequireLogin,
		HasPassword:  s.HasPassword(),
		ExpiresAt:    s.Settings.ExpirationDate,
		Comments:     s.Comments,
		Content:      content,
	}
	if s.Settings.ShowAnalytics {
		stats := s.Statistics
		resp.Statistics = &stats
	}
	return resp
}

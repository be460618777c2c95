package models

import (
	"crypto/rand"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type ShareType string

const (
	ShareLink   ShareType = "link"
	ShareEmail  ShareType = "email"
	ShareUser   ShareType = "user"
	ShareGroup  ShareType = "group"
	SharePublic ShareType = "public"
)

func (t ShareType) Valid() bool {
	switch t {
	case ShareLink, ShareEmail, ShareUser, ShareGroup, SharePublic:
		return true
	}
	return false
}

type SharePermission string

const (
	ShareCanView     SharePermission = "canView"
	ShareCanEdit     SharePermission = "canEdit"
	ShareCanComment  SharePermission = "canComment"
	ShareCanShare    SharePermission = "canShare"
	ShareCanDownload SharePermission = "canDownload"
)

type SharePermissions struct {
	CanView     bool `json:"can_view"`
	CanEdit     bool `json:"can_edit"`
	CanComment  bool `json:"can_comment"`
	CanShare    bool `json:"can_share"`
	CanDownload bool `json:"can_download"`
}

func DefaultSharePermissions() SharePermissions {
	return SharePermissions{CanView: true}
}

func (p SharePermissions) Has(perm SharePermission) bool {
	switch perm {
	case ShareCanView:
		return p.CanView
	case ShareCanEdit:
		return p.CanEdit
	case ShareCanComment:
		return p.CanComment
	case ShareCanShare:
		return p.CanShare
	case ShareCanDownload:
		return p.CanDownload
	}
	return false
}

// ShareSettings holds the access rules of a share. PasswordHash is a bcrypt
// hash and never leaves the server.
type ShareSettings struct {
	RequireLogin   bool       `json:"require_login"`
	PasswordHash   string     `json:"-"`
	ExpirationDate *time.Time `json:"expiration_date"`
	AllowComments  bool       `json:"allow_comments"`
	ShowAnalytics  bool       `json:"show_analytics"`
}

type ShareStatistics struct {
	Views        int        `json:"views"`
	UniqueViews  int        `json:"unique_views"`
	Downloads    int        `json:"downloads"`
	Comments     int        `json:"comments"`
	LastAccessed *time.Time `json:"last_accessed"`
}

// ShareComment has the collaboration comment shape without resolution.
type ShareComment struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	Replies   []Reply   `json:"replies"`
}

// Share distributes a content item outside its collaboration.
type Share struct {
	ID          uuid.UUID        `json:"id"`
	TenantID    uuid.UUID        `json:"tenant_id"`
	ContentID   uuid.UUID        `json:"content_id"`
	ContentType ContentType      `json:"content_type"`
	SharedBy    uuid.UUID        `json:"shared_by"`
	ShareType   ShareType        `json:"share_type"`
	Recipients  []string         `json:"recipients"`
	Permissions SharePermissions `json:"permissions"`
	Settings    ShareSettings    `json:"settings"`
	Statistics  ShareStatistics  `json:"statistics"`
	IsActive    bool             `json:"is_active"`
	ShareToken  *string          `json:"share_token,omitempty"`
	Comments    []ShareComment   `json:"comments"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

func NewShare(tenantID, contentID uuid.UUID, contentType ContentType, sharedBy uuid.UUID, shareType ShareType, recipients []string) (*Share, error) {
	if !shareType.Valid() {
		return nil, ErrInvalidShareType
	}
	if recipients == nil {
		recipients = []string{}
	}
	ts := now()
	return &Share{
		ID:          uuid.New(),
		TenantID:    tenantID,
		ContentID:   contentID,
		ContentType: contentType,
		SharedBy:    sharedBy,
		ShareType:   shareType,
		Recipients:  recipients,
		Permissions: DefaultSharePermissions(),
		Settings:    ShareSettings{AllowComments: true},
		IsActive:    true,
		Comments:    []ShareComment{},
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}, nil
}

func (s *Share) IsExpired() bool {
	return s.Settings.ExpirationDate != nil && s.Settings.ExpirationDate.Before(now())
}

// HasPermission ignores userID: every viewer of a share gets the same
// permission set regardless of share type.
func (s *Share) HasPermission(perm SharePermission, userID *uuid.UUID) bool {
	if !s.IsActive || s.IsExpired() {
		return false
	}
	return s.Permissions.Has(perm)
}

func (s *Share) SetPassword(password string) error {
	if password == "" {
		s.Settings.PasswordHash = ""
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	s.Settings.PasswordHash = string(hash)
	return nil
}

func (s *Share) HasPassword() bool {
	return s.Settings.PasswordHash != ""
}

func (s *Share) CheckPassword(password string) bool {
	if !s.HasPassword() {
		return true
	}
	return bcrypt.CompareHashAndPassword([]byte(s.Settings.PasswordHash), []byte(password)) == nil
}

// RecordView counts every view. Any view with a known user also counts as
// unique; repeat viewers are not de-duplicated.
func (s *Share) RecordView(userID *uuid.UUID) {
	ts := now()
	s.Statistics.Views++
	if userID != nil {
		s.Statistics.UniqueViews++
	}
	s.Statistics.LastAccessed = &ts
}

func (s *Share) RecordDownload() {
	s.Statistics.Downloads++
}

func (s *Share) canDiscuss() bool {
	return s.Settings.AllowComments && s.HasPermission(ShareCanComment, nil)
}

func (s *Share) Comment(commentID uuid.UUID) (*ShareComment, error) {
	for i := range s.Comments {
		if s.Comments[i].ID == commentID {
			return &s.Comments[i], nil
		}
	}
	return nil, ErrCommentNotFound
}

func (s *Share) CommentIDAt(index int) (uuid.UUID, error) {
	if index < 0 || index >= len(s.Comments) {
		return uuid.Nil, ErrCommentNotFound
	}
	return s.Comments[index].ID, nil
}

func (s *Share) AddComment(userID uuid.UUID, text string) (*ShareComment, error) {
	if !s.canDiscuss() {
		return nil, ErrPermissionDenied
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	s.Comments = append(s.Comments, ShareComment{
		ID:        uuid.New(),
		UserID:    userID,
		Text:      text,
		Timestamp: now(),
		Replies:   []Reply{},
	})
	s.Statistics.Comments++
	return &s.Comments[len(s.Comments)-1], nil
}

func (s *Share) AddReply(commentID, userID uuid.UUID, text string) (*Reply, error) {
	if !s.canDiscuss() {
		return nil, ErrPermissionDenied
	}
	comment, err := s.Comment(commentID)
	if err != nil {
		return nil, err
	}
	reply, err := newReply(userID, text)
	if err != nil {
		return nil, err
	}
	comment.Replies = append(comment.Replies, reply)
	s.Statistics.Comments++
	return &comment.Replies[len(comment.Replies)-1], nil
}

// EnsureToken assigns a link token on first save. Uniqueness is left to
// the store's unique index.
func (s *Share) EnsureToken() error {
	if s.ShareType != ShareLink || s.ShareToken != nil {
		return nil
	}
	token, err := GenerateShareToken()
	if err != nil {
		return err
	}
	s.ShareToken = &token
	return nil
}

const (
	shareTokenLength   = 16
	shareTokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

func GenerateShareToken() (string, error) {
	limit := big.NewInt(int64(len(shareTokenAlphabet)))
	var b strings.Builder
	b.Grow(shareTokenLength)
	for i := 0; i < shareTokenLength; i++ {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		b.WriteByte(shareTokenAlphabet[n.Int64()])
	}
	return b.String(), nil
}

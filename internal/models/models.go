package models

import "time"

type Role string

const (
	RoleUser     Role = "user"
	RoleAdmin    Role = "admin"
	RoleReviewer Role = "reviewer"
)

type UserStatus string

const (
	UserActive UserStatus = "active"
	UserBanned UserStatus = "banned"
)

type PhotoStatus string

const (
	PhotoPending  PhotoStatus = "pending"
	PhotoApproved PhotoStatus = "approved"
	PhotoRejected PhotoStatus = "rejected"
)

type FeedbackStatus string

const (
	FeedbackUnread  FeedbackStatus = "unread"
	FeedbackRead    FeedbackStatus = "read"
	FeedbackReplied FeedbackStatus = "replied"
)

type FeedbackType string

const (
	FeedbackSuggestion FeedbackType = "suggestion"
	FeedbackBug        FeedbackType = "bug"
	FeedbackComplaint  FeedbackType = "complaint"
	FeedbackOther      FeedbackType = "other"
)

func (t FeedbackType) Valid() bool {
	switch t {
	case FeedbackSuggestion, FeedbackBug, FeedbackComplaint, FeedbackOther:
		return true
	}
	return false
}

type User struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"password_hash"`
	Avatar       string     `json:"avatar,omitempty"`
	Role         Role       `json:"role"`
	Status       UserStatus `json:"status"`
	Level        int        `json:"level"`
	Exp          int        `json:"exp"`
	Bio          string     `json:"bio,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`

	UploadCount   int `json:"upload_count"`
	LikeCount     int `json:"like_count"`
	CommentCount  int `json:"comment_count"`
	DownloadCount int `json:"download_count"`
}

// PublicUser is the view of a User handed to clients.
type PublicUser struct {
	ID            string     `json:"id"`
	Username      string     `json:"username"`
	Email         string     `json:"email,omitempty"`
	Avatar        string     `json:"avatar,omitempty"`
	Role          Role       `json:"role"`
	Status        UserStatus `json:"status"`
	Level         int        `json:"level"`
	Exp           int        `json:"exp"`
	Bio           string     `json:"bio,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	LastLoginAt   *time.Time `json:"last_login_at,omitempty"`
	UploadCount   int        `json:"upload_count"`
	LikeCount     int        `json:"like_count"`
	CommentCount  int        `json:"comment_count"`
	DownloadCount int        `json:"download_count"`
}

func (u User) Public() PublicUser {
	return PublicUser{
		ID:            u.ID,
		Username:      u.Username,
		Email:         u.Email,
		Avatar:        u.Avatar,
		Role:          u.Role,
		Status:        u.Status,
		Level:         u.Level,
		Exp:           u.Exp,
		Bio:           u.Bio,
		CreatedAt:     u.CreatedAt,
		LastLoginAt:   u.LastLoginAt,
		UploadCount:   u.UploadCount,
		LikeCount:     u.LikeCount,
		CommentCount:  u.CommentCount,
		DownloadCount: u.DownloadCount,
	}
}

type Session struct {
	ID        string    `json:"id"`
	User      User      `json:"user"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

type Comment struct {
	ID         string    `json:"id"`
	PhotoID    string    `json:"photo_id"`
	UserID     string    `json:"user_id"`
	Username   string    `json:"username"`
	UserAvatar string    `json:"user_avatar,omitempty"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

type Photo struct {
	ID             string      `json:"id"`
	URL            string      `json:"url"`
	Thumbnail      string      `json:"thumbnail,omitempty"`
	Title          string      `json:"title"`
	Description    string      `json:"description,omitempty"`
	Airport        string      `json:"airport"`
	Tags           []string    `json:"tags"`
	UploaderID     string      `json:"uploader_id"`
	UploaderName   string      `json:"uploader_name"`
	UploaderAvatar string      `json:"uploader_avatar,omitempty"`
	Status         PhotoStatus `json:"status"`
	CreatedAt      time.Time   `json:"created_at"`

	Likes     []string  `json:"likes"`
	Comments  []Comment `json:"comments"`
	Favorites []string  `json:"favorites"`
	Downloads int       `json:"downloads"`
	Views     int       `json:"views"`
}

// Clone returns a copy that shares no slices with p. Collections are never
// nil in the copy, so they encode as [] rather than null.
func (p Photo) Clone() Photo {
	c := p
	c.Tags = cloneSlice(p.Tags)
	c.Likes = cloneSlice(p.Likes)
	c.Favorites = cloneSlice(p.Favorites)
	c.Comments = cloneSlice(p.Comments)
	return c
}

func cloneSlice[T any](s []T) []T {
	out := make([]T, len(s))
	copy(out, s)
	return out
}

func (p Photo) LikedBy(userID string) bool {
	return hasID(p.Likes, userID)
}

func (p Photo) FavoritedBy(userID string) bool {
	return hasID(p.Favorites, userID)
}

func hasID(set []string, id string) bool {
	for _, v := range set {
		if v == id {
			return true
		}
	}
	return false
}

// NewPhoto carries the caller-supplied fields of an upload.
type NewPhoto struct {
	URL            string
	Thumbnail      string
	Title          string
	Description    string
	Airport        string
	Tags           []string
	UploaderID     string
	UploaderName   string
	UploaderAvatar string
}

type NewComment struct {
	UserID     string
	Username   string
	UserAvatar string
	Content    string
}

type SearchFilters struct {
	Airport    string
	Tags       []string
	UploaderID string
}

type TagCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type Feedback struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id,omitempty"`
	Username  string         `json:"username"`
	Email     string         `json:"email"`
	Type      FeedbackType   `json:"type"`
	Subject   string         `json:"subject"`
	Content   string         `json:"content"`
	Status    FeedbackStatus `json:"status"`
	Reply     string         `json:"reply,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	RepliedAt *time.Time     `json:"replied_at,omitempty"`
}

type NewFeedback struct {
	UserID   string
	Username string
	Email    string
	Type     FeedbackType
	Subject  string
	Content  string
}

type SiteConfig struct {
	SiteName           string `json:"site_name" yaml:"site_name"`
	SiteLogo           string `json:"site_logo" yaml:"site_logo"`
	Copyright          string `json:"copyright" yaml:"copyright"`
	ContactEmail       string `json:"contact_email" yaml:"contact_email"`
	EnableRegistration bool   `json:"enable_registration" yaml:"enable_registration"`
	EnableUpload       bool   `json:"enable_upload" yaml:"enable_upload"`
	MaxUploadSize      int    `json:"max_upload_size" yaml:"max_upload_size"`
	RequireReview      bool   `json:"require_review" yaml:"require_review"`
}

func DefaultSiteConfig() SiteConfig {
	return SiteConfig{
		SiteName:           "FlightShots",
		SiteLogo:           "/logo.png",
		Copyright:          "© FlightShots",
		ContactEmail:       "support@flightshots.local",
		EnableRegistration: true,
		EnableUpload:       true,
		MaxUploadSize:      10,
		RequireReview:      true,
	}
}

// Result is the outcome of a form-style operation. Message is an i18n key.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func Ok(msg string) Result   { return Result{Success: true, Message: msg} }
func Fail(msg string) Result { return Result{Success: false, Message: msg} }

type UserStats struct {
	Members   int `json:"members"`
	Admins    int `json:"admins"`
	Reviewers int `json:"reviewers"`
	Banned    int `json:"banned"`
}

package models

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidPatch = errors.New("invalid patch")

// UserPatch lists the user fields a caller may change. Nil means unchanged.
// Exp and level are not here: exp only moves through AddExp.
type UserPatch struct {
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
	Avatar   *string `json:"avatar,omitempty"`
	Bio      *string `json:"bio,omitempty"`
}

func (p UserPatch) Validate() error {
	if p.Username != nil && strings.TrimSpace(*p.Username) == "" {
		return fmt.Errorf("%w: username is empty", ErrInvalidPatch)
	}
	if p.Email != nil && !strings.Contains(*p.Email, "@") {
		return fmt.Errorf("%w: email %q", ErrInvalidPatch, *p.Email)
	}
	if p.Password != nil && len(*p.Password) < 6 {
		return fmt.Errorf("%w: password too short", ErrInvalidPatch)
	}
	if p.Bio != nil && len(*p.Bio) > 500 {
		return fmt.Errorf("%w: bio too long", ErrInvalidPatch)
	}
	return nil
}

func (p UserPatch) Empty() bool {
	return p.Username == nil && p.Email == nil && p.Password == nil && p.Avatar == nil && p.Bio == nil
}

type SiteConfigPatch struct {
	SiteName           *string `json:"site_name,omitempty" yaml:"site_name"`
	SiteLogo           *string `json:"site_logo,omitempty" yaml:"site_logo"`
	Copyright          *string `json:"copyright,omitempty" yaml:"copyright"`
	ContactEmail       *string `json:"contact_email,omitempty" yaml:"contact_email"`
	EnableRegistration *bool   `json:"enable_registration,omitempty" yaml:"enable_registration"`
	EnableUpload       *bool   `json:"enable_upload,omitempty" yaml:"enable_upload"`
	MaxUploadSize      *int    `json:"max_upload_size,omitempty" yaml:"max_upload_size"`
	RequireReview      *bool   `json:"require_review,omitempty" yaml:"require_review"`
}

func (p SiteConfigPatch) Validate() error {
	if p.SiteName != nil && strings.TrimSpace(*p.SiteName) == "" {
		return fmt.Errorf("%w: site name is empty", ErrInvalidPatch)
	}
	if p.ContactEmail != nil && *p.ContactEmail != "" && !strings.Contains(*p.ContactEmail, "@") {
		return fmt.Errorf("%w: contact email %q", ErrInvalidPatch, *p.ContactEmail)
	}
	if p.MaxUploadSize != nil && (*p.MaxUploadSize < 1 || *p.MaxUploadSize > 100) {
		return fmt.Errorf("%w: max upload size %d MB out of range", ErrInvalidPatch, *p.MaxUploadSize)
	}
	return nil
}

// Apply merges p over c. Callers validate first.
func (p SiteConfigPatch) Apply(c SiteConfig) SiteConfig {
	if p.SiteName != nil {
		c.SiteName = *p.SiteName
	}
	if p.SiteLogo != nil {
		c.SiteLogo = *p.SiteLogo
	}
	if p.Copyright != nil {
		c.Copyright = *p.Copyright
	}
	if p.ContactEmail != nil {
		c.ContactEmail = *p.ContactEmail
	}
	if p.EnableRegistration != nil {
		c.EnableRegistration = *p.EnableRegistration
	}
	if p.EnableUpload != nil {
		c.EnableUpload = *p.EnableUpload
	}
	if p.MaxUploadSize != nil {
		c.MaxUploadSize = *p.MaxUploadSize
	}
	if p.RequireReview != nil {
		c.RequireReview = *p.RequireReview
	}
	return c
}

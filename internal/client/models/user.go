// Package models defines the records exchanged with the analysis backend.
package models

import "github.com/nyakeriga/geoforensics-web-ui/internal/timex"

// UserProfile is the identity of the logged-in account.
type UserProfile struct {
	ID          int64            `json:"id"`
	Email       string           `json:"email"`
	Username    string           `json:"username"`
	FullName    *string          `json:"fullName,omitempty"`
	IsActive    bool             `json:"isActive"`
	IsSuperuser bool             `json:"isSuperuser"`
	CreatedAt   timex.Timestamp  `json:"createdAt"`
	UpdatedAt   *timex.Timestamp `json:"updatedAt,omitempty"`
}

// DisplayName prefers the full name when the profile has one.
func (u UserProfile) DisplayName() string {
	if u.FullName != nil && *u.FullName != "" {
		return *u.FullName
	}
	return u.Username
}

// ProfilePatch is a partial profile update; nil fields are left unchanged.
type ProfilePatch struct {
	Email    *string `json:"email,omitempty"`
	Username *string `json:"username,omitempty"`
	FullName *string `json:"fullName,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p ProfilePatch) Empty() bool {
	return p.Email == nil && p.Username == nil && p.FullName == nil
}

// internal/domain/models/profile.go
package models

// Terminology: User Identifiers
//   - UserID / userID / user_id: the 26-character id the remote profile API assigns to a user
//   - Username: the human-readable handle shown in the list

import "strings"

// Profile is a user account record returned by the remote listing and
// search operations. It is cached in the profiles collection keyed by ID.
type Profile struct {
	ID             string `bson:"_id" json:"id"`
	Username       string `bson:"username" json:"username"`
	UsernameCI     string `bson:"username_ci" json:"-"` // lowercase, diacritics-stripped
	Email          string `bson:"email" json:"email"`
	FirstName      string `bson:"first_name,omitempty" json:"first_name,omitempty"`
	LastName       string `bson:"last_name,omitempty" json:"last_name,omitempty"`
	Nickname       string `bson:"nickname,omitempty" json:"nickname,omitempty"`
	Roles          string `bson:"roles" json:"roles"` // space separated, e.g. "system_user system_admin"
	AuthService    string `bson:"auth_service,omitempty" json:"auth_service,omitempty"`
	CreateAt       int64  `bson:"create_at" json:"create_at"`
	UpdateAt       int64  `bson:"update_at" json:"update_at"`
	DeleteAt       int64  `bson:"delete_at" json:"delete_at"` // non-zero means deactivated
	LastActivityAt int64  `bson:"last_activity_at,omitempty" json:"last_activity_at,omitempty"`
}

// Inactive reports whether the account has been deactivated.
func (p Profile) Inactive() bool { return p.DeleteAt > 0 }

// HasRole reports whether role appears in the profile's role list.
func (p Profile) HasRole(role string) bool {
	for _, r := range strings.Fields(p.Roles) {
		if r == role {
			return true
		}
	}
	return false
}

// DisplayName returns "First Last", falling back to the username.
func (p Profile) DisplayName() string {
	full := strings.TrimSpace(p.FirstName + " " + p.LastName)
	if full == "" {
		return p.Username
	}
	return full
}

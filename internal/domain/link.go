package domain

import "time"

// ManagedLink is a profile's registered connection to one external account
// used as a content source (a repository owner, a channel, a deck account).
type ManagedLink struct {
	ID                       string     `json:"id" db:"id"`
	ProfileID                string     `json:"profile_id" db:"profile_id"`
	Kind                     string     `json:"kind" db:"kind"`
	RemoteID                 string     `json:"remote_id" db:"remote_id"`
	AuthAccessToken          string     `json:"-" db:"auth_access_token"`
	AuthAccessTokenExpiresAt *time.Time `json:"-" db:"auth_access_token_expires_at"`
	AuthRefreshToken         string     `json:"-" db:"auth_refresh_token"`
	CreatedAt                time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt                time.Time  `json:"updated_at" db:"updated_at"`
}

// LinkImport is the locally recorded observation of one remote item
// belonging to a ManagedLink. Imports are soft-deleted, never removed:
// at most one non-deleted row exists per (ProfileLinkID, RemoteID).
type LinkImport struct {
	ID            string                 `json:"id" db:"id"`
	ProfileLinkID string                 `json:"profile_link_id" db:"profile_link_id"`
	RemoteID      string                 `json:"remote_id" db:"remote_id"`
	Properties    map[string]interface{} `json:"properties" db:"properties"`
	CreatedAt     time.Time              `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at" db:"updated_at"`
	DeletedAt     *time.Time             `json:"deleted_at,omitempty" db:"deleted_at"`
}

// IsDeleted reports whether the import has been retired by reconciliation.
func (i LinkImport) IsDeleted() bool {
	return i.DeletedAt != nil
}

package yetichat

import (
	"time"
)

// DefaultStatusMessage is sent when a user is created without a status message
const DefaultStatusMessage = "Available"

// User is the platform user record as seen by this package
type User struct {
	UID           string         `json:"uid"`
	Name          string         `json:"name,omitempty"`
	Avatar        string         `json:"avatar,omitempty"`
	Link          string         `json:"link,omitempty"`
	Role          string         `json:"role,omitempty"`
	StatusMessage string         `json:"statusMessage,omitempty"`
	Status        string         `json:"status,omitempty"`
	Tags          []string       `json:"tags,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	CreatedAt     int64          `json:"createdAt,omitempty"`
	LastActiveAt  int64          `json:"lastActiveAt,omitempty"`
}

// DisplayName returns the name, falling back to the uid
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.Name != "" {
		return u.Name
	}
	return u.UID
}

// Clone returns a copy that shares nothing with u
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.Tags != nil {
		c.Tags = append([]string(nil), u.Tags...)
	}
	if u.Metadata != nil {
		c.Metadata = make(map[string]any, len(u.Metadata))
		for k, v := range u.Metadata {
			c.Metadata[k] = v
		}
	}
	return &c
}

// AuthState is the authentication snapshot published to subscribers.
// An empty Error means no error.
type AuthState struct {
	IsAuthenticated bool   `json:"is_authenticated"`
	User            *User  `json:"user,omitempty"`
	IsLoading       bool   `json:"is_loading"`
	Error           string `json:"error,omitempty"`
}

// HasError reports whether the state carries a failure message
func (s AuthState) HasError() bool {
	return s.Error != ""
}

func (s AuthState) clone() AuthState {
	s.User = s.User.Clone()
	return s
}

// LoginCredentials is the input to a login
type LoginCredentials struct {
	UID string `json:"uid"`
}

// CreateUserRequest is the payload for account provisioning
type CreateUserRequest struct {
	UID           string   `json:"uid"`
	Name          string   `json:"name"`
	Avatar        string   `json:"avatar,omitempty"`
	Link          string   `json:"link,omitempty"`
	StatusMessage string   `json:"statusMessage,omitempty"`
	Tags          []string `json:"tags,omitempty"`
}

// ProvisionResult is the outcome of a create call. Created is false when the
// uid already existed on the platform.
type ProvisionResult struct {
	Created bool
	User    *User
}

// ProvisionOutcome pairs a seeded uid with its result
type ProvisionOutcome struct {
	UID    string
	Result ProvisionResult
	Err    error
}

// LocalSession is the session the client keeps for the logged in user
type LocalSession struct {
	UID       string
	AuthToken string
	User      *User
	CreatedAt time.Time
}

package user

import "errors"

var (
	ErrNotFound = errors.New("user not found")
)

// Profile is the account record kept by the identity service. This backend
// only reads it; registration, roles and sessions are issued elsewhere.
type Profile struct {
	ID        int     `json:"userId"`
	Email     string  `json:"email"`
	FullName  *string `json:"fullName,omitempty"`
	Role      string  `json:"role"`
	AvatarURL *string `json:"avatarUrl,omitempty"`
}

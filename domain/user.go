package domain

import (
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]{3,32}$`)

// User represents an authenticated identity in the platform.
type User struct {
	ID        string            `json:"id"`
	Username  string            `json:"username"`
	Email     string            `json:"email,omitempty"`
	Role      string            `json:"role"`
	Status    string            `json:"status"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func (u *User) IsActive() bool {
	return u != nil && u.Status == UserStatusActive
}

// Validate checks the fields users can change about themselves.
func (u *User) Validate() error {
	err := validation.ValidateStruct(u,
		validation.Field(&u.ID, validation.Required, validation.By(func(any) error {
			if !IsValidID(u.ID) {
				return validation.NewError("validation_user_id", "must be a valid identifier")
			}
			return nil
		})),
		validation.Field(&u.Username, validation.Required, validation.Match(usernamePattern)),
		validation.Field(&u.Email, is.EmailFormat),
		validation.Field(&u.Status, validation.Required, validation.In(UserStatusActive, UserStatusDisabled)),
	)
	if err != nil {
		return WrapError(ErrCodeInvalid, "invalid user", err)
	}
	return nil
}

// Ref returns the lightweight reference embedded in todo payloads.
func (u *User) Ref() UserRef {
	if u == nil {
		return UserRef{}
	}
	return UserRef{ID: u.ID, Username: u.Username, Email: u.Email}
}

// UserRef is a user identity resolved at read time.
type UserRef struct {
	ID       string `json:"id"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
}

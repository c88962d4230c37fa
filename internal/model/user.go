package model

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Avatar references an image stored in external object storage.  StorageID is
// the object key needed to manage the stored image; URL is what clients load.
type Avatar struct {
	StorageID string `bson:"storage_id" json:"storage_id"`
	URL       string `bson:"url" json:"url"`
}

// User represents an account document in the `users` collection.  It is
// never serialized to clients directly; every response path goes through the
// PublicUser projection so the password hash stays inside the service.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	FirstName    string             `bson:"first_name"`
	LastName     string             `bson:"last_name"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password_hash"`
	Avatar       *Avatar            `bson:"avatar,omitempty"`
	DOB          *time.Time         `bson:"dob,omitempty"`
	Role         string             `bson:"role,omitempty"`
	CreatedAt    time.Time          `bson:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"`
}

// PublicUser is the projection of a User that is safe to return to clients.
// It is constructed explicitly; nothing in the codebase serializes User itself.
type PublicUser struct {
	ID        string     `json:"_id"`
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	Avatar    *Avatar    `json:"avatar,omitempty"`
	Email     string     `json:"email"`
	Role      string     `json:"role,omitempty"`
	DOB       *time.Time `json:"dob,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Public returns the client-facing projection of the user.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID.Hex(),
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Avatar:    u.Avatar,
		Email:     u.Email,
		Role:      u.Role,
		DOB:       u.DOB,
		CreatedAt: u.CreatedAt,
	}
}

// ValidationError marks a field constraint violation so handlers can report
// it as a client error rather than a server fault.
type ValidationError struct{ msg string }

func (e *ValidationError) Error() string { return e.msg }

func validationErr(msg string) error { return &ValidationError{msg: msg} }

// IsValidationError reports whether err is a field constraint violation.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

var emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

const (
	nameMinLen     = 3
	nameMaxLen     = 25
	passwordMinLen = 8
)

// ValidateNew checks the constraints for a user about to be created: name
// length bounds, email format and minimum password length.  The plaintext
// password is validated here because the hash hides its length afterwards.
func (u *User) ValidateNew(password string) error {
	if l := len(strings.TrimSpace(u.FirstName)); l < nameMinLen || l > nameMaxLen {
		return validationErr("First name must be between 3 and 25 characters")
	}
	if l := len(strings.TrimSpace(u.LastName)); l < nameMinLen || l > nameMaxLen {
		return validationErr("Last name must be between 3 and 25 characters")
	}
	if !emailRe.MatchString(u.Email) {
		return validationErr("Please enter a valid email")
	}
	if len(password) < passwordMinLen {
		return validationErr("Password must be at least 8 characters")
	}
	return nil
}

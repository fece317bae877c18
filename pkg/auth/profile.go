package auth

import (
	"errors"
	"time"
)

// DefaultProfileName is used when no profile name is given
const DefaultProfileName = "default"

// Profile holds one set of AWS access keys
type Profile struct {
	Name            string    `json:"name"`
	AccessKeyID     string    `json:"access_key_id"`
	SecretAccessKey string    `json:"secret_access_key"`
	SessionToken    string    `json:"session_token,omitempty"`
	LastModified    time.Time `json:"last_modified"`
}

// CredentialStore is the interface for storing and retrieving profiles
type CredentialStore interface {
	// Store saves a profile under its name
	Store(profile *Profile) error

	// Retrieve gets the profile with the given name
	Retrieve(name string) (*Profile, error)

	// List returns all stored profiles
	List() ([]*Profile, error)

	// Delete removes the profile with the given name
	Delete(name string) error

	// Exists checks if a profile is stored under name
	Exists(name string) bool
}

// Errors
var (
	ErrCredentialsNotFound = errors.New("credentials not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrStoreUnavailable    = errors.New("credential store unavailable")
)

// Validate checks that the profile carries a usable key pair
func (p *Profile) Validate() error {
	switch {
	case p == nil:
		return ErrInvalidCredentials
	case p.Name == "":
		return errors.New("profile name is required")
	case p.AccessKeyID == "":
		return errors.New("access key ID is required")
	case p.SecretAccessKey == "":
		return errors.New("secret access key is required")
	}
	return nil
}

// Sanitize returns a copy of the profile with secrets masked
func (p *Profile) Sanitize() *Profile {
	if p == nil {
		return nil
	}

	out := &Profile{
		Name:            p.Name,
		AccessKeyID:     maskString(p.AccessKeyID),
		SecretAccessKey: maskString(p.SecretAccessKey),
		LastModified:    p.LastModified,
	}
	if p.SessionToken != "" {
		out.SessionToken = maskString(p.SessionToken)
	}
	return out
}

// maskString masks all but the first 4 and last 4 characters of a string
func maskString(s string) string {
	if len(s) <= 8 {
		return "********"
	}
	return s[:4] + "..." + s[len(s)-4:]
}

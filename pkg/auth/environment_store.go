package auth

import (
	"os"
	"time"
)

// Environment variables read by EnvironmentStore, the names the AWS CLI uses
const (
	EnvAccessKeyID     = "AWS_ACCESS_KEY_ID"
	EnvSecretAccessKey = "AWS_SECRET_ACCESS_KEY"
	EnvSessionToken    = "AWS_SESSION_TOKEN"

	// EnvProfileName labels the profile built from the environment
	EnvProfileName = "env"
)

// EnvironmentStore implements CredentialStore over the standard AWS
// environment variables. It is read-only.
type EnvironmentStore struct{}

// NewEnvironmentStore creates a new environment-based credential store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(profile *Profile) error {
	return ErrStoreUnavailable
}

// Retrieve builds a profile from the environment. Only the empty name and
// EnvProfileName resolve here.
func (e *EnvironmentStore) Retrieve(name string) (*Profile, error) {
	if name != "" && name != EnvProfileName {
		return nil, ErrCredentialsNotFound
	}

	accessKey := os.Getenv(EnvAccessKeyID)
	secretKey := os.Getenv(EnvSecretAccessKey)
	if accessKey == "" || secretKey == "" {
		return nil, ErrCredentialsNotFound
	}

	return &Profile{
		Name:            EnvProfileName,
		AccessKeyID:     accessKey,
		SecretAccessKey: secretKey,
		SessionToken:    os.Getenv(EnvSessionToken),
		LastModified:    time.Now(),
	}, nil
}

// List returns a single profile if the environment holds keys
func (e *EnvironmentStore) List() ([]*Profile, error) {
	profile, err := e.Retrieve("")
	if err != nil {
		return []*Profile{}, nil
	}
	return []*Profile{profile}, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete(name string) error {
	return ErrStoreUnavailable
}

// Exists checks if environment keys are set
func (e *EnvironmentStore) Exists(name string) bool {
	if name != "" && name != EnvProfileName {
		return false
	}
	return os.Getenv(EnvAccessKeyID) != "" && os.Getenv(EnvSecretAccessKey) != ""
}

package uid

import "github.com/google/uuid"

// New returns a random (version 4) UUID string.
func New() string {
	return uuid.NewString()
}

// IsValid reports whether id parses as a UUID in any of the accepted forms.
func IsValid(id string) bool {
	return id != "" && uuid.Validate(id) == nil
}

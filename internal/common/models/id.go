package models

import (
	"github.com/google/uuid"
)

// SystemUserID is the reserved identifier of the user that performs system actions
const SystemUserID ID = "00000000-0000-0000-0000-000000000000"

// ID is a canonical lower-case UUID string shared by all aggregates
type ID string

// NextID generates a new random identifier
func NextID() ID {
	return ID(uuid.NewString())
}

// ParseID validates s and returns it in canonical form
func ParseID(s string) (ID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return "", NewValidationError("id", "invalid uuid %q", s)
	}
	return ID(u.String()), nil
}

// MustParseID is ParseID for literals known to be valid.
func MustParseID(s string) ID {
	id, err := ParseID(s)
	if err != nil {
		panic(err)
	}
	return id
}

// IsValidID reports whether s parses as a UUID
func IsValidID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

func (id ID) Equals(other ID) bool {
	return id == other
}

func (id ID) IsSystem() bool {
	return id == SystemUserID
}

func (id ID) String() string {
	return string(id)
}

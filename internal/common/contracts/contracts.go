// Package contracts holds the read-only views that producing contexts expose
// of their entities. Notifications depend on these views only, never on the
// producing context's own types.
package contracts

import (
	"crm-notifications/internal/common/models"
)

// File is a stored file. DirectURL is nil when the file has no public URL.
type File struct {
	OriginalName string
	DirectURL    *string
}

// ProfilePicture is a user's avatar. File is nil when nothing was uploaded.
type ProfilePicture struct {
	File *File
}

type User interface {
	UUID() models.ID
	DisplayName() string
	// ProfilePicture returns nil when the user has none
	ProfilePicture() *ProfilePicture
}

type CompanyAccount interface {
	UUID() models.ID
}

// UserCompanyAccount is a user's membership in a company account. It is the
// owner of a notification inbox.
type UserCompanyAccount interface {
	UUID() models.ID
	User() User
	CompanyAccount() CompanyAccount
}

type Lead interface {
	UUID() models.ID
	Title() string
}

type CalendarEvent interface {
	UUID() models.ID
	Title() string
	Type() string
}

type Contact interface {
	UUID() models.ID
	DisplayName() string
	// PhotoFile returns nil when the contact has no photo
	PhotoFile() *File
}

type Sequence interface {
	UUID() models.ID
	Name() string
	Owner() User
}

type SequenceContact interface {
	UUID() models.ID
	Contact() Contact
	Sequence() Sequence
}

type IntegrationStatus struct {
	Status         string
	AdditionalInfo *string
}

type Integration interface {
	UUID() models.ID
	Service() string
	Status() IntegrationStatus
	UserCompanyAccount() UserCompanyAccount
}

type ImportJob interface {
	UUID() models.ID
	Type() string
	// SourceFile returns nil when the uploaded file is gone
	SourceFile() *File
	Entries() int
	Errors() int
}

// SameUser compares two users by identity value. A nil user never matches.
func SameUser(a, b User) bool {
	if a == nil || b == nil {
		return false
	}
	return a.UUID().Equals(b.UUID())
}

// IsSystemUser reports whether u is the reserved system actor
func IsSystemUser(u User) bool {
	return u != nil && u.UUID().IsSystem()
}

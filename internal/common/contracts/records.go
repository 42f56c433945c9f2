package contracts

import "crm-notifications/internal/common/models"

// Plain value implementations of the contracts. Producing contexts that do not
// want to expose their own entities can snapshot them into these records.

type UserRecord struct {
	ID      models.ID
	Name    string
	Picture *ProfilePicture
}

func (u *UserRecord) UUID() models.ID                 { return u.ID }
func (u *UserRecord) DisplayName() string             { return u.Name }
func (u *UserRecord) ProfilePicture() *ProfilePicture { return u.Picture }

// SystemUser returns the reserved actor used for system-triggered actions
func SystemUser() *UserRecord {
	return &UserRecord{ID: models.SystemUserID, Name: "System"}
}

type CompanyAccountRecord struct {
	ID models.ID
}

func (c *CompanyAccountRecord) UUID() models.ID { return c.ID }

type UserCompanyAccountRecord struct {
	ID      models.ID
	Member  User
	Company CompanyAccount
}

func (a *UserCompanyAccountRecord) UUID() models.ID                { return a.ID }
func (a *UserCompanyAccountRecord) User() User                     { return a.Member }
func (a *UserCompanyAccountRecord) CompanyAccount() CompanyAccount { return a.Company }

type LeadRecord struct {
	ID        models.ID
	LeadTitle string
}

func (l *LeadRecord) UUID() models.ID { return l.ID }
func (l *LeadRecord) Title() string   { return l.LeadTitle }

type CalendarEventRecord struct {
	ID         models.ID
	EventTitle string
	EventType  string
}

func (e *CalendarEventRecord) UUID() models.ID { return e.ID }
func (e *CalendarEventRecord) Title() string   { return e.EventTitle }
func (e *CalendarEventRecord) Type() string    { return e.EventType }

type ContactRecord struct {
	ID    models.ID
	Name  string
	Photo *File
}

func (c *ContactRecord) UUID() models.ID     { return c.ID }
func (c *ContactRecord) DisplayName() string { return c.Name }
func (c *ContactRecord) PhotoFile() *File    { return c.Photo }

type SequenceRecord struct {
	ID           models.ID
	SequenceName string
	Creator      User
}

func (s *SequenceRecord) UUID() models.ID { return s.ID }
func (s *SequenceRecord) Name() string    { return s.SequenceName }
func (s *SequenceRecord) Owner() User     { return s.Creator }

type SequenceContactRecord struct {
	ID          models.ID
	ContactRef  Contact
	SequenceRef Sequence
}

func (s *SequenceContactRecord) UUID() models.ID    { return s.ID }
func (s *SequenceContactRecord) Contact() Contact   { return s.ContactRef }
func (s *SequenceContactRecord) Sequence() Sequence { return s.SequenceRef }

type IntegrationRecord struct {
	ID            models.ID
	ServiceName   string
	CurrentStatus IntegrationStatus
	Account       UserCompanyAccount
}

func (i *IntegrationRecord) UUID() models.ID                        { return i.ID }
func (i *IntegrationRecord) Service() string                        { return i.ServiceName }
func (i *IntegrationRecord) Status() IntegrationStatus              { return i.CurrentStatus }
func (i *IntegrationRecord) UserCompanyAccount() UserCompanyAccount { return i.Account }

type ImportJobRecord struct {
	ID           models.ID
	ImportType   string
	File         *File
	EntriesCount int
	ErrorsCount  int
}

func (j *ImportJobRecord) UUID() models.ID   { return j.ID }
func (j *ImportJobRecord) Type() string      { return j.ImportType }
func (j *ImportJobRecord) SourceFile() *File { return j.File }
func (j *ImportJobRecord) Entries() int      { return j.EntriesCount }
func (j *ImportJobRecord) Errors() int       { return j.ErrorsCount }

package notification

import (
	"time"

	"crm-notifications/internal/common/contracts"
	"crm-notifications/internal/common/models"
)

// now is the clock used for every timestamp on the aggregate. Mongo keeps
// millisecond precision so values are truncated before they are stored.
var now = func() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// Notification is the aggregate root of a user's inbox entry
type Notification struct {
	id          models.ID
	version     int
	source      Source
	eventType   EventType
	variables   Variables
	target      contracts.UserCompanyAccount
	createdBy   contracts.User
	createdAt   time.Time
	updatedAt   time.Time
	displayedAt *time.Time
	readAt      *time.Time

	// storedVersion is the version last loaded from or written to storage,
	// zero until the notification is flushed for the first time.
	storedVersion int
}

// newNotification builds a fresh aggregate. The system actor is never kept
// as creator.
func newNotification(
	source Source,
	eventType EventType,
	variables Variables,
	target contracts.UserCompanyAccount,
	createdBy contracts.User,
) *Notification {
	if createdBy == nil || contracts.IsSystemUser(createdBy) {
		createdBy = nil
	}
	ts := now()
	return &Notification{
		id:        models.NextID(),
		version:   1,
		source:    source,
		eventType: eventType,
		variables: variables,
		target:    target,
		createdBy: createdBy,
		createdAt: ts,
		updatedAt: ts,
	}
}

func (n *Notification) ID() models.ID {
	return n.id
}

func (n *Notification) Version() int {
	return n.version
}

func (n *Notification) Source() Source {
	return n.source
}

func (n *Notification) EventType() EventType {
	return n.eventType
}

func (n *Notification) Variables() Variables {
	return n.variables
}

func (n *Notification) Target() contracts.UserCompanyAccount {
	return n.target
}

// CreatedBy is nil for notifications raised by the system
func (n *Notification) CreatedBy() contracts.User {
	return n.createdBy
}

func (n *Notification) CreatedAt() time.Time {
	return n.createdAt
}

func (n *Notification) UpdatedAt() time.Time {
	return n.updatedAt
}

func (n *Notification) DisplayedAt() *time.Time {
	return n.displayedAt
}

func (n *Notification) ReadAt() *time.Time {
	return n.readAt
}

func (n *Notification) IsDisplayed() bool {
	return n.displayedAt != nil
}

func (n *Notification) IsRead() bool {
	return n.readAt != nil
}

// Display marks the notification as shown to the user and stages it in repo.
// The caller flushes.
func (n *Notification) Display(repo NotificationRepository) {
	if n.displayedAt != nil {
		return
	}
	ts := now()
	n.displayedAt = &ts
	n.updatedAt = ts
	n.version++
	repo.Store(n)
}

// Read marks the notification as read, displaying it at the same instant if
// needed, and stages it in repo. The caller flushes.
func (n *Notification) Read(repo NotificationRepository) {
	if n.readAt != nil {
		return
	}
	ts := now()
	n.readAt = &ts
	if n.displayedAt == nil {
		displayed := ts
		n.displayedAt = &displayed
	}
	n.updatedAt = ts
	n.version++
	repo.Store(n)
}

func (n *Notification) Equals(other *Notification) bool {
	if n == nil || other == nil {
		return n == other
	}
	return n.id.Equals(other.id)
}

// clone returns a detached copy so stores never share state with callers
func (n *Notification) clone() *Notification {
	c := *n
	c.variables = VariablesFromRawData(n.variables.Items())
	if n.displayedAt != nil {
		t := *n.displayedAt
		c.displayedAt = &t
	}
	if n.readAt != nil {
		t := *n.readAt
		c.readAt = &t
	}
	return &c
}

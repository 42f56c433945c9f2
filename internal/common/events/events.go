// Package events defines the contracts through which bounded contexts talk to
// each other. An event is a value that carries its own variant tag plus the
// list of contract tags it satisfies; subscribers match on those tags.
package events

import (
	"crm-notifications/internal/common/contracts"
)

// Kind tags a contract an event satisfies
type Kind string

const (
	KindCreateNotificationOn     Kind = "create_notification_on"
	KindAssignedToFollowup       Kind = "assigned_to_followup"
	KindAssignedToLead           Kind = "assigned_to_lead"
	KindImportFinished           Kind = "import_finished"
	KindIntegrationErrorOccurred Kind = "integration_error_occurred"
	KindSequenceContactReplied   Kind = "sequence_contact_replied"
	KindSequenceStopped          Kind = "sequence_stopped"
)

// DomainEvent is the envelope every cross-domain event implements.
type DomainEvent interface {
	// Type is the concrete variant tag, e.g. "lead.assigned"
	Type() string
	// Version of the producing aggregate, used to detect races
	Version() int
	// Kinds lists the contracts the variant satisfies, most specific first
	Kinds() []Kind
}

// Names returns the tags used to look up listeners for e: the variant tag
// followed by its contract tags, without duplicates.
func Names(e DomainEvent) []Kind {
	kinds := e.Kinds()
	names := make([]Kind, 0, len(kinds)+1)
	seen := make(map[Kind]struct{}, len(kinds)+1)
	for _, k := range append([]Kind{Kind(e.Type())}, kinds...) {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		names = append(names, k)
	}
	return names
}

// ToMap is the queue message form of an event
func ToMap(e DomainEvent) map[string]any {
	return map[string]any{
		"type":    e.Type(),
		"version": e.Version(),
	}
}

// CreateNotificationOn is satisfied by every event that may notify a user.
type CreateNotificationOn interface {
	// Target is the user company account whose inbox receives the notification
	Target() contracts.UserCompanyAccount
	// CreatedBy is the acting user; contracts.SystemUser for system actions
	CreatedBy() contracts.User
}

type AssignedToFollowup interface {
	DomainEvent
	CreateNotificationOn
	PerformedBy() contracts.User
	Event() contracts.CalendarEvent
	User() contracts.User
}

type AssignedToLead interface {
	DomainEvent
	CreateNotificationOn
	Lead() contracts.Lead
}

type ImportFinished interface {
	DomainEvent
	CreateNotificationOn
	ImportJob() contracts.ImportJob
}

type IntegrationErrorOccurred interface {
	DomainEvent
	CreateNotificationOn
	Integration() contracts.Integration
}

type SequenceContactReplied interface {
	DomainEvent
	CreateNotificationOn
	PerformedOn() contracts.SequenceContact
}

type SequenceStopped interface {
	DomainEvent
	CreateNotificationOn
	PerformedOn() contracts.Sequence
}

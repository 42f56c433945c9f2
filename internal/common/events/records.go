package events

import "crm-notifications/internal/common/contracts"

// Concrete event variants raised by the producing contexts.

const (
	TypeFollowupAssigned         = "calendar.followup_assigned"
	TypeLeadAssigned             = "lead.assigned"
	TypeImportFinished           = "import.finished"
	TypeIntegrationErrorOccurred = "integration.error_occurred"
	TypeSequenceContactReplied   = "sequence.contact_replied"
	TypeSequenceStopped          = "sequence.stopped"
)

// Envelope carries the fields shared by all variants
type Envelope struct {
	AggregateVersion int
	TargetAccount    contracts.UserCompanyAccount
	Actor            contracts.User
}

func (e Envelope) Version() int                         { return e.AggregateVersion }
func (e Envelope) Target() contracts.UserCompanyAccount { return e.TargetAccount }
func (e Envelope) CreatedBy() contracts.User            { return e.Actor }

type FollowupAssignedEvent struct {
	Envelope
	Performer     contracts.User
	CalendarEvent contracts.CalendarEvent
	Assignee      contracts.User
}

func (e *FollowupAssignedEvent) Type() string { return TypeFollowupAssigned }
func (e *FollowupAssignedEvent) Kinds() []Kind {
	return []Kind{KindAssignedToFollowup, KindCreateNotificationOn}
}
func (e *FollowupAssignedEvent) PerformedBy() contracts.User    { return e.Performer }
func (e *FollowupAssignedEvent) Event() contracts.CalendarEvent { return e.CalendarEvent }
func (e *FollowupAssignedEvent) User() contracts.User           { return e.Assignee }

type LeadAssignedEvent struct {
	Envelope
	AssignedLead contracts.Lead
}

func (e *LeadAssignedEvent) Type() string { return TypeLeadAssigned }
func (e *LeadAssignedEvent) Kinds() []Kind {
	return []Kind{KindAssignedToLead, KindCreateNotificationOn}
}
func (e *LeadAssignedEvent) Lead() contracts.Lead { return e.AssignedLead }

type ImportFinishedEvent struct {
	Envelope
	Job contracts.ImportJob
}

func (e *ImportFinishedEvent) Type() string { return TypeImportFinished }
func (e *ImportFinishedEvent) Kinds() []Kind {
	return []Kind{KindImportFinished, KindCreateNotificationOn}
}
func (e *ImportFinishedEvent) ImportJob() contracts.ImportJob { return e.Job }

type IntegrationErrorOccurredEvent struct {
	Envelope
	FailedIntegration contracts.Integration
}

func (e *IntegrationErrorOccurredEvent) Type() string { return TypeIntegrationErrorOccurred }
func (e *IntegrationErrorOccurredEvent) Kinds() []Kind {
	return []Kind{KindIntegrationErrorOccurred, KindCreateNotificationOn}
}
func (e *IntegrationErrorOccurredEvent) Integration() contracts.Integration {
	return e.FailedIntegration
}

type SequenceContactRepliedEvent struct {
	Envelope
	SequenceContact contracts.SequenceContact
}

func (e *SequenceContactRepliedEvent) Type() string { return TypeSequenceContactReplied }
func (e *SequenceContactRepliedEvent) Kinds() []Kind {
	return []Kind{KindSequenceContactReplied, KindCreateNotificationOn}
}
func (e *SequenceContactRepliedEvent) PerformedOn() contracts.SequenceContact {
	return e.SequenceContact
}

type SequenceStoppedEvent struct {
	Envelope
	Sequence contracts.Sequence
}

func (e *SequenceStoppedEvent) Type() string { return TypeSequenceStopped }
func (e *SequenceStoppedEvent) Kinds() []Kind {
	return []Kind{KindSequenceStopped, KindCreateNotificationOn}
}
func (e *SequenceStoppedEvent) PerformedOn() contracts.Sequence { return e.Sequence }

var (
	_ AssignedToFollowup       = (*FollowupAssignedEvent)(nil)
	_ AssignedToLead           = (*LeadAssignedEvent)(nil)
	_ ImportFinished           = (*ImportFinishedEvent)(nil)
	_ IntegrationErrorOccurred = (*IntegrationErrorOccurredEvent)(nil)
	_ SequenceContactReplied   = (*SequenceContactRepliedEvent)(nil)
	_ SequenceStopped          = (*SequenceStoppedEvent)(nil)
)

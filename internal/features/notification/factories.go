package notification

import (
	"crm-notifications/internal/common/contracts"
	"crm-notifications/internal/common/events"
	"crm-notifications/internal/common/models"
)

// The factories below are the only way to create a notification. Each one
// returns nil without touching repo when the event must not notify anyone.
// A created notification is staged in repo but not flushed.

func OnAssignedToLead(repo NotificationRepository, e events.AssignedToLead) (*Notification, error) {
	if err := requireTarget(e); err != nil {
		return nil, err
	}
	if contracts.SameUser(e.CreatedBy(), e.Target().User()) {
		return nil, nil
	}
	lead := e.Lead()
	if lead == nil {
		return nil, models.NewValidationError("lead", "event %s carries no lead", e.Type())
	}
	return create(repo, LeadSource(lead), EventLeadAssignedTo, VariablesFromAssignedToLead(e), e)
}

func OnAssignedToFollowup(repo NotificationRepository, e events.AssignedToFollowup) (*Notification, error) {
	if err := requireTarget(e); err != nil {
		return nil, err
	}
	if contracts.SameUser(e.CreatedBy(), e.Target().User()) {
		return nil, nil
	}
	calendarEvent := e.Event()
	if calendarEvent == nil {
		return nil, models.NewValidationError("event", "event %s carries no calendar event", e.Type())
	}
	return create(repo, CalendarEventSource(calendarEvent), EventAssignedToFollowup, VariablesFromAssignedToFollowup(e), e)
}

// OnSequenceContactReplied only notifies for replies detected by the system
func OnSequenceContactReplied(repo NotificationRepository, e events.SequenceContactReplied) (*Notification, error) {
	if err := requireTarget(e); err != nil {
		return nil, err
	}
	if !contracts.IsSystemUser(e.CreatedBy()) {
		return nil, nil
	}
	sc := e.PerformedOn()
	if sc == nil {
		return nil, models.NewValidationError("sequence_contact", "event %s carries no sequence contact", e.Type())
	}
	return create(repo, SequenceContactSource(sc), EventSequenceContactReplied, VariablesFromSequenceContactReplied(e), e)
}

// OnSequenceStopped skips owners stopping their own sequence
func OnSequenceStopped(repo NotificationRepository, e events.SequenceStopped) (*Notification, error) {
	if err := requireTarget(e); err != nil {
		return nil, err
	}
	seq := e.PerformedOn()
	if seq == nil {
		return nil, models.NewValidationError("sequence", "event %s carries no sequence", e.Type())
	}
	if contracts.SameUser(e.CreatedBy(), seq.Owner()) {
		return nil, nil
	}
	return create(repo, SequenceSource(seq), EventSequenceStopped, VariablesFromSequenceStopped(e), e)
}

func OnIntegrationErrorOccurred(repo NotificationRepository, e events.IntegrationErrorOccurred) (*Notification, error) {
	if err := requireTarget(e); err != nil {
		return nil, err
	}
	integration := e.Integration()
	if integration == nil {
		return nil, models.NewValidationError("integration", "event %s carries no integration", e.Type())
	}
	return create(repo, IntegrationSource(integration), EventIntegrationErrorOccurred, VariablesFromIntegrationErrorOccurred(e), e)
}

func OnImportFinished(repo NotificationRepository, e events.ImportFinished) (*Notification, error) {
	if err := requireTarget(e); err != nil {
		return nil, err
	}
	job := e.ImportJob()
	if job == nil {
		return nil, models.NewValidationError("import_job", "event %s carries no import job", e.Type())
	}
	return create(repo, ImportJobSource(job), EventImportFinished, VariablesFromImportFinished(e), e)
}

type notifyingEvent interface {
	events.DomainEvent
	events.CreateNotificationOn
}

func requireTarget(e notifyingEvent) error {
	if e.Target() == nil {
		return models.NewValidationError("target", "event %s has no target account", e.Type())
	}
	return nil
}

func create(repo NotificationRepository, source Source, eventType EventType, variables Variables, e notifyingEvent) (*Notification, error) {
	n := newNotification(source, eventType, variables, e.Target(), e.CreatedBy())
	repo.Store(n)
	return n, nil
}

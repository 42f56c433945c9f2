package notification

import "crm-notifications/internal/common/models"

// EventType is the closed set of events a notification can be raised for
type EventType string

const (
	EventAssignedToFollowup       EventType = "assigned_to_followup"
	EventImportFinished           EventType = "import_finished"
	EventIntegrationErrorOccurred EventType = "integration_error_occurred"
	EventLeadAssignedTo           EventType = "lead_assigned_to"
	EventSequenceContactReplied   EventType = "sequence_contact_replied"
	EventSequenceStopped          EventType = "sequence_stopped"
)

var eventTypes = map[EventType]struct{}{
	EventAssignedToFollowup:       {},
	EventImportFinished:           {},
	EventIntegrationErrorOccurred: {},
	EventLeadAssignedTo:           {},
	EventSequenceContactReplied:   {},
	EventSequenceStopped:          {},
}

func ParseEventType(s string) (EventType, error) {
	t := EventType(s)
	if _, ok := eventTypes[t]; !ok {
		return "", models.NewValidationError("event_type", "type %s not supported", s)
	}
	return t, nil
}

func (t EventType) Same(other EventType) bool {
	return t == other
}

func (t EventType) ToArray() map[string]string {
	return map[string]string{"type": string(t)}
}

func EventTypeFromRawData(data map[string]string) (EventType, error) {
	return ParseEventType(data["type"])
}

func (t EventType) String() string {
	return string(t)
}

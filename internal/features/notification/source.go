package notification

import (
	"crm-notifications/internal/common/contracts"
	"crm-notifications/internal/common/models"
)

type SourceType string

const (
	SourceCalendarEvent   SourceType = "CalendarEvent"
	SourceImportJob       SourceType = "ImportJob"
	SourceIntegration     SourceType = "Integration"
	SourceLead            SourceType = "Lead"
	SourceSequence        SourceType = "Sequence"
	SourceSequenceContact SourceType = "SequenceContact"
)

var sourceTypes = map[SourceType]struct{}{
	SourceCalendarEvent:   {},
	SourceImportJob:       {},
	SourceIntegration:     {},
	SourceLead:            {},
	SourceSequence:        {},
	SourceSequenceContact: {},
}

// Source points at the entity a notification is about
type Source struct {
	sourceType SourceType
	uuid       string
}

func NewSource(sourceType SourceType, uuid string) (Source, error) {
	if _, ok := sourceTypes[sourceType]; !ok {
		return Source{}, models.NewValidationError("source", "notification source %s not supported", sourceType)
	}
	return Source{sourceType: sourceType, uuid: uuid}, nil
}

func CalendarEventSource(e contracts.CalendarEvent) Source {
	return Source{sourceType: SourceCalendarEvent, uuid: e.UUID().String()}
}

func ImportJobSource(j contracts.ImportJob) Source {
	return Source{sourceType: SourceImportJob, uuid: j.UUID().String()}
}

func IntegrationSource(i contracts.Integration) Source {
	return Source{sourceType: SourceIntegration, uuid: i.UUID().String()}
}

func LeadSource(l contracts.Lead) Source {
	return Source{sourceType: SourceLead, uuid: l.UUID().String()}
}

func SequenceSource(s contracts.Sequence) Source {
	return Source{sourceType: SourceSequence, uuid: s.UUID().String()}
}

func SequenceContactSource(sc contracts.SequenceContact) Source {
	return Source{sourceType: SourceSequenceContact, uuid: sc.UUID().String()}
}

func (s Source) Type() SourceType {
	return s.sourceType
}

func (s Source) UUID() string {
	return s.uuid
}

func (s Source) Equals(other Source) bool {
	return s == other
}

func (s Source) ToArray() map[string]string {
	return map[string]string{
		"type": string(s.sourceType),
		"uuid": s.uuid,
	}
}

// SourceFromRawData rebuilds a Source from its ToArray form
func SourceFromRawData(data map[string]string) (Source, error) {
	return NewSource(SourceType(data["type"]), data["uuid"])
}

func (s Source) String() string {
	return string(s.sourceType)
}

package notification

import (
	"errors"
	"testing"

	"crm-notifications/internal/common/contracts"
	"crm-notifications/internal/common/events"
	"crm-notifications/internal/common/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingRepository counts Store calls and fails on anything else
type recordingRepository struct {
	NotificationRepository
	stored []*Notification
}

func (r *recordingRepository) Store(n *Notification) {
	r.stored = append(r.stored, n)
}

func variable(t *testing.T, n *Notification, key string) *string {
	t.Helper()
	v, ok := n.Variables().Get(key)
	require.True(t, ok, "missing variable %s", key)
	return v
}

func TestOnAssignedToLead(t *testing.T) {
	assignee := newUser("Ann")
	target := newAccount(assignee)

	t.Run("self assignment is suppressed", func(t *testing.T) {
		repo := &recordingRepository{}
		same := &contracts.UserRecord{ID: assignee.ID, Name: "Ann copy"}
		n, err := OnAssignedToLead(repo, leadAssigned(target, same))
		require.NoError(t, err)
		assert.Nil(t, n)
		assert.Empty(t, repo.stored)
	})

	t.Run("assignment by colleague notifies", func(t *testing.T) {
		repo := &recordingRepository{}
		url := "https://cdn.example.com/bob.png"
		bob := newUser("Bob")
		bob.Picture = &contracts.ProfilePicture{File: &contracts.File{DirectURL: &url}}
		event := leadAssigned(target, bob)

		n, err := OnAssignedToLead(repo, event)
		require.NoError(t, err)
		require.NotNil(t, n)
		assert.Equal(t, []*Notification{n}, repo.stored)
		assert.Equal(t, SourceLead, n.Source().Type())
		assert.Equal(t, event.AssignedLead.UUID().String(), n.Source().UUID())
		assert.Equal(t, EventLeadAssignedTo, n.EventType())
		assert.Equal(t, bob, n.CreatedBy())

		keys := []string{}
		for _, v := range n.Variables().Items() {
			keys = append(keys, v.Key)
		}
		assert.Equal(t, []string{"entity_id", "entity_title", "user_full_name", "user_profile_picture", "user_id"}, keys)
		assert.Equal(t, "ACME renewal", *variable(t, n, "entity_title"))
		assert.Equal(t, "Bob", *variable(t, n, "user_full_name"))
		assert.Equal(t, url, *variable(t, n, "user_profile_picture"))
		assert.Equal(t, assignee.ID.String(), *variable(t, n, "user_id"))
	})

	t.Run("missing picture yields null", func(t *testing.T) {
		bob := newUser("Bob")
		bob.Picture = &contracts.ProfilePicture{}
		n, err := OnAssignedToLead(&recordingRepository{}, leadAssigned(target, bob))
		require.NoError(t, err)
		assert.Nil(t, variable(t, n, "user_profile_picture"))
	})

	t.Run("missing target is a validation error", func(t *testing.T) {
		_, err := OnAssignedToLead(&recordingRepository{}, leadAssigned(nil, newUser("Bob")))
		assert.True(t, errors.Is(err, models.ErrValidation))
	})
}

func TestOnAssignedToFollowup(t *testing.T) {
	assignee := newUser("Ann")
	target := newAccount(assignee)
	event := func(actor contracts.User) *events.FollowupAssignedEvent {
		return &events.FollowupAssignedEvent{
			Envelope:      envelope(target, actor),
			Performer:     actor,
			CalendarEvent: &contracts.CalendarEventRecord{ID: models.NextID(), EventTitle: "Call", EventType: "call"},
			Assignee:      assignee,
		}
	}

	repo := &recordingRepository{}
	n, err := OnAssignedToFollowup(repo, event(assignee))
	require.NoError(t, err)
	assert.Nil(t, n)

	n, err = OnAssignedToFollowup(repo, event(newUser("Bob")))
	require.NoError(t, err)
	require.NotNil(t, n)
	assert.Equal(t, SourceCalendarEvent, n.Source().Type())
	assert.Equal(t, EventAssignedToFollowup, n.EventType())
	assert.Equal(t, "Call", *variable(t, n, "event_title"))
	assert.Equal(t, "call", *variable(t, n, "event_type"))
	assert.Len(t, repo.stored, 1)
}

func TestOnSequenceContactReplied(t *testing.T) {
	target := newAccount(newUser("Ann"))
	event := func(actor contracts.User) *events.SequenceContactRepliedEvent {
		return &events.SequenceContactRepliedEvent{
			Envelope: envelope(target, actor),
			SequenceContact: &contracts.SequenceContactRecord{
				ID:          models.NextID(),
				ContactRef:  &contracts.ContactRecord{ID: models.NextID(), Name: "Jane"},
				SequenceRef: &contracts.SequenceRecord{ID: models.NextID(), SequenceName: "Onboarding"},
			},
		}
	}

	repo := &recordingRepository{}
	n, err := OnSequenceContactReplied(repo, event(newUser("Bob")))
	require.NoError(t, err)
	assert.Nil(t, n)
	assert.Empty(t, repo.stored)

	n, err = OnSequenceContactReplied(repo, event(contracts.SystemUser()))
	require.NoError(t, err)
	require.NotNil(t, n)
	assert.Nil(t, n.CreatedBy())
	assert.Equal(t, SourceSequenceContact, n.Source().Type())
	assert.Equal(t, "Jane", *variable(t, n, "contact_full_name"))
	assert.Nil(t, variable(t, n, "contact_profile_picture"))
	assert.Equal(t, "Onboarding", *variable(t, n, "sequence_name"))
}

func TestOnSequenceStopped(t *testing.T) {
	owner := newUser("Ann")
	target := newAccount(owner)
	seq := &contracts.SequenceRecord{ID: models.NextID(), SequenceName: "Onboarding", Creator: owner}
	event := func(actor contracts.User) *events.SequenceStoppedEvent {
		return &events.SequenceStoppedEvent{Envelope: envelope(target, actor), Sequence: seq}
	}

	repo := &recordingRepository{}
	n, err := OnSequenceStopped(repo, event(&contracts.UserRecord{ID: owner.ID}))
	require.NoError(t, err)
	assert.Nil(t, n)

	n, err = OnSequenceStopped(repo, event(newUser("Bob")))
	require.NoError(t, err)
	require.NotNil(t, n)
	assert.Equal(t, SourceSequence, n.Source().Type())
	assert.Equal(t, seq.ID.String(), *variable(t, n, "sequence_id"))
}

func TestNeverSuppressedFactories(t *testing.T) {
	owner := newUser("Ann")
	target := newAccount(owner)
	info := "token expired"

	repo := &recordingRepository{}
	n, err := OnIntegrationErrorOccurred(repo, &events.IntegrationErrorOccurredEvent{
		Envelope: envelope(target, owner),
		FailedIntegration: &contracts.IntegrationRecord{
			ID:            models.NextID(),
			ServiceName:   "gmail",
			CurrentStatus: contracts.IntegrationStatus{Status: "error", AdditionalInfo: &info},
			Account:       target,
		},
	})
	require.NoError(t, err)
	require.NotNil(t, n)
	assert.Equal(t, SourceIntegration, n.Source().Type())
	assert.Equal(t, "gmail", *variable(t, n, "integration_service"))
	assert.Equal(t, info, *variable(t, n, "integration_status_info"))

	n, err = OnImportFinished(repo, importFinished(target))
	require.NoError(t, err)
	require.NotNil(t, n)
	assert.Equal(t, "contacts.csv", *variable(t, n, "file_name"))
	assert.Equal(t, "12", *variable(t, n, "entries"))
	assert.Equal(t, "1", *variable(t, n, "errors"))
	assert.Len(t, repo.stored, 2)
}

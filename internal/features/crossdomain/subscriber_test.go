package crossdomain

import (
	"context"
	"errors"
	"testing"

	"crm-notifications/internal/common/contracts"
	"crm-notifications/internal/common/events"
	"crm-notifications/internal/common/models"
	"crm-notifications/internal/features/notification"
	"crm-notifications/internal/features/sequence"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type countingRepository struct {
	notification.NotificationRepository
	flushes *int
}

func (r countingRepository) Flush(ctx context.Context) error {
	*r.flushes++
	return r.NotificationRepository.Flush(ctx)
}

type failingSequences struct {
	sequence.SequenceRepository
	err    error
	panics bool
}

func (r failingSequences) FindActiveByUserCompany(ctx context.Context, userID, companyAccountID models.ID) ([]*sequence.Sequence, error) {
	if r.panics {
		panic("sequence store unavailable")
	}
	return nil, r.err
}

type recordingPublisher struct {
	published []*notification.Notification
}

func (p *recordingPublisher) Publish(n *notification.Notification) {
	p.published = append(p.published, n)
}

type fixture struct {
	notifications *notification.MemoryStore
	sequences     *sequence.MemoryStore
	publisher     *recordingPublisher
	flushes       int
	logs          *observer.ObservedLogs
	deps          Dependencies
}

func newFixture() *fixture {
	core, logs := observer.New(zapcore.DebugLevel)
	f := &fixture{
		notifications: notification.NewMemoryStore(),
		sequences:     sequence.NewMemoryStore(),
		publisher:     &recordingPublisher{},
		logs:          logs,
	}
	f.deps = Dependencies{
		Notifications: func() notification.NotificationRepository {
			return countingRepository{
				NotificationRepository: notification.NewMemoryNotificationRepository(f.notifications),
				flushes:                &f.flushes,
			}
		},
		Sequences: f.sequences.Factory(),
		Logger:    zap.New(core),
		Publisher: f.publisher,
	}
	return f
}

func member(name string) *contracts.UserCompanyAccountRecord {
	return &contracts.UserCompanyAccountRecord{
		ID:      models.NextID(),
		Member:  &contracts.UserRecord{ID: models.NextID(), Name: name},
		Company: &contracts.CompanyAccountRecord{ID: models.NextID()},
	}
}

func integrationError(account *contracts.UserCompanyAccountRecord) *events.IntegrationErrorOccurredEvent {
	return &events.IntegrationErrorOccurredEvent{
		Envelope: events.Envelope{AggregateVersion: 1, TargetAccount: account, Actor: contracts.SystemUser()},
		FailedIntegration: &contracts.IntegrationRecord{
			ID:            models.NextID(),
			ServiceName:   "gmail",
			CurrentStatus: contracts.IntegrationStatus{Status: "error"},
			Account:       account,
		},
	}
}

func TestBindingsFor(t *testing.T) {
	s := NewSubscriber(Dependencies{})
	account := member("Ana")

	tests := []struct {
		name  string
		event events.DomainEvent
		want  []string
	}{
		{
			name:  "integration error deactivates before notifying",
			event: integrationError(account),
			want:  []string{BindingDeactivateSequencesOnIntegrationError, BindingNotifyUserIntegrationErrorOccurred},
		},
		{
			name:  "lead assigned",
			event: &events.LeadAssignedEvent{},
			want:  []string{BindingNotifyUserLeadAssigned},
		},
		{
			name:  "followup assigned",
			event: &events.FollowupAssignedEvent{},
			want:  []string{BindingNotifyUserAssignedToFollowup},
		},
		{
			name:  "import finished",
			event: &events.ImportFinishedEvent{},
			want:  []string{BindingNotifyUserImportFinished},
		},
		{
			name:  "sequence contact replied",
			event: &events.SequenceContactRepliedEvent{},
			want:  []string{BindingNotifyUserSequenceContactReplied},
		},
		{
			name:  "sequence stopped",
			event: &events.SequenceStoppedEvent{},
			want:  []string{BindingNotifyUserSequenceStopped},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.BindingsFor(tt.event))
		})
	}
}

func TestListenersReturnsFreshTable(t *testing.T) {
	table := Listeners()
	table[events.KindAssignedToLead] = nil
	assert.Len(t, Listeners()[events.KindAssignedToLead], 1)
}

func TestCustomListenersMatchConcreteType(t *testing.T) {
	var calls []string
	record := func(name string) Handler {
		return func(ctx context.Context, deps Dependencies, e events.DomainEvent) error {
			calls = append(calls, name)
			return nil
		}
	}
	s := NewSubscriberWithListeners(Dependencies{}, map[events.Kind][]Binding{
		events.KindCreateNotificationOn:        {{Name: "any", Handler: record("any")}},
		events.Kind(events.TypeImportFinished): {{Name: "type", Handler: record("type")}},
		events.KindImportFinished:              {{Name: "kind", Handler: record("kind")}},
	})

	require.NoError(t, s.HandleEvent(context.Background(), &events.ImportFinishedEvent{}))
	assert.Equal(t, []string{"type", "kind", "any"}, calls)
}

func TestHandleEventStopsAtFirstError(t *testing.T) {
	boom := errors.New("boom")
	called := false
	s := NewSubscriberWithListeners(Dependencies{}, map[events.Kind][]Binding{
		events.KindImportFinished: {
			{Name: "first", Handler: func(context.Context, Dependencies, events.DomainEvent) error { return boom }},
			{Name: "second", Handler: func(context.Context, Dependencies, events.DomainEvent) error {
				called = true
				return nil
			}},
		},
	})

	err := s.HandleEvent(context.Background(), &events.ImportFinishedEvent{})
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "first")
	assert.False(t, called)
}

func TestIntegrationErrorDeactivatesSequencesAndNotifies(t *testing.T) {
	f := newFixture()
	account := member("Ana")
	owner := account.User().UUID()
	company := account.CompanyAccount().UUID()

	repo := f.sequences.Factory()()
	active := &sequence.Sequence{Name: "Onboarding", OwnerID: owner, CompanyAccountID: company}
	stopped := &sequence.Sequence{Name: "Winback", OwnerID: owner, CompanyAccountID: company, Status: sequence.StatusStopped}
	foreign := &sequence.Sequence{Name: "Other", OwnerID: models.NextID(), CompanyAccountID: company}
	for _, s := range []*sequence.Sequence{active, stopped, foreign} {
		require.NoError(t, repo.Create(context.Background(), s))
	}

	event := integrationError(account)
	require.NoError(t, NewSubscriber(f.deps).HandleEvent(context.Background(), event))

	got, ok := f.sequences.Get(active.ID)
	require.True(t, ok)
	assert.Equal(t, sequence.StatusInactive, got.Status)
	assert.Equal(t, 2, got.Version)
	require.NotNil(t, got.DeactivatedBy)
	assert.Equal(t, "integration_error:"+event.FailedIntegration.UUID().String(), *got.DeactivatedBy)

	got, _ = f.sequences.Get(stopped.ID)
	assert.Equal(t, sequence.StatusStopped, got.Status)
	got, _ = f.sequences.Get(foreign.ID)
	assert.Equal(t, sequence.StatusActive, got.Status)

	assert.Equal(t, 1, f.notifications.Len())
	assert.Equal(t, 1, f.flushes)
	require.Len(t, f.publisher.published, 1)
	assert.Equal(t, notification.EventIntegrationErrorOccurred, f.publisher.published[0].EventType())
}

func TestDeactivationFailureDoesNotBlockNotification(t *testing.T) {
	tests := []struct {
		name    string
		repo    failingSequences
		message string
	}{
		{name: "error", repo: failingSequences{err: errors.New("connection refused")}, message: "connection refused"},
		{name: "panic", repo: failingSequences{panics: true}, message: "panic: sequence store unavailable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			repo := tt.repo
			f.deps.Sequences = func() sequence.SequenceRepository { return repo }
			event := integrationError(member("Ana"))

			require.NoError(t, NewSubscriber(f.deps).HandleEvent(context.Background(), event))
			assert.Equal(t, 1, f.notifications.Len())

			entries := f.logs.FilterMessage("Error when deactivating sequence on integration error").All()
			require.Len(t, entries, 1)
			fields := entries[0].ContextMap()
			assert.Equal(t, "crossdomain.Subscriber", fields["class"])
			assert.Equal(t, event.FailedIntegration.UUID().String(), fields["integration_id"])
			exception, ok := fields["exception"].(map[string]interface{})
			require.True(t, ok)
			assert.Equal(t, tt.message, exception["message"])
			assert.NotEmpty(t, exception["stack"])
		})
	}
}

func TestDeactivationWithoutIntegrationIsLogged(t *testing.T) {
	f := newFixture()
	event := integrationError(member("Ana"))
	event.FailedIntegration = nil

	err := NewSubscriber(f.deps).HandleEvent(context.Background(), event)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrValidation)
	assert.Contains(t, err.Error(), BindingNotifyUserIntegrationErrorOccurred)
	assert.Equal(t, 1, f.logs.FilterMessage("Error when deactivating sequence on integration error").Len())
}

func TestCreationErrorsPropagate(t *testing.T) {
	f := newFixture()
	event := &events.ImportFinishedEvent{Job: &contracts.ImportJobRecord{ID: models.NextID()}}

	err := NewSubscriber(f.deps).HandleEvent(context.Background(), event)
	require.ErrorIs(t, err, models.ErrValidation)
	assert.Contains(t, err.Error(), BindingNotifyUserImportFinished)
	assert.Zero(t, f.flushes)
	assert.Empty(t, f.publisher.published)
}

func TestSuppressedNotificationIsNotFlushed(t *testing.T) {
	f := newFixture()
	account := member("Ana")
	event := &events.LeadAssignedEvent{
		Envelope:     events.Envelope{AggregateVersion: 1, TargetAccount: account, Actor: account.User()},
		AssignedLead: &contracts.LeadRecord{ID: models.NextID(), LeadTitle: "ACME"},
	}

	require.NoError(t, NewSubscriber(f.deps).HandleEvent(context.Background(), event))
	assert.Zero(t, f.flushes)
	assert.Zero(t, f.notifications.Len())
	assert.Empty(t, f.publisher.published)
}

func TestLeadAssignedByAnotherUserNotifies(t *testing.T) {
	f := newFixture()
	f.deps.Publisher = nil
	account := member("Ana")
	event := &events.LeadAssignedEvent{
		Envelope:     events.Envelope{AggregateVersion: 1, TargetAccount: account, Actor: &contracts.UserRecord{ID: models.NextID(), Name: "Ben"}},
		AssignedLead: &contracts.LeadRecord{ID: models.NextID(), LeadTitle: "ACME"},
	}

	require.NoError(t, NewSubscriber(f.deps).HandleEvent(context.Background(), event))
	assert.Equal(t, 1, f.flushes)
	assert.Equal(t, 1, f.notifications.Len())
	assert.Equal(t, 1, f.logs.FilterMessage("Notification created").Len())
}

package notification

import (
	"context"
	"testing"
	"time"

	"crm-notifications/internal/common/contracts"
	"crm-notifications/internal/common/events"
	"crm-notifications/internal/common/models"
)

// freezeClock pins now to t for the duration of the test
func freezeClock(tb testing.TB, t time.Time) {
	tb.Helper()
	prev := now
	now = func() time.Time { return t }
	tb.Cleanup(func() { now = prev })
}

func newUser(name string) *contracts.UserRecord {
	return &contracts.UserRecord{ID: models.NextID(), Name: name}
}

func newAccount(user contracts.User) *contracts.UserCompanyAccountRecord {
	return &contracts.UserCompanyAccountRecord{
		ID:      models.NextID(),
		Member:  user,
		Company: &contracts.CompanyAccountRecord{ID: models.NextID()},
	}
}

func envelope(target contracts.UserCompanyAccount, actor contracts.User) events.Envelope {
	return events.Envelope{AggregateVersion: 1, TargetAccount: target, Actor: actor}
}

func leadAssigned(target contracts.UserCompanyAccount, actor contracts.User) *events.LeadAssignedEvent {
	return &events.LeadAssignedEvent{
		Envelope:     envelope(target, actor),
		AssignedLead: &contracts.LeadRecord{ID: models.NextID(), LeadTitle: "ACME renewal"},
	}
}

func importFinished(target contracts.UserCompanyAccount) *events.ImportFinishedEvent {
	return &events.ImportFinishedEvent{
		Envelope: envelope(target, contracts.SystemUser()),
		Job: &contracts.ImportJobRecord{
			ID:           models.NextID(),
			ImportType:   "contacts",
			File:         &contracts.File{OriginalName: "contacts.csv"},
			EntriesCount: 12,
			ErrorsCount:  1,
		},
	}
}

// seed creates and flushes one import notification per createdAt
func seed(tb testing.TB, store *MemoryStore, target contracts.UserCompanyAccount, createdAt ...time.Time) []*Notification {
	tb.Helper()
	var out []*Notification
	for _, ts := range createdAt {
		freezeClock(tb, ts)
		repo := NewMemoryNotificationRepository(store)
		n, err := OnImportFinished(repo, importFinished(target))
		if err != nil {
			tb.Fatalf("OnImportFinished returned error: %v", err)
		}
		if err := repo.Flush(context.Background()); err != nil {
			tb.Fatalf("Flush returned error: %v", err)
		}
		out = append(out, n)
	}
	return out
}

package main

import (
	"context"
	"log"
	"time"

	"crm-notifications/internal/app"
	"crm-notifications/internal/common/contracts"
	"crm-notifications/internal/common/events"
	"crm-notifications/internal/common/models"
	"crm-notifications/internal/config"
	"crm-notifications/internal/features/account"
	"crm-notifications/internal/features/crossdomain"
	"crm-notifications/internal/features/sequence"
	"crm-notifications/internal/middleware"
	"crm-notifications/pkg/utils"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Seed stores a demo membership and raises one event of every kind through
// the subscriber, then prints a token for the demo user.
func Seed(
	lc fx.Lifecycle,
	subscriber *crossdomain.Subscriber,
	accounts account.AccountRepository,
	sequences sequence.RepositoryFactory,
	logger *zap.Logger,
	shutdowner fx.Shutdowner,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				defer func() {
					if err := shutdowner.Shutdown(); err != nil {
						logger.Error("Failed to shutdown", zap.Error(err))
					}
				}()

				ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
				defer cancel()

				logger.Info("Seeding demo notifications")
				if err := run(ctx, subscriber, accounts, sequences, logger); err != nil {
					logger.Error("Seeding failed", zap.Error(err))
					return
				}
				logger.Info("Seeding completed")
			}()
			return nil
		},
	})
}

func run(ctx context.Context, subscriber *crossdomain.Subscriber, accounts account.AccountRepository, sequences sequence.RepositoryFactory, logger *zap.Logger) error {
	companyID := models.NextID()
	membership := &account.UserCompanyAccount{
		UserID:           models.MustParseID(middleware.DevUserID),
		CompanyAccountID: companyID,
		DisplayName:      "Demo User",
	}
	if err := accounts.Save(ctx, membership); err != nil {
		return err
	}
	target := membership.Contract()
	me := target.User()
	colleague := &contracts.UserRecord{ID: models.NextID(), Name: "Alex Colleague"}
	system := contracts.SystemUser()

	seq := &sequence.Sequence{
		Name:             "Onboarding",
		OwnerID:          me.UUID(),
		CompanyAccountID: companyID,
	}
	if err := sequences().Create(ctx, seq); err != nil {
		return err
	}
	seqView := &contracts.SequenceRecord{ID: seq.ID, SequenceName: seq.Name, Creator: me}

	photo := "https://example.com/contacts/jane.png"
	contact := &contracts.ContactRecord{
		ID:    models.NextID(),
		Name:  "Jane Contact",
		Photo: &contracts.File{OriginalName: "jane.png", DirectURL: &photo},
	}
	statusInfo := "token expired"

	raised := []events.DomainEvent{
		&events.LeadAssignedEvent{
			Envelope:     events.Envelope{AggregateVersion: 1, TargetAccount: target, Actor: colleague},
			AssignedLead: &contracts.LeadRecord{ID: models.NextID(), LeadTitle: "ACME renewal"},
		},
		&events.FollowupAssignedEvent{
			Envelope:      events.Envelope{AggregateVersion: 1, TargetAccount: target, Actor: colleague},
			Performer:     colleague,
			CalendarEvent: &contracts.CalendarEventRecord{ID: models.NextID(), EventTitle: "Call back", EventType: "call"},
			Assignee:      me,
		},
		&events.ImportFinishedEvent{
			Envelope: events.Envelope{AggregateVersion: 1, TargetAccount: target, Actor: system},
			Job: &contracts.ImportJobRecord{
				ID:           models.NextID(),
				ImportType:   "contacts",
				File:         &contracts.File{OriginalName: "contacts.csv"},
				EntriesCount: 120,
				ErrorsCount:  3,
			},
		},
		&events.IntegrationErrorOccurredEvent{
			Envelope: events.Envelope{AggregateVersion: 1, TargetAccount: target, Actor: system},
			FailedIntegration: &contracts.IntegrationRecord{
				ID:            models.NextID(),
				ServiceName:   "gmail",
				CurrentStatus: contracts.IntegrationStatus{Status: "error", AdditionalInfo: &statusInfo},
				Account:       target,
			},
		},
		&events.SequenceContactRepliedEvent{
			Envelope: events.Envelope{AggregateVersion: 1, TargetAccount: target, Actor: system},
			SequenceContact: &contracts.SequenceContactRecord{
				ID:          models.NextID(),
				ContactRef:  contact,
				SequenceRef: seqView,
			},
		},
		&events.SequenceStoppedEvent{
			Envelope: events.Envelope{AggregateVersion: 2, TargetAccount: target, Actor: colleague},
			Sequence: seqView,
		},
	}

	for _, e := range raised {
		if err := subscriber.HandleEvent(ctx, e); err != nil {
			return err
		}
		logger.Info("Event dispatched",
			zap.String("type", e.Type()),
			zap.Strings("bindings", subscriber.BindingsFor(e)),
		)
	}

	token, err := utils.GenerateToken(me.UUID().String(), 72*time.Hour)
	if err != nil {
		return err
	}
	logger.Info("Demo account ready",
		zap.String("company_account_id", companyID.String()),
		zap.String("token", token),
	)
	return nil
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	utils.SetSecret(cfg.JWTSecret)

	fx.New(
		app.Core(cfg),
		fx.Invoke(Seed),
	).Run()
}

// Package crossdomain routes domain events raised by one bounded context to
// the handlers of the others.
package crossdomain

import (
	"context"
	"fmt"
	"runtime/debug"

	"crm-notifications/internal/common/events"
	"crm-notifications/internal/features/notification"
	"crm-notifications/internal/features/sequence"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Handler reacts to one event. It receives the event as raised and narrows
// it to the contract it needs.
type Handler func(ctx context.Context, deps Dependencies, e events.DomainEvent) error

// Binding is a named handler in the listener table
type Binding struct {
	Name    string
	Handler Handler
}

// Dependencies are resolved by each handler when it runs, so every
// invocation gets its own units of work.
type Dependencies struct {
	Notifications notification.RepositoryFactory
	Sequences     sequence.RepositoryFactory
	Logger        *zap.Logger
	// Publisher is optional
	Publisher notification.Publisher
}

const (
	BindingNotifyUserAssignedToFollowup          = "notifyUserAssignedToFollowup"
	BindingNotifyUserLeadAssigned                = "notifyUserLeadAssigned"
	BindingNotifyUserImportFinished              = "notifyUserImportFinished"
	BindingDeactivateSequencesOnIntegrationError = "deactivateSequencesOnIntegrationError"
	BindingNotifyUserIntegrationErrorOccurred    = "notifyUserIntegrationErrorOccurred"
	BindingNotifyUserSequenceContactReplied      = "notifyUserSequenceContactReplied"
	BindingNotifyUserSequenceStopped             = "notifyUserSequenceStopped"
)

// Listeners is the listener table, in invocation order per tag
func Listeners() map[events.Kind][]Binding {
	return map[events.Kind][]Binding{
		events.KindAssignedToFollowup: {
			{Name: BindingNotifyUserAssignedToFollowup, Handler: notifyUserAssignedToFollowup},
		},
		events.KindAssignedToLead: {
			{Name: BindingNotifyUserLeadAssigned, Handler: notifyUserLeadAssigned},
		},
		events.KindImportFinished: {
			{Name: BindingNotifyUserImportFinished, Handler: notifyUserImportFinished},
		},
		events.KindIntegrationErrorOccurred: {
			{Name: BindingDeactivateSequencesOnIntegrationError, Handler: deactivateSequencesOnIntegrationError},
			{Name: BindingNotifyUserIntegrationErrorOccurred, Handler: notifyUserIntegrationErrorOccurred},
		},
		events.KindSequenceContactReplied: {
			{Name: BindingNotifyUserSequenceContactReplied, Handler: notifyUserSequenceContactReplied},
		},
		events.KindSequenceStopped: {
			{Name: BindingNotifyUserSequenceStopped, Handler: notifyUserSequenceStopped},
		},
	}
}

// Subscriber dispatches events through a listener table that is never
// modified after construction.
type Subscriber struct {
	listen map[events.Kind][]Binding
	deps   Dependencies
}

func NewSubscriber(deps Dependencies) *Subscriber {
	return NewSubscriberWithListeners(deps, Listeners())
}

// NewSubscriberWithListeners builds a subscriber over a custom table
func NewSubscriberWithListeners(deps Dependencies, listen map[events.Kind][]Binding) *Subscriber {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	table := make(map[events.Kind][]Binding, len(listen))
	for k, bindings := range listen {
		table[k] = append([]Binding(nil), bindings...)
	}
	return &Subscriber{listen: table, deps: deps}
}

// HandleEvent runs every binding matching e in order and stops at the first
// error a binding returns.
func (s *Subscriber) HandleEvent(ctx context.Context, e events.DomainEvent) error {
	for _, b := range s.listenersFor(e) {
		if err := b.Handler(ctx, s.deps, e); err != nil {
			return fmt.Errorf("%s: %w", b.Name, err)
		}
	}
	return nil
}

// BindingsFor lists the names of the bindings e would be dispatched to
func (s *Subscriber) BindingsFor(e events.DomainEvent) []string {
	bindings := s.listenersFor(e)
	names := make([]string, 0, len(bindings))
	for _, b := range bindings {
		names = append(names, b.Name)
	}
	return names
}

func (s *Subscriber) listenersFor(e events.DomainEvent) []Binding {
	var out []Binding
	for _, name := range events.Names(e) {
		out = append(out, s.listen[name]...)
	}
	return out
}

func deactivateSequencesOnIntegrationError(ctx context.Context, deps Dependencies, e events.DomainEvent) (err error) {
	event, ok := e.(events.IntegrationErrorOccurred)
	if !ok {
		return nil
	}

	integrationID := ""
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
		if err != nil {
			deps.Logger.Error("Error when deactivating sequence on integration error",
				zap.String("class", "crossdomain.Subscriber"),
				zap.String("integration_id", integrationID),
				zap.Object("exception", exceptionFields(err, debug.Stack())),
			)
		}
		err = nil
	}()

	integration := event.Integration()
	if integration == nil {
		return fmt.Errorf("event %s carries no integration", e.Type())
	}
	integrationID = integration.UUID().String()

	account := integration.UserCompanyAccount()
	if account == nil || account.User() == nil || account.CompanyAccount() == nil {
		return fmt.Errorf("integration %s has no user company account", integrationID)
	}

	repo := deps.Sequences()
	list, err := repo.FindActiveByUserCompany(ctx, account.User().UUID(), account.CompanyAccount().UUID())
	if err != nil {
		return err
	}
	for _, seq := range list {
		seq.ApplyIntegrationErrorOccurred(repo, event)
	}
	if len(list) == 0 {
		return nil
	}
	return repo.Flush(ctx)
}

func exceptionFields(err error, stack []byte) zapcore.ObjectMarshalerFunc {
	return func(enc zapcore.ObjectEncoder) error {
		enc.AddString("code", fmt.Sprintf("%T", err))
		enc.AddString("message", err.Error())
		enc.AddString("stack", string(stack))
		return nil
	}
}

func notifyUserAssignedToFollowup(ctx context.Context, deps Dependencies, e events.DomainEvent) error {
	event, ok := e.(events.AssignedToFollowup)
	if !ok {
		return nil
	}
	repo := deps.Notifications()
	n, err := notification.OnAssignedToFollowup(repo, event)
	return flushCreated(ctx, deps, repo, n, err)
}

func notifyUserLeadAssigned(ctx context.Context, deps Dependencies, e events.DomainEvent) error {
	event, ok := e.(events.AssignedToLead)
	if !ok {
		return nil
	}
	repo := deps.Notifications()
	n, err := notification.OnAssignedToLead(repo, event)
	return flushCreated(ctx, deps, repo, n, err)
}

func notifyUserSequenceContactReplied(ctx context.Context, deps Dependencies, e events.DomainEvent) error {
	event, ok := e.(events.SequenceContactReplied)
	if !ok {
		return nil
	}
	repo := deps.Notifications()
	n, err := notification.OnSequenceContactReplied(repo, event)
	return flushCreated(ctx, deps, repo, n, err)
}

func notifyUserSequenceStopped(ctx context.Context, deps Dependencies, e events.DomainEvent) error {
	event, ok := e.(events.SequenceStopped)
	if !ok {
		return nil
	}
	repo := deps.Notifications()
	n, err := notification.OnSequenceStopped(repo, event)
	return flushCreated(ctx, deps, repo, n, err)
}

func notifyUserIntegrationErrorOccurred(ctx context.Context, deps Dependencies, e events.DomainEvent) error {
	event, ok := e.(events.IntegrationErrorOccurred)
	if !ok {
		return nil
	}
	repo := deps.Notifications()
	n, err := notification.OnIntegrationErrorOccurred(repo, event)
	return flushCreated(ctx, deps, repo, n, err)
}

func notifyUserImportFinished(ctx context.Context, deps Dependencies, e events.DomainEvent) error {
	event, ok := e.(events.ImportFinished)
	if !ok {
		return nil
	}
	repo := deps.Notifications()
	n, err := notification.OnImportFinished(repo, event)
	return flushCreated(ctx, deps, repo, n, err)
}

// flushCreated commits the unit of work only when a notification was created
func flushCreated(ctx context.Context, deps Dependencies, repo notification.NotificationRepository, n *notification.Notification, err error) error {
	if err != nil {
		return err
	}
	if n == nil {
		return nil
	}
	if err := repo.Flush(ctx); err != nil {
		return err
	}
	deps.Logger.Debug("Notification created",
		zap.String("notification_id", n.ID().String()),
		zap.String("event_type", n.EventType().String()),
	)
	if deps.Publisher != nil {
		deps.Publisher.Publish(n)
	}
	return nil
}

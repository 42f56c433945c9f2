package notification

import (
	"context"
	"errors"
	"time"

	"crm-notifications/internal/common/contracts"
	"crm-notifications/internal/common/models"
)

// ErrConcurrentModification is returned by Flush when a staged notification
// was changed in storage after it was loaded.
var ErrConcurrentModification = errors.New("notification was modified concurrently")

// NotificationRepository is a unit of work over the notification store.
// Store and Remove only stage changes; Flush writes them.
// Every query is scoped to the target user company account.
type NotificationRepository interface {
	// FindByID returns nil when no notification has the id
	FindByID(ctx context.Context, id models.ID) (*Notification, error)
	Store(n *Notification)
	Remove(n *Notification)
	Flush(ctx context.Context) error

	FindByUserCompanyAccount(ctx context.Context, account contracts.UserCompanyAccount, filters *NotificationListFilters) (*models.Paginator[*Notification], error)
	CountNonDisplayed(ctx context.Context, account contracts.UserCompanyAccount, dateFrom time.Time) (int64, error)
	FindNonDisplayedByIDs(ctx context.Context, account contracts.UserCompanyAccount, ids []models.ID) ([]*Notification, error)
	FindNonDisplayedOlderThan(ctx context.Context, account contracts.UserCompanyAccount, cutoff time.Time) ([]*Notification, error)
	FindUnreadByIDs(ctx context.Context, account contracts.UserCompanyAccount, ids []models.ID) ([]*Notification, error)
	FindUnreadOlderThan(ctx context.Context, account contracts.UserCompanyAccount, cutoff time.Time) ([]*Notification, error)

	// DeleteCreatedBefore removes notifications of every account created
	// strictly before cutoff, bypassing the unit of work.
	DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// RepositoryFactory opens a new unit of work
type RepositoryFactory func() NotificationRepository

// pending is the change set shared by the store adapters
type pending struct {
	order   []models.ID
	stored  map[models.ID]*Notification
	removed map[models.ID]*Notification
}

func newPending() *pending {
	return &pending{
		stored:  make(map[models.ID]*Notification),
		removed: make(map[models.ID]*Notification),
	}
}

func (p *pending) store(n *Notification) {
	if _, ok := p.stored[n.id]; !ok {
		p.order = append(p.order, n.id)
	}
	delete(p.removed, n.id)
	p.stored[n.id] = n
}

func (p *pending) remove(n *Notification) {
	delete(p.stored, n.id)
	p.removed[n.id] = n
}

func (p *pending) empty() bool {
	return len(p.stored) == 0 && len(p.removed) == 0
}

// each visits staged notifications in the order they were first stored
func (p *pending) each(fn func(n *Notification) error) error {
	for _, id := range p.order {
		n, ok := p.stored[id]
		if !ok {
			continue
		}
		if err := fn(n); err != nil {
			return err
		}
	}
	return nil
}

func (p *pending) reset() {
	p.order = nil
	p.stored = make(map[models.ID]*Notification)
	p.removed = make(map[models.ID]*Notification)
}

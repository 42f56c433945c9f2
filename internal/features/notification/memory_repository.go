package notification

import (
	"context"
	"sort"
	"sync"
	"time"

	"crm-notifications/internal/common/contracts"
	"crm-notifications/internal/common/models"
)

// MemoryStore keeps notifications in process. It backs STORAGE_DRIVER=memory
// and the tests.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[models.ID]*Notification
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[models.ID]*Notification)}
}

// Factory opens units of work over the store
func (s *MemoryStore) Factory() RepositoryFactory {
	return func() NotificationRepository {
		return NewMemoryNotificationRepository(s)
	}
}

// Len is the number of persisted notifications
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

type MemoryNotificationRepository struct {
	store   *MemoryStore
	pending *pending
}

func NewMemoryNotificationRepository(store *MemoryStore) *MemoryNotificationRepository {
	return &MemoryNotificationRepository{store: store, pending: newPending()}
}

func (r *MemoryNotificationRepository) FindByID(ctx context.Context, id models.ID) (*Notification, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	n, ok := r.store.items[id]
	if !ok {
		return nil, nil
	}
	return n.clone(), nil
}

func (r *MemoryNotificationRepository) Store(n *Notification) {
	r.pending.store(n)
}

func (r *MemoryNotificationRepository) Remove(n *Notification) {
	r.pending.remove(n)
}

func (r *MemoryNotificationRepository) Flush(ctx context.Context) error {
	if r.pending.empty() {
		return nil
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	err := r.pending.each(func(n *Notification) error {
		current, exists := r.store.items[n.id]
		if n.storedVersion == 0 && exists {
			return ErrConcurrentModification
		}
		if n.storedVersion != 0 && (!exists || current.version != n.storedVersion) {
			return ErrConcurrentModification
		}
		return nil
	})
	if err != nil {
		return err
	}

	_ = r.pending.each(func(n *Notification) error {
		n.storedVersion = n.version
		r.store.items[n.id] = n.clone()
		return nil
	})
	for id := range r.pending.removed {
		delete(r.store.items, id)
	}
	r.pending.reset()
	return nil
}

func (r *MemoryNotificationRepository) FindByUserCompanyAccount(ctx context.Context, account contracts.UserCompanyAccount, filters *NotificationListFilters) (*models.Paginator[*Notification], error) {
	matched := r.filter(account, func(n *Notification) bool {
		if n.createdAt.Before(filters.DateFrom()) {
			return false
		}
		if filters.ExcludeDisplayed() && n.displayedAt != nil {
			return false
		}
		if filters.ExcludeRead() && n.readAt != nil {
			return false
		}
		return true
	})

	asc := filters.SortDir() == models.SortAsc
	sort.SliceStable(matched, func(i, j int) bool {
		if asc {
			return matched[i].createdAt.Before(matched[j].createdAt)
		}
		return matched[i].createdAt.After(matched[j].createdAt)
	})

	total := int64(len(matched))
	start := filters.Offset()
	if start > len(matched) {
		start = len(matched)
	}
	end := start + filters.PerPage()
	if end > len(matched) {
		end = len(matched)
	}
	return models.NewPaginator(matched[start:end], total, filters.Page(), filters.PerPage()), nil
}

func (r *MemoryNotificationRepository) CountNonDisplayed(ctx context.Context, account contracts.UserCompanyAccount, dateFrom time.Time) (int64, error) {
	matched := r.filter(account, func(n *Notification) bool {
		return n.displayedAt == nil && !n.createdAt.Before(dateFrom)
	})
	return int64(len(matched)), nil
}

func (r *MemoryNotificationRepository) FindNonDisplayedByIDs(ctx context.Context, account contracts.UserCompanyAccount, ids []models.ID) ([]*Notification, error) {
	wanted := idSet(ids)
	return r.filter(account, func(n *Notification) bool {
		_, ok := wanted[n.id]
		return ok && n.displayedAt == nil
	}), nil
}

func (r *MemoryNotificationRepository) FindNonDisplayedOlderThan(ctx context.Context, account contracts.UserCompanyAccount, cutoff time.Time) ([]*Notification, error) {
	return r.filter(account, func(n *Notification) bool {
		return n.displayedAt == nil && !n.createdAt.After(cutoff)
	}), nil
}

func (r *MemoryNotificationRepository) FindUnreadByIDs(ctx context.Context, account contracts.UserCompanyAccount, ids []models.ID) ([]*Notification, error) {
	wanted := idSet(ids)
	return r.filter(account, func(n *Notification) bool {
		_, ok := wanted[n.id]
		return ok && n.readAt == nil
	}), nil
}

func (r *MemoryNotificationRepository) FindUnreadOlderThan(ctx context.Context, account contracts.UserCompanyAccount, cutoff time.Time) ([]*Notification, error) {
	return r.filter(account, func(n *Notification) bool {
		return n.readAt == nil && !n.createdAt.After(cutoff)
	}), nil
}

func (r *MemoryNotificationRepository) DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var deleted int64
	for id, n := range r.store.items {
		if n.createdAt.Before(cutoff) {
			delete(r.store.items, id)
			deleted++
		}
	}
	return deleted, nil
}

// filter returns clones of the account's notifications accepted by keep,
// newest first
func (r *MemoryNotificationRepository) filter(account contracts.UserCompanyAccount, keep func(n *Notification) bool) []*Notification {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var out []*Notification
	for _, n := range r.store.items {
		if n.target == nil || !n.target.UUID().Equals(account.UUID()) {
			continue
		}
		if keep(n) {
			out = append(out, n.clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].createdAt.Equal(out[j].createdAt) {
			return out[i].id < out[j].id
		}
		return out[i].createdAt.After(out[j].createdAt)
	})
	return out
}

func idSet(ids []models.ID) map[models.ID]struct{} {
	set := make(map[models.ID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

var _ NotificationRepository = (*MemoryNotificationRepository)(nil)

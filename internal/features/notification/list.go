package notification

import (
	"context"
	"time"

	"crm-notifications/internal/common/contracts"
	"crm-notifications/internal/common/models"
)

// ListWindow is how far back a list or count looks when no date is given
const ListWindow = 30 * 24 * time.Hour

const SortCreatedAt = "created_at"

var sortable = map[string]string{
	SortCreatedAt: "created_at",
}

// NotificationListFilters narrows a list query
type NotificationListFilters struct {
	models.PagedListFilters
	dateFrom         time.Time
	excludeDisplayed bool
	excludeRead      bool
}

func NewNotificationListFilters() *NotificationListFilters {
	return &NotificationListFilters{
		PagedListFilters: models.NewPagedListFilters(sortable, SortCreatedAt),
		dateFrom:         DefaultDateFrom(),
	}
}

// DefaultDateFrom is the start of the current UTC day minus ListWindow
func DefaultDateFrom() time.Time {
	y, m, d := now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Add(-ListWindow)
}

func (f *NotificationListFilters) SetDateFrom(t time.Time) *NotificationListFilters {
	f.dateFrom = t.UTC()
	return f
}

func (f *NotificationListFilters) SetExcludeDisplayed(v bool) *NotificationListFilters {
	f.excludeDisplayed = v
	return f
}

func (f *NotificationListFilters) SetExcludeRead(v bool) *NotificationListFilters {
	f.excludeRead = v
	return f
}

func (f *NotificationListFilters) DateFrom() time.Time {
	return f.dateFrom
}

func (f *NotificationListFilters) ExcludeDisplayed() bool {
	return f.excludeDisplayed
}

func (f *NotificationListFilters) ExcludeRead() bool {
	return f.excludeRead
}

// NotificationList is the read side used by presentation code
type NotificationList struct {
	repo NotificationRepository
}

func NewNotificationList(repo NotificationRepository) *NotificationList {
	return &NotificationList{repo: repo}
}

func (l *NotificationList) FindByUserCompanyAccount(ctx context.Context, account contracts.UserCompanyAccount, filters *NotificationListFilters) (*models.Paginator[*Notification], error) {
	if filters == nil {
		filters = NewNotificationListFilters()
	}
	return l.repo.FindByUserCompanyAccount(ctx, account, filters)
}

func (l *NotificationList) CountNonDisplayed(ctx context.Context, account contracts.UserCompanyAccount, dateFrom time.Time) (int64, error) {
	return l.repo.CountNonDisplayed(ctx, account, dateFrom)
}

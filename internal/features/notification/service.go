package notification

import (
	"context"
	"time"

	"crm-notifications/internal/common/contracts"
	"crm-notifications/internal/common/models"
)

// MarkRequest selects notifications either by id or by age, never both
type MarkRequest struct {
	IDs       []string
	OlderThan *time.Time
}

func (r MarkRequest) validate() error {
	if len(r.IDs) > 0 && r.OlderThan != nil {
		return models.NewValidationError("ids", "ids and older_than cannot be combined")
	}
	if len(r.IDs) == 0 && r.OlderThan == nil {
		return models.NewValidationError("ids", "either ids or older_than is required")
	}
	return nil
}

// validIDs drops ids that are not UUIDs
func (r MarkRequest) validIDs() []models.ID {
	ids := make([]models.ID, 0, len(r.IDs))
	for _, raw := range r.IDs {
		if id, err := models.ParseID(raw); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

type NotificationService interface {
	List(ctx context.Context, account contracts.UserCompanyAccount, filters *NotificationListFilters) (*models.Paginator[*Notification], error)
	CountNonDisplayed(ctx context.Context, account contracts.UserCompanyAccount, dateFrom time.Time) (int64, error)
	// Display and Read return how many notifications changed
	Display(ctx context.Context, account contracts.UserCompanyAccount, req MarkRequest) (int, error)
	Read(ctx context.Context, account contracts.UserCompanyAccount, req MarkRequest) (int, error)
}

type NotificationServiceImpl struct {
	repositories RepositoryFactory
}

func NewNotificationService(repositories RepositoryFactory) NotificationService {
	return &NotificationServiceImpl{repositories: repositories}
}

func (s *NotificationServiceImpl) List(ctx context.Context, account contracts.UserCompanyAccount, filters *NotificationListFilters) (*models.Paginator[*Notification], error) {
	return NewNotificationList(s.repositories()).FindByUserCompanyAccount(ctx, account, filters)
}

func (s *NotificationServiceImpl) CountNonDisplayed(ctx context.Context, account contracts.UserCompanyAccount, dateFrom time.Time) (int64, error) {
	return NewNotificationList(s.repositories()).CountNonDisplayed(ctx, account, dateFrom)
}

func (s *NotificationServiceImpl) Display(ctx context.Context, account contracts.UserCompanyAccount, req MarkRequest) (int, error) {
	if err := req.validate(); err != nil {
		return 0, err
	}
	repo := s.repositories()

	var (
		list []*Notification
		err  error
	)
	if req.OlderThan != nil {
		list, err = repo.FindNonDisplayedOlderThan(ctx, account, *req.OlderThan)
	} else if ids := req.validIDs(); len(ids) > 0 {
		list, err = repo.FindNonDisplayedByIDs(ctx, account, ids)
	}
	if err != nil {
		return 0, err
	}

	for _, n := range list {
		n.Display(repo)
	}
	return len(list), flushIfAny(ctx, repo, list)
}

func (s *NotificationServiceImpl) Read(ctx context.Context, account contracts.UserCompanyAccount, req MarkRequest) (int, error) {
	if err := req.validate(); err != nil {
		return 0, err
	}
	repo := s.repositories()

	var (
		list []*Notification
		err  error
	)
	if req.OlderThan != nil {
		list, err = repo.FindUnreadOlderThan(ctx, account, *req.OlderThan)
	} else if ids := req.validIDs(); len(ids) > 0 {
		list, err = repo.FindUnreadByIDs(ctx, account, ids)
	}
	if err != nil {
		return 0, err
	}

	for _, n := range list {
		n.Read(repo)
	}
	return len(list), flushIfAny(ctx, repo, list)
}

func flushIfAny(ctx context.Context, repo NotificationRepository, list []*Notification) error {
	if len(list) == 0 {
		return nil
	}
	return repo.Flush(ctx)
}

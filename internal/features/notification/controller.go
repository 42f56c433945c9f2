package notification

import (
	"errors"
	"strconv"
	"time"

	"crm-notifications/internal/common/contracts"
	"crm-notifications/internal/common/models"
	"crm-notifications/internal/features/account"
	"crm-notifications/internal/middleware"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const accountLocalsKey = "notification_account_id"

type NotificationController struct {
	service  NotificationService
	accounts account.AccountRepository
	hub      *Hub
	logger   *zap.Logger
}

func NewNotificationController(service NotificationService, accounts account.AccountRepository, hub *Hub, logger *zap.Logger) *NotificationController {
	return &NotificationController{
		service:  service,
		accounts: accounts,
		hub:      hub,
		logger:   logger,
	}
}

// List godoc
func (c *NotificationController) List(ctx *fiber.Ctx) error {
	excludeDisplayed, hasExcludeDisplayed, err := queryBool(ctx, "exclude_displayed")
	if err != nil {
		return c.fail(ctx, err)
	}
	excludeRead, hasExcludeRead, err := queryBool(ctx, "exclude_read")
	if err != nil {
		return c.fail(ctx, err)
	}
	if hasExcludeDisplayed && hasExcludeRead {
		return c.fail(ctx, models.NewValidationError("exclude_displayed", "cannot be combined with exclude_read"))
	}

	filters := NewNotificationListFilters()
	dateFrom, err := queryUnix(ctx, "date_from")
	if err != nil {
		return c.fail(ctx, err)
	}
	if dateFrom != nil {
		filters.SetDateFrom(*dateFrom)
	}
	page, err := queryInt(ctx, "page", 1)
	if err != nil {
		return c.fail(ctx, err)
	}
	limit, err := queryInt(ctx, "limit", models.DefaultPerPage)
	if err != nil {
		return c.fail(ctx, err)
	}
	filters.SetPage(page)
	filters.SetPerPage(limit)
	if err := filters.SetSortBy(ctx.Query("sort_by")); err != nil {
		return c.fail(ctx, err)
	}
	if err := filters.SetSortDir(ctx.Query("sort_dir")); err != nil {
		return c.fail(ctx, err)
	}
	filters.SetExcludeDisplayed(excludeDisplayed).SetExcludeRead(excludeRead)

	userCompanyAccount, err := c.userCompanyAccount(ctx)
	if err != nil {
		return c.fail(ctx, err)
	}

	list, err := c.service.List(ctx.Context(), userCompanyAccount, filters)
	if err != nil {
		return c.fail(ctx, err)
	}
	return ctx.JSON(ToApiNotificationList(list))
}

// NonDisplayedCount godoc
func (c *NotificationController) NonDisplayedCount(ctx *fiber.Ctx) error {
	dateFrom, err := queryUnix(ctx, "date_from")
	if err != nil {
		return c.fail(ctx, err)
	}
	from := DefaultDateFrom()
	if dateFrom != nil {
		from = *dateFrom
	}

	userCompanyAccount, err := c.userCompanyAccount(ctx)
	if err != nil {
		return c.fail(ctx, err)
	}

	count, err := c.service.CountNonDisplayed(ctx.Context(), userCompanyAccount, from)
	if err != nil {
		return c.fail(ctx, err)
	}
	return ctx.JSON(ApiCount{Count: count})
}

// Display godoc
func (c *NotificationController) Display(ctx *fiber.Ctx) error {
	req, err := markRequest(ctx)
	if err != nil {
		return c.fail(ctx, err)
	}
	userCompanyAccount, err := c.userCompanyAccount(ctx)
	if err != nil {
		return c.fail(ctx, err)
	}
	if _, err := c.service.Display(ctx.Context(), userCompanyAccount, req); err != nil {
		return c.fail(ctx, err)
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}

// Read godoc
func (c *NotificationController) Read(ctx *fiber.Ctx) error {
	req, err := markRequest(ctx)
	if err != nil {
		return c.fail(ctx, err)
	}
	userCompanyAccount, err := c.userCompanyAccount(ctx)
	if err != nil {
		return c.fail(ctx, err)
	}
	if _, err := c.service.Read(ctx.Context(), userCompanyAccount, req); err != nil {
		return c.fail(ctx, err)
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}

// UpgradeGuard resolves the account before the connection is upgraded
func (c *NotificationController) UpgradeGuard(ctx *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(ctx) {
		return fiber.ErrUpgradeRequired
	}
	userCompanyAccount, err := c.userCompanyAccount(ctx)
	if err != nil {
		return c.fail(ctx, err)
	}
	ctx.Locals(accountLocalsKey, userCompanyAccount.UUID())
	return ctx.Next()
}

// LiveFeed streams notifications created for the account while the socket
// is open
func (c *NotificationController) LiveFeed(conn *websocket.Conn) {
	accountID, ok := conn.Locals(accountLocalsKey).(models.ID)
	if !ok {
		_ = conn.Close()
		return
	}

	messages, unsubscribe := c.hub.Subscribe(accountID)
	defer unsubscribe()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.logger.Debug("Live feed write failed", zap.String("account_id", accountID.String()), zap.Error(err))
				return
			}
		}
	}
}

func (c *NotificationController) userCompanyAccount(ctx *fiber.Ctx) (contracts.UserCompanyAccount, error) {
	companyAccountID := ctx.Query("company_account_id")
	if companyAccountID == "" {
		return nil, models.NewValidationError("company_account_id", "is required")
	}
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		return nil, fiber.ErrUnauthorized
	}
	id, err := models.ParseID(companyAccountID)
	if err != nil {
		return nil, models.NewModelNotFoundError("CompanyAccount", companyAccountID)
	}
	return c.accounts.FindUserCompanyAccount(ctx.Context(), userID, id)
}

func (c *NotificationController) fail(ctx *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	switch {
	case errors.As(err, &fiberErr):
		return ctx.Status(fiberErr.Code).JSON(fiber.Map{"error": fiberErr.Message})
	case errors.Is(err, models.ErrValidation):
		return ctx.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, models.ErrModelNotFound):
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ErrConcurrentModification):
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	default:
		c.logger.Error("Notification request failed", zap.String("path", ctx.Path()), zap.Error(err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}
}

func markRequest(ctx *fiber.Ctx) (MarkRequest, error) {
	var req MarkRequest
	args := ctx.Context().QueryArgs()
	for _, key := range []string{"ids[]", "ids"} {
		for _, v := range args.PeekMulti(key) {
			req.IDs = append(req.IDs, string(v))
		}
	}
	olderThan, err := queryUnix(ctx, "older_than")
	if err != nil {
		return req, err
	}
	req.OlderThan = olderThan
	return req, req.validate()
}

func queryInt(ctx *fiber.Ctx, key string, fallback int) (int, error) {
	raw := ctx.Query(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, models.NewValidationError(key, "must be an integer")
	}
	return n, nil
}

func queryUnix(ctx *fiber.Ctx, key string) (*time.Time, error) {
	raw := ctx.Query(key)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, models.NewValidationError(key, "must be a unix timestamp")
	}
	t := time.Unix(n, 0).UTC()
	return &t, nil
}

// queryBool reports the value and whether the parameter was given at all
func queryBool(ctx *fiber.Ctx, key string) (bool, bool, error) {
	raw := ctx.Query(key)
	if raw == "" {
		return false, false, nil
	}
	switch raw {
	case "1", "true":
		return true, true, nil
	case "0", "false":
		return false, true, nil
	}
	return false, true, models.NewValidationError(key, "must be a boolean")
}

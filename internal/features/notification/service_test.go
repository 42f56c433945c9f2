package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"crm-notifications/internal/common/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceDisplayByIDs(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	target := newAccount(newUser("Ann"))
	base := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	seeded := seed(t, store, target, base, base.Add(time.Minute))
	svc := NewNotificationService(store.Factory())

	changed, err := svc.Display(ctx, target, MarkRequest{IDs: []string{seeded[0].ID().String(), "garbage"}})
	require.NoError(t, err)
	assert.Equal(t, 1, changed)

	count, err := svc.CountNonDisplayed(ctx, target, base.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	changed, err = svc.Display(ctx, target, MarkRequest{IDs: []string{seeded[0].ID().String()}})
	require.NoError(t, err)
	assert.Equal(t, 0, changed)
}

func TestServiceReadOlderThan(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	target := newAccount(newUser("Ann"))
	base := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	seed(t, store, target, base, base.Add(time.Minute), base.Add(time.Hour))
	svc := NewNotificationService(store.Factory())

	cutoff := base.Add(time.Minute)
	changed, err := svc.Read(ctx, target, MarkRequest{OlderThan: &cutoff})
	require.NoError(t, err)
	assert.Equal(t, 2, changed)

	filters := NewNotificationListFilters().SetDateFrom(base).SetExcludeRead(true)
	page, err := svc.List(ctx, target, filters)
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total())

	count, err := svc.CountNonDisplayed(ctx, target, base)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestServiceRejectsAmbiguousRequests(t *testing.T) {
	svc := NewNotificationService(NewMemoryStore().Factory())
	target := newAccount(newUser("Ann"))
	cutoff := time.Now()

	_, err := svc.Read(context.Background(), target, MarkRequest{})
	assert.True(t, errors.Is(err, models.ErrValidation))

	_, err = svc.Display(context.Background(), target, MarkRequest{IDs: []string{models.NextID().String()}, OlderThan: &cutoff})
	assert.True(t, errors.Is(err, models.ErrValidation))
}

func TestServiceInvalidIDsOnly(t *testing.T) {
	svc := NewNotificationService(NewMemoryStore().Factory())
	changed, err := svc.Read(context.Background(), newAccount(newUser("Ann")), MarkRequest{IDs: []string{"nope"}})
	require.NoError(t, err)
	assert.Equal(t, 0, changed)
}

func TestDefaultDateFrom(t *testing.T) {
	freezeClock(t, time.Date(2026, 10, 16, 15, 4, 5, 0, time.UTC))
	assert.Equal(t, time.Date(2026, 9, 16, 0, 0, 0, 0, time.UTC), DefaultDateFrom())
	assert.Equal(t, DefaultDateFrom(), NewNotificationListFilters().DateFrom())
}

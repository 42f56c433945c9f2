package notification

import (
	"context"
	"testing"
	"time"

	"crm-notifications/internal/common/contracts"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisplayIsIdempotent(t *testing.T) {
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	freezeClock(t, created)
	store := NewMemoryStore()
	repo := NewMemoryNotificationRepository(store)
	n, err := OnImportFinished(repo, importFinished(newAccount(newUser("Ann"))))
	require.NoError(t, err)
	require.NoError(t, repo.Flush(context.Background()))

	displayed := created.Add(time.Minute)
	freezeClock(t, displayed)
	n.Display(repo)
	require.NotNil(t, n.DisplayedAt())
	assert.Equal(t, displayed, *n.DisplayedAt())
	assert.Equal(t, displayed, n.UpdatedAt())
	assert.Equal(t, 2, n.Version())

	freezeClock(t, displayed.Add(time.Hour))
	n.Display(repo)
	assert.Equal(t, displayed, *n.DisplayedAt())
	assert.Equal(t, 2, n.Version())
	assert.Nil(t, n.ReadAt())
}

func TestReadWithoutDisplaySetsBothTimestamps(t *testing.T) {
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	freezeClock(t, created)
	repo := NewMemoryNotificationRepository(NewMemoryStore())
	n, err := OnImportFinished(repo, importFinished(newAccount(newUser("Ann"))))
	require.NoError(t, err)

	read := created.Add(2 * time.Minute)
	freezeClock(t, read)
	n.Read(repo)

	require.NotNil(t, n.ReadAt())
	require.NotNil(t, n.DisplayedAt())
	assert.Equal(t, *n.ReadAt(), *n.DisplayedAt())
	assert.Equal(t, read, *n.ReadAt())
	assert.Equal(t, 2, n.Version())
	assert.True(t, n.IsDisplayed())
	assert.True(t, n.IsRead())

	freezeClock(t, read.Add(time.Hour))
	n.Read(repo)
	n.Display(repo)
	assert.Equal(t, read, *n.ReadAt())
	assert.Equal(t, 2, n.Version())
}

func TestReadKeepsEarlierDisplay(t *testing.T) {
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	freezeClock(t, created)
	repo := NewMemoryNotificationRepository(NewMemoryStore())
	n, err := OnImportFinished(repo, importFinished(newAccount(newUser("Ann"))))
	require.NoError(t, err)

	n.Display(repo)
	freezeClock(t, created.Add(time.Hour))
	n.Read(repo)

	assert.Equal(t, created, *n.DisplayedAt())
	assert.Equal(t, created.Add(time.Hour), *n.ReadAt())
	assert.Equal(t, 3, n.Version())
}

func TestSystemCreatorIsDropped(t *testing.T) {
	n := newNotification(Source{}, EventImportFinished, Variables{}, newAccount(newUser("Ann")), contracts.SystemUser())
	assert.Nil(t, n.CreatedBy())
	assert.Equal(t, 1, n.Version())
	assert.Nil(t, n.DisplayedAt())
	assert.Nil(t, n.ReadAt())
}

func TestEqualsComparesIdentity(t *testing.T) {
	target := newAccount(newUser("Ann"))
	a := newNotification(Source{}, EventImportFinished, Variables{}, target, nil)
	b := newNotification(Source{}, EventImportFinished, Variables{}, target, nil)

	assert.True(t, a.Equals(a.clone()))
	assert.False(t, a.Equals(b))
	assert.False(t, a.Equals(nil))
}

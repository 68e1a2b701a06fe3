package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imaginify/user-service/internal/apperror"
	"github.com/imaginify/user-service/model"
)

func newTestUser(clerkID string) model.User {
	return model.User{
		ClerkID:   clerkID,
		Email:     clerkID + "@example.com",
		Username:  "u_" + clerkID,
		FirstName: "First",
		LastName:  "Last",
		Photo:     "https://img.example.com/" + clerkID + ".png",
	}
}

func TestCreateAppliesDefaultGrant(t *testing.T) {
	store := NewMemoryUserStore(10)

	created, err := store.Create(context.Background(), newTestUser("u1"))
	require.NoError(t, err)
	assert.NotEmpty(t, created.Key)
	assert.Equal(t, 10, created.CreditBalance)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := store.GetByClerkID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func TestCreateDuplicateClerkID(t *testing.T) {
	store := NewMemoryUserStore(10)

	_, err := store.Create(context.Background(), newTestUser("u1"))
	require.NoError(t, err)

	_, err = store.Create(context.Background(), newTestUser("u1"))
	assert.ErrorIs(t, err, apperror.ErrDuplicate)
}

func TestUpdateTouchesOnlyProfileFields(t *testing.T) {
	store := NewMemoryUserStore(10)
	created, err := store.Create(context.Background(), newTestUser("u1"))
	require.NoError(t, err)

	name := "Changed"
	updated, err := store.Update(context.Background(), "u1", model.UserUpdate{FirstName: &name})
	require.NoError(t, err)

	assert.Equal(t, "Changed", updated.FirstName)
	assert.Equal(t, created.LastName, updated.LastName)
	assert.Equal(t, created.Username, updated.Username)
	assert.Equal(t, created.ClerkID, updated.ClerkID)
	assert.Equal(t, created.Email, updated.Email)
	assert.Equal(t, created.CreditBalance, updated.CreditBalance)
	assert.Equal(t, created.Key, updated.Key)
}

func TestUpdateMissingUser(t *testing.T) {
	store := NewMemoryUserStore(10)
	name := "x"
	_, err := store.Update(context.Background(), "ghost", model.UserUpdate{FirstName: &name})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestDeleteThenGetFails(t *testing.T) {
	store := NewMemoryUserStore(10)
	created, err := store.Create(context.Background(), newTestUser("u1"))
	require.NoError(t, err)

	deleted, err := store.Delete(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, created.Key, deleted.Key)

	_, err = store.GetByClerkID(context.Background(), "u1")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestDeleteMissingUser(t *testing.T) {
	store := NewMemoryUserStore(10)
	_, err := store.Delete(context.Background(), "ghost")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestAddCreditsSequential(t *testing.T) {
	store := NewMemoryUserStore(10)
	created, err := store.Create(context.Background(), newTestUser("u1"))
	require.NoError(t, err)

	_, err = store.AddCredits(context.Background(), created.Key, 10)
	require.NoError(t, err)
	after, err := store.AddCredits(context.Background(), created.Key, -3)
	require.NoError(t, err)

	assert.Equal(t, 10+10-3, after.CreditBalance)
}

func TestAddCreditsMissingUser(t *testing.T) {
	store := NewMemoryUserStore(10)
	_, err := store.AddCredits(context.Background(), "999", 5)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

// Concurrent increments summing to T must leave the balance at initial+T
// regardless of interleaving.
func TestAddCreditsConcurrent(t *testing.T) {
	store := NewMemoryUserStore(10)
	created, err := store.Create(context.Background(), newTestUser("u1"))
	require.NoError(t, err)

	const workers = 50
	const perWorker = 20

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				if _, err := store.AddCredits(context.Background(), created.Key, 1); err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	wg.Wait()

	final, err := store.GetByClerkID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 10+workers*perWorker, final.CreditBalance)
}

func TestListNewestFirst(t *testing.T) {
	store := NewMemoryUserStore(10)
	for _, id := range []string{"u1", "u2", "u3"} {
		_, err := store.Create(context.Background(), newTestUser(id))
		require.NoError(t, err)
	}

	users, err := store.List(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "u3", users[0].ClerkID)
	assert.Equal(t, "u2", users[1].ClerkID)
}

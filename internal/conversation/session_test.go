package conversation

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Minute)

	got, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, store.Put(ctx, 1, &Session{Flow: FlowQuiz, Step: StepFavoriteBook}))
	got, err = store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, &Session{Flow: FlowQuiz, Step: StepFavoriteBook}, got)

	// callers get a copy
	got.Step = StepBooksPerYear
	again, _ := store.Get(ctx, 1)
	assert.Equal(t, StepFavoriteBook, again.Step)

	require.NoError(t, store.Delete(ctx, 1))
	got, err = store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, got)

	assert.Error(t, store.Put(ctx, 1, nil))
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	store := NewMemoryStore(time.Minute)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Put(ctx, 5, &Session{Flow: FlowRecommend, Step: StepBooks}))

	now = now.Add(30 * time.Second)
	got, _ := store.Get(ctx, 5)
	assert.NotNil(t, got)

	now = now.Add(2 * time.Minute)
	got, _ = store.Get(ctx, 5)
	assert.Nil(t, got)
}

func TestRedisStore(t *testing.T) {
	host := os.Getenv("REDIS_HOST")
	if host == "" {
		t.Skip("Skipping Redis-dependent test - REDIS_HOST not set")
	}
	port := os.Getenv("REDIS_PORT")
	if port == "" {
		port = "6379"
	}

	client := redis.NewClient(&redis.Options{Addr: host + ":" + port})
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	store := NewRedisStore(client, time.Minute)
	const userID = 777001

	require.NoError(t, store.Delete(ctx, userID))
	got, err := store.Get(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, got)

	session := &Session{Flow: FlowRecommend, Step: StepGenres, Favorites: []string{"Dune"}}
	require.NoError(t, store.Put(ctx, userID, session))

	got, err = store.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, session, got)

	ttl, err := client.TTL(ctx, sessionKey(userID)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, client.Set(ctx, sessionKey(userID), "not json", time.Minute).Err())
	got, err = store.Get(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, store.Delete(ctx, userID))
}

func TestSessionKey(t *testing.T) {
	assert.Equal(t, "conversation:session:42", sessionKey(42))
}

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-finance-mirror/internal/models"
)

func receive(t *testing.T, ch <-chan models.Collection) models.Collection {
	t.Helper()
	select {
	case c, ok := <-ch:
		require.True(t, ok, "feed closed early")
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for change notification")
		return ""
	}
}

func TestChangeFeedDeliversKnownCollections(t *testing.T) {
	_, client := newRedisClient(t)
	feed := NewChangeFeed(client, "mirror:changes", nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes, err := feed.Subscribe(ctx)
	require.NoError(t, err)

	require.NoError(t, feed.Publish(ctx, models.CollectionStudents))
	require.NoError(t, client.Publish(ctx, "mirror:changes", "grades").Err())
	require.NoError(t, client.Publish(ctx, "mirror:changes", " settings ").Err())

	assert.Equal(t, models.CollectionStudents, receive(t, changes))
	assert.Equal(t, models.CollectionSettings, receive(t, changes))
}

func TestChangeFeedClosesOnCancel(t *testing.T) {
	_, client := newRedisClient(t)
	feed := NewChangeFeed(client, "mirror:changes", nil)

	ctx, cancel := context.WithCancel(context.Background())
	changes, err := feed.Subscribe(ctx)
	require.NoError(t, err)
	cancel()

	select {
	case _, ok := <-changes:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("feed did not close after cancel")
	}
}

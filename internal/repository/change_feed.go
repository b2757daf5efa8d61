package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-finance-mirror/internal/models"
)

// ChangeFeed carries collection change notifications over a Redis channel.
// The desktop sync job publishes the collection name after every upsert.
type ChangeFeed struct {
	client  *redis.Client
	channel string
	logger  *zap.Logger
}

// NewChangeFeed builds a change feed bound to channel.
func NewChangeFeed(client *redis.Client, channel string, logger *zap.Logger) *ChangeFeed {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChangeFeed{client: client, channel: channel, logger: logger}
}

// Subscribe delivers the collections named on the channel until ctx is done.
// Unknown collection names are logged and dropped.
func (f *ChangeFeed) Subscribe(ctx context.Context) (<-chan models.Collection, error) {
	pubsub := f.client.Subscribe(ctx, f.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", f.channel, err)
	}

	out := make(chan models.Collection, 64)
	go func() {
		defer close(out)
		defer pubsub.Close()

		messages := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				collection, err := models.ParseCollection(strings.TrimSpace(msg.Payload))
				if err != nil {
					f.logger.Warn("ignoring change notification", zap.String("channel", f.channel), zap.Error(err))
					continue
				}
				select {
				case out <- collection:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

// Publish announces a change to a collection.
func (f *ChangeFeed) Publish(ctx context.Context, collection models.Collection) error {
	if err := f.client.Publish(ctx, f.channel, string(collection)).Err(); err != nil {
		return fmt.Errorf("publish %s on %s: %w", collection, f.channel, err)
	}
	return nil
}

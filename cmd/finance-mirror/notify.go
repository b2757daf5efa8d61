package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/noah-isme/sma-finance-mirror/internal/models"
	"github.com/noah-isme/sma-finance-mirror/internal/repository"
	"github.com/noah-isme/sma-finance-mirror/pkg/cache"
	"github.com/noah-isme/sma-finance-mirror/pkg/config"
)

type changePublisher interface {
	Publish(ctx context.Context, collection models.Collection) error
}

func newNotifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "notify <collection>...",
		Short: "Announce upstream changes so running mirrors reload the collections",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			collections, err := parseCollections(args)
			if err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			client, err := cache.NewRedis(cfg.Redis)
			if err != nil {
				return err
			}
			defer client.Close()

			feed := repository.NewChangeFeed(client, cfg.Mirror.ChangeChannel, nil)
			return publishChanges(cmd.Context(), cmd.OutOrStdout(), feed, collections)
		},
	}
}

// parseCollections validates every name before anything is published.
func parseCollections(args []string) ([]models.Collection, error) {
	collections := make([]models.Collection, 0, len(args))
	for _, arg := range args {
		c, err := models.ParseCollection(arg)
		if err != nil {
			return nil, err
		}
		collections = append(collections, c)
	}
	return collections, nil
}

func publishChanges(ctx context.Context, w io.Writer, publisher changePublisher, collections []models.Collection) error {
	for _, c := range collections {
		if err := publisher.Publish(ctx, c); err != nil {
			return fmt.Errorf("notify %s: %w", c, err)
		}
		fmt.Fprintf(w, "notified %s\n", c)
	}
	return nil
}

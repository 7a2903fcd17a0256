// Package worker archives published activity events into SQLite.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"flathub/internal/amqp"
	"flathub/internal/storage"
)

// FeedWorker consumes activity messages and appends them to the durable
// archive. The API server keeps its own feed; the archive survives
// restarts and can be queried offline.
type FeedWorker struct {
	archive *storage.SQLiteRepository
}

func NewFeedWorker(archive *storage.SQLiteRepository) *FeedWorker {
	return &FeedWorker{archive: archive}
}

// HandleActivityMessage processes a single activity message. Appending is
// idempotent on the publisher's message id, so redeliveries are harmless.
func (w *FeedWorker) HandleActivityMessage(ctx context.Context, msg *amqp.ActivityMessage) error {
	slog.InfoContext(ctx, "Processing activity message",
		"message_id", msg.MessageID,
		"activity_type", msg.Type)

	if err := w.archive.AppendActivity(ctx, msg.MessageID, msg.Activity()); err != nil {
		return fmt.Errorf("archive activity: %w", err)
	}

	return nil
}

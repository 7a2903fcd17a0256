package amqp

import (
	"context"
	"log/slog"

	"flathub/internal/core"
)

// PublisherHook forwards recorded activities to the broker. Publishing is
// best-effort; failures are logged and never surfaced to the mutation
// that produced the activity.
type PublisherHook struct {
	client *Client
}

func NewPublisherHook(client *Client) *PublisherHook {
	return &PublisherHook{client: client}
}

func (h *PublisherHook) ActivityRecorded(ctx context.Context, a core.Activity) {
	if err := h.client.PublishActivity(ctx, NewActivityMessage(a)); err != nil {
		slog.ErrorContext(ctx, "Failed to publish activity",
			"id", a.ID,
			"activity_type", a.Type,
			"error", err)
	}
}

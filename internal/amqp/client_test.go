package amqp

import (
	"errors"
	"testing"
	"time"

	"flathub/internal/core"
)

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second},
		{10, 30 * time.Second},
		{-1, time.Second},
	}

	for _, tt := range tests {
		got := exponentialBackoff(tt.attempt)
		if got != tt.want {
			t.Errorf("exponentialBackoff(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{"connection refused", errors.New("dial tcp 127.0.0.1:5672: connection refused"), true},
		{"connection reset", errors.New("read: connection reset by peer"), true},
		{"channel closed", errors.New("message channel closed"), true},
		{"broken pipe", errors.New("write: broken pipe"), true},
		{"closed network connection", errors.New("use of closed network connection"), true},
		{"handler failure", errors.New("archive activity: disk full"), false},
		{"context cancelled", errors.New("context canceled"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isConnectionError(tt.err); got != tt.want {
				t.Errorf("isConnectionError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestActivityMessageRoundTrip(t *testing.T) {
	activity := core.Activity{
		ID:          7,
		Type:        core.ActivityExpensePaid,
		Description: "paid $34.50 for groceries",
		UserID:      3,
		CreatedAt:   time.Date(2026, 3, 12, 9, 30, 0, 0, time.UTC),
	}

	msg := NewActivityMessage(activity)
	if msg.PublishedAt.IsZero() {
		t.Error("expected PublishedAt to be set")
	}
	if msg.MessageID == "" {
		t.Error("expected MessageID to be set")
	}

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error: %v", err)
	}

	decoded, err := ActivityMessageFromJSON(body)
	if err != nil {
		t.Fatalf("ActivityMessageFromJSON() error: %v", err)
	}
	if decoded.MessageID != msg.MessageID {
		t.Errorf("MessageID = %q, want %q", decoded.MessageID, msg.MessageID)
	}

	got := decoded.Activity()
	if got.ID != activity.ID {
		t.Errorf("ID = %d, want %d", got.ID, activity.ID)
	}
	if got.Type != activity.Type {
		t.Errorf("Type = %q, want %q", got.Type, activity.Type)
	}
	if got.Description != activity.Description {
		t.Errorf("Description = %q, want %q", got.Description, activity.Description)
	}
	if got.UserID != 3 {
		t.Errorf("UserID = %d, want 3", got.UserID)
	}
	if !got.CreatedAt.Equal(activity.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, activity.CreatedAt)
	}
}

func TestActivityMessageFromJSONInvalid(t *testing.T) {
	if _, err := ActivityMessageFromJSON([]byte("not json")); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

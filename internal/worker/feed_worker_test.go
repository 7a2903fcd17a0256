package worker

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"flathub/internal/amqp"
	"flathub/internal/core"
	"flathub/internal/storage"
)

func TestHandleActivityMessage(t *testing.T) {
	archive, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "archive.db"))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer archive.Close()

	w := NewFeedWorker(archive)
	ctx := context.Background()

	msg := amqp.NewActivityMessage(core.Activity{
		ID:          3,
		Type:        core.ActivityGroceryAdded,
		Description: "added Milk to grocery list",
		UserID:      1,
		CreatedAt:   time.Date(2026, 3, 12, 9, 0, 0, 0, time.UTC),
	})

	if err := w.HandleActivityMessage(ctx, msg); err != nil {
		t.Fatalf("HandleActivityMessage() error: %v", err)
	}
	// Redelivery must not duplicate the archived entry.
	if err := w.HandleActivityMessage(ctx, msg); err != nil {
		t.Fatalf("redelivered HandleActivityMessage() error: %v", err)
	}

	activities, err := archive.Activities(ctx, 10)
	if err != nil {
		t.Fatalf("Activities() error: %v", err)
	}
	if len(activities) != 1 {
		t.Fatalf("archive length = %d, want 1", len(activities))
	}
	if activities[0].Description != "added Milk to grocery list" {
		t.Errorf("archived = %+v", activities[0])
	}
}

func TestHandleActivityMessageIDReuseAcrossRuns(t *testing.T) {
	archive, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "archive.db"))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer archive.Close()

	w := NewFeedWorker(archive)
	ctx := context.Background()

	// Two server runs each record their own activity 1. The messages get
	// distinct publisher ids, so both land in the archive.
	runA := amqp.NewActivityMessage(core.Activity{
		ID:          1,
		Type:        core.ActivityTaskCreated,
		Description: "created task: Clean Kitchen",
		UserID:      1,
		CreatedAt:   time.Date(2026, 3, 12, 9, 0, 0, 0, time.UTC),
	})
	runB := amqp.NewActivityMessage(core.Activity{
		ID:          1,
		Type:        core.ActivityGroceryAdded,
		Description: "added Milk to grocery list",
		UserID:      2,
		CreatedAt:   time.Date(2026, 3, 13, 9, 0, 0, 0, time.UTC),
	})

	if err := w.HandleActivityMessage(ctx, runA); err != nil {
		t.Fatalf("HandleActivityMessage() error: %v", err)
	}
	if err := w.HandleActivityMessage(ctx, runB); err != nil {
		t.Fatalf("HandleActivityMessage() error: %v", err)
	}

	activities, err := archive.Activities(ctx, 10)
	if err != nil {
		t.Fatalf("Activities() error: %v", err)
	}
	if len(activities) != 2 {
		t.Fatalf("archive length = %d, want 2", len(activities))
	}
}

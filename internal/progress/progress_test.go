package progress_test

import (
	"testing"

	"substation/internal/progress"
)

func TestTrackerKeepsLatestEvent(t *testing.T) {
	tracker := progress.NewTracker()

	tracker.Publish(progress.Event{ID: "run-1", Header: "Searching subtitles…", Name: "Movie", Value: 0, Count: 2})
	tracker.Publish(progress.Event{ID: "run-1", Header: "Searching subtitles…", Name: "English", Value: 1, Count: 2})

	events := tracker.Snapshot()
	if len(events) != 1 {
		t.Fatalf("expected one active run, got %d", len(events))
	}
	if events[0].Value != 1 || events[0].Name != "English" {
		t.Fatalf("expected latest event retained, got %#v", events[0])
	}
}

func TestTrackerHideRemovesRun(t *testing.T) {
	tracker := progress.NewTracker()

	tracker.Publish(progress.Event{ID: "run-1", Value: 0, Count: 1})
	tracker.Hide("run-1")

	if events := tracker.Snapshot(); len(events) != 0 {
		t.Fatalf("expected empty snapshot after hide, got %d events", len(events))
	}
}

func TestTrackerIgnoresBlankID(t *testing.T) {
	tracker := progress.NewTracker()

	tracker.Publish(progress.Event{Header: "no id"})

	if events := tracker.Snapshot(); len(events) != 0 {
		t.Fatalf("expected blank IDs to be dropped, got %d events", len(events))
	}
}

func TestSnapshotOrderedByRunID(t *testing.T) {
	tracker := progress.NewTracker()

	tracker.Publish(progress.Event{ID: "run-b", Value: 0, Count: 1})
	tracker.Publish(progress.Event{ID: "run-a", Value: 0, Count: 1})

	events := tracker.Snapshot()
	if len(events) != 2 {
		t.Fatalf("expected two runs, got %d", len(events))
	}
	if events[0].ID != "run-a" || events[1].ID != "run-b" {
		t.Fatalf("expected sorted snapshot, got %s,%s", events[0].ID, events[1].ID)
	}
}

func TestMultiFansOut(t *testing.T) {
	first := progress.NewTracker()
	second := progress.NewTracker()

	multi := progress.Multi(first, nil, second)
	multi.Publish(progress.Event{ID: "run-1", Value: 0, Count: 1})

	if len(first.Snapshot()) != 1 || len(second.Snapshot()) != 1 {
		t.Fatal("expected event delivered to every reporter")
	}

	multi.Hide("run-1")
	if len(first.Snapshot()) != 0 || len(second.Snapshot()) != 0 {
		t.Fatal("expected hide delivered to every reporter")
	}
}

package ledger

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "results", "pianoclips.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRunLifecycle(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	run := Run{ID: "run-1", FirstKey: 0, LastKey: 87, KeyCount: 88, Workers: 1, Instrument: "synth", SpeechEngine: "espeak"}
	if err := store.BeginRun(ctx, run); err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	got, err := store.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.Status != StatusRunning || got.KeyCount != 88 || got.StartedAt.IsZero() || !got.FinishedAt.IsZero() {
		t.Fatalf("unexpected running record %+v", got)
	}
	if got.Elapsed() != 0 {
		t.Fatal("running run should have zero elapsed")
	}

	if err := store.RecordArtifact(ctx, Artifact{
		RunID: "run-1", KeyIndex: 0, KeyName: "A-0", Stage: "note",
		Path: "/r/key_sounds/0.mp3", SizeBytes: 1234, Duration: 2 * time.Second,
	}); err != nil {
		t.Fatalf("RecordArtifact: %v", err)
	}
	if err := store.FinishRun(ctx, "run-1", StatusFailed, 3, "video: mux: boom"); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}

	got, err = store.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.Status != StatusFailed || got.CompletedKeys != 3 || got.ErrorMessage != "video: mux: boom" || got.FinishedAt.IsZero() {
		t.Fatalf("unexpected finished record %+v", got)
	}

	artifacts, err := store.Artifacts(ctx, "run-1")
	if err != nil {
		t.Fatalf("Artifacts: %v", err)
	}
	if len(artifacts) != 1 || artifacts[0].Duration != 2*time.Second || artifacts[0].SizeBytes != 1234 {
		t.Fatalf("unexpected artifacts %+v", artifacts)
	}
}

func TestRecentRunsNewestFirst(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	for i, id := range []string{"old", "mid", "new"} {
		if err := store.BeginRun(ctx, Run{ID: id, StartedAt: base.Add(time.Duration(i) * time.Minute), KeyCount: 1}); err != nil {
			t.Fatalf("BeginRun %s: %v", id, err)
		}
	}
	runs, err := store.RecentRuns(ctx, 2)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "new" || runs[1].ID != "mid" {
		t.Fatalf("unexpected order %+v", runs)
	}
}

func TestFinishUnknownRun(t *testing.T) {
	store := openTestStore(t)
	err := store.FinishRun(context.Background(), "missing", StatusSucceeded, 0, "")
	if !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
	if _, err := store.GetRun(context.Background(), "missing"); !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
}

func TestReopenKeepsHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pianoclips.db")
	store, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.BeginRun(context.Background(), Run{ID: "keep", KeyCount: 1}); err != nil {
		t.Fatal(err)
	}
	_ = store.Close()

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	if _, err := reopened.GetRun(context.Background(), "keep"); err != nil {
		t.Fatalf("expected run to survive reopen: %v", err)
	}
}

func TestArtifactRequiresRun(t *testing.T) {
	store := openTestStore(t)
	err := store.RecordArtifact(context.Background(), Artifact{RunID: "ghost", Stage: "note", Path: "x"})
	if err == nil {
		t.Fatal("expected foreign key violation")
	}
}

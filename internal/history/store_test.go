package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/ShayCichocki/dispatch/pkg/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSaveAndGetRun(t *testing.T) {
	store := openTestStore(t)

	run := &Run{
		Task:     "write a report",
		Analysis: "two styles serve different readers",
		Model:    "claude-sonnet-4-20250514",
		Workers: []models.WorkerResult{
			{Kind: "formal", Description: "A", Output: "formal output"},
			{Kind: "default", Description: "B", Output: "casual output"},
		},
		InputTokens:  1200,
		OutputTokens: 800,
	}

	id, err := store.SaveRun(run)
	if err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}
	if id == "" {
		t.Fatal("SaveRun returned empty ID")
	}

	loaded, err := store.GetRun(id)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}

	if loaded.Task != run.Task {
		t.Errorf("Task = %q, want %q", loaded.Task, run.Task)
	}
	if loaded.Analysis != run.Analysis {
		t.Errorf("Analysis = %q, want %q", loaded.Analysis, run.Analysis)
	}
	if loaded.InputTokens != 1200 || loaded.OutputTokens != 800 {
		t.Errorf("tokens = %d/%d, want 1200/800", loaded.InputTokens, loaded.OutputTokens)
	}
	if len(loaded.Workers) != 2 {
		t.Fatalf("got %d workers, want 2", len(loaded.Workers))
	}
	for i, w := range loaded.Workers {
		if w != run.Workers[i] {
			t.Errorf("worker %d = %+v, want %+v", i, w, run.Workers[i])
		}
	}
}

func TestGetRun_NotFound(t *testing.T) {
	store := openTestStore(t)

	if _, err := store.GetRun("missing-id"); err == nil {
		t.Error("expected error for missing run")
	}
}

func TestListRuns_NewestFirst(t *testing.T) {
	store := openTestStore(t)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		_, err := store.SaveRun(&Run{
			Task:      "task",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("SaveRun failed: %v", err)
		}
	}

	runs, err := store.ListRuns(10)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("got %d runs, want 3", len(runs))
	}
	for i := 1; i < len(runs); i++ {
		if runs[i].CreatedAt.After(runs[i-1].CreatedAt) {
			t.Errorf("runs not ordered newest first at index %d", i)
		}
	}
}

func TestListRuns_Limit(t *testing.T) {
	store := openTestStore(t)

	for i := 0; i < 5; i++ {
		if _, err := store.SaveRun(&Run{Task: "task"}); err != nil {
			t.Fatalf("SaveRun failed: %v", err)
		}
	}

	runs, err := store.ListRuns(2)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("got %d runs, want 2", len(runs))
	}
}

func TestDeleteRun(t *testing.T) {
	store := openTestStore(t)

	id, err := store.SaveRun(&Run{
		Task:    "task",
		Workers: []models.WorkerResult{{Kind: "default", Description: "d", Output: "o"}},
	})
	if err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	if err := store.DeleteRun(id); err != nil {
		t.Fatalf("DeleteRun failed: %v", err)
	}
	if _, err := store.GetRun(id); err == nil {
		t.Error("expected error after delete")
	}
	if err := store.DeleteRun(id); err == nil {
		t.Error("expected error deleting missing run")
	}
}

func TestSaveRun_EmptyWorkers(t *testing.T) {
	store := openTestStore(t)

	id, err := store.SaveRun(&Run{Task: "nothing to split", Analysis: "single step"})
	if err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	loaded, err := store.GetRun(id)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if len(loaded.Workers) != 0 {
		t.Errorf("got %d workers, want 0", len(loaded.Workers))
	}
}

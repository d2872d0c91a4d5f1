package store

import (
	"bytes"
	"database/sql"
	"log"
	"strings"
	"sync"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	store := New(db)
	if err := store.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return store
}

func TestMigrate_Idempotent(t *testing.T) {
	store := setupTestStore(t)

	if err := store.Migrate(); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}

	version, err := store.MigrationVersion()
	if err != nil {
		t.Fatalf("MigrationVersion: %v", err)
	}
	if version != len(migrations) {
		t.Errorf("version = %d, want %d", version, len(migrations))
	}
}

func TestIngestRun_Lifecycle(t *testing.T) {
	store := setupTestStore(t)

	loc := "-9.930,-76.240"
	start := time.Date(2025, 9, 25, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC)

	run, err := store.StartIngestRun("nasa_power", "temporal/daily/point", &loc, start, end)
	if err != nil {
		t.Fatalf("StartIngestRun: %v", err)
	}
	if run.ID == 0 {
		t.Fatal("expected run ID to be assigned")
	}

	run.Success = true
	run.RecordsParsed = sql.NullInt64{Int64: 21, Valid: true}
	if err := store.CompleteIngestRun(run); err != nil {
		t.Fatalf("CompleteIngestRun: %v", err)
	}
	if !run.FinishedAt.Valid {
		t.Error("FinishedAt should be set")
	}
	if !run.DurationMS.Valid {
		t.Error("DurationMS should be set")
	}

	failed, err := store.StartIngestRun("open_meteo", "forecast/daily", &loc, start, end)
	if err != nil {
		t.Fatalf("StartIngestRun: %v", err)
	}
	failed.ErrorMessage = sql.NullString{String: "upstream error: status 400", Valid: true}
	if err := store.CompleteIngestRun(failed); err != nil {
		t.Fatalf("CompleteIngestRun: %v", err)
	}

	health, err := store.GetIngestHealth(7)
	if err != nil {
		t.Fatalf("GetIngestHealth: %v", err)
	}
	if len(health) != 2 {
		t.Fatalf("len(health) = %d, want 2", len(health))
	}

	bySource := make(map[string]IngestHealthSummary)
	for _, h := range health {
		bySource[h.Source] = h
	}
	if got := bySource["nasa_power"]; got.SuccessRuns != 1 || got.TotalRecords != 21 {
		t.Errorf("nasa_power summary = %+v, want 1 success with 21 records", got)
	}
	if got := bySource["open_meteo"]; got.FailedRuns != 1 {
		t.Errorf("open_meteo FailedRuns = %d, want 1", got.FailedRuns)
	}

	errs, err := store.GetRecentIngestErrors(10)
	if err != nil {
		t.Fatalf("GetRecentIngestErrors: %v", err)
	}
	if len(errs) != 1 {
		t.Fatalf("len(errs) = %d, want 1", len(errs))
	}
	if errs[0].Source != "open_meteo" {
		t.Errorf("Source = %q, want open_meteo", errs[0].Source)
	}
	if !errs[0].ErrorMessage.Valid {
		t.Error("expected error message on failed run")
	}
}

func TestCompleteIngestRun_Nil(t *testing.T) {
	store := setupTestStore(t)
	if err := store.CompleteIngestRun(nil); err != nil {
		t.Errorf("CompleteIngestRun(nil) = %v, want nil", err)
	}
}

func TestIngestRun_Concurrent(t *testing.T) {
	store := setupTestStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 24; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			run, err := store.StartIngestRun("nasa_power", "temporal/daily/point", nil, time.Time{}, time.Time{})
			if err != nil {
				t.Errorf("StartIngestRun: %v", err)
				return
			}
			run.Success = true
			if err := store.CompleteIngestRun(run); err != nil {
				t.Errorf("CompleteIngestRun: %v", err)
			}
		}()
	}
	wg.Wait()

	health, err := store.GetIngestHealth(1)
	if err != nil {
		t.Fatalf("GetIngestHealth: %v", err)
	}
	if len(health) != 1 || health[0].TotalRuns != 24 {
		t.Errorf("health = %+v, want 24 runs in one row", health)
	}
}

func TestIngestRun_StoresDoNotShareWriteLock(t *testing.T) {
	busy := setupTestStore(t)
	other := setupTestStore(t)

	busy.writeMu.Lock()
	defer busy.writeMu.Unlock()

	done := make(chan error, 1)
	go func() {
		_, err := other.StartIngestRun("open_meteo", "forecast/daily", nil, time.Time{}, time.Time{})
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("StartIngestRun: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("StartIngestRun blocked on another store's write lock")
	}
}

func TestApplyPragmas_LogsFailures(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Writer()
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(prev) })

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.Close()

	applyPragmas(db)

	out := buf.String()
	for _, p := range pragmas {
		if !strings.Contains(out, "store: "+p+" failed") {
			t.Errorf("log output %q missing failure for %q", out, p)
		}
	}
}

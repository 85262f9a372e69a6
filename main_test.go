package main

import (
	"testing"

	"github.com/kongove/scylla-artifact-tests/database"
)

// recordingStore captures what finish persists so tests can inspect it.
type recordingStore struct {
	run      database.Run
	results  []database.CheckResult
	finished string
	closed   bool
}

var lastStore *recordingStore

func init() {
	database.Register("recording", func(database.RegistrableComponentConfig) (database.Datastore, error) {
		lastStore = &recordingStore{}
		return lastStore, nil
	})
}

func (s *recordingStore) InsertDistro(d database.Distro) (int, error) { return 1, nil }
func (s *recordingStore) ListDistros() ([]database.Distro, error)     { return nil, nil }

func (s *recordingStore) InsertRun(run database.Run) (int, error) {
	s.run = run
	return 1, nil
}

func (s *recordingStore) FinishRun(id int, status string) error {
	s.finished = status
	return nil
}

func (s *recordingStore) InsertCheckResult(runID int, result database.CheckResult) error {
	s.results = append(s.results, result)
	return nil
}

func (s *recordingStore) FindRun(id int, withResults bool) (database.Run, error) {
	return database.Run{}, nil
}
func (s *recordingStore) ListRuns() ([]database.Run, error)    { return nil, nil }
func (s *recordingStore) DeleteRun(id int) error               { return nil }
func (s *recordingStore) InsertKeyValue(k, v string) error     { return nil }
func (s *recordingStore) GetKeyValue(k string) (string, error) { return "", nil }
func (s *recordingStore) Ping() bool                           { return true }
func (s *recordingStore) Close()                               { s.closed = true }

func TestFinishPersistsInterruptedRun(t *testing.T) {
	config := &Config{
		Database: &database.RegistrableComponentConfig{Type: "recording"},
	}
	run := database.Run{Artifact: "http://example.com/scylla.repo", Status: database.StatusRunning}
	partial := []database.CheckResult{
		{Name: "setup/housekeeping", Status: database.StatusPass},
		{Name: "verify/raid", Status: database.StatusPass},
	}

	code := finish(config, run, partial, errInterrupted)
	if code != 1 {
		t.Errorf("finish() = %d, want 1", code)
	}

	// The checks collected before the interruption must survive it.
	if len(lastStore.results) != len(partial) {
		t.Fatalf("persisted %d check results, want %d", len(lastStore.results), len(partial))
	}
	if lastStore.run.Status != database.StatusError {
		t.Errorf("persisted run status = %q, want %q", lastStore.run.Status, database.StatusError)
	}
	if lastStore.finished != database.StatusError {
		t.Errorf("FinishRun status = %q, want %q", lastStore.finished, database.StatusError)
	}
	if !lastStore.closed {
		t.Error("datastore was not closed")
	}
}

func TestFinishStatusMapping(t *testing.T) {
	tests := []struct {
		name    string
		results []database.CheckResult
		err     error
		status  string
		code    int
	}{
		{"pass", []database.CheckResult{{Name: "verify/ntp", Status: database.StatusPass}}, nil, database.StatusPass, 0},
		{"fail", []database.CheckResult{{Name: "verify/ntp", Status: database.StatusFail}}, nil, database.StatusFail, 1},
		{"error", nil, errInterrupted, database.StatusError, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &Config{Database: &database.RegistrableComponentConfig{Type: "recording"}}
			code := finish(config, database.Run{}, tt.results, tt.err)
			if code != tt.code {
				t.Errorf("finish() = %d, want %d", code, tt.code)
			}
			if lastStore.run.Status != tt.status {
				t.Errorf("run status = %q, want %q", lastStore.run.Status, tt.status)
			}
		})
	}
}

func TestNewRunnerLocal(t *testing.T) {
	runner, closeRunner, err := newRunner(&Config{})
	if err != nil {
		t.Fatalf("newRunner() error = %v", err)
	}
	defer closeRunner()
	if runner == nil {
		t.Fatal("newRunner() returned a nil runner")
	}
}

func TestNewRunnerBadKey(t *testing.T) {
	config := &Config{
		Remote: RemoteConfig{Addr: "db-node:22", User: "centos", KeyPath: "/nonexistent/id_rsa"},
	}
	if _, _, err := newRunner(config); err == nil {
		t.Error("newRunner() accepted an unreadable SSH key")
	}
}

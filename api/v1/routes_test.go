package v1

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kongove/scylla-artifact-tests/common/commonerr"
	"github.com/kongove/scylla-artifact-tests/database"
)

type memStore struct {
	runs map[int]database.Run
}

func newMemStore() *memStore {
	return &memStore{runs: make(map[int]database.Run)}
}

func (s *memStore) InsertDistro(d database.Distro) (int, error) { return 1, nil }

func (s *memStore) ListDistros() ([]database.Distro, error) {
	return []database.Distro{{Name: "centos", Version: "7", VersionFormat: "rpm"}}, nil
}

func (s *memStore) InsertRun(run database.Run) (int, error) {
	id := len(s.runs) + 1
	run.ID = id
	s.runs[id] = run
	return id, nil
}

func (s *memStore) FinishRun(id int, status string) error {
	run, ok := s.runs[id]
	if !ok {
		return commonerr.ErrNotFound
	}
	run.Status = status
	s.runs[id] = run
	return nil
}

func (s *memStore) InsertCheckResult(runID int, result database.CheckResult) error {
	run, ok := s.runs[runID]
	if !ok {
		return commonerr.ErrNotFound
	}
	run.Results = append(run.Results, result)
	s.runs[runID] = run
	return nil
}

func (s *memStore) FindRun(id int, withResults bool) (database.Run, error) {
	run, ok := s.runs[id]
	if !ok {
		return database.Run{}, commonerr.ErrNotFound
	}
	if !withResults {
		run.Results = nil
	}
	return run, nil
}

func (s *memStore) ListRuns() ([]database.Run, error) {
	var runs []database.Run
	for _, run := range s.runs {
		run.Results = nil
		runs = append(runs, run)
	}
	return runs, nil
}

func (s *memStore) DeleteRun(id int) error {
	if _, ok := s.runs[id]; !ok {
		return commonerr.ErrNotFound
	}
	delete(s.runs, id)
	return nil
}

func (s *memStore) InsertKeyValue(key, value string) error  { return nil }
func (s *memStore) GetKeyValue(key string) (string, error)  { return "", nil }
func (s *memStore) Ping() bool                              { return true }
func (s *memStore) Close()                                  {}

func newTestServer(t *testing.T, store database.Datastore) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(NewRouter(store))
	t.Cleanup(srv.Close)
	return srv
}

func TestGetRun(t *testing.T) {
	store := newMemStore()
	id, _ := store.InsertRun(database.Run{
		Artifact:  "http://downloads.example.com/rpm/centos/scylla.repo",
		Mode:      "release",
		Distro:    database.Distro{Name: "centos", Version: "7"},
		Status:    database.StatusPass,
		StartedAt: time.Now(),
	})
	store.InsertCheckResult(id, database.CheckResult{Name: "verify/raid", Status: database.StatusPass})

	srv := newTestServer(t, store)

	resp, err := http.Get(srv.URL + "/runs/1?results")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /runs/1 status = %d", resp.StatusCode)
	}

	var envelope RunEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatal(err)
	}
	if envelope.Run == nil {
		t.Fatal("response envelope has no run")
	}
	if envelope.Run.Distro == nil || envelope.Run.Distro.Name != "centos" {
		t.Errorf("run distro = %+v, want centos", envelope.Run.Distro)
	}
	if len(envelope.Run.Results) != 1 || envelope.Run.Results[0].Name != "verify/raid" {
		t.Errorf("run results = %+v", envelope.Run.Results)
	}
}

func TestGetRunNotFound(t *testing.T) {
	srv := newTestServer(t, newMemStore())

	resp, err := http.Get(srv.URL + "/runs/42")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("GET /runs/42 status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
}

func TestDeleteRun(t *testing.T) {
	store := newMemStore()
	store.InsertRun(database.Run{Artifact: "x", Status: database.StatusPass})

	srv := newTestServer(t, store)

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/runs/1", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("DELETE /runs/1 status = %d", resp.StatusCode)
	}

	if _, err := store.FindRun(1, false); err != commonerr.ErrNotFound {
		t.Errorf("run still present after delete: %v", err)
	}
}

func TestGetDistros(t *testing.T) {
	srv := newTestServer(t, newMemStore())

	resp, err := http.Get(srv.URL + "/distros")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var envelope DistrosEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatal(err)
	}
	if len(envelope.Distros) != 1 || envelope.Distros[0].VersionFormat != "rpm" {
		t.Errorf("distros = %+v", envelope.Distros)
	}
}

package housekeeping

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kongove/scylla-artifact-tests/process"
)

// fakeRunner emulates the filesystem of the host under test, which may not be
// the machine the harness runs on.
type fakeRunner struct {
	files    map[string]string
	commands []string
}

func (f *fakeRunner) Run(cmd string, opts process.Options) (*process.Result, error) {
	f.commands = append(f.commands, cmd)

	switch {
	case strings.HasPrefix(cmd, "test -f "):
		path := strings.TrimPrefix(cmd, "test -f ")
		if _, ok := f.files[path]; ok {
			return &process.Result{Command: cmd}, nil
		}
		result := &process.Result{Command: cmd, ExitStatus: 1}
		if opts.IgnoreStatus {
			return result, nil
		}
		return result, &process.CmdError{Result: result}
	case strings.HasPrefix(cmd, "cat "):
		path := strings.TrimPrefix(cmd, "cat ")
		return &process.Result{Command: cmd, Stdout: f.files[path]}, nil
	}
	return &process.Result{Command: cmd}, nil
}

func newTestReporter(t *testing.T, handler http.HandlerFunc) (*Reporter, *fakeRunner) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	runner := &fakeRunner{files: make(map[string]string)}

	return &Reporter{
		Runner:   runner,
		CheckURL: srv.URL + "/check_version",
		UUIDPath: "/var/lib/scylla-housekeeping/housekeeping.uuid",
		Client:   srv.Client(),
	}, runner
}

func TestTryReport(t *testing.T) {
	var gotQuery string
	r, runner := newTestReporter(t, func(w http.ResponseWriter, req *http.Request) {
		gotQuery = req.URL.RawQuery
	})
	runner.files[r.UUIDPath] = "deadbeef-uuid\n"

	if err := r.TryReport(); err != nil {
		t.Fatalf("TryReport: %v", err)
	}
	if gotQuery != "uu=deadbeef-uuid&mark=scylla" {
		t.Errorf("query = %q, want uu=deadbeef-uuid&mark=scylla", gotQuery)
	}

	// The uuid lives on the host under test, so it must be read through the
	// runner rather than from the local filesystem.
	read := false
	marked := false
	for _, cmd := range runner.commands {
		if cmd == "cat "+r.UUIDPath {
			read = true
		}
		if strings.HasPrefix(cmd, "sudo -u scylla touch ") {
			marked = true
		}
	}
	if !read {
		t.Error("uuid was never read through the runner")
	}
	if !marked {
		t.Error("mark file was never touched through the runner")
	}
}

func TestTryReportAlreadyMarked(t *testing.T) {
	requests := 0
	r, runner := newTestReporter(t, func(w http.ResponseWriter, req *http.Request) {
		requests++
	})
	runner.files[r.UUIDPath] = "deadbeef"
	runner.files[r.UUIDPath+".marked"] = ""

	if err := r.TryReport(); err != nil {
		t.Fatalf("TryReport: %v", err)
	}
	if requests != 0 {
		t.Errorf("check endpoint was hit %d times, want 0", requests)
	}
	for _, cmd := range runner.commands {
		if strings.HasPrefix(cmd, "sudo -u scylla touch ") {
			t.Errorf("mark file was touched again: %q", cmd)
		}
	}
}

func TestTryReportServerError(t *testing.T) {
	r, runner := newTestReporter(t, func(w http.ResponseWriter, req *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	})
	runner.files[r.UUIDPath] = "deadbeef"

	if err := r.TryReport(); err == nil {
		t.Fatal("TryReport returned nil error on server failure")
	}
}

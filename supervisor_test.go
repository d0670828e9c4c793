package queuectl_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	qc "github.com/p-v-srinag/queuectl"
)

func TestSupervisorStartStatusStop(t *testing.T) {
	pidFile := filepath.Join(t.TempDir(), "workers.pid")
	sup := &qc.Supervisor{
		PIDFile:      pidFile,
		WorkerBinary: "sleep",
		Args:         []string{"30"},
	}

	pids, err := sup.Start(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(pids) != 2 {
		t.Fatalf("expected 2 pids, got %d", len(pids))
	}

	data, err := os.ReadFile(pidFile)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 {
		t.Fatal("expected pid file to be populated")
	}

	statuses, err := sup.Status()
	if err != nil {
		t.Fatal(err)
	}
	if len(statuses) != 2 {
		t.Fatalf("expected 2 worker statuses, got %d", len(statuses))
	}
	for _, st := range statuses {
		if !st.Running {
			t.Fatalf("expected process %d to be running", st.PID)
		}
	}

	if err := sup.Stop(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(pidFile); !os.IsNotExist(err) {
		t.Fatal("expected pid file to be removed after Stop")
	}

	// Give the signaled processes a moment to exit so the test
	// doesn't leak them past its own lifetime.
	time.Sleep(100 * time.Millisecond)
}

func TestSupervisorStatusPrunesDeadPIDs(t *testing.T) {
	pidFile := filepath.Join(t.TempDir(), "workers.pid")
	// A PID that is exceedingly unlikely to be alive.
	if err := os.WriteFile(pidFile, []byte("999999\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	sup := &qc.Supervisor{PIDFile: pidFile}
	statuses, err := sup.Status()
	if err != nil {
		t.Fatal(err)
	}
	if len(statuses) != 1 || statuses[0].Running {
		t.Fatalf("expected one not-running status, got %+v", statuses)
	}

	data, err := os.ReadFile(pidFile)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 0 {
		t.Fatal("expected dead pid to be pruned from the pid file")
	}
}

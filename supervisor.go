package queuectl

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"syscall"

	"github.com/shirou/gopsutil/v4/process"
)

// WorkerStatus reports one supervised worker process's liveness, as
// observed through gopsutil, matching the fields the original
// implementation's get_worker_status collects via psutil.
type WorkerStatus struct {
	PID        int32   `json:"pid"`
	Running    bool    `json:"running"`
	State      string  `json:"state"`
	CPUPercent float64 `json:"cpu_percent"`
	MemoryMB   float64 `json:"memory_mb"`
}

// Supervisor starts, stops and inspects a pool of detached worker
// processes, tracking them via a PID file. It has no gqs equivalent:
// gqs is a library meant to be embedded in a single process, whereas
// this system's workers are spawned as independent OS processes, as
// in the original implementation's start_workers/stop_workers.
type Supervisor struct {
	// PIDFile is the path recording one worker PID per line.
	PIDFile string
	// WorkerBinary is the executable spawned for each worker,
	// normally the queue-worker companion binary.
	WorkerBinary string
	// Args are appended to each spawned worker's command line (for
	// example, the --db and --config flags).
	Args []string
}

// Start launches count detached worker processes and appends their
// PIDs to the PID file.
func (s *Supervisor) Start(count int) ([]int, error) {
	pids := make([]int, 0, count)
	for i := 0; i < count; i++ {
		cmd := exec.Command(s.WorkerBinary, s.Args...)
		cmd.Stdout = nil
		cmd.Stderr = nil
		cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
		if err := cmd.Start(); err != nil {
			return pids, fmt.Errorf("spawn worker %d/%d: %w", i+1, count, err)
		}
		pids = append(pids, cmd.Process.Pid)
		// The child is intentionally not Wait()-ed: Supervisor only
		// tracks PIDs across process lifetimes via the PID file, it
		// does not reap children of this CLI invocation.
		_ = cmd.Process.Release()
	}
	if err := s.appendPIDs(pids); err != nil {
		return pids, err
	}
	return pids, nil
}

func (s *Supervisor) appendPIDs(pids []int) error {
	existing, err := s.readPIDs()
	if err != nil {
		return err
	}
	existing = append(existing, pids...)
	return s.writePIDs(existing)
}

func (s *Supervisor) readPIDs() ([]int, error) {
	f, err := os.Open(s.PIDFile)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var pids []int
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		n, err := strconv.Atoi(line)
		if err != nil {
			continue
		}
		pids = append(pids, n)
	}
	return pids, scanner.Err()
}

func (s *Supervisor) writePIDs(pids []int) error {
	var b strings.Builder
	for _, pid := range pids {
		fmt.Fprintf(&b, "%d\n", pid)
	}
	return os.WriteFile(s.PIDFile, []byte(b.String()), 0o644)
}

// Stop sends SIGTERM to every PID recorded in the PID file and
// removes it, matching the original implementation's stop_workers.
// It does not wait for the processes to exit.
func (s *Supervisor) Stop() error {
	pids, err := s.readPIDs()
	if err != nil {
		return err
	}
	for _, pid := range pids {
		proc, err := os.FindProcess(pid)
		if err != nil {
			continue
		}
		_ = proc.Signal(syscall.SIGTERM)
	}
	if err := os.Remove(s.PIDFile); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Status reports the liveness of every PID in the PID file, rewriting
// the file to retain only PIDs still alive — matching the original
// implementation's self-pruning get_worker_status.
func (s *Supervisor) Status() ([]WorkerStatus, error) {
	pids, err := s.readPIDs()
	if err != nil {
		return nil, err
	}
	statuses := make([]WorkerStatus, 0, len(pids))
	active := make([]int, 0, len(pids))
	for _, pid := range pids {
		exists, err := process.PidExists(int32(pid))
		if err != nil || !exists {
			statuses = append(statuses, WorkerStatus{PID: int32(pid), Running: false, State: "not_found"})
			continue
		}
		proc, err := process.NewProcess(int32(pid))
		if err != nil {
			statuses = append(statuses, WorkerStatus{PID: int32(pid), Running: false, State: "stopped"})
			continue
		}
		state := "running"
		if states, err := proc.Status(); err == nil && len(states) > 0 {
			state = states[0]
		}
		cpu, _ := proc.CPUPercent()
		mem, _ := proc.MemoryInfo()
		var memMB float64
		if mem != nil {
			memMB = float64(mem.RSS) / (1024 * 1024)
		}
		statuses = append(statuses, WorkerStatus{
			PID:        int32(pid),
			Running:    true,
			State:      state,
			CPUPercent: cpu,
			MemoryMB:   memMB,
		})
		active = append(active, pid)
	}
	if err := s.writePIDs(active); err != nil {
		return statuses, err
	}
	return statuses, nil
}

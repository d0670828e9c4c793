// Command queuectl is the operator-facing CLI for the job queue: it
// enqueues jobs, starts and stops worker processes, and inspects
// queue state.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	qc "github.com/p-v-srinag/queuectl"
	"github.com/p-v-srinag/queuectl/job"
	qsql "github.com/p-v-srinag/queuectl/sql"
)

var dataDir string

func main() {
	if err := buildCLI().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildCLI() *cobra.Command {
	root := &cobra.Command{
		Use:   "queuectl",
		Short: "A CLI-based background job queue system.",
	}
	root.PersistentFlags().StringVar(&dataDir, "data-dir", ".queuectl_data", "directory holding the queue database, config and worker PID file")

	root.AddCommand(
		buildEnqueueCommand(),
		buildWorkerCommand(),
		buildStatusCommand(),
		buildListCommand(),
		buildDLQCommand(),
		buildConfigCommand(),
	)
	return root
}

func dbPath() string     { return filepath.Join(dataDir, "queue.db") }
func configPath() string { return filepath.Join(dataDir, "config.json") }
func pidPath() string    { return filepath.Join(dataDir, "workers.pid") }

func openStore(ctx context.Context) (*qsql.Store, func() error, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, nil, err
	}
	db, err := qsql.Open(dbPath())
	if err != nil {
		return nil, nil, err
	}
	if err := qsql.InitDB(ctx, db); err != nil {
		db.Close()
		return nil, nil, err
	}
	return qsql.NewStore(db, nil), db.Close, nil
}

func buildEnqueueCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "enqueue <job-json>",
		Short: "Add a new job to the queue.",
		Long:  `Accepts a JSON object with a required "command" field and an optional "id" field, e.g. {"id":"job1","command":"sleep 2"}.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var spec struct {
				ID      string `json:"id"`
				Command string `json:"command"`
			}
			if err := json.Unmarshal([]byte(args[0]), &spec); err != nil {
				return fmt.Errorf("invalid JSON string: %w", err)
			}
			if spec.Command == "" {
				return fmt.Errorf("'command' field is required in JSON")
			}

			ctx := cmd.Context()
			store, closeDB, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer closeDB()

			cfg, err := qc.LoadConfig(configPath())
			if err != nil {
				return err
			}

			jb := &job.Job{ID: spec.ID, Command: spec.Command, MaxRetries: cfg.MaxRetries}
			if err := store.AddJob(ctx, jb); err != nil {
				return fmt.Errorf("failed to enqueue job %s: %w", jb.ID, err)
			}
			fmt.Printf("Successfully enqueued job %s\n", jb.ID)
			return nil
		},
	}
}

func buildWorkerCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Manage worker processes.",
	}
	cmd.AddCommand(buildWorkerStartCommand(), buildWorkerStopCommand())
	return cmd
}

func buildWorkerStartCommand() *cobra.Command {
	var count int
	var metricsAddr string
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Starts one or more worker processes in the background.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 1 {
				return fmt.Errorf("count must be at least 1")
			}
			if err := os.MkdirAll(dataDir, 0o755); err != nil {
				return err
			}
			self, err := os.Executable()
			if err != nil {
				return err
			}
			workerBin := filepath.Join(filepath.Dir(self), "queue-worker")
			if _, err := os.Stat(workerBin); err != nil {
				workerBin = "queue-worker"
			}

			var pids []int
			basePort, hasMetrics := parsePort(metricsAddr)
			for i := 0; i < count; i++ {
				workerArgs := []string{"--db", dbPath(), "--config", configPath()}
				if hasMetrics {
					workerArgs = append(workerArgs, "--metrics-addr", fmt.Sprintf(":%d", basePort+i))
				}
				sup := &qc.Supervisor{PIDFile: pidPath(), WorkerBinary: workerBin, Args: workerArgs}
				started, err := sup.Start(1)
				if err != nil {
					return err
				}
				pids = append(pids, started...)
			}
			fmt.Printf("Workers started with PIDs: %v\n", pids)
			return nil
		},
	}
	cmd.Flags().IntVarP(&count, "count", "c", 1, "Number of worker processes to start.")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "if set, each worker serves Prometheus metrics on all interfaces starting at this address's port, incrementing the port per worker")
	return cmd
}

func parsePort(addr string) (port int, ok bool) {
	if addr == "" {
		return 0, false
	}
	idx := strings.LastIndexByte(addr, ':')
	if idx < 0 {
		return 0, false
	}
	p, err := strconv.Atoi(addr[idx+1:])
	if err != nil {
		return 0, false
	}
	return p, true
}

func buildWorkerStopCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stops all running worker processes gracefully.",
		RunE: func(cmd *cobra.Command, args []string) error {
			sup := &qc.Supervisor{PIDFile: pidPath()}
			if err := sup.Stop(); err != nil {
				return err
			}
			fmt.Println("Stop signal sent. Workers will shut down gracefully.")
			return nil
		},
	}
}

func buildStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show summary of all job states & active workers.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, closeDB, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer closeDB()

			stats, err := store.Stats(ctx)
			if err != nil {
				return err
			}
			fmt.Println("--- Job Status Summary ---")
			for _, s := range []job.State{job.Pending, job.Processing, job.Completed, job.Failed, job.Dead} {
				fmt.Printf("- %s:\t%d\n", s.String(), stats[s.String()])
			}

			fmt.Println("\n--- Active Worker Status ---")
			sup := &qc.Supervisor{PIDFile: pidPath()}
			workers, err := sup.Status()
			if err != nil {
				return err
			}
			if len(workers) == 0 {
				fmt.Println("No active workers found.")
				return nil
			}
			for _, w := range workers {
				fmt.Printf("- PID: %d\tStatus: %s\tCPU: %.2f%%\n", w.PID, w.State, w.CPUPercent)
			}
			return nil
		},
	}
}

func buildListCommand() *cobra.Command {
	var state string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List jobs by state.",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := job.ParseState(state)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			store, closeDB, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer closeDB()

			jobs, err := store.ListByState(ctx, st)
			if err != nil {
				return err
			}
			if len(jobs) == 0 {
				fmt.Printf("No jobs found in state: %s\n", st.String())
				return nil
			}
			fmt.Printf("--- Jobs in '%s' state ---\n", st.String())
			for _, jb := range jobs {
				data, _ := json.MarshalIndent(jb, "", "  ")
				fmt.Println(string(data))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&state, "state", "s", "PENDING", "The job state to list.")
	return cmd
}

func buildDLQCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dlq",
		Short: "Manage the Dead Letter Queue (DLQ).",
	}
	cmd.AddCommand(buildDLQListCommand(), buildDLQRetryCommand())
	return cmd
}

func buildDLQListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Lists all jobs in the Dead Letter Queue.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, closeDB, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer closeDB()

			jobs, err := store.ListByState(ctx, job.Dead)
			if err != nil {
				return err
			}
			if len(jobs) == 0 {
				fmt.Println("Dead Letter Queue is empty.")
				return nil
			}
			fmt.Println("--- Jobs in Dead Letter Queue ---")
			for _, jb := range jobs {
				data, _ := json.MarshalIndent(jb, "", "  ")
				fmt.Println(string(data))
			}
			return nil
		},
	}
}

func buildDLQRetryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "retry <job-id>",
		Short: "Moves a specific job from the DLQ back to the pending queue.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, closeDB, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer closeDB()

			id := args[0]
			if _, err := store.RetryFromDLQ(ctx, id); err != nil {
				return fmt.Errorf("failed to retry job %s: %w", id, err)
			}
			fmt.Printf("Job %s has been re-queued as 'pending'.\n", id)
			return nil
		},
	}
}

func buildConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration.",
	}
	cmd.AddCommand(buildConfigShowCommand(), buildConfigSetCommand())
	return cmd
}

func buildConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Shows the current configuration.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := os.MkdirAll(dataDir, 0o755); err != nil {
				return err
			}
			cfg, err := qc.LoadConfig(configPath())
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(cfg, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		},
	}
}

func buildConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Sets a configuration value.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := os.MkdirAll(dataDir, 0o755); err != nil {
				return err
			}
			key, value := args[0], args[1]
			if err := qc.SetConfigValue(configPath(), key, value); err != nil {
				return err
			}
			fmt.Printf("Config updated: %s = %s\n", key, value)
			return nil
		},
	}
}

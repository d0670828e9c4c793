// Command queue-worker is the detached worker process spawned by
// queuectl's Supervisor. Each instance owns its own database
// connection and runs a single claim/execute/classify loop until it
// receives SIGINT or SIGTERM.
package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	qc "github.com/p-v-srinag/queuectl"
	"github.com/p-v-srinag/queuectl/internal/metrics"
	qsql "github.com/p-v-srinag/queuectl/sql"
)

func main() {
	dbFlag := flag.String("db", ".queuectl_data/queue.db", "path to the queue database")
	configFlag := flag.String("config", ".queuectl_data/config.json", "path to the config file")
	metricsAddr := flag.String("metrics-addr", "", "if set, serve Prometheus metrics on this address")
	flag.Parse()

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	log = log.With("pid", os.Getpid())

	db, err := qsql.Open(*dbFlag)
	if err != nil {
		log.Error("cannot open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := qsql.InitDB(ctx, db); err != nil {
		log.Error("cannot initialize schema", "err", err)
		os.Exit(1)
	}

	store := qsql.NewStore(db, log)
	m := metrics.New()
	if *metricsAddr != "" {
		go serveMetrics(*metricsAddr, m, log)
	}

	configFn := func() qc.Config {
		cfg, err := qc.LoadConfig(*configFlag)
		if err != nil {
			log.Error("cannot read config, using defaults", "err", err)
			return qc.DefaultConfig()
		}
		return cfg
	}

	worker := qc.NewWorker(store, qc.NewShellExecutor(log), configFn, &qc.WorkerConfig{PollInterval: time.Second}, log, m)
	reaper := qc.NewReaper(store, &qc.ReaperConfig{Interval: 30 * time.Second, Stale: 5 * time.Minute}, log)

	log.Info("started and waiting for jobs")
	if err := worker.Start(ctx); err != nil {
		log.Error("cannot start worker", "err", err)
		os.Exit(1)
	}
	if err := reaper.Start(ctx); err != nil {
		log.Error("cannot start reaper", "err", err)
		os.Exit(1)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	s := <-sig
	log.Info("signal received, shutting down gracefully", "signal", s.String())
	cancel()

	if err := worker.Stop(10 * time.Second); err != nil {
		log.Error("worker did not stop cleanly", "err", err)
	}
	if err := reaper.Stop(5 * time.Second); err != nil {
		log.Error("reaper did not stop cleanly", "err", err)
	}
	log.Info("shutdown complete")
}

func serveMetrics(addr string, m *metrics.Metrics, log *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error("metrics server stopped", "err", err)
	}
}

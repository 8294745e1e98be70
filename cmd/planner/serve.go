package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/fentz26/planner/internal/logging"
	"github.com/fentz26/planner/internal/server"
	"github.com/fentz26/planner/internal/store"
)

var (
	serveConfig string
	listenAddr  string
	dbPath      string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Planner server",
	Long: `Starts the HTTP API that stores users, tasks and comments.

Settings come from the environment (PLANNER_LISTEN, DATABASE_URL, PLANNER_DB,
PLANNER_SECRET, PLANNER_ADMIN_PASSWORD, PLANNER_SESSION_TTL, LOG_LEVEL) or
from the YAML file given with --server-config. A DATABASE_URL starting with
postgres selects PostgreSQL, anything else uses SQLite.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveConfig, "server-config", "", "Server config file (YAML)")
	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "Listen address, overrides PLANNER_LISTEN")
	serveCmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path, overrides PLANNER_DB")
}

func runServe(cmd *cobra.Command, args []string) error {
	scfg, err := server.LoadConfig(serveConfig)
	if err != nil {
		return err
	}
	if listenAddr != "" {
		scfg.Listen = listenAddr
	}
	if dbPath != "" {
		scfg.DBPath = dbPath
	}

	srvLog, err := logging.NewJSON(scfg.LogLevel, os.Stderr)
	if err != nil {
		return err
	}

	openCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	st, err := store.Open(openCtx, scfg.DatabaseURL, scfg.DBPath, store.WithLogger(srvLog))
	cancel()
	if err != nil {
		return err
	}
	srvLog.WithField("driver", st.Driver()).Info("database ready")

	srv, err := server.New(st, scfg, srvLog)
	if err != nil {
		st.Close()
		return err
	}

	// Set up signal handling for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !server.IsClosed(err) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case sig := <-sigCh:
		srvLog.WithField("signal", sig.String()).Info("initiating graceful shutdown")
	case err := <-serverErr:
		if err != nil {
			srvLog.WithError(err).Error("server error")
			st.Close()
			return err
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		srvLog.WithError(err).Warn("http server shutdown error")
	}
	if err := st.Close(); err != nil {
		srvLog.WithError(err).Warn("database close error")
	}
	srvLog.Info("shutdown complete")
	return nil
}

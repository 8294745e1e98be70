package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"time"

	"github.com/spf13/cobra"

	"github.com/fentz26/planner/internal/api"
	"github.com/fentz26/planner/internal/auth"
	"github.com/fentz26/planner/internal/board"
	"github.com/fentz26/planner/internal/logging"
	"github.com/fentz26/planner/internal/tui"
)

var noAutostart bool

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive board",
	RunE:  runTUI,
}

func init() {
	tuiCmd.Flags().BoolVar(&noAutostart, "no-autostart", false, "Do not start a local server when none is running")
}

func runTUI(cmd *cobra.Command, args []string) error {
	logPath, err := cfg.LogPath()
	if err != nil {
		return err
	}
	fileLog, closer, err := logging.NewFile(cfg.LogLevel, logPath)
	if err != nil {
		return err
	}
	defer closer.Close()

	client, err := api.NewClient(cfg.APIAddr, api.WithTimeout(cfg.Timeout), api.WithLogger(fileLog))
	if err != nil {
		return err
	}

	if !serverRunning(client) {
		if noAutostart || !isLocal(client.BaseURL()) {
			return fmt.Errorf("no planner server at %s", client.BaseURL())
		}
		fmt.Println("⚡ Planner server not running. Starting background service...")
		if err := startServer(client); err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
	}

	creds, err := auth.NewManager("")
	if err != nil {
		return err
	}
	client.SetSessionToken(creds.TokenFor(client.BaseURL()))
	client.SetUnlockToken(creds.UnlockFor(client.BaseURL()))
	s := &session{client: client, creds: creds, ctl: board.New(client, fileLog)}

	app := tui.New(s.ctl, tui.Options{
		Theme:   cfg.Theme,
		Timeout: 3 * cfg.Timeout,
		Logger:  fileLog,
	})
	if err := app.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	// Keep the CLI in step with whoever is signed in on the board.
	if s.ctl.Viewer().Authenticated || s.client.UnlockToken() != "" {
		return s.save()
	}
	return creds.Logout()
}

func serverRunning(client *api.Client) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	ok, err := client.CheckHealth(ctx)
	return err == nil && ok
}

func isLocal(addr string) bool {
	u, err := url.Parse(addr)
	if err != nil {
		return false
	}
	switch u.Hostname() {
	case "127.0.0.1", "localhost", "::1":
		return true
	}
	return false
}

func startServer(client *api.Client) error {
	exe, err := os.Executable()
	if err != nil {
		return err
	}
	u, err := url.Parse(client.BaseURL())
	if err != nil {
		return err
	}

	cmd := exec.Command(exe, "serve", "--listen", u.Host)
	// Detach so the server outlives the board.
	configureServerProc(cmd)
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil

	if err := cmd.Start(); err != nil {
		return err
	}

	fmt.Print("   Waiting for server...")
	for i := 0; i < 20; i++ { // Wait up to 5 seconds
		if serverRunning(client) {
			fmt.Println(" Done.")
			return nil
		}
		time.Sleep(250 * time.Millisecond)
		fmt.Print(".")
	}
	fmt.Println(" Timeout!")
	return fmt.Errorf("server started but API not reachable at %s", client.BaseURL())
}

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/fentz26/planner/internal/api"
	"github.com/fentz26/planner/internal/auth"
	"github.com/fentz26/planner/internal/board"
)

var (
	errNotSignedIn = errors.New("not signed in, run `planner login` first")
	errLocked      = errors.New("the server is locked, run `planner unlock` first")
)

// session bundles the API client, the saved credentials and a controller
// for one CLI invocation.
type session struct {
	client *api.Client
	creds  *auth.Manager
	ctl    *board.Controller
}

func openSession() (*session, error) {
	client, err := api.NewClient(cfg.APIAddr, api.WithTimeout(cfg.Timeout), api.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	creds, err := auth.NewManager("")
	if err != nil {
		return nil, err
	}
	client.SetSessionToken(creds.TokenFor(client.BaseURL()))
	client.SetUnlockToken(creds.UnlockFor(client.BaseURL()))
	return &session{
		client: client,
		creds:  creds,
		ctl:    board.New(client, logger),
	}, nil
}

// start probes the saved session and loads the board.
func (s *session) start(ctx context.Context) error {
	if !s.ctl.Start(ctx).Authenticated {
		return s.signedOutError()
	}
	if err := s.ctl.Board.Snapshot().LoadErr; err != nil {
		return fmt.Errorf("loading tasks: %s", board.Message(err, "request failed"))
	}
	return nil
}

// signedOutError explains why the last probe found no session.
func (s *session) signedOutError() error {
	if s.ctl.Session.Locked() {
		return errLocked
	}
	return errNotSignedIn
}

// save persists the session cookie and app lock pass the client currently holds.
func (s *session) save() error {
	viewer := s.ctl.Viewer()
	return s.creds.Save(auth.Session{
		Token:       s.client.SessionToken(),
		UserID:      viewer.UserID,
		User:        viewer.DisplayName,
		APIAddr:     s.client.BaseURL(),
		UnlockToken: s.client.UnlockToken(),
	})
}

func commandContext() (context.Context, context.CancelFunc) {
	// One command may chain an action and a reload.
	return context.WithTimeout(context.Background(), 3*cfg.Timeout)
}

// userError renders err the way the board shows it.
func userError(err error, fallback string) error {
	if err == nil {
		return nil
	}
	logger.WithError(err).Debug(fallback)
	return errors.New(board.Message(err, fallback))
}

var stdin = bufio.NewReader(os.Stdin)

func prompt(label string) (string, error) {
	fmt.Fprint(os.Stderr, label)
	line, err := stdin.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// readSecret prompts without echo when stdin is a terminal.
func readSecret(label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return prompt(label)
	}
	fmt.Fprint(os.Stderr, label)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func confirm(question string) bool {
	answer, err := prompt(question + " [y/N]: ")
	if err != nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}

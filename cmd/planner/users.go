package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/fentz26/planner/internal/board"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List and remove users",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every user",
	RunE:  runUsersList,
}

var usersDeleteCmd = &cobra.Command{
	Use:   "delete [user-id]",
	Short: "Remove a user (asks for the admin password)",
	Args:  cobra.ExactArgs(1),
	RunE:  runUsersDelete,
}

func init() {
	usersCmd.AddCommand(usersListCmd, usersDeleteCmd)
}

func runUsersList(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext()
	defer cancel()
	viewer := s.ctl.Session.Probe(ctx)
	if !viewer.Authenticated {
		return s.signedOutError()
	}

	if _, err := s.ctl.Admin.ListUsers(ctx); err != nil {
		return userError(err, board.MsgUsersFailed)
	}
	for _, e := range s.ctl.Admin.Entries(viewer) {
		fmt.Printf("%4d  %s\n", e.ID, e.Label)
	}
	return nil
}

func runUsersDelete(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("invalid user id %q", args[0])
	}
	s, err := openSession()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext()
	defer cancel()
	if !s.ctl.Session.Probe(ctx).Authenticated {
		return s.signedOutError()
	}

	pw, err := readSecret("Admin password: ")
	if err != nil {
		return err
	}
	s.ctl.Admin.RequestDelete(id)
	if err := s.ctl.Admin.ConfirmDelete(ctx, s.ctl.Admin.Pending(), pw); err != nil {
		return userError(err, board.MsgRemoveFailed)
	}
	fmt.Printf("Removed user %d\n", id)
	return nil
}

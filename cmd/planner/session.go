package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fentz26/planner/internal/api"
	"github.com/fentz26/planner/internal/board"
)

var loginCmd = &cobra.Command{
	Use:   "login [full name]",
	Short: "Sign in and remember the session",
	RunE:  runLogin,
}

var signupCmd = &cobra.Command{
	Use:   "signup [full name]",
	Short: "Create an account",
	RunE:  runSignup,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the session",
	RunE:  runLogout,
}

var unlockCmd = &cobra.Command{
	Use:   "unlock",
	Short: "Enter the app password of a locked server",
	Args:  cobra.NoArgs,
	RunE:  runUnlock,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	RunE:  runWhoami,
}

func fullNameArg(args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	return prompt("Full name: ")
}

func runLogin(cmd *cobra.Command, args []string) error {
	name, err := fullNameArg(args)
	if err != nil {
		return err
	}
	pw, err := readSecret("Password: ")
	if err != nil {
		return err
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext()
	defer cancel()

	sess, err := s.ctl.Session.SignIn(ctx, name, pw)
	if api.IsLocked(err) {
		return errLocked
	}
	if err != nil {
		return userError(err, board.MsgSignInFailed)
	}
	if err := s.save(); err != nil {
		return err
	}
	fmt.Printf("Signed in as %s\n", sess.DisplayName)
	return nil
}

func runSignup(cmd *cobra.Command, args []string) error {
	name, err := fullNameArg(args)
	if err != nil {
		return err
	}
	pw, err := readSecret("Password: ")
	if err != nil {
		return err
	}
	again, err := readSecret("Confirm password: ")
	if err != nil {
		return err
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext()
	defer cancel()

	if err := s.ctl.Session.SignUp(ctx, name, pw, again); err != nil {
		return userError(err, board.MsgSignUpFailed)
	}
	fmt.Println(board.MsgSignedUp)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext()
	defer cancel()

	s.ctl.SignOut(ctx)
	if err := s.creds.Logout(); err != nil {
		return err
	}
	fmt.Println("Signed out")
	return nil
}

func runUnlock(cmd *cobra.Command, args []string) error {
	pw, err := readSecret("App password: ")
	if err != nil {
		return err
	}
	s, err := openSession()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext()
	defer cancel()

	if err := s.ctl.Session.Unlock(ctx, pw); err != nil {
		return userError(err, board.MsgUnlockFailed)
	}
	if err := s.save(); err != nil {
		return err
	}
	fmt.Println("App unlocked")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext()
	defer cancel()

	sess := s.ctl.Session.Probe(ctx)
	if !sess.Authenticated {
		return s.signedOutError()
	}
	fmt.Printf("%s (id %d) at %s\n", sess.DisplayName, sess.UserID, s.client.BaseURL())
	return nil
}

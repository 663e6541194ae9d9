package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/aventuscto/doc-console/internal/apiclient"
)

func (a *App) loginCommand() *Command {
	var username string

	return &Command{
		Name:    "login",
		Summary: "Log in and save the session",
		Usage:   "docctl login [--username NAME]",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("login", pflag.ContinueOnError)
			fs.StringVarP(&username, "username", "u", "", "user name (prompted when empty)")
			return fs
		},
		Run: func(ctx context.Context, args []string) error {
			if err := noArgs(args); err != nil {
				return err
			}

			if username == "" {
				fmt.Fprint(a.errOut, "Username: ")
				line, err := a.readLine()
				if err != nil {
					return err
				}
				username = line
			}
			username = strings.TrimSpace(username)

			password, err := a.readSecret("Password: ")
			if err != nil {
				return err
			}
			if username == "" || password == "" {
				return fmt.Errorf("%w: username and password are required", ErrUsage)
			}

			cred, err := a.users.Login(ctx, username, password)
			if err != nil {
				return modelError(apiclient.UserMessage(err, "Login failed"), err)
			}
			if err := a.store.Login(cred); err != nil {
				return err
			}

			fmt.Fprintf(a.out, "Logged in as %s\n", cred.DisplayName)
			return nil
		},
	}
}

func (a *App) logoutCommand() *Command {
	return &Command{
		Name:    "logout",
		Summary: "Remove the saved session",
		Run: func(_ context.Context, args []string) error {
			if err := noArgs(args); err != nil {
				return err
			}
			if err := a.store.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Logged out")
			return nil
		},
	}
}

func (a *App) whoamiCommand() *Command {
	return &Command{
		Name:    "whoami",
		Summary: "Show the current session",
		Run: func(_ context.Context, args []string) error {
			if err := noArgs(args); err != nil {
				return err
			}
			cred, ok := a.store.Credential()
			if !ok {
				return ErrNotLoggedIn
			}

			fmt.Fprintf(a.out, "User:    %s\n", cred.DisplayName)
			if cred.ExpiresAt.IsZero() {
				fmt.Fprintln(a.out, "Expires: unknown")
			} else {
				fmt.Fprintf(a.out, "Expires: %s\n", cred.ExpiresAt.UTC().Format(time.DateTime))
			}
			return nil
		},
	}
}

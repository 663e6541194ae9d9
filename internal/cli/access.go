package cli

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/aventuscto/doc-console/internal/entity"
)

func (a *App) usersCommand() *Command {
	return &Command{
		Name:    "users",
		Summary: "Manage users",
		Subcommands: []*Command{
			{
				Name:    "list",
				Summary: "List users",
				Run: a.requireSession(func(ctx context.Context, args []string) error {
					if err := noArgs(args); err != nil {
						return err
					}
					users := entity.NewUsers(a.users, a.logger)
					if err := users.Refresh(ctx); err != nil {
						return err
					}
					return writeUsers(a.out, users.State().Items)
				}),
			},
			a.usersCreateCommand(),
		},
	}
}

func (a *App) usersCreateCommand() *Command {
	var (
		username string
		groupID  int
	)

	return &Command{
		Name:    "create",
		Summary: "Create a user (password is prompted)",
		Usage:   "docctl users create --username NAME [--group ID]",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("create", pflag.ContinueOnError)
			fs.StringVarP(&username, "username", "u", "", "user name")
			fs.IntVar(&groupID, "group", 0, "group id (0 — no group)")
			return fs
		},
		Run: a.requireSession(func(ctx context.Context, args []string) error {
			if err := noArgs(args); err != nil {
				return err
			}
			password, err := a.readSecret("Password for new user: ")
			if err != nil {
				return err
			}

			form := entity.UserForm{Username: username, Password: password}
			if groupID > 0 {
				form.GroupID = &groupID
			}

			users := entity.NewUsers(a.users, a.logger)
			users.SetForm(form)
			if err := users.Create(ctx); err != nil {
				return modelError(users.Message(), err)
			}
			fmt.Fprintf(a.out, "User %s created\n", username)
			return nil
		}),
	}
}

func (a *App) groupsCommand() *Command {
	return &Command{
		Name:    "groups",
		Summary: "Manage groups",
		Subcommands: []*Command{
			{
				Name:    "list",
				Summary: "List groups with their roles",
				Run: a.requireSession(func(ctx context.Context, args []string) error {
					if err := noArgs(args); err != nil {
						return err
					}
					groups := entity.NewGroups(a.users, a.logger)
					if err := groups.Refresh(ctx); err != nil {
						return err
					}
					return writeGroups(a.out, groups.State().Items)
				}),
			},
			a.groupsCreateCommand(),
		},
	}
}

func (a *App) groupsCreateCommand() *Command {
	var (
		name    string
		roleIDs []int
	)

	return &Command{
		Name:    "create",
		Summary: "Create a group with roles",
		Usage:   "docctl groups create --name NAME [--role ID ...]",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("create", pflag.ContinueOnError)
			fs.StringVar(&name, "name", "", "group name")
			fs.IntSliceVar(&roleIDs, "role", nil, "role id (repeatable or comma-separated)")
			return fs
		},
		Run: a.requireSession(func(ctx context.Context, args []string) error {
			if err := noArgs(args); err != nil {
				return err
			}
			groups := entity.NewGroups(a.users, a.logger)
			groups.SetForm(entity.GroupForm{Name: name})
			for _, id := range uniqueIDs(roleIDs) {
				groups.ToggleRole(id)
			}
			if err := groups.Create(ctx); err != nil {
				return modelError(groups.Message(), err)
			}
			fmt.Fprintf(a.out, "Group %s created\n", name)
			return nil
		}),
	}
}

func (a *App) rolesCommand() *Command {
	return &Command{
		Name:    "roles",
		Summary: "Manage roles",
		Subcommands: []*Command{
			{
				Name:    "list",
				Summary: "List roles with their permissions",
				Run: a.requireSession(func(ctx context.Context, args []string) error {
					if err := noArgs(args); err != nil {
						return err
					}
					roles := entity.NewRoles(a.users, a.logger)
					if err := roles.Refresh(ctx); err != nil {
						return err
					}
					return writeRoles(a.out, roles.State().Items)
				}),
			},
			a.rolesCreateCommand(),
		},
	}
}

func (a *App) rolesCreateCommand() *Command {
	var (
		name          string
		permissionIDs []int
	)

	return &Command{
		Name:    "create",
		Summary: "Create a role with permissions",
		Usage:   "docctl roles create --name NAME [--permission ID ...]",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("create", pflag.ContinueOnError)
			fs.StringVar(&name, "name", "", "role name")
			fs.IntSliceVar(&permissionIDs, "permission", nil, "permission id (repeatable or comma-separated)")
			return fs
		},
		Run: a.requireSession(func(ctx context.Context, args []string) error {
			if err := noArgs(args); err != nil {
				return err
			}
			roles := entity.NewRoles(a.users, a.logger)
			roles.SetForm(entity.RoleForm{Name: name})
			for _, id := range uniqueIDs(permissionIDs) {
				roles.TogglePermission(id)
			}
			if err := roles.Create(ctx); err != nil {
				return modelError(roles.Message(), err)
			}
			fmt.Fprintf(a.out, "Role %s created\n", name)
			return nil
		}),
	}
}

func (a *App) permissionsCommand() *Command {
	return &Command{
		Name:    "permissions",
		Summary: "List permissions",
		Run: a.requireSession(func(ctx context.Context, args []string) error {
			if err := noArgs(args); err != nil {
				return err
			}
			perms, err := a.users.ListPermissions(ctx)
			if err != nil {
				return err
			}
			return writePermissions(a.out, perms)
		}),
	}
}

// uniqueIDs убирает повторы: повторный Toggle снял бы выбор.
func uniqueIDs(ids []int) []int {
	seen := make(map[int]struct{}, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

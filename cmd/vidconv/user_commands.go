package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vidconv/vidconv/internal/api"
	"github.com/vidconv/vidconv/pkg/models"
)

func newUsersCommand(ctx *commandContext) *cobra.Command {
	usersCmd := &cobra.Command{
		Use:   "users",
		Short: "Manage accounts (admin only)",
	}

	usersCmd.AddCommand(newUsersListCommand(ctx))
	usersCmd.AddCommand(newUsersGetCommand(ctx))
	usersCmd.AddCommand(newUsersCreateCommand(ctx))
	usersCmd.AddCommand(newUsersUpdateCommand(ctx))
	usersCmd.AddCommand(newUsersDeleteCommand(ctx))
	usersCmd.AddCommand(newUsersVideosCommand(ctx))

	return usersCmd
}

func parseUserID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid user ID %q", arg)
	}
	return id, nil
}

func userRows(users []models.User) [][]string {
	rows := make([][]string, 0, len(users))
	for _, u := range users {
		rows = append(rows, []string{
			strconv.FormatInt(u.ID, 10),
			u.Username,
			string(u.Role),
			yesNo(u.Active),
			u.CreatedAt.Format("2006-01-02 15:04"),
		})
	}
	return rows
}

func newUsersListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *api.Client) error {
				users, err := client.ListUsers(cmd.Context())
				if err != nil {
					return err
				}
				store, err := ctx.sessionStore()
				if err != nil {
					return err
				}
				out := renderTable(tableStyle(store),
					[]string{"ID", "Username", "Role", "Active", "Created"},
					userRows(users),
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft})
				fmt.Fprintln(cmd.OutOrStdout(), out)
				return nil
			})
		},
	}
}

func newUsersGetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			return ctx.withClient(func(client *api.Client) error {
				user, err := client.GetUser(cmd.Context(), id)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "ID:       %d\n", user.ID)
				fmt.Fprintf(cmd.OutOrStdout(), "Username: %s\n", user.Username)
				fmt.Fprintf(cmd.OutOrStdout(), "Role:     %s\n", user.Role)
				fmt.Fprintf(cmd.OutOrStdout(), "Active:   %s\n", yesNo(user.Active))
				return nil
			})
		},
	}
}

func newUsersCreateCommand(ctx *commandContext) *cobra.Command {
	var role string
	var inactive bool

	cmd := &cobra.Command{
		Use:   "create <username> <password>",
		Short: "Create an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *api.Client) error {
				msg, err := client.CreateUser(cmd.Context(), api.CreateUserInput{
					Username: args[0],
					Password: args[1],
					Role:     models.UserRole(role),
					Active:   !inactive,
				})
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), msg)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&role, "role", "guest", "Account role (admin or guest)")
	cmd.Flags().BoolVar(&inactive, "inactive", false, "Create the account disabled")
	return cmd
}

func newUsersUpdateCommand(ctx *commandContext) *cobra.Command {
	var username, password, role string
	var active bool

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			return ctx.withClient(func(client *api.Client) error {
				user, err := client.GetUser(cmd.Context(), id)
				if err != nil {
					return err
				}

				if cmd.Flags().Changed("username") {
					user.Username = username
				}
				if cmd.Flags().Changed("password") {
					user.Password = password
				}
				if cmd.Flags().Changed("role") {
					user.Role = models.UserRole(role)
				}
				if cmd.Flags().Changed("active") {
					user.Active = active
				}

				msg, err := client.UpdateUser(cmd.Context(), user)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), msg)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "New username")
	cmd.Flags().StringVar(&password, "password", "", "New password")
	cmd.Flags().StringVar(&role, "role", "", "New role (admin or guest)")
	cmd.Flags().BoolVar(&active, "active", true, "Whether the account is enabled")
	return cmd
}

func newUsersDeleteCommand(ctx *commandContext) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			return ctx.withClient(func(client *api.Client) error {
				if err := client.DeleteUser(cmd.Context(), id, force); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted user %d\n", id)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Also delete the user's videos")
	return cmd
}

func newUsersVideosCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "videos <id>",
		Short: "List one user's videos",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			return ctx.withClient(func(client *api.Client) error {
				videos, err := client.UserVideos(cmd.Context(), id)
				if err != nil {
					return err
				}
				return printVideoTable(ctx, cmd, videos)
			})
		},
	}
}

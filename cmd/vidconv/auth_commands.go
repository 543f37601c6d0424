package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vidconv/vidconv/internal/api"
	"github.com/vidconv/vidconv/internal/session"
)

func newLoginCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "login <username> <password>",
		Short: "Authenticate and persist the session token",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *api.Client) error {
				if _, err := client.Login(cmd.Context(), args[0], args[1]); err != nil {
					return err
				}

				// Cache the profile so whoami --offline works.
				store, err := ctx.sessionStore()
				if err != nil {
					return err
				}
				me, err := client.Me(cmd.Context())
				if err == nil {
					if err := session.SetUser(store, &me.User); err != nil {
						return err
					}
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", args[0])
				return nil
			})
		},
	}
}

func newLogoutCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Discard the session token and cached profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *api.Client) error {
				if err := client.Logout(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
				return nil
			})
		},
	}
}

func newWhoamiCommand(ctx *commandContext) *cobra.Command {
	var offline bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the authenticated account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.sessionStore()
			if err != nil {
				return err
			}

			if offline {
				client, err := ctx.client()
				if err != nil {
					return err
				}
				claims, err := client.TokenClaims()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", claims.Username, claims.Role)
				if u := session.User(store); u != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "Active: %s\n", yesNo(u.Active))
				}
				return nil
			}

			return ctx.withClient(func(client *api.Client) error {
				me, err := client.Me(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", me.User.Username, me.User.Role)
				fmt.Fprintf(cmd.OutOrStdout(), "Videos: %d\n", len(me.Videos))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&offline, "offline", false, "Read the cached session instead of calling the server")
	return cmd
}

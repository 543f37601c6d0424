package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vidconv/vidconv/internal/api"
	"github.com/vidconv/vidconv/internal/session"
)

func newHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Probe the conversion service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *api.Client) error {
				status := client.Health(cmd.Context())
				if status.Active {
					fmt.Fprintln(cmd.OutOrStdout(), "Service is up")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Service is unreachable: %s\n", status.Error)
				return nil
			})
		},
	}
}

func newThemeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:       "theme [dark|light]",
		Short:     "Show or set the table theme",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"dark", "light"},
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.sessionStore()
			if err != nil {
				return err
			}
			if len(args) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), session.Theme(store))
				return nil
			}
			if args[0] != "dark" && args[0] != "light" {
				return fmt.Errorf("theme must be dark or light")
			}
			if err := session.SetTheme(store, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Theme set to %s\n", args[0])
			return nil
		},
	}
}

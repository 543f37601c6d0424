package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vidconv/vidconv/internal/api"
)

func newCookiesCommand(ctx *commandContext) *cobra.Command {
	cookiesCmd := &cobra.Command{
		Use:   "cookies",
		Short: "Manage the server-side cookies file",
	}

	cookiesCmd.AddCommand(newCookiesStatusCommand(ctx))
	cookiesCmd.AddCommand(newCookiesUploadCommand(ctx))
	cookiesCmd.AddCommand(newCookiesDeleteCommand(ctx))

	return cookiesCmd
}

func newCookiesStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether a cookies file is uploaded",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *api.Client) error {
				status, err := client.CookieStatus(cmd.Context())
				if err != nil {
					return err
				}
				if !status.Exists {
					fmt.Fprintln(cmd.OutOrStdout(), "No cookies file uploaded")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cookies file present (%d bytes, modified %s)\n",
					status.SizeBytes, status.LastModified.Format("2006-01-02 15:04:05"))
				return nil
			})
		},
	}
}

func newCookiesUploadCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a Netscape-format cookies file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *api.Client) error {
				if err := client.UploadCookies(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Cookies uploaded")
				return nil
			})
		},
	}
}

func newCookiesDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete",
		Short: "Delete the server-side cookies file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *api.Client) error {
				if err := client.DeleteCookies(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Cookies deleted")
				return nil
			})
		},
	}
}

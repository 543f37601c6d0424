package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vidconv/vidconv/internal/api"
	"github.com/vidconv/vidconv/pkg/models"
)

func newVideosCommand(ctx *commandContext) *cobra.Command {
	videosCmd := &cobra.Command{
		Use:   "videos",
		Short: "Manage videos known to the service",
	}

	videosCmd.AddCommand(newVideosAddCommand(ctx))
	videosCmd.AddCommand(newVideosListCommand(ctx))
	videosCmd.AddCommand(newVideosGetCommand(ctx))
	videosCmd.AddCommand(newVideosDeleteCommand(ctx))

	return videosCmd
}

func printVideoTable(ctx *commandContext, cmd *cobra.Command, videos []models.Video) error {
	if len(videos) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No videos")
		return nil
	}

	store, err := ctx.sessionStore()
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(videos))
	for _, v := range videos {
		rows = append(rows, []string{
			v.VideoID,
			v.Title,
			strconv.FormatInt(v.UserID, 10),
			v.CreatedAt.Format("2006-01-02 15:04"),
		})
	}

	out := renderTable(tableStyle(store),
		[]string{"Video ID", "Title", "User", "Added"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft})
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

func newVideosAddCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "add <url>",
		Short: "Submit a video URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *api.Client) error {
				inserted, err := client.InsertVideo(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if inserted.AlreadyExists {
					fmt.Fprintf(cmd.OutOrStdout(), "Video already known: %s\n", inserted.VideoID)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "Video added: %s\n", inserted.VideoID)
				}
				return nil
			})
		},
	}
}

func newVideosListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all videos",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *api.Client) error {
				videos, err := client.ListVideos(cmd.Context())
				if err != nil {
					return err
				}
				return printVideoTable(ctx, cmd, videos)
			})
		},
	}
}

func newVideosGetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "get <video-id>",
		Short: "Show one video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *api.Client) error {
				video, err := client.GetVideo(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Video ID: %s\n", video.VideoID)
				fmt.Fprintf(cmd.OutOrStdout(), "Title:    %s\n", video.Title)
				fmt.Fprintf(cmd.OutOrStdout(), "User:     %d\n", video.UserID)
				fmt.Fprintf(cmd.OutOrStdout(), "Added:    %s\n", video.CreatedAt.Format("2006-01-02 15:04"))
				return nil
			})
		},
	}
}

func newVideosDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <video-id>",
		Short: "Delete a video and its conversions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *api.Client) error {
				if err := client.DeleteVideo(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
				return nil
			})
		},
	}
}

func newFormatsCommand(ctx *commandContext) *cobra.Command {
	var cookieFile string

	cmd := &cobra.Command{
		Use:   "formats <video-id>",
		Short: "List the resolutions a video is available in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *api.Client) error {
				resolutions, err := client.Formats(cmd.Context(), args[0], cookieFile)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), strings.Join(resolutions, "\n"))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&cookieFile, "cookies", "", "Cookies file for restricted videos")
	return cmd
}

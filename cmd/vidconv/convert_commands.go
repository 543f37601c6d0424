package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vidconv/vidconv/internal/api"
	"github.com/vidconv/vidconv/internal/poller"
	"github.com/vidconv/vidconv/internal/urlcheck"
	"github.com/vidconv/vidconv/pkg/models"
)

// selectFormat maps the --audio/--resolution flags onto a format and its
// resolution key. Video conversions require an explicit resolution.
func selectFormat(audio bool, resolution string) (models.Format, string, error) {
	if audio {
		return models.FormatMP3, models.AudioResolutionKey, nil
	}
	if resolution == "" {
		return "", "", fmt.Errorf("--resolution is required unless --audio is set")
	}
	return models.FormatMP4, resolution, nil
}

// resolveVideoID accepts either a known video ID or a URL. URLs are
// submitted first so `vidconv convert <url>` works in one step.
func resolveVideoID(cmd *cobra.Command, client *api.Client, arg string) (string, error) {
	if !urlcheck.IsValidURL(arg) {
		return arg, nil
	}
	inserted, err := client.InsertVideo(cmd.Context(), arg)
	if err != nil {
		return "", err
	}
	if inserted.AlreadyExists {
		fmt.Fprintf(cmd.OutOrStdout(), "Video already known: %s\n", inserted.VideoID)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Video added: %s\n", inserted.VideoID)
	}
	return inserted.VideoID, nil
}

// watchJob polls until the job reaches a terminal state or the user
// interrupts.
func watchJob(cmd *cobra.Command, ctx *commandContext, client *api.Client, videoID string, format models.Format, resolution string) error {
	cfg, err := ctx.config()
	if err != nil {
		return err
	}

	signalCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var final models.JobStatus
	w := poller.Watch(signalCtx, poller.Options{
		VideoID:    videoID,
		Format:     format,
		Resolution: resolution,
		Interval:   cfg.Poll.Interval,
		Warmup:     cfg.Poll.Warmup,
		OnTerminal: func(status models.JobStatus) {
			final = status
		},
		Statuses: client,
		Logger:   ctx.logger,
	})
	defer w.Stop()

	fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (%s), polling every %s\n",
		videoID, format.ResolutionKey(resolution), cfg.Poll.Interval)

	<-w.Done()
	if signalCtx.Err() != nil {
		fmt.Fprintln(cmd.OutOrStdout(), "Stopped watching")
		return nil
	}

	switch final {
	case models.JobStatusCompleted:
		fmt.Fprintln(cmd.OutOrStdout(), "Conversion completed")
		return nil
	case models.JobStatusFailed:
		return fmt.Errorf("conversion failed")
	default:
		return nil
	}
}

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var resolution, cookieFile string
	var audio, watch bool

	cmd := &cobra.Command{
		Use:   "convert <video-id-or-url>",
		Short: "Start a conversion job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, key, err := selectFormat(audio, resolution)
			if err != nil {
				return err
			}

			return ctx.withClient(func(client *api.Client) error {
				videoID, err := resolveVideoID(cmd, client, args[0])
				if err != nil {
					return err
				}

				err = client.Process(cmd.Context(), videoID, format, resolution, cookieFile)
				if apiErr, ok := api.AsError(err); ok && apiErr.Kind == api.KindConflict {
					fmt.Fprintln(cmd.OutOrStdout(), "A conversion for this resolution is already in progress")
				} else if err != nil {
					return err
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "Conversion started: %s (%s)\n", videoID, key)
				}

				if !watch {
					return nil
				}
				return watchJob(cmd, ctx, client, videoID, format, resolution)
			})
		},
	}

	cmd.Flags().StringVar(&resolution, "resolution", "", "Target resolution, e.g. 720p")
	cmd.Flags().BoolVar(&audio, "audio", false, "Extract audio (mp3) instead of video")
	cmd.Flags().StringVar(&cookieFile, "cookies", "", "Cookies file for restricted videos")
	cmd.Flags().BoolVar(&watch, "watch", false, "Poll until the job finishes")
	return cmd
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var resolution string
	var audio, watch bool

	cmd := &cobra.Command{
		Use:   "status <video-id>",
		Short: "Show conversion jobs for a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *api.Client) error {
				if watch {
					format, _, err := selectFormat(audio, resolution)
					if err != nil {
						return err
					}
					return watchJob(cmd, ctx, client, args[0], format, resolution)
				}

				statuses, err := client.Status(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if len(statuses) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No conversions")
					return nil
				}

				store, err := ctx.sessionStore()
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(statuses))
				for _, st := range statuses {
					rows = append(rows, []string{
						st.Resolution,
						string(st.Status),
						st.UpdatedAt.Format("2006-01-02 15:04:05"),
					})
				}
				out := renderTable(tableStyle(store),
					[]string{"Resolution", "Status", "Updated"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft})
				fmt.Fprintln(cmd.OutOrStdout(), out)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "Poll one job until it finishes")
	cmd.Flags().StringVar(&resolution, "resolution", "", "Resolution to watch")
	cmd.Flags().BoolVar(&audio, "audio", false, "Watch the audio (mp3) job")
	return cmd
}

func newDownloadCommand(ctx *commandContext) *cobra.Command {
	var resolution, output string
	var audio bool

	cmd := &cobra.Command{
		Use:   "download <video-id>",
		Short: "Download a completed conversion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, key, err := selectFormat(audio, resolution)
			if err != nil {
				return err
			}

			return ctx.withClient(func(client *api.Client) error {
				dest := output
				if dest == "" {
					cfg, err := ctx.config()
					if err != nil {
						return err
					}
					if err := os.MkdirAll(cfg.Download.Dir, 0o755); err != nil {
						return err
					}
					dest = filepath.Join(cfg.Download.Dir,
						fmt.Sprintf("%s_%s.%s", args[0], key, format.Ext()))
				}

				n, err := client.Download(cmd.Context(), args[0], key, dest)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%d bytes)\n", dest, n)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&resolution, "resolution", "", "Resolution to download, e.g. 720p")
	cmd.Flags().BoolVar(&audio, "audio", false, "Download the audio (mp3) conversion")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Destination path")
	return cmd
}

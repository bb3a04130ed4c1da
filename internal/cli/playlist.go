package cli

import (
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/ytget/ytgrab/internal/download"
	"github.com/ytget/ytgrab/internal/model"
	"github.com/ytget/ytgrab/internal/platform"
)

func newPlaylistCmd(playlists PlaylistSource) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "playlist <url>",
		Short: "Download every video of a playlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlaylist(cmd, args, playlists)
		},
	}

	cmd.Flags().StringP("kind", "k", string(model.KindVideo), "rendition to download: video or audio")
	cmd.Flags().IntP("limit", "n", 0, "maximum number of entries, 0 for all")
	cmd.Flags().IntP("parallel", "p", 0, "parallel downloads, 0 for the configured value")

	return cmd
}

func runPlaylist(cmd *cobra.Command, args []string, playlists PlaylistSource) error {
	kind, err := parseKindFlag(cmd)
	if err != nil {
		return err
	}
	if !platform.IsPlaylistURL(args[0]) {
		return fmt.Errorf("not a playlist URL: %s", args[0])
	}

	rt, err := loadRuntime(cmd)
	if err != nil {
		return err
	}

	if parser, ok := playlists.(*platform.PlaylistParser); ok {
		limit, _ := cmd.Flags().GetInt("limit")
		parser.SetLimit(limit)
		parser.SetTimeout(rt.cfg.RequestTimeout())
	}

	playlist, err := playlists.ParsePlaylist(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: %d videos\n", playlist.Title, len(playlist.Entries))

	parallel, _ := cmd.Flags().GetInt("parallel")
	if parallel <= 0 {
		parallel = rt.cfg.MaxParallel
	}

	svc := download.NewService(
		func() download.Session { return rt.newController() },
		parallel,
		download.WithLogger(rt.logger),
		download.WithTimeouts(rt.cfg.ResolveTimeout(), rt.cfg.RequestTimeout()),
	)

	var outMu sync.Mutex
	started := make(map[string]bool)
	svc.SetUpdateCallback(func(task *model.DownloadTask) {
		outMu.Lock()
		defer outMu.Unlock()
		if task.Status.IsActive() {
			if !started[task.ID] {
				started[task.ID] = true
				fmt.Fprintf(out, "  started %s\n", task.GetDisplayTitle())
			}
			return
		}
		if !task.Status.IsFinished() {
			return
		}
		if task.Status == model.TaskStatusError {
			fmt.Fprintf(out, "  failed  %s: %s\n", task.GetDisplayTitle(), task.LastError)
			return
		}
		fmt.Fprintf(out, "  saved   %s in %s\n", task.OutputPath, task.Elapsed().Round(time.Second))
	})

	if _, err := svc.AddPlaylist(playlist, kind); err != nil {
		return err
	}
	if err := svc.Wait(cmd.Context()); err != nil {
		return err
	}

	tasks := svc.GetAllTasks()
	failed := 0
	for _, task := range tasks {
		if task.Status == model.TaskStatusError {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d downloads failed", failed, len(tasks))
	}

	fmt.Fprintf(out, "all %d downloads saved to %s\n", len(tasks), rt.cfg.DownloadDir)
	return nil
}

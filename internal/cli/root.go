package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ytget/ytgrab/internal/api"
	"github.com/ytget/ytgrab/internal/config"
	"github.com/ytget/ytgrab/internal/model"
	"github.com/ytget/ytgrab/internal/platform"
	"github.com/ytget/ytgrab/internal/session"
)

// PlaylistSource expands a playlist URL into its entries
type PlaylistSource interface {
	ParsePlaylist(ctx context.Context, rawURL string) (*model.Playlist, error)
}

// NewRootCommand builds the ytgrab command tree
func NewRootCommand() *cobra.Command {
	return newRootCommand(platform.NewPlaylistParser())
}

func newRootCommand(playlists PlaylistSource) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "ytgrab",
		Short:         "Download YouTube videos and audio through a media service",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	rootCmd.PersistentFlags().StringP("config", "c", "", "path to config file")
	rootCmd.PersistentFlags().String("service", "", "media service base URL")
	rootCmd.PersistentFlags().StringP("out", "o", "", "download directory")

	rootCmd.AddCommand(newGetCmd())
	rootCmd.AddCommand(newInfoCmd())
	rootCmd.AddCommand(newPlaylistCmd(playlists))
	rootCmd.AddCommand(newHealthCmd())

	return rootCmd
}

// runtime is what every subcommand needs, resolved from config and flags
type runtime struct {
	cfg    config.Config
	logger *slog.Logger
	client *api.Client
	saver  *platform.DiskSaver
}

func loadRuntime(cmd *cobra.Command) (*runtime, error) {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		configPath = config.DefaultPath()
	}

	cfg, err := config.LoadOrCreate(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", configPath, err)
	}

	if service, _ := cmd.Flags().GetString("service"); strings.TrimSpace(service) != "" {
		cfg.ServiceURL = strings.TrimRight(strings.TrimSpace(service), "/")
	}
	if out, _ := cmd.Flags().GetString("out"); strings.TrimSpace(out) != "" {
		cfg.DownloadDir = strings.TrimSpace(out)
	}

	logger := cfg.NewLogger()
	client := api.NewClient(cfg.ServiceURL,
		api.WithLogger(logger),
		api.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout()}),
	)

	return &runtime{
		cfg:    cfg,
		logger: logger,
		client: client,
		saver:  platform.NewDiskSaver(cfg.DownloadDir),
	}, nil
}

// newController builds a session controller saving into the configured directory
func (rt *runtime) newController() *session.Controller {
	return session.NewController(
		rt.client,
		rt.client,
		rt.saver,
		session.WithLogger(rt.logger),
	)
}

func (rt *runtime) resolveContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, rt.cfg.ResolveTimeout())
}

func (rt *runtime) fetchContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, rt.cfg.RequestTimeout())
}

// sessionError turns a failed attempt into the message the session shows
func sessionError(controller *session.Controller, err error) error {
	if session.CodeOf(err) == 0 {
		return err
	}
	if msg := controller.Snapshot().LastMessage; msg.Text != "" {
		return fmt.Errorf("%s", msg.Text)
	}
	return err
}

func parseKindFlag(cmd *cobra.Command) (model.Kind, error) {
	value, _ := cmd.Flags().GetString("kind")
	return model.ParseKind(strings.ToLower(strings.TrimSpace(value)))
}

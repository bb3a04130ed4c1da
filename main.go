package main

import (
	"fmt"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"

	"github.com/ytget/ytgrab/internal/api"
	"github.com/ytget/ytgrab/internal/config"
	"github.com/ytget/ytgrab/internal/platform"
	"github.com/ytget/ytgrab/internal/session"
	"github.com/ytget/ytgrab/internal/ui"
)

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

const (
	AppID = "com.ytget.ytgrab"
)

func main() {
	cfg, err := config.LoadOrCreate(config.DefaultPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		cfg = config.Default()
	}

	logger := cfg.NewLogger()
	logger.Info("starting", "version", version, "service", cfg.ServiceURL)

	myApp := app.NewWithID(AppID)
	myWindow := myApp.NewWindow(ui.WindowTitle)
	myWindow.Resize(fyne.NewSize(ui.WindowWidth, ui.WindowHeight))

	settings := config.NewSettings(myApp, cfg)

	// A new controller is built whenever the settings change
	newController := func(settings *config.Settings) ui.SessionController {
		downloadsDir := settings.GetDownloadDirectory()
		if err := platform.CreateDirectoryIfNotExists(downloadsDir); err != nil {
			logger.Warn("failed to ensure downloads dir", "dir", downloadsDir, "error", err)
		}

		client := api.NewClient(settings.GetServiceURL(), api.WithLogger(logger))
		return session.NewController(
			client,
			client,
			platform.NewDiskSaver(downloadsDir),
			session.WithLogger(logger),
		)
	}

	ui.NewRootUI(myWindow, settings, newController,
		ui.WithLogger(logger),
		ui.WithTimeouts(cfg.ResolveTimeout(), cfg.RequestTimeout()),
	)

	myWindow.ShowAndRun()
}

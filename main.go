package main

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"

	"github.com/DeveloperAJ2799/Chronosonic/internal/extractor"
	"github.com/DeveloperAJ2799/Chronosonic/internal/platform"
	"github.com/DeveloperAJ2799/Chronosonic/internal/queue"
	"github.com/DeveloperAJ2799/Chronosonic/internal/resolver"
	"github.com/DeveloperAJ2799/Chronosonic/internal/shared"
	"github.com/DeveloperAJ2799/Chronosonic/internal/store"
	"github.com/DeveloperAJ2799/Chronosonic/internal/ui"
)

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

const AppID = "com.developeraj2799.chronosonic"

func main() {
	logDir, _ := platform.LogDir()
	logger := shared.NewLogger(logDir)
	logger.Info("Chronosonic starting", "version", version)

	// Create new Fyne app
	myApp := app.NewWithID(AppID)
	myApp.Settings().SetTheme(ui.NewPlayerTheme())
	myWindow := myApp.NewWindow("Chronosonic")

	// Dispatcher delivering worker completions onto the Fyne event thread
	dispatch := func(f func()) { fyne.Do(f) }

	// Initialize services
	dataDir, err := platform.DataDir()
	if err != nil {
		logger.Fatal("Failed to locate data dir", "error", err)
	}
	st, err := store.New(dataDir, logger)
	if err != nil {
		logger.Fatal("Failed to open data dir", "error", err)
	}

	cacheDir, err := platform.CacheDir()
	if err != nil {
		logger.Warn("Failed to create cache dir, thumbnails disabled", "error", err)
	}
	tempDir, err := platform.TempDir()
	if err != nil {
		logger.Fatal("Failed to create temp dir", "error", err)
	}

	client := extractor.NewYTDLP()
	res := resolver.New(client, dispatch, logger, tempDir)

	// Create and setup UI
	root := ui.NewRootUI(myWindow, myApp, ui.Deps{
		Client:        client,
		Resolver:      res,
		Queue:         queue.New(),
		Store:         st,
		Parser:        platform.NewPlaylistParser(),
		CacheDir:      cacheDir,
		Logger:        logger,
		Dispatch:      dispatch,
		CapabilityErr: client.Available(),
	})

	myWindow.SetCloseIntercept(func() {
		root.Controller().Stop()
		res.CleanupAll()
		if err := st.SaveConfig(root.Config()); err != nil {
			logger.Warn("Failed to save settings", "error", err)
		}
		myWindow.Close()
	})

	// Show and run
	myWindow.ShowAndRun()
}

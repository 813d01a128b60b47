package cmd

import (
	"errors"
	"fmt"

	"boxbreath/internal/logging"
	"boxbreath/internal/platform"
	"boxbreath/internal/session"
	"boxbreath/internal/ui/desktop"
	"boxbreath/internal/ui/tray"
	"boxbreath/resources"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	fynedesktop "fyne.io/fyne/v2/driver/desktop"
	"github.com/spf13/cobra"
)

func newGUICmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "gui [link]",
		Short: "Open the desktop app",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGUI(cmd, opts, args)
		},
	}
}

func runGUI(cmd *cobra.Command, opts *options, args []string) error {
	settings, err := opts.loadSettings(cmd)
	if err != nil {
		return err
	}
	logger := opts.logger(cmd.ErrOrStderr(), settings)
	link := resolveLink(cmd, args, settings)

	guard, err := platform.AcquireSingleInstance(appName, link, logging.Component(logger, "platform"))
	if err != nil {
		if errors.Is(err, platform.ErrAlreadyRunning) {
			logger.Info("handed link to running instance", "link", link)
			return nil
		}
		return fmt.Errorf("single instance: %w", err)
	}
	defer func() {
		_ = guard.Release()
	}()

	fyneApp := app.NewWithID(appID)
	fyneApp.SetIcon(resources.MustIcon(resources.ActiveIcon))

	controller := session.NewController(runnerConfig(settings), logging.Component(logger, "session"))
	defer controller.End()

	navigator := desktop.NewNavigator(cmd.Context(), fyneApp, controller, settings, opts.saveSettings, logger)

	if desktopApp, ok := fyneApp.(fynedesktop.App); ok {
		trayManager := tray.New(desktopApp, tray.Callbacks{
			OnOpen:      navigator.OpenHome,
			OnStartLast: navigator.StartLast,
			OnStop:      navigator.StopSession,
			OnQuit: func() {
				controller.End()
				fyneApp.Quit()
			},
		})
		trayManager.SetIcons(resources.MustIcon(resources.ActiveIcon), resources.MustIcon(resources.IdleIcon))
		navigator.SetTray(trayManager)
		// With a tray the app keeps running after the home window closes.
		navigator.SetOnHomeClose(navigator.Hide)
	} else {
		logger.Info("system tray unsupported on this platform")
	}

	guard.SetHandler(func(forwarded string) {
		fyne.Do(func() {
			navigator.Open(forwarded)
		})
	})

	fyneApp.Lifecycle().SetOnStarted(func() {
		navigator.Open(link)
	})
	fyneApp.Run()
	return nil
}

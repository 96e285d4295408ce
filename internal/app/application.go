package app

import (
	"fmt"
	"io"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"

	"coda-dashboard/internal/backend"
	"coda-dashboard/internal/bus"
	"coda-dashboard/internal/commands"
	"coda-dashboard/internal/config"
	"coda-dashboard/internal/gui"
	"coda-dashboard/internal/logging"
	"coda-dashboard/internal/metrics"
	"coda-dashboard/internal/shutdown"
	"coda-dashboard/internal/version"
)

const (
	AppName = "Coda Dashboard"
	AppID   = "com.codalite.dashboard"
)

// Config controls application construction. Start from DefaultAppConfig.
type Config struct {
	// SettingsPath overrides the settings file location ("" = user config dir).
	SettingsPath string

	// Sink supplies the log destination attached during setup. Debug
	// builds default it to a console writer; release builds to none.
	Sink func() (io.Writer, error)
}

func DefaultAppConfig() Config {
	return Config{
		Sink: logging.DefaultSink,
	}
}

// Application is the assembled dashboard: Fyne app and window, logging,
// backend link, event bus, panels and the (empty) command registry.
type Application struct {
	fyneApp  fyne.App
	window   fyne.Window
	logger   *logging.Logger
	settings *config.Config

	registry    *commands.Registry
	eventBus    *bus.Bus
	backendLink *backend.Client
	guiManager  *gui.Manager
	tracker     *metrics.Tracker
	shutdownMgr *shutdown.Manager
}

// New constructs the application. Setup runs here, in order: attach the
// log sink, emit the two startup records, then assemble components. Any
// setup failure is returned and the run loop is never entered.
func New(cfg Config) (*Application, error) {
	settings, err := config.Load(cfg.SettingsPath)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	fyneApp := fyneapp.NewWithID(AppID)
	window := fyneApp.NewWindow(AppName)
	window.Resize(fyne.NewSize(float32(settings.Window.Width), float32(settings.Window.Height)))
	window.CenterOnScreen()
	window.SetMaster()

	logger, err := setupLogging(cfg, settings)
	if err != nil {
		return nil, err
	}

	tracker := metrics.NewTracker()
	eventBus := bus.New(256)
	registry := commands.NewRegistry()
	// Callable backend commands would register here. None are defined:
	// the extension point ships empty, so every invocation fails with
	// commands.ErrUnknownCommand.

	backendCfg := backend.Config{
		URL:              settings.Backend.URL(),
		AuthToken:        settings.Backend.AuthToken,
		HandshakeTimeout: settings.Backend.HandshakeTimeout,
		ReconnectInitial: settings.Backend.ReconnectInitial,
		ReconnectMax:     settings.Backend.ReconnectMax,
		ReconnectFactor:  settings.Backend.ReconnectFactor,
		DedupWindow:      settings.Backend.DedupWindow,
	}
	backendLink := backend.NewClient(backendCfg, logger, eventBus)

	guiManager := gui.NewManager(window, logger, eventBus, tracker,
		settings.History.ConversationTurns, settings.History.ActivityLines)

	guiManager.SetSendHandler(func(text string) error {
		return backendLink.Send("conversation_input", map[string]interface{}{
			"text": text,
		})
	})
	backendLink.SetStateHandler(func(state backend.State) {
		guiManager.SetLinkState(state.String())
	})

	shutdownMgr := shutdown.NewManager(logger)
	shutdownMgr.Register("event bus", eventBus)
	shutdownMgr.Register("backend link", backendLink)
	shutdownMgr.Register("gui manager", guiManager)

	application := &Application{
		fyneApp:     fyneApp,
		window:      window,
		logger:      logger,
		settings:    settings,
		registry:    registry,
		eventBus:    eventBus,
		backendLink: backendLink,
		guiManager:  guiManager,
		tracker:     tracker,
		shutdownMgr: shutdownMgr,
	}

	logger.Info("Application", "initialization complete", map[string]interface{}{
		"backend": settings.Backend.URL(),
	})
	return application, nil
}

// setupLogging attaches the configured sink and emits the startup records.
// A sink attach failure aborts setup.
func setupLogging(cfg Config, settings *config.Config) (*logging.Logger, error) {
	sink := cfg.Sink
	if sink == nil {
		sink = logging.DefaultSink
	}

	writer, err := sink()
	if err != nil {
		return nil, fmt.Errorf("attach log sink: %w", err)
	}

	var logger *logging.Logger
	if writer == nil {
		logger = logging.Nop()
	} else {
		level, err := logging.ParseLevel(settings.Logging.Level)
		if err != nil {
			return nil, err
		}
		logger = logging.New(writer, level)
	}

	logger.Info("Application", "Coda Dashboard starting up", map[string]interface{}{
		"debug_sink": logging.SinkEnabled,
	})
	logger.Info("Application", fmt.Sprintf("Version: %s", version.Resolve()), nil)
	return logger, nil
}

// Registry exposes the command extension point.
func (a *Application) Registry() *commands.Registry {
	return a.registry
}

// Run starts the backend link and enters the blocking Fyne event loop.
func (a *Application) Run() error {
	a.window.SetCloseIntercept(func() {
		a.logger.Info("Application", "shutdown requested", nil)
		a.shutdownMgr.Shutdown()
		a.window.Close()
	})

	a.shutdownMgr.Listen()
	a.backendLink.Start(a.shutdownMgr.Context())
	go logMetricsLoop(a.shutdownMgr.Context(), a.logger, a.tracker, a.eventBus, metricsLogInterval)

	a.window.SetContent(a.guiManager.GetMainContainer())
	a.window.Show()

	a.logger.Info("Application", "entering run loop", map[string]interface{}{
		"window": AppName,
	})
	a.fyneApp.Run()

	return nil
}

// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/enc4idea/enclocate/internal/config"
	"github.com/enc4idea/enclocate/internal/locator"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
)

type (
	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}

	// App wires CLI services and shared dependencies. Every command handler
	// receives the App and opens a session from it.
	App struct {
		Config  ConfigProvider
		Runner  locator.Runner
		Fs      afero.Fs
		GOOS    string
		PathEnv func() string
		stdout  io.Writer
		stderr  io.Writer
	}

	// Dependencies defines the injection points for building an App. Nil fields are
	// replaced with production defaults by NewApp.
	Dependencies struct {
		Config  ConfigProvider
		Runner  locator.Runner
		Fs      afero.Fs
		GOOS    string
		PathEnv func() string
		Stdout  io.Writer
		Stderr  io.Writer
	}

	// session is the per-invocation object graph: the loaded configuration
	// and the manager built from it.
	session struct {
		app      *App
		cfg      *config.Config
		manager  *locator.Manager
		notifier *cliNotifier
		logger   *log.Logger
		flags    *rootFlagValues
	}
)

// NewApp creates an App, filling unset dependencies with production defaults.
func NewApp(deps Dependencies) *App {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Runner == nil {
		deps.Runner = locator.NewExecRunner()
	}
	if deps.Fs == nil {
		deps.Fs = afero.NewOsFs()
	}
	if deps.GOOS == "" {
		deps.GOOS = runtime.GOOS
	}
	if deps.PathEnv == nil {
		deps.PathEnv = func() string { return os.Getenv("PATH") }
	}

	return &App{
		Config:  deps.Config,
		Runner:  deps.Runner,
		Fs:      deps.Fs,
		GOOS:    deps.GOOS,
		PathEnv: deps.PathEnv,
		stdout:  deps.Stdout,
		stderr:  deps.Stderr,
	}
}

// open loads the configuration and builds the locator services for one
// command invocation. The caller must close the session.
func (a *App) open(ctx context.Context, flags *rootFlagValues) (*session, error) {
	cfg, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: flags.configPath})
	if err != nil {
		return nil, err
	}

	s := &session{app: a, cfg: cfg, flags: flags}
	s.logger = a.newLogger(cfg, flags.verbose)
	s.notifier = newCLINotifier(a.stderr)
	s.manager = a.newManager(cfg, s.notifier, s.logger)
	return s, nil
}

func (a *App) newLogger(cfg *config.Config, verbose bool) *log.Logger {
	logger := log.NewWithOptions(a.stderr, log.Options{Prefix: config.AppName})
	level, err := log.ParseLevel(cfg.UI.LogLevel.String())
	if err != nil {
		level = log.InfoLevel
	}
	if verbose || cfg.UI.Verbose {
		level = log.DebugLevel
	}
	logger.SetLevel(level)
	return logger
}

func (a *App) newManager(cfg *config.Config, notifier locator.Notifier, logger *log.Logger) *locator.Manager {
	opts := []locator.DetectorOption{
		locator.WithFs(a.Fs),
		locator.WithGOOS(a.GOOS),
		locator.WithToolName(cfg.Tool.Name),
		locator.WithPathEnv(a.PathEnv),
		locator.WithVirtualEnvScan(cfg.Detection.ScanAllVirtualEnvs),
		locator.WithVirtualEnvTimeout(cfg.Detection.VirtualEnvTimeout),
		locator.WithLogger(logger.WithPrefix("detect")),
	}
	if cfg.Detection.VirtualEnvs {
		opts = append(opts, locator.WithVirtualEnvs(locator.NewWSLProvider(a.Runner, a.GOOS)))
	}
	detector := locator.NewDetector(opts...)

	tester := locator.NewVersionTester(a.Runner,
		locator.WithTesterGOOS(a.GOOS),
		locator.WithVersionTimeout(cfg.Detection.VersionTimeout),
		locator.WithTesterLogger(logger.WithPrefix("version")),
	)

	policy := cfg.Policy()
	return locator.NewManager(locator.Dependencies{
		Settings: cfg,
		Detector: detector,
		Tester:   tester,
		Notifier: notifier,
		Policy:   &policy,
		Logger:   logger,
	})
}

// project resolves the --project flag. No flag means no project context.
func (s *session) project() (*locator.Project, error) {
	if s.flags.projectDir == "" {
		return nil, nil
	}
	dir := s.flags.projectDir
	if _, _, unc := locator.ParseUNCPath(dir); !unc {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, err
		}
		dir = abs
	}
	p := s.cfg.Project(dir)
	if s.flags.trusted {
		p.Trusted = true
	}
	return p, nil
}

func (s *session) Close() {
	s.manager.Detector().Close()
}

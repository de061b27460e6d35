// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/enc4idea/enclocate/internal/config"
	"github.com/enc4idea/enclocate/internal/locator"
	"github.com/enc4idea/enclocate/internal/watch"
	"github.com/enc4idea/enclocate/pkg/platform"

	"github.com/spf13/cobra"
)

const (
	watchLabelConfig = "config"
	watchLabelBin    = "bin"
	watchLabelDeps   = "deps"
)

// watchLoop owns the session of a running `enclocate watch`. The watcher
// runs one callback at a time, so the session is replaced without locking.
type watchLoop struct {
	app         *App
	flags       *rootFlagValues
	s           *session
	out         io.Writer
	unsubscribe func()
}

// newWatchCommand creates the `enclocate watch` command.
func newWatchCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Re-validate whenever the configuration or an installation changes",
		Long: `Validate the executable, then keep watching for changes.

The configuration file is reloaded when it changes. Changes to the
executable in any PATH directory or default install location drop the
cached detection and version results. Either way the executable is located
and validated again. Stop with Ctrl+C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.open(cmd.Context(), rootFlags)
			if err != nil {
				return err
			}
			loop := &watchLoop{app: app, flags: rootFlags, out: cmd.OutOrStdout()}
			loop.install(s)
			defer loop.close()

			return loop.run(cmd.Context())
		},
	}
}

func (l *watchLoop) run(ctx context.Context) error {
	l.check(ctx)

	targets, err := l.targets()
	if err != nil {
		return err
	}
	w, err := watch.New(watch.Config{
		Targets:  targets,
		OnChange: l.onChange,
		Logger:   l.s.logger.WithPrefix("watch"),
	})
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	for _, t := range w.Targets() {
		l.s.logger.Debug("watching", "label", t.Label, "dir", t.Dir)
	}

	fmt.Fprintf(l.out, "\n%s Watching for changes (Ctrl+C to stop)...\n", PathStyle.Render("→"))
	return w.Run(ctx)
}

// targets lists the config directory, every search directory and the
// directories of the executable's dependency files.
//
// TODO: rebuild the targets when a reload changes tool.name; the patterns
// still match the old executable name.
func (l *watchLoop) targets() ([]watch.Target, error) {
	cfgPath := l.flags.configPath
	if cfgPath == "" {
		var err error
		if cfgPath, err = config.FilePath(""); err != nil {
			return nil, err
		}
	}
	targets := []watch.Target{{
		Label:    watchLabelConfig,
		Dir:      filepath.Dir(cfgPath),
		Patterns: []string{filepath.Base(cfgPath)},
		Optional: true,
	}}

	detector := l.s.manager.Detector()
	exeName := platform.ExecutableName(l.app.GOOS, detector.ToolName())
	binPatterns := []string{exeName}
	if l.app.GOOS == platform.Windows {
		// Installers create <Program Files>\<tool>; the executable appears
		// one level below the watched root.
		binPatterns = append(binPatterns, detector.ToolName())
	}
	for _, dir := range detector.SearchDirs() {
		targets = append(targets, watch.Target{
			Label:    watchLabelBin,
			Dir:      dir,
			Patterns: binPatterns,
			Optional: true,
		})
	}

	exe := l.s.manager.Executable(context.Background(), l.project())
	for _, dep := range detector.DependencyPaths(exe) {
		targets = append(targets, watch.Target{
			Label:    watchLabelDeps,
			Dir:      filepath.Dir(dep),
			Patterns: []string{filepath.Base(dep)},
			Optional: true,
		})
	}
	return targets, nil
}

func (l *watchLoop) onChange(ctx context.Context, changes []watch.Change) error {
	var configChanged, installChanged bool
	for _, c := range changes {
		l.s.logger.Debug("changed", "label", c.Label, "path", c.Path)
		switch c.Label {
		case watchLabelConfig:
			configChanged = true
		default:
			installChanged = true
		}
	}
	fmt.Fprintf(l.out, "\n%s Detected %d change(s)\n", PathStyle.Render("→"), len(changes))

	if configChanged {
		if err := l.reload(ctx); err != nil {
			fmt.Fprintf(l.app.stderr, "%s %s\n", WarningStyle.Render("!"), formatErrorForDisplay(err, l.flags.verbose))
			fmt.Fprintln(l.app.stderr, SubtitleStyle.Render("Keeping the previous configuration."))
		}
	}
	if installChanged {
		l.s.manager.DropExecutableCache()
		l.s.manager.DropAllVersionCaches()
	}

	l.check(ctx)
	return nil
}

// reload applies a changed configuration. Settings and policy changes are
// installed on the running manager; a different tool or detection setup
// needs a new one.
func (l *watchLoop) reload(ctx context.Context) error {
	cfg, err := l.app.Config.Load(ctx, config.LoadOptions{ConfigFilePath: l.flags.configPath})
	if err != nil {
		return err
	}

	old := l.s.cfg
	if cfg.Tool.Name == old.Tool.Name && cfg.Detection == old.Detection {
		l.s.cfg = cfg
		l.s.manager.UpdateSettings(cfg, cfg.Policy())
		return nil
	}

	s := &session{app: l.app, cfg: cfg, flags: l.flags, notifier: l.s.notifier}
	s.logger = l.app.newLogger(cfg, l.flags.verbose)
	s.manager = l.app.newManager(cfg, s.notifier, s.logger)
	l.close()
	l.install(s)
	l.s.logger.Info("configuration reloaded, detection restarted", "tool", cfg.Tool.Name)
	return nil
}

// check locates and validates the executable, printing the outcome.
func (l *watchLoop) check(ctx context.Context) {
	project := l.project()
	path := l.s.manager.PathToExecutable(ctx, project)
	if !l.s.manager.TestVersionValid(ctx, project) {
		fmt.Fprintf(l.out, "%s %s\n", ErrorStyle.Render("✗"), PathStyle.Render(path))
		return
	}
	v := l.s.manager.VersionOf(l.s.manager.ExecutableFor(path))
	fmt.Fprintf(l.out, "%s %s %s\n", SuccessStyle.Render("✓"), PathStyle.Render(path), v)
}

func (l *watchLoop) project() *locator.Project {
	p, err := l.s.project()
	if err != nil {
		l.s.logger.Warn("ignoring project", "dir", l.flags.projectDir, "error", err)
		return nil
	}
	return p
}

func (l *watchLoop) install(s *session) {
	l.s = s
	logger := s.logger
	l.unsubscribe = s.manager.Subscribe(func(e locator.Event) {
		logger.Debug("event", "kind", e.Kind)
	})
}

func (l *watchLoop) close() {
	if l.unsubscribe != nil {
		l.unsubscribe()
	}
	l.s.Close()
}

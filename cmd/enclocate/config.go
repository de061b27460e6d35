// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/enc4idea/enclocate/internal/config"

	"github.com/spf13/cobra"
)

// newConfigCommand creates the `enclocate config` command tree.
func newConfigCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage enclocate configuration",
		Long: `Manage enclocate configuration.

Configuration is stored in:
  - Linux: ~/.config/enclocate/config.cue
  - macOS: ~/Library/Application Support/enclocate/config.cue
  - Windows: %APPDATA%\enclocate\config.cue

Every value can be overridden with an ENCLOCATE_ environment variable,
e.g. ENCLOCATE_TOOL_PATH for tool.path.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.Config.Load(cmd.Context(), config.LoadOptions{ConfigFilePath: rootFlags.configPath})
			if err != nil {
				return err
			}
			showConfig(cmd.OutOrStdout(), cfg)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output the effective configuration as CUE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.Config.Load(cmd.Context(), config.LoadOptions{ConfigFilePath: rootFlags.configPath})
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), config.GenerateCUE(cfg))
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := rootFlags.configPath
			if path == "" {
				var err error
				if path, err = config.FilePath(""); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.CreateDefaultConfig("")
			if err != nil {
				return fmt.Errorf("failed to create config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Configuration at %s\n", SuccessStyle.Render("✓"), path)
			return nil
		},
	})

	return cfgCmd
}

func showConfig(out io.Writer, cfg *config.Config) {
	valueStyle := SuccessStyle
	row := func(key, value string) {
		fmt.Fprintf(out, "  %s %s\n", keyStyle.Render(key), valueStyle.Render(value))
	}

	fmt.Fprintln(out, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(out)
	if cfg.Source != "" {
		fmt.Fprintf(out, "%s %s\n", keyStyle.Render("Config file"), cfg.Source)
	} else {
		fmt.Fprintf(out, "%s %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, keyStyle.Render("tool"))
	row("name", cfg.Tool.Name)
	if cfg.Tool.Path != "" {
		row("path", cfg.Tool.Path)
	} else {
		row("path", "(detect)")
	}
	row("minimum_version", cfg.Tool.MinimumVersion)

	fmt.Fprintln(out)
	fmt.Fprintln(out, keyStyle.Render("projects"))
	if len(cfg.Projects) == 0 {
		fmt.Fprintf(out, "  %s\n", SubtitleStyle.Render("(none configured)"))
	}
	for _, p := range cfg.Projects {
		line := p.Dir
		if p.Path != "" {
			line += " -> " + p.Path
		}
		if p.Trusted {
			line += " (trusted)"
		}
		fmt.Fprintf(out, "  - %s\n", valueStyle.Render(line))
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, keyStyle.Render("detection"))
	row("virtual_envs", strconv.FormatBool(cfg.Detection.VirtualEnvs))
	row("scan_all_virtual_envs", strconv.FormatBool(cfg.Detection.ScanAllVirtualEnvs))
	row("virtual_env_timeout", cfg.Detection.VirtualEnvTimeout.String())
	row("version_timeout", cfg.Detection.VersionTimeout.String())

	fmt.Fprintln(out)
	fmt.Fprintln(out, keyStyle.Render("ui"))
	row("verbose", strconv.FormatBool(cfg.UI.Verbose))
	row("log_level", cfg.UI.LogLevel.String())
}

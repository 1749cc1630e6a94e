package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"themeplane/model"
	"themeplane/preset"
	"themeplane/theme"
)

func newResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve theme options or colors without starting the server",
	}

	var optionsJSON, colorsJSON, textTones bool
	var selector string

	optionsCmd := &cobra.Command{
		Use:   "options <tokens...>",
		Short: "Print the class attribute for theme option tokens",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			r := newResolver(cfg, nil)
			use := theme.UseList(args...)
			if optionsJSON {
				tokens := r.ResolveOptions(use)
				if tokens == nil {
					tokens = []string{}
				}
				return writeJSON(cmd.OutOrStdout(), model.OptionsResponse{Tokens: tokens, ClassName: r.ClassName(use)})
			}
			fmt.Fprintln(cmd.OutOrStdout(), r.ClassName(use))
			return nil
		},
	}
	optionsCmd.Flags().BoolVar(&optionsJSON, "json", false, "Print tokens and class name as JSON")

	colorsCmd := &cobra.Command{
		Use:   "colors key=value...",
		Short: "Print CSS custom properties with derived on-colors",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			options, err := parseAssignments(args)
			if err != nil {
				return err
			}

			var extra []theme.DeriveOption
			if textTones {
				extra = append(extra, theme.WithTextTones())
			}
			vars := newResolver(cfg, nil).ResolveColors(options, extra...)
			return printVars(cmd.OutOrStdout(), vars, colorsJSON, selector)
		},
	}
	colorsCmd.Flags().BoolVar(&colorsJSON, "json", false, "Print the variables as a JSON object")
	colorsCmd.Flags().BoolVar(&textTones, "text-tones", false, "Also derive text-*-on-* variables")
	colorsCmd.Flags().StringVar(&selector, "selector", ":root", "Selector for the printed rule")

	cmd.AddCommand(optionsCmd, colorsCmd)
	return cmd
}

func newPresetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preset",
		Short: "List and render named color presets",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			names, err := preset.New(cfg.DataDir, preset.WithBuiltins()).List()
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}

	var selector string
	var asJSON bool
	cssCmd := &cobra.Command{
		Use:   "css <name>",
		Short: "Print a preset as a stylesheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			entries, err := preset.New(cfg.DataDir, preset.WithBuiltins()).Load(args[0])
			if err != nil {
				return err
			}
			vars := newResolver(cfg, nil).ResolveColors(entries)
			return printVars(cmd.OutOrStdout(), vars, asJSON, selector)
		},
	}
	cssCmd.Flags().StringVar(&selector, "selector", ":root", "Selector for the printed rule")
	cssCmd.Flags().BoolVar(&asJSON, "json", false, "Print the variables as a JSON object")

	cmd.AddCommand(listCmd, cssCmd)
	return cmd
}

// parseAssignments turns key=value arguments into ordered entries.
func parseAssignments(args []string) (theme.Entries, error) {
	out := make(theme.Entries, 0, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid argument %q: want key=value", arg)
		}
		out = append(out, theme.Entry{Key: key, Value: value})
	}
	return out, nil
}

func printVars(w io.Writer, vars *theme.Vars, asJSON bool, selector string) error {
	if asJSON {
		return writeJSON(w, vars)
	}
	_, err := io.WriteString(w, vars.Stylesheet(selector))
	return err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

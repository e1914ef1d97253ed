package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/basecamp/todo-cli/internal/config"
	"github.com/basecamp/todo-cli/internal/output"
)

// NewConfigCmd creates the config command group.
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
		Long: `Inspect the resolved configuration.

Values are layered: defaults, the global file (~/.config/todo/config.json),
the local file (./.todo/config.json), TODO_* environment variables, then
flags. base_url is never read from the local file.`,
	}

	cmd.AddCommand(newConfigShowCmd())
	return cmd
}

// configEntry is one resolved key.
type configEntry struct {
	Value  any    `json:"value"`
	Source string `json:"source"`
}

type configResult map[string]configEntry

// Markdown implements output.Markdowner.
func (c configResult) Markdown() string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("| Key | Value | Source |\n|---|---|---|\n")
	for _, k := range keys {
		fmt.Fprintf(&b, "| %s | %v | %s |\n", k, c[k].Value, c[k].Source)
	}
	return b.String()
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show effective configuration",
		Long:  "Display the current effective configuration with source information.",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}
			return app.OK(resolvedConfig(app.Config),
				output.WithSummary("Effective configuration"),
				output.WithBreadcrumbs(output.Breadcrumb{
					Action:      "edit",
					Cmd:         "$EDITOR " + config.GlobalConfigDir() + "/config.json",
					Description: "Edit global config",
				}),
			)
		},
	}
}

func resolvedConfig(cfg *config.Config) configResult {
	res := configResult{
		"base_url":           {cfg.BaseURL, cfg.SourceOf("base_url")},
		"format":             {cfg.Format, cfg.SourceOf("format")},
		"timeout_seconds":    {cfg.TimeoutSeconds, cfg.SourceOf("timeout_seconds")},
		"rate_limit":         {cfg.RateLimit, cfg.SourceOf("rate_limit")},
		"rate_burst":         {cfg.RateBurst, cfg.SourceOf("rate_burst")},
		"search_debounce_ms": {cfg.SearchDebounceMS, cfg.SourceOf("search_debounce_ms")},
	}
	if cfg.Verbose != nil {
		res["verbose"] = configEntry{*cfg.Verbose, cfg.SourceOf("verbose")}
	}
	return res
}

package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-flatcms"
	"github.com/goliatone/go-flatcms/internal/config"
)

var moduleBuilder = buildModule

// cli holds the state shared by every subcommand of one invocation.
type cli struct {
	configPath string
	module     *flatcms.Module
}

func newRootCmd() *cobra.Command {
	state := &cli{}

	root := &cobra.Command{
		Use:   "flatcms",
		Short: "Flat-file CMS: scan content, build menus and sitemaps, resolve pages",
		Long: `flatcms reads a directory of Markdown, HTML and JSON files and the JSON
sidecars next to them, and prints the derived tree, menu, sitemap and pages.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&state.configPath, "config", "c", "", "Path to the JSON config file (defaults to the user config directory)")

	root.AddCommand(
		newInitCmd(),
		newTreeCmd(state),
		newMenusCmd(state),
		newSitemapCmd(state),
		newRobotsCmd(state),
		newPageCmd(state),
		newListCmd(state),
		newEnsureMetaCmd(state),
	)
	return root
}

func buildModule(configPath string) (*flatcms.Module, error) {
	path := configPath
	if path == "" {
		var err error
		if path, err = config.DefaultPath(); err != nil {
			return nil, err
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config %s (run `flatcms init` to create one): %w", path, err)
	}
	return flatcms.New(cfg)
}

// load builds the module once per invocation.
func (c *cli) load() (*flatcms.Module, error) {
	if c.module != nil {
		return c.module, nil
	}
	module, err := moduleBuilder(c.configPath)
	if err != nil {
		return nil, err
	}
	c.module = module
	return module, nil
}

// flushMetrics writes the metrics exposition to w when metrics are enabled.
func (c *cli) flushMetrics(w io.Writer) error {
	if c.module == nil || c.module.Metrics() == nil {
		return nil
	}
	return c.module.Metrics().WriteText(w)
}

func (c *cli) postRun(cmd *cobra.Command, _ []string) error {
	return c.flushMetrics(cmd.ErrOrStderr())
}

func writeJSON(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

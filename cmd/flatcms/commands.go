package main

import (
	"fmt"

	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-command/dispatcher"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-flatcms"
	sitecmd "github.com/goliatone/go-flatcms/internal/commands/site"
	"github.com/goliatone/go-flatcms/internal/config"
)

func newInitCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := config.WriteDefault(dir)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Default config file created at %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "Directory to write default.json into (defaults to the user config directory)")
	return cmd
}

func newTreeCmd(state *cli) *cobra.Command {
	return &cobra.Command{
		Use:      "tree",
		Short:    "Print the scanned content tree",
		Args:     cobra.NoArgs,
		PostRunE: state.postRun,
		RunE: func(cmd *cobra.Command, _ []string) error {
			module, err := state.load()
			if err != nil {
				return err
			}
			root, err := module.Tree(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), renderTree(root, defaultTreeStyles()))
			return nil
		},
	}
}

func newMenusCmd(state *cli) *cobra.Command {
	return &cobra.Command{
		Use:      "menus",
		Short:    "Print the navigation menu as JSON",
		Args:     cobra.NoArgs,
		PostRunE: state.postRun,
		RunE: func(cmd *cobra.Command, _ []string) error {
			module, err := state.load()
			if err != nil {
				return err
			}
			items, err := module.Menus(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), items)
		},
	}
}

func newSitemapCmd(state *cli) *cobra.Command {
	var (
		asXML bool
		out   string
	)
	cmd := &cobra.Command{
		Use:      "sitemap",
		Short:    "Print the sitemap, or write sitemap.xml with --out",
		Args:     cobra.NoArgs,
		PostRunE: state.postRun,
		RunE: func(cmd *cobra.Command, _ []string) error {
			module, err := state.load()
			if err != nil {
				return err
			}
			if out != "" {
				if err := dispatch(cmd, module, sitecmd.WriteSitemapCommand{OutputPath: out}); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Sitemap written to %s\n", out)
				return nil
			}
			if asXML {
				xml, err := module.SitemapXML(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), xml)
				return nil
			}
			entries, err := module.Sitemap(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), entries)
		},
	}
	cmd.Flags().BoolVar(&asXML, "xml", false, "Print sitemap.xml instead of JSON")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write sitemap.xml to this file")
	return cmd
}

func newRobotsCmd(state *cli) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:      "robots",
		Short:    "Print robots.txt, or write it with --out",
		Args:     cobra.NoArgs,
		PostRunE: state.postRun,
		RunE: func(cmd *cobra.Command, _ []string) error {
			module, err := state.load()
			if err != nil {
				return err
			}
			if out != "" {
				if err := dispatch(cmd, module, sitecmd.WriteRobotsCommand{OutputPath: out}); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "robots.txt written to %s\n", out)
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), module.Robots())
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write robots.txt to this file")
	return cmd
}

func newPageCmd(state *cli) *cobra.Command {
	return &cobra.Command{
		Use:      "page <web-path>",
		Short:    "Resolve a page and print it as JSON",
		Args:     cobra.ExactArgs(1),
		PostRunE: state.postRun,
		RunE: func(cmd *cobra.Command, args []string) error {
			module, err := state.load()
			if err != nil {
				return err
			}
			page, err := module.FindPage(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), page)
		},
	}
}

func newListCmd(state *cli) *cobra.Command {
	return &cobra.Command{
		Use:      "list [web-dir]",
		Short:    "Print the page metadata of a directory, sorted by weight",
		Args:     cobra.MaximumNArgs(1),
		PostRunE: state.postRun,
		RunE: func(cmd *cobra.Command, args []string) error {
			module, err := state.load()
			if err != nil {
				return err
			}
			dir := "/"
			if len(args) == 1 {
				dir = args[0]
			}
			metas, err := module.ListDirectory(cmd.Context(), dir)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), metas)
		},
	}
}

func newEnsureMetaCmd(state *cli) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:      "ensure-meta [web-dir]",
		Short:    "Create missing page sidecars below a directory",
		Args:     cobra.MaximumNArgs(1),
		PostRunE: state.postRun,
		RunE: func(cmd *cobra.Command, args []string) error {
			module, err := state.load()
			if err != nil {
				return err
			}
			msg := sitecmd.EnsureMetadataCommand{
				DryRun: dryRun,
				Report: &sitecmd.EnsureMetadataReport{},
			}
			if len(args) == 1 {
				msg.Directory = args[0]
			}
			if err := dispatch(cmd, module, msg); err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), msg.Report)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Only report pages without a sidecar")
	return cmd
}

// dispatch runs msg through the go-command dispatcher with the module's
// site handlers subscribed for the duration of the call.
func dispatch[T command.Message](cmd *cobra.Command, module *flatcms.Module, msg T) error {
	handlers, err := module.SiteCommands()
	if err != nil {
		return err
	}
	unsubscribe := sitecmd.Subscribe(handlers)
	defer unsubscribe()
	return dispatcher.Dispatch(cmd.Context(), msg)
}

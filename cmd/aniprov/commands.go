package main

import (
	"context"
	"io"

	"github.com/Belphemur/AnimeProviders/internal/config"
	"github.com/Belphemur/AnimeProviders/internal/services"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

type catalogFactory func() (services.Catalog, func(), error)

// cli carries the state shared by every sub-command
type cli struct {
	newCatalog catalogFactory
	catalog    services.Catalog
	cleanup    func()
	providerID string
	pretty     bool
}

func newRootCmd(newCatalog catalogFactory) *cobra.Command {
	c := &cli{newCatalog: newCatalog}

	root := &cobra.Command{
		Use:          "aniprov",
		Short:        "Query the Spanish anime catalog providers from the command line",
		SilenceUsage: true,
		// Errors go to the logger on stderr so stdout stays valid JSON
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			catalog, cleanup, err := c.newCatalog()
			if err != nil {
				return err
			}
			c.catalog, c.cleanup = catalog, cleanup
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.cleanup != nil {
				c.cleanup()
			}
		},
	}
	root.PersistentFlags().StringVarP(&c.providerID, "provider", "p", "tioanime", "provider id to query")
	root.PersistentFlags().BoolVar(&c.pretty, "pretty", false, "indent the JSON output")

	root.AddCommand(
		c.providersCmd(),
		c.homeCmd(),
		c.searchCmd(),
		c.loadCmd(),
		c.linksCmd(),
	)
	return root
}

func (c *cli) print(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	if c.pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

func (c *cli) fail(err error) error {
	logger := config.GetLogger()
	logger.Error().Err(err).Str("provider", c.providerID).Msg("Command failed")
	return err
}

func (c *cli) providersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List the registered providers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.print(cmd.OutOrStdout(), c.catalog.Providers())
		},
	}
}

func (c *cli) homeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "home",
		Short: "Print the main page shelves of a provider",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			shelves, err := c.catalog.MainPage(cmd.Context(), c.providerID)
			if err != nil {
				return c.fail(err)
			}
			return c.print(cmd.OutOrStdout(), shelves)
		},
	}
}

func (c *cli) searchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search a provider catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := c.catalog.Search(cmd.Context(), c.providerID, args[0])
			if err != nil {
				return c.fail(err)
			}
			return c.print(cmd.OutOrStdout(), results)
		},
	}
}

func (c *cli) loadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load <url>",
		Short: "Print the detail record of a show page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			record, err := c.catalog.Load(cmd.Context(), c.providerID, args[0])
			if err != nil {
				return c.fail(err)
			}
			return c.print(cmd.OutOrStdout(), record)
		},
	}
}

func (c *cli) linksCmd() *cobra.Command {
	var stream bool
	cmd := &cobra.Command{
		Use:   "links <url>",
		Short: "Resolve the streams of an episode page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !stream {
				links, err := c.catalog.LoadLinks(cmd.Context(), c.providerID, args[0])
				if err != nil {
					return c.fail(err)
				}
				return c.print(cmd.OutOrStdout(), links)
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			for r := range c.catalog.StreamLinks(ctx, c.providerID, args[0]) {
				stream, err := r.Get()
				if err != nil {
					return c.fail(err)
				}
				if err := c.print(cmd.OutOrStdout(), stream); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&stream, "stream", false, "print each stream as one JSON line as soon as it is resolved")
	return cmd
}

package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Shubz284/biryani-house/internal/config"
	"github.com/Shubz284/biryani-house/internal/seed"
)

// SeedOptions holds flags for the seed command.
type SeedOptions struct {
	*RootOptions
	Reset bool
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SeedOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the starter menu into the store",
		Long: `Insert the starter menu into the configured store.

Only useful against MongoDB; the in-memory store is gone once the command
exits. Use "storefront serve --seed" for a preloaded in-memory server.

Example:
  MONGODB_URI=mongodb://localhost:27017 storefront seed --reset`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Config.Store.Driver != config.DriverMongo {
				return WrapExitError(ExitCommandError, "seed needs a persistent store",
					fmt.Errorf("store.driver is %q", opts.Config.Store.Driver))
			}
			return runSeed(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Reset, "reset", false, "remove existing menu items first")

	return cmd
}

func runSeed(cmd *cobra.Command, opts *SeedOptions) error {
	ctx := cmd.Context()
	docs, err := openStore(ctx, opts.Config.Store)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open store", err)
	}
	defer docs.Close(context.Background())

	items, err := seed.Run(ctx, docs, seed.Options{Reset: opts.Reset})
	if err != nil {
		return err
	}

	out := printer{format: opts.Format, w: cmd.OutOrStdout()}
	if out.jsonMode() {
		return out.json(items)
	}
	for i, item := range items {
		out.line("%2d. %s - %s (%s)", i+1, item.Name, rupees(item.Price), item.Category)
	}
	out.line("Added %d menu items", len(items))
	return nil
}

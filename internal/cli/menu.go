package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Shubz284/biryani-house/internal/client"
	"github.com/Shubz284/biryani-house/internal/models"
)

// MenuOptions holds flags for the menu commands.
type MenuOptions struct {
	*RootOptions
	Category  string
	Featured  bool
	Available bool
}

func newAPIClient(opts *RootOptions) *client.Client {
	return client.New(client.Config{
		BaseURL: opts.Config.Client.BaseURL,
		Timeout: opts.Config.Client.Timeout,
		Retries: opts.Config.Client.Retries,
	})
}

// NewMenuCommand creates the menu command group.
func NewMenuCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MenuOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "menu",
		Short: "Browse the menu of a running storefront",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List menu items, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter models.MenuFilter
			if opts.Category != "" {
				c, err := models.ParseCategory(opts.Category)
				if err != nil {
					return WrapExitError(ExitCommandError, "invalid --category", err)
				}
				filter.Category = &c
			}
			if cmd.Flags().Changed("featured") {
				filter.IsFeatured = &opts.Featured
			}
			if cmd.Flags().Changed("available") {
				filter.Available = &opts.Available
			}

			items, err := newAPIClient(opts.RootOptions).ListMenuItems(cmd.Context(), filter)
			if err != nil {
				return err
			}
			out := printer{format: opts.Format, w: cmd.OutOrStdout()}
			if out.jsonMode() {
				return out.json(items)
			}
			rows := make([][]string, 0, len(items))
			for _, item := range items {
				rows = append(rows, []string{
					item.ID, item.Name, item.Category.String(), rupees(item.Price),
					item.SpiceLevel.String(), vegMark(item.IsVegetarian), strconv.FormatBool(item.Available),
				})
			}
			return out.table([]string{"ID", "NAME", "CATEGORY", "PRICE", "SPICE", "VEG", "AVAILABLE"}, rows)
		},
	}
	list.Flags().StringVar(&opts.Category, "category", "", "only this category")
	list.Flags().BoolVar(&opts.Featured, "featured", false, "only featured (or, with =false, non-featured) items")
	list.Flags().BoolVar(&opts.Available, "available", false, "only available (or, with =false, unavailable) items")

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one menu item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			item, err := newAPIClient(opts.RootOptions).GetMenuItem(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := printer{format: opts.Format, w: cmd.OutOrStdout()}
			if out.jsonMode() {
				return out.json(item)
			}
			out.line("%s  %s", item.Name, rupees(item.Price))
			out.line("%s", item.Description)
			out.line("category: %s  spice: %s  vegetarian: %t  available: %t",
				item.Category, item.SpiceLevel, item.IsVegetarian, item.Available)
			return nil
		},
	}

	cmd.AddCommand(list, get)
	return cmd
}

func vegMark(veg bool) string {
	if veg {
		return "veg"
	}
	return "non-veg"
}

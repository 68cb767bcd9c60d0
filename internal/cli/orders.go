package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Shubz284/biryani-house/internal/models"
)

// OrdersOptions holds flags for the orders commands.
type OrdersOptions struct {
	*RootOptions
	Status string
	Phone  string
	Sort   string
}

// NewOrdersCommand creates the orders command group.
func NewOrdersCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &OrdersOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Look up and manage orders on a running storefront",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List orders",
		Long: `List orders, newest order date first unless --sort says otherwise.

Example:
  storefront orders list --phone 9876543210
  storefront orders list --status pending --sort total_amount`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			views, err := newAPIClient(opts.RootOptions).ListOrders(cmd.Context(), opts.Status, opts.Phone, opts.Sort)
			if err != nil {
				return err
			}
			out := printer{format: opts.Format, w: cmd.OutOrStdout()}
			if out.jsonMode() {
				return out.json(views)
			}
			rows := make([][]string, 0, len(views))
			for _, v := range views {
				rows = append(rows, []string{
					v.ID, v.OrderDate.Local().Format("2006-01-02 15:04"), v.CustomerName,
					strconv.Itoa(len(v.Items)), rupees(v.TotalAmount), v.Status.String(),
				})
			}
			return out.table([]string{"ID", "PLACED", "CUSTOMER", "LINES", "TOTAL", "STATUS"}, rows)
		},
	}
	list.Flags().StringVar(&opts.Status, "status", "", "only orders in this status")
	list.Flags().StringVar(&opts.Phone, "phone", "", "only orders for this phone number")
	list.Flags().StringVar(&opts.Sort, "sort", "", "order_date, created_at or total_amount; prefix - for descending")

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one order with its lines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := newAPIClient(opts.RootOptions).GetOrder(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return showOrder(cmd, opts.RootOptions, view)
		},
	}

	status := &cobra.Command{
		Use:   "status <id> <status>",
		Short: "Move an order to a new status",
		Long: `Set the status of an order. Valid statuses: pending, confirmed,
preparing, out_for_delivery, delivered, cancelled.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			order, err := newAPIClient(opts.RootOptions).SetOrderStatus(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			out := printer{format: opts.Format, w: cmd.OutOrStdout()}
			if out.jsonMode() {
				return out.json(order)
			}
			out.line("Order %s is now %s", order.ID, order.Status)
			return nil
		},
	}

	cmd.AddCommand(list, get, status)
	return cmd
}

func showOrder(cmd *cobra.Command, opts *RootOptions, view models.OrderView) error {
	out := printer{format: opts.Format, w: cmd.OutOrStdout()}
	if out.jsonMode() {
		return out.json(view)
	}
	out.line("Order %s (%s)", view.ID, view.Status)
	out.line("Placed:   %s", view.OrderDate.Local().Format("2006-01-02 15:04"))
	out.line("Customer: %s, %s", view.CustomerName, view.CustomerPhone)
	out.line("Deliver:  %s", view.DeliveryAddress)
	if view.SpecialInstructions != "" {
		out.line("Notes:    %s", view.SpecialInstructions)
	}
	out.line("")

	rows := make([][]string, 0, len(view.Items))
	for _, l := range view.Items {
		name := l.MenuItemName
		if l.MenuItem == nil {
			name += " (no longer on the menu)"
		}
		rows = append(rows, []string{name, strconv.Itoa(l.Quantity), rupees(l.Price), rupees(l.Subtotal)})
	}
	if err := out.table([]string{"ITEM", "QTY", "PRICE", "AMOUNT"}, rows); err != nil {
		return err
	}
	out.line("")
	out.line("Total:    %s", rupees(view.TotalAmount))
	return nil
}

package cli

import (
	"fmt"
	"strconv"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Shubz284/biryani-house/internal/cart"
	"github.com/Shubz284/biryani-house/internal/pricing"
)

// CartOptions holds flags for the cart commands.
type CartOptions struct {
	*RootOptions
	Quantity int
	Details  cart.DeliveryDetails
}

// NewCartCommand creates the cart command group. The cart lives in a file
// under the configured cart directory and survives between invocations.
func NewCartCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CartOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Build an order and check it out",
		Long: `Manage the local cart and place it as an order.

Example:
  storefront cart add 65f0c1e2a1b2c3d4e5f60718 --qty 2
  storefront cart show
  storefront cart checkout --name "Asha Rao" --phone 9876543210 --address "12 MG Road, Pune"`,
	}

	add := &cobra.Command{
		Use:   "add <menu-item-id>",
		Short: "Add a menu item to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			item, err := newAPIClient(opts.RootOptions).GetMenuItem(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !item.Available {
				return WrapExitError(ExitFailure, "cannot add to cart", fmt.Errorf("%s is currently unavailable", item.Name))
			}
			c := openCart(opts.RootOptions)
			c.Add(item, opts.Quantity)
			return showCart(cmd, opts.RootOptions, c)
		},
	}
	add.Flags().IntVarP(&opts.Quantity, "qty", "q", 1, "number of units to add")

	set := &cobra.Command{
		Use:   "set <menu-item-id> <quantity>",
		Short: "Change the quantity of a cart line",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := strconv.Atoi(args[1])
			if err != nil || qty < 1 {
				return WrapExitError(ExitCommandError, "quantity must be a whole number of at least 1", err)
			}
			c := openCart(opts.RootOptions)
			c.SetQuantity(args[0], qty)
			return showCart(cmd, opts.RootOptions, c)
		},
	}

	remove := &cobra.Command{
		Use:   "remove <menu-item-id>",
		Short: "Remove a line from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := openCart(opts.RootOptions)
			c.Remove(args[0])
			return showCart(cmd, opts.RootOptions, c)
		},
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show the cart with its price breakdown",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showCart(cmd, opts.RootOptions, openCart(opts.RootOptions))
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := openCart(opts.RootOptions)
			c.Clear()
			return showCart(cmd, opts.RootOptions, c)
		},
	}

	checkout := &cobra.Command{
		Use:   "checkout",
		Short: "Place the cart as an order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := openCart(opts.RootOptions)
			order, err := c.Checkout(cmd.Context(), opts.Details, newAPIClient(opts.RootOptions))
			if err != nil {
				return err
			}
			out := printer{format: opts.Format, w: cmd.OutOrStdout()}
			if out.jsonMode() {
				return out.json(order)
			}
			out.line("Order placed: %s", order.ID)
			out.line("Status: %s  Total: %s", order.Status, rupees(order.TotalAmount))
			return nil
		},
	}
	checkout.Flags().StringVar(&opts.Details.CustomerName, "name", "", "customer name")
	checkout.Flags().StringVar(&opts.Details.CustomerPhone, "phone", "", "10-digit phone number")
	checkout.Flags().StringVar(&opts.Details.CustomerEmail, "email", "", "email address (optional)")
	checkout.Flags().StringVar(&opts.Details.DeliveryAddress, "address", "", "delivery address")
	checkout.Flags().StringVar(&opts.Details.SpecialInstructions, "instructions", "", "special instructions (optional)")

	cmd.AddCommand(add, set, remove, show, clearCmd, checkout)
	return cmd
}

func openCart(opts *RootOptions) *cart.Cart {
	c := cart.New(cart.FileStorage{Dir: opts.Config.Cart.Dir})
	c.Subscribe(func(s cart.Snapshot) {
		log.WithFields(log.Fields{
			"count": s.Count,
			"total": s.Total.String(),
		}).Debug("Cart updated")
	})
	return c
}

func showCart(cmd *cobra.Command, opts *RootOptions, c *cart.Cart) error {
	snap := c.Snapshot()
	out := printer{format: opts.Format, w: cmd.OutOrStdout()}
	if out.jsonMode() {
		return out.json(snap)
	}
	if len(snap.Lines) == 0 {
		out.line("Your cart is empty")
		return nil
	}

	rows := make([][]string, 0, len(snap.Lines))
	for _, l := range snap.Lines {
		rows = append(rows, []string{
			l.ItemID, l.Name, strconv.Itoa(l.Quantity), rupees(l.Price),
			rupees(pricing.LineTotal(l.Price, l.Quantity)),
		})
	}
	if err := out.table([]string{"ID", "ITEM", "QTY", "PRICE", "AMOUNT"}, rows); err != nil {
		return err
	}
	out.line("")
	out.line("Items:     %d", snap.Count)
	out.line("Subtotal:  %s", rupees(snap.Subtotal))
	out.line("Tax (5%%):  %s", rupees(snap.Tax))
	if snap.DeliveryFee.IsZero() {
		out.line("Delivery:  FREE")
	} else {
		out.line("Delivery:  %s", rupees(snap.DeliveryFee))
		out.line("Add %s more for free delivery", rupees(snap.AmountForFreeDelivery))
	}
	out.line("Total:     %s", rupees(snap.Total))
	return nil
}

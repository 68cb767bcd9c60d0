package cart

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/Shubz284/biryani-house/internal/models"
	"github.com/Shubz284/biryani-house/internal/pricing"
)

// DeliveryDetails is what the customer types in at checkout.
type DeliveryDetails struct {
	CustomerName        string
	CustomerPhone       string
	CustomerEmail       string
	DeliveryAddress     string
	SpecialInstructions string
}

// Submitter places an order, usually over the storefront API.
type Submitter interface {
	SubmitOrder(ctx context.Context, sub models.OrderSubmission) (models.Order, error)
}

// Submission builds the order submission for the current lines.
func (c *Cart) Submission(details DeliveryDetails, at time.Time) models.OrderSubmission {
	sub := models.OrderSubmission{
		CustomerName:        details.CustomerName,
		CustomerPhone:       details.CustomerPhone,
		CustomerEmail:       details.CustomerEmail,
		DeliveryAddress:     details.DeliveryAddress,
		SpecialInstructions: details.SpecialInstructions,
		TotalAmount:         money(c.Total()),
		OrderDate:           &at,
		Items:               make([]models.OrderLineSubmission, 0, len(c.lines)),
	}
	for _, l := range c.lines {
		sub.Items = append(sub.Items, models.OrderLineSubmission{
			MenuItemID:   l.ItemID,
			MenuItemName: l.Name,
			Quantity:     json.RawMessage(strconv.Itoa(l.Quantity)),
			Price:        money(l.Price),
			Subtotal:     money(pricing.LineTotal(l.Price, l.Quantity)),
		})
	}
	return sub
}

// Checkout submits the cart and clears it once the order is accepted. On any
// failure the cart is left exactly as it was.
func (c *Cart) Checkout(ctx context.Context, details DeliveryDetails, submitter Submitter) (models.Order, error) {
	if c.Empty() {
		return models.Order{}, models.Invalid("items", "Order must have at least one item")
	}
	order, err := submitter.SubmitOrder(ctx, c.Submission(details, time.Now().UTC()))
	if err != nil {
		return models.Order{}, err
	}
	log.WithFields(log.Fields{
		"order_id": order.ID,
		"items":    len(c.lines),
	}).Info("Order placed, clearing cart")
	c.Clear()
	return order, nil
}

func money(d decimal.Decimal) json.RawMessage {
	return json.RawMessage(d.String())
}

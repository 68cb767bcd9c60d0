package orders

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Shubz284/biryani-house/internal/models"
	"github.com/Shubz284/biryani-house/internal/pricing"
)

const (
	maxNameLength         = 100
	maxAddressLength      = 500
	maxInstructionsLength = 500
)

var (
	phonePattern = regexp.MustCompile(`^[0-9]{10}$`)
	emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)
)

// Validator checks an order submission and turns it into a draft Order.
type Validator struct {
	// VerifyTotal recomputes total_amount from the lines and rejects a
	// submission whose total differs by more than rounding to the paisa.
	VerifyTotal bool
}

// Validate collects every problem with sub. On success the returned draft has
// status pending and no identifier or timestamps.
func (v Validator) Validate(sub models.OrderSubmission) (models.Order, error) {
	var issues models.ValidationError

	draft := models.Order{
		CustomerName:        models.CleanText(sub.CustomerName),
		CustomerPhone:       strings.TrimSpace(sub.CustomerPhone),
		CustomerEmail:       strings.ToLower(strings.TrimSpace(sub.CustomerEmail)),
		DeliveryAddress:     models.CleanText(sub.DeliveryAddress),
		SpecialInstructions: models.CleanText(sub.SpecialInstructions),
		Status:              models.OrderStatusPending,
	}
	if sub.OrderDate != nil {
		draft.OrderDate = sub.OrderDate.UTC()
	}

	switch {
	case draft.CustomerName == "":
		issues.Add("customer_name", "Customer name is required")
	case models.TooLong(draft.CustomerName, maxNameLength):
		issues.Add("customer_name", "Name cannot exceed %d characters", maxNameLength)
	}
	if !phonePattern.MatchString(draft.CustomerPhone) {
		issues.Add("customer_phone", "Valid 10-digit phone number required")
	}
	if draft.CustomerEmail != "" && !emailPattern.MatchString(draft.CustomerEmail) {
		issues.Add("customer_email", "Please provide a valid email address")
	}
	switch {
	case draft.DeliveryAddress == "":
		issues.Add("delivery_address", "Delivery address is required")
	case models.TooLong(draft.DeliveryAddress, maxAddressLength):
		issues.Add("delivery_address", "Address cannot exceed %d characters", maxAddressLength)
	}
	if models.TooLong(draft.SpecialInstructions, maxInstructionsLength) {
		issues.Add("special_instructions", "Instructions cannot exceed %d characters", maxInstructionsLength)
	}

	total, totalOK := amount(&issues, "total_amount", "Total amount", sub.TotalAmount, false)

	linesOK := true
	if len(sub.Items) == 0 {
		issues.Add("items", "Order must have at least one item")
		linesOK = false
	}
	draft.Items = make([]models.OrderLineItem, 0, len(sub.Items))
	for i, raw := range sub.Items {
		line, ok := checkLine(&issues, fmt.Sprintf("items[%d]", i), raw)
		linesOK = linesOK && ok
		draft.Items = append(draft.Items, line)
	}

	draft.TotalAmount = total
	if v.VerifyTotal && totalOK && linesOK {
		quote := pricing.Quote(pricing.Subtotal(draft.Items))
		if !pricing.SameAmount(total, quote.Total) {
			issues.Add("total_amount", "Total amount must equal %s (subtotal %s + tax %s + delivery %s)",
				quote.Total.StringFixed(2), quote.Subtotal.StringFixed(2),
				quote.Tax.StringFixed(2), quote.DeliveryFee.StringFixed(2))
		} else {
			draft.TotalAmount = quote.Total.Round(2)
		}
	}

	if err := issues.Err(); err != nil {
		return models.Order{}, err
	}
	return draft, nil
}

func checkLine(issues *models.ValidationError, path string, raw models.OrderLineSubmission) (models.OrderLineItem, bool) {
	line := models.OrderLineItem{
		MenuItemID:   strings.TrimSpace(raw.MenuItemID),
		MenuItemName: models.CleanText(raw.MenuItemName),
	}
	ok := true

	if line.MenuItemID == "" {
		issues.Add(path+".menu_item_id", "Menu item ID is required")
		ok = false
	}
	if line.MenuItemName == "" {
		issues.Add(path+".menu_item_name", "Menu item name is required")
		ok = false
	}

	quantity, err := models.DecodeQuantity(raw.Quantity)
	switch {
	case errors.Is(err, models.ErrMissing):
		issues.Add(path+".quantity", "Quantity is required")
	case err != nil:
		issues.Add(path+".quantity", "Quantity must be a whole number")
	case quantity < 1:
		issues.Add(path+".quantity", "Quantity must be at least 1")
	}
	quantityOK := err == nil && quantity >= 1
	line.Quantity = quantity

	var priceOK, subtotalOK bool
	line.Price, priceOK = amount(issues, path+".price", "Price", raw.Price, true)
	line.Subtotal, subtotalOK = amount(issues, path+".subtotal", "Subtotal", raw.Subtotal, false)

	if quantityOK && priceOK && subtotalOK {
		want := pricing.LineTotal(line.Price, line.Quantity)
		if !pricing.SameAmount(line.Subtotal, want) {
			issues.Add(path+".subtotal", "Subtotal must equal quantity × price (%s)", want.StringFixed(2))
			subtotalOK = false
		}
	}
	return line, ok && quantityOK && priceOK && subtotalOK
}

// amount decodes a non-negative money field, recording an issue when it is
// missing, malformed, negative or too large. Prices must already be in whole
// paise; computed amounts (subtotals, totals) are rounded to the paisa since
// clients add them up in floating point.
func amount(issues *models.ValidationError, field, label string, raw []byte, exact bool) (decimal.Decimal, bool) {
	d, err := models.DecodeAmount(raw)
	switch {
	case errors.Is(err, models.ErrMissing):
		issues.Add(field, "%s is required", label)
	case err != nil:
		issues.Add(field, "%s must be a number", label)
	case d.IsNegative():
		issues.Add(field, "%s cannot be negative", label)
	case models.AmountTooLarge(d):
		issues.Add(field, "%s must be less than %s", label, models.MaxAmount.String())
	case exact && !models.WholePaise(d):
		issues.Add(field, "%s cannot have more than 2 decimal places", label)
	default:
		return d.Round(2), true
	}
	return d, false
}

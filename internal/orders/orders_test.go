package orders

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Shubz284/biryani-house/internal/models"
)

func validSubmission() models.OrderSubmission {
	return models.OrderSubmission{
		CustomerName:    "Asha Rao",
		CustomerPhone:   "9876543210",
		CustomerEmail:   " Asha@Example.com ",
		DeliveryAddress: "12 MG Road, Bengaluru",
		TotalAmount:     json.RawMessage(`355`),
		Items: []models.OrderLineSubmission{{
			MenuItemID:   "m-1",
			MenuItemName: "Veg Biryani",
			Quantity:     json.RawMessage(`2`),
			Price:        json.RawMessage(`150`),
			Subtotal:     json.RawMessage(`300`),
		}},
	}
}

func issues(t *testing.T, err error) map[string]string {
	t.Helper()
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	out := make(map[string]string, len(verr.Issues))
	for _, issue := range verr.Issues {
		out[issue.Field] = issue.Message
	}
	return out
}

package store

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Shubz284/biryani-house/internal/models"
)

func TestMenuDocument_RoundTrip(t *testing.T) {
	item := menuItem("Hyderabadi Dum Biryani", models.CategoryBiryani, true, true, t0)
	item.Price = decimal.RequireFromString("169.99")
	item.SpiceLevel = models.SpiceMedium

	doc, err := toMenuDocument(item)
	require.NoError(t, err)
	assert.Equal(t, "biryani", doc.Category)
	assert.Equal(t, "medium", doc.SpiceLevel)

	doc.ID = primitive.NewObjectID()
	back, err := fromMenuDocument(doc)
	require.NoError(t, err)
	assert.Equal(t, doc.ID.Hex(), back.ID)
	assert.True(t, back.Price.Equal(item.Price), back.Price.String())
	assert.Equal(t, models.SpiceMedium, back.SpiceLevel)
}

func TestMenuDocument_MissingSpiceLevelDefaultsToNone(t *testing.T) {
	price, _ := primitive.ParseDecimal128("49.99")
	item, err := fromMenuDocument(menuDocument{ID: primitive.NewObjectID(), Category: "beverages", Price: price})
	require.NoError(t, err)
	assert.Equal(t, models.SpiceNone, item.SpiceLevel)
}

func TestMenuDocument_RejectsUnknownCategory(t *testing.T) {
	price, _ := primitive.ParseDecimal128("10")
	_, err := fromMenuDocument(menuDocument{ID: primitive.NewObjectID(), Category: "pizza", Price: price})
	assert.Error(t, err)
}

func TestOrderDocument_RoundTrip(t *testing.T) {
	o := order("9876543210", models.OrderStatusOutForDelivery, t0, 355)
	o.CustomerEmail = "asha@example.com"

	doc, err := toOrderDocument(o)
	require.NoError(t, err)
	assert.Equal(t, "out_for_delivery", doc.Status)
	require.Len(t, doc.Items, 1)

	back, err := fromOrderDocument(doc)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusOutForDelivery, back.Status)
	assert.True(t, back.TotalAmount.Equal(decimal.NewFromInt(355)))
	assert.Equal(t, "Raita", back.Items[0].MenuItemName)
	assert.Equal(t, o.CustomerEmail, back.CustomerEmail)
}

func TestDocumentID(t *testing.T) {
	minted, err := documentID("")
	require.NoError(t, err)
	assert.False(t, minted.IsZero())

	preset := primitive.NewObjectID()
	got, err := documentID(preset.Hex())
	require.NoError(t, err)
	assert.Equal(t, preset, got)

	_, err = documentID("o-1")
	assert.Error(t, err)
}

func TestOrderDocument_LargestAcceptedAmounts(t *testing.T) {
	largest := models.MaxAmount.Sub(decimal.RequireFromString("0.01"))
	o := order("9876543210", models.OrderStatusPending, t0, 1)
	o.TotalAmount = largest
	o.Items[0].Price = largest
	o.Items[0].Subtotal = largest

	doc, err := toOrderDocument(o)
	require.NoError(t, err)
	back, err := fromOrderDocument(doc)
	require.NoError(t, err)
	assert.True(t, back.TotalAmount.Equal(largest), back.TotalAmount.String())
	assert.True(t, back.Items[0].Subtotal.Equal(largest))
}

func TestFilterDocuments(t *testing.T) {
	c := models.CategorySweets
	yes := true
	assert.Equal(t, bson.D{
		{Key: "category", Value: "sweets"},
		{Key: "is_featured", Value: true},
	}, menuFilterDocument(models.MenuFilter{Category: &c, IsFeatured: &yes}))
	assert.Empty(t, menuFilterDocument(models.MenuFilter{}))

	st := models.OrderStatusCancelled
	assert.Equal(t, bson.D{
		{Key: "status", Value: "cancelled"},
		{Key: "customer_phone", Value: "9876543210"},
	}, orderFilterDocument(models.OrderFilter{Status: &st, CustomerPhone: "9876543210"}))

	assert.Equal(t, bson.D{{Key: "order_date", Value: -1}, {Key: "_id", Value: -1}}, orderSortDocument(models.DefaultOrderSort))
	assert.Equal(t, bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}},
		orderSortDocument(models.OrderSort{Field: models.SortCreatedAt}))
}

func TestClassify(t *testing.T) {
	assert.NoError(t, classify("op", nil))
	assert.ErrorIs(t, classify("op", mongo.ErrNoDocuments), models.ErrNotFound)
	assert.True(t, models.IsTransient(classify("op", context.DeadlineExceeded)))

	err := classify("op", errors.New("duplicate key"))
	assert.False(t, models.IsTransient(err))
	assert.Contains(t, err.Error(), "op: duplicate key")
}

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/Shubz284/biryani-house/internal/models"
)

// Collection names match the ones the storefront has always used.
const (
	menuCollection  = "menuitems"
	orderCollection = "orders"
)

// MongoConfig locates the database.
type MongoConfig struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
}

// Mongo is a Store backed by MongoDB.
type Mongo struct {
	client *mongo.Client
	menu   *mongo.Collection
	orders *mongo.Collection
}

type menuDocument struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty"`
	Name         string               `bson:"name"`
	Description  string               `bson:"description"`
	Price        primitive.Decimal128 `bson:"price"`
	Category     string               `bson:"category"`
	ImageURL     string               `bson:"image_url"`
	Available    bool                 `bson:"available"`
	SpiceLevel   string               `bson:"spice_level"`
	IsVegetarian bool                 `bson:"is_vegetarian"`
	IsFeatured   bool                 `bson:"is_featured"`
	CreatedAt    time.Time            `bson:"createdAt"`
	UpdatedAt    time.Time            `bson:"updatedAt"`
}

type orderItemDocument struct {
	MenuItemID   string               `bson:"menu_item_id"`
	MenuItemName string               `bson:"menu_item_name"`
	Quantity     int                  `bson:"quantity"`
	Price        primitive.Decimal128 `bson:"price"`
	Subtotal     primitive.Decimal128 `bson:"subtotal"`
}

type orderDocument struct {
	ID                  primitive.ObjectID   `bson:"_id,omitempty"`
	CustomerName        string               `bson:"customer_name"`
	CustomerPhone       string               `bson:"customer_phone"`
	CustomerEmail       string               `bson:"customer_email,omitempty"`
	DeliveryAddress     string               `bson:"delivery_address"`
	SpecialInstructions string               `bson:"special_instructions,omitempty"`
	TotalAmount         primitive.Decimal128 `bson:"total_amount"`
	OrderDate           time.Time            `bson:"order_date"`
	Status              string               `bson:"status"`
	Items               []orderItemDocument  `bson:"items"`
	CreatedAt           time.Time            `bson:"createdAt"`
	UpdatedAt           time.Time            `bson:"updatedAt"`
}

// OpenMongo connects, verifies the connection and makes sure the indexes
// exist.
func OpenMongo(ctx context.Context, cfg MongoConfig) (*Mongo, error) {
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(cctx, options.Client().
		ApplyURI(cfg.URI).
		SetServerSelectionTimeout(timeout))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(cctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	db := client.Database(cfg.Database)
	m := &Mongo{
		client: client,
		menu:   db.Collection(menuCollection),
		orders: db.Collection(orderCollection),
	}
	if err := m.ensureIndexes(cctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	log.WithFields(log.Fields{
		"database": cfg.Database,
	}).Info("MongoDB connected")
	return m, nil
}

func (m *Mongo) ensureIndexes(ctx context.Context) error {
	_, err := m.menu.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "category", Value: 1}, {Key: "available", Value: 1}}},
		{Keys: bson.D{{Key: "is_featured", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create menu indexes: %w", err)
	}
	_, err = m.orders.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "customer_phone", Value: 1}, {Key: "order_date", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "order_date", Value: -1}}},
		{Keys: bson.D{{Key: "order_date", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create order indexes: %w", err)
	}
	return nil
}

// NewID returns a fresh ObjectID in hex.
func (m *Mongo) NewID() string { return primitive.NewObjectID().Hex() }

// documentID parses a preset id, or mints one when id is empty.
func documentID(id string) (primitive.ObjectID, error) {
	if id == "" {
		return primitive.NewObjectID(), nil
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("insert: %q is not an ObjectID: %w", id, err)
	}
	return oid, nil
}

func (m *Mongo) Ping(ctx context.Context) error {
	return classify("ping", m.client.Ping(ctx, readpref.Primary()))
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func (m *Mongo) ListMenuItems(ctx context.Context, filter models.MenuFilter) ([]models.MenuItem, error) {
	cur, err := m.menu.Find(ctx, menuFilterDocument(filter),
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}))
	if err != nil {
		return nil, classify("menu.list", err)
	}
	var docs []menuDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, classify("menu.list", err)
	}
	return fromMenuDocuments(docs)
}

func (m *Mongo) GetMenuItem(ctx context.Context, id string) (models.MenuItem, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.MenuItem{}, models.ErrNotFound
	}
	var doc menuDocument
	if err := m.menu.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		return models.MenuItem{}, classify("menu.get", err)
	}
	return fromMenuDocument(doc)
}

func (m *Mongo) GetMenuItems(ctx context.Context, ids []string) (map[string]models.MenuItem, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			oids = append(oids, oid)
		}
	}
	found := make(map[string]models.MenuItem, len(oids))
	if len(oids) == 0 {
		return found, nil
	}

	cur, err := m.menu.Find(ctx, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: oids}}}})
	if err != nil {
		return nil, classify("menu.get_many", err)
	}
	var docs []menuDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, classify("menu.get_many", err)
	}
	items, err := fromMenuDocuments(docs)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		found[item.ID] = item
	}
	return found, nil
}

func (m *Mongo) InsertMenuItem(ctx context.Context, item models.MenuItem) (models.MenuItem, error) {
	doc, err := toMenuDocument(item)
	if err != nil {
		return models.MenuItem{}, err
	}
	if doc.ID, err = documentID(item.ID); err != nil {
		return models.MenuItem{}, err
	}
	if _, err := m.menu.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.MenuItem{}, ErrDuplicateID
		}
		return models.MenuItem{}, classify("menu.insert", err)
	}
	item.ID = doc.ID.Hex()
	return item, nil
}

func (m *Mongo) ReplaceMenuItem(ctx context.Context, item models.MenuItem) (models.MenuItem, error) {
	oid, err := primitive.ObjectIDFromHex(item.ID)
	if err != nil {
		return models.MenuItem{}, models.ErrNotFound
	}
	doc, err := toMenuDocument(item)
	if err != nil {
		return models.MenuItem{}, err
	}
	doc.ID = oid

	var stored menuDocument
	err = m.menu.FindOneAndReplace(ctx, bson.D{{Key: "_id", Value: oid}}, doc,
		options.FindOneAndReplace().SetReturnDocument(options.After)).Decode(&stored)
	if err != nil {
		return models.MenuItem{}, classify("menu.replace", err)
	}
	return fromMenuDocument(stored)
}

func (m *Mongo) DeleteMenuItem(ctx context.Context, id string) (models.MenuItem, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.MenuItem{}, models.ErrNotFound
	}
	var doc menuDocument
	if err := m.menu.FindOneAndDelete(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		return models.MenuItem{}, classify("menu.delete", err)
	}
	return fromMenuDocument(doc)
}

func (m *Mongo) DeleteAllMenuItems(ctx context.Context) (int64, error) {
	res, err := m.menu.DeleteMany(ctx, bson.D{})
	if err != nil {
		return 0, classify("menu.delete_all", err)
	}
	return res.DeletedCount, nil
}

func (m *Mongo) ListOrders(ctx context.Context, filter models.OrderFilter, sort models.OrderSort) ([]models.Order, error) {
	cur, err := m.orders.Find(ctx, orderFilterDocument(filter), options.Find().SetSort(orderSortDocument(sort)))
	if err != nil {
		return nil, classify("order.list", err)
	}
	var docs []orderDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, classify("order.list", err)
	}
	orders := make([]models.Order, 0, len(docs))
	for _, doc := range docs {
		o, err := fromOrderDocument(doc)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}

func (m *Mongo) GetOrder(ctx context.Context, id string) (models.Order, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.Order{}, models.ErrNotFound
	}
	var doc orderDocument
	if err := m.orders.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		return models.Order{}, classify("order.get", err)
	}
	return fromOrderDocument(doc)
}

func (m *Mongo) InsertOrder(ctx context.Context, order models.Order) (models.Order, error) {
	doc, err := toOrderDocument(order)
	if err != nil {
		return models.Order{}, err
	}
	if doc.ID, err = documentID(order.ID); err != nil {
		return models.Order{}, err
	}
	if _, err := m.orders.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.Order{}, ErrDuplicateID
		}
		return models.Order{}, classify("order.insert", err)
	}
	order.ID = doc.ID.Hex()
	return order, nil
}

func (m *Mongo) SetOrderStatus(ctx context.Context, id string, status models.OrderStatus, at time.Time) (models.Order, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.Order{}, models.ErrNotFound
	}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "status", Value: status.String()},
		{Key: "updatedAt", Value: at},
	}}}

	var doc orderDocument
	err = m.orders.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: oid}}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&doc)
	if err != nil {
		return models.Order{}, classify("order.set_status", err)
	}
	return fromOrderDocument(doc)
}

func (m *Mongo) DeleteOrder(ctx context.Context, id string) (models.Order, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.Order{}, models.ErrNotFound
	}
	var doc orderDocument
	if err := m.orders.FindOneAndDelete(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		return models.Order{}, classify("order.delete", err)
	}
	return fromOrderDocument(doc)
}

// classify maps driver errors onto the store's error taxonomy.
func classify(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return models.ErrNotFound
	case mongo.IsTimeout(err), mongo.IsNetworkError(err), errors.Is(err, context.DeadlineExceeded):
		return &models.TransientError{Op: op, Err: err}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func menuFilterDocument(f models.MenuFilter) bson.D {
	filter := bson.D{}
	if f.Category != nil {
		filter = append(filter, bson.E{Key: "category", Value: f.Category.String()})
	}
	if f.IsFeatured != nil {
		filter = append(filter, bson.E{Key: "is_featured", Value: *f.IsFeatured})
	}
	if f.Available != nil {
		filter = append(filter, bson.E{Key: "available", Value: *f.Available})
	}
	return filter
}

func orderFilterDocument(f models.OrderFilter) bson.D {
	filter := bson.D{}
	if f.Status != nil {
		filter = append(filter, bson.E{Key: "status", Value: f.Status.String()})
	}
	if f.CustomerPhone != "" {
		filter = append(filter, bson.E{Key: "customer_phone", Value: f.CustomerPhone})
	}
	return filter
}

func orderSortDocument(s models.OrderSort) bson.D {
	field := map[string]string{
		models.SortOrderDate:   "order_date",
		models.SortCreatedAt:   "createdAt",
		models.SortTotalAmount: "total_amount",
	}[s.Field]
	if field == "" {
		field = "order_date"
	}
	dir := 1
	if s.Descending {
		dir = -1
	}
	return bson.D{{Key: field, Value: dir}, {Key: "_id", Value: dir}}
}

func toMenuDocument(item models.MenuItem) (menuDocument, error) {
	price, err := primitive.ParseDecimal128(item.Price.String())
	if err != nil {
		return menuDocument{}, fmt.Errorf("encode price %s: %w", item.Price, err)
	}
	return menuDocument{
		Name:         item.Name,
		Description:  item.Description,
		Price:        price,
		Category:     item.Category.String(),
		ImageURL:     item.ImageURL,
		Available:    item.Available,
		SpiceLevel:   item.SpiceLevel.String(),
		IsVegetarian: item.IsVegetarian,
		IsFeatured:   item.IsFeatured,
		CreatedAt:    item.CreatedAt,
		UpdatedAt:    item.UpdatedAt,
	}, nil
}

func fromMenuDocument(doc menuDocument) (models.MenuItem, error) {
	price, err := decimal.NewFromString(doc.Price.String())
	if err != nil {
		return models.MenuItem{}, fmt.Errorf("menu item %s: decode price: %w", doc.ID.Hex(), err)
	}
	category, err := models.ParseCategory(doc.Category)
	if err != nil {
		return models.MenuItem{}, fmt.Errorf("menu item %s: %w", doc.ID.Hex(), err)
	}
	spice := models.SpiceNone
	if doc.SpiceLevel != "" {
		if spice, err = models.ParseSpiceLevel(doc.SpiceLevel); err != nil {
			return models.MenuItem{}, fmt.Errorf("menu item %s: %w", doc.ID.Hex(), err)
		}
	}
	return models.MenuItem{
		ID:           doc.ID.Hex(),
		Name:         doc.Name,
		Description:  doc.Description,
		Price:        price,
		Category:     category,
		ImageURL:     doc.ImageURL,
		Available:    doc.Available,
		SpiceLevel:   spice,
		IsVegetarian: doc.IsVegetarian,
		IsFeatured:   doc.IsFeatured,
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
	}, nil
}

func fromMenuDocuments(docs []menuDocument) ([]models.MenuItem, error) {
	items := make([]models.MenuItem, 0, len(docs))
	for _, doc := range docs {
		item, err := fromMenuDocument(doc)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func toOrderDocument(o models.Order) (orderDocument, error) {
	total, err := primitive.ParseDecimal128(o.TotalAmount.String())
	if err != nil {
		return orderDocument{}, fmt.Errorf("encode total %s: %w", o.TotalAmount, err)
	}
	items := make([]orderItemDocument, 0, len(o.Items))
	for _, line := range o.Items {
		price, err := primitive.ParseDecimal128(line.Price.String())
		if err != nil {
			return orderDocument{}, fmt.Errorf("encode price %s: %w", line.Price, err)
		}
		subtotal, err := primitive.ParseDecimal128(line.Subtotal.String())
		if err != nil {
			return orderDocument{}, fmt.Errorf("encode subtotal %s: %w", line.Subtotal, err)
		}
		items = append(items, orderItemDocument{
			MenuItemID:   line.MenuItemID,
			MenuItemName: line.MenuItemName,
			Quantity:     line.Quantity,
			Price:        price,
			Subtotal:     subtotal,
		})
	}
	return orderDocument{
		CustomerName:        o.CustomerName,
		CustomerPhone:       o.CustomerPhone,
		CustomerEmail:       o.CustomerEmail,
		DeliveryAddress:     o.DeliveryAddress,
		SpecialInstructions: o.SpecialInstructions,
		TotalAmount:         total,
		OrderDate:           o.OrderDate,
		Status:              o.Status.String(),
		Items:               items,
		CreatedAt:           o.CreatedAt,
		UpdatedAt:           o.UpdatedAt,
	}, nil
}

func fromOrderDocument(doc orderDocument) (models.Order, error) {
	total, err := decimal.NewFromString(doc.TotalAmount.String())
	if err != nil {
		return models.Order{}, fmt.Errorf("order %s: decode total: %w", doc.ID.Hex(), err)
	}
	status, err := models.ParseOrderStatus(doc.Status)
	if err != nil {
		return models.Order{}, fmt.Errorf("order %s: %w", doc.ID.Hex(), err)
	}
	items := make([]models.OrderLineItem, 0, len(doc.Items))
	for _, d := range doc.Items {
		price, err := decimal.NewFromString(d.Price.String())
		if err != nil {
			return models.Order{}, fmt.Errorf("order %s: decode price: %w", doc.ID.Hex(), err)
		}
		subtotal, err := decimal.NewFromString(d.Subtotal.String())
		if err != nil {
			return models.Order{}, fmt.Errorf("order %s: decode subtotal: %w", doc.ID.Hex(), err)
		}
		items = append(items, models.OrderLineItem{
			MenuItemID:   d.MenuItemID,
			MenuItemName: d.MenuItemName,
			Quantity:     d.Quantity,
			Price:        price,
			Subtotal:     subtotal,
		})
	}
	return models.Order{
		ID:                  doc.ID.Hex(),
		CustomerName:        doc.CustomerName,
		CustomerPhone:       doc.CustomerPhone,
		CustomerEmail:       doc.CustomerEmail,
		DeliveryAddress:     doc.DeliveryAddress,
		SpecialInstructions: doc.SpecialInstructions,
		TotalAmount:         total,
		OrderDate:           doc.OrderDate,
		Status:              status,
		Items:               items,
		CreatedAt:           doc.CreatedAt,
		UpdatedAt:           doc.UpdatedAt,
	}, nil
}

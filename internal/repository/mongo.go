package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"olivander/internal/domain"
)

const (
	productsCollection = "products"
	ordersCollection   = "orders"
	// TextIndexName имя текстового индекса по name и description
	TextIndexName = "text_idx"
)

// Connect opens a pooled client, verifies it with a ping and resolves the database.
func Connect(ctx context.Context, uri, database string) (*mongo.Database, error) {
	clientOpts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(100)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w: %w", ErrUnavailable, err)
	}

	return client.Database(database), nil
}

// storeError maps driver errors onto the package sentinels.
func storeError(op string, err error) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsNetworkError(err), mongo.IsTimeout(err), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

type collection struct {
	coll    *mongo.Collection
	timeout time.Duration
}

func (c collection) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout > 0 {
		return context.WithTimeout(ctx, c.timeout)
	}
	return ctx, func() {}
}

func (c collection) Ping(ctx context.Context) error {
	ctx, cancel := c.opCtx(ctx)
	defer cancel()
	if err := c.coll.Database().Client().Ping(ctx, readpref.Primary()); err != nil {
		return storeError("ping", err)
	}
	return nil
}

// DeleteAll очищает коллекцию (используется командой seed)
func (c collection) DeleteAll(ctx context.Context) (int64, error) {
	ctx, cancel := c.opCtx(ctx)
	defer cancel()
	res, err := c.coll.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, storeError("delete all", err)
	}
	return res.DeletedCount, nil
}

// MongoProducts реализация ProductRepository на коллекции products
type MongoProducts struct{ collection }

// opTimeout 0 means store calls are bounded only by the caller's context.
func NewMongoProducts(db *mongo.Database, opTimeout time.Duration) *MongoProducts {
	return &MongoProducts{collection{coll: db.Collection(productsCollection), timeout: opTimeout}}
}

var (
	_ ProductRepository = (*MongoProducts)(nil)
	_ Pinger            = (*MongoProducts)(nil)
)

func (r *MongoProducts) Create(ctx context.Context, p *domain.Product) error {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()
	doc := *p
	doc.ID = primitive.NilObjectID
	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return storeError("insert product", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return fmt.Errorf("insert product: unexpected id type %T", res.InsertedID)
	}
	p.ID = oid
	return nil
}

func (r *MongoProducts) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Product, error) {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()
	var p domain.Product
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, storeError("find product", err)
	}
	return &p, nil
}

func (r *MongoProducts) Replace(ctx context.Context, p *domain.Product) error {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()
	update := bson.M{"$set": bson.M{
		"name":        p.Name,
		"description": p.Description,
		"price":       p.Price,
		"stock":       p.Stock,
		"categories":  p.Categories,
	}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": p.ID}, update)
	if err != nil {
		return storeError("update product", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoProducts) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return storeError("delete product", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoProducts) List(ctx context.Context, f ProductFilter) ([]domain.Product, error) {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()
	filter := bson.M{}
	if f.Search != "" {
		filter = bson.M{"$text": bson.M{"$search": f.Search}}
	}
	opts := options.Find().SetSkip(f.Skip).SetLimit(f.Limit)
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, storeError("find products", err)
	}
	out := make([]domain.Product, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, storeError("decode products", err)
	}
	return out, nil
}

// EnsureTextIndex создаёт текстовый индекс, если его ещё нет. Повторный вызов с той же
// спецификацией ничего не меняет.
func (r *MongoProducts) EnsureTextIndex(ctx context.Context) error {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()
	model := mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: "text"}, {Key: "description", Value: "text"}},
		Options: options.Index().SetName(TextIndexName),
	}
	if _, err := r.coll.Indexes().CreateOne(ctx, model); err != nil {
		return storeError("create text index", err)
	}
	return nil
}

// MongoOrders реализация OrderRepository на коллекции orders
type MongoOrders struct{ collection }

func NewMongoOrders(db *mongo.Database, opTimeout time.Duration) *MongoOrders {
	return &MongoOrders{collection{coll: db.Collection(ordersCollection), timeout: opTimeout}}
}

var _ OrderRepository = (*MongoOrders)(nil)

func (r *MongoOrders) Create(ctx context.Context, o *domain.Order) error {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()
	doc := *o
	doc.ID = primitive.NilObjectID
	// mongo хранит время с точностью до миллисекунд
	doc.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return storeError("insert order", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return fmt.Errorf("insert order: unexpected id type %T", res.InsertedID)
	}
	o.ID = oid
	o.CreatedAt = doc.CreatedAt
	return nil
}

func (r *MongoOrders) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Order, error) {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()
	var o domain.Order
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&o); err != nil {
		return nil, storeError("find order", err)
	}
	return &o, nil
}

func (r *MongoOrders) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()
	n, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, storeError("count orders", err)
	}
	return n, nil
}
